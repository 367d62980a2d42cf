package event

import (
	"time"

	"github.com/shopspring/decimal"
)

const OrderPaidEventType = "order.paid"

// OrderPaidEvent 付款完成事件, webhook確認入帳後發佈
// consumer負責寄確認信
type OrderPaidEvent struct {
	EventType  string          `json:"event_type"`
	OrderRef   string          `json:"order_ref"`
	Email      string          `json:"email"`
	FirstName  string          `json:"first_name"`
	TotalPrice decimal.Decimal `json:"total_price"`
	PaidAt     time.Time       `json:"paid_at"`
}

func NewOrderPaidEvent(orderRef, email, firstName string, totalPrice decimal.Decimal) OrderPaidEvent {
	return OrderPaidEvent{
		EventType:  OrderPaidEventType,
		OrderRef:   orderRef,
		Email:      email,
		FirstName:  firstName,
		TotalPrice: totalPrice,
		PaidAt:     time.Now().UTC(),
	}
}
