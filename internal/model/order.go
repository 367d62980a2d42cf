package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	PaymentMethodCard         PaymentMethod = "card"
	PaymentMethodPaypal       PaymentMethod = "paypal"
	PaymentMethodCrypto       PaymentMethod = "crypto"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
)

func IsValidPaymentMethod(m string) bool {
	switch PaymentMethod(m) {
	case PaymentMethodCard, PaymentMethodPaypal, PaymentMethodCrypto, PaymentMethodBankTransfer:
		return true
	default:
		return false
	}
}

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusRefunded  PaymentStatus = "refunded"
)

func IsValidPaymentStatus(s string) bool {
	switch PaymentStatus(s) {
	case PaymentStatusPending, PaymentStatusCompleted, PaymentStatusFailed, PaymentStatusRefunded:
		return true
	default:
		return false
	}
}

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
	OrderStatusReturned   OrderStatus = "returned"
)

func IsValidOrderStatus(s string) bool {
	switch OrderStatus(s) {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled, OrderStatusReturned:
		return true
	default:
		return false
	}
}

type Customer struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
}

type ShippingInfo struct {
	Address  string `json:"address"`
	Address2 string `json:"address2,omitempty"`
	City     string `json:"city"`
	State    string `json:"state"`
	ZipCode  string `json:"zipCode"`
	Country  string `json:"country"`
}

// BillingInfo 帳單地址, SameAsShipping為true時其餘欄位可空
type BillingInfo struct {
	SameAsShipping bool   `json:"sameAsShipping"`
	Address        string `json:"address,omitempty"`
	Address2       string `json:"address2,omitempty"`
	City           string `json:"city,omitempty"`
	State          string `json:"state,omitempty"`
	ZipCode        string `json:"zipCode,omitempty"`
	Country        string `json:"country,omitempty"`
}

// ConfiguredOption 下單當下選擇的選項與其加價快照
type ConfiguredOption struct {
	Label string          `json:"label"`
	Price decimal.Decimal `json:"price"`
}

// OrderConfiguration 含價格的規格快照, 與Product脫鉤
type OrderConfiguration struct {
	Software  *ConfiguredOption `json:"software,omitempty"`
	Ram       *ConfiguredOption `json:"ram,omitempty"`
	Storage   *ConfiguredOption `json:"storage,omitempty"`
	Processor *ConfiguredOption `json:"processor,omitempty"`
}

// OrderProduct 訂單商品快照, 下單時間點的反正規化複本, 不回頭參照Product
type OrderProduct struct {
	ProductID     string             `json:"productId"`
	Name          string             `json:"name"`
	Quantity      int                `json:"quantity"`
	BasePrice     decimal.Decimal    `json:"basePrice"`
	Configuration OrderConfiguration `json:"configuration"`
	Image         string             `json:"image,omitempty"`
	Warranty      string             `json:"warranty,omitempty"`
}

type TrackingInfo struct {
	Carrier           string     `json:"carrier,omitempty"`
	TrackingNumber    string     `json:"trackingNumber,omitempty"`
	TrackingURL       string     `json:"trackingUrl,omitempty"`
	EstimatedDelivery *time.Time `json:"estimatedDelivery,omitempty"`
}

type Order struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	OrderRef string `gorm:"not null;type:varchar(100);unique" json:"orderRef"`

	Customer     Customer     `gorm:"not null;type:jsonb;serializer:json" json:"customer"`
	ShippingInfo ShippingInfo `gorm:"not null;type:jsonb;serializer:json" json:"shippingInfo"`
	BillingInfo  BillingInfo  `gorm:"type:jsonb;serializer:json" json:"billingInfo"`

	Products []OrderProduct `gorm:"not null;type:jsonb;serializer:json" json:"products"`

	Subtotal     decimal.Decimal `gorm:"not null;type:decimal(10,2)" json:"subtotal"`
	ShippingCost decimal.Decimal `gorm:"not null;type:decimal(10,2);default:0" json:"shippingCost"`
	Tax          decimal.Decimal `gorm:"not null;type:decimal(10,2);default:0" json:"tax"`
	Discount     decimal.Decimal `gorm:"not null;type:decimal(10,2);default:0" json:"discount"`
	TotalPrice   decimal.Decimal `gorm:"not null;type:decimal(10,2)" json:"totalPrice"`

	PaymentMethod PaymentMethod `gorm:"not null;type:varchar(20)" json:"paymentMethod"`
	PaymentStatus PaymentStatus `gorm:"not null;type:varchar(20);default:pending" json:"paymentStatus"`
	OrderStatus   OrderStatus   `gorm:"not null;type:varchar(20);default:pending;index" json:"orderStatus"`

	TrackingInfo *TrackingInfo `gorm:"type:jsonb;serializer:json" json:"trackingInfo,omitempty"`
	Notes        string        `gorm:"type:text" json:"notes,omitempty"`

	// 金流商關聯鍵
	StripeSessionID string `gorm:"type:varchar(255)" json:"stripeSessionId,omitempty"`
	PaymentID       string `gorm:"type:varchar(255)" json:"paymentId,omitempty"`

	BaseModel
}

// CheckTotal 驗證反正規化的總額 subtotal + shipping + tax - discount == totalPrice
func (o *Order) CheckTotal() bool {
	expected := o.Subtotal.Add(o.ShippingCost).Add(o.Tax).Sub(o.Discount)
	return expected.Equal(o.TotalPrice)
}
