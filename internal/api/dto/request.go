package dto

import (
	"github.com/shopspring/decimal"

	"github.com/nodeforge1/nodeforge-website/internal/model"
)

// AddCartItemRequest 加入購物車
type AddCartItemRequest struct {
	ProductID string              `json:"productId"`
	Config    model.Configuration `json:"config"`
	Quantity  int                 `json:"quantity"`
}

// UpdateCartItemRequest 調整購物車項目數量
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

// ProductRequest 商品新增/更新
type ProductRequest struct {
	Name        string               `json:"name"`
	Description string               `json:"description"`
	BasePrice   decimal.Decimal      `json:"basePrice"`
	Image       string               `json:"image"`
	Specs       model.ProductSpecs   `json:"specs"`
	Options     model.ProductOptions `json:"options"`
}

func (r *ProductRequest) ToModel() *model.Product {
	return &model.Product{
		Name:        r.Name,
		Description: r.Description,
		BasePrice:   r.BasePrice,
		Image:       r.Image,
		Specs:       r.Specs,
		Options:     r.Options,
	}
}

// CreateOrderRequest 建立訂單
// 金額欄位是client算好的快照, server端會用CheckTotal驗證一致性
type CreateOrderRequest struct {
	Customer      model.Customer       `json:"customer"`
	ShippingInfo  model.ShippingInfo   `json:"shippingInfo"`
	BillingInfo   model.BillingInfo    `json:"billingInfo"`
	Products      []model.OrderProduct `json:"products"`
	Subtotal      decimal.Decimal      `json:"subtotal"`
	ShippingCost  decimal.Decimal      `json:"shippingCost"`
	Tax           decimal.Decimal      `json:"tax"`
	Discount      decimal.Decimal      `json:"discount"`
	TotalPrice    decimal.Decimal      `json:"totalPrice"`
	PaymentMethod string               `json:"paymentMethod"`
	Notes         string               `json:"notes,omitempty"`
}

func (r *CreateOrderRequest) ToModel() *model.Order {
	return &model.Order{
		Customer:      r.Customer,
		ShippingInfo:  r.ShippingInfo,
		BillingInfo:   r.BillingInfo,
		Products:      r.Products,
		Subtotal:      r.Subtotal,
		ShippingCost:  r.ShippingCost,
		Tax:           r.Tax,
		Discount:      r.Discount,
		TotalPrice:    r.TotalPrice,
		PaymentMethod: model.PaymentMethod(r.PaymentMethod),
		Notes:         r.Notes,
	}
}

// UpdateOrderStatusRequest 管理員更新訂單, nil欄位不動
type UpdateOrderStatusRequest struct {
	OrderStatus   *string             `json:"orderStatus,omitempty"`
	PaymentStatus *string             `json:"paymentStatus,omitempty"`
	TrackingInfo  *model.TrackingInfo `json:"trackingInfo,omitempty"`
	Notes         *string             `json:"notes,omitempty"`
}

// CheckoutRequest 發起結帳
// PayCurrency只有crypto用, 空字串讓付款頁自選幣別
type CheckoutRequest struct {
	OrderRef    string `json:"orderRef"`
	PayCurrency string `json:"payCurrency,omitempty"`
}

// LoginRequest 後台登入
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
