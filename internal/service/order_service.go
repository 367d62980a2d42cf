package service

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nodeforge1/nodeforge-website/internal/infra/repository/db"
	"github.com/nodeforge1/nodeforge-website/internal/model"
	"github.com/nodeforge1/nodeforge-website/internal/pkg/er"
)

// IIdempotencyRepository 訂單創建的冪等鍵儲存
type IIdempotencyRepository interface {
	Reserve(ctx context.Context, key, orderRef string) (bool, string, error)
	Release(ctx context.Context, key string) error
}

// DashboardStats 管理後台統計
type DashboardStats struct {
	TotalOrders       int64           `json:"totalOrders"`
	PendingPayments   int64           `json:"pendingPayments"`
	CompletedPayments int64           `json:"completedPayments"`
	FailedPayments    int64           `json:"failedPayments"`
	TotalRevenue      decimal.Decimal `json:"totalRevenue"`
}

// OrderStatusUpdate 管理員可更新的訂單欄位, nil代表不更新
type OrderStatusUpdate struct {
	OrderStatus   *string
	PaymentStatus *string
	TrackingInfo  *model.TrackingInfo
	Notes         *string
}

type IOrderService interface {
	CreateOrder(ctx context.Context, order *model.Order, idempotencyKey string) (*model.Order, bool, error)
	GetOrder(ctx context.Context, id uint) (*model.Order, error)
	GetOrderByRef(ctx context.Context, orderRef string) (*model.Order, error)
	ListOrders(ctx context.Context, page, pageSize int, filter db.OrderFilter) ([]model.Order, int64, error)
	UpdateOrderStatus(ctx context.Context, id uint, update OrderStatusUpdate) (*model.Order, error)
	DeleteOrder(ctx context.Context, id uint) error
	GetDashboardStats(ctx context.Context) (*DashboardStats, error)
}

type OrderService struct {
	orderRepo db.IOrderRepository
	idemRepo  IIdempotencyRepository
}

func NewOrderService(orderRepo db.IOrderRepository, idemRepo IIdempotencyRepository) *OrderService {
	return &OrderService{orderRepo: orderRepo, idemRepo: idemRepo}
}

// NewOrderRef 產生訂單編號, 這個編號是金流webhook唯一的關聯鍵
// crypto走不同前綴, 方便對帳時區分金流商
func NewOrderRef(method model.PaymentMethod) string {
	if method == model.PaymentMethodCrypto {
		return fmt.Sprintf("CRYPTO-%d", time.Now().UnixMilli())
	}
	return fmt.Sprintf("ORD-%d", time.Now().UnixMilli())
}

// CreateOrder 創建訂單
// idempotencyKey非空時會先佔用冪等鍵, 重送同一個key回傳既有訂單而非建新單
// 回傳值第二個bool代表是否為重播(既有訂單)
// 錯誤:
//   - 400: 欄位驗證失敗或總額不一致
func (s *OrderService) CreateOrder(ctx context.Context, order *model.Order, idempotencyKey string) (*model.Order, bool, error) {
	if err := validateOrder(order); err != nil {
		return nil, false, err
	}

	if order.OrderRef == "" {
		order.OrderRef = NewOrderRef(order.PaymentMethod)
	}
	if order.PaymentStatus == "" {
		order.PaymentStatus = model.PaymentStatusPending
	}
	if order.OrderStatus == "" {
		order.OrderStatus = model.OrderStatusPending
	}
	order.CreatedAt = time.Now()
	order.UpdatedAt = time.Now()

	if idempotencyKey != "" {
		reserved, existingRef, err := s.idemRepo.Reserve(ctx, idempotencyKey, order.OrderRef)
		if err != nil {
			return nil, false, err
		}
		if !reserved {
			existing, err := s.orderRepo.GetOrderByRef(ctx, existingRef)
			if err != nil {
				return nil, false, err
			}
			if existing != nil {
				return existing, true, nil
			}
			// 鍵被佔用但訂單不存在, 代表先前創建失敗卻沒釋放, 直接接手這個鍵
		}
	}

	if err := s.orderRepo.CreateOrder(ctx, order); err != nil {
		if idempotencyKey != "" {
			// 創建失敗要釋放冪等鍵讓client重試
			_ = s.idemRepo.Release(ctx, idempotencyKey)
		}
		return nil, false, err
	}
	return order, false, nil
}

// 錯誤:
//   - 404: 訂單不存在
func (s *OrderService) GetOrder(ctx context.Context, id uint) (*model.Order, error) {
	order, err := s.orderRepo.GetOrderByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, er.New(er.NotFoundCode, "order not found")
	}
	return order, nil
}

// 錯誤:
//   - 404: 訂單不存在
func (s *OrderService) GetOrderByRef(ctx context.Context, orderRef string) (*model.Order, error) {
	order, err := s.orderRepo.GetOrderByRef(ctx, orderRef)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, er.New(er.NotFoundCode, "order not found")
	}
	return order, nil
}

// ListOrders 分頁查詢訂單, 管理後台用
// 錯誤:
//   - 400: 狀態過濾條件不合法
func (s *OrderService) ListOrders(ctx context.Context, page, pageSize int, filter db.OrderFilter) ([]model.Order, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	if filter.OrderStatus != "" && !model.IsValidOrderStatus(filter.OrderStatus) {
		return nil, 0, er.Newf(er.BadRequestCode, "invalid order status %q", filter.OrderStatus)
	}
	if filter.PaymentStatus != "" && !model.IsValidPaymentStatus(filter.PaymentStatus) {
		return nil, 0, er.Newf(er.BadRequestCode, "invalid payment status %q", filter.PaymentStatus)
	}

	return s.orderRepo.GetOrdersPaginated(ctx, page, pageSize, filter)
}

// UpdateOrderStatus 管理員更新訂單狀態/物流/備註
// orderStatus與paymentStatus只有這條路徑可以被人工改寫
// 錯誤:
//   - 400: 狀態值不合法
//   - 404: 訂單不存在
func (s *OrderService) UpdateOrderStatus(ctx context.Context, id uint, update OrderStatusUpdate) (*model.Order, error) {
	fields := map[string]any{}

	if update.OrderStatus != nil {
		if !model.IsValidOrderStatus(*update.OrderStatus) {
			return nil, er.Newf(er.BadRequestCode, "invalid order status %q", *update.OrderStatus)
		}
		fields["order_status"] = *update.OrderStatus
	}
	if update.PaymentStatus != nil {
		if !model.IsValidPaymentStatus(*update.PaymentStatus) {
			return nil, er.Newf(er.BadRequestCode, "invalid payment status %q", *update.PaymentStatus)
		}
		fields["payment_status"] = *update.PaymentStatus
	}
	if update.TrackingInfo != nil {
		fields["tracking_info"] = update.TrackingInfo
	}
	if update.Notes != nil {
		fields["notes"] = *update.Notes
	}

	if len(fields) == 0 {
		return nil, er.New(er.BadRequestCode, "no fields to update")
	}
	fields["updated_at"] = time.Now()

	updated, err := s.orderRepo.UpdateOrderStatus(ctx, id, fields)
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, er.New(er.NotFoundCode, "order not found")
	}

	return s.GetOrder(ctx, id)
}

// 錯誤:
//   - 404: 訂單不存在
func (s *OrderService) DeleteOrder(ctx context.Context, id uint) error {
	deleted, err := s.orderRepo.DeleteOrder(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return er.New(er.NotFoundCode, "order not found")
	}
	return nil
}

// GetDashboardStats 管理後台統計數字
func (s *OrderService) GetDashboardStats(ctx context.Context) (*DashboardStats, error) {
	total, err := s.orderRepo.CountOrders(ctx)
	if err != nil {
		return nil, err
	}
	pending, err := s.orderRepo.CountByPaymentStatus(ctx, model.PaymentStatusPending)
	if err != nil {
		return nil, err
	}
	completed, err := s.orderRepo.CountByPaymentStatus(ctx, model.PaymentStatusCompleted)
	if err != nil {
		return nil, err
	}
	failed, err := s.orderRepo.CountByPaymentStatus(ctx, model.PaymentStatusFailed)
	if err != nil {
		return nil, err
	}
	revenue, err := s.orderRepo.SumCompletedRevenue(ctx)
	if err != nil {
		return nil, err
	}
	revenueDec, err := decimal.NewFromString(revenue)
	if err != nil {
		return nil, fmt.Errorf("invalid revenue sum %q: %w", revenue, err)
	}

	return &DashboardStats{
		TotalOrders:       total,
		PendingPayments:   pending,
		CompletedPayments: completed,
		FailedPayments:    failed,
		TotalRevenue:      revenueDec,
	}, nil
}

// validateOrder 訂單欄位驗證, 含總額不變式
func validateOrder(order *model.Order) error {
	if order.Customer.FirstName == "" || order.Customer.LastName == "" {
		return er.New(er.BadRequestCode, "customer first name and last name are required")
	}
	if order.Customer.Email == "" {
		return er.New(er.BadRequestCode, "customer email is required")
	}
	if _, err := mail.ParseAddress(order.Customer.Email); err != nil {
		return er.New(er.BadRequestCode, "customer email is invalid")
	}

	si := order.ShippingInfo
	if si.Address == "" || si.City == "" || si.State == "" || si.ZipCode == "" || si.Country == "" {
		return er.New(er.BadRequestCode, "shipping address, city, state, zipCode and country are required")
	}

	if !order.BillingInfo.SameAsShipping {
		bi := order.BillingInfo
		if bi.Address == "" || bi.City == "" || bi.Country == "" {
			return er.New(er.BadRequestCode, "billing address is required when not same as shipping")
		}
	}

	if len(order.Products) == 0 {
		return er.New(er.BadRequestCode, "order must contain at least one product")
	}
	for _, p := range order.Products {
		if p.ProductID == "" || p.Name == "" {
			return er.New(er.BadRequestCode, "order product id and name are required")
		}
		if p.Quantity < 1 {
			return er.New(er.BadRequestCode, "order product quantity must be at least 1")
		}
		if !configuredUnitPrice(p).IsPositive() {
			return er.Newf(er.BadRequestCode, "order product %s unit amount must be positive", p.ProductID)
		}
	}

	if !model.IsValidPaymentMethod(string(order.PaymentMethod)) {
		return er.Newf(er.BadRequestCode, "invalid payment method %q", order.PaymentMethod)
	}

	if order.Subtotal.IsNegative() || order.ShippingCost.IsNegative() ||
		order.Tax.IsNegative() || order.Discount.IsNegative() {
		return er.New(er.BadRequestCode, "order amounts must not be negative")
	}
	if !order.CheckTotal() {
		return er.New(er.BadRequestCode, "totalPrice does not match subtotal + shipping + tax - discount")
	}

	return nil
}

var _ IOrderService = (*OrderService)(nil)
