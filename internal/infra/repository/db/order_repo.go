package db

import (
	"context"
	"errors"

	"github.com/nodeforge1/nodeforge-website/internal/model"
	"gorm.io/gorm"
)

// OrderFilter 訂單列表查詢條件, 空字串代表不過濾
type OrderFilter struct {
	OrderStatus   string
	PaymentStatus string
}

type IOrderRepository interface {
	CreateOrder(ctx context.Context, order *model.Order) error
	GetOrderByID(ctx context.Context, id uint) (*model.Order, error)
	GetOrderByRef(ctx context.Context, orderRef string) (*model.Order, error)
	GetOrdersPaginated(ctx context.Context, page, pageSize int, filter OrderFilter) ([]model.Order, int64, error)
	UpdateOrder(ctx context.Context, order *model.Order) error
	UpdateOrderStatus(ctx context.Context, id uint, fields map[string]any) (bool, error)
	SetGatewayRef(ctx context.Context, id uint, fields map[string]any) error
	CompletePaymentByRef(ctx context.Context, orderRef string) (bool, error)
	FailPaymentByRef(ctx context.Context, orderRef string) (bool, error)
	DeleteOrder(ctx context.Context, id uint) (bool, error)
	CountByPaymentStatus(ctx context.Context, status model.PaymentStatus) (int64, error)
	CountOrders(ctx context.Context) (int64, error)
	SumCompletedRevenue(ctx context.Context) (string, error)
}

type OrderRepo struct {
	db *DbDao
}

func NewOrderRepo(db *DbDao) *OrderRepo {
	return &OrderRepo{db: db}
}

// Create - 創建訂單
func (s *OrderRepo) CreateOrder(ctx context.Context, order *model.Order) error {
	return s.db.WithContext(ctx).Create(order).Error
}

// Read - 根據儲存層ID查詢訂單, 不存在回傳nil
func (s *OrderRepo) GetOrderByID(ctx context.Context, id uint) (*model.Order, error) {
	var order model.Order
	err := s.db.WithContext(ctx).First(&order, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// Read - 根據訂單編號查詢訂單, 不存在回傳nil
// 訂單編號是webhook唯一的關聯鍵
func (s *OrderRepo) GetOrderByRef(ctx context.Context, orderRef string) (*model.Order, error) {
	var order model.Order
	err := s.db.WithContext(ctx).First(&order, "order_ref = ?", orderRef).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// 分頁查詢訂單, 新訂單在前
func (s *OrderRepo) GetOrdersPaginated(ctx context.Context, page, pageSize int, filter OrderFilter) ([]model.Order, int64, error) {
	var orders []model.Order
	var total int64

	offset := (page - 1) * pageSize
	query := s.db.WithContext(ctx).Model(&model.Order{})

	if filter.OrderStatus != "" {
		query = query.Where("order_status = ?", filter.OrderStatus)
	}
	if filter.PaymentStatus != "" {
		query = query.Where("payment_status = ?", filter.PaymentStatus)
	}

	// 計算總數
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// 分頁查詢
	err := query.Order("created_at DESC").Offset(offset).Limit(pageSize).Find(&orders).Error

	return orders, total, err
}

// Update - 整筆更新訂單
func (s *OrderRepo) UpdateOrder(ctx context.Context, order *model.Order) error {
	return s.db.WithContext(ctx).Save(order).Error
}

// Update - 更新訂單狀態欄位, 回傳是否有資料被更新
func (s *OrderRepo) UpdateOrderStatus(ctx context.Context, id uint, fields map[string]any) (bool, error) {
	result := s.db.WithContext(ctx).Model(&model.Order{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// Update - 寫入金流商關聯鍵 (stripe session id / nowpayments payment id)
func (s *OrderRepo) SetGatewayRef(ctx context.Context, id uint, fields map[string]any) error {
	return s.db.WithContext(ctx).Model(&model.Order{}).Where("id = ?", id).Updates(fields).Error
}

// CompletePaymentByRef 冪等的付款完成轉移
// 條件式更新: 已經completed的訂單不會再被更新, RowsAffected=0
func (s *OrderRepo) CompletePaymentByRef(ctx context.Context, orderRef string) (bool, error) {
	result := s.db.WithContext(ctx).Model(&model.Order{}).
		Where("order_ref = ? AND payment_status <> ?", orderRef, model.PaymentStatusCompleted).
		Update("payment_status", model.PaymentStatusCompleted)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// FailPaymentByRef 付款失敗轉移
// 已completed或refunded的訂單不可退回failed
func (s *OrderRepo) FailPaymentByRef(ctx context.Context, orderRef string) (bool, error) {
	result := s.db.WithContext(ctx).Model(&model.Order{}).
		Where("order_ref = ? AND payment_status NOT IN ?", orderRef,
			[]model.PaymentStatus{model.PaymentStatusCompleted, model.PaymentStatusRefunded, model.PaymentStatusFailed}).
		Update("payment_status", model.PaymentStatusFailed)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// Delete - 硬刪除訂單, 回傳是否確實刪除
func (s *OrderRepo) DeleteOrder(ctx context.Context, id uint) (bool, error) {
	result := s.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Order{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// 取得特定付款狀態的訂單數, dashboard用
func (s *OrderRepo) CountByPaymentStatus(ctx context.Context, status model.PaymentStatus) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.Order{}).Where("payment_status = ?", status).Count(&count).Error
	return count, err
}

func (s *OrderRepo) CountOrders(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.Order{}).Count(&count).Error
	return count, err
}

// 已完成付款的營收加總, dashboard用
func (s *OrderRepo) SumCompletedRevenue(ctx context.Context) (string, error) {
	var total *string
	err := s.db.WithContext(ctx).Model(&model.Order{}).
		Where("payment_status = ?", model.PaymentStatusCompleted).
		Select("COALESCE(SUM(total_price), 0)").
		Row().
		Scan(&total)
	if err != nil {
		return "0", err
	}
	if total == nil {
		return "0", nil
	}
	return *total, nil
}

var _ IOrderRepository = (*OrderRepo)(nil)
