package db

import (
	"context"
	"errors"

	"github.com/nodeforge1/nodeforge-website/internal/model"
	"gorm.io/gorm"
)

// ProductFilter 商品列表查詢條件, 零值代表不過濾
type ProductFilter struct {
	Name     string
	MinPrice string
	MaxPrice string
}

type IProductRepository interface {
	CreateProduct(ctx context.Context, product *model.Product) error
	GetProductByID(ctx context.Context, productID string) (*model.Product, error)
	GetProductsPaginated(ctx context.Context, page, pageSize int, filter ProductFilter) ([]model.Product, int64, error)
	UpdateProduct(ctx context.Context, product *model.Product) error
	DeleteProduct(ctx context.Context, productID string) (bool, error)
}

type ProductRepo struct {
	db *DbDao
}

func NewProductRepo(db *DbDao) *ProductRepo {
	return &ProductRepo{db: db}
}

// Create - 創建商品
func (s *ProductRepo) CreateProduct(ctx context.Context, product *model.Product) error {
	return s.db.WithContext(ctx).Create(product).Error
}

// Read - 根據對外ID查詢商品, 不存在回傳nil
func (s *ProductRepo) GetProductByID(ctx context.Context, productID string) (*model.Product, error) {
	var product model.Product
	err := s.db.WithContext(ctx).First(&product, "product_id = ?", productID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// 分頁查詢商品, 支援名稱模糊搜尋與價格區間
func (s *ProductRepo) GetProductsPaginated(ctx context.Context, page, pageSize int, filter ProductFilter) ([]model.Product, int64, error) {
	var products []model.Product
	var total int64

	offset := (page - 1) * pageSize
	query := s.db.WithContext(ctx).Model(&model.Product{})

	if filter.Name != "" {
		query = query.Where("name ILIKE ?", "%"+filter.Name+"%")
	}
	if filter.MinPrice != "" {
		query = query.Where("base_price >= ?", filter.MinPrice)
	}
	if filter.MaxPrice != "" {
		query = query.Where("base_price <= ?", filter.MaxPrice)
	}

	// 計算總數
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// 分頁查詢
	err := query.Offset(offset).Limit(pageSize).Find(&products).Error

	return products, total, err
}

// Update - 更新商品
func (s *ProductRepo) UpdateProduct(ctx context.Context, product *model.Product) error {
	return s.db.WithContext(ctx).Save(product).Error
}

// Delete - 硬刪除商品, 回傳是否確實刪除
func (s *ProductRepo) DeleteProduct(ctx context.Context, productID string) (bool, error) {
	result := s.db.WithContext(ctx).Where("product_id = ?", productID).Delete(&model.Product{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

var _ IProductRepository = (*ProductRepo)(nil)
