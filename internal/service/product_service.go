package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nodeforge1/nodeforge-website/internal/infra/repository/db"
	"github.com/nodeforge1/nodeforge-website/internal/model"
	"github.com/nodeforge1/nodeforge-website/internal/pkg/er"
)

const (
	defaultPageSize = 100
	maxPageSize     = 1000
)

type IProductService interface {
	CreateProduct(ctx context.Context, product *model.Product) (*model.Product, error)
	GetProduct(ctx context.Context, productID string) (*model.Product, error)
	ListProducts(ctx context.Context, page, pageSize int, filter db.ProductFilter) ([]model.Product, int64, error)
	UpdateProduct(ctx context.Context, productID string, updated *model.Product) (*model.Product, error)
	DeleteProduct(ctx context.Context, productID string) error
}

type ProductService struct {
	productRepo db.IProductRepository
}

func NewProductService(productRepo db.IProductRepository) *ProductService {
	return &ProductService{productRepo: productRepo}
}

// CreateProduct 創建商品
// ProductID未指定時自動產生
// 錯誤:
//   - 400: 欄位驗證失敗
func (s *ProductService) CreateProduct(ctx context.Context, product *model.Product) (*model.Product, error) {
	if err := validateProduct(product); err != nil {
		return nil, err
	}

	if product.ProductID == "" {
		product.ProductID = fmt.Sprintf("prod-%s", uuid.New().String())
	}
	product.CreatedAt = time.Now()
	product.UpdatedAt = time.Now()

	if err := s.productRepo.CreateProduct(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// 錯誤:
//   - 404: 商品不存在
func (s *ProductService) GetProduct(ctx context.Context, productID string) (*model.Product, error) {
	product, err := s.productRepo.GetProductByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, er.New(er.NotFoundCode, "product not found")
	}
	return product, nil
}

func (s *ProductService) ListProducts(ctx context.Context, page, pageSize int, filter db.ProductFilter) ([]model.Product, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return s.productRepo.GetProductsPaginated(ctx, page, pageSize, filter)
}

// UpdateProduct 整筆覆蓋更新
// 錯誤:
//   - 400: 欄位驗證失敗
//   - 404: 商品不存在
func (s *ProductService) UpdateProduct(ctx context.Context, productID string, updated *model.Product) (*model.Product, error) {
	existing, err := s.productRepo.GetProductByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, er.New(er.NotFoundCode, "product not found")
	}

	if err := validateProduct(updated); err != nil {
		return nil, err
	}

	updated.ID = existing.ID
	updated.ProductID = existing.ProductID
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now()

	if err := s.productRepo.UpdateProduct(ctx, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

// 錯誤:
//   - 404: 商品不存在
func (s *ProductService) DeleteProduct(ctx context.Context, productID string) error {
	deleted, err := s.productRepo.DeleteProduct(ctx, productID)
	if err != nil {
		return err
	}
	if !deleted {
		return er.New(er.NotFoundCode, "product not found")
	}
	return nil
}

// validateProduct 商品欄位驗證
// 必填欄位 + basePrice > 0 + defaultSpecs必須能對應到options內的選項
func validateProduct(product *model.Product) error {
	if product.Name == "" {
		return er.New(er.BadRequestCode, "name is required")
	}
	if product.Description == "" {
		return er.New(er.BadRequestCode, "description is required")
	}
	if !product.BasePrice.IsPositive() {
		return er.New(er.BadRequestCode, "basePrice must be greater than 0")
	}
	if product.Image == "" {
		return er.New(er.BadRequestCode, "image is required")
	}

	return validateDefaultSpecs(product)
}

// defaultSpecs的每個值必須等於對應options清單中某個選項的label
func validateDefaultSpecs(product *model.Product) error {
	specs := product.Specs.DefaultSpecs

	if specs.Ram != "" && !containsRam(product.Options.Ram, specs.Ram) {
		return er.Newf(er.BadRequestCode, "default ram %q has no matching option", specs.Ram)
	}
	if specs.Storage != "" && !containsStorage(product.Options.Storage, specs.Storage) {
		return er.Newf(er.BadRequestCode, "default storage %q has no matching option", specs.Storage)
	}
	if specs.Processor != "" && !containsProcessor(product.Options.Processor, specs.Processor) {
		return er.Newf(er.BadRequestCode, "default processor %q has no matching option", specs.Processor)
	}
	if product.Specs.Software != "" && !containsSoftware(product.Options.Software, product.Specs.Software) {
		return er.Newf(er.BadRequestCode, "default software %q has no matching option", product.Specs.Software)
	}
	return nil
}

func containsSoftware(opts []model.SoftwareOption, name string) bool {
	for _, opt := range opts {
		if opt.Name == name {
			return true
		}
	}
	return false
}

func containsRam(opts []model.RamOption, size string) bool {
	for _, opt := range opts {
		if opt.Size == size {
			return true
		}
	}
	return false
}

func containsStorage(opts []model.StorageOption, typ string) bool {
	for _, opt := range opts {
		if opt.Type == typ {
			return true
		}
	}
	return false
}

func containsProcessor(opts []model.ProcessorOption, m string) bool {
	for _, opt := range opts {
		if opt.Model == m {
			return true
		}
	}
	return false
}

var _ IProductService = (*ProductService)(nil)
