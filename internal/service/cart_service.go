package service

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nodeforge1/nodeforge-website/internal/infra/repository/redis_repo"
	"github.com/nodeforge1/nodeforge-website/internal/model"
	"github.com/nodeforge1/nodeforge-website/internal/pkg/er"
	"github.com/nodeforge1/nodeforge-website/internal/pricing"
)

const maxCartQuantity = 99

type ICartService interface {
	GetCart(ctx context.Context, sessionID string) (*model.Cart, error)
	AddItem(ctx context.Context, sessionID, productID string, config model.Configuration, quantity int) (*model.Cart, error)
	UpdateQuantity(ctx context.Context, sessionID, itemID string, quantity int) (*model.Cart, error)
	RemoveItem(ctx context.Context, sessionID, itemID string) (*model.Cart, error)
	ClearCart(ctx context.Context, sessionID string) error
}

type CartService struct {
	cartRepo    redis_repo.ICartRepository
	productRepo productGetter
}

// productGetter 購物車只需要讀單一商品
type productGetter interface {
	GetProductByID(ctx context.Context, productID string) (*model.Product, error)
}

func NewCartService(cartRepo redis_repo.ICartRepository, productRepo productGetter) *CartService {
	return &CartService{cartRepo: cartRepo, productRepo: productRepo}
}

// GetCart 回傳整個購物車與彙總值
func (s *CartService) GetCart(ctx context.Context, sessionID string) (*model.Cart, error) {
	if sessionID == "" {
		return nil, er.New(er.BadRequestCode, "session id is required")
	}

	items, err := s.cartRepo.GetItems(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return buildCart(sessionID, items), nil
}

// AddItem 加入商品, 相同(productID, config)組合會合併數量
// 單價在這裡以商品目前定價重算, 不信任client傳來的價格
// 錯誤:
//   - 400: 數量不合法或選項不存在
//   - 404: 商品不存在
func (s *CartService) AddItem(ctx context.Context, sessionID, productID string, config model.Configuration, quantity int) (*model.Cart, error) {
	if sessionID == "" {
		return nil, er.New(er.BadRequestCode, "session id is required")
	}
	if quantity < 1 || quantity > maxCartQuantity {
		return nil, er.Newf(er.BadRequestCode, "quantity must be between 1 and %d", maxCartQuantity)
	}

	product, err := s.productRepo.GetProductByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, er.New(er.NotFoundCode, "product not found")
	}

	unitPrice, err := pricing.Calculate(product, config)
	if err != nil {
		if errors.Is(err, pricing.ErrOptionNotFound) {
			return nil, er.New(er.BadRequestCode, err.Error())
		}
		return nil, err
	}

	itemID := model.CartItemID(productID, config)

	items, err := s.cartRepo.GetItems(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	newQuantity := quantity
	addedAt := time.Now()
	for _, existing := range items {
		if existing.ItemID == itemID {
			newQuantity += existing.Quantity
			// 合併時保留原本的加入時間, 項目不會跳到購物車最後面
			addedAt = existing.AddedAt
			break
		}
	}
	if newQuantity > maxCartQuantity {
		newQuantity = maxCartQuantity
	}

	item := model.CartItem{
		ItemID:     itemID,
		ProductID:  productID,
		Name:       product.Name,
		Image:      product.Image,
		Config:     config,
		Quantity:   newQuantity,
		UnitPrice:  unitPrice,
		TotalPrice: unitPrice.Mul(decimal.NewFromInt(int64(newQuantity))),
		AddedAt:    addedAt,
	}
	if err := s.cartRepo.UpsertItem(ctx, sessionID, item); err != nil {
		return nil, err
	}

	return s.GetCart(ctx, sessionID)
}

// UpdateQuantity 設定指定項目的數量, 設為0等同移除
// 錯誤:
//   - 400: 數量不合法
//   - 404: 項目不存在
func (s *CartService) UpdateQuantity(ctx context.Context, sessionID, itemID string, quantity int) (*model.Cart, error) {
	if sessionID == "" {
		return nil, er.New(er.BadRequestCode, "session id is required")
	}
	if quantity < 0 || quantity > maxCartQuantity {
		return nil, er.Newf(er.BadRequestCode, "quantity must be between 0 and %d", maxCartQuantity)
	}

	items, err := s.cartRepo.GetItems(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	var target *model.CartItem
	for i := range items {
		if items[i].ItemID == itemID {
			target = &items[i]
			break
		}
	}
	if target == nil {
		return nil, er.New(er.NotFoundCode, "cart item not found")
	}

	if quantity == 0 {
		if err := s.cartRepo.DeleteItem(ctx, sessionID, itemID); err != nil {
			return nil, err
		}
		return s.GetCart(ctx, sessionID)
	}

	target.Quantity = quantity
	target.TotalPrice = target.UnitPrice.Mul(decimal.NewFromInt(int64(quantity)))
	if err := s.cartRepo.UpsertItem(ctx, sessionID, *target); err != nil {
		return nil, err
	}
	return s.GetCart(ctx, sessionID)
}

// RemoveItem 移除指定項目, 項目不存在時視為已移除
func (s *CartService) RemoveItem(ctx context.Context, sessionID, itemID string) (*model.Cart, error) {
	if sessionID == "" {
		return nil, er.New(er.BadRequestCode, "session id is required")
	}

	if err := s.cartRepo.DeleteItem(ctx, sessionID, itemID); err != nil {
		return nil, err
	}
	return s.GetCart(ctx, sessionID)
}

// ClearCart 清空購物車
func (s *CartService) ClearCart(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return er.New(er.BadRequestCode, "session id is required")
	}
	return s.cartRepo.Clear(ctx, sessionID)
}

func buildCart(sessionID string, items []model.CartItem) *model.Cart {
	cart := &model.Cart{
		SessionID:  sessionID,
		Items:      items,
		TotalPrice: decimal.Zero,
	}
	for _, item := range items {
		cart.TotalItems += item.Quantity
		cart.TotalPrice = cart.TotalPrice.Add(item.TotalPrice)
	}
	return cart
}

var _ ICartService = (*CartService)(nil)
