package redis_repo

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nodeforge1/nodeforge-website/internal/model"
	"github.com/redis/go-redis/v9"
)

// 購物車只存在redis, 不落地到db, 結帳時才轉成訂單快照
const cartTTL = 7 * 24 * time.Hour

type ICartRepository interface {
	GetItems(ctx context.Context, sessionID string) ([]model.CartItem, error)
	UpsertItem(ctx context.Context, sessionID string, item model.CartItem) error
	DeleteItem(ctx context.Context, sessionID, itemID string) error
	Clear(ctx context.Context, sessionID string) error
}

type CartRepo struct {
	cartCache *redis.Client
}

func NewCartRepo(cartCache *redis.Client) *CartRepo {
	return &CartRepo{cartCache: cartCache}
}

func generateCartItemsKey(sessionID string) string {
	return fmt.Sprintf("cart:%s:items", sessionID)
}

// GetItems 取出該session購物車的所有項目, 依加入時間排序
// hash欄位迭代沒有固定順序, 不排序的話每次讀取項目會亂跳
func (r *CartRepo) GetItems(ctx context.Context, sessionID string) ([]model.CartItem, error) {
	itemsKey := generateCartItemsKey(sessionID)

	raw, err := r.cartCache.HGetAll(ctx, itemsKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get cart items: %w", err)
	}

	items := make([]model.CartItem, 0, len(raw))
	for itemID, data := range raw {
		var item model.CartItem
		if err := json.Unmarshal([]byte(data), &item); err != nil {
			return nil, fmt.Errorf("invalid cart item %s: %w", itemID, err)
		}
		items = append(items, item)
	}
	model.SortCartItems(items)

	return items, nil
}

// UpsertItem 寫入或覆蓋單一項目, 並刷新購物車TTL
func (r *CartRepo) UpsertItem(ctx context.Context, sessionID string, item model.CartItem) error {
	itemsKey := generateCartItemsKey(sessionID)

	data, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("failed to marshal cart item: %w", err)
	}

	pipe := r.cartCache.TxPipeline()
	pipe.HSet(ctx, itemsKey, item.ItemID, data)
	pipe.Expire(ctx, itemsKey, cartTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to upsert cart item: %w", err)
	}
	return nil
}

// DeleteItem 從購物車中刪除指定項目
func (r *CartRepo) DeleteItem(ctx context.Context, sessionID, itemID string) error {
	itemsKey := generateCartItemsKey(sessionID)

	if err := r.cartCache.HDel(ctx, itemsKey, itemID).Err(); err != nil {
		return fmt.Errorf("failed to delete item from cart: %w", err)
	}
	return nil
}

// Clear 清空購物車
func (r *CartRepo) Clear(ctx context.Context, sessionID string) error {
	itemsKey := generateCartItemsKey(sessionID)

	if err := r.cartCache.Del(ctx, itemsKey).Err(); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

var _ ICartRepository = (*CartRepo)(nil)
