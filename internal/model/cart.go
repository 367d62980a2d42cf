package model

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// CartItem 購物車項目
// ItemID由(ProductID, Config)導出, 相同組合會合併數量而不是新增一筆
// AddedAt決定購物車內的顯示順序, 合併時保留最早加入的時間
type CartItem struct {
	ItemID     string          `json:"itemId"`
	ProductID  string          `json:"productId"`
	Name       string          `json:"name"`
	Image      string          `json:"image,omitempty"`
	Config     Configuration   `json:"config"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unitPrice"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
	AddedAt    time.Time       `json:"addedAt"`
}

type Cart struct {
	SessionID  string          `json:"sessionId"`
	Items      []CartItem      `json:"items"`
	TotalItems int             `json:"totalItems"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
}

// CartItemID 以(productID, config)產生合併用的識別鍵
func CartItemID(productID string, config Configuration) string {
	h := sha1.New()
	fmt.Fprintf(h, "%s|%s|%s|%s|%s", productID, config.Software, config.Ram, config.Storage, config.Processor)
	return hex.EncodeToString(h.Sum(nil))
}

// SortCartItems 依加入時間排序, 時間相同時以ItemID決定, 確保每次讀取順序一致
func SortCartItems(items []CartItem) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].AddedAt.Equal(items[j].AddedAt) {
			return items[i].ItemID < items[j].ItemID
		}
		return items[i].AddedAt.Before(items[j].AddedAt)
	})
}
