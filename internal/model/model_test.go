package model

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCheckTotal(t *testing.T) {
	order := Order{
		Subtotal:     decimal.NewFromInt(1200),
		ShippingCost: decimal.NewFromInt(20),
		Tax:          decimal.NewFromInt(80),
		Discount:     decimal.NewFromInt(100),
		TotalPrice:   decimal.NewFromInt(1200),
	}
	assert.True(t, order.CheckTotal())

	order.TotalPrice = decimal.NewFromInt(1300)
	assert.False(t, order.CheckTotal())
}

func TestCartItemIDStableForSameConfig(t *testing.T) {
	a := CartItemID("node-one", Configuration{Ram: "32GB", Storage: "2TB SSD"})
	b := CartItemID("node-one", Configuration{Ram: "32GB", Storage: "2TB SSD"})
	assert.Equal(t, a, b)
}

func TestCartItemIDDiffersByConfig(t *testing.T) {
	a := CartItemID("node-one", Configuration{Ram: "32GB"})
	b := CartItemID("node-one", Configuration{Ram: "64GB"})
	c := CartItemID("node-two", Configuration{Ram: "32GB"})
	assert.NotEqual(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestStatusValidation(t *testing.T) {
	assert.True(t, IsValidPaymentMethod("card"))
	assert.True(t, IsValidPaymentMethod("crypto"))
	assert.False(t, IsValidPaymentMethod("barter"))

	assert.True(t, IsValidOrderStatus("shipped"))
	assert.False(t, IsValidOrderStatus("teleported"))

	assert.True(t, IsValidPaymentStatus("refunded"))
	assert.False(t, IsValidPaymentStatus("maybe"))
}

func TestSortCartItemsByAddedAt(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	items := []CartItem{
		{ItemID: "c", AddedAt: base.Add(2 * time.Minute)},
		{ItemID: "a", AddedAt: base},
		{ItemID: "b", AddedAt: base.Add(time.Minute)},
	}

	SortCartItems(items)

	assert.Equal(t, "a", items[0].ItemID)
	assert.Equal(t, "b", items[1].ItemID)
	assert.Equal(t, "c", items[2].ItemID)
}

func TestSortCartItemsTiesBreakByItemID(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	items := []CartItem{
		{ItemID: "b", AddedAt: base},
		{ItemID: "a", AddedAt: base},
	}

	SortCartItems(items)

	assert.Equal(t, "a", items[0].ItemID)
	assert.Equal(t, "b", items[1].ItemID)
}
