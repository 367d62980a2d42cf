package service

import (
	"context"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nodeforge1/nodeforge-website/internal/infra/repository/db"
	"github.com/nodeforge1/nodeforge-website/internal/model"
	"github.com/nodeforge1/nodeforge-website/internal/pkg/er"
)

func newOrderService() (*OrderService, *stubOrderRepo, *stubIdemRepo) {
	orderRepo := newStubOrderRepo()
	idemRepo := newStubIdemRepo()
	return NewOrderService(orderRepo, idemRepo), orderRepo, idemRepo
}

func TestCreateOrderAssignsRefAndDefaults(t *testing.T) {
	svc, _, _ := newOrderService()

	order := testOrder("")
	created, replayed, err := svc.CreateOrder(context.Background(), order, "")

	require.NoError(t, err)
	assert.False(t, replayed)
	assert.True(t, strings.HasPrefix(created.OrderRef, "ORD-"))
	assert.Equal(t, model.PaymentStatusPending, created.PaymentStatus)
	assert.Equal(t, model.OrderStatusPending, created.OrderStatus)
}

func TestCreateOrderCryptoRefPrefix(t *testing.T) {
	svc, _, _ := newOrderService()

	order := testOrder("")
	order.PaymentMethod = model.PaymentMethodCrypto
	created, _, err := svc.CreateOrder(context.Background(), order, "")

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(created.OrderRef, "CRYPTO-"))
}

func TestCreateOrderRejectsTotalMismatch(t *testing.T) {
	svc, _, _ := newOrderService()

	order := testOrder("")
	order.TotalPrice = decimal.NewFromInt(999)
	_, _, err := svc.CreateOrder(context.Background(), order, "")

	require.Error(t, err)
	assert.Equal(t, er.BadRequestCode, er.CodeOf(err))
	assert.Contains(t, err.Error(), "totalPrice")
}

func TestCreateOrderValidation(t *testing.T) {
	svc, _, _ := newOrderService()
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(o *model.Order)
	}{
		{"missing email", func(o *model.Order) { o.Customer.Email = "" }},
		{"invalid email", func(o *model.Order) { o.Customer.Email = "not-an-email" }},
		{"missing shipping city", func(o *model.Order) { o.ShippingInfo.City = "" }},
		{"no products", func(o *model.Order) { o.Products = nil }},
		{"zero quantity", func(o *model.Order) { o.Products[0].Quantity = 0 }},
		{"zero unit amount", func(o *model.Order) {
			o.Products[0].BasePrice = decimal.Zero
			o.Products[0].Configuration.Ram.Price = decimal.Zero
		}},
		{"negative option cancels unit amount", func(o *model.Order) {
			o.Products[0].BasePrice = decimal.NewFromInt(100)
			o.Products[0].Configuration.Ram.Price = decimal.NewFromInt(-100)
		}},
		{"bad payment method", func(o *model.Order) { o.PaymentMethod = "iou" }},
		{"negative discount", func(o *model.Order) { o.Discount = decimal.NewFromInt(-5) }},
		{"billing required", func(o *model.Order) { o.BillingInfo = model.BillingInfo{} }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			order := testOrder("")
			tc.mutate(order)
			_, _, err := svc.CreateOrder(ctx, order, "")
			require.Error(t, err)
			assert.Equal(t, er.BadRequestCode, er.CodeOf(err))
		})
	}
}

func TestCreateOrderIdempotencyReplay(t *testing.T) {
	svc, _, _ := newOrderService()
	ctx := context.Background()

	first, replayed, err := svc.CreateOrder(ctx, testOrder(""), "idem-key-1")
	require.NoError(t, err)
	require.False(t, replayed)

	second, replayed, err := svc.CreateOrder(ctx, testOrder(""), "idem-key-1")
	require.NoError(t, err)

	assert.True(t, replayed)
	assert.Equal(t, first.OrderRef, second.OrderRef)
}

func TestCreateOrderReleasesKeyOnFailure(t *testing.T) {
	svc, orderRepo, idemRepo := newOrderService()
	ctx := context.Background()

	orderRepo.createErr = assert.AnError
	_, _, err := svc.CreateOrder(ctx, testOrder(""), "idem-key-2")
	require.Error(t, err)

	// 鍵已釋放, 重試要能成功
	orderRepo.createErr = nil
	_, replayed, err := svc.CreateOrder(ctx, testOrder(""), "idem-key-2")
	require.NoError(t, err)
	assert.False(t, replayed)
	assert.NotEmpty(t, idemRepo.keys["idem-key-2"])
}

func TestGetOrderNotFound(t *testing.T) {
	svc, _, _ := newOrderService()

	_, err := svc.GetOrder(context.Background(), 42)

	require.Error(t, err)
	assert.Equal(t, er.NotFoundCode, er.CodeOf(err))
}

func TestListOrdersRejectsInvalidFilter(t *testing.T) {
	svc, _, _ := newOrderService()

	_, _, err := svc.ListOrders(context.Background(), 1, 10, db.OrderFilter{OrderStatus: "teleported"})

	require.Error(t, err)
	assert.Equal(t, er.BadRequestCode, er.CodeOf(err))
}

func TestUpdateOrderStatus(t *testing.T) {
	svc, orderRepo, _ := newOrderService()
	ctx := context.Background()
	order := mustCreateOrder(orderRepo, testOrder("ORD-1"))

	shipped := string(model.OrderStatusShipped)
	tracking := &model.TrackingInfo{Carrier: "DHL", TrackingNumber: "JD0001"}
	updated, err := svc.UpdateOrderStatus(ctx, order.ID, OrderStatusUpdate{
		OrderStatus:  &shipped,
		TrackingInfo: tracking,
	})

	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusShipped, updated.OrderStatus)
	require.NotNil(t, updated.TrackingInfo)
	assert.Equal(t, "JD0001", updated.TrackingInfo.TrackingNumber)
}

func TestUpdateOrderStatusRejectsInvalidStatus(t *testing.T) {
	svc, orderRepo, _ := newOrderService()
	order := mustCreateOrder(orderRepo, testOrder("ORD-2"))

	bogus := "vaporized"
	_, err := svc.UpdateOrderStatus(context.Background(), order.ID, OrderStatusUpdate{OrderStatus: &bogus})

	require.Error(t, err)
	assert.Equal(t, er.BadRequestCode, er.CodeOf(err))
}

func TestUpdateOrderStatusRequiresFields(t *testing.T) {
	svc, orderRepo, _ := newOrderService()
	order := mustCreateOrder(orderRepo, testOrder("ORD-3"))

	_, err := svc.UpdateOrderStatus(context.Background(), order.ID, OrderStatusUpdate{})

	require.Error(t, err)
	assert.Equal(t, er.BadRequestCode, er.CodeOf(err))
}

func TestDeleteOrderNotFound(t *testing.T) {
	svc, _, _ := newOrderService()

	err := svc.DeleteOrder(context.Background(), 99)

	require.Error(t, err)
	assert.Equal(t, er.NotFoundCode, er.CodeOf(err))
}

func TestDashboardStats(t *testing.T) {
	svc, orderRepo, _ := newOrderService()
	ctx := context.Background()

	paid := testOrder("ORD-10")
	paid.PaymentStatus = model.PaymentStatusCompleted
	mustCreateOrder(orderRepo, paid)
	mustCreateOrder(orderRepo, testOrder("ORD-11"))
	failed := testOrder("ORD-12")
	failed.PaymentStatus = model.PaymentStatusFailed
	mustCreateOrder(orderRepo, failed)

	stats, err := svc.GetDashboardStats(ctx)

	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.TotalOrders)
	assert.Equal(t, int64(1), stats.PendingPayments)
	assert.Equal(t, int64(1), stats.CompletedPayments)
	assert.Equal(t, int64(1), stats.FailedPayments)
	assert.True(t, decimal.NewFromInt(1300).Equal(stats.TotalRevenue), "got %s", stats.TotalRevenue)
}
