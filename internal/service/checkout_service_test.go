package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nodeforge1/nodeforge-website/internal/infra/gateway"
	"github.com/nodeforge1/nodeforge-website/internal/model"
	"github.com/nodeforge1/nodeforge-website/internal/pkg/er"
)

func newCheckoutFixture() (*CheckoutService, *stubOrderRepo, *stubStripe, *stubPaystack, *stubNowPayments, *spyProducer) {
	orderRepo := newStubOrderRepo()
	stripe := &stubStripe{}
	paystack := &stubPaystack{}
	nowPayments := &stubNowPayments{}
	rates := &stubRateService{rate: 1500}
	prod := &spyProducer{}
	svc := NewCheckoutService(orderRepo, stripe, paystack, nowPayments, rates, prod, "https://nodeforge.example.com")
	return svc, orderRepo, stripe, paystack, nowPayments, prod
}

func TestCreateStripeSessionBuildsLineItems(t *testing.T) {
	svc, orderRepo, stripe, _, _, _ := newCheckoutFixture()
	mustCreateOrder(orderRepo, testOrder("ORD-500"))

	redirect, err := svc.CreateStripeSession(context.Background(), "ORD-500")

	require.NoError(t, err)
	assert.Equal(t, "stripe", redirect.Provider)
	assert.NotEmpty(t, redirect.RedirectURL)

	// 商品行 + 運費行 + 稅金行
	require.Len(t, stripe.lastItems, 3)
	// (500 + 100選配) * 100美分
	assert.Equal(t, int64(60000), stripe.lastItems[0].UnitAmount)
	assert.Equal(t, 2, stripe.lastItems[0].Quantity)
	assert.Equal(t, int64(2000), stripe.lastItems[1].UnitAmount)
	assert.Equal(t, int64(8000), stripe.lastItems[2].UnitAmount)

	// session id要寫回訂單
	order, _ := orderRepo.GetOrderByRef(context.Background(), "ORD-500")
	assert.Equal(t, "cs_test_ORD-500", order.StripeSessionID)
}

func TestCreateStripeSessionOrderNotFound(t *testing.T) {
	svc, _, _, _, _, _ := newCheckoutFixture()

	_, err := svc.CreateStripeSession(context.Background(), "ORD-NONE")

	require.Error(t, err)
	assert.Equal(t, er.NotFoundCode, er.CodeOf(err))
}

func TestCheckoutRejectsAlreadyPaidOrder(t *testing.T) {
	svc, orderRepo, _, _, _, _ := newCheckoutFixture()
	order := testOrder("ORD-501")
	order.PaymentStatus = model.PaymentStatusCompleted
	mustCreateOrder(orderRepo, order)

	_, err := svc.CreateStripeSession(context.Background(), "ORD-501")

	require.Error(t, err)
	assert.Equal(t, er.ConflictCode, er.CodeOf(err))
}

func TestCreatePaystackTransactionConvertsToKobo(t *testing.T) {
	svc, orderRepo, _, paystack, _, _ := newCheckoutFixture()
	mustCreateOrder(orderRepo, testOrder("ORD-502"))

	redirect, err := svc.CreatePaystackTransaction(context.Background(), "ORD-502")

	require.NoError(t, err)
	assert.Equal(t, "paystack", redirect.Provider)
	// 1300 USD * 1500 NGN/USD * 100 kobo
	assert.Equal(t, int64(195000000), paystack.lastReq.Amount)
	assert.Equal(t, "NGN", paystack.lastReq.Currency)
	assert.Equal(t, "ORD-502", paystack.lastReq.Reference)
	assert.Equal(t, "ada@example.com", paystack.lastReq.Email)
}

func TestCreatePaystackTransactionRateFailure(t *testing.T) {
	orderRepo := newStubOrderRepo()
	mustCreateOrder(orderRepo, testOrder("ORD-503"))
	svc := NewCheckoutService(orderRepo, &stubStripe{}, &stubPaystack{}, &stubNowPayments{},
		&stubRateService{err: assert.AnError}, &spyProducer{}, "https://nodeforge.example.com")

	_, err := svc.CreatePaystackTransaction(context.Background(), "ORD-503")

	require.Error(t, err)
	assert.Equal(t, er.GatewayErrorCode, er.CodeOf(err))
}

func TestCreateCryptoInvoice(t *testing.T) {
	svc, orderRepo, _, _, nowPayments, _ := newCheckoutFixture()
	mustCreateOrder(orderRepo, testOrder("CRYPTO-504"))

	redirect, err := svc.CreateCryptoInvoice(context.Background(), "CRYPTO-504", "btc")

	require.NoError(t, err)
	assert.Equal(t, "nowpayments", redirect.Provider)
	assert.Equal(t, "CRYPTO-504", nowPayments.lastReq.OrderID)
	assert.Equal(t, "usd", nowPayments.lastReq.PriceCurrency)
	assert.Equal(t, "btc", nowPayments.lastReq.PayCurrency)
	assert.InDelta(t, 1300, nowPayments.lastReq.PriceAmount, 0.001)
	assert.Contains(t, nowPayments.lastReq.IpnCallbackURL, "/api/v1/webhooks/nowpayments")

	// invoice id要寫回訂單
	order, _ := orderRepo.GetOrderByRef(context.Background(), "CRYPTO-504")
	assert.Equal(t, "inv-CRYPTO-504", order.PaymentID)
}

func TestVerifyPaymentCompletesOrder(t *testing.T) {
	svc, orderRepo, _, paystack, _, prod := newCheckoutFixture()
	mustCreateOrder(orderRepo, testOrder("ORD-505"))
	paystack.verifyData = &gateway.PaystackVerifyData{Status: "success", Reference: "ORD-505"}

	result, err := svc.VerifyPayment(context.Background(), "ORD-505")

	require.NoError(t, err)
	assert.True(t, result.Paid)
	assert.Equal(t, "success", result.GatewayStatus)
	assert.Equal(t, string(model.PaymentStatusCompleted), result.PaymentStatus)

	order, _ := orderRepo.GetOrderByRef(context.Background(), "ORD-505")
	assert.Equal(t, model.PaymentStatusCompleted, order.PaymentStatus)

	// 查核完成轉移也要觸發確認信事件
	require.Len(t, prod.events, 1)
	assert.Equal(t, "ORD-505", prod.events[0].OrderRef)
}

func TestVerifyPaymentRepeatedCallPublishesOnce(t *testing.T) {
	svc, orderRepo, _, paystack, _, prod := newCheckoutFixture()
	mustCreateOrder(orderRepo, testOrder("ORD-506"))
	paystack.verifyData = &gateway.PaystackVerifyData{Status: "success", Reference: "ORD-506"}

	_, err := svc.VerifyPayment(context.Background(), "ORD-506")
	require.NoError(t, err)
	result, err := svc.VerifyPayment(context.Background(), "ORD-506")
	require.NoError(t, err)

	// 第二次查核仍回報已付款, 但不會再發事件
	assert.True(t, result.Paid)
	assert.Len(t, prod.events, 1)
}

func TestVerifyPaymentFailedTransaction(t *testing.T) {
	svc, orderRepo, _, paystack, _, prod := newCheckoutFixture()
	mustCreateOrder(orderRepo, testOrder("ORD-507"))
	paystack.verifyData = &gateway.PaystackVerifyData{Status: "failed", Reference: "ORD-507"}

	result, err := svc.VerifyPayment(context.Background(), "ORD-507")

	require.NoError(t, err)
	assert.False(t, result.Paid)
	assert.Equal(t, string(model.PaymentStatusFailed), result.PaymentStatus)
	assert.Empty(t, prod.events)
}

func TestVerifyPaymentOrderNotFound(t *testing.T) {
	svc, _, _, _, _, _ := newCheckoutFixture()

	_, err := svc.VerifyPayment(context.Background(), "ORD-NONE")

	require.Error(t, err)
	assert.Equal(t, er.NotFoundCode, er.CodeOf(err))
}

func TestVerifyPaymentGatewayFailure(t *testing.T) {
	svc, orderRepo, _, paystack, _, _ := newCheckoutFixture()
	mustCreateOrder(orderRepo, testOrder("ORD-508"))
	paystack.verifyErr = assert.AnError

	_, err := svc.VerifyPayment(context.Background(), "ORD-508")

	require.Error(t, err)
	assert.Equal(t, er.GatewayErrorCode, er.CodeOf(err))
}
