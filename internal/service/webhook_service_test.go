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

func stripeCheckoutEvent(eventType, orderRef string) *gateway.StripeCheckoutEvent {
	evt := &gateway.StripeCheckoutEvent{Type: eventType}
	evt.Data.Object.ID = "cs_test_123"
	evt.Data.Object.Metadata.OrderRef = orderRef
	return evt
}

func newWebhookFixture() (*WebhookService, *stubOrderRepo, *stubStripe, *stubPaystack, *stubNowPayments, *spyProducer) {
	orderRepo := newStubOrderRepo()
	stripe := &stubStripe{}
	paystack := &stubPaystack{validSig: true}
	nowPayments := &stubNowPayments{validSig: true}
	events := &spyProducer{}
	svc := NewWebhookService(orderRepo, stripe, paystack, nowPayments, events)
	return svc, orderRepo, stripe, paystack, nowPayments, events
}

func TestStripeCompletedEventMarksOrderPaid(t *testing.T) {
	svc, orderRepo, stripe, _, _, events := newWebhookFixture()
	mustCreateOrder(orderRepo, testOrder("ORD-100"))
	stripe.event = stripeCheckoutEvent("checkout.session.completed", "ORD-100")

	err := svc.HandleStripeEvent(context.Background(), []byte("{}"), "sig")

	require.NoError(t, err)
	order, _ := orderRepo.GetOrderByRef(context.Background(), "ORD-100")
	assert.Equal(t, model.PaymentStatusCompleted, order.PaymentStatus)
	require.Len(t, events.events, 1)
	assert.Equal(t, "ORD-100", events.events[0].OrderRef)
	assert.Equal(t, "ada@example.com", events.events[0].Email)
}

func TestStripeEventReplayDoesNotPublishTwice(t *testing.T) {
	svc, orderRepo, stripe, _, _, events := newWebhookFixture()
	mustCreateOrder(orderRepo, testOrder("ORD-101"))
	stripe.event = stripeCheckoutEvent("checkout.session.completed", "ORD-101")
	ctx := context.Background()

	require.NoError(t, svc.HandleStripeEvent(ctx, []byte("{}"), "sig"))
	require.NoError(t, svc.HandleStripeEvent(ctx, []byte("{}"), "sig"))

	assert.Len(t, events.events, 1, "replayed webhook must not publish a second event")
}

func TestStripeInvalidSignature(t *testing.T) {
	svc, _, stripe, _, _, events := newWebhookFixture()
	stripe.sigErr = gateway.ErrStripeSignatureInvalid

	err := svc.HandleStripeEvent(context.Background(), []byte("{}"), "bad")

	require.Error(t, err)
	assert.Equal(t, er.UnauthenticatedCode, er.CodeOf(err))
	assert.Empty(t, events.events)
}

func TestStripeUnknownEventTypeIsAcked(t *testing.T) {
	svc, _, stripe, _, _, events := newWebhookFixture()
	stripe.event = stripeCheckoutEvent("payment_intent.created", "ORD-102")

	err := svc.HandleStripeEvent(context.Background(), []byte("{}"), "sig")

	require.NoError(t, err)
	assert.Empty(t, events.events)
}

func TestStripeExpiredSessionFailsPayment(t *testing.T) {
	svc, orderRepo, stripe, _, _, events := newWebhookFixture()
	mustCreateOrder(orderRepo, testOrder("ORD-103"))
	stripe.event = stripeCheckoutEvent("checkout.session.expired", "ORD-103")

	err := svc.HandleStripeEvent(context.Background(), []byte("{}"), "sig")

	require.NoError(t, err)
	order, _ := orderRepo.GetOrderByRef(context.Background(), "ORD-103")
	assert.Equal(t, model.PaymentStatusFailed, order.PaymentStatus)
	assert.Empty(t, events.events)
}

func TestFailedEventDoesNotDowngradeCompletedOrder(t *testing.T) {
	svc, orderRepo, stripe, _, _, _ := newWebhookFixture()
	order := testOrder("ORD-104")
	order.PaymentStatus = model.PaymentStatusCompleted
	mustCreateOrder(orderRepo, order)
	stripe.event = stripeCheckoutEvent("checkout.session.expired", "ORD-104")

	err := svc.HandleStripeEvent(context.Background(), []byte("{}"), "sig")

	require.NoError(t, err)
	got, _ := orderRepo.GetOrderByRef(context.Background(), "ORD-104")
	assert.Equal(t, model.PaymentStatusCompleted, got.PaymentStatus)
}

func TestPaystackChargeSuccess(t *testing.T) {
	svc, orderRepo, _, _, _, events := newWebhookFixture()
	mustCreateOrder(orderRepo, testOrder("ORD-200"))
	payload := []byte(`{"event":"charge.success","data":{"reference":"ORD-200","status":"success"}}`)

	err := svc.HandlePaystackEvent(context.Background(), payload, "sig")

	require.NoError(t, err)
	order, _ := orderRepo.GetOrderByRef(context.Background(), "ORD-200")
	assert.Equal(t, model.PaymentStatusCompleted, order.PaymentStatus)
	assert.Len(t, events.events, 1)
}

func TestPaystackInvalidSignature(t *testing.T) {
	svc, _, _, paystack, _, _ := newWebhookFixture()
	paystack.validSig = false

	err := svc.HandlePaystackEvent(context.Background(), []byte(`{}`), "bad")

	require.Error(t, err)
	assert.Equal(t, er.UnauthenticatedCode, er.CodeOf(err))
}

func TestPaystackMissingReference(t *testing.T) {
	svc, _, _, _, _, _ := newWebhookFixture()

	err := svc.HandlePaystackEvent(context.Background(), []byte(`{"event":"charge.success","data":{}}`), "sig")

	require.Error(t, err)
	assert.Equal(t, er.BadRequestCode, er.CodeOf(err))
}

func TestNowPaymentsFinishedStatus(t *testing.T) {
	svc, orderRepo, _, _, _, events := newWebhookFixture()
	mustCreateOrder(orderRepo, testOrder("CRYPTO-300"))
	payload := []byte(`{"payment_id":123,"payment_status":"finished","order_id":"CRYPTO-300"}`)

	err := svc.HandleNowPaymentsIPN(context.Background(), payload, "sig")

	require.NoError(t, err)
	order, _ := orderRepo.GetOrderByRef(context.Background(), "CRYPTO-300")
	assert.Equal(t, model.PaymentStatusCompleted, order.PaymentStatus)
	assert.Len(t, events.events, 1)
}

func TestNowPaymentsIntermediateStatusIgnored(t *testing.T) {
	svc, orderRepo, _, _, _, events := newWebhookFixture()
	mustCreateOrder(orderRepo, testOrder("CRYPTO-301"))
	payload := []byte(`{"payment_id":124,"payment_status":"confirming","order_id":"CRYPTO-301"}`)

	err := svc.HandleNowPaymentsIPN(context.Background(), payload, "sig")

	require.NoError(t, err)
	order, _ := orderRepo.GetOrderByRef(context.Background(), "CRYPTO-301")
	assert.Equal(t, model.PaymentStatusPending, order.PaymentStatus)
	assert.Empty(t, events.events)
}

func TestNowPaymentsExpiredFailsPayment(t *testing.T) {
	svc, orderRepo, _, _, _, _ := newWebhookFixture()
	mustCreateOrder(orderRepo, testOrder("CRYPTO-302"))
	payload := []byte(`{"payment_id":125,"payment_status":"expired","order_id":"CRYPTO-302"}`)

	err := svc.HandleNowPaymentsIPN(context.Background(), payload, "sig")

	require.NoError(t, err)
	order, _ := orderRepo.GetOrderByRef(context.Background(), "CRYPTO-302")
	assert.Equal(t, model.PaymentStatusFailed, order.PaymentStatus)
}

func TestNowPaymentsInvalidSignature(t *testing.T) {
	svc, _, _, _, nowPayments, _ := newWebhookFixture()
	nowPayments.validSig = false

	err := svc.HandleNowPaymentsIPN(context.Background(), []byte(`{}`), "bad")

	require.Error(t, err)
	assert.Equal(t, er.UnauthenticatedCode, er.CodeOf(err))
}
