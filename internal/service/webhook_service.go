package service

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/nodeforge1/nodeforge-website/internal/event"
	"github.com/nodeforge1/nodeforge-website/internal/infra/gateway"
	"github.com/nodeforge1/nodeforge-website/internal/infra/producer"
	"github.com/nodeforge1/nodeforge-website/internal/infra/repository/db"
	"github.com/nodeforge1/nodeforge-website/internal/pkg/er"
)

// NOWPayments付款狀態
// https://documenter.getpostman.com/view/7907941/S1a32n38 payment_status欄位
const (
	npStatusFinished  = "finished"
	npStatusConfirmed = "confirmed"
	npStatusFailed    = "failed"
	npStatusExpired   = "expired"
	npStatusRefunded  = "refunded"
)

type stripeEventVerifier interface {
	ConstructEvent(payload []byte, sigHeader string) (*gateway.StripeCheckoutEvent, error)
}

type paystackVerifier interface {
	VerifySignature(payload []byte, signature string) bool
}

type nowPaymentsVerifier interface {
	VerifyIPNSignature(payload []byte, signature string) bool
}

type IWebhookService interface {
	HandleStripeEvent(ctx context.Context, payload []byte, sigHeader string) error
	HandlePaystackEvent(ctx context.Context, payload []byte, signature string) error
	HandleNowPaymentsIPN(ctx context.Context, payload []byte, signature string) error
}

// WebhookService 金流商回呼處理
// webhook只允許改paymentStatus, orderStatus只有管理員能動
// 所有轉移都走冪等的條件式更新, 金流商重送同一個事件不會重複生效
type WebhookService struct {
	orderRepo     db.IOrderRepository
	stripe        stripeEventVerifier
	paystack      paystackVerifier
	nowPayments   nowPaymentsVerifier
	eventProducer producer.IOrderEventProducer
}

func NewWebhookService(
	orderRepo db.IOrderRepository,
	stripe stripeEventVerifier,
	paystack paystackVerifier,
	nowPayments nowPaymentsVerifier,
	eventProducer producer.IOrderEventProducer,
) *WebhookService {
	return &WebhookService{
		orderRepo:     orderRepo,
		stripe:        stripe,
		paystack:      paystack,
		nowPayments:   nowPayments,
		eventProducer: eventProducer,
	}
}

// HandleStripeEvent 處理Stripe webhook
// 簽章不合法回401, 讓Stripe不要重送; 不認識的事件型別直接ack
// 錯誤:
//   - 401: 簽章驗證失敗
//   - 400: 事件缺order_ref
func (s *WebhookService) HandleStripeEvent(ctx context.Context, payload []byte, sigHeader string) error {
	evt, err := s.stripe.ConstructEvent(payload, sigHeader)
	if err != nil {
		return er.Newf(er.UnauthenticatedCode, "stripe signature verification failed: %s", err)
	}

	switch evt.Type {
	case "checkout.session.completed", "checkout.session.async_payment_succeeded":
		orderRef := evt.Data.Object.Metadata.OrderRef
		if orderRef == "" {
			return er.New(er.BadRequestCode, "stripe event missing order_ref metadata")
		}
		return s.completePayment(ctx, "stripe", orderRef)
	case "checkout.session.async_payment_failed", "checkout.session.expired":
		orderRef := evt.Data.Object.Metadata.OrderRef
		if orderRef == "" {
			return er.New(er.BadRequestCode, "stripe event missing order_ref metadata")
		}
		return s.failPayment(ctx, "stripe", orderRef)
	default:
		log.Debug().Str("type", evt.Type).Msg("ignoring stripe event")
		return nil
	}
}

// HandlePaystackEvent 處理Paystack webhook
// reference就是訂單編號
// 錯誤:
//   - 401: 簽章驗證失敗
//   - 400: payload解析失敗
func (s *WebhookService) HandlePaystackEvent(ctx context.Context, payload []byte, signature string) error {
	if !s.paystack.VerifySignature(payload, signature) {
		return er.New(er.UnauthenticatedCode, "paystack signature verification failed")
	}

	var evt gateway.PaystackEvent
	if err := json.Unmarshal(payload, &evt); err != nil {
		return er.Newf(er.BadRequestCode, "invalid paystack payload: %s", err)
	}
	if evt.Data.Reference == "" {
		return er.New(er.BadRequestCode, "paystack event missing reference")
	}

	switch evt.Event {
	case "charge.success":
		return s.completePayment(ctx, "paystack", evt.Data.Reference)
	case "charge.failed":
		return s.failPayment(ctx, "paystack", evt.Data.Reference)
	default:
		log.Debug().Str("event", evt.Event).Msg("ignoring paystack event")
		return nil
	}
}

// HandleNowPaymentsIPN 處理NOWPayments IPN callback
// order_id就是訂單編號; 中間狀態(waiting/confirming/sending)一律ack不處理
// 錯誤:
//   - 401: 簽章驗證失敗
//   - 400: payload解析失敗
func (s *WebhookService) HandleNowPaymentsIPN(ctx context.Context, payload []byte, signature string) error {
	if !s.nowPayments.VerifyIPNSignature(payload, signature) {
		return er.New(er.UnauthenticatedCode, "nowpayments signature verification failed")
	}

	var ipn gateway.NowPaymentsIPN
	if err := json.Unmarshal(payload, &ipn); err != nil {
		return er.Newf(er.BadRequestCode, "invalid nowpayments payload: %s", err)
	}
	if ipn.OrderID == "" {
		return er.New(er.BadRequestCode, "nowpayments ipn missing order_id")
	}

	switch ipn.PaymentStatus {
	case npStatusFinished, npStatusConfirmed:
		return s.completePayment(ctx, "nowpayments", ipn.OrderID)
	case npStatusFailed, npStatusExpired, npStatusRefunded:
		return s.failPayment(ctx, "nowpayments", ipn.OrderID)
	default:
		log.Debug().Str("status", ipn.PaymentStatus).Str("order_ref", ipn.OrderID).
			Msg("ignoring nowpayments intermediate status")
		return nil
	}
}

// completePayment 冪等的付款完成轉移, webhook重送不會重複生效
func (s *WebhookService) completePayment(ctx context.Context, provider, orderRef string) error {
	_, err := settlePayment(ctx, s.orderRepo, s.eventProducer, provider, orderRef)
	return err
}

// settlePayment 冪等的付款完成轉移, webhook與主動查核共用同一條路徑
// 只有真的發生轉移(RowsAffected>0)才發佈order.paid事件, 重送或重查不會寄出第二封信
func settlePayment(ctx context.Context, orderRepo db.IOrderRepository,
	eventProducer producer.IOrderEventProducer, provider, orderRef string) (bool, error) {
	transitioned, err := orderRepo.CompletePaymentByRef(ctx, orderRef)
	if err != nil {
		return false, err
	}
	if !transitioned {
		log.Info().Str("provider", provider).Str("order_ref", orderRef).
			Msg("payment already completed, skipping")
		return false, nil
	}

	log.Info().Str("provider", provider).Str("order_ref", orderRef).Msg("payment completed")

	order, err := orderRepo.GetOrderByRef(ctx, orderRef)
	if err != nil || order == nil {
		// 轉移已落地, 事件發不出去只記log, 不讓金流商重送
		log.Error().Err(err).Str("order_ref", orderRef).Msg("failed to load order for paid event")
		return true, nil
	}

	evt := event.NewOrderPaidEvent(order.OrderRef, order.Customer.Email,
		order.Customer.FirstName, order.TotalPrice)
	if err := eventProducer.PublishOrderPaid(ctx, evt); err != nil {
		log.Error().Err(err).Str("order_ref", orderRef).Msg("failed to publish order paid event")
	}
	return true, nil
}

// failPayment 付款失敗轉移, 已完成或已退款的訂單不會被退回failed
func (s *WebhookService) failPayment(ctx context.Context, provider, orderRef string) error {
	transitioned, err := s.orderRepo.FailPaymentByRef(ctx, orderRef)
	if err != nil {
		return err
	}
	if transitioned {
		log.Info().Str("provider", provider).Str("order_ref", orderRef).Msg("payment failed")
	}
	return nil
}

var _ IWebhookService = (*WebhookService)(nil)
