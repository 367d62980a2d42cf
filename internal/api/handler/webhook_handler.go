package handler

import (
	"io"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/nodeforge1/nodeforge-website/internal/pkg/apiutil"
	"github.com/nodeforge1/nodeforge-website/internal/service"
)

// webhook payload上限, 金流商的事件都遠小於這個值
const maxWebhookBody = 1 << 20

type WebhookHandler struct {
	webhookService service.IWebhookService
}

func NewWebhookHandler(webhookService service.IWebhookService) *WebhookHandler {
	return &WebhookHandler{webhookService: webhookService}
}

// Stripe POST /webhooks/stripe
// 簽章驗的是raw body, 進handler前不能經過任何會改寫body的middleware
func (h *WebhookHandler) Stripe(w http.ResponseWriter, r *http.Request) {
	payload, ok := readWebhookBody(w, r)
	if !ok {
		return
	}

	if err := h.webhookService.HandleStripeEvent(r.Context(), payload, r.Header.Get("Stripe-Signature")); err != nil {
		log.Warn().Err(err).Msg("stripe webhook rejected")
		apiutil.HandleServiceError(w, err)
		return
	}
	apiutil.SuccessJSON(w, nil, nil)
}

// Paystack POST /webhooks/paystack
func (h *WebhookHandler) Paystack(w http.ResponseWriter, r *http.Request) {
	payload, ok := readWebhookBody(w, r)
	if !ok {
		return
	}

	if err := h.webhookService.HandlePaystackEvent(r.Context(), payload, r.Header.Get("x-paystack-signature")); err != nil {
		log.Warn().Err(err).Msg("paystack webhook rejected")
		apiutil.HandleServiceError(w, err)
		return
	}
	apiutil.SuccessJSON(w, nil, nil)
}

// NowPayments POST /webhooks/nowpayments
func (h *WebhookHandler) NowPayments(w http.ResponseWriter, r *http.Request) {
	payload, ok := readWebhookBody(w, r)
	if !ok {
		return
	}

	if err := h.webhookService.HandleNowPaymentsIPN(r.Context(), payload, r.Header.Get("x-nowpayments-sig")); err != nil {
		log.Warn().Err(err).Msg("nowpayments ipn rejected")
		apiutil.HandleServiceError(w, err)
		return
	}
	apiutil.SuccessJSON(w, nil, nil)
}

func readWebhookBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return nil, false
	}
	return payload, true
}
