package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nodeforge1/nodeforge-website/internal/api/dto"
	"github.com/nodeforge1/nodeforge-website/internal/pkg/apiutil"
	"github.com/nodeforge1/nodeforge-website/internal/pkg/er"
	"github.com/nodeforge1/nodeforge-website/internal/service"
)

type CheckoutHandler struct {
	checkoutService service.ICheckoutService
}

func NewCheckoutHandler(checkoutService service.ICheckoutService) *CheckoutHandler {
	return &CheckoutHandler{checkoutService: checkoutService}
}

// StripeCheckout POST /checkout/stripe
func (h *CheckoutHandler) StripeCheckout(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeCheckoutRequest(w, r)
	if !ok {
		return
	}

	redirect, err := h.checkoutService.CreateStripeSession(r.Context(), req.OrderRef)
	if err != nil {
		apiutil.HandleServiceError(w, err)
		return
	}
	apiutil.SuccessJSON(w, redirect, nil)
}

// PaystackCheckout POST /checkout/paystack
func (h *CheckoutHandler) PaystackCheckout(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeCheckoutRequest(w, r)
	if !ok {
		return
	}

	redirect, err := h.checkoutService.CreatePaystackTransaction(r.Context(), req.OrderRef)
	if err != nil {
		apiutil.HandleServiceError(w, err)
		return
	}
	apiutil.SuccessJSON(w, redirect, nil)
}

// CryptoCheckout POST /checkout/crypto
func (h *CheckoutHandler) CryptoCheckout(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeCheckoutRequest(w, r)
	if !ok {
		return
	}

	redirect, err := h.checkoutService.CreateCryptoInvoice(r.Context(), req.OrderRef, req.PayCurrency)
	if err != nil {
		apiutil.HandleServiceError(w, err)
		return
	}
	apiutil.SuccessJSON(w, redirect, nil)
}

// VerifyPayment GET /checkout/verify/{reference}
// 付款頁redirect回來後前端以訂單編號查核付款狀態
func (h *CheckoutHandler) VerifyPayment(w http.ResponseWriter, r *http.Request) {
	reference := chi.URLParam(r, "reference")
	if reference == "" {
		apiutil.ErrorJSON(w, int(er.BadRequestCode), "reference is required", "")
		return
	}

	result, err := h.checkoutService.VerifyPayment(r.Context(), reference)
	if err != nil {
		apiutil.HandleServiceError(w, err)
		return
	}
	apiutil.SuccessJSON(w, result, nil)
}

func decodeCheckoutRequest(w http.ResponseWriter, r *http.Request) (*dto.CheckoutRequest, bool) {
	var req dto.CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apiutil.ErrorJSON(w, int(er.BadRequestCode), "invalid request body", "")
		return nil, false
	}
	if req.OrderRef == "" {
		apiutil.ErrorJSON(w, int(er.BadRequestCode), "orderRef is required", "")
		return nil, false
	}
	return &req, true
}
