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

// session id由前端產生並透過header帶上來, 沒有帳號系統, 購物車跟著browser session走
const sessionHeader = "X-Session-Id"

type CartHandler struct {
	cartService service.ICartService
}

func NewCartHandler(cartService service.ICartService) *CartHandler {
	return &CartHandler{cartService: cartService}
}

// GetCart GET /cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	cart, err := h.cartService.GetCart(r.Context(), r.Header.Get(sessionHeader))
	if err != nil {
		apiutil.HandleServiceError(w, err)
		return
	}
	apiutil.SuccessJSON(w, cart, nil)
}

// AddItem POST /cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req dto.AddCartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apiutil.ErrorJSON(w, int(er.BadRequestCode), "invalid request body", "")
		return
	}

	cart, err := h.cartService.AddItem(r.Context(), r.Header.Get(sessionHeader),
		req.ProductID, req.Config, req.Quantity)
	if err != nil {
		apiutil.HandleServiceError(w, err)
		return
	}
	apiutil.SuccessJSON(w, cart, nil)
}

// UpdateItem PATCH /cart/items/{itemID}
func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateCartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apiutil.ErrorJSON(w, int(er.BadRequestCode), "invalid request body", "")
		return
	}

	cart, err := h.cartService.UpdateQuantity(r.Context(), r.Header.Get(sessionHeader),
		chi.URLParam(r, "itemID"), req.Quantity)
	if err != nil {
		apiutil.HandleServiceError(w, err)
		return
	}
	apiutil.SuccessJSON(w, cart, nil)
}

// RemoveItem DELETE /cart/items/{itemID}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	cart, err := h.cartService.RemoveItem(r.Context(), r.Header.Get(sessionHeader),
		chi.URLParam(r, "itemID"))
	if err != nil {
		apiutil.HandleServiceError(w, err)
		return
	}
	apiutil.SuccessJSON(w, cart, nil)
}

// ClearCart DELETE /cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	if err := h.cartService.ClearCart(r.Context(), r.Header.Get(sessionHeader)); err != nil {
		apiutil.HandleServiceError(w, err)
		return
	}
	apiutil.SuccessJSON(w, nil, nil)
}
