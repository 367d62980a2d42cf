package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/nodeforge1/nodeforge-website/internal/api/dto"
	"github.com/nodeforge1/nodeforge-website/internal/infra/repository/db"
	"github.com/nodeforge1/nodeforge-website/internal/pkg/apiutil"
	"github.com/nodeforge1/nodeforge-website/internal/pkg/er"
	"github.com/nodeforge1/nodeforge-website/internal/service"
)

type OrderHandler struct {
	orderService service.IOrderService
}

func NewOrderHandler(orderService service.IOrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// CreateOrder POST /orders
// Idempotency-Key header可選, 帶了之後重送同一個key拿回同一筆訂單
func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apiutil.ErrorJSON(w, int(er.BadRequestCode), "invalid request body", "")
		return
	}

	order, replayed, err := h.orderService.CreateOrder(r.Context(), req.ToModel(),
		r.Header.Get("Idempotency-Key"))
	if err != nil {
		apiutil.HandleServiceError(w, err)
		return
	}
	if replayed {
		apiutil.SuccessJSON(w, order, nil)
		return
	}
	apiutil.CreatedJSON(w, order)
}

// GetOrderByRef GET /orders/{orderRef}
// 顧客用訂單編號查單, 不需要登入
func (h *OrderHandler) GetOrderByRef(w http.ResponseWriter, r *http.Request) {
	order, err := h.orderService.GetOrderByRef(r.Context(), chi.URLParam(r, "orderRef"))
	if err != nil {
		apiutil.HandleServiceError(w, err)
		return
	}
	apiutil.SuccessJSON(w, order, nil)
}

// ListOrders GET /admin/orders?page=&page_size=&order_status=&payment_status=
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePagination(r)
	filter := db.OrderFilter{
		OrderStatus:   r.URL.Query().Get("order_status"),
		PaymentStatus: r.URL.Query().Get("payment_status"),
	}

	orders, total, err := h.orderService.ListOrders(r.Context(), page, pageSize, filter)
	if err != nil {
		apiutil.HandleServiceError(w, err)
		return
	}
	apiutil.SuccessJSON(w, orders, paginationMeta(page, pageSize, total))
}

// GetOrder GET /admin/orders/{id}
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := parseOrderID(w, r)
	if !ok {
		return
	}

	order, err := h.orderService.GetOrder(r.Context(), id)
	if err != nil {
		apiutil.HandleServiceError(w, err)
		return
	}
	apiutil.SuccessJSON(w, order, nil)
}

// UpdateOrderStatus PATCH /admin/orders/{id}
func (h *OrderHandler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := parseOrderID(w, r)
	if !ok {
		return
	}

	var req dto.UpdateOrderStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apiutil.ErrorJSON(w, int(er.BadRequestCode), "invalid request body", "")
		return
	}

	order, err := h.orderService.UpdateOrderStatus(r.Context(), id, service.OrderStatusUpdate{
		OrderStatus:   req.OrderStatus,
		PaymentStatus: req.PaymentStatus,
		TrackingInfo:  req.TrackingInfo,
		Notes:         req.Notes,
	})
	if err != nil {
		apiutil.HandleServiceError(w, err)
		return
	}
	apiutil.SuccessJSON(w, order, nil)
}

// DeleteOrder DELETE /admin/orders/{id}
func (h *OrderHandler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := parseOrderID(w, r)
	if !ok {
		return
	}

	if err := h.orderService.DeleteOrder(r.Context(), id); err != nil {
		apiutil.HandleServiceError(w, err)
		return
	}
	apiutil.SuccessJSON(w, nil, nil)
}

// Dashboard GET /admin/dashboard
func (h *OrderHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.orderService.GetDashboardStats(r.Context())
	if err != nil {
		apiutil.HandleServiceError(w, err)
		return
	}
	apiutil.SuccessJSON(w, stats, nil)
}

func parseOrderID(w http.ResponseWriter, r *http.Request) (uint, bool) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		apiutil.ErrorJSON(w, int(er.BadRequestCode), "invalid order id", "")
		return 0, false
	}
	return uint(id), true
}
