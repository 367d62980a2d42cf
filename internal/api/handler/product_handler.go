package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/nodeforge1/nodeforge-website/internal/api/dto"
	"github.com/nodeforge1/nodeforge-website/internal/infra/repository/db"
	"github.com/nodeforge1/nodeforge-website/internal/pkg/apiutil"
	"github.com/nodeforge1/nodeforge-website/internal/pkg/er"
	"github.com/nodeforge1/nodeforge-website/internal/service"
)

type ProductHandler struct {
	productService service.IProductService
}

func NewProductHandler(productService service.IProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

// ListProducts GET /products?page=&page_size=&name=&min_price=&max_price=
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePagination(r)

	filter := db.ProductFilter{Name: r.URL.Query().Get("name")}
	if raw := r.URL.Query().Get("min_price"); raw != "" {
		if _, err := decimal.NewFromString(raw); err != nil {
			apiutil.ErrorJSON(w, int(er.BadRequestCode), "invalid min_price", "")
			return
		}
		filter.MinPrice = raw
	}
	if raw := r.URL.Query().Get("max_price"); raw != "" {
		if _, err := decimal.NewFromString(raw); err != nil {
			apiutil.ErrorJSON(w, int(er.BadRequestCode), "invalid max_price", "")
			return
		}
		filter.MaxPrice = raw
	}

	products, total, err := h.productService.ListProducts(r.Context(), page, pageSize, filter)
	if err != nil {
		apiutil.HandleServiceError(w, err)
		return
	}

	apiutil.SuccessJSON(w, products, paginationMeta(page, pageSize, total))
}

// GetProduct GET /products/{productID}
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.productService.GetProduct(r.Context(), chi.URLParam(r, "productID"))
	if err != nil {
		apiutil.HandleServiceError(w, err)
		return
	}
	apiutil.SuccessJSON(w, product, nil)
}

// CreateProduct POST /admin/products
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req dto.ProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apiutil.ErrorJSON(w, int(er.BadRequestCode), "invalid request body", "")
		return
	}

	product, err := h.productService.CreateProduct(r.Context(), req.ToModel())
	if err != nil {
		apiutil.HandleServiceError(w, err)
		return
	}
	apiutil.CreatedJSON(w, product)
}

// UpdateProduct PUT /admin/products/{productID}
func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	var req dto.ProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apiutil.ErrorJSON(w, int(er.BadRequestCode), "invalid request body", "")
		return
	}

	product, err := h.productService.UpdateProduct(r.Context(), chi.URLParam(r, "productID"), req.ToModel())
	if err != nil {
		apiutil.HandleServiceError(w, err)
		return
	}
	apiutil.SuccessJSON(w, product, nil)
}

// DeleteProduct DELETE /admin/products/{productID}
func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.productService.DeleteProduct(r.Context(), chi.URLParam(r, "productID")); err != nil {
		apiutil.HandleServiceError(w, err)
		return
	}
	apiutil.SuccessJSON(w, nil, nil)
}

func parsePagination(r *http.Request) (int, int) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))
	return page, pageSize
}

func paginationMeta(page, pageSize int, total int64) map[string]any {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 100
	}
	return map[string]any{
		"page":      page,
		"page_size": pageSize,
		"total":     total,
	}
}
