package handler

import (
	"net/http"

	"github.com/nodeforge1/nodeforge-website/internal/pkg/apiutil"
	"github.com/nodeforge1/nodeforge-website/internal/pkg/er"
	"github.com/nodeforge1/nodeforge-website/internal/service"
)

type RateHandler struct {
	rateService service.IRateService
}

func NewRateHandler(rateService service.IRateService) *RateHandler {
	return &RateHandler{rateService: rateService}
}

// RateResponse 匯率查詢回應
type RateResponse struct {
	Rate   float64 `json:"rate"`
	Base   string  `json:"base"`
	Target string  `json:"target"`
}

// GetUSDToNGN GET /rates/usd-ngn
// 前端在Paystack結帳前先拿匯率顯示換算後金額
func (h *RateHandler) GetUSDToNGN(w http.ResponseWriter, r *http.Request) {
	rate, err := h.rateService.GetUSDToNGN(r.Context())
	if err != nil {
		apiutil.HandleServiceError(w, er.Newf(er.GatewayErrorCode, "failed to get exchange rate: %s", err))
		return
	}
	apiutil.SuccessJSON(w, RateResponse{Rate: rate, Base: "USD", Target: "NGN"}, nil)
}
