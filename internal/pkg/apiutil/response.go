package apiutil

import (
	"encoding/json"
	"net/http"

	"github.com/nodeforge1/nodeforge-website/internal/pkg/er"
)

// Response 統一的成功回應格式
type Response struct {
	Success bool `json:"success"`
	Data    any  `json:"data,omitempty"`
	Meta    any  `json:"meta,omitempty"`
}

// ResponseError 統一的錯誤回應格式
// Detail只放client可見的錯誤訊息, 細節進log
type ResponseError struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Detail  any    `json:"detail,omitempty"`
}

func SuccessJSON(w http.ResponseWriter, data any, meta any) {
	writeJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    data,
		Meta:    meta,
	})
}

func CreatedJSON(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusCreated, Response{
		Success: true,
		Data:    data,
	})
}

func ErrorJSON(w http.ResponseWriter, code int, detail any, msg string) {
	if msg == "" {
		msg = er.ErrStrMap[er.Code(code)]
	}
	writeJSON(w, code, ResponseError{
		Success: false,
		Message: msg,
		Detail:  detail,
	})
}

// HandleServiceError 將service層錯誤轉為http回應
func HandleServiceError(w http.ResponseWriter, err error) {
	if apiErr, ok := err.(*er.ApiError); ok {
		ErrorJSON(w, int(apiErr.Code), apiErr.Msg, er.ErrStrMap[apiErr.Code])
		return
	}
	ErrorJSON(w, int(er.InternalErrorCode), nil, er.ErrStrMap[er.InternalErrorCode])
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
