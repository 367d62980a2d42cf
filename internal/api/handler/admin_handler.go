package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/nodeforge1/nodeforge-website/internal/api/dto"
	"github.com/nodeforge1/nodeforge-website/internal/pkg/apiutil"
	"github.com/nodeforge1/nodeforge-website/internal/pkg/er"
	"github.com/nodeforge1/nodeforge-website/internal/service"
)

type AdminHandler struct {
	authService service.IAuthService
}

func NewAdminHandler(authService service.IAuthService) *AdminHandler {
	return &AdminHandler{authService: authService}
}

// Login POST /admin/login
func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apiutil.ErrorJSON(w, int(er.BadRequestCode), "invalid request body", "")
		return
	}
	if req.Email == "" || req.Password == "" {
		apiutil.ErrorJSON(w, int(er.BadRequestCode), "email and password are required", "")
		return
	}

	token, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		apiutil.HandleServiceError(w, err)
		return
	}
	apiutil.SuccessJSON(w, map[string]string{"token": token}, nil)
}

// Logout POST /admin/logout
func (h *AdminHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	if err := h.authService.Logout(r.Context(), strings.TrimSpace(token)); err != nil {
		apiutil.HandleServiceError(w, err)
		return
	}
	apiutil.SuccessJSON(w, nil, nil)
}
