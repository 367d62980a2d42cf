package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/nodeforge1/nodeforge-website/internal/pkg/apiutil"
	"github.com/nodeforge1/nodeforge-website/internal/pkg/er"
)

type contextKey string

const adminEmailKey contextKey = "admin_email"

// tokenVerifier 驗證session token, 成功回傳admin email
type tokenVerifier interface {
	Verify(ctx context.Context, token string) (string, error)
}

// AdminAuth 後台路由的認證
// Authorization: Bearer <token>, token是登入時發的session token
func AdminAuth(auth tokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				apiutil.ErrorJSON(w, int(er.UnauthenticatedCode), "missing bearer token", "")
				return
			}

			email, err := auth.Verify(r.Context(), token)
			if err != nil {
				apiutil.HandleServiceError(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), adminEmailKey, email)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AdminEmail 取出認證後的admin email, 未認證回空字串
func AdminEmail(ctx context.Context) string {
	email, _ := ctx.Value(adminEmailKey).(string)
	return email
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
