package middleware

import (
	"fmt"
	"net"
	"net/http"

	"github.com/nodeforge1/nodeforge-website/internal/pkg/apiutil"
	"github.com/nodeforge1/nodeforge-website/internal/pkg/er"
	"github.com/nodeforge1/nodeforge-website/internal/pkg/limiter"
)

// RateLimit 以client IP為key的token bucket限流
// bucket狀態放redis, 多實例共用同一份額度
func RateLimit(bucket *limiter.RsTokenBucket) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !bucket.Allow(r.Context(), rateLimitKey(r)) {
				apiutil.ErrorJSON(w, int(er.TooManyRequestCode), nil, "")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func rateLimitKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return fmt.Sprintf("ratelimit:%s", host)
}
