package gateway

import (
	"fmt"
	"io"
	"net/http"
	"time"
)

// GatewayError 金流商回傳非2xx時的錯誤, Body留給上層做診斷
type GatewayError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("%s returned %d: %s", e.Provider, e.StatusCode, e.Body)
}

func newHttpClient() *http.Client {
	return &http.Client{
		Timeout: 30 * time.Second,
	}
}

// readBody 讀取回應內容, 限制大小避免異常回應吃光記憶體
func readBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	return io.ReadAll(io.LimitReader(resp.Body, 1<<20))
}
