package gateway

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const stripeApiURL = "https://api.stripe.com/v1"

// webhook事件時間戳與當前時間的容許落差
const stripeSignatureTolerance = 5 * time.Minute

var (
	ErrStripeSignatureInvalid = errors.New("stripe signature verification failed")
	ErrStripeSignatureExpired = errors.New("stripe signature timestamp outside tolerance")
)

// StripeLineItem 結帳session的單一商品行
type StripeLineItem struct {
	Name       string
	UnitAmount int64 // 美分
	Quantity   int
}

// StripeSession 建立checkout session後拿到的redirect資訊
type StripeSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// StripeCheckoutEvent webhook事件裡我們關心的欄位
type StripeCheckoutEvent struct {
	Type string `json:"type"`
	Data struct {
		Object struct {
			ID       string `json:"id"`
			Metadata struct {
				OrderRef string `json:"order_ref"`
			} `json:"metadata"`
		} `json:"object"`
	} `json:"data"`
}

type StripeClient struct {
	secretKey     string
	webhookSecret string
	client        *http.Client
}

func NewStripeClient(secretKey, webhookSecret string) *StripeClient {
	return &StripeClient{
		secretKey:     secretKey,
		webhookSecret: webhookSecret,
		client:        newHttpClient(),
	}
}

// CreateCheckoutSession 建立Stripe Checkout Session並回傳redirect URL
// orderRef放進metadata, webhook收到事件時靠它找回訂單
func (s *StripeClient) CreateCheckoutSession(ctx context.Context, orderRef, customerEmail, successURL, cancelURL string, items []StripeLineItem) (*StripeSession, error) {
	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("submit_type", "pay")
	form.Set("success_url", successURL)
	form.Set("cancel_url", cancelURL)
	form.Set("customer_email", customerEmail)
	form.Set("billing_address_collection", "auto")
	form.Set("metadata[order_ref]", orderRef)

	for i, item := range items {
		prefix := fmt.Sprintf("line_items[%d]", i)
		form.Set(prefix+"[price_data][currency]", "usd")
		form.Set(prefix+"[price_data][product_data][name]", item.Name)
		form.Set(prefix+"[price_data][unit_amount]", strconv.FormatInt(item.UnitAmount, 10))
		form.Set(prefix+"[quantity]", strconv.Itoa(item.Quantity))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		stripeApiURL+"/checkout/sessions", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+s.secretKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("stripe request failed: %w", err)
	}

	body, err := readBody(resp)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &GatewayError{Provider: "stripe", StatusCode: resp.StatusCode, Body: string(body)}
	}

	var session StripeSession
	if err := json.Unmarshal(body, &session); err != nil {
		return nil, fmt.Errorf("failed to decode stripe session: %w", err)
	}
	return &session, nil
}

// ConstructEvent 驗證Stripe-Signature後解析webhook事件
// header格式: t=<unix>,v1=<hex hmac>,...
// 簽章對象是 "<t>.<raw body>" 的HMAC-SHA256
func (s *StripeClient) ConstructEvent(payload []byte, sigHeader string) (*StripeCheckoutEvent, error) {
	timestamp, signatures, err := parseStripeSigHeader(sigHeader)
	if err != nil {
		return nil, err
	}

	if time.Since(time.Unix(timestamp, 0)) > stripeSignatureTolerance {
		return nil, ErrStripeSignatureExpired
	}

	mac := hmac.New(sha256.New, []byte(s.webhookSecret))
	fmt.Fprintf(mac, "%d.", timestamp)
	mac.Write(payload)
	expected := mac.Sum(nil)

	matched := false
	for _, sig := range signatures {
		decoded, err := hex.DecodeString(sig)
		if err != nil {
			continue
		}
		if hmac.Equal(decoded, expected) {
			matched = true
			break
		}
	}
	if !matched {
		return nil, ErrStripeSignatureInvalid
	}

	var event StripeCheckoutEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, fmt.Errorf("failed to decode stripe event: %w", err)
	}
	return &event, nil
}

func parseStripeSigHeader(header string) (int64, []string, error) {
	var timestamp int64 = -1
	var signatures []string

	for _, pair := range strings.Split(header, ",") {
		parts := strings.SplitN(strings.TrimSpace(pair), "=", 2)
		if len(parts) != 2 {
			continue
		}
		switch parts[0] {
		case "t":
			ts, err := strconv.ParseInt(parts[1], 10, 64)
			if err != nil {
				return 0, nil, ErrStripeSignatureInvalid
			}
			timestamp = ts
		case "v1":
			signatures = append(signatures, parts[1])
		}
	}

	if timestamp < 0 || len(signatures) == 0 {
		return 0, nil, ErrStripeSignatureInvalid
	}
	return timestamp, signatures, nil
}

// ToUnitAmount 美元轉美分
func ToUnitAmount(price decimal.Decimal) int64 {
	return price.Mul(decimal.NewFromInt(100)).IntPart()
}
