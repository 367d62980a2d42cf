package gateway

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
)

const paystackApiURL = "https://api.paystack.co"

// PaystackInitRequest 初始化交易的請求內容
// Amount以kobo計 (NGN最小面額)
type PaystackInitRequest struct {
	Email       string `json:"email"`
	Amount      int64  `json:"amount"`
	Reference   string `json:"reference"`
	Currency    string `json:"currency"`
	CallbackURL string `json:"callback_url"`
	Metadata    any    `json:"metadata,omitempty"`
}

type PaystackInitData struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

type paystackInitResponse struct {
	Status  bool             `json:"status"`
	Message string           `json:"message"`
	Data    PaystackInitData `json:"data"`
}

// PaystackVerifyData 查核交易的回應欄位
type PaystackVerifyData struct {
	Status    string          `json:"status"`
	Reference string          `json:"reference"`
	Amount    int64           `json:"amount"`
	Metadata  json.RawMessage `json:"metadata"`
}

type paystackVerifyResponse struct {
	Status  bool               `json:"status"`
	Message string             `json:"message"`
	Data    PaystackVerifyData `json:"data"`
}

// PaystackEvent webhook事件
type PaystackEvent struct {
	Event string `json:"event"`
	Data  struct {
		Reference string          `json:"reference"`
		Status    string          `json:"status"`
		Metadata  json.RawMessage `json:"metadata"`
	} `json:"data"`
}

type PaystackClient struct {
	secretKey string
	client    *http.Client
}

func NewPaystackClient(secretKey string) *PaystackClient {
	return &PaystackClient{
		secretKey: secretKey,
		client:    newHttpClient(),
	}
}

// InitializeTransaction 初始化交易, 回傳authorization_url給前端redirect
func (p *PaystackClient) InitializeTransaction(ctx context.Context, reqBody PaystackInitRequest) (*PaystackInitData, error) {
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		paystackApiURL+"/transaction/initialize", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+p.secretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("paystack request failed: %w", err)
	}

	body, err := readBody(resp)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &GatewayError{Provider: "paystack", StatusCode: resp.StatusCode, Body: string(body)}
	}

	var initResp paystackInitResponse
	if err := json.Unmarshal(body, &initResp); err != nil {
		return nil, fmt.Errorf("failed to decode paystack response: %w", err)
	}
	if !initResp.Status {
		return nil, &GatewayError{Provider: "paystack", StatusCode: resp.StatusCode, Body: initResp.Message}
	}
	return &initResp.Data, nil
}

// VerifyTransaction 主動查核交易狀態
func (p *PaystackClient) VerifyTransaction(ctx context.Context, reference string) (*PaystackVerifyData, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		paystackApiURL+"/transaction/verify/"+reference, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+p.secretKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("paystack request failed: %w", err)
	}

	body, err := readBody(resp)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &GatewayError{Provider: "paystack", StatusCode: resp.StatusCode, Body: string(body)}
	}

	var verifyResp paystackVerifyResponse
	if err := json.Unmarshal(body, &verifyResp); err != nil {
		return nil, fmt.Errorf("failed to decode paystack response: %w", err)
	}
	return &verifyResp.Data, nil
}

// VerifySignature 驗證x-paystack-signature
// 簽章是secret key對raw body的HMAC-SHA512
func (p *PaystackClient) VerifySignature(payload []byte, signature string) bool {
	mac := hmac.New(sha512.New, []byte(p.secretKey))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
