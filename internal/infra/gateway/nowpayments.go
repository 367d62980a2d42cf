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
	"sort"
)

// NowPaymentsInvoiceRequest 建立invoice的請求內容
// OrderID放訂單編號, IPN callback靠它找回訂單
type NowPaymentsInvoiceRequest struct {
	PriceAmount      float64 `json:"price_amount"`
	PriceCurrency    string  `json:"price_currency"`
	PayCurrency      string  `json:"pay_currency"`
	OrderID          string  `json:"order_id"`
	OrderDescription string  `json:"order_description,omitempty"`
	IpnCallbackURL   string  `json:"ipn_callback_url"`
	SuccessURL       string  `json:"success_url"`
	CancelURL        string  `json:"cancel_url"`
}

type NowPaymentsInvoice struct {
	ID            string  `json:"id"`
	InvoiceURL    string  `json:"invoice_url"`
	OrderID       string  `json:"order_id"`
	PayCurrency   string  `json:"pay_currency"`
	PayAmount     float64 `json:"pay_amount"`
	PayAddress    string  `json:"pay_address"`
	PaymentStatus string  `json:"payment_status"`
}

// NowPaymentsIPN IPN callback內容
type NowPaymentsIPN struct {
	PaymentID     json.Number `json:"payment_id"`
	PaymentStatus string      `json:"payment_status"`
	OrderID       string      `json:"order_id"`
}

type NowPaymentsClient struct {
	apiKey    string
	apiURL    string
	ipnSecret string
	client    *http.Client
}

func NewNowPaymentsClient(apiKey, apiURL, ipnSecret string) *NowPaymentsClient {
	if apiURL == "" {
		apiURL = "https://api.nowpayments.io/v1"
	}
	return &NowPaymentsClient{
		apiKey:    apiKey,
		apiURL:    apiURL,
		ipnSecret: ipnSecret,
		client:    newHttpClient(),
	}
}

// CreateInvoice 建立加密貨幣付款invoice
func (n *NowPaymentsClient) CreateInvoice(ctx context.Context, reqBody NowPaymentsInvoiceRequest) (*NowPaymentsInvoice, error) {
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		n.apiURL+"/invoice", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("x-api-key", n.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("nowpayments request failed: %w", err)
	}

	body, err := readBody(resp)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, &GatewayError{Provider: "nowpayments", StatusCode: resp.StatusCode, Body: string(body)}
	}

	var invoice NowPaymentsInvoice
	if err := json.Unmarshal(body, &invoice); err != nil {
		return nil, fmt.Errorf("failed to decode nowpayments invoice: %w", err)
	}
	if invoice.ID == "" {
		return nil, &GatewayError{Provider: "nowpayments", StatusCode: resp.StatusCode, Body: string(body)}
	}
	return &invoice, nil
}

// VerifyIPNSignature 驗證x-nowpayments-sig
// NOWPayments對key排序後的JSON做HMAC-SHA512
func (n *NowPaymentsClient) VerifyIPNSignature(payload []byte, signature string) bool {
	sorted, err := sortJSONKeys(payload)
	if err != nil {
		return false
	}

	mac := hmac.New(sha512.New, []byte(n.ipnSecret))
	mac.Write(sorted)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// sortJSONKeys 依IPN規範重排JSON物件的key後重新序列化
func sortJSONKeys(payload []byte) ([]byte, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(payload, &obj); err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyJSON, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(keyJSON)
		buf.WriteByte(':')
		buf.Write(obj[k])
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
