package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

const exchangeRateApiURL = "https://v6.exchangerate-api.com/v6"

type exchangeRateResponse struct {
	Result          string             `json:"result"`
	ConversionRates map[string]float64 `json:"conversion_rates"`
}

// ExchangeRateClient USD對NGN匯率查詢 (exchangerate-api v6)
type ExchangeRateClient struct {
	apiKey string
	client *http.Client
}

func NewExchangeRateClient(apiKey string) *ExchangeRateClient {
	return &ExchangeRateClient{
		apiKey: apiKey,
		client: newHttpClient(),
	}
}

// GetUSDToNGN 取得最新USD->NGN匯率
func (e *ExchangeRateClient) GetUSDToNGN(ctx context.Context) (float64, error) {
	url := fmt.Sprintf("%s/%s/latest/USD", exchangeRateApiURL, e.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("exchange rate request failed: %w", err)
	}

	body, err := readBody(resp)
	if err != nil {
		return 0, err
	}
	if resp.StatusCode != http.StatusOK {
		return 0, &GatewayError{Provider: "exchangerate-api", StatusCode: resp.StatusCode, Body: string(body)}
	}

	var rateResp exchangeRateResponse
	if err := json.Unmarshal(body, &rateResp); err != nil {
		return 0, fmt.Errorf("failed to decode exchange rate response: %w", err)
	}

	rate, ok := rateResp.ConversionRates["NGN"]
	if !ok || rate <= 0 {
		return 0, fmt.Errorf("NGN rate missing from exchange rate response")
	}
	return rate, nil
}
