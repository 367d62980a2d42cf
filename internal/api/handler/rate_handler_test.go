package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRateService struct {
	rate float64
	err  error
}

func (s *stubRateService) GetUSDToNGN(ctx context.Context) (float64, error) {
	return s.rate, s.err
}

func TestGetUSDToNGNRate(t *testing.T) {
	h := NewRateHandler(&stubRateService{rate: 1520.5})

	req := httptest.NewRequest(http.MethodGet, "/rates/usd-ngn", nil)
	rec := httptest.NewRecorder()
	h.GetUSDToNGN(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"rate":1520.5`)
	assert.Contains(t, rec.Body.String(), `"base":"USD"`)
	assert.Contains(t, rec.Body.String(), `"target":"NGN"`)
}

func TestGetUSDToNGNRateUpstreamFailure(t *testing.T) {
	h := NewRateHandler(&stubRateService{err: errors.New("api down")})

	req := httptest.NewRequest(http.MethodGet, "/rates/usd-ngn", nil)
	rec := httptest.NewRecorder()
	h.GetUSDToNGN(rec, req)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":false`)
}
