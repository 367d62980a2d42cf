package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nodeforge1/nodeforge-website/internal/infra/repository/redis_repo"
)

type countingFetcher struct {
	rate  float64
	err   error
	calls int
}

func (f *countingFetcher) GetUSDToNGN(ctx context.Context) (float64, error) {
	f.calls++
	return f.rate, f.err
}

type memRateCache struct {
	rates map[string]float64
}

func (c *memRateCache) Get(ctx context.Context, pair string) (float64, error) {
	if rate, ok := c.rates[pair]; ok {
		return rate, nil
	}
	return 0, redis_repo.ErrRateNotCached
}

func (c *memRateCache) Set(ctx context.Context, pair string, rate float64) error {
	c.rates[pair] = rate
	return nil
}

func TestRateServiceCachesResult(t *testing.T) {
	fetcher := &countingFetcher{rate: 1500}
	cache := &memRateCache{rates: map[string]float64{}}
	svc := NewRateService(fetcher, cache)
	ctx := context.Background()

	rate, err := svc.GetUSDToNGN(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1500.0, rate)

	_, err = svc.GetUSDToNGN(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, fetcher.calls, "second call should hit the cache")
}

func TestRateServiceCacheHitSkipsFetch(t *testing.T) {
	fetcher := &countingFetcher{rate: 1500}
	cache := &memRateCache{rates: map[string]float64{usdNgnPair: 1450}}
	svc := NewRateService(fetcher, cache)

	rate, err := svc.GetUSDToNGN(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1450.0, rate)
	assert.Zero(t, fetcher.calls)
}

func TestRateServiceFetchFailure(t *testing.T) {
	fetcher := &countingFetcher{err: assert.AnError}
	cache := &memRateCache{rates: map[string]float64{}}
	svc := NewRateService(fetcher, cache)

	_, err := svc.GetUSDToNGN(context.Background())

	require.Error(t, err)
}
