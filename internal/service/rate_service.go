package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/nodeforge1/nodeforge-website/internal/infra/repository/redis_repo"
)

const usdNgnPair = "USD_NGN"

// rateFetcher 匯率來源
type rateFetcher interface {
	GetUSDToNGN(ctx context.Context) (float64, error)
}

// rateCache 匯率快取
type rateCache interface {
	Get(ctx context.Context, pair string) (float64, error)
	Set(ctx context.Context, pair string, rate float64) error
}

type IRateService interface {
	GetUSDToNGN(ctx context.Context) (float64, error)
}

// RateService USD->NGN匯率, cache優先, cache miss才打外部API
type RateService struct {
	fetcher rateFetcher
	cache   rateCache
}

func NewRateService(fetcher rateFetcher, cache rateCache) *RateService {
	return &RateService{fetcher: fetcher, cache: cache}
}

func (s *RateService) GetUSDToNGN(ctx context.Context) (float64, error) {
	rate, err := s.cache.Get(ctx, usdNgnPair)
	if err == nil {
		return rate, nil
	}
	if !errors.Is(err, redis_repo.ErrRateNotCached) {
		// redis故障時降級為直接呼叫API
		log.Warn().Err(err).Msg("rate cache unavailable, falling back to api")
	}

	rate, err = s.fetcher.GetUSDToNGN(ctx)
	if err != nil {
		return 0, err
	}

	if err := s.cache.Set(ctx, usdNgnPair, rate); err != nil {
		log.Warn().Err(err).Msg("failed to cache exchange rate")
	}
	return rate, nil
}

var _ IRateService = (*RateService)(nil)
