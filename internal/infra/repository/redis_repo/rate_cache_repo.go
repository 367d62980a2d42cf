package redis_repo

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const rateCacheTTL = time.Hour

var ErrRateNotCached = errors.New("exchange rate not cached")

// RateCacheRepo 匯率快取
// 匯率API有呼叫次數上限, 查到的匯率會cache一小時
type RateCacheRepo struct {
	client *redis.Client
}

func NewRateCacheRepo(client *redis.Client) *RateCacheRepo {
	return &RateCacheRepo{client: client}
}

func generateRateKey(pair string) string {
	return fmt.Sprintf("fx:rate:%s", pair)
}

func (r *RateCacheRepo) Get(ctx context.Context, pair string) (float64, error) {
	raw, err := r.client.Get(ctx, generateRateKey(pair)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, ErrRateNotCached
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get cached rate: %w", err)
	}

	rate, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid cached rate %q: %w", raw, err)
	}
	return rate, nil
}

func (r *RateCacheRepo) Set(ctx context.Context, pair string, rate float64) error {
	value := strconv.FormatFloat(rate, 'f', -1, 64)
	if err := r.client.Set(ctx, generateRateKey(pair), value, rateCacheTTL).Err(); err != nil {
		return fmt.Errorf("failed to cache rate: %w", err)
	}
	return nil
}
