package redis_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const idempotencyTTL = 24 * time.Hour

// IdempotencyRepo 訂單創建的冪等鍵
// client重送同一個Idempotency-Key時不會建出第二筆訂單
type IdempotencyRepo struct {
	client *redis.Client
}

func NewIdempotencyRepo(client *redis.Client) *IdempotencyRepo {
	return &IdempotencyRepo{client: client}
}

func generateIdempotencyKey(key string) string {
	return fmt.Sprintf("order:idem:%s", key)
}

// Reserve 嘗試佔用冪等鍵
// 使用Lua確保 佔用+寫入orderRef 是原子的
// 回傳: 佔用成功時(true, ""), 已被佔用時(false, 先前的orderRef)
func (r *IdempotencyRepo) Reserve(ctx context.Context, key, orderRef string) (bool, string, error) {
	luaScript := `
		local existing = redis.call('GET', KEYS[1])
		if existing then
			return existing
		end
		redis.call('SET', KEYS[1], ARGV[1], 'EX', ARGV[2])
		return ''
	`

	result, err := r.client.Eval(ctx, luaScript, []string{generateIdempotencyKey(key)},
		orderRef, int(idempotencyTTL.Seconds())).Text()
	if err != nil {
		return false, "", fmt.Errorf("failed to reserve idempotency key: %w", err)
	}

	if result == "" {
		return true, "", nil
	}
	return false, result, nil
}

// Release 釋放冪等鍵, 訂單創建失敗時呼叫, 讓client可以重試
func (r *IdempotencyRepo) Release(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, generateIdempotencyKey(key)).Err(); err != nil {
		return fmt.Errorf("failed to release idempotency key: %w", err)
	}
	return nil
}
