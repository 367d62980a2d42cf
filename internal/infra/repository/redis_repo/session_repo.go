package redis_repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrSessionNotFound = errors.New("session not found")

// SessionRepo 後台session token儲存
// token是每次登入發的uuid, 帶TTL, 登出即撤銷
type SessionRepo struct {
	client *redis.Client
}

func NewSessionRepo(client *redis.Client) *SessionRepo {
	return &SessionRepo{client: client}
}

func generateSessionKey(token string) string {
	return fmt.Sprintf("admin:session:%s", token)
}

// Create 建立session, value放admin的email
func (r *SessionRepo) Create(ctx context.Context, token, email string, ttl time.Duration) error {
	if err := r.client.Set(ctx, generateSessionKey(token), email, ttl).Err(); err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// Get 驗證token, 不存在或已過期回傳ErrSessionNotFound
func (r *SessionRepo) Get(ctx context.Context, token string) (string, error) {
	email, err := r.client.Get(ctx, generateSessionKey(token)).Result()
	if err == redis.Nil {
		return "", ErrSessionNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to get session: %w", err)
	}
	return email, nil
}

// Delete 撤銷session
func (r *SessionRepo) Delete(ctx context.Context, token string) error {
	if err := r.client.Del(ctx, generateSessionKey(token)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
