package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/nodeforge1/nodeforge-website/internal/infra/repository/redis_repo"
	"github.com/nodeforge1/nodeforge-website/internal/pkg/er"
)

const sessionTTL = 24 * time.Hour

// sessionStore 後台session token儲存
type sessionStore interface {
	Create(ctx context.Context, token, email string, ttl time.Duration) error
	Get(ctx context.Context, token string) (string, error)
	Delete(ctx context.Context, token string) error
}

type IAuthService interface {
	Login(ctx context.Context, email, password string) (string, error)
	Verify(ctx context.Context, token string) (string, error)
	Logout(ctx context.Context, token string) error
}

// AuthService 後台登入
// 單一組管理員帳密來自環境變數, 密碼只存bcrypt hash
type AuthService struct {
	adminEmail        string
	adminPasswordHash string
	sessions          sessionStore
}

func NewAuthService(adminEmail, adminPasswordHash string, sessions sessionStore) *AuthService {
	return &AuthService{
		adminEmail:        adminEmail,
		adminPasswordHash: adminPasswordHash,
		sessions:          sessions,
	}
}

// Login 驗證帳密後發token
// email比對用constant time, 帳號不對與密碼不對回同一個錯誤
// 錯誤:
//   - 401: 帳密錯誤
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	emailMatch := subtle.ConstantTimeCompare([]byte(email), []byte(s.adminEmail)) == 1
	passwordErr := bcrypt.CompareHashAndPassword([]byte(s.adminPasswordHash), []byte(password))
	if !emailMatch || passwordErr != nil {
		return "", er.New(er.UnauthenticatedCode, "invalid email or password")
	}

	token := uuid.New().String()
	if err := s.sessions.Create(ctx, token, email, sessionTTL); err != nil {
		return "", err
	}
	return token, nil
}

// Verify 驗證token, 成功回傳admin email
// 錯誤:
//   - 401: token不存在或已過期
func (s *AuthService) Verify(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", er.New(er.UnauthenticatedCode, "missing session token")
	}

	email, err := s.sessions.Get(ctx, token)
	if errors.Is(err, redis_repo.ErrSessionNotFound) {
		return "", er.New(er.UnauthenticatedCode, "invalid or expired session")
	}
	if err != nil {
		return "", err
	}
	return email, nil
}

// Logout 撤銷token, token不存在也視為登出成功
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.sessions.Delete(ctx, token)
}

var _ IAuthService = (*AuthService)(nil)
