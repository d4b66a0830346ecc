package service

import (
	"context"
	"errors"
	"log/slog"

	"gorm.io/gorm"

	"LinkUp/internal/pkg"
	"LinkUp/internal/pkg/errcode"
	"LinkUp/internal/repository/mysql"
	"LinkUp/internal/repository/redis"
)

// SessionStore 单点登录会话，redis 关闭时为 nil
type SessionStore interface {
	Save(ctx context.Context, userID uint64, s redis.Session) error
	Get(ctx context.Context, userID uint64) (*redis.Session, error)
	Rotate(ctx context.Context, userID uint64, refreshID string, next redis.Session) (bool, error)
	Extend(ctx context.Context, userID uint64) error
	Delete(ctx context.Context, userID uint64) error
}

type AuthService struct {
	users    *mysql.UserRepository
	tokens   *pkg.TokenIssuer
	sessions SessionStore
}

func NewAuthService(db *gorm.DB, tokens *pkg.TokenIssuer, sessions SessionStore) *AuthService {
	return &AuthService{
		users:    &mysql.UserRepository{DB: db},
		tokens:   tokens,
		sessions: sessions,
	}
}

// Verify 校验 access token，返回用户 id；所有失败都是 UNAUTHENTICATED
func (s *AuthService) Verify(ctx context.Context, token string) (uint64, error) {
	claims, err := s.tokens.ParseAccess(token)
	if err != nil {
		return 0, errcode.ErrTokenInvalid
	}
	userID := claims.UserID

	if s.sessions != nil {
		saved, err := s.sessions.Get(ctx, userID)
		if errors.Is(err, redis.ErrTokenNotFound) || (err == nil && saved.AccessToken != token) {
			return 0, errcode.ErrSessionRevoked
		}
		if err != nil {
			return 0, errcode.Internal(err)
		}
		if err = s.sessions.Extend(ctx, userID); err != nil {
			slog.WarnContext(ctx, "session_extend_failed", "user_id", userID, "err", err)
		}
	}

	ok, err := s.users.Exists(ctx, userID)
	if err != nil {
		return 0, errcode.Internal(err)
	}
	if !ok {
		return 0, errcode.ErrUnknownSubject
	}
	return userID, nil
}
