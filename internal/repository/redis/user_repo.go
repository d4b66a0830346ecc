package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrTokenNotFound    = errors.New("token not found")
	ErrRedisUnavailable = errors.New("redis unavailable")
)

const UserTokenPrefix = "login:user:token"

const (
	fieldAccessToken = "access_token"
	fieldRefreshID   = "refresh_id"
)

// Session 用户当前唯一有效的一对 token：access token 原文与 refresh token 的 jti
type Session struct {
	AccessToken string
	RefreshID   string
}

// rotateScript 只有 refresh_id 与调用方持有的一致时才替换会话，旧 refresh token 因此只能用一次
var rotateScript = redis.NewScript(`
if redis.call("HGET", KEYS[1], "refresh_id") ~= ARGV[1] then
	return 0
end
redis.call("HSET", KEYS[1], "access_token", ARGV[2], "refresh_id", ARGV[3])
redis.call("PEXPIRE", KEYS[1], ARGV[4])
return 1
`)

// SessionRepository 每个用户只保留最近一次登录的会话
type SessionRepository struct {
	Client *redis.Client
	TTL    time.Duration
}

func sessionKey(userID uint64) string {
	return fmt.Sprintf("%s:%d", UserTokenPrefix, userID)
}

func (r *SessionRepository) Save(ctx context.Context, userID uint64, s Session) error {
	key := sessionKey(userID)
	_, err := r.Client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key, fieldAccessToken, s.AccessToken, fieldRefreshID, s.RefreshID)
		pipe.Expire(ctx, key, r.TTL)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

func (r *SessionRepository) Get(ctx context.Context, userID uint64) (*Session, error) {
	fields, err := r.Client.HGetAll(ctx, sessionKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if len(fields) == 0 {
		return nil, ErrTokenNotFound
	}
	return &Session{AccessToken: fields[fieldAccessToken], RefreshID: fields[fieldRefreshID]}, nil
}

// Rotate 用 refreshID 对应的会话换成 next；会话不存在或已被替换时返回 false
func (r *SessionRepository) Rotate(ctx context.Context, userID uint64, refreshID string, next Session) (bool, error) {
	n, err := rotateScript.Run(ctx, r.Client, []string{sessionKey(userID)},
		refreshID, next.AccessToken, next.RefreshID, r.TTL.Milliseconds()).Int()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return n == 1, nil
}

// Extend 活跃请求续期
func (r *SessionRepository) Extend(ctx context.Context, userID uint64) error {
	if err := r.Client.Expire(ctx, sessionKey(userID), r.TTL).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

func (r *SessionRepository) Delete(ctx context.Context, userID uint64) error {
	if err := r.Client.Del(ctx, sessionKey(userID)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}
