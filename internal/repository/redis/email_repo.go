package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	DefaultEmailCodeTTL = 5 * time.Minute
	CodeResetPrefix     = "email:code:reset"

	// 两阶段键：邮件发出前为 pending，发出后转为 confirmed
	PendingSuffix   = "pending"
	ConfirmedSuffix = "confirmed"
	AttemptsSuffix  = "attempts"

	// MaxCodeAttempts 同一个验证码允许输错的次数，用完即作废
	MaxCodeAttempts = 5
)

var (
	ErrCodeNotFound        = errors.New("email code not found")
	ErrCodePendingFailed   = errors.New("code pending failed")
	ErrCodeConfirmedFailed = errors.New("code confirmed failed")
)

// 原子执行：取值、写入目标并设置 TTL、删除源；新验证码重新计数
const promoteScript = `
local val = redis.call("GET", KEYS[1])
if not val then
  return 0
end
redis.call("SET", KEYS[2], val, "PX", ARGV[1])
redis.call("DEL", KEYS[1], KEYS[3])
return 1
`

// 原子执行：匹配则删除；不匹配则计数，达到上限后验证码作废
const consumeScript = `
local val = redis.call("GET", KEYS[1])
if not val then
  return -1
end
if val == ARGV[1] then
  redis.call("DEL", KEYS[1], KEYS[2])
  return 1
end
local n = redis.call("INCR", KEYS[2])
if n == 1 then
  redis.call("PEXPIRE", KEYS[2], ARGV[3])
end
if n >= tonumber(ARGV[2]) then
  redis.call("DEL", KEYS[1], KEYS[2])
end
return 0
`

type CodeRepository struct {
	Client *redis.Client
}

func resetKey(suffix, email string) string {
	return fmt.Sprintf("%s:%s:%s", CodeResetPrefix, suffix, email)
}

func (r *CodeRepository) SavePending(ctx context.Context, email, code string) error {
	if err := r.Client.Set(ctx, resetKey(PendingSuffix, email), code, DefaultEmailCodeTTL).Err(); err != nil {
		return ErrCodePendingFailed
	}
	return nil
}

// Confirm 将 pending 转为 confirmed 并重置 TTL
func (r *CodeRepository) Confirm(ctx context.Context, email string) error {
	px := int64(DefaultEmailCodeTTL / time.Millisecond)
	res := r.Client.Eval(ctx, promoteScript,
		[]string{resetKey(PendingSuffix, email), resetKey(ConfirmedSuffix, email), resetKey(AttemptsSuffix, email)}, px)
	if res.Err() != nil {
		return ErrCodeConfirmedFailed
	}
	if ok, _ := res.Int(); ok != 1 {
		return ErrCodeConfirmedFailed
	}
	return nil
}

// DeletePending 幂等
func (r *CodeRepository) DeletePending(ctx context.Context, email string) error {
	return r.Client.Del(ctx, resetKey(PendingSuffix, email)).Err()
}

// Consume 校验 confirmed 验证码，匹配则删除；连续输错 MaxCodeAttempts 次后验证码失效
func (r *CodeRepository) Consume(ctx context.Context, email, code string) (bool, error) {
	px := int64(DefaultEmailCodeTTL / time.Millisecond)
	res, err := r.Client.Eval(ctx, consumeScript,
		[]string{resetKey(ConfirmedSuffix, email), resetKey(AttemptsSuffix, email)},
		code, MaxCodeAttempts, px).Int()
	if err != nil {
		return false, err
	}
	switch res {
	case -1:
		return false, ErrCodeNotFound
	case 1:
		return true, nil
	default:
		return false, nil
	}
}
