package pkg

import (
	"context"
	"log/slog"
	"time"
)

// Retry 有界重试，退避时间每次翻倍；ctx 取消时立即返回
func Retry(ctx context.Context, attempts int, backoff time.Duration, op string, fn func() error) error {
	if attempts < 1 {
		attempts = 1
	}
	var err error
	for i := 0; i < attempts; i++ {
		if err = fn(); err == nil {
			return nil
		}
		if i == attempts-1 {
			break
		}
		slog.Warn("retrying", "op", op, "attempt", i+1, "backoff", backoff, "err", err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	return err
}
