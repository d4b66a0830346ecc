package service

import (
	"context"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"LinkUp/internal/config"
	"LinkUp/internal/model"
	"LinkUp/internal/pkg"
	"LinkUp/internal/repository/mysql"
)

type Sender func(ctx context.Context, ev *model.SubscriptionEvent) error

// OutboxRelayer 定时扫描 outbox 表，把订阅事件投递出去
type OutboxRelayer struct {
	repo      *mysql.OutboxRepository
	batchSize int
	interval  time.Duration
	sender    Sender
}

func NewOutboxRelayer(db *gorm.DB, cfg config.OutboxConfig, sender Sender) *OutboxRelayer {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 200
	}
	if cfg.Interval <= 0 {
		cfg.Interval = time.Second
	}
	return &OutboxRelayer{
		repo:      &mysql.OutboxRepository{DB: db},
		batchSize: cfg.BatchSize,
		interval:  cfg.Interval,
		sender:    sender,
	}
}

// Run 阻塞直到 ctx 取消
func (r *OutboxRelayer) Run(ctx context.Context) {
	t := time.NewTicker(r.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			r.DrainOnce(ctx)
		}
	}
}

// DrainOnce 投递一批，返回成功条数
func (r *OutboxRelayer) DrainOnce(ctx context.Context) int {
	rows, err := r.repo.List(ctx, r.batchSize)
	if err != nil {
		slog.ErrorContext(ctx, "outbox_query_failed", "err", err)
		return 0
	}
	sent := 0
	for i := range rows {
		ev := rows[i]
		if err = r.sender(ctx, &ev); err != nil {
			slog.WarnContext(ctx, "outbox_send_failed", "id", ev.ID, "event", ev.EventType, "retry", ev.Retry, "err", err)
			if err = r.repo.RetryUpdate(ctx, ev.ID); err != nil {
				slog.ErrorContext(ctx, "outbox_update_failed", "id", ev.ID, "err", err)
			}
			continue
		}
		if err = r.repo.SuccessUpdate(ctx, ev.ID); err != nil {
			slog.ErrorContext(ctx, "outbox_update_failed", "id", ev.ID, "err", err)
			continue
		}
		sent++
	}
	return sent
}

// KafkaSender 以 creator_id 作为消息 key，同一创作者的事件保持有序
func KafkaSender(p *pkg.KafkaProducer) Sender {
	return func(ctx context.Context, ev *model.SubscriptionEvent) error {
		return p.Send(ctx, pkg.MakeKeyFromID(ev.CreatorID), []byte(ev.Payload))
	}
}

// LogSender 未启用 Kafka 时使用
func LogSender(ctx context.Context, ev *model.SubscriptionEvent) error {
	slog.InfoContext(ctx, "outbox_event", "event", ev.EventType, "user_id", ev.UserID, "creator_id", ev.CreatorID, "payload", ev.Payload)
	return nil
}
