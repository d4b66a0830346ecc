package mysql

import (
	"context"
	"encoding/json"
	"time"

	"gorm.io/gorm"

	"LinkUp/internal/model"
)

// MaxOutboxRetry 超过后不再投递，留给人工排查
const MaxOutboxRetry = 10

type OutboxRepository struct {
	DB *gorm.DB
}

// Insert 必须在状态变更的同一事务里调用
func (r *OutboxRepository) Insert(ctx context.Context, event string, userID, creatorID uint64) error {
	payload, err := json.Marshal(map[string]any{
		"event":      event,
		"event_time": time.Now().UTC().Format(time.RFC3339Nano),
		"user_id":    userID,
		"creator_id": creatorID,
	})
	if err != nil {
		return err
	}
	return r.DB.WithContext(ctx).Create(&model.SubscriptionEvent{
		EventType: event,
		UserID:    userID,
		CreatorID: creatorID,
		Payload:   string(payload),
		Status:    model.OutboxPending,
	}).Error
}

// List 待投递或投递失败且未超过重试上限的事件
func (r *OutboxRepository) List(ctx context.Context, batchSize int) ([]model.SubscriptionEvent, error) {
	var list []model.SubscriptionEvent
	if err := r.DB.WithContext(ctx).
		Where("status <> ? AND retry < ?", model.OutboxSent, MaxOutboxRetry).
		Order("id ASC").
		Limit(batchSize).
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *OutboxRepository) RetryUpdate(ctx context.Context, id uint64) error {
	return r.DB.WithContext(ctx).Model(&model.SubscriptionEvent{}).Where("id = ?", id).
		Updates(map[string]any{"status": model.OutboxFailed, "retry": gorm.Expr("retry + 1")}).Error
}

func (r *OutboxRepository) SuccessUpdate(ctx context.Context, id uint64) error {
	return r.DB.WithContext(ctx).Model(&model.SubscriptionEvent{}).Where("id = ?", id).
		Update("status", model.OutboxSent).Error
}
