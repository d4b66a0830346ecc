package mysql

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"LinkUp/internal/model"
)

type SubscriberRepository struct {
	DB *gorm.DB
}

// Grant upsert：已有 (user_id, creator_id) 行则改为 has_access=true，不会产生重复行
func (r *SubscriberRepository) Grant(ctx context.Context, userID, creatorID uint64) (*model.Subscriber, error) {
	sub := &model.Subscriber{UserID: userID, CreatorID: creatorID, HasAccess: true}
	err := r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "creator_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"has_access": true,
			"updated_at": time.Now(),
		}),
	}).Create(sub).Error
	if err != nil {
		return nil, err
	}
	// 冲突更新时部分方言不回填主键，重新读取
	return r.FindByPair(ctx, userID, creatorID)
}

func (r *SubscriberRepository) FindByPair(ctx context.Context, userID, creatorID uint64) (*model.Subscriber, error) {
	var sub model.Subscriber
	err := r.DB.WithContext(ctx).Where("user_id = ? AND creator_id = ?", userID, creatorID).First(&sub).Error
	return &sub, err
}

func (r *SubscriberRepository) FindByID(ctx context.Context, creatorID, id uint64) (*model.Subscriber, error) {
	var sub model.Subscriber
	err := r.DB.WithContext(ctx).First(&sub, "id = ? AND creator_id = ?", id, creatorID).Error
	return &sub, err
}

// HasAccess 是否存在 has_access=true 的订阅关系
func (r *SubscriberRepository) HasAccess(ctx context.Context, userID, creatorID uint64) (bool, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&model.Subscriber{}).
		Where("user_id = ? AND creator_id = ? AND has_access = ?", userID, creatorID, true).
		Count(&n).Error
	return n > 0, err
}

func (r *SubscriberRepository) viewQuery(ctx context.Context, creatorID uint64) *gorm.DB {
	return r.DB.WithContext(ctx).
		Table("subscribers AS s").
		Select("s.id, s.user_id, u.name, u.email, s.has_access").
		Joins("JOIN users u ON u.id = s.user_id").
		Where("s.creator_id = ?", creatorID)
}

func (r *SubscriberRepository) ListViews(ctx context.Context, creatorID uint64) ([]model.SubscriberView, error) {
	list := make([]model.SubscriberView, 0)
	err := r.viewQuery(ctx, creatorID).Order("s.id ASC").Scan(&list).Error
	return list, err
}

func (r *SubscriberRepository) FindView(ctx context.Context, creatorID, id uint64) (*model.SubscriberView, error) {
	var list []model.SubscriberView
	if err := r.viewQuery(ctx, creatorID).Where("s.id = ?", id).Limit(1).Scan(&list).Error; err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &list[0], nil
}

func (r *SubscriberRepository) Delete(ctx context.Context, creatorID, id uint64) (int64, error) {
	tx := r.DB.WithContext(ctx).Where("id = ? AND creator_id = ?", id, creatorID).Delete(&model.Subscriber{})
	return tx.RowsAffected, tx.Error
}

func (r *SubscriberRepository) DeleteByCreator(ctx context.Context, creatorID uint64) error {
	return r.DB.WithContext(ctx).Where("creator_id = ?", creatorID).Delete(&model.Subscriber{}).Error
}

func (r *SubscriberRepository) DeleteByUser(ctx context.Context, userID uint64) error {
	return r.DB.WithContext(ctx).Where("user_id = ?", userID).Delete(&model.Subscriber{}).Error
}
