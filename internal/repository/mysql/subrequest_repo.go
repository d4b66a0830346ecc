package mysql

import (
	"context"

	"gorm.io/gorm"

	"LinkUp/internal/model"
)

type SubRequestRepository struct {
	DB *gorm.DB
}

// Create 依赖 (user_id, creator_id) 唯一索引，重复时返回冲突错误
func (r *SubRequestRepository) Create(ctx context.Context, req *model.SubRequest) error {
	return r.DB.WithContext(ctx).Create(req).Error
}

// FindByID 申请必须属于该创作者
func (r *SubRequestRepository) FindByID(ctx context.Context, creatorID, id uint64) (*model.SubRequest, error) {
	var req model.SubRequest
	err := r.DB.WithContext(ctx).First(&req, "id = ? AND creator_id = ?", id, creatorID).Error
	return &req, err
}

func (r *SubRequestRepository) ExistsPair(ctx context.Context, userID, creatorID uint64) (bool, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&model.SubRequest{}).
		Where("user_id = ? AND creator_id = ?", userID, creatorID).
		Count(&n).Error
	return n > 0, err
}

func (r *SubRequestRepository) ListByCreator(ctx context.Context, creatorID uint64) ([]model.SubRequest, error) {
	list := make([]model.SubRequest, 0)
	err := r.DB.WithContext(ctx).Where("creator_id = ?", creatorID).Order("id ASC").Find(&list).Error
	return list, err
}

func (r *SubRequestRepository) ListByUser(ctx context.Context, userID, creatorID uint64) ([]model.SubRequest, error) {
	list := make([]model.SubRequest, 0)
	err := r.DB.WithContext(ctx).
		Where("user_id = ? AND creator_id = ?", userID, creatorID).
		Order("id ASC").
		Find(&list).Error
	return list, err
}

// Delete 返回受影响行数，0 表示已不存在
func (r *SubRequestRepository) Delete(ctx context.Context, id uint64) (int64, error) {
	tx := r.DB.WithContext(ctx).Delete(&model.SubRequest{}, id)
	return tx.RowsAffected, tx.Error
}

func (r *SubRequestRepository) DeletePair(ctx context.Context, userID, creatorID uint64) error {
	return r.DB.WithContext(ctx).
		Where("user_id = ? AND creator_id = ?", userID, creatorID).
		Delete(&model.SubRequest{}).Error
}

func (r *SubRequestRepository) DeleteByCreator(ctx context.Context, creatorID uint64) error {
	return r.DB.WithContext(ctx).Where("creator_id = ?", creatorID).Delete(&model.SubRequest{}).Error
}

func (r *SubRequestRepository) DeleteByUser(ctx context.Context, userID uint64) error {
	return r.DB.WithContext(ctx).Where("user_id = ?", userID).Delete(&model.SubRequest{}).Error
}
