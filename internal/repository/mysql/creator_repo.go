package mysql

import (
	"context"

	"gorm.io/gorm"

	"LinkUp/internal/model"
)

type CreatorRepository struct {
	DB *gorm.DB
}

func (r *CreatorRepository) Create(ctx context.Context, c *model.Creator) error {
	return r.DB.WithContext(ctx).Create(c).Error
}

func (r *CreatorRepository) FindByID(ctx context.Context, id uint64) (*model.Creator, error) {
	var creator model.Creator
	err := r.DB.WithContext(ctx).First(&creator, id).Error
	return &creator, err
}

func (r *CreatorRepository) FindByUserID(ctx context.Context, userID uint64) (*model.Creator, error) {
	var creator model.Creator
	err := r.DB.WithContext(ctx).Where("user_id = ?", userID).First(&creator).Error
	return &creator, err
}

func (r *CreatorRepository) ListByUser(ctx context.Context, userID uint64) ([]model.Creator, error) {
	var list []model.Creator
	err := r.DB.WithContext(ctx).Where("user_id = ?", userID).Order("id asc").Find(&list).Error
	return list, err
}

func (r *CreatorRepository) UpdateVisibility(ctx context.Context, id uint64, isPublic bool) error {
	return r.DB.WithContext(ctx).Model(&model.Creator{}).Where("id = ?", id).Update("is_public", isPublic).Error
}

func (r *CreatorRepository) Delete(ctx context.Context, id uint64) error {
	return r.DB.WithContext(ctx).Delete(&model.Creator{}, id).Error
}
