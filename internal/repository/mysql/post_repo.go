package mysql

import (
	"context"

	"gorm.io/gorm"

	"LinkUp/internal/model"
)

type PostRepository struct {
	DB *gorm.DB
}

func (r *PostRepository) Create(ctx context.Context, post *model.Post) error {
	return r.DB.WithContext(ctx).Create(post).Error
}

// FindByID 帖子必须属于该创作者，否则视为不存在
func (r *PostRepository) FindByID(ctx context.Context, creatorID, postID uint64) (*model.Post, error) {
	var post model.Post
	err := r.DB.WithContext(ctx).First(&post, "id = ? AND creator_id = ?", postID, creatorID).Error
	return &post, err
}

func (r *PostRepository) ListByCreator(ctx context.Context, creatorID uint64) ([]model.Post, error) {
	list := make([]model.Post, 0)
	err := r.DB.WithContext(ctx).
		Where("creator_id = ?", creatorID).
		Order("created_at DESC, id DESC").
		Find(&list).Error
	return list, err
}

// Save 整行覆盖，nil 指针列写 NULL
func (r *PostRepository) Save(ctx context.Context, post *model.Post) error {
	return r.DB.WithContext(ctx).Model(post).Select("type", "content", "media_url", "media_key", "updated_at").Updates(post).Error
}

func (r *PostRepository) Delete(ctx context.Context, id uint64) error {
	return r.DB.WithContext(ctx).Delete(&model.Post{}, id).Error
}

func (r *PostRepository) DeleteByCreator(ctx context.Context, creatorID uint64) (int64, error) {
	tx := r.DB.WithContext(ctx).Where("creator_id = ?", creatorID).Delete(&model.Post{})
	return tx.RowsAffected, tx.Error
}
