package service

import (
	"context"

	"gorm.io/gorm"

	"LinkUp/internal/pkg/errcode"
	"LinkUp/internal/repository/mysql"
)

// AccessService 帖子读权限判定，在任何帖子查询之前执行
type AccessService struct {
	creators    *mysql.CreatorRepository
	subscribers *mysql.SubscriberRepository
}

func NewAccessService(db *gorm.DB) *AccessService {
	return &AccessService{
		creators:    &mysql.CreatorRepository{DB: db},
		subscribers: &mysql.SubscriberRepository{DB: db},
	}
}

// CanRead 所有者、公开创作者、或持有 has_access=true 的订阅者可读
func (s *AccessService) CanRead(ctx context.Context, requesterID, creatorID uint64) (bool, error) {
	c, err := s.creators.FindByID(ctx, creatorID)
	if err != nil {
		return false, storeErr(err, errcode.ErrCreatorNotFound)
	}
	if c.UserID == requesterID || c.IsPublic {
		return true, nil
	}
	ok, err := s.subscribers.HasAccess(ctx, requesterID, creatorID)
	if err != nil {
		return false, errcode.Internal(err)
	}
	return ok, nil
}

// Authorize 无权限时返回 PERMISSION_DENIED，不区分帖子是否存在
func (s *AccessService) Authorize(ctx context.Context, requesterID, creatorID uint64) error {
	ok, err := s.CanRead(ctx, requesterID, creatorID)
	if err != nil {
		return err
	}
	if !ok {
		return errcode.ErrNoReadAccess
	}
	return nil
}
