package service

import (
	"context"
	"log/slog"

	"gorm.io/gorm"

	"LinkUp/internal/model"
	"LinkUp/internal/pkg/errcode"
	"LinkUp/internal/repository/mysql"
	"LinkUp/internal/storage"
)

type CreatorService struct {
	db    *gorm.DB
	repo  *mysql.CreatorRepository
	store storage.ObjectStore
}

func NewCreatorService(db *gorm.DB, store storage.ObjectStore) *CreatorService {
	return &CreatorService{db: db, repo: &mysql.CreatorRepository{DB: db}, store: store}
}

// Create 每个用户最多一个创作者主页
func (s *CreatorService) Create(ctx context.Context, userID uint64, isPublic bool) (*model.Creator, error) {
	if _, err := s.repo.FindByUserID(ctx, userID); err == nil {
		return nil, errcode.ErrCreatorExists
	} else if !mysql.IsNotFound(err) {
		return nil, errcode.Internal(err)
	}

	c := &model.Creator{UserID: userID, IsPublic: isPublic}
	if err := s.repo.Create(ctx, c); err != nil {
		if mysql.IsDuplicateKey(err) {
			return nil, errcode.ErrCreatorExists
		}
		return nil, errcode.Internal(err)
	}
	return c, nil
}

func (s *CreatorService) ListByUser(ctx context.Context, userID uint64) ([]model.Creator, error) {
	list, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, errcode.Internal(err)
	}
	if list == nil {
		list = []model.Creator{}
	}
	return list, nil
}

func (s *CreatorService) Get(ctx context.Context, creatorID uint64) (*model.Creator, error) {
	c, err := s.repo.FindByID(ctx, creatorID)
	if err != nil {
		return nil, storeErr(err, errcode.ErrCreatorNotFound)
	}
	return c, nil
}

// UpdateVisibility 改为公开不会自动通过已有的待处理申请
func (s *CreatorService) UpdateVisibility(ctx context.Context, actorID, creatorID uint64, isPublic bool) (*model.Creator, error) {
	if _, err := requireOwner(ctx, s.repo, actorID, creatorID); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateVisibility(ctx, creatorID, isPublic); err != nil {
		return nil, errcode.Internal(err)
	}
	return s.Get(ctx, creatorID)
}

func (s *CreatorService) Delete(ctx context.Context, actorID, creatorID uint64) error {
	if _, err := requireOwner(ctx, s.repo, actorID, creatorID); err != nil {
		return err
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return deleteCreatorTx(ctx, tx, s.store, creatorID)
	})
	return appErr(err)
}

// requireOwner 创作者不存在返回 NOT_FOUND，非所有者返回 PERMISSION_DENIED
func requireOwner(ctx context.Context, repo *mysql.CreatorRepository, actorID, creatorID uint64) (*model.Creator, error) {
	c, err := repo.FindByID(ctx, creatorID)
	if err != nil {
		return nil, storeErr(err, errcode.ErrCreatorNotFound)
	}
	if c.UserID != actorID {
		return nil, errcode.ErrNotOwner
	}
	return c, nil
}

// deleteCreatorTx 级联删除：媒体对象、帖子、申请、订阅关系，最后是创作者本身
func deleteCreatorTx(ctx context.Context, tx *gorm.DB, store storage.ObjectStore, creatorID uint64) error {
	posts := &mysql.PostRepository{DB: tx}
	if err := deletePostsTx(ctx, posts, store, creatorID); err != nil {
		return err
	}
	if err := (&mysql.SubRequestRepository{DB: tx}).DeleteByCreator(ctx, creatorID); err != nil {
		return err
	}
	if err := (&mysql.SubscriberRepository{DB: tx}).DeleteByCreator(ctx, creatorID); err != nil {
		return err
	}
	if err := (&mysql.CreatorRepository{DB: tx}).Delete(ctx, creatorID); err != nil {
		return err
	}
	slog.InfoContext(ctx, "creator_deleted", "creator_id", creatorID)
	return nil
}
