package service

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"gorm.io/gorm"

	"LinkUp/internal/model"
	"LinkUp/internal/pkg/errcode"
	"LinkUp/internal/repository/mysql"
	"LinkUp/internal/storage"
)

var (
	ErrInvalidPostType = errcode.InvalidArg("type must be one of text, image, video")
	ErrContentRequired = errcode.InvalidArg("text post requires content")
	ErrMediaRequired   = errcode.InvalidArg("image and video posts require a media file")
	ErrMediaNotAllowed = errcode.InvalidArg("text post cannot carry a media file")
)

// MediaFile 上传的媒体文件
type MediaFile struct {
	Filename    string
	ContentType string
	Size        int64
	Reader      io.Reader
}

type CreatePostInput struct {
	Type    model.PostType
	Content *string
	Media   *MediaFile
}

// UpdatePostInput nil 字段保持原值
type UpdatePostInput struct {
	Type    *model.PostType
	Content *string
	Media   *MediaFile
}

type PostService struct {
	db       *gorm.DB
	repo     *mysql.PostRepository
	creators *mysql.CreatorRepository
	access   *AccessService
	store    storage.ObjectStore
}

func NewPostService(db *gorm.DB, access *AccessService, store storage.ObjectStore) *PostService {
	return &PostService{
		db:       db,
		repo:     &mysql.PostRepository{DB: db},
		creators: &mysql.CreatorRepository{DB: db},
		access:   access,
		store:    store,
	}
}

func hasText(s *string) bool {
	return s != nil && strings.TrimSpace(*s) != ""
}

// upload 先写对象存储，返回对象名和公开 URL
func (s *PostService) upload(ctx context.Context, f *MediaFile) (string, string, error) {
	key := storage.NewMediaKey(f.Filename)
	url, err := s.store.PutObject(ctx, key, f.Reader, f.Size, f.ContentType)
	if err != nil {
		return "", "", errcode.Internal(err)
	}
	return key, url, nil
}

func logOrphan(ctx context.Context, key string, err error) {
	slog.ErrorContext(ctx, "orphaned_media", "object_name", key, "err", err)
}

// Create 媒体帖子先上传对象再写行；写行失败时对象成为孤儿，只记录日志
func (s *PostService) Create(ctx context.Context, actorID, creatorID uint64, in CreatePostInput) (*model.Post, error) {
	if !in.Type.Valid() {
		return nil, ErrInvalidPostType
	}
	if in.Type.HasMedia() && in.Media == nil {
		return nil, ErrMediaRequired
	}
	if !in.Type.HasMedia() {
		if in.Media != nil {
			return nil, ErrMediaNotAllowed
		}
		if !hasText(in.Content) {
			return nil, ErrContentRequired
		}
	}
	if _, err := requireOwner(ctx, s.creators, actorID, creatorID); err != nil {
		return nil, err
	}

	post := &model.Post{CreatorID: creatorID, Type: in.Type, Content: in.Content}
	if in.Media != nil {
		key, url, err := s.upload(ctx, in.Media)
		if err != nil {
			return nil, err
		}
		post.MediaKey, post.MediaURL = &key, &url
	}

	if err := s.repo.Create(ctx, post); err != nil {
		if post.MediaKey != nil {
			logOrphan(ctx, *post.MediaKey, err)
		}
		return nil, errcode.Internal(err)
	}
	return post, nil
}

func (s *PostService) List(ctx context.Context, actorID, creatorID uint64) ([]model.Post, error) {
	if err := s.access.Authorize(ctx, actorID, creatorID); err != nil {
		return nil, err
	}
	list, err := s.repo.ListByCreator(ctx, creatorID)
	if err != nil {
		return nil, errcode.Internal(err)
	}
	return list, nil
}

func (s *PostService) Get(ctx context.Context, actorID, creatorID, postID uint64) (*model.Post, error) {
	if err := s.access.Authorize(ctx, actorID, creatorID); err != nil {
		return nil, err
	}
	post, err := s.repo.FindByID(ctx, creatorID, postID)
	if err != nil {
		return nil, storeErr(err, errcode.ErrPostNotFound)
	}
	return post, nil
}

// Update 新媒体在事务前上传；事务内先删旧对象再更新行，任一步失败整体回滚
func (s *PostService) Update(ctx context.Context, actorID, creatorID, postID uint64, in UpdatePostInput) (*model.Post, error) {
	if _, err := requireOwner(ctx, s.creators, actorID, creatorID); err != nil {
		return nil, err
	}
	post, err := s.repo.FindByID(ctx, creatorID, postID)
	if err != nil {
		return nil, storeErr(err, errcode.ErrPostNotFound)
	}

	next := *post
	if in.Type != nil {
		if !in.Type.Valid() {
			return nil, ErrInvalidPostType
		}
		next.Type = *in.Type
	}
	if in.Content != nil {
		next.Content = in.Content
	}
	if next.Type.HasMedia() {
		if in.Media == nil && post.MediaKey == nil {
			return nil, ErrMediaRequired
		}
	} else {
		if in.Media != nil {
			return nil, ErrMediaNotAllowed
		}
		if !hasText(next.Content) {
			return nil, ErrContentRequired
		}
		next.MediaKey, next.MediaURL = nil, nil
	}

	var newKey string
	if in.Media != nil {
		key, url, err := s.upload(ctx, in.Media)
		if err != nil {
			return nil, err
		}
		newKey = key
		next.MediaKey, next.MediaURL = &key, &url
	}

	// 旧对象在换媒体或改为文本时删除
	dropOld := post.MediaKey != nil && (in.Media != nil || !next.Type.HasMedia())
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if dropOld {
			if err := s.store.DeleteObject(ctx, *post.MediaKey); err != nil {
				return err
			}
		}
		return (&mysql.PostRepository{DB: tx}).Save(ctx, &next)
	})
	if err != nil {
		if newKey != "" {
			logOrphan(ctx, newKey, err)
		}
		return nil, appErr(err)
	}
	updated, err := s.repo.FindByID(ctx, creatorID, postID)
	if err != nil {
		return nil, errcode.Internal(err)
	}
	return updated, nil
}

// Delete 先删对象再删行，同一事务
func (s *PostService) Delete(ctx context.Context, actorID, creatorID, postID uint64) error {
	if _, err := requireOwner(ctx, s.creators, actorID, creatorID); err != nil {
		return err
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		posts := &mysql.PostRepository{DB: tx}
		post, err := posts.FindByID(ctx, creatorID, postID)
		if err != nil {
			return storeErr(err, errcode.ErrPostNotFound)
		}
		if post.MediaKey != nil {
			if err = s.store.DeleteObject(ctx, *post.MediaKey); err != nil {
				return err
			}
		}
		return posts.Delete(ctx, post.ID)
	})
	return appErr(err)
}

// DeleteAll 删除创作者的全部帖子及媒体，返回删除条数
func (s *PostService) DeleteAll(ctx context.Context, actorID, creatorID uint64) (int64, error) {
	if _, err := requireOwner(ctx, s.creators, actorID, creatorID); err != nil {
		return 0, err
	}
	var n int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		posts := &mysql.PostRepository{DB: tx}
		list, err := posts.ListByCreator(ctx, creatorID)
		if err != nil {
			return err
		}
		n = int64(len(list))
		return deletePostsTx(ctx, posts, s.store, creatorID)
	})
	if err != nil {
		return 0, appErr(err)
	}
	return n, nil
}

// deletePostsTx 先删除全部媒体对象，再批量删行
func deletePostsTx(ctx context.Context, posts *mysql.PostRepository, store storage.ObjectStore, creatorID uint64) error {
	list, err := posts.ListByCreator(ctx, creatorID)
	if err != nil {
		return err
	}
	for _, p := range list {
		if p.MediaKey == nil {
			continue
		}
		if err = store.DeleteObject(ctx, *p.MediaKey); err != nil {
			return err
		}
	}
	_, err = posts.DeleteByCreator(ctx, creatorID)
	return err
}
