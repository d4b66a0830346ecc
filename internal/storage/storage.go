package storage

import (
	"context"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
)

//go:generate mockgen -destination=mocks/mock_storage.go -package=mocks LinkUp/internal/storage ObjectStore

// ObjectStore 媒体对象存储，PutObject 返回可公开访问的 URL
type ObjectStore interface {
	PutObject(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (string, error)
	DeleteObject(ctx context.Context, key string) error
}

const mediaPrefix = "media/"

// NewMediaKey 生成唯一对象名，保留原始扩展名
func NewMediaKey(filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	return mediaPrefix + uuid.NewString() + ext
}
