package model

import "time"

type PostType string

const (
	PostTypeText  PostType = "text"
	PostTypeImage PostType = "image"
	PostTypeVideo PostType = "video"
)

// HasMedia image/video 类型必须挂载媒体对象
func (t PostType) HasMedia() bool {
	return t == PostTypeImage || t == PostTypeVideo
}

func (t PostType) Valid() bool {
	return t == PostTypeText || t.HasMedia()
}

type Post struct {
	ID        uint64    `gorm:"primaryKey" json:"id"`
	CreatorID uint64    `gorm:"not null;index:idx_creator_time,priority:1" json:"creator_id"`
	Type      PostType  `gorm:"size:16;not null" json:"type"`
	Content   *string   `gorm:"type:text" json:"content"`
	MediaURL  *string   `gorm:"size:512" json:"media_url"`
	MediaKey  *string   `gorm:"size:255" json:"-"`
	CreatedAt time.Time `gorm:"index:idx_creator_time,priority:2,sort:desc" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
