package model

import "time"

// SubRequest 私有创作者的待处理订阅申请，同意或拒绝后即删除
type SubRequest struct {
	ID        uint64    `gorm:"primaryKey" json:"id"`
	UserID    uint64    `gorm:"not null;uniqueIndex:uk_subrequest_user_creator,priority:1" json:"user_id"`
	CreatorID uint64    `gorm:"not null;index;uniqueIndex:uk_subrequest_user_creator,priority:2" json:"creator_id"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName sets table name for SubRequest
func (SubRequest) TableName() string {
	return "sub_requests"
}

// Subscriber 已处理的订阅关系，只通过 upsert 写入
type Subscriber struct {
	ID        uint64    `gorm:"primaryKey" json:"id"`
	UserID    uint64    `gorm:"not null;uniqueIndex:uk_subscriber_user_creator,priority:1" json:"user_id"`
	CreatorID uint64    `gorm:"not null;index;uniqueIndex:uk_subscriber_user_creator,priority:2" json:"creator_id"`
	HasAccess bool      `gorm:"not null" json:"has_access"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SubscriberView 订阅者列表返回结构
type SubscriberView struct {
	ID        uint64 `json:"id"`
	UserID    uint64 `json:"user_id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	HasAccess bool   `json:"has_access"`
}

const (
	EventSubRequested = "subscription.requested"
	EventSubGranted   = "subscription.granted"
	EventSubRejected  = "subscription.rejected"
	EventSubCancelled = "subscription.cancelled"
	EventSubRevoked   = "subscription.revoked"
)

const (
	OutboxPending int8 = 0
	OutboxSent    int8 = 1
	OutboxFailed  int8 = 2
)

// SubscriptionEvent 订阅状态变更的 outbox 表，与状态变更同事务写入
type SubscriptionEvent struct {
	ID        uint64 `gorm:"primaryKey"`
	EventType string `gorm:"size:32;not null"`
	UserID    uint64 `gorm:"not null"`
	CreatorID uint64 `gorm:"not null"`
	Payload   string `gorm:"type:text;not null"`
	Status    int8   `gorm:"not null;default:0;index"`
	Retry     int    `gorm:"not null;default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (SubscriptionEvent) TableName() string { return "subscription_outbox" }
