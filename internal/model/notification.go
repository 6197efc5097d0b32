package model

import "time"

const (
	NotificationKindNewMessage = "NEW_MESSAGE"
)

// Notification 站内通知表，同时作为离线兜底推送的持久记录
type Notification struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    uint64    `gorm:"index;not null" json:"userId"`
	Kind      string    `gorm:"type:varchar(32);not null" json:"kind"`
	Title     string    `gorm:"type:varchar(128);not null" json:"title"`
	Body      string    `gorm:"type:varchar(512)" json:"body"`
	Data      string    `gorm:"type:json" json:"data"` // JSON 负载 {conversationId, messageId, senderId}
	Read      bool      `gorm:"not null;default:false;index" json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}

func (Notification) TableName() string { return "notifications" }
