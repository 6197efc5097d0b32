package model

import "time"

const (
	ParticipantRoleInitiator   = "INITIATOR"
	ParticipantRoleCounterpart = "COUNTERPART"
)

// Conversation 会话主表，严格两人会话，可挂接店铺/订单/商品上下文
type Conversation struct {
	ID            uint64     `gorm:"primaryKey;autoIncrement" json:"id"`
	StoreID       *uint64    `gorm:"index" json:"storeId"`
	OrderID       *uint64    `gorm:"index" json:"orderId"`
	ProductID     *uint64    `gorm:"index" json:"productId"`
	LastMessageID *uint64    `json:"lastMessageId"`
	LastMessageAt *time.Time `gorm:"index" json:"lastMessageAt"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`

	Participants []ConversationParticipant `gorm:"foreignKey:ConversationID;constraint:OnDelete:CASCADE" json:"participants"`
	Messages     []Message                 `gorm:"foreignKey:ConversationID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Conversation) TableName() string { return "conversations" }

// ConversationParticipant 会话成员表
type ConversationParticipant struct {
	ID             uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	ConversationID uint64    `gorm:"uniqueIndex:idx_conv_user;not null" json:"conversationId"`
	UserID         uint64    `gorm:"uniqueIndex:idx_conv_user;index;not null" json:"userId"`
	Role           string    `gorm:"type:varchar(16);not null" json:"role"` // INITIATOR / COUNTERPART
	LastReadAt     time.Time `gorm:"not null" json:"lastReadAt"`            // 已读水位线
	CreatedAt      time.Time `json:"createdAt"`

	User User `gorm:"foreignKey:UserID;references:ID" json:"user"`

	// 虚拟字段：仅读不写，存储 SQL 计算结果
	UnreadCount uint64 `gorm:"->" json:"unreadCount"`
}

func (ConversationParticipant) TableName() string { return "conversation_participants" }
