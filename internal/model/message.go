package model

import "time"

const (
	MessageKindText       = "TEXT"
	MessageKindAttachment = "ATTACHMENT"
)

// Message 消息表。消息一经创建不可修改，仅随会话级联删除。
// 会话内的全序为 (created_at DESC, id DESC)，id 为同一时间粒度内的决胜键。
type Message struct {
	ID             uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	ConversationID uint64    `gorm:"index:idx_conv_created_id,priority:1;not null" json:"conversationId"`
	SenderID       uint64    `gorm:"index;not null" json:"senderId"`
	Kind           string    `gorm:"type:varchar(16);not null;default:TEXT" json:"kind"` // TEXT / ATTACHMENT
	Content        *string   `gorm:"type:varchar(4000)" json:"content"`                  // 纯附件消息可为空
	CreatedAt      time.Time `gorm:"index:idx_conv_created_id,priority:2" json:"createdAt"`

	Sender      User         `gorm:"foreignKey:SenderID;references:ID" json:"sender"`
	Attachments []Attachment `gorm:"foreignKey:MessageID;constraint:OnDelete:CASCADE" json:"attachments"`
}

func (Message) TableName() string { return "messages" }

// Attachment 附件表，与所属消息同事务创建
type Attachment struct {
	ID           uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	MessageID    uint64    `gorm:"index;not null" json:"messageId"`
	URL          string    `gorm:"type:varchar(512);not null" json:"url"`
	MimeType     string    `gorm:"type:varchar(128);not null" json:"mimeType"`
	SizeBytes    int64     `gorm:"not null" json:"sizeBytes"`
	Width        *int      `json:"width"`
	Height       *int      `json:"height"`
	OriginalName *string   `gorm:"type:varchar(255)" json:"originalName"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (Attachment) TableName() string { return "attachments" }
