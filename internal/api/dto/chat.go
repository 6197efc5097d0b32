package dto

import "time"

// OpenConversationReq 打开（或复用）会话请求体，上下文字段可选
type OpenConversationReq struct {
	TargetUserID uint64  `json:"targetUserId" binding:"required"`
	StoreID      *uint64 `json:"storeId"`
	OrderID      *uint64 `json:"orderId"`
	ProductID    *uint64 `json:"productId"`
}

// SendMessageReq 发送文本消息请求体
type SendMessageReq struct {
	ConversationID uint64 `json:"conversationId" binding:"required"`
	Content        string `json:"content" binding:"required"`
}

// MessagePageQuery 消息历史游标分页参数
type MessagePageQuery struct {
	Cursor string `form:"cursor"`
	Limit  int    `form:"limit,default=30" binding:"omitempty,min=1,max=100"`
}

// ParticipantDTO 会话成员响应
type ParticipantDTO struct {
	UserID     uint64     `json:"userId"`
	Name       string     `json:"name"`
	Role       string     `json:"role"`
	Online     bool       `json:"online"`
	LastReadAt *time.Time `json:"lastReadAt"`
}

// ConversationDTO 会话明细响应
type ConversationDTO struct {
	ID            uint64           `json:"id"`
	StoreID       *uint64          `json:"storeId"`
	OrderID       *uint64          `json:"orderId"`
	ProductID     *uint64          `json:"productId"`
	Participants  []ParticipantDTO `json:"participants"`
	LastMessage   *MessageDTO      `json:"lastMessage"`
	LastMessageAt *time.Time       `json:"lastMessageAt"`
	UnreadCount   int64            `json:"unreadCount"`
	CreatedAt     time.Time        `json:"createdAt"`
}

// AttachmentDTO 消息附件响应
type AttachmentDTO struct {
	ID           uint64  `json:"id"`
	URL          string  `json:"url"`
	MimeType     string  `json:"mimeType"`
	SizeBytes    int64   `json:"sizeBytes"`
	Width        *int    `json:"width,omitempty"`
	Height       *int    `json:"height,omitempty"`
	OriginalName *string `json:"originalName,omitempty"`
}

// MessageDTO 消息明细响应
type MessageDTO struct {
	ID             uint64          `json:"id"`
	ConversationID uint64          `json:"conversationId"`
	SenderID       uint64          `json:"senderId"`
	SenderName     string          `json:"senderName"`
	Kind           string          `json:"kind"`
	Content        *string         `json:"content"`
	Attachments    []AttachmentDTO `json:"attachments,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
}

// MessagePageDTO 消息历史响应，items 按时间倒序，nextCursor 为空表示已到头
type MessagePageDTO struct {
	Items      []*MessageDTO `json:"items"`
	NextCursor *string       `json:"nextCursor"`
}

// UploadTempMetadata 附件上传的 Redis 临时登记项
type UploadTempMetadata struct {
	Mime      string `json:"mime"`
	Size      int64  `json:"size"`
	CreatedAt int64  `json:"createdAt"`
}

// MarkReadDTO 已读标记响应
type MarkReadDTO struct {
	ConversationID uint64    `json:"conversationId"`
	ReadAt         time.Time `json:"readAt"`
}
