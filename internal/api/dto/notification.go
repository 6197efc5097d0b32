package dto

import "time"

// NotificationDTO 站内通知响应
type NotificationDTO struct {
	ID        uint64    `json:"id"`
	Kind      string    `json:"kind"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Data      string    `json:"data,omitempty"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}

// UnreadCountDTO 未读数响应
type UnreadCountDTO struct {
	Count int64 `json:"count"`
}
