package dto

import "time"

// CreateStoreReq 开店请求体
type CreateStoreReq struct {
	Name        string `json:"name" binding:"required,min=1,max=128"`
	Description string `json:"description" binding:"max=1000"`
}

// UpdateStoreReq 更新店铺请求体
type UpdateStoreReq struct {
	Name        *string `json:"name" binding:"omitempty,min=1,max=128"`
	Description *string `json:"description" binding:"omitempty,max=1000"`
}

// StoreDTO 店铺明细响应
type StoreDTO struct {
	ID          uint64    `json:"id"`
	OwnerID     uint64    `json:"ownerId"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}
