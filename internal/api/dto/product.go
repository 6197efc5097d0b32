package dto

import "time"

// CreateProductReq 上架商品请求体
type CreateProductReq struct {
	Name        string `json:"name" binding:"required,min=1,max=128"`
	Description string `json:"description" binding:"max=2000"`
	PriceCents  int64  `json:"priceCents" binding:"required,min=1"`
	Stock       int    `json:"stock" binding:"min=0"`
}

// UpdateProductReq 更新商品请求体
type UpdateProductReq struct {
	Name        *string `json:"name" binding:"omitempty,min=1,max=128"`
	Description *string `json:"description" binding:"omitempty,max=2000"`
	PriceCents  *int64  `json:"priceCents" binding:"omitempty,min=1"`
	Stock       *int    `json:"stock" binding:"omitempty,min=0"`
}

// ProductListQuery 商品列表查询参数
type ProductListQuery struct {
	PageQuery
	StoreID uint64 `form:"storeId"`
	Query   string `form:"q" binding:"max=128"`
}

// ProductDTO 商品明细响应
type ProductDTO struct {
	ID          uint64    `json:"id"`
	StoreID     uint64    `json:"storeId"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	PriceCents  int64     `json:"priceCents"`
	Stock       int       `json:"stock"`
	CreatedAt   time.Time `json:"createdAt"`
}
