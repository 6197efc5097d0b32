package dto

import "time"

// CreateOrderReq 下单请求体
type CreateOrderReq struct {
	ProductID uint64 `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
}

// UpdateOrderStatusReq 订单状态流转请求体
type UpdateOrderStatusReq struct {
	Status string `json:"status" binding:"required,oneof=PAID SHIPPED DELIVERED CANCELLED"`
}

// OrderDTO 订单明细响应
type OrderDTO struct {
	ID         uint64    `json:"id"`
	BuyerID    uint64    `json:"buyerId"`
	StoreID    uint64    `json:"storeId"`
	ProductID  uint64    `json:"productId"`
	Quantity   int       `json:"quantity"`
	TotalCents int64     `json:"totalCents"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"createdAt"`
}
