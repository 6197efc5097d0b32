package model

import "time"

const (
	OrderStatusPending   = "PENDING"
	OrderStatusPaid      = "PAID"
	OrderStatusShipped   = "SHIPPED"
	OrderStatusDelivered = "DELIVERED"
	OrderStatusCancelled = "CANCELLED"
)

// Order 订单表
type Order struct {
	ID         uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	BuyerID    uint64    `gorm:"index;not null" json:"buyerId"`
	StoreID    uint64    `gorm:"index;not null" json:"storeId"`
	ProductID  uint64    `gorm:"index;not null" json:"productId"`
	Quantity   int       `gorm:"not null;default:1" json:"quantity"`
	TotalCents int64     `gorm:"not null" json:"totalCents"`
	Status     string    `gorm:"type:varchar(16);not null;default:PENDING" json:"status"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func (Order) TableName() string { return "orders" }
