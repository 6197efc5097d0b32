package model

import "time"

// Product 商品表
type Product struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	StoreID     uint64    `gorm:"index;not null" json:"storeId"`
	Name        string    `gorm:"type:varchar(128);not null;index" json:"name"`
	Description string    `gorm:"type:varchar(2048)" json:"description"`
	PriceCents  int64     `gorm:"not null" json:"priceCents"`
	Stock       int       `gorm:"not null;default:0" json:"stock"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (Product) TableName() string { return "products" }
