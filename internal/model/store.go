package model

import "time"

// Store 店铺表，一个用户至多拥有一个店铺
type Store struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	OwnerID     uint64    `gorm:"uniqueIndex;not null" json:"ownerId"`
	Name        string    `gorm:"type:varchar(128);not null" json:"name"`
	Description string    `gorm:"type:varchar(512)" json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (Store) TableName() string { return "stores" }
