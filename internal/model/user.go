package model

import "time"

// User 用户主表
type User struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"type:varchar(64);not null" json:"name"`
	Email     string    `gorm:"uniqueIndex;type:varchar(128);not null" json:"email"`
	Password  string    `gorm:"type:varchar(128);not null" json:"-"`
	Role      string    `gorm:"type:varchar(16);not null;default:USER" json:"role"` // USER / ADMIN
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (User) TableName() string { return "users" }
