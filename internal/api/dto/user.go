package dto

import "time"

// RegisterReq 注册请求体
type RegisterReq struct {
	Name     string `json:"name" binding:"required,min=1,max=64"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=72"`
}

// LoginReq 登录请求体
type LoginReq struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginDTO 登录响应
type LoginDTO struct {
	Token string   `json:"token"`
	User  *UserDTO `json:"user"`
}

// UpdateUserReq 更新个人资料请求体
type UpdateUserReq struct {
	Name *string `json:"name" binding:"omitempty,min=1,max=64"`
}

// UserDTO 用户明细响应
type UserDTO struct {
	ID        uint64    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}
