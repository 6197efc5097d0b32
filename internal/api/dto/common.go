package dto

// Response 统一响应信封
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

// PageQuery 通用分页参数
type PageQuery struct {
	Page     int `form:"page,default=1" binding:"omitempty,min=1"`
	PageSize int `form:"pageSize,default=20" binding:"omitempty,min=1,max=100"`
}

// PageDTO 通用分页响应
type PageDTO struct {
	Items interface{} `json:"items"`
	Total int64       `json:"total"`
}
