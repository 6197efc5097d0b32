package service

import (
	"errors"
)

const (
	BadRequest          = 400
	Unauthorized        = 401
	Forbidden           = 403
	NotFound            = 404
	InternalServerError = 500
)

var (
	ErrParamInvalid       = errors.New("参数错误")
	ErrContentEmpty       = errors.New("消息内容不能为空")
	ErrSelfConversation   = errors.New("不能与自己创建会话")
	ErrTargetUserInvalid  = errors.New("目标用户无效")
	ErrUserNotFound       = errors.New("用户不存在")
	ErrUserExist          = errors.New("用户已存在")
	ErrPasswordIncorrect  = errors.New("密码错误")
	ErrStoreNotFound      = errors.New("店铺不存在")
	ErrStoreExist         = errors.New("已拥有店铺")
	ErrProductNotFound    = errors.New("商品不存在")
	ErrStockInsufficient  = errors.New("商品库存不足")
	ErrOrderNotFound      = errors.New("订单不存在")
	ErrOrderStatusInvalid = errors.New("订单状态不允许此操作")
	ErrNotParticipant     = errors.New("不是该会话的成员")
	ErrFileNotSupported   = errors.New("不支持的文件类型")
	ErrFileTooLarge       = errors.New("文件大小超出限制")
	UnauthenticatedError  = errors.New("凭证缺失或无效")
	ForbiddenError        = errors.New("权限不足")
	UpstreamError         = errors.New("上游服务异常")
	UnExpectedError       = errors.New("系统异常，请稍后重试")
)

var ErrorMap = map[error]int{
	ErrParamInvalid:       BadRequest,
	ErrContentEmpty:       BadRequest,
	ErrSelfConversation:   BadRequest,
	ErrTargetUserInvalid:  BadRequest,
	ErrUserNotFound:       NotFound,
	ErrUserExist:          BadRequest,
	ErrPasswordIncorrect:  Unauthorized,
	ErrStoreNotFound:      NotFound,
	ErrStoreExist:         BadRequest,
	ErrProductNotFound:    NotFound,
	ErrStockInsufficient:  BadRequest,
	ErrOrderNotFound:      NotFound,
	ErrOrderStatusInvalid: BadRequest,
	ErrNotParticipant:     Forbidden,
	ErrFileNotSupported:   BadRequest,
	ErrFileTooLarge:       BadRequest,
	UnauthenticatedError:  Unauthorized,
	ForbiddenError:        Forbidden,
	UpstreamError:         InternalServerError,
	UnExpectedError:       InternalServerError,
}
