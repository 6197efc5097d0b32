package handler

import (
	"maurizone/internal/api/dto"
	"maurizone/internal/pkg/response"
	"maurizone/internal/service"
	"strconv"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	notificationService service.NotificationService
}

func NewNotificationHandler(notificationService service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// List 站内通知列表
func (s *NotificationHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	res, err := s.notificationService.List(c.Request.Context(), c.GetUint64("user_id"), limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

// UnreadCount 未读通知数
func (s *NotificationHandler) UnreadCount(c *gin.Context) {
	count, err := s.notificationService.UnreadCount(c.Request.Context(), c.GetUint64("user_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.UnreadCountDTO{Count: count})
}

// MarkRead 标记单条通知已读
func (s *NotificationHandler) MarkRead(c *gin.Context) {
	notificationID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	if err := s.notificationService.MarkRead(c.Request.Context(), c.GetUint64("user_id"), notificationID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// MarkAllRead 全部标记已读
func (s *NotificationHandler) MarkAllRead(c *gin.Context) {
	if err := s.notificationService.MarkAllRead(c.Request.Context(), c.GetUint64("user_id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}
