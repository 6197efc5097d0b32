package service

import (
	"context"
	log "log/slog"
	"maurizone/internal/api/dto"
	"maurizone/internal/model"
	"maurizone/internal/repository"

	"github.com/jinzhu/copier"
)

// PushSender 离线推送出口（HTTP 推送服务商）
type PushSender interface {
	Push(ctx context.Context, userID uint64, title, body, data string) error
}

// NotificationService 站内通知服务接口定义
type NotificationService interface {
	CreateAndPush(ctx context.Context, userID uint64, kind, title, body, data string)
	List(ctx context.Context, userID uint64, limit int) ([]*dto.NotificationDTO, error)
	UnreadCount(ctx context.Context, userID uint64) (int64, error)
	MarkRead(ctx context.Context, userID, notificationID uint64) error
	MarkAllRead(ctx context.Context, userID uint64) error
}

type notificationServiceImpl struct {
	repo   repository.NotificationRepo
	pusher PushSender
}

func NewNotificationService(repo repository.NotificationRepo, pusher PushSender) NotificationService {
	return &notificationServiceImpl{repo: repo, pusher: pusher}
}

// CreateAndPush 落库一条站内通知，并尽力触达推送服务商。
// 推送失败只记日志：站内记录已保证消息不丢。
func (s *notificationServiceImpl) CreateAndPush(ctx context.Context, userID uint64, kind, title, body, data string) {
	n := &model.Notification{
		UserID: userID,
		Kind:   kind,
		Title:  title,
		Body:   body,
		Data:   data,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		log.Error("通知落库失败", "userId", userID, "kind", kind, "err", err)
		return
	}

	if s.pusher == nil {
		return
	}
	if err := s.pusher.Push(ctx, userID, title, body, data); err != nil {
		log.Warn("离线推送失败", "userId", userID, "notificationId", n.ID, "err", err)
	}
}

func (s *notificationServiceImpl) List(ctx context.Context, userID uint64, limit int) ([]*dto.NotificationDTO, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	list, err := s.repo.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.NotificationDTO, 0, len(list))
	for _, n := range list {
		var item dto.NotificationDTO
		_ = copier.Copy(&item, n)
		out = append(out, &item)
	}
	return out, nil
}

func (s *notificationServiceImpl) UnreadCount(ctx context.Context, userID uint64) (int64, error) {
	return s.repo.CountUnread(ctx, userID)
}

func (s *notificationServiceImpl) MarkRead(ctx context.Context, userID, notificationID uint64) error {
	return s.repo.MarkRead(ctx, userID, notificationID)
}

func (s *notificationServiceImpl) MarkAllRead(ctx context.Context, userID uint64) error {
	return s.repo.MarkAllRead(ctx, userID)
}
