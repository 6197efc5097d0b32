package repository

import (
	"context"
	"maurizone/internal/model"

	"gorm.io/gorm"
)

type NotificationRepo interface {
	Create(ctx context.Context, n *model.Notification) error
	ListByUser(ctx context.Context, userID uint64, limit int) ([]*model.Notification, error)
	CountUnread(ctx context.Context, userID uint64) (int64, error)
	MarkRead(ctx context.Context, userID, notificationID uint64) error
	MarkAllRead(ctx context.Context, userID uint64) error
}

type notificationRepoImpl struct {
	db *gorm.DB
}

func NewNotificationRepo(db *gorm.DB) NotificationRepo {
	return &notificationRepoImpl{db: db}
}

func (s *notificationRepoImpl) Create(ctx context.Context, n *model.Notification) error {
	return s.db.WithContext(ctx).Create(n).Error
}

func (s *notificationRepoImpl) ListByUser(ctx context.Context, userID uint64, limit int) ([]*model.Notification, error) {
	var list []*model.Notification
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&list).Error
	return list, err
}

func (s *notificationRepoImpl) CountUnread(ctx context.Context, userID uint64) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.Notification{}).
		Where("user_id = ? AND `read` = false", userID).
		Count(&count).Error
	return count, err
}

func (s *notificationRepoImpl) MarkRead(ctx context.Context, userID, notificationID uint64) error {
	return s.db.WithContext(ctx).Model(&model.Notification{}).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Update("read", true).Error
}

func (s *notificationRepoImpl) MarkAllRead(ctx context.Context, userID uint64) error {
	return s.db.WithContext(ctx).Model(&model.Notification{}).
		Where("user_id = ? AND `read` = false", userID).
		Update("read", true).Error
}
