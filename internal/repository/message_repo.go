package repository

import (
	"context"
	"maurizone/internal/model"
	"time"

	"gorm.io/gorm"
)

type MessageRepo interface {
	Create(ctx context.Context, msg *model.Message) error
	Get(ctx context.Context, msgID uint64) (*model.Message, error)
	Page(ctx context.Context, convID uint64, cursorAt *time.Time, cursorID uint64, limit int) ([]*model.Message, error)
	CountUnread(ctx context.Context, convID, userID uint64, after time.Time) (int64, error)
}

type messageRepoImpl struct {
	db *gorm.DB
}

func NewMessageRepo(db *gorm.DB) MessageRepo {
	return &messageRepoImpl{db: db}
}

// Create 创建消息，附件随消息同事务写入
func (s *messageRepoImpl) Create(ctx context.Context, msg *model.Message) error {
	return s.db.WithContext(ctx).Create(msg).Error
}

// Get 按 ID 获取消息（含发送者与附件）
func (s *messageRepoImpl) Get(ctx context.Context, msgID uint64) (*model.Message, error) {
	var msg model.Message
	err := s.db.WithContext(ctx).
		Preload("Sender").
		Preload("Attachments").
		First(&msg, msgID).Error
	return &msg, err
}

// Page 游标分页查询历史消息。
// 排序严格为 (created_at DESC, id DESC)；游标过滤取严格小于游标项的消息，
// 即使多条消息共享同一 created_at 也不会跨页重复。
func (s *messageRepoImpl) Page(ctx context.Context, convID uint64, cursorAt *time.Time, cursorID uint64, limit int) ([]*model.Message, error) {
	q := s.db.WithContext(ctx).Model(&model.Message{}).
		Where("conversation_id = ?", convID)

	if cursorAt != nil {
		q = q.Where("created_at < ? OR (created_at = ? AND id < ?)", *cursorAt, *cursorAt, cursorID)
	}

	var messages []*model.Message
	err := q.
		Order("created_at DESC, id DESC").
		Limit(limit).
		Preload("Sender").
		Preload("Attachments").
		Find(&messages).Error
	return messages, err
}

// CountUnread 未读数 = 已读水位线之后、且非本人发送的消息数
func (s *messageRepoImpl) CountUnread(ctx context.Context, convID, userID uint64, after time.Time) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.Message{}).
		Where("conversation_id = ? AND created_at > ? AND sender_id != ?", convID, after, userID).
		Count(&count).Error
	return count, err
}
