package repository

import (
	"context"
	"maurizone/internal/model"
	"time"

	"gorm.io/gorm"
)

type ConversationRepo interface {
	Create(ctx context.Context, conv *model.Conversation, participants []*model.ConversationParticipant) error
	Get(ctx context.Context, convID uint64) (*model.Conversation, error)
	FindPairwise(ctx context.Context, userA, userB uint64, storeID, orderID, productID *uint64) (*model.Conversation, error)
	IsParticipant(ctx context.Context, convID, userID uint64) (bool, error)
	GetParticipant(ctx context.Context, convID, userID uint64) (*model.ConversationParticipant, error)
	ParticipantConversationIDs(ctx context.Context, userID uint64) ([]uint64, error)
	RecipientIDs(ctx context.Context, convID, exceptUserID uint64) ([]uint64, error)
	ListByUser(ctx context.Context, userID uint64, page, pageSize int) ([]*model.Conversation, int64, error)
	UpdateLastMessage(ctx context.Context, convID, messageID uint64, at time.Time) error
	UpdateLastReadAt(ctx context.Context, convID, userID uint64, at time.Time) error
	Delete(ctx context.Context, convID uint64) error
}

type conversationRepoImpl struct {
	db *gorm.DB
}

func NewConversationRepo(db *gorm.DB) ConversationRepo {
	return &conversationRepoImpl{db: db}
}

// Create 开启事务创建会话及双方成员
func (s *conversationRepoImpl) Create(ctx context.Context, conv *model.Conversation, participants []*model.ConversationParticipant) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(conv).Error; err != nil {
			return err
		}
		for _, p := range participants {
			p.ConversationID = conv.ID
			if err := tx.Create(p).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Get 根据会话 ID 获取会话（含成员）
func (s *conversationRepoImpl) Get(ctx context.Context, convID uint64) (*model.Conversation, error) {
	var conv model.Conversation
	err := s.db.WithContext(ctx).
		Preload("Participants").
		Preload("Participants.User").
		First(&conv, convID).Error
	return &conv, err
}

// FindPairwise 查找两个用户在指定上下文下的既有会话
func (s *conversationRepoImpl) FindPairwise(ctx context.Context, userA, userB uint64, storeID, orderID, productID *uint64) (*model.Conversation, error) {
	var conv model.Conversation

	q := s.db.WithContext(ctx).Model(&model.Conversation{}).
		Joins("JOIN conversation_participants pa ON pa.conversation_id = conversations.id AND pa.user_id = ?", userA).
		Joins("JOIN conversation_participants pb ON pb.conversation_id = conversations.id AND pb.user_id = ?", userB)

	q = nullableEq(q, "conversations.store_id", storeID)
	q = nullableEq(q, "conversations.order_id", orderID)
	q = nullableEq(q, "conversations.product_id", productID)

	err := q.Preload("Participants").Preload("Participants.User").First(&conv).Error
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

func nullableEq(q *gorm.DB, column string, v *uint64) *gorm.DB {
	if v == nil {
		return q.Where(column + " IS NULL")
	}
	return q.Where(column+" = ?", *v)
}

// IsParticipant 检查用户是否是会话成员
func (s *conversationRepoImpl) IsParticipant(ctx context.Context, convID, userID uint64) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.ConversationParticipant{}).
		Where("conversation_id = ? AND user_id = ?", convID, userID).
		Count(&count).Error
	return count > 0, err
}

// GetParticipant 获取成员记录（含已读水位线）
func (s *conversationRepoImpl) GetParticipant(ctx context.Context, convID, userID uint64) (*model.ConversationParticipant, error) {
	var p model.ConversationParticipant
	err := s.db.WithContext(ctx).
		Where("conversation_id = ? AND user_id = ?", convID, userID).
		First(&p).Error
	return &p, err
}

// ParticipantConversationIDs 获取用户参与的所有会话 ID（连接建立时订阅房间用）
func (s *conversationRepoImpl) ParticipantConversationIDs(ctx context.Context, userID uint64) ([]uint64, error) {
	var ids []uint64
	err := s.db.WithContext(ctx).Model(&model.ConversationParticipant{}).
		Where("user_id = ?", userID).
		Pluck("conversation_id", &ids).Error
	return ids, err
}

// RecipientIDs 获取会话中除指定用户外的成员 ID
func (s *conversationRepoImpl) RecipientIDs(ctx context.Context, convID, exceptUserID uint64) ([]uint64, error) {
	var ids []uint64
	err := s.db.WithContext(ctx).Model(&model.ConversationParticipant{}).
		Where("conversation_id = ? AND user_id != ?", convID, exceptUserID).
		Pluck("user_id", &ids).Error
	return ids, err
}

// ListByUser 按最新活跃排序分页查询用户的会话
func (s *conversationRepoImpl) ListByUser(ctx context.Context, userID uint64, page, pageSize int) ([]*model.Conversation, int64, error) {
	base := s.db.WithContext(ctx).Model(&model.Conversation{}).
		Joins("JOIN conversation_participants p ON p.conversation_id = conversations.id AND p.user_id = ?", userID)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var convs []*model.Conversation
	err := base.
		Order("conversations.last_message_at DESC, conversations.id DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Preload("Participants").
		Preload("Participants.User").
		Find(&convs).Error
	return convs, total, err
}

// UpdateLastMessage 波及更新会话的最新消息指针
func (s *conversationRepoImpl) UpdateLastMessage(ctx context.Context, convID, messageID uint64, at time.Time) error {
	return s.db.WithContext(ctx).Model(&model.Conversation{}).
		Where("id = ?", convID).
		Updates(map[string]interface{}{
			"last_message_id": messageID,
			"last_message_at": at,
		}).Error
}

// UpdateLastReadAt 更新成员已读水位线
func (s *conversationRepoImpl) UpdateLastReadAt(ctx context.Context, convID, userID uint64, at time.Time) error {
	return s.db.WithContext(ctx).Model(&model.ConversationParticipant{}).
		Where("conversation_id = ? AND user_id = ?", convID, userID).
		Update("last_read_at", at).Error
}

// Delete 硬删除会话，级联删除成员/消息/附件由外键约束保证
func (s *conversationRepoImpl) Delete(ctx context.Context, convID uint64) error {
	return s.db.WithContext(ctx).Delete(&model.Conversation{}, convID).Error
}
