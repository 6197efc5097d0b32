package service

import (
	"context"
	"errors"
	log "log/slog"
	"strings"
	"sync"
	"time"

	"maurizone/internal/api/dto"
	"maurizone/internal/model"
	"maurizone/internal/pkg/consts"
	"maurizone/internal/pkg/util"
	"maurizone/internal/repository"

	"github.com/goccy/go-json"
	"gorm.io/gorm"
)

const messagePageDefaultLimit = 30

// ChatBroadcaster 实时网关出口，由 realtime.Gateway 实现
type ChatBroadcaster interface {
	BroadcastNewMessage(conversationID, senderID uint64, payload interface{})
	BroadcastRead(conversationID, userID uint64, readAt time.Time)
	IsUserOnline(userID uint64) bool
	JoinConversation(conversationID uint64, userIDs ...uint64)
	LeaveConversation(conversationID uint64, userIDs ...uint64)
}

// AttachmentMeta 上传落地后的附件元数据
type AttachmentMeta struct {
	URL          string
	MimeType     string
	SizeBytes    int64
	Width        *int
	Height       *int
	OriginalName *string
}

// ChatService 会话服务接口定义
type ChatService interface {
	OpenConversation(ctx context.Context, userID uint64, req *dto.OpenConversationReq) (*dto.ConversationDTO, error)
	ListConversations(ctx context.Context, userID uint64, page, pageSize int) ([]*dto.ConversationDTO, int64, error)
	GetConversation(ctx context.Context, userID, convID uint64) (*dto.ConversationDTO, error)
	GetMessages(ctx context.Context, userID, convID uint64, cursor string, limit int) (*dto.MessagePageDTO, error)
	SendText(ctx context.Context, userID uint64, req *dto.SendMessageReq) (*dto.MessageDTO, error)
	SendAttachment(ctx context.Context, userID, convID uint64, content *string, meta *AttachmentMeta) (*dto.MessageDTO, error)
	MarkRead(ctx context.Context, userID, convID uint64) (*dto.MarkReadDTO, error)
	DeleteConversation(ctx context.Context, userID, convID uint64) error
}

type chatServiceImpl struct {
	convRepo     repository.ConversationRepo
	msgRepo      repository.MessageRepo
	userRepo     repository.UserRepo
	broadcaster  ChatBroadcaster
	notification NotificationService

	// 会话级发送锁：持久化与广播在同一临界区内完成，
	// 保证不同发送者的消息以入库顺序到达在线成员
	sendLocks sync.Map
}

func NewChatService(
	convRepo repository.ConversationRepo,
	msgRepo repository.MessageRepo,
	userRepo repository.UserRepo,
	broadcaster ChatBroadcaster,
	notification NotificationService,
) ChatService {
	return &chatServiceImpl{
		convRepo:     convRepo,
		msgRepo:      msgRepo,
		userRepo:     userRepo,
		broadcaster:  broadcaster,
		notification: notification,
	}
}

// OpenConversation 打开会话：同一 (双方, 上下文) 组合复用既有会话，否则新建
func (s *chatServiceImpl) OpenConversation(ctx context.Context, userID uint64, req *dto.OpenConversationReq) (*dto.ConversationDTO, error) {
	if req.TargetUserID == userID {
		return nil, ErrSelfConversation
	}
	if _, err := s.userRepo.Get(ctx, req.TargetUserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTargetUserInvalid
		}
		return nil, err
	}

	conv, err := s.convRepo.FindPairwise(ctx, userID, req.TargetUserID, req.StoreID, req.OrderID, req.ProductID)
	if err == nil {
		return s.toConversationDTO(ctx, conv, userID), nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	now := time.Now()
	conv = &model.Conversation{
		StoreID:   req.StoreID,
		OrderID:   req.OrderID,
		ProductID: req.ProductID,
	}
	participants := []*model.ConversationParticipant{
		{UserID: userID, Role: model.ParticipantRoleInitiator, LastReadAt: now},
		{UserID: req.TargetUserID, Role: model.ParticipantRoleCounterpart, LastReadAt: now},
	}
	if err := s.convRepo.Create(ctx, conv, participants); err != nil {
		return nil, err
	}

	// 双方已在线的连接立即订阅新会话房间
	s.broadcaster.JoinConversation(conv.ID, userID, req.TargetUserID)

	full, err := s.convRepo.Get(ctx, conv.ID)
	if err != nil {
		return nil, err
	}
	return s.toConversationDTO(ctx, full, userID), nil
}

// ListConversations 会话列表，按最新活跃降序，附带未读数与在线状态
func (s *chatServiceImpl) ListConversations(ctx context.Context, userID uint64, page, pageSize int) ([]*dto.ConversationDTO, int64, error) {
	convs, total, err := s.convRepo.ListByUser(ctx, userID, page, pageSize)
	if err != nil {
		return nil, 0, err
	}
	out := make([]*dto.ConversationDTO, 0, len(convs))
	for _, conv := range convs {
		out = append(out, s.toConversationDTO(ctx, conv, userID))
	}
	return out, total, nil
}

func (s *chatServiceImpl) GetConversation(ctx context.Context, userID, convID uint64) (*dto.ConversationDTO, error) {
	conv, err := s.getMemberConversation(ctx, userID, convID)
	if err != nil {
		return nil, err
	}
	return s.toConversationDTO(ctx, conv, userID), nil
}

// GetMessages 历史消息游标分页。非法游标按无游标处理（取最新一页）。
func (s *chatServiceImpl) GetMessages(ctx context.Context, userID, convID uint64, cursor string, limit int) (*dto.MessagePageDTO, error) {
	if err := s.requireParticipant(ctx, convID, userID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = messagePageDefaultLimit
	}

	var cursorAt *time.Time
	var cursorID uint64
	if at, id, ok := util.DecodeMessageCursor(cursor); ok {
		cursorAt = &at
		cursorID = id
	}

	messages, err := s.msgRepo.Page(ctx, convID, cursorAt, cursorID, limit)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.MessageDTO, 0, len(messages))
	for _, m := range messages {
		items = append(items, toMessageDTO(m))
	}

	// 满页即认为可能还有更旧的消息；末页恰好满页时多一次空查询
	var next *string
	if len(messages) == limit {
		last := messages[len(messages)-1]
		c := util.EncodeMessageCursor(last.CreatedAt, last.ID)
		next = &c
	}

	return &dto.MessagePageDTO{Items: items, NextCursor: next}, nil
}

// SendText 发送文本消息
func (s *chatServiceImpl) SendText(ctx context.Context, userID uint64, req *dto.SendMessageReq) (*dto.MessageDTO, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, ErrContentEmpty
	}
	if len(content) > consts.MaxMessageContentLen {
		return nil, ErrParamInvalid
	}
	return s.send(ctx, userID, req.ConversationID, model.MessageKindText, &content, nil)
}

// SendAttachment 发送附件消息，附件已由上层落入对象存储
func (s *chatServiceImpl) SendAttachment(ctx context.Context, userID, convID uint64, content *string, meta *AttachmentMeta) (*dto.MessageDTO, error) {
	return s.send(ctx, userID, convID, model.MessageKindAttachment, content, meta)
}

func (s *chatServiceImpl) send(ctx context.Context, userID, convID uint64, kind string, content *string, meta *AttachmentMeta) (*dto.MessageDTO, error) {
	if err := s.requireParticipant(ctx, convID, userID); err != nil {
		return nil, err
	}

	lock := s.conversationLock(convID)
	lock.Lock()
	defer lock.Unlock()

	msg := &model.Message{
		ConversationID: convID,
		SenderID:       userID,
		Kind:           kind,
		Content:        content,
	}
	if meta != nil {
		msg.Attachments = []model.Attachment{{
			URL:          meta.URL,
			MimeType:     meta.MimeType,
			SizeBytes:    meta.SizeBytes,
			Width:        meta.Width,
			Height:       meta.Height,
			OriginalName: meta.OriginalName,
		}}
	}
	if err := s.msgRepo.Create(ctx, msg); err != nil {
		return nil, err
	}
	// 消息已落库：活跃时间戳更新失败只记日志，广播与离线降级照常进行
	if err := s.convRepo.UpdateLastMessage(ctx, convID, msg.ID, msg.CreatedAt); err != nil {
		log.ErrorContext(ctx, "会话活跃时间更新失败", "conversationId", convID, "messageId", msg.ID, "err", err)
	}

	full, err := s.msgRepo.Get(ctx, msg.ID)
	if err != nil {
		full = msg
	}
	msgDTO := toMessageDTO(full)

	s.broadcaster.BroadcastNewMessage(convID, userID, msgDTO)
	s.notifyOffline(ctx, convID, userID, msgDTO)

	return msgDTO, nil
}

// notifyOffline 对离线接收方降级为站内通知 + 离线推送。
// 在线判定与投递之间存在窗口：刚断开的用户可能错过广播，重连拉取历史即可补齐。
func (s *chatServiceImpl) notifyOffline(ctx context.Context, convID, senderID uint64, msg *dto.MessageDTO) {
	recipients, err := s.convRepo.RecipientIDs(ctx, convID, senderID)
	if err != nil {
		return
	}
	for _, recipientID := range recipients {
		if s.broadcaster.IsUserOnline(recipientID) {
			continue
		}
		data, _ := json.Marshal(map[string]uint64{
			"conversationId": convID,
			"messageId":      msg.ID,
			"senderId":       senderID,
		})
		s.notification.CreateAndPush(ctx, recipientID,
			model.NotificationKindNewMessage,
			msg.SenderName+" 发来新消息",
			notificationPreview(msg),
			string(data))
	}
}

// MarkRead 推进已读水位线并向会话内广播回执
func (s *chatServiceImpl) MarkRead(ctx context.Context, userID, convID uint64) (*dto.MarkReadDTO, error) {
	if err := s.requireParticipant(ctx, convID, userID); err != nil {
		return nil, err
	}

	now := time.Now()
	if err := s.convRepo.UpdateLastReadAt(ctx, convID, userID, now); err != nil {
		return nil, err
	}
	s.broadcaster.BroadcastRead(convID, userID, now)

	return &dto.MarkReadDTO{ConversationID: convID, ReadAt: now}, nil
}

// DeleteConversation 任一成员可删除会话，消息与附件记录级联删除
func (s *chatServiceImpl) DeleteConversation(ctx context.Context, userID, convID uint64) error {
	conv, err := s.getMemberConversation(ctx, userID, convID)
	if err != nil {
		return err
	}

	memberIDs := make([]uint64, 0, len(conv.Participants))
	for _, p := range conv.Participants {
		memberIDs = append(memberIDs, p.UserID)
	}

	if err := s.convRepo.Delete(ctx, convID); err != nil {
		return err
	}
	s.broadcaster.LeaveConversation(convID, memberIDs...)
	s.sendLocks.Delete(convID)
	return nil
}

func (s *chatServiceImpl) conversationLock(convID uint64) *sync.Mutex {
	v, _ := s.sendLocks.LoadOrStore(convID, &sync.Mutex{})
	return v.(*sync.Mutex)
}

func (s *chatServiceImpl) requireParticipant(ctx context.Context, convID, userID uint64) error {
	ok, err := s.convRepo.IsParticipant(ctx, convID, userID)
	if err != nil {
		return err
	}
	if !ok {
		// 不区分"会话不存在"与"非成员"，避免探测会话 ID
		return ErrNotParticipant
	}
	return nil
}

func (s *chatServiceImpl) getMemberConversation(ctx context.Context, userID, convID uint64) (*model.Conversation, error) {
	conv, err := s.convRepo.Get(ctx, convID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// 不区分"会话不存在"与"非成员"，避免探测会话 ID
			return nil, ErrNotParticipant
		}
		return nil, err
	}
	for _, p := range conv.Participants {
		if p.UserID == userID {
			return conv, nil
		}
	}
	return nil, ErrNotParticipant
}

func (s *chatServiceImpl) toConversationDTO(ctx context.Context, conv *model.Conversation, viewerID uint64) *dto.ConversationDTO {
	out := &dto.ConversationDTO{
		ID:            conv.ID,
		StoreID:       conv.StoreID,
		OrderID:       conv.OrderID,
		ProductID:     conv.ProductID,
		LastMessageAt: conv.LastMessageAt,
		CreatedAt:     conv.CreatedAt,
	}

	for _, p := range conv.Participants {
		lastRead := p.LastReadAt
		out.Participants = append(out.Participants, dto.ParticipantDTO{
			UserID:     p.UserID,
			Name:       p.User.Name,
			Role:       p.Role,
			Online:     s.broadcaster.IsUserOnline(p.UserID),
			LastReadAt: &lastRead,
		})
		if p.UserID == viewerID {
			count, err := s.msgRepo.CountUnread(ctx, conv.ID, viewerID, p.LastReadAt)
			if err == nil {
				out.UnreadCount = count
			}
		}
	}

	if conv.LastMessageID != nil {
		if msg, err := s.msgRepo.Get(ctx, *conv.LastMessageID); err == nil {
			out.LastMessage = toMessageDTO(msg)
		}
	}
	return out
}

func toMessageDTO(msg *model.Message) *dto.MessageDTO {
	out := &dto.MessageDTO{
		ID:             msg.ID,
		ConversationID: msg.ConversationID,
		SenderID:       msg.SenderID,
		SenderName:     msg.Sender.Name,
		Kind:           msg.Kind,
		Content:        msg.Content,
		CreatedAt:      msg.CreatedAt,
	}
	for _, a := range msg.Attachments {
		out.Attachments = append(out.Attachments, dto.AttachmentDTO{
			ID:           a.ID,
			URL:          a.URL,
			MimeType:     a.MimeType,
			SizeBytes:    a.SizeBytes,
			Width:        a.Width,
			Height:       a.Height,
			OriginalName: a.OriginalName,
		})
	}
	return out
}

func notificationPreview(msg *dto.MessageDTO) string {
	if msg.Content != nil && *msg.Content != "" {
		preview := *msg.Content
		// 按字符截断，避免把多字节字符切成半个
		if r := []rune(preview); len(r) > 120 {
			preview = string(r[:120])
		}
		return preview
	}
	if len(msg.Attachments) > 0 {
		if name := msg.Attachments[0].OriginalName; name != nil {
			return "[附件] " + *name
		}
		return "[附件]"
	}
	return ""
}
