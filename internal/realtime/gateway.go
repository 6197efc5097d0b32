package realtime

import (
	"context"
	log "log/slog"
	"time"
)

// MembershipSource 会话成员关系查询，由仓储层实现
type MembershipSource interface {
	ParticipantConversationIDs(ctx context.Context, userID uint64) ([]uint64, error)
	IsParticipant(ctx context.Context, conversationID, userID uint64) (bool, error)
}

// Gateway 实时网关，编排连接注册、房间成员、输入状态与在线状态广播
type Gateway struct {
	registry   *Registry
	rooms      *Rooms
	typing     *TypingTracker
	membership MembershipSource
}

func NewGateway(membership MembershipSource, typingTTL time.Duration) *Gateway {
	g := &Gateway{
		registry:   NewRegistry(),
		rooms:      NewRooms(),
		membership: membership,
	}
	g.typing = NewTypingTracker(typingTTL, g.onTypingExpire)
	return g
}

// HandleConnect 连接建立：注册、加入该用户全部会话房间、0→1 时广播上线
func (s *Gateway) HandleConnect(ctx context.Context, conn *Conn) {
	wasOffline := s.registry.Register(conn)

	convIDs, err := s.membership.ParticipantConversationIDs(ctx, conn.UserID)
	if err != nil {
		log.Error("查询用户会话列表失败", "userId", conn.UserID, "err", err)
	}
	for _, convID := range convIDs {
		s.rooms.Join(convID, conn)
	}

	if wasOffline {
		s.announcePresence(convIDs, conn.UserID, true)
	}
	log.Info("WebSocket 连接建立", "connId", conn.ID, "userId", conn.UserID, "rooms", len(convIDs))
}

// HandleDisconnect 连接断开：清掉该用户全部输入状态并广播 stop，再退房，最后 1→0 时广播下线
func (s *Gateway) HandleDisconnect(conn *Conn) {
	for _, convID := range s.typing.StopAll(conn.UserID) {
		s.rooms.BroadcastExcept(convID, conn.UserID, Event{
			Event: EventTypingStop,
			Data:  TypingPayload{ConversationID: convID, UserID: conn.UserID},
		})
	}

	roomIDs := s.rooms.LeaveAll(conn)
	if s.registry.Unregister(conn) {
		s.announcePresence(roomIDs, conn.UserID, false)
	}
	log.Info("WebSocket 连接断开", "connId", conn.ID, "userId", conn.UserID)
}

// JoinConversation 新会话建立后把双方已在线的连接拉入房间
func (s *Gateway) JoinConversation(conversationID uint64, userIDs ...uint64) {
	for _, userID := range userIDs {
		for _, conn := range s.registry.Connections(userID) {
			s.rooms.Join(conversationID, conn)
		}
	}
}

// LeaveConversation 会话删除后把成员连接移出房间
func (s *Gateway) LeaveConversation(conversationID uint64, userIDs ...uint64) {
	for _, userID := range userIDs {
		for _, conn := range s.registry.Connections(userID) {
			s.rooms.Leave(conversationID, conn)
		}
	}
}

// TypingStart 输入开始：校验成员资格后广播给会话内其他成员
func (s *Gateway) TypingStart(ctx context.Context, conversationID, userID uint64) {
	ok, err := s.membership.IsParticipant(ctx, conversationID, userID)
	if err != nil || !ok {
		return
	}
	if s.typing.Start(conversationID, userID) {
		s.rooms.BroadcastExcept(conversationID, userID, Event{
			Event: EventTypingStart,
			Data:  TypingPayload{ConversationID: conversationID, UserID: userID},
		})
	}
}

// TypingStop 输入结束：仅在此前处于输入中时广播
func (s *Gateway) TypingStop(conversationID, userID uint64) {
	if s.typing.Stop(conversationID, userID) {
		s.rooms.BroadcastExcept(conversationID, userID, Event{
			Event: EventTypingStop,
			Data:  TypingPayload{ConversationID: conversationID, UserID: userID},
		})
	}
}

// BroadcastNewMessage 新消息入库后广播给会话全体在线成员，发送方的输入状态随之清除
func (s *Gateway) BroadcastNewMessage(conversationID, senderID uint64, payload interface{}) {
	if s.typing.Stop(conversationID, senderID) {
		s.rooms.BroadcastExcept(conversationID, senderID, Event{
			Event: EventTypingStop,
			Data:  TypingPayload{ConversationID: conversationID, UserID: senderID},
		})
	}
	s.rooms.Broadcast(conversationID, Event{Event: EventMessageNew, Data: payload})
}

// BroadcastRead 已读回执广播给会话内其他成员
func (s *Gateway) BroadcastRead(conversationID, userID uint64, readAt time.Time) {
	s.rooms.BroadcastExcept(conversationID, userID, Event{
		Event: EventMessageRead,
		Data: ReadPayload{
			ConversationID: conversationID,
			UserID:         userID,
			LastReadAt:     readAt.UTC().Format(time.RFC3339Nano),
		},
	})
}

// IsUserOnline 用户是否在线（用于离线推送降级判断）
func (s *Gateway) IsUserOnline(userID uint64) bool {
	return s.registry.IsOnline(userID)
}

func (s *Gateway) onTypingExpire(conversationID, userID uint64) {
	s.rooms.BroadcastExcept(conversationID, userID, Event{
		Event: EventTypingStop,
		Data:  TypingPayload{ConversationID: conversationID, UserID: userID},
	})
}

func (s *Gateway) announcePresence(convIDs []uint64, userID uint64, online bool) {
	status := PresenceOffline
	if online {
		status = PresenceOnline
	}
	event := Event{
		Event: EventPresenceChange,
		Data:  PresencePayload{UserID: userID, Status: status},
	}
	for _, convID := range convIDs {
		s.rooms.BroadcastExcept(convID, userID, event)
	}
}
