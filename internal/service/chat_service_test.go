package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"maurizone/internal/api/dto"
	"maurizone/internal/model"

	"gorm.io/gorm"
)

// ---- 内存仓储 ----

type memStore struct {
	users      map[uint64]*model.User
	convs      map[uint64]*model.Conversation
	parts      map[uint64][]*model.ConversationParticipant
	msgs       map[uint64]*model.Message
	nextConvID uint64
	nextMsgID  uint64
}

func newMemStore(users ...*model.User) *memStore {
	s := &memStore{
		users: map[uint64]*model.User{},
		convs: map[uint64]*model.Conversation{},
		parts: map[uint64][]*model.ConversationParticipant{},
		msgs:  map[uint64]*model.Message{},
	}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

type memUserRepo struct{ store *memStore }

func (s *memUserRepo) Create(_ context.Context, user *model.User) error {
	s.store.users[user.ID] = user
	return nil
}

func (s *memUserRepo) Get(_ context.Context, userID uint64) (*model.User, error) {
	u, ok := s.store.users[userID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

func (s *memUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range s.store.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *memUserRepo) Update(_ context.Context, _ uint64, _ map[string]interface{}) error {
	return nil
}

func (s *memUserRepo) List(_ context.Context, _, _ int) ([]*model.User, int64, error) {
	return nil, 0, nil
}

type memConvRepo struct{ store *memStore }

func (s *memConvRepo) Create(_ context.Context, conv *model.Conversation, participants []*model.ConversationParticipant) error {
	s.store.nextConvID++
	conv.ID = s.store.nextConvID
	conv.CreatedAt = time.Now()
	s.store.convs[conv.ID] = conv
	for _, p := range participants {
		p.ConversationID = conv.ID
		if u, ok := s.store.users[p.UserID]; ok {
			p.User = *u
		}
		s.store.parts[conv.ID] = append(s.store.parts[conv.ID], p)
	}
	return nil
}

func (s *memConvRepo) Get(_ context.Context, convID uint64) (*model.Conversation, error) {
	conv, ok := s.store.convs[convID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	out := *conv
	out.Participants = nil
	for _, p := range s.store.parts[convID] {
		out.Participants = append(out.Participants, *p)
	}
	return &out, nil
}

func (s *memConvRepo) FindPairwise(_ context.Context, userA, userB uint64, storeID, orderID, productID *uint64) (*model.Conversation, error) {
	for id, conv := range s.store.convs {
		if !s.hasMember(id, userA) || !s.hasMember(id, userB) {
			continue
		}
		if !ptrEq(conv.StoreID, storeID) || !ptrEq(conv.OrderID, orderID) || !ptrEq(conv.ProductID, productID) {
			continue
		}
		out := *conv
		for _, p := range s.store.parts[id] {
			out.Participants = append(out.Participants, *p)
		}
		return &out, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func ptrEq(a, b *uint64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func (s *memConvRepo) hasMember(convID, userID uint64) bool {
	for _, p := range s.store.parts[convID] {
		if p.UserID == userID {
			return true
		}
	}
	return false
}

func (s *memConvRepo) IsParticipant(_ context.Context, convID, userID uint64) (bool, error) {
	return s.hasMember(convID, userID), nil
}

func (s *memConvRepo) GetParticipant(_ context.Context, convID, userID uint64) (*model.ConversationParticipant, error) {
	for _, p := range s.store.parts[convID] {
		if p.UserID == userID {
			return p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *memConvRepo) ParticipantConversationIDs(_ context.Context, userID uint64) ([]uint64, error) {
	var ids []uint64
	for id := range s.store.convs {
		if s.hasMember(id, userID) {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (s *memConvRepo) RecipientIDs(_ context.Context, convID, exceptUserID uint64) ([]uint64, error) {
	var ids []uint64
	for _, p := range s.store.parts[convID] {
		if p.UserID != exceptUserID {
			ids = append(ids, p.UserID)
		}
	}
	return ids, nil
}

func (s *memConvRepo) ListByUser(_ context.Context, userID uint64, _, _ int) ([]*model.Conversation, int64, error) {
	var out []*model.Conversation
	for id := range s.store.convs {
		if s.hasMember(id, userID) {
			conv, _ := s.Get(context.Background(), id)
			out = append(out, conv)
		}
	}
	return out, int64(len(out)), nil
}

func (s *memConvRepo) UpdateLastMessage(_ context.Context, convID, messageID uint64, at time.Time) error {
	conv := s.store.convs[convID]
	conv.LastMessageID = &messageID
	conv.LastMessageAt = &at
	return nil
}

func (s *memConvRepo) UpdateLastReadAt(_ context.Context, convID, userID uint64, at time.Time) error {
	for _, p := range s.store.parts[convID] {
		if p.UserID == userID {
			p.LastReadAt = at
		}
	}
	return nil
}

func (s *memConvRepo) Delete(_ context.Context, convID uint64) error {
	delete(s.store.convs, convID)
	delete(s.store.parts, convID)
	return nil
}

type memMsgRepo struct{ store *memStore }

func (s *memMsgRepo) Create(_ context.Context, msg *model.Message) error {
	s.store.nextMsgID++
	msg.ID = s.store.nextMsgID
	msg.CreatedAt = time.Now()
	if u, ok := s.store.users[msg.SenderID]; ok {
		msg.Sender = *u
	}
	s.store.msgs[msg.ID] = msg
	return nil
}

func (s *memMsgRepo) Get(_ context.Context, msgID uint64) (*model.Message, error) {
	msg, ok := s.store.msgs[msgID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return msg, nil
}

func (s *memMsgRepo) Page(_ context.Context, convID uint64, cursorAt *time.Time, cursorID uint64, limit int) ([]*model.Message, error) {
	var out []*model.Message
	for id := s.store.nextMsgID; id > 0 && len(out) < limit; id-- {
		msg, ok := s.store.msgs[id]
		if !ok || msg.ConversationID != convID {
			continue
		}
		if cursorAt != nil && msg.ID >= cursorID {
			continue
		}
		out = append(out, msg)
	}
	return out, nil
}

func (s *memMsgRepo) CountUnread(_ context.Context, convID, userID uint64, after time.Time) (int64, error) {
	var count int64
	for _, msg := range s.store.msgs {
		if msg.ConversationID == convID && msg.SenderID != userID && msg.CreatedAt.After(after) {
			count++
		}
	}
	return count, nil
}

// ---- 网关与通知桩 ----

type broadcastCall struct {
	kind   string
	convID uint64
	userID uint64
}

type fakeBroadcaster struct {
	online map[uint64]bool
	calls  []broadcastCall
}

func (s *fakeBroadcaster) BroadcastNewMessage(convID, senderID uint64, _ interface{}) {
	s.calls = append(s.calls, broadcastCall{"new", convID, senderID})
}

func (s *fakeBroadcaster) BroadcastRead(convID, userID uint64, _ time.Time) {
	s.calls = append(s.calls, broadcastCall{"read", convID, userID})
}

func (s *fakeBroadcaster) IsUserOnline(userID uint64) bool { return s.online[userID] }

func (s *fakeBroadcaster) JoinConversation(convID uint64, _ ...uint64) {
	s.calls = append(s.calls, broadcastCall{kind: "join", convID: convID})
}

func (s *fakeBroadcaster) LeaveConversation(convID uint64, _ ...uint64) {
	s.calls = append(s.calls, broadcastCall{kind: "leave", convID: convID})
}

type pushedNotification struct {
	userID uint64
	kind   string
}

type fakeNotifier struct {
	pushed []pushedNotification
}

func (s *fakeNotifier) CreateAndPush(_ context.Context, userID uint64, kind, _, _, _ string) {
	s.pushed = append(s.pushed, pushedNotification{userID, kind})
}

func (s *fakeNotifier) List(_ context.Context, _ uint64, _ int) ([]*dto.NotificationDTO, error) {
	return nil, nil
}
func (s *fakeNotifier) UnreadCount(_ context.Context, _ uint64) (int64, error) { return 0, nil }
func (s *fakeNotifier) MarkRead(_ context.Context, _, _ uint64) error          { return nil }
func (s *fakeNotifier) MarkAllRead(_ context.Context, _ uint64) error          { return nil }

func newChatFixture(online map[uint64]bool) (ChatService, *memStore, *fakeBroadcaster, *fakeNotifier) {
	store := newMemStore(
		&model.User{ID: 1, Name: "alice", Email: "alice@example.com"},
		&model.User{ID: 2, Name: "bob", Email: "bob@example.com"},
		&model.User{ID: 3, Name: "carol", Email: "carol@example.com"},
	)
	broadcaster := &fakeBroadcaster{online: online}
	notifier := &fakeNotifier{}
	svc := NewChatService(&memConvRepo{store}, &memMsgRepo{store}, &memUserRepo{store}, broadcaster, notifier)
	return svc, store, broadcaster, notifier
}

// ---- 用例 ----

func TestOpenConversationValidation(t *testing.T) {
	svc, _, _, _ := newChatFixture(nil)
	ctx := context.Background()

	if _, err := svc.OpenConversation(ctx, 1, &dto.OpenConversationReq{TargetUserID: 1}); err != ErrSelfConversation {
		t.Fatalf("want ErrSelfConversation, got %v", err)
	}
	if _, err := svc.OpenConversation(ctx, 1, &dto.OpenConversationReq{TargetUserID: 99}); err != ErrTargetUserInvalid {
		t.Fatalf("want ErrTargetUserInvalid, got %v", err)
	}
}

func TestOpenConversationReusesByContext(t *testing.T) {
	svc, _, _, _ := newChatFixture(nil)
	ctx := context.Background()

	first, err := svc.OpenConversation(ctx, 1, &dto.OpenConversationReq{TargetUserID: 2})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	again, err := svc.OpenConversation(ctx, 2, &dto.OpenConversationReq{TargetUserID: 1})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if first.ID != again.ID {
		t.Fatalf("same pair and context should reuse the conversation: %d vs %d", first.ID, again.ID)
	}

	// 不同上下文（挂接订单）开新会话
	orderID := uint64(555)
	other, err := svc.OpenConversation(ctx, 1, &dto.OpenConversationReq{TargetUserID: 2, OrderID: &orderID})
	if err != nil {
		t.Fatalf("open with order: %v", err)
	}
	if other.ID == first.ID {
		t.Fatalf("different context must create a new conversation")
	}

	roles := map[uint64]string{}
	for _, p := range first.Participants {
		roles[p.UserID] = p.Role
	}
	if roles[1] != model.ParticipantRoleInitiator || roles[2] != model.ParticipantRoleCounterpart {
		t.Fatalf("unexpected roles: %v", roles)
	}
}

func TestSendTextValidation(t *testing.T) {
	svc, _, _, _ := newChatFixture(nil)
	ctx := context.Background()

	conv, err := svc.OpenConversation(ctx, 1, &dto.OpenConversationReq{TargetUserID: 2})
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	if _, err := svc.SendText(ctx, 1, &dto.SendMessageReq{ConversationID: conv.ID, Content: "   "}); err != ErrContentEmpty {
		t.Fatalf("want ErrContentEmpty, got %v", err)
	}
	long := strings.Repeat("a", 4001)
	if _, err := svc.SendText(ctx, 1, &dto.SendMessageReq{ConversationID: conv.ID, Content: long}); err != ErrParamInvalid {
		t.Fatalf("want ErrParamInvalid, got %v", err)
	}
	if _, err := svc.SendText(ctx, 3, &dto.SendMessageReq{ConversationID: conv.ID, Content: "hi"}); err != ErrNotParticipant {
		t.Fatalf("outsider must get ErrNotParticipant, got %v", err)
	}
}

func TestSendTextBroadcastAndOfflineFallback(t *testing.T) {
	svc, _, broadcaster, notifier := newChatFixture(map[uint64]bool{1: true, 2: false})
	ctx := context.Background()

	conv, err := svc.OpenConversation(ctx, 1, &dto.OpenConversationReq{TargetUserID: 2})
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	msg, err := svc.SendText(ctx, 1, &dto.SendMessageReq{ConversationID: conv.ID, Content: "hello"})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if msg.Kind != model.MessageKindText || msg.SenderName != "alice" {
		t.Fatalf("unexpected message dto: %+v", msg)
	}

	var sawBroadcast bool
	for _, call := range broadcaster.calls {
		if call.kind == "new" && call.convID == conv.ID && call.userID == 1 {
			sawBroadcast = true
		}
	}
	if !sawBroadcast {
		t.Fatalf("message must be broadcast to the conversation")
	}

	// 接收方离线：降级为站内通知 + 推送
	if len(notifier.pushed) != 1 || notifier.pushed[0].userID != 2 || notifier.pushed[0].kind != model.NotificationKindNewMessage {
		t.Fatalf("offline recipient must get a notification, got %v", notifier.pushed)
	}
}

func TestSendTextOnlineRecipientSkipsNotification(t *testing.T) {
	svc, _, _, notifier := newChatFixture(map[uint64]bool{1: true, 2: true})
	ctx := context.Background()

	conv, _ := svc.OpenConversation(ctx, 1, &dto.OpenConversationReq{TargetUserID: 2})
	if _, err := svc.SendText(ctx, 1, &dto.SendMessageReq{ConversationID: conv.ID, Content: "hello"}); err != nil {
		t.Fatalf("send: %v", err)
	}
	if len(notifier.pushed) != 0 {
		t.Fatalf("online recipient must not be notified, got %v", notifier.pushed)
	}
}

func TestMarkReadBroadcasts(t *testing.T) {
	svc, store, broadcaster, _ := newChatFixture(nil)
	ctx := context.Background()

	conv, _ := svc.OpenConversation(ctx, 1, &dto.OpenConversationReq{TargetUserID: 2})

	res, err := svc.MarkRead(ctx, 2, conv.ID)
	if err != nil {
		t.Fatalf("mark read: %v", err)
	}
	if res.ConversationID != conv.ID || res.ReadAt.IsZero() {
		t.Fatalf("unexpected mark read result: %+v", res)
	}

	last := broadcaster.calls[len(broadcaster.calls)-1]
	if last.kind != "read" || last.convID != conv.ID || last.userID != 2 {
		t.Fatalf("read receipt not broadcast: %+v", last)
	}

	for _, p := range store.parts[conv.ID] {
		if p.UserID == 2 && !p.LastReadAt.Equal(res.ReadAt) {
			t.Fatalf("read watermark not persisted")
		}
	}

	if _, err := svc.MarkRead(ctx, 3, conv.ID); err != ErrNotParticipant {
		t.Fatalf("outsider must get ErrNotParticipant, got %v", err)
	}
}

func TestGetMessagesPagination(t *testing.T) {
	svc, _, _, _ := newChatFixture(nil)
	ctx := context.Background()

	conv, _ := svc.OpenConversation(ctx, 1, &dto.OpenConversationReq{TargetUserID: 2})
	for i := 0; i < 5; i++ {
		if _, err := svc.SendText(ctx, 1, &dto.SendMessageReq{ConversationID: conv.ID, Content: "msg"}); err != nil {
			t.Fatalf("send: %v", err)
		}
	}

	page, err := svc.GetMessages(ctx, 2, conv.ID, "", 3)
	if err != nil {
		t.Fatalf("page: %v", err)
	}
	if len(page.Items) != 3 || page.NextCursor == nil {
		t.Fatalf("full page should carry a next cursor: %d items", len(page.Items))
	}
	// 最新消息在前
	if page.Items[0].ID <= page.Items[1].ID {
		t.Fatalf("messages must be newest first")
	}

	rest, err := svc.GetMessages(ctx, 2, conv.ID, *page.NextCursor, 3)
	if err != nil {
		t.Fatalf("second page: %v", err)
	}
	if len(rest.Items) != 2 {
		t.Fatalf("expected remaining 2 messages, got %d", len(rest.Items))
	}
	if rest.Items[0].ID >= page.Items[2].ID {
		t.Fatalf("second page must be strictly older than the cursor")
	}

	// 非法游标按无游标处理
	garbled, err := svc.GetMessages(ctx, 2, conv.ID, "!!!not-a-cursor!!!", 3)
	if err != nil {
		t.Fatalf("garbled cursor: %v", err)
	}
	if len(garbled.Items) != 3 {
		t.Fatalf("invalid cursor should return the newest page")
	}

	if _, err := svc.GetMessages(ctx, 3, conv.ID, "", 3); err != ErrNotParticipant {
		t.Fatalf("outsider must get ErrNotParticipant, got %v", err)
	}
}

// rippleFailConvRepo 活跃时间戳更新总是失败的会话仓储
type rippleFailConvRepo struct{ *memConvRepo }

func (s *rippleFailConvRepo) UpdateLastMessage(context.Context, uint64, uint64, time.Time) error {
	return errors.New("update failed")
}

func TestSendTextSurvivesRippleFailure(t *testing.T) {
	store := newMemStore(
		&model.User{ID: 1, Name: "alice", Email: "alice@example.com"},
		&model.User{ID: 2, Name: "bob", Email: "bob@example.com"},
	)
	broadcaster := &fakeBroadcaster{online: map[uint64]bool{1: true}}
	notifier := &fakeNotifier{}
	svc := NewChatService(&rippleFailConvRepo{&memConvRepo{store}}, &memMsgRepo{store}, &memUserRepo{store}, broadcaster, notifier)
	ctx := context.Background()

	conv, err := svc.OpenConversation(ctx, 1, &dto.OpenConversationReq{TargetUserID: 2})
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	// 消息已落库，活跃时间戳更新失败不阻断发送
	msg, err := svc.SendText(ctx, 1, &dto.SendMessageReq{ConversationID: conv.ID, Content: "hello"})
	if err != nil {
		t.Fatalf("send must survive the ripple failure, got %v", err)
	}
	if msg == nil || msg.ID == 0 {
		t.Fatalf("persisted message should be returned: %+v", msg)
	}

	var sawBroadcast bool
	for _, call := range broadcaster.calls {
		if call.kind == "new" && call.convID == conv.ID {
			sawBroadcast = true
		}
	}
	if !sawBroadcast {
		t.Fatalf("broadcast must still run after a ripple failure")
	}
	if len(notifier.pushed) != 1 || notifier.pushed[0].userID != 2 {
		t.Fatalf("offline fallback must still run, got %v", notifier.pushed)
	}
}

func TestUnreadCountAndMarkRead(t *testing.T) {
	svc, store, _, _ := newChatFixture(nil)
	ctx := context.Background()

	conv, err := svc.OpenConversation(ctx, 1, &dto.OpenConversationReq{TargetUserID: 2})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	// 把双方已读水位线拨回，让后续消息严格晚于水位线
	for _, p := range store.parts[conv.ID] {
		p.LastReadAt = time.Now().Add(-time.Minute)
	}

	for i := 0; i < 2; i++ {
		if _, err := svc.SendText(ctx, 1, &dto.SendMessageReq{ConversationID: conv.ID, Content: "hi"}); err != nil {
			t.Fatalf("send: %v", err)
		}
	}

	got, err := svc.GetConversation(ctx, 2, conv.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.UnreadCount != 2 {
		t.Fatalf("recipient should have 2 unread, got %d", got.UnreadCount)
	}

	// 自己发的消息不计入未读
	own, err := svc.GetConversation(ctx, 1, conv.ID)
	if err != nil {
		t.Fatalf("get own: %v", err)
	}
	if own.UnreadCount != 0 {
		t.Fatalf("sender should have 0 unread, got %d", own.UnreadCount)
	}

	if _, err := svc.MarkRead(ctx, 2, conv.ID); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	after, err := svc.GetConversation(ctx, 2, conv.ID)
	if err != nil {
		t.Fatalf("get after read: %v", err)
	}
	if after.UnreadCount != 0 {
		t.Fatalf("unread must drop to 0 after mark read, got %d", after.UnreadCount)
	}
}

func TestNotificationPreviewKeepsRunesIntact(t *testing.T) {
	content := strings.Repeat("汉", 130)
	msg := &dto.MessageDTO{Content: &content}

	got := notificationPreview(msg)
	if utf8.RuneCountInString(got) != 120 {
		t.Fatalf("preview should keep 120 characters, got %d", utf8.RuneCountInString(got))
	}
	if !utf8.ValidString(got) {
		t.Fatalf("preview must not split a multi-byte character")
	}
}

func TestDeleteConversation(t *testing.T) {
	svc, store, broadcaster, _ := newChatFixture(nil)
	ctx := context.Background()

	conv, _ := svc.OpenConversation(ctx, 1, &dto.OpenConversationReq{TargetUserID: 2})

	if err := svc.DeleteConversation(ctx, 3, conv.ID); err != ErrNotParticipant {
		t.Fatalf("outsider must get ErrNotParticipant, got %v", err)
	}
	if err := svc.DeleteConversation(ctx, 2, conv.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok := store.convs[conv.ID]; ok {
		t.Fatalf("conversation should be removed")
	}

	last := broadcaster.calls[len(broadcaster.calls)-1]
	if last.kind != "leave" || last.convID != conv.ID {
		t.Fatalf("members must be evicted from the room: %+v", last)
	}

	if err := svc.DeleteConversation(ctx, 1, conv.ID); err != ErrNotParticipant {
		t.Fatalf("deleted conversation lookups should fail closed, got %v", err)
	}
}
