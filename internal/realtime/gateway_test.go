package realtime

import (
	"context"
	"testing"
	"time"

	"github.com/goccy/go-json"
)

type fakeMembership struct {
	convs map[uint64][]uint64 // userID -> conversationIDs
}

func (s *fakeMembership) ParticipantConversationIDs(_ context.Context, userID uint64) ([]uint64, error) {
	return s.convs[userID], nil
}

func (s *fakeMembership) IsParticipant(_ context.Context, conversationID, userID uint64) (bool, error) {
	for _, id := range s.convs[userID] {
		if id == conversationID {
			return true, nil
		}
	}
	return false, nil
}

func newTestGateway() *Gateway {
	membership := &fakeMembership{convs: map[uint64][]uint64{
		1: {100},
		2: {100},
	}}
	return NewGateway(membership, time.Minute)
}

func drain(c *Conn) []Event {
	var out []Event
	for {
		select {
		case data := <-c.send:
			var ev Event
			_ = json.Unmarshal(data, &ev)
			out = append(out, ev)
		default:
			return out
		}
	}
}

// payload 把下行事件的 Data 还原成字段表
func payload(t *testing.T, ev Event) map[string]interface{} {
	t.Helper()
	m, ok := ev.Data.(map[string]interface{})
	if !ok {
		t.Fatalf("event %s carries no object payload: %v", ev.Event, ev.Data)
	}
	return m
}

func TestGatewayPresenceOnConnect(t *testing.T) {
	g := newTestGateway()
	ctx := context.Background()

	peer := NewConn(nil, 2)
	g.HandleConnect(ctx, peer)

	c1 := NewConn(nil, 1)
	g.HandleConnect(ctx, c1)

	events := drain(peer)
	if len(events) != 1 || events[0].Event != EventPresenceChange {
		t.Fatalf("peer should observe exactly one presence event, got %v", events)
	}
	if got := payload(t, events[0])["status"]; got != PresenceOnline {
		t.Fatalf("presence status should be %q, got %v", PresenceOnline, got)
	}

	// 同一用户的第二条连接不应再次广播上线
	c2 := NewConn(nil, 1)
	g.HandleConnect(ctx, c2)
	if events := drain(peer); len(events) != 0 {
		t.Fatalf("second connection must not announce presence, got %v", events)
	}
}

func TestGatewayPresenceOnDisconnect(t *testing.T) {
	g := newTestGateway()
	ctx := context.Background()

	peer := NewConn(nil, 2)
	g.HandleConnect(ctx, peer)

	c1 := NewConn(nil, 1)
	c2 := NewConn(nil, 1)
	g.HandleConnect(ctx, c1)
	g.HandleConnect(ctx, c2)
	drain(peer)

	g.HandleDisconnect(c1)
	if events := drain(peer); len(events) != 0 {
		t.Fatalf("disconnect with another connection alive must be silent, got %v", events)
	}
	if !g.IsUserOnline(1) {
		t.Fatalf("user should still be online")
	}

	g.HandleDisconnect(c2)
	events := drain(peer)
	if len(events) != 1 || events[0].Event != EventPresenceChange {
		t.Fatalf("last disconnect should announce offline, got %v", events)
	}
	if got := payload(t, events[0])["status"]; got != PresenceOffline {
		t.Fatalf("presence status should be %q, got %v", PresenceOffline, got)
	}
	if g.IsUserOnline(1) {
		t.Fatalf("user should be offline")
	}
}

func TestGatewayDisconnectStopsTypingWithDeviceAlive(t *testing.T) {
	g := newTestGateway()
	ctx := context.Background()

	c1 := NewConn(nil, 1)
	c2 := NewConn(nil, 1)
	peer := NewConn(nil, 2)
	g.HandleConnect(ctx, c1)
	g.HandleConnect(ctx, c2)
	g.HandleConnect(ctx, peer)
	drain(peer)

	g.TypingStart(ctx, 100, 1)
	drain(peer)

	// 还有另一台设备在线：输入状态仍须立即清除并广播，且不得广播下线
	g.HandleDisconnect(c1)
	events := drain(peer)
	if len(events) != 1 || events[0].Event != EventTypingStop {
		t.Fatalf("disconnect must force-stop typing immediately, got %v", events)
	}
	if !g.IsUserOnline(1) {
		t.Fatalf("user should still be online on the second device")
	}
}

func TestGatewayBroadcastReadPayload(t *testing.T) {
	g := newTestGateway()
	ctx := context.Background()

	c1 := NewConn(nil, 1)
	peer := NewConn(nil, 2)
	g.HandleConnect(ctx, c1)
	g.HandleConnect(ctx, peer)
	drain(peer)

	readAt := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	g.BroadcastRead(100, 1, readAt)

	events := drain(peer)
	if len(events) != 1 || events[0].Event != EventMessageRead {
		t.Fatalf("peer should see message:read, got %v", events)
	}
	data := payload(t, events[0])
	if data["lastReadAt"] != readAt.Format(time.RFC3339Nano) {
		t.Fatalf("read receipt must carry lastReadAt, got %v", data)
	}
}

func TestGatewayTypingFlow(t *testing.T) {
	g := newTestGateway()
	ctx := context.Background()

	c1 := NewConn(nil, 1)
	peer := NewConn(nil, 2)
	g.HandleConnect(ctx, c1)
	g.HandleConnect(ctx, peer)
	drain(peer)
	drain(c1)

	g.TypingStart(ctx, 100, 1)
	events := drain(peer)
	if len(events) != 1 || events[0].Event != EventTypingStart {
		t.Fatalf("peer should see typing:start, got %v", events)
	}
	if len(drain(c1)) != 0 {
		t.Fatalf("typing must not echo back to the typist")
	}

	// 非成员的输入事件被忽略
	g.TypingStart(ctx, 999, 1)
	if events := drain(peer); len(events) != 0 {
		t.Fatalf("typing in a foreign conversation must be dropped, got %v", events)
	}

	g.TypingStop(100, 1)
	events = drain(peer)
	if len(events) != 1 || events[0].Event != EventTypingStop {
		t.Fatalf("peer should see typing:stop, got %v", events)
	}
}

func TestGatewayNewMessageClearsTyping(t *testing.T) {
	g := newTestGateway()
	ctx := context.Background()

	c1 := NewConn(nil, 1)
	peer := NewConn(nil, 2)
	g.HandleConnect(ctx, c1)
	g.HandleConnect(ctx, peer)
	drain(peer)
	drain(c1)

	g.TypingStart(ctx, 100, 1)
	drain(peer)

	g.BroadcastNewMessage(100, 1, map[string]uint64{"id": 1})

	events := drain(peer)
	if len(events) != 2 {
		t.Fatalf("peer should see typing:stop then message:new, got %v", events)
	}
	if events[0].Event != EventTypingStop || events[1].Event != EventMessageNew {
		t.Fatalf("wrong event order: %v", events)
	}

	// 发送者自己也收到 message:new，但不收到 typing:stop
	own := drain(c1)
	if len(own) != 1 || own[0].Event != EventMessageNew {
		t.Fatalf("sender should receive only message:new, got %v", own)
	}
}

func TestGatewayDisconnectBroadcastsTypingStop(t *testing.T) {
	g := newTestGateway()
	ctx := context.Background()

	c1 := NewConn(nil, 1)
	peer := NewConn(nil, 2)
	g.HandleConnect(ctx, c1)
	g.HandleConnect(ctx, peer)
	drain(peer)

	g.TypingStart(ctx, 100, 1)
	drain(peer)

	g.HandleDisconnect(c1)

	events := drain(peer)
	if len(events) != 2 {
		t.Fatalf("peer should see typing:stop then presence:change, got %v", events)
	}
	if events[0].Event != EventTypingStop || events[1].Event != EventPresenceChange {
		t.Fatalf("wrong event order: %v", events)
	}
}
