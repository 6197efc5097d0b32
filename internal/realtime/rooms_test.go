package realtime

import (
	"sort"
	"testing"

	"github.com/goccy/go-json"
)

func recvEvent(t *testing.T, c *Conn) Event {
	t.Helper()
	select {
	case data := <-c.send:
		var ev Event
		if err := json.Unmarshal(data, &ev); err != nil {
			t.Fatalf("unmarshal event: %v", err)
		}
		return ev
	default:
		t.Fatalf("expected an event in send buffer")
		return Event{}
	}
}

func TestRoomsBroadcast(t *testing.T) {
	rooms := NewRooms()

	a := NewConn(nil, 1)
	b := NewConn(nil, 2)
	rooms.Join(100, a)
	rooms.Join(100, b)

	rooms.Broadcast(100, Event{Event: EventMessageNew, Data: "x"})

	if ev := recvEvent(t, a); ev.Event != EventMessageNew {
		t.Fatalf("unexpected event %q", ev.Event)
	}
	if ev := recvEvent(t, b); ev.Event != EventMessageNew {
		t.Fatalf("unexpected event %q", ev.Event)
	}
}

func TestRoomsBroadcastExcept(t *testing.T) {
	rooms := NewRooms()

	a := NewConn(nil, 1)
	b := NewConn(nil, 2)
	rooms.Join(100, a)
	rooms.Join(100, b)

	rooms.BroadcastExcept(100, 1, Event{Event: EventTypingStart, Data: nil})

	if len(a.send) != 0 {
		t.Fatalf("sender connection must not receive the event")
	}
	if ev := recvEvent(t, b); ev.Event != EventTypingStart {
		t.Fatalf("unexpected event %q", ev.Event)
	}
}

func TestRoomsLeaveAll(t *testing.T) {
	rooms := NewRooms()

	a := NewConn(nil, 1)
	rooms.Join(100, a)
	rooms.Join(200, a)
	rooms.Join(100, a) // 重复加入幂等

	left := rooms.LeaveAll(a)
	sort.Slice(left, func(i, j int) bool { return left[i] < left[j] })
	if len(left) != 2 || left[0] != 100 || left[1] != 200 {
		t.Fatalf("unexpected rooms left: %v", left)
	}

	if len(rooms.Members(100)) != 0 || len(rooms.Members(200)) != 0 {
		t.Fatalf("rooms should be empty after LeaveAll")
	}
	if got := rooms.LeaveAll(a); got != nil {
		t.Fatalf("second LeaveAll should be empty, got %v", got)
	}
}
