package realtime

import (
	"sync"
	"testing"
	"time"
)

func TestTypingStartStop(t *testing.T) {
	tr := NewTypingTracker(time.Minute, nil)

	if !tr.Start(1, 10) {
		t.Fatalf("first start should report a new typing state")
	}
	if tr.Start(1, 10) {
		t.Fatalf("repeated start should only refresh the timer")
	}
	if !tr.IsTyping(1, 10) {
		t.Fatalf("user should be typing")
	}

	if !tr.Stop(1, 10) {
		t.Fatalf("stop on active state should report true")
	}
	if tr.Stop(1, 10) {
		t.Fatalf("stop on inactive state should report false")
	}
	if tr.IsTyping(1, 10) {
		t.Fatalf("user should not be typing after stop")
	}
}

func TestTypingExpiry(t *testing.T) {
	var mu sync.Mutex
	var expired [][2]uint64
	done := make(chan struct{}, 1)

	tr := NewTypingTracker(20*time.Millisecond, func(convID, userID uint64) {
		mu.Lock()
		expired = append(expired, [2]uint64{convID, userID})
		mu.Unlock()
		done <- struct{}{}
	})

	tr.Start(5, 9)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("typing state did not expire")
	}

	mu.Lock()
	defer mu.Unlock()
	if len(expired) != 1 || expired[0] != [2]uint64{5, 9} {
		t.Fatalf("unexpected expirations: %v", expired)
	}
	if tr.IsTyping(5, 9) {
		t.Fatalf("state should be cleared after expiry")
	}
}

func TestTypingStopCancelsExpiry(t *testing.T) {
	fired := make(chan struct{}, 1)
	tr := NewTypingTracker(30*time.Millisecond, func(convID, userID uint64) {
		fired <- struct{}{}
	})

	tr.Start(1, 2)
	tr.Stop(1, 2)

	select {
	case <-fired:
		t.Fatalf("expiry callback fired after explicit stop")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestTypingStopAll(t *testing.T) {
	tr := NewTypingTracker(time.Minute, nil)

	tr.Start(1, 7)
	tr.Start(2, 7)
	tr.Start(1, 8)

	convs := tr.StopAll(7)
	if len(convs) != 2 {
		t.Fatalf("expected 2 conversations cleared, got %v", convs)
	}
	if tr.IsTyping(1, 7) || tr.IsTyping(2, 7) {
		t.Fatalf("user 7 should have no typing state left")
	}
	if !tr.IsTyping(1, 8) {
		t.Fatalf("other users must be unaffected")
	}
}
