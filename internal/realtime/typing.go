package realtime

import (
	"sync"
	"time"
)

// DefaultTypingTTL 输入状态无心跳时的自动过期时间
const DefaultTypingTTL = 5 * time.Second

type typingKey struct {
	conversationID uint64
	userID         uint64
}

// TypingTracker 输入状态跟踪器，每个 (会话, 用户) 维护一个过期定时器
type TypingTracker struct {
	mu       sync.Mutex
	timers   map[typingKey]*time.Timer
	ttl      time.Duration
	onExpire func(conversationID, userID uint64)
}

// NewTypingTracker onExpire 在状态超时后回调（用于广播 typing:stop），
// 回调在定时器 goroutine 中执行，不持有内部锁
func NewTypingTracker(ttl time.Duration, onExpire func(conversationID, userID uint64)) *TypingTracker {
	if ttl <= 0 {
		ttl = DefaultTypingTTL
	}
	return &TypingTracker{
		timers:   make(map[typingKey]*time.Timer),
		ttl:      ttl,
		onExpire: onExpire,
	}
}

// Start 标记用户正在输入，重复调用刷新过期时间，返回是否为新开始（用于决定是否广播）
func (s *TypingTracker) Start(conversationID, userID uint64) bool {
	key := typingKey{conversationID, userID}

	s.mu.Lock()
	defer s.mu.Unlock()

	if timer, ok := s.timers[key]; ok {
		timer.Stop()
		timer.Reset(s.ttl)
		return false
	}
	s.timers[key] = time.AfterFunc(s.ttl, func() {
		s.expire(key)
	})
	return true
}

// Stop 清除输入状态，返回清除前是否处于输入中
func (s *TypingTracker) Stop(conversationID, userID uint64) bool {
	key := typingKey{conversationID, userID}

	s.mu.Lock()
	defer s.mu.Unlock()

	timer, ok := s.timers[key]
	if !ok {
		return false
	}
	timer.Stop()
	delete(s.timers, key)
	return true
}

// StopAll 清除用户在全部会话中的输入状态，返回清除前所在的会话列表
func (s *TypingTracker) StopAll(userID uint64) []uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []uint64
	for key, timer := range s.timers {
		if key.userID != userID {
			continue
		}
		timer.Stop()
		delete(s.timers, key)
		out = append(out, key.conversationID)
	}
	return out
}

// IsTyping 用户是否在会话中处于输入状态
func (s *TypingTracker) IsTyping(conversationID, userID uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.timers[typingKey{conversationID, userID}]
	return ok
}

func (s *TypingTracker) expire(key typingKey) {
	s.mu.Lock()
	_, ok := s.timers[key]
	if ok {
		delete(s.timers, key)
	}
	s.mu.Unlock()

	if ok && s.onExpire != nil {
		s.onExpire(key.conversationID, key.userID)
	}
}
