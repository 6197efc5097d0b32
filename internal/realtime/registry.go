package realtime

import "sync"

// Registry 在线连接注册表，一个用户可持有多条连接（多端登录）
type Registry struct {
	mu    sync.RWMutex
	conns map[uint64]map[*Conn]struct{}
}

func NewRegistry() *Registry {
	return &Registry{
		conns: make(map[uint64]map[*Conn]struct{}),
	}
}

// Register 注册连接，返回该用户是否由离线变为在线（0→1 跳变）
func (s *Registry) Register(conn *Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	set, ok := s.conns[conn.UserID]
	if !ok {
		set = make(map[*Conn]struct{})
		s.conns[conn.UserID] = set
	}
	wasOffline := len(set) == 0
	set[conn] = struct{}{}
	return wasOffline
}

// Unregister 注销连接，返回该用户是否由在线变为离线（1→0 跳变）
func (s *Registry) Unregister(conn *Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	set, ok := s.conns[conn.UserID]
	if !ok {
		return false
	}
	if _, exists := set[conn]; !exists {
		return false
	}
	delete(set, conn)
	if len(set) == 0 {
		delete(s.conns, conn.UserID)
		return true
	}
	return false
}

// IsOnline 用户是否至少有一条活跃连接
func (s *Registry) IsOnline(userID uint64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.conns[userID]) > 0
}

// Connections 用户当前全部连接的快照
func (s *Registry) Connections(userID uint64) []*Conn {
	s.mu.RLock()
	defer s.mu.RUnlock()

	set := s.conns[userID]
	if len(set) == 0 {
		return nil
	}
	out := make([]*Conn, 0, len(set))
	for conn := range set {
		out = append(out, conn)
	}
	return out
}
