package realtime

import "sync"

// Rooms 房间成员表，房间即会话，连接断开时通过反向索引整体退房
type Rooms struct {
	mu      sync.RWMutex
	members map[uint64]map[*Conn]struct{}
	joined  map[*Conn]map[uint64]struct{}
}

func NewRooms() *Rooms {
	return &Rooms{
		members: make(map[uint64]map[*Conn]struct{}),
		joined:  make(map[*Conn]map[uint64]struct{}),
	}
}

// Join 连接加入房间，重复加入为幂等
func (s *Rooms) Join(roomID uint64, conn *Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()

	set, ok := s.members[roomID]
	if !ok {
		set = make(map[*Conn]struct{})
		s.members[roomID] = set
	}
	set[conn] = struct{}{}

	rooms, ok := s.joined[conn]
	if !ok {
		rooms = make(map[uint64]struct{})
		s.joined[conn] = rooms
	}
	rooms[roomID] = struct{}{}
}

// Leave 连接退出单个房间
func (s *Rooms) Leave(roomID uint64, conn *Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.leaveLocked(roomID, conn)
}

// LeaveAll 连接退出全部房间，返回退出前所在的房间列表
func (s *Rooms) LeaveAll(conn *Conn) []uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	rooms := s.joined[conn]
	if len(rooms) == 0 {
		delete(s.joined, conn)
		return nil
	}
	out := make([]uint64, 0, len(rooms))
	for roomID := range rooms {
		out = append(out, roomID)
		s.leaveLocked(roomID, conn)
	}
	return out
}

func (s *Rooms) leaveLocked(roomID uint64, conn *Conn) {
	if set, ok := s.members[roomID]; ok {
		delete(set, conn)
		if len(set) == 0 {
			delete(s.members, roomID)
		}
	}
	if rooms, ok := s.joined[conn]; ok {
		delete(rooms, roomID)
		if len(rooms) == 0 {
			delete(s.joined, conn)
		}
	}
}

// Members 房间当前成员连接的快照
func (s *Rooms) Members(roomID uint64) []*Conn {
	s.mu.RLock()
	defer s.mu.RUnlock()

	set := s.members[roomID]
	if len(set) == 0 {
		return nil
	}
	out := make([]*Conn, 0, len(set))
	for conn := range set {
		out = append(out, conn)
	}
	return out
}

// Broadcast 向房间全体成员投递事件
func (s *Rooms) Broadcast(roomID uint64, event Event) {
	for _, conn := range s.Members(roomID) {
		conn.Send(event)
	}
}

// BroadcastExcept 向房间内除指定用户外的成员投递事件
func (s *Rooms) BroadcastExcept(roomID uint64, exceptUserID uint64, event Event) {
	for _, conn := range s.Members(roomID) {
		if conn.UserID == exceptUserID {
			continue
		}
		conn.Send(event)
	}
}
