package realtime

import (
	log "log/slog"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	sendBufferSize = 64
)

// Conn 单条 WebSocket 连接，发送经缓冲通道串行化，写循环独占底层连接
type Conn struct {
	ID     string
	UserID uint64

	ws        *websocket.Conn
	send      chan []byte
	closeOnce sync.Once
	done      chan struct{}
}

func NewConn(ws *websocket.Conn, userID uint64) *Conn {
	return &Conn{
		ID:     uuid.NewString(),
		UserID: userID,
		ws:     ws,
		send:   make(chan []byte, sendBufferSize),
		done:   make(chan struct{}),
	}
}

// Send 投递一条事件，缓冲满则断开该连接（慢消费者保护）
func (s *Conn) Send(event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Error("事件序列化失败", "event", event.Event, "err", err)
		return
	}
	select {
	case s.send <- data:
	case <-s.done:
	default:
		log.Warn("连接发送缓冲已满，主动断开", "connId", s.ID, "userId", s.UserID)
		s.Close()
	}
}

// Close 幂等关闭，唤醒写循环退出
func (s *Conn) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
	})
}

// Done 连接关闭信号
func (s *Conn) Done() <-chan struct{} {
	return s.done
}

// WriteLoop 写循环，调用方负责在独立 goroutine 中运行
func (s *Conn) WriteLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = s.ws.Close()
	}()

	for {
		select {
		case data := <-s.send:
			_ = s.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.ws.WriteMessage(websocket.TextMessage, data); err != nil {
				s.Close()
				return
			}
		case <-ticker.C:
			_ = s.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				s.Close()
				return
			}
		case <-s.done:
			_ = s.ws.SetWriteDeadline(time.Now().Add(writeWait))
			_ = s.ws.WriteMessage(websocket.CloseMessage, nil)
			return
		}
	}
}

// ReadLoop 读循环，逐条解析上行事件交给 handle，连接断开时返回
func (s *Conn) ReadLoop(handle func(InboundEvent)) {
	s.ws.SetReadLimit(4096)
	_ = s.ws.SetReadDeadline(time.Now().Add(pongWait))
	s.ws.SetPongHandler(func(string) error {
		return s.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := s.ws.ReadMessage()
		if err != nil {
			s.Close()
			return
		}
		var ev InboundEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			s.Send(Event{Event: EventError, Data: ErrorPayload{Message: "invalid event payload"}})
			continue
		}
		handle(ev)
	}
}
