package realtime

// 事件名，客户端与服务端共用
const (
	EventMessageSend    = "message"
	EventMessageNew     = "message:new"
	EventMessageRead    = "message:read"
	EventTypingStart    = "typing:start"
	EventTypingStop     = "typing:stop"
	EventPresenceChange = "presence:change"
	EventError          = "error"
)

// Event WebSocket 下行事件信封
type Event struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// InboundEvent WebSocket 上行事件信封，data 延迟解析
type InboundEvent struct {
	Event string `json:"event"`
	Data  struct {
		ConversationID uint64  `json:"conversationId"`
		Content        *string `json:"content"`
	} `json:"data"`
}

// TypingPayload typing:start / typing:stop 载荷
type TypingPayload struct {
	ConversationID uint64 `json:"conversationId"`
	UserID         uint64 `json:"userId"`
}

// ReadPayload message:read 载荷
type ReadPayload struct {
	ConversationID uint64 `json:"conversationId"`
	UserID         uint64 `json:"userId"`
	LastReadAt     string `json:"lastReadAt"`
}

// 在线状态取值
const (
	PresenceOnline  = "online"
	PresenceOffline = "offline"
)

// PresencePayload presence:change 载荷
type PresencePayload struct {
	UserID uint64 `json:"userId"`
	Status string `json:"status"`
}

// ErrorPayload error 载荷
type ErrorPayload struct {
	Message string `json:"message"`
}
