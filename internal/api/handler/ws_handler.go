package handler

import (
	"context"
	log "log/slog"
	"net/http"
	"strings"

	"maurizone/internal/api/dto"
	"maurizone/internal/pkg/response"
	"maurizone/internal/pkg/security"
	"maurizone/internal/realtime"
	"maurizone/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type WsHandler struct {
	gateway     *realtime.Gateway
	chatService service.ChatService
}

func NewWsHandler(gateway *realtime.Gateway, chatService service.ChatService) *WsHandler {
	return &WsHandler{gateway: gateway, chatService: chatService}
}

// Connect WebSocket 接入点。
// 浏览器 WebSocket 无法携带自定义 Header，token 允许经 query 传递。
func (s *WsHandler) Connect(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		token = strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
	}
	if token == "" {
		response.Error(c, service.UnauthenticatedError)
		return
	}

	claims, err := security.ValidateToken(token)
	if err != nil {
		log.Warn("WS 鉴权失败", "err", err)
		response.Error(c, service.UnauthenticatedError)
		return
	}
	userID := claims.UserID

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("WS 协议升级失败", "err", err)
		return
	}

	conn := realtime.NewConn(ws, userID)
	s.gateway.HandleConnect(c.Request.Context(), conn)

	go conn.WriteLoop()

	// 读循环占用当前 goroutine，连接断开后返回
	conn.ReadLoop(func(ev realtime.InboundEvent) {
		s.dispatch(conn, ev)
	})

	s.gateway.HandleDisconnect(conn)
}

func (s *WsHandler) dispatch(conn *realtime.Conn, ev realtime.InboundEvent) {
	ctx := context.Background()

	switch ev.Event {
	case realtime.EventMessageSend:
		var content string
		if ev.Data.Content != nil {
			content = *ev.Data.Content
		}
		_, err := s.chatService.SendText(ctx, conn.UserID, &dto.SendMessageReq{
			ConversationID: ev.Data.ConversationID,
			Content:        content,
		})
		if err != nil {
			conn.Send(realtime.Event{
				Event: realtime.EventError,
				Data:  realtime.ErrorPayload{Message: err.Error()},
			})
		}
	case realtime.EventTypingStart:
		s.gateway.TypingStart(ctx, ev.Data.ConversationID, conn.UserID)
	case realtime.EventTypingStop:
		s.gateway.TypingStop(ev.Data.ConversationID, conn.UserID)
	default:
		conn.Send(realtime.Event{
			Event: realtime.EventError,
			Data:  realtime.ErrorPayload{Message: "unknown event: " + ev.Event},
		})
	}
}
