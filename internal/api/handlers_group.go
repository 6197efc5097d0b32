package api

import "maurizone/internal/api/handler"

// HandlersGroup 聚合全部 HTTP 处理器，供路由装配
type HandlersGroup struct {
	UserHandler         *handler.UserHandler
	StoreHandler        *handler.StoreHandler
	ProductHandler      *handler.ProductHandler
	OrderHandler        *handler.OrderHandler
	ChatHandler         *handler.ChatHandler
	WsHandler           *handler.WsHandler
	NotificationHandler *handler.NotificationHandler
}
