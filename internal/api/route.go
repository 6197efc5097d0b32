package api

import (
	"maurizone/internal/api/middleware"
	"maurizone/internal/pkg/consts"
	"maurizone/internal/pkg/logger"
	"net/http"

	"github.com/gin-gonic/gin"
)

func SetupRouter(group *HandlersGroup) *gin.Engine {
	r := gin.New()
	_ = r.SetTrustedProxies([]string{"localhost"})

	// TraceId & Logger & CORS
	r.Use(middleware.TraceMiddleware())
	r.Use(middleware.CORSMiddleware())
	logger.SetupGin(r)

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/ping", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"Code":    200,
				"Message": "pong",
				"Data":    nil,
			})
		})

		userGroup := apiGroup.Group("/user")
		{
			// 无需登录即可访问的接口
			userGroup.POST("/register", group.UserHandler.Register)
			userGroup.POST("/login", group.UserHandler.Login)

			authGroup := userGroup.Group("")
			authGroup.Use(middleware.AuthMiddleware())
			{
				authGroup.POST("/logout", group.UserHandler.Logout)
				authGroup.GET("/info", group.UserHandler.GetProfile)
				authGroup.PUT("/info", group.UserHandler.UpdateProfile)
			}

			// 需要登录 & 拥有 admin 角色
			adminGroup := authGroup.Group("")
			adminGroup.Use(middleware.CheckRoles(consts.RoleAdmin))
			{
				adminGroup.GET("/list", group.UserHandler.List)
			}
		}

		storeGroup := apiGroup.Group("/stores")
		{
			storeGroup.GET("/:id", group.StoreHandler.Get)

			authGroup := storeGroup.Group("")
			authGroup.Use(middleware.AuthMiddleware())
			{
				authGroup.POST("", group.StoreHandler.Create)
				authGroup.GET("/mine", group.StoreHandler.GetMine)
				authGroup.PUT("/:id", group.StoreHandler.Update)
			}
		}

		productGroup := apiGroup.Group("/products")
		{
			productGroup.GET("", group.ProductHandler.List)
			productGroup.GET("/:id", group.ProductHandler.Get)

			authGroup := productGroup.Group("")
			authGroup.Use(middleware.AuthMiddleware())
			{
				authGroup.POST("", group.ProductHandler.Create)
				authGroup.PUT("/:id", group.ProductHandler.Update)
				authGroup.DELETE("/:id", group.ProductHandler.Delete)
			}
		}

		orderGroup := apiGroup.Group("/orders")
		orderGroup.Use(middleware.AuthMiddleware())
		{
			orderGroup.POST("", group.OrderHandler.Create)
			orderGroup.GET("/mine", group.OrderHandler.ListMine)
			orderGroup.GET("/store", group.OrderHandler.ListStore)
			orderGroup.GET("/:id", group.OrderHandler.Get)
			orderGroup.PUT("/:id/status", group.OrderHandler.UpdateStatus)
		}

		chatGroup := apiGroup.Group("/chat")
		{
			// WebSocket 在握手 query 中鉴权，不走 Header 中间件
			chatGroup.GET("/ws", group.WsHandler.Connect)

			authGroup := chatGroup.Group("")
			authGroup.Use(middleware.AuthMiddleware())
			{
				authGroup.POST("/conversations", group.ChatHandler.OpenConversation)
				authGroup.GET("/conversations", group.ChatHandler.ListConversations)
				authGroup.GET("/conversations/:id", group.ChatHandler.GetConversation)
				authGroup.DELETE("/conversations/:id", group.ChatHandler.DeleteConversation)
				authGroup.GET("/conversations/:id/messages", group.ChatHandler.GetMessages)
				authGroup.POST("/conversations/:id/read", group.ChatHandler.MarkRead)
				authGroup.POST("/conversations/:id/upload", group.ChatHandler.UploadImage)
				authGroup.POST("/conversations/:id/attachments", group.ChatHandler.UploadAttachment)
				authGroup.POST("/messages", group.ChatHandler.SendMessage)
			}
		}

		notificationGroup := apiGroup.Group("/notifications")
		notificationGroup.Use(middleware.AuthMiddleware())
		{
			notificationGroup.GET("", group.NotificationHandler.List)
			notificationGroup.GET("/unread/count", group.NotificationHandler.UnreadCount)
			notificationGroup.PUT("/:id/read", group.NotificationHandler.MarkRead)
			notificationGroup.PUT("/read", group.NotificationHandler.MarkAllRead)
		}
	}

	return r
}
