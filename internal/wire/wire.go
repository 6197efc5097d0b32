package wire

import (
	"context"
	"time"

	"maurizone/internal/api"
	"maurizone/internal/api/config"
	"maurizone/internal/api/handler"
	"maurizone/internal/job"
	"maurizone/internal/pkg/cron"
	"maurizone/internal/pkg/push"
	"maurizone/internal/pkg/redis"
	"maurizone/internal/realtime"
	"maurizone/internal/repository"
	"maurizone/internal/service"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ApplicationContainer 封装了应用运行所需的所有顶级组件
type ApplicationContainer struct {
	Router  *gin.Engine
	DB      *gorm.DB
	Gateway *realtime.Gateway
	CronMgr *cron.Manager
}

// redisTokenBlocker 登出后的 token 签名黑名单，TTL 与 token 有效期一致
type redisTokenBlocker struct{}

func (redisTokenBlocker) Block(ctx context.Context, signature string, ttl time.Duration) error {
	return redis.SetWithExpiration(ctx, signature, "revoked", ttl)
}

func BuildApplication(db *gorm.DB, cfg *config.Config) (*ApplicationContainer, error) {
	userRepo := repository.NewUserRepo(db)
	storeRepo := repository.NewStoreRepo(db)
	productRepo := repository.NewProductRepo(db)
	orderRepo := repository.NewOrderRepo(db)
	convRepo := repository.NewConversationRepo(db)
	msgRepo := repository.NewMessageRepo(db)
	notificationRepo := repository.NewNotificationRepo(db)

	gateway := realtime.NewGateway(convRepo, realtime.DefaultTypingTTL)

	userService := service.NewUserService(userRepo, redisTokenBlocker{})
	storeService := service.NewStoreService(storeRepo)
	productService := service.NewProductService(productRepo, storeRepo)
	orderService := service.NewOrderService(orderRepo, productRepo, storeRepo)
	notificationService := service.NewNotificationService(notificationRepo, push.NewClient(cfg.Push))
	chatService := service.NewChatService(convRepo, msgRepo, userRepo, gateway, notificationService)

	handlers := &api.HandlersGroup{
		UserHandler:         handler.NewUserHandler(userService),
		StoreHandler:        handler.NewStoreHandler(storeService),
		ProductHandler:      handler.NewProductHandler(productService),
		OrderHandler:        handler.NewOrderHandler(orderService),
		ChatHandler:         handler.NewChatHandler(chatService),
		WsHandler:           handler.NewWsHandler(gateway, chatService),
		NotificationHandler: handler.NewNotificationHandler(notificationService),
	}

	router := api.SetupRouter(handlers)

	cronMgr := cron.NewCronManager(job.NewAttachmentCleanupJob())

	return &ApplicationContainer{
		Router:  router,
		DB:      db,
		Gateway: gateway,
		CronMgr: cronMgr,
	}, nil
}
