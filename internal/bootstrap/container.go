package bootstrap

import (
	"context"
	"log"

	"socialite-be/internal/config"
	"socialite-be/internal/controller"
	"socialite-be/internal/handler"
	"socialite-be/internal/pkg/logger"
	"socialite-be/internal/repository/memory"
	"socialite-be/internal/repository/unitofwork"
	"socialite-be/internal/service"
	"socialite-be/internal/websocket"

	pktNats "socialite-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const messageSentTopic = "chat.message_sent"

type Container struct {
	// Controllers
	AuthController controller.IAuthController
	UserController controller.IUserController
	ChatController controller.IChatController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	// WebSockets & Notification
	NotificationHandler *handler.NotificationHandler
	WebSocketHub        *websocket.Hub
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	}

	// Redis is optional: the projection cache degrades to its local tier.
	var rdb *redis.Client
	if cfg.App.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.App.RedisURL)
		if err != nil {
			log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
			opt = &redis.Options{
				Addr: cfg.App.RedisURL,
			}
		}
		rdb = redis.NewClient(opt)
		if _, err := rdb.Ping(context.Background()).Result(); err != nil {
			log.Printf("[WARN] Failed to connect to Redis: %v", err)
		}
	}
	projectionCache := memory.NewProjectionCache(rdb)

	// 3. WebSocket Hub (presence + delivery)
	wsLogger := logger.NewIsolatedLogger(cfg.App.SocketLogFilePath)
	wsHub := websocket.NewHub(wsLogger)

	// 4. Services
	projections := service.NewProjectionResolver(uowFactory, projectionCache)

	publisherService := service.NewPublisherService(messageSentTopic, pubSub)
	chatService := service.NewChatService(uowFactory, projections, wsHub, publisherService, sysLogger)
	authService := service.NewAuthService(uowFactory, natsPub, cfg.Auth)
	userService := service.NewUserService(uowFactory, projectionCache, chatService, natsPub, sysLogger)

	notifService := service.NewNotificationService(uowFactory, natsSub, projections, wsHub, wsLogger)
	if natsSub != nil {
		if err := notifService.Start(); err != nil {
			log.Printf("[WARN] Notification worker not started: %v", err)
		}
	}

	consumerService := service.NewConsumerService(pubSub, messageSentTopic, notifService, wsHub, sysLogger)

	realtimeService := service.NewRealtimeService(uowFactory, chatService, wsHub, wsLogger)
	wsHub.SetRouter(realtimeService)
	go wsHub.Run()

	// 5. Handlers & Controllers
	notifHandler := handler.NewNotificationHandler(notifService, wsHub, wsLogger)

	return &Container{
		AuthController: controller.NewAuthController(authService, cfg.Auth),
		UserController: controller.NewUserController(userService),
		ChatController: controller.NewChatController(chatService),

		ConsumerService: consumerService,

		NotificationHandler: notifHandler,
		WebSocketHub:        wsHub,
	}
}
