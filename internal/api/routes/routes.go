package routes

import (
	"time"

	"chatterbox/internal/api/handlers"
	"chatterbox/internal/api/middleware"
	"chatterbox/internal/cache"
	"chatterbox/internal/realtime"
	"chatterbox/internal/service"

	"github.com/gin-gonic/gin"
)

type Router struct {
	engine         *gin.Engine
	wsHandler      *handlers.WSHandler
	authHandler    *handlers.AuthHandler
	userHandler    *handlers.UserHandler
	chatHandler    *handlers.ChatHandler
	messageHandler *handlers.MessageHandler
	uploadHandler  *handlers.UploadHandler
	rateLimitMW    *middleware.RateLimitMiddleware
	authMW         *middleware.AuthMiddleware
}

type Services struct {
	Auth     *service.AuthService
	Users    *service.UserService
	Chats    *service.ChatService
	Messages *service.MessageService
	Uploads  *service.UploadService
}

func NewRouter(hub *realtime.Hub, svcs Services, limiter *cache.RateLimiter) *Router {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(middleware.CORS())
	engine.Use(middleware.LogAPI())

	return &Router{
		engine:         engine,
		wsHandler:      handlers.NewWSHandler(hub),
		authHandler:    handlers.NewAuthHandler(svcs.Auth, hub.Registry()),
		userHandler:    handlers.NewUserHandler(svcs.Users),
		chatHandler:    handlers.NewChatHandler(svcs.Chats),
		messageHandler: handlers.NewMessageHandler(svcs.Messages),
		uploadHandler:  handlers.NewUploadHandler(svcs.Uploads),
		rateLimitMW:    middleware.NewRateLimitMiddleware(limiter),
		authMW:         middleware.NewAuthMiddleware(svcs.Auth),
	}
}

func (r *Router) SetupRoutes() {
	r.engine.GET("/healthcheck", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := r.engine.Group("/api")

	// The socket starts anonymous; identity is bound by a join event,
	// so the upgrade itself is not behind auth.
	r.engine.GET("/ws", r.wsHandler.Serve)

	// Public routes.
	authRoutes := api.Group("/auth")
	authRoutes.Use(r.rateLimitMW.RateLimitIP(50, time.Minute))
	{
		authRoutes.POST("/register", r.authHandler.Register)
		authRoutes.POST("/login", r.authHandler.Login)
	}

	// Authenticated routes.
	auth := api.Group("/")
	auth.Use(r.authMW.RequireAuth())
	{
		auth.GET("/auth/me", r.authHandler.Me)

		users := auth.Group("/users")
		users.Use(r.rateLimitMW.RateLimit(100, time.Minute))
		{
			users.GET("", r.userHandler.List)
			users.GET("/:id", r.userHandler.Get)
			users.PUT("/me", r.userHandler.UpdateProfile)
		}

		chats := auth.Group("/chats")
		chats.Use(r.rateLimitMW.RateLimit(100, time.Minute))
		{
			chats.GET("", r.chatHandler.List)
			chats.POST("", r.chatHandler.Create)
			chats.GET("/:id", r.chatHandler.Get)
			chats.PUT("/:id", r.chatHandler.Update)
			chats.POST("/:id/participants", r.chatHandler.AddParticipant)
			chats.DELETE("/:id/participants/:userId", r.chatHandler.RemoveParticipant)
			chats.GET("/:id/messages", r.messageHandler.History)
			chats.POST("/:id/read", r.messageHandler.MarkRead)
		}

		messages := auth.Group("/messages")
		messages.Use(r.rateLimitMW.RateLimit(200, time.Minute))
		{
			messages.POST("", r.messageHandler.Send)
			messages.PUT("/:id", r.messageHandler.Edit)
			messages.DELETE("/:id", r.messageHandler.Delete)
			messages.POST("/:id/reactions", r.messageHandler.React)
			messages.DELETE("/:id/reactions/:emoji", r.messageHandler.Unreact)
		}

		uploads := auth.Group("/uploads")
		uploads.Use(r.rateLimitMW.RateLimit(30, time.Minute))
		{
			uploads.POST("", r.uploadHandler.Upload)
		}
	}
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
