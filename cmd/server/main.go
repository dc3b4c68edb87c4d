package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chatterbox/internal/api/routes"
	"chatterbox/internal/cache"
	"chatterbox/internal/config"
	"chatterbox/internal/database"
	"chatterbox/internal/events"
	"chatterbox/internal/realtime"
	"chatterbox/internal/repository"
	"chatterbox/internal/service"
	"chatterbox/internal/storage"

	"github.com/joho/godotenv"
)

func main() {
	// Local development convenience; the file is optional.
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	slog.Info("starting chatterbox server")

	mongoDB, err := database.NewMongoConnection(cfg.Mongo.URI, cfg.Mongo.DBName)
	if err != nil {
		slog.Error("failed to connect to mongodb", "error", err)
		os.Exit(1)
	}
	defer mongoDB.Close(context.Background())

	redisClient, err := database.NewRedisConnection(cfg.Redis.URL)
	if err != nil {
		slog.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	minioClient, err := storage.NewMinIOClient(
		cfg.MinIO.Endpoint,
		cfg.MinIO.AccessKey,
		cfg.MinIO.SecretKey,
		cfg.MinIO.Bucket,
		cfg.MinIO.UseSSL,
	)
	if err != nil {
		slog.Error("failed to connect to minio", "error", err)
		os.Exit(1)
	}

	producer, err := events.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	if err != nil {
		slog.Error("failed to connect to kafka", "error", err)
		os.Exit(1)
	}
	defer producer.Close()

	userRepo := repository.NewUserRepository(mongoDB)
	chatRepo := repository.NewChatRepository(mongoDB)
	messageRepo := repository.NewMessageRepository(mongoDB)

	indexCtx, cancelIndex := context.WithTimeout(context.Background(), 10*time.Second)
	for _, ensure := range []func(context.Context) error{
		userRepo.EnsureIndexes,
		chatRepo.EnsureIndexes,
		messageRepo.EnsureIndexes,
	} {
		if err := ensure(indexCtx); err != nil {
			slog.Error("failed to create indexes", "error", err)
			cancelIndex()
			os.Exit(1)
		}
	}
	cancelIndex()

	hub := realtime.NewHub(logger)

	messageCache := cache.NewMessageCache(redisClient)
	limiter := cache.NewRateLimiter(redisClient)

	svcs := routes.Services{
		Auth:     service.NewAuthService(userRepo, cfg.JWT.Secret, cfg.JWT.ExpirationTime),
		Users:    service.NewUserService(userRepo, hub.Registry()),
		Chats:    service.NewChatService(chatRepo, userRepo),
		Messages: service.NewMessageService(messageRepo, chatRepo, messageCache, producer),
		Uploads:  service.NewUploadService(minioClient),
	}

	// Stamp lastSeen off the hub loop when a user fully disconnects.
	hub.OnOffline(func(userID string) {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := svcs.Users.RecordLastSeen(ctx, userID); err != nil {
				slog.Warn("failed to record last seen", "userID", userID, "error", err)
			}
		}()
	})
	go hub.Run()

	router := routes.NewRouter(hub, svcs, limiter)
	router.SetupRoutes()

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		slog.Info("server listening", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("server shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	hub.Stop()
	if err := server.Shutdown(ctx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}
