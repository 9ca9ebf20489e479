package main

import (
	"fmt"
	"log"
	"time"

	"github.com/sirupsen/logrus"

	"zhipan/internal/api"
	chatservice "zhipan/internal/chat/service"
	chatstore "zhipan/internal/chat/store"
	"zhipan/internal/config"
	"zhipan/internal/database/minio"
	"zhipan/internal/database/mysql"
	"zhipan/internal/database/redis"
	driveservice "zhipan/internal/drive/service"
	drivestore "zhipan/internal/drive/store"
	"zhipan/internal/models"
	"zhipan/internal/rag"
	userservice "zhipan/internal/user/service"
	userstore "zhipan/internal/user/store"
	"zhipan/pkg/circuitbreaker"
	"zhipan/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig("config.yaml")
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	// Initialize logger
	level, err := logrus.ParseLevel(cfg.Logger.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.Init(level)
	appLogger := logger.New("server")

	appLogger.Info("Logger initialized")

	// Initialize database connection
	db, err := mysql.GetDB(&cfg.Databases.MySQL)
	if err != nil {
		appLogger.Fatal(err.Error())
	}
	defer mysql.Close()
	appLogger.Info("Database connection established")

	// Auto-migrate database schema
	err = db.AutoMigrate(&models.User{}, &models.Folder{}, &models.File{},
		&models.ChatSession{}, &models.ChatMessage{})
	if err != nil {
		appLogger.Fatal(err.Error())
	}
	appLogger.Info("Database migration completed")

	// Redis is optional: without it the folder tree is always read from MySQL.
	var treeCache driveservice.TreeCache
	if rdb, err := redis.GetClient(&cfg.Databases.Redis); err != nil {
		appLogger.Warnf("Redis unavailable, folder tree cache disabled: %v", err)
	} else {
		treeCache = drivestore.NewTreeCache(rdb, time.Duration(cfg.Databases.Redis.TreeTTL)*time.Second)
		defer redis.Close()
		appLogger.Info("Redis connection established")
	}

	// MinIO is optional: without it avatar uploads are disabled.
	var avatars userservice.ObjectUploader
	if mc, err := minio.GetClient(&cfg.Databases.MinIO); err != nil {
		appLogger.Warnf("MinIO unavailable, avatar uploads disabled: %v", err)
	} else {
		avatars = mc
		appLogger.Info("MinIO connection established")
	}

	// RAG client with optional circuit breaker
	var breaker circuitbreaker.CircuitBreaker
	if cb := cfg.Middleware.CircuitBreaker; cb.Enabled {
		timeout, err := time.ParseDuration(cb.Timeout)
		if err != nil || timeout <= 0 {
			timeout = 30 * time.Second
		}
		breaker = circuitbreaker.New(cb.FailureThreshold, cb.SuccessThreshold, timeout)
	}
	ragClient := rag.NewClient(&cfg.Rag, breaker)

	var rebuilder *rag.Rebuilder
	var rebuilds driveservice.RebuildNotifier
	if cfg.Rag.Enabled {
		rebuilder = rag.NewRebuilder(ragClient, cfg.Rag.RebuildWorkers, cfg.Rag.RebuildQueue)
		defer rebuilder.Close()
		rebuilds = rebuilder
	}

	// Initialize dependencies (Store -> Service -> Handler)
	driveStore := drivestore.NewStore(db)
	driveService := driveservice.NewService(driveStore, driveStore, treeCache, rebuilds, cfg.Storage.Root)

	avatarCfg := userservice.AvatarConfig{
		Bucket:    cfg.Databases.MinIO.Bucket,
		PublicURL: minioPublicURL(&cfg.Databases.MinIO),
	}
	userService := userservice.NewService(userstore.NewStore(db), driveService, avatars,
		avatarCfg, cfg.Auth.JwtSecret, cfg.Auth.TokenTTL)

	chatStore := chatstore.NewStore(db)
	chatService := chatservice.NewService(chatStore, chatStore, driveStore, driveStore, ragClient)
	appLogger.Info("Dependencies injected")

	router := api.NewRouter(cfg, api.Handlers{
		User:  api.NewUserHandler(userService),
		Drive: api.NewDriveHandler(driveService),
		Chat:  api.NewChatHandler(chatService),
		Rag:   api.NewRagHandler(ragClient, rebuilder),
	})
	appLogger.Info("Router setup completed")

	address := cfg.App.Address
	if address == "" {
		address = ":8080"
	}
	appLogger.Info("Starting server on " + address)

	if err := router.Run(address); err != nil {
		appLogger.Fatal("failed to start server: " + err.Error())
	}
}

func minioPublicURL(cfg *config.MinIOConfig) string {
	scheme := "http"
	if cfg.Secure {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s", scheme, cfg.Endpoint)
}
