package api

import (
	"time"

	"github.com/gin-gonic/gin"

	"zhipan/internal/config"
	"zhipan/pkg/ratelimiter"
)

// Handlers 汇集路由需要的全部处理器。
type Handlers struct {
	User  *UserHandler
	Drive *DriveHandler
	Chat  *ChatHandler
	Rag   *RagHandler
}

// NewRouter 按配置组装 Gin 引擎：全局限流（可选）、公开的注册/登录
// 接口，以及 JWT 保护下的 /api/v1 业务路由。
func NewRouter(cfg *config.AppConfig, h Handlers) *gin.Engine {
	router := gin.Default()

	if cfg.Middleware.RateLimiter.Enabled {
		router.Use(RateLimitMiddleware(buildRateLimiter(&cfg.Middleware.RateLimiter)))
	}

	v1 := router.Group("/api/v1")

	users := v1.Group("/users")
	{
		users.POST("/register", h.User.Register)
		users.POST("/login", h.User.Login)
	}

	auth := v1.Group("")
	auth.Use(AuthMiddleware(cfg.Auth.JwtSecret))
	{
		auth.GET("/users/me", h.User.Me)
		auth.PATCH("/users/password", h.User.UpdatePassword)
		auth.POST("/users/avatar", h.User.UploadAvatar)

		folders := auth.Group("/folders")
		{
			folders.POST("", h.Drive.CreateFolder)
			folders.GET("/tree", h.Drive.FolderTree)
			folders.GET("/:folderId/contents", h.Drive.FolderContents)
			folders.PATCH("/:folderId/name", h.Drive.RenameFolder)
			folders.PATCH("/:folderId/parent", h.Drive.MoveFolder)
			folders.DELETE("/:folderId", h.Drive.DeleteFolder)
		}

		files := auth.Group("/files")
		{
			files.POST("", h.Drive.UploadFile)
			files.POST("/text", h.Drive.CreateTextFile)
			files.GET("/search", h.Drive.SearchFiles)
			files.GET("/:fileId", h.Drive.FileMetadata)
			files.GET("/:fileId/content", h.Drive.FileContent)
			files.GET("/:fileId/download", h.Drive.DownloadFile)
			files.PATCH("/:fileId/name", h.Drive.RenameFile)
			files.PATCH("/:fileId/folder", h.Drive.MoveFile)
			files.DELETE("/:fileId", h.Drive.DeleteFile)
		}

		chat := auth.Group("/chat")
		{
			chat.POST("/sessions", h.Chat.CreateSession)
			chat.GET("/sessions", h.Chat.Sessions)
			chat.PATCH("/sessions/:sessionId/name", h.Chat.RenameSession)
			chat.DELETE("/sessions/:sessionId", h.Chat.DeleteSession)
			chat.GET("/sessions/:sessionId/messages", h.Chat.MessageHistory)
			chat.POST("/sessions/:sessionId/messages", h.Chat.SendMessage)
			chat.DELETE("/sessions/:sessionId/messages", h.Chat.ClearSessionHistory)
			chat.GET("/messages/:messageId", h.Chat.Message)
			chat.POST("/document-paths", h.Chat.PreviewDocumentPaths)
			// 前端选择检索范围用的文件夹选择器。
			chat.GET("/folders", h.Drive.FolderTree)
		}

		ragGroup := auth.Group("/rag")
		{
			ragGroup.POST("/vectorstores", h.Rag.BuildVectorStore)
			ragGroup.POST("/vectorstores/async", h.Rag.BuildVectorStoreAsync)
			ragGroup.POST("/vectorstores/clear-cache", h.Rag.ClearCache)
			ragGroup.GET("/health", h.Rag.Health)
		}
	}

	return router
}

// buildRateLimiter 根据配置选择限流算法，未知算法回退到固定窗口。
func buildRateLimiter(cfg *config.RateLimiterConfig) ratelimiter.RateLimiter {
	if cfg.Algorithm == "tokenBucket" {
		return ratelimiter.NewTokenBucket(cfg.Rate, cfg.Capacity)
	}
	window, err := time.ParseDuration(cfg.Window)
	if err != nil || window <= 0 {
		window = time.Minute
	}
	return ratelimiter.NewFixedWindowCounter(cfg.Limit, window)
}
