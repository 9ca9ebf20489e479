package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"zhipan/internal/rag"
)

// RagHandler 负责向量库管理相关的 HTTP 接口。
type RagHandler struct {
	rag       *rag.Client
	rebuilder *rag.Rebuilder
}

func NewRagHandler(client *rag.Client, rebuilder *rag.Rebuilder) *RagHandler {
	return &RagHandler{rag: client, rebuilder: rebuilder}
}

// BuildVectorStore 处理 POST /api/v1/rag/vectorstores?forceRebuild=true，
// 同步等待构建结果。与聊天不同，这里的失败直接回传给调用方。
func (h *RagHandler) BuildVectorStore(c *gin.Context) {
	force, _ := strconv.ParseBool(c.DefaultQuery("forceRebuild", "false"))
	result := h.rag.BuildVectorStore(c.Request.Context(), currentUserID(c), force)
	if result.Status == rag.StatusError {
		c.JSON(http.StatusBadGateway, Response{Code: 1, Message: result.Message, Data: result})
		return
	}
	ok(c, result)
}

// BuildVectorStoreAsync 处理 POST /api/v1/rag/vectorstores/async，把重建
// 任务交给后台队列后立即返回。forceRebuild=false 时仅在向量库不存在时构建。
func (h *RagHandler) BuildVectorStoreAsync(c *gin.Context) {
	if h.rebuilder == nil {
		failMsg(c, http.StatusServiceUnavailable, "RAG 服务未启用")
		return
	}
	force, _ := strconv.ParseBool(c.DefaultQuery("forceRebuild", "true"))
	if force {
		h.rebuilder.Enqueue(currentUserID(c))
	} else {
		h.rebuilder.EnqueueInitial(currentUserID(c))
	}
	ok(c, gin.H{"status": "queued"})
}

// ClearCache 处理 POST /api/v1/rag/vectorstores/clear-cache。
func (h *RagHandler) ClearCache(c *gin.Context) {
	if err := h.rag.ClearCache(c.Request.Context(), currentUserID(c)); err != nil {
		fail(c, err)
		return
	}
	ok(c, nil)
}

// Health 处理 GET /api/v1/rag/health，透传 RAG 服务的健康状况。
func (h *RagHandler) Health(c *gin.Context) {
	if !h.rag.Enabled() {
		ok(c, gin.H{"status": "disabled"})
		return
	}
	if h.rag.Healthy(c.Request.Context()) {
		ok(c, gin.H{"status": "healthy"})
		return
	}
	c.JSON(http.StatusServiceUnavailable, Response{Code: 1, Message: "RAG 服务不可用", Data: gin.H{"status": "unhealthy"}})
}
