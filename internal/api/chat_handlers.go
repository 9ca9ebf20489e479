package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	chatservice "zhipan/internal/chat/service"
)

// ChatHandler 负责会话与消息相关的 HTTP 接口。
type ChatHandler struct {
	chat *chatservice.Service
}

func NewChatHandler(chat *chatservice.Service) *ChatHandler {
	return &ChatHandler{chat: chat}
}

type createSessionRequest struct {
	SessionName string `json:"sessionName" binding:"required"`
}

// CreateSession 处理 POST /api/v1/chat/sessions。
func (h *ChatHandler) CreateSession(c *gin.Context) {
	var req createSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failMsg(c, http.StatusBadRequest, "无效的请求参数: "+err.Error())
		return
	}

	session, err := h.chat.CreateSession(currentUserID(c), req.SessionName)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, session)
}

// Sessions 处理 GET /api/v1/chat/sessions，按最近活跃排序。
func (h *ChatHandler) Sessions(c *gin.Context) {
	sessions, err := h.chat.Sessions(currentUserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, sessions)
}

// RenameSession 处理 PATCH /api/v1/chat/sessions/:sessionId/name。
func (h *ChatHandler) RenameSession(c *gin.Context) {
	sessionID, valid := pathID(c, "sessionId")
	if !valid {
		return
	}
	var req renameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failMsg(c, http.StatusBadRequest, "无效的请求参数: "+err.Error())
		return
	}

	session, err := h.chat.RenameSession(sessionID, currentUserID(c), req.NewName)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, session)
}

// DeleteSession 处理 DELETE /api/v1/chat/sessions/:sessionId。
func (h *ChatHandler) DeleteSession(c *gin.Context) {
	sessionID, valid := pathID(c, "sessionId")
	if !valid {
		return
	}

	if err := h.chat.DeleteSession(sessionID, currentUserID(c)); err != nil {
		fail(c, err)
		return
	}
	ok(c, nil)
}

// ClearSessionHistory 处理 DELETE /api/v1/chat/sessions/:sessionId/messages。
func (h *ChatHandler) ClearSessionHistory(c *gin.Context) {
	sessionID, valid := pathID(c, "sessionId")
	if !valid {
		return
	}

	if err := h.chat.ClearSessionHistory(c.Request.Context(), sessionID, currentUserID(c)); err != nil {
		fail(c, err)
		return
	}
	ok(c, nil)
}

// MessageHistory 处理 GET /api/v1/chat/sessions/:sessionId/messages。
func (h *ChatHandler) MessageHistory(c *gin.Context) {
	sessionID, valid := pathID(c, "sessionId")
	if !valid {
		return
	}

	messages, err := h.chat.MessageHistory(sessionID, currentUserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, messages)
}

type sendMessageRequest struct {
	Message   string `json:"message" binding:"required"`
	FileIDs   []uint `json:"fileIds"`
	FolderIDs []uint `json:"folderIds"`
}

// SendMessage 处理 POST /api/v1/chat/sessions/:sessionId/messages，返回
// assistant 回复消息。
func (h *ChatHandler) SendMessage(c *gin.Context) {
	sessionID, valid := pathID(c, "sessionId")
	if !valid {
		return
	}
	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failMsg(c, http.StatusBadRequest, "无效的请求参数: "+err.Error())
		return
	}

	reply, err := h.chat.SendMessage(c.Request.Context(), sessionID, currentUserID(c),
		req.Message, req.FileIDs, req.FolderIDs)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, reply)
}

// Message 处理 GET /api/v1/chat/messages/:messageId。
func (h *ChatHandler) Message(c *gin.Context) {
	messageID, valid := pathID(c, "messageId")
	if !valid {
		return
	}

	message, err := h.chat.Message(messageID, currentUserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, message)
}

type previewPathsRequest struct {
	FileIDs   []uint `json:"fileIds"`
	FolderIDs []uint `json:"folderIds"`
}

// PreviewDocumentPaths 处理 POST /api/v1/chat/document-paths，供前端在
// 发送消息前预览检索范围。
func (h *ChatHandler) PreviewDocumentPaths(c *gin.Context) {
	var req previewPathsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failMsg(c, http.StatusBadRequest, "无效的请求参数: "+err.Error())
		return
	}

	paths, err := h.chat.PreviewDocumentPaths(currentUserID(c), req.FileIDs, req.FolderIDs)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, paths)
}
