package service

import (
	"context"
	"errors"
	"strings"

	"zhipan/internal/models"
	"zhipan/internal/rag"
	"zhipan/pkg/logger"
)

// 对外暴露的错误。"不存在"与"不属于当前用户"折叠为同一个错误。
var (
	ErrSessionAccess = errors.New("会话不存在或权限不足")
	ErrMessageAccess = errors.New("消息不存在或权限不足")
	ErrBlankMessage  = errors.New("消息内容不能为空")
	ErrBlankName     = errors.New("会话名称不能为空")
)

// SessionStore 是会话相关的数据访问接口。
type SessionStore interface {
	CreateSession(session *models.ChatSession) error
	SessionByID(id uint) (*models.ChatSession, error)
	SessionsByUser(userID uint) ([]*models.ChatSession, error)
	UpdateSession(session *models.ChatSession) error
	TouchSession(sessionID uint) error
	DeleteSession(sessionID uint) error
}

// MessageStore 是消息相关的数据访问接口。
type MessageStore interface {
	CreateMessage(message *models.ChatMessage) error
	MessageByID(id uint) (*models.ChatMessage, error)
	MessagesBySession(sessionID uint) ([]*models.ChatMessage, error)
	DeleteMessagesBySession(sessionID uint) error
}

// FileFinder 与 FolderFinder 是文档路径解析需要的只读接口，
// 由 drive 的 store 满足。
type FileFinder interface {
	FilesByIDs(ids []uint) ([]*models.File, error)
	FilesByFolder(userID, folderID uint) ([]*models.File, error)
}

type FolderFinder interface {
	FolderByID(id uint) (*models.Folder, error)
	FoldersByParent(userID, parentID uint) ([]*models.Folder, error)
}

// RagChat 是聊天编排需要的 RAG 客户端接口，由 *rag.Client 满足。
type RagChat interface {
	Chat(ctx context.Context, req *rag.ChatRequest) (*rag.ChatResponse, error)
	ClearConversation(ctx context.Context, sessionID uint) error
}

// Service 封装了会话管理与 AI 对话编排的业务逻辑。
type Service struct {
	sessions SessionStore
	messages MessageStore
	files    FileFinder
	folders  FolderFinder
	ragChat  RagChat
	log      *logger.Logger
}

// NewService 创建一个新的 Service 实例。
func NewService(sessions SessionStore, messages MessageStore,
	files FileFinder, folders FolderFinder, ragChat RagChat) *Service {
	return &Service{
		sessions: sessions,
		messages: messages,
		files:    files,
		folders:  folders,
		ragChat:  ragChat,
		log:      logger.New("chat_service"),
	}
}

// CreateSession 为用户创建一个新会话。
func (s *Service) CreateSession(userID uint, name string) (*models.ChatSession, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrBlankName
	}
	session := &models.ChatSession{UserID: userID, Name: strings.TrimSpace(name)}
	if err := s.sessions.CreateSession(session); err != nil {
		return nil, err
	}
	return session, nil
}

// Sessions 返回用户的全部会话，按更新时间倒序。
func (s *Service) Sessions(userID uint) ([]*models.ChatSession, error) {
	return s.sessions.SessionsByUser(userID)
}

// RenameSession 重命名会话。
func (s *Service) RenameSession(sessionID, userID uint, newName string) (*models.ChatSession, error) {
	if strings.TrimSpace(newName) == "" {
		return nil, ErrBlankName
	}
	session, err := s.validateSessionOwnership(sessionID, userID)
	if err != nil {
		return nil, err
	}

	session.Name = strings.TrimSpace(newName)
	if err := s.sessions.UpdateSession(session); err != nil {
		return nil, err
	}
	return session, nil
}

// DeleteSession 删除会话及其全部消息。
func (s *Service) DeleteSession(sessionID, userID uint) error {
	if _, err := s.validateSessionOwnership(sessionID, userID); err != nil {
		return err
	}
	return s.sessions.DeleteSession(sessionID)
}

// MessageHistory 返回会话的全部消息，按创建时间正序。
func (s *Service) MessageHistory(sessionID, userID uint) ([]*models.ChatMessage, error) {
	if _, err := s.validateSessionOwnership(sessionID, userID); err != nil {
		return nil, err
	}
	return s.messages.MessagesBySession(sessionID)
}

// Message 返回指定的消息。
func (s *Service) Message(messageID, userID uint) (*models.ChatMessage, error) {
	message, err := s.messages.MessageByID(messageID)
	if err != nil || message.UserID != userID {
		return nil, ErrMessageAccess
	}
	return message, nil
}

// ClearSessionHistory 删除会话的消息记录，并尽力通知 RAG 服务丢弃
// 其服务端的会话状态。通知失败不影响本地清除的结果。
func (s *Service) ClearSessionHistory(ctx context.Context, sessionID, userID uint) error {
	if _, err := s.validateSessionOwnership(sessionID, userID); err != nil {
		return err
	}

	if err := s.messages.DeleteMessagesBySession(sessionID); err != nil {
		return err
	}

	if err := s.ragChat.ClearConversation(ctx, sessionID); err != nil {
		s.log.WithField("session_id", sessionID).Warnf("通知RAG后端清除对话历史失败: %v", err)
	}

	return s.sessions.TouchSession(sessionID)
}

// validateSessionOwnership 校验会话存在且属于该用户。
func (s *Service) validateSessionOwnership(sessionID, userID uint) (*models.ChatSession, error) {
	session, err := s.sessions.SessionByID(sessionID)
	if err != nil || session.UserID != userID {
		return nil, ErrSessionAccess
	}
	return session, nil
}
