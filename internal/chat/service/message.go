package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"zhipan/internal/models"
	"zhipan/internal/rag"
)

// AI 调用失败时落库的占位回复。失败在这一层被吸收，不向上抛出。
const (
	fallbackInvalidReply = "抱歉，获取AI回复时发生错误"
	fallbackUnavailable  = "抱歉，AI服务暂时不可用，请稍后再试。"
)

// maxHistoryPairs 限制随请求携带的历史问答轮数，避免请求过大。
const maxHistoryPairs = 10

// SendMessage 处理一轮对话：持久化用户消息，携带检索范围与历史调用
// RAG 服务，并把回复（或失败占位）作为 assistant 消息持久化后返回。
// fileIDs/folderIDs 为空时检索范围默认为整个用户语料 user_<id>。
func (s *Service) SendMessage(ctx context.Context, sessionID, userID uint, content string,
	fileIDs, folderIDs []uint) (*models.ChatMessage, error) {
	if content == "" {
		return nil, ErrBlankMessage
	}
	if _, err := s.validateSessionOwnership(sessionID, userID); err != nil {
		return nil, err
	}

	paths, err := s.resolveDocumentPaths(userID, fileIDs, folderIDs)
	if err != nil {
		return nil, err
	}
	// 指定的 ID 全部无效时回退到整个用户语料。
	if len(paths) == 0 {
		paths = rag.DocPath{fmt.Sprintf("user_%d", userID)}
	}

	if _, err := s.saveMessage(sessionID, userID, models.RoleUser, content, nil); err != nil {
		return nil, err
	}

	history, err := s.messages.MessagesBySession(sessionID)
	if err != nil {
		return nil, err
	}

	req := &rag.ChatRequest{
		Message:        content,
		DocumentPath:   paths,
		ConversationID: fmt.Sprintf("session_%d", sessionID),
		History:        historyWindow(history),
	}

	answer, sources := s.askRag(ctx, userID, req)
	return s.saveMessage(sessionID, userID, models.RoleAssistant, answer, sources)
}

// askRag 调用 RAG 服务并吸收失败：格式错误和服务不可用分别映射为
// 对应的占位回复。
func (s *Service) askRag(ctx context.Context, userID uint, req *rag.ChatRequest) (string, []byte) {
	resp, err := s.ragChat.Chat(ctx, req)
	if err != nil {
		s.log.WithUser(userID).Errorf("调用RAG API失败: %v", err)
		if errors.Is(err, rag.ErrInvalidReply) {
			return fallbackInvalidReply, nil
		}
		return fallbackUnavailable, nil
	}
	return resp.Text(), resp.Sources
}

// saveMessage 持久化一条消息并刷新会话的更新时间。
func (s *Service) saveMessage(sessionID, userID uint, role, content string, sources []byte) (*models.ChatMessage, error) {
	message := &models.ChatMessage{
		SessionID: sessionID,
		UserID:    userID,
		Role:      role,
		Content:   content,
		Sources:   sources,
	}
	if err := s.messages.CreateMessage(message); err != nil {
		return nil, err
	}
	if err := s.sessions.TouchSession(sessionID); err != nil {
		return nil, err
	}
	return message, nil
}

// historyWindow 把消息序列按偶数偏移配成 (user, assistant) 问答对，
// 跳过错位的配对，最多保留 maxHistoryPairs 轮，保持时间正序。
func historyWindow(messages []*models.ChatMessage) []rag.HistoryItem {
	var history []rag.HistoryItem
	for i := 0; i+1 < len(messages); i += 2 {
		userMsg, assistantMsg := messages[i], messages[i+1]
		if userMsg.Role != models.RoleUser || assistantMsg.Role != models.RoleAssistant {
			continue
		}
		history = append(history, rag.HistoryItem{
			Question:  userMsg.Content,
			Answer:    assistantMsg.Content,
			Timestamp: assistantMsg.CreatedAt.Format(time.RFC3339),
		})
		if len(history) >= maxHistoryPairs {
			break
		}
	}
	return history
}
