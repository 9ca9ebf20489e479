package store

import (
	"time"

	"zhipan/internal/models"

	"gorm.io/gorm"
)

// Store 封装了会话与消息的数据库操作。
type Store struct {
	DB *gorm.DB
}

// NewStore 创建一个新的 Store 实例。
func NewStore(db *gorm.DB) *Store {
	return &Store{DB: db}
}

// CreateSession 插入一条会话记录。
func (s *Store) CreateSession(session *models.ChatSession) error {
	return s.DB.Create(session).Error
}

// SessionByID 通过 ID 查找会话。
func (s *Store) SessionByID(id uint) (*models.ChatSession, error) {
	var session models.ChatSession
	if err := s.DB.First(&session, id).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

// SessionsByUser 返回某用户的全部会话，按更新时间倒序。
func (s *Store) SessionsByUser(userID uint) ([]*models.ChatSession, error) {
	var sessions []*models.ChatSession
	if err := s.DB.Where("user_id = ?", userID).
		Order("updated_at DESC").Find(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}

// UpdateSession 保存会话的全部字段。
func (s *Store) UpdateSession(session *models.ChatSession) error {
	return s.DB.Save(session).Error
}

// TouchSession 仅刷新会话的更新时间。
func (s *Store) TouchSession(sessionID uint) error {
	return s.DB.Model(&models.ChatSession{}).Where("id = ?", sessionID).
		Update("updated_at", time.Now()).Error
}

// DeleteSession 在一个事务中删除会话及其全部消息。
func (s *Store) DeleteSession(sessionID uint) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("session_id = ?", sessionID).
			Delete(&models.ChatMessage{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.ChatSession{}, sessionID).Error
	})
}

// CreateMessage 插入一条消息记录。
func (s *Store) CreateMessage(message *models.ChatMessage) error {
	return s.DB.Create(message).Error
}

// MessageByID 通过 ID 查找消息。
func (s *Store) MessageByID(id uint) (*models.ChatMessage, error) {
	var message models.ChatMessage
	if err := s.DB.First(&message, id).Error; err != nil {
		return nil, err
	}
	return &message, nil
}

// MessagesBySession 返回会话的全部消息，按创建时间正序。
func (s *Store) MessagesBySession(sessionID uint) ([]*models.ChatMessage, error) {
	var messages []*models.ChatMessage
	if err := s.DB.Where("session_id = ?", sessionID).
		Order("created_at ASC").Find(&messages).Error; err != nil {
		return nil, err
	}
	return messages, nil
}

// DeleteMessagesBySession 删除会话的全部消息。
func (s *Store) DeleteMessagesBySession(sessionID uint) error {
	return s.DB.Where("session_id = ?", sessionID).
		Delete(&models.ChatMessage{}).Error
}
