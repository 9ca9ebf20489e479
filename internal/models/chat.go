package models

import (
	"time"

	"gorm.io/datatypes"
)

// 聊天消息的角色取值。
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatSession 代表一个用户的对话会话。
type ChatSession struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index;not null" json:"userId"`
	Name      string    `gorm:"not null;size:255" json:"sessionName"`
	CreatedAt time.Time `json:"createTime"`
	UpdatedAt time.Time `json:"updateTime"`
}

func (ChatSession) TableName() string {
	return "chat_sessions"
}

// ChatMessage 代表会话中的一条消息。Sources 仅在 assistant 消息带有
// 引用来源时非空，存储 RAG 服务返回的 sources 原始 JSON。
type ChatMessage struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	SessionID uint           `gorm:"index;not null" json:"sessionId"`
	UserID    uint           `gorm:"not null" json:"userId"`
	Role      string         `gorm:"not null;size:20" json:"role"`
	Content   string         `gorm:"type:text;not null" json:"content"`
	Sources   datatypes.JSON `json:"sources,omitempty"`
	CreatedAt time.Time      `json:"createTime"`
}

func (ChatMessage) TableName() string {
	return "chat_messages"
}
