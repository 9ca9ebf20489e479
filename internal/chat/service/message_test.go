package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zhipan/internal/models"
	"zhipan/internal/rag"
)

func pair(ts time.Time, question, answer string) []*models.ChatMessage {
	return []*models.ChatMessage{
		{Role: models.RoleUser, Content: question, CreatedAt: ts},
		{Role: models.RoleAssistant, Content: answer, CreatedAt: ts.Add(time.Second)},
	}
}

func TestHistoryWindowPairsInOrder(t *testing.T) {
	base := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	var messages []*models.ChatMessage
	messages = append(messages, pair(base, "q1", "a1")...)
	messages = append(messages, pair(base.Add(time.Minute), "q2", "a2")...)

	history := historyWindow(messages)
	require.Len(t, history, 2)
	assert.Equal(t, "q1", history[0].Question)
	assert.Equal(t, "a1", history[0].Answer)
	assert.Equal(t, "q2", history[1].Question)
	assert.Equal(t, base.Add(time.Second).Format(time.RFC3339), history[0].Timestamp)
}

func TestHistoryWindowSkipsMalformedPairs(t *testing.T) {
	base := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	messages := []*models.ChatMessage{
		// Two consecutive user messages misalign the first slot.
		{Role: models.RoleUser, Content: "q1", CreatedAt: base},
		{Role: models.RoleUser, Content: "q2", CreatedAt: base.Add(time.Second)},
	}
	messages = append(messages, pair(base.Add(time.Minute), "q3", "a3")...)

	history := historyWindow(messages)
	require.Len(t, history, 1)
	assert.Equal(t, "q3", history[0].Question)
}

func TestHistoryWindowCapsAtTenPairs(t *testing.T) {
	base := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	var messages []*models.ChatMessage
	for i := 0; i < 15; i++ {
		messages = append(messages, pair(base.Add(time.Duration(i)*time.Minute),
			fmt.Sprintf("q%d", i), fmt.Sprintf("a%d", i))...)
	}

	history := historyWindow(messages)
	require.Len(t, history, 10)
	assert.Equal(t, "q0", history[0].Question)
	assert.Equal(t, "q9", history[9].Question)
}

func TestHistoryWindowIgnoresTrailingUnpairedMessage(t *testing.T) {
	messages := []*models.ChatMessage{
		{Role: models.RoleUser, Content: "q1", CreatedAt: time.Now()},
	}
	assert.Empty(t, historyWindow(messages))
}

func TestSendMessagePersistsBothSides(t *testing.T) {
	f := newChatFixture()
	session := f.newSession(t, 1)
	f.rag.resp = &rag.ChatResponse{Answer: "回答", Sources: []byte(`[{"file":"a.txt"}]`)}

	reply, err := f.svc.SendMessage(context.Background(), session.ID, 1, "问题", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAssistant, reply.Role)
	assert.Equal(t, "回答", reply.Content)
	assert.NotEmpty(t, reply.Sources)

	require.Len(t, f.messages.messages, 2)
	assert.Equal(t, models.RoleUser, f.messages.messages[0].Role)
	assert.Equal(t, "问题", f.messages.messages[0].Content)
}

func TestSendMessageRequestShape(t *testing.T) {
	f := newChatFixture()
	session := f.newSession(t, 42)

	_, err := f.svc.SendMessage(context.Background(), session.ID, 42, "问题", nil, nil)
	require.NoError(t, err)

	req := f.rag.lastReq
	require.NotNil(t, req)
	assert.Equal(t, fmt.Sprintf("session_%d", session.ID), req.ConversationID)
	assert.Equal(t, rag.DocPath{"user_42"}, req.DocumentPath)
	// The just-saved user message has no assistant reply yet, so it must
	// not leak into the history window.
	assert.Empty(t, req.History)
}

func TestSendMessageFallbackOnTransportFailure(t *testing.T) {
	f := newChatFixture()
	session := f.newSession(t, 1)
	f.rag.err = fmt.Errorf("connection refused")

	reply, err := f.svc.SendMessage(context.Background(), session.ID, 1, "问题", nil, nil)
	require.NoError(t, err, "RAG failures are absorbed, not surfaced")
	assert.Equal(t, "抱歉，AI服务暂时不可用，请稍后再试。", reply.Content)
	assert.Len(t, f.messages.messages, 2, "both sides persisted even on failure")
}

func TestSendMessageFallbackOnInvalidReply(t *testing.T) {
	f := newChatFixture()
	session := f.newSession(t, 1)
	f.rag.err = rag.ErrInvalidReply

	reply, err := f.svc.SendMessage(context.Background(), session.ID, 1, "问题", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "抱歉，获取AI回复时发生错误", reply.Content)
}

func TestSendMessageRejectsBlankAndForeignSession(t *testing.T) {
	f := newChatFixture()
	session := f.newSession(t, 1)

	_, err := f.svc.SendMessage(context.Background(), session.ID, 1, "", nil, nil)
	assert.ErrorIs(t, err, ErrBlankMessage)

	_, err = f.svc.SendMessage(context.Background(), session.ID, 2, "问题", nil, nil)
	assert.ErrorIs(t, err, ErrSessionAccess)
	assert.Empty(t, f.messages.messages)
}

func TestSendMessageFallsBackToUserCorpusWhenSelectionInvalid(t *testing.T) {
	f := newChatFixture()
	session := f.newSession(t, 1)
	// The only referenced file belongs to another user.
	f.drive.files[5] = &models.File{ID: 5, UserID: 2, Path: "/data/other"}

	_, err := f.svc.SendMessage(context.Background(), session.ID, 1, "问题", []uint{5}, nil)
	require.NoError(t, err)
	assert.Equal(t, rag.DocPath{"user_1"}, f.rag.lastReq.DocumentPath)
}
