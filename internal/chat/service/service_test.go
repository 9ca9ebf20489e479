package service

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"zhipan/internal/models"
	"zhipan/internal/rag"
)

var errNotFound = gorm.ErrRecordNotFound

type fakeSessionStore struct {
	sessions map[uint]*models.ChatSession
	nextID   uint
	touched  []uint
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: make(map[uint]*models.ChatSession)}
}

func (f *fakeSessionStore) CreateSession(session *models.ChatSession) error {
	f.nextID++
	session.ID = f.nextID
	f.sessions[session.ID] = session
	return nil
}

func (f *fakeSessionStore) SessionByID(id uint) (*models.ChatSession, error) {
	session, ok := f.sessions[id]
	if !ok {
		return nil, errNotFound
	}
	return session, nil
}

func (f *fakeSessionStore) SessionsByUser(userID uint) ([]*models.ChatSession, error) {
	var out []*models.ChatSession
	for _, s := range f.sessions {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeSessionStore) UpdateSession(session *models.ChatSession) error {
	f.sessions[session.ID] = session
	return nil
}

func (f *fakeSessionStore) TouchSession(sessionID uint) error {
	f.touched = append(f.touched, sessionID)
	return nil
}

func (f *fakeSessionStore) DeleteSession(sessionID uint) error {
	delete(f.sessions, sessionID)
	return nil
}

type fakeMessageStore struct {
	messages []*models.ChatMessage
	nextID   uint
}

func (f *fakeMessageStore) CreateMessage(message *models.ChatMessage) error {
	f.nextID++
	message.ID = f.nextID
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now()
	}
	f.messages = append(f.messages, message)
	return nil
}

func (f *fakeMessageStore) MessageByID(id uint) (*models.ChatMessage, error) {
	for _, m := range f.messages {
		if m.ID == id {
			return m, nil
		}
	}
	return nil, errNotFound
}

func (f *fakeMessageStore) MessagesBySession(sessionID uint) ([]*models.ChatMessage, error) {
	var out []*models.ChatMessage
	for _, m := range f.messages {
		if m.SessionID == sessionID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeMessageStore) DeleteMessagesBySession(sessionID uint) error {
	var kept []*models.ChatMessage
	for _, m := range f.messages {
		if m.SessionID != sessionID {
			kept = append(kept, m)
		}
	}
	f.messages = kept
	return nil
}

type fakeDrive struct {
	files     map[uint]*models.File
	folders   map[uint]*models.Folder
	folderErr error // 非空时 FolderByID 直接返回该错误
}

func newFakeDrive() *fakeDrive {
	return &fakeDrive{files: make(map[uint]*models.File), folders: make(map[uint]*models.Folder)}
}

func (f *fakeDrive) FilesByIDs(ids []uint) ([]*models.File, error) {
	var out []*models.File
	for _, id := range ids {
		if file, ok := f.files[id]; ok {
			out = append(out, file)
		}
	}
	return out, nil
}

func (f *fakeDrive) FilesByFolder(userID, folderID uint) ([]*models.File, error) {
	var out []*models.File
	for _, file := range f.files {
		if file.UserID == userID && file.FolderID == folderID {
			out = append(out, file)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeDrive) FolderByID(id uint) (*models.Folder, error) {
	if f.folderErr != nil {
		return nil, f.folderErr
	}
	folder, ok := f.folders[id]
	if !ok {
		return nil, errNotFound
	}
	return folder, nil
}

func (f *fakeDrive) FoldersByParent(userID, parentID uint) ([]*models.Folder, error) {
	var out []*models.Folder
	for _, folder := range f.folders {
		if folder.UserID == userID && folder.ParentID == parentID {
			out = append(out, folder)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type fakeRag struct {
	lastReq  *rag.ChatRequest
	resp     *rag.ChatResponse
	err      error
	cleared  []uint
	clearErr error
}

func (f *fakeRag) Chat(ctx context.Context, req *rag.ChatRequest) (*rag.ChatResponse, error) {
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

func (f *fakeRag) ClearConversation(ctx context.Context, sessionID uint) error {
	f.cleared = append(f.cleared, sessionID)
	return f.clearErr
}

type chatFixture struct {
	svc      *Service
	sessions *fakeSessionStore
	messages *fakeMessageStore
	drive    *fakeDrive
	rag      *fakeRag
}

func newChatFixture() *chatFixture {
	f := &chatFixture{
		sessions: newFakeSessionStore(),
		messages: &fakeMessageStore{},
		drive:    newFakeDrive(),
		rag:      &fakeRag{resp: &rag.ChatResponse{Answer: "好的"}},
	}
	f.svc = NewService(f.sessions, f.messages, f.drive, f.drive, f.rag)
	return f
}

func (f *chatFixture) newSession(t *testing.T, userID uint) *models.ChatSession {
	t.Helper()
	session, err := f.svc.CreateSession(userID, "测试会话")
	require.NoError(t, err)
	return session
}

func TestCreateSession(t *testing.T) {
	f := newChatFixture()

	session, err := f.svc.CreateSession(1, "  我的会话  ")
	require.NoError(t, err)
	assert.Equal(t, "我的会话", session.Name)
	assert.NotZero(t, session.ID)

	_, err = f.svc.CreateSession(1, "   ")
	assert.ErrorIs(t, err, ErrBlankName)
}

func TestRenameSessionChecksOwnership(t *testing.T) {
	f := newChatFixture()
	session := f.newSession(t, 1)

	_, err := f.svc.RenameSession(session.ID, 2, "新名字")
	assert.ErrorIs(t, err, ErrSessionAccess)

	renamed, err := f.svc.RenameSession(session.ID, 1, "新名字")
	require.NoError(t, err)
	assert.Equal(t, "新名字", renamed.Name)
}

func TestMessageHistoryChecksOwnership(t *testing.T) {
	f := newChatFixture()
	session := f.newSession(t, 1)

	_, err := f.svc.MessageHistory(session.ID, 2)
	assert.ErrorIs(t, err, ErrSessionAccess)

	_, err = f.svc.MessageHistory(999, 1)
	assert.ErrorIs(t, err, ErrSessionAccess)
}

func TestMessageChecksOwnership(t *testing.T) {
	f := newChatFixture()
	session := f.newSession(t, 1)

	_, err := f.svc.SendMessage(context.Background(), session.ID, 1, "你好", nil, nil)
	require.NoError(t, err)

	_, err = f.svc.Message(1, 2)
	assert.ErrorIs(t, err, ErrMessageAccess)

	msg, err := f.svc.Message(1, 1)
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, msg.Role)
}

func TestClearSessionHistory(t *testing.T) {
	f := newChatFixture()
	session := f.newSession(t, 1)

	_, err := f.svc.SendMessage(context.Background(), session.ID, 1, "你好", nil, nil)
	require.NoError(t, err)
	require.Len(t, f.messages.messages, 2)

	// The remote clear call failing must not fail the local clear.
	f.rag.clearErr = errors.New("boom")
	require.NoError(t, f.svc.ClearSessionHistory(context.Background(), session.ID, 1))
	assert.Empty(t, f.messages.messages)
	assert.Equal(t, []uint{session.ID}, f.rag.cleared)
}

func TestDeleteSessionChecksOwnership(t *testing.T) {
	f := newChatFixture()
	session := f.newSession(t, 1)

	assert.ErrorIs(t, f.svc.DeleteSession(session.ID, 2), ErrSessionAccess)
	require.NoError(t, f.svc.DeleteSession(session.ID, 1))

	_, err := f.sessions.SessionByID(session.ID)
	assert.Error(t, err)
}
