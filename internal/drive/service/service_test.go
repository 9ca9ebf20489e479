package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"zhipan/internal/models"
)

var errNotFound = errors.New("record not found")

type fakeFolderStore struct {
	folders map[uint]*models.Folder
	nextID  uint
}

func newFakeFolderStore() *fakeFolderStore {
	return &fakeFolderStore{folders: make(map[uint]*models.Folder)}
}

func (f *fakeFolderStore) CreateFolder(folder *models.Folder) error {
	f.nextID++
	folder.ID = f.nextID
	f.folders[folder.ID] = folder
	return nil
}

func (f *fakeFolderStore) FolderByID(id uint) (*models.Folder, error) {
	folder, ok := f.folders[id]
	if !ok {
		return nil, errNotFound
	}
	return folder, nil
}

func (f *fakeFolderStore) FoldersByParent(userID, parentID uint) ([]*models.Folder, error) {
	var out []*models.Folder
	for _, folder := range f.folders {
		if folder.UserID == userID && folder.ParentID == parentID {
			out = append(out, folder)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeFolderStore) UpdateFolder(folder *models.Folder) error {
	f.folders[folder.ID] = folder
	return nil
}

func (f *fakeFolderStore) DeleteFolders(ids []uint) error {
	for _, id := range ids {
		delete(f.folders, id)
	}
	return nil
}

type fakeFileStore struct {
	files  map[uint]*models.File
	nextID uint
}

func newFakeFileStore() *fakeFileStore {
	return &fakeFileStore{files: make(map[uint]*models.File)}
}

func (f *fakeFileStore) CreateFile(file *models.File) error {
	f.nextID++
	file.ID = f.nextID
	f.files[file.ID] = file
	return nil
}

func (f *fakeFileStore) FileForUser(userID, fileID uint) (*models.File, error) {
	file, ok := f.files[fileID]
	if !ok || file.UserID != userID {
		return nil, errNotFound
	}
	return file, nil
}

func (f *fakeFileStore) FilesByIDs(ids []uint) ([]*models.File, error) {
	var out []*models.File
	for _, id := range ids {
		if file, ok := f.files[id]; ok {
			out = append(out, file)
		}
	}
	return out, nil
}

func (f *fakeFileStore) FilesByFolder(userID, folderID uint) ([]*models.File, error) {
	var out []*models.File
	for _, file := range f.files {
		if file.UserID == userID && file.FolderID == folderID {
			out = append(out, file)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeFileStore) FilesByUser(userID uint) ([]*models.File, error) {
	var out []*models.File
	for _, file := range f.files {
		if file.UserID == userID {
			out = append(out, file)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeFileStore) FilesInFolders(userID uint, folderIDs []uint) ([]*models.File, error) {
	inSet := make(map[uint]bool, len(folderIDs))
	for _, id := range folderIDs {
		inSet[id] = true
	}
	var out []*models.File
	for _, file := range f.files {
		if file.UserID == userID && inSet[file.FolderID] {
			out = append(out, file)
		}
	}
	return out, nil
}

func (f *fakeFileStore) DeleteFilesInFolders(userID uint, folderIDs []uint) error {
	doomed, _ := f.FilesInFolders(userID, folderIDs)
	for _, file := range doomed {
		delete(f.files, file.ID)
	}
	return nil
}

func (f *fakeFileStore) UpdateFile(file *models.File) error {
	f.files[file.ID] = file
	return nil
}

func (f *fakeFileStore) DeleteFile(id uint) error {
	delete(f.files, id)
	return nil
}

type fakeTreeCache struct {
	mu          sync.Mutex
	trees       map[uint][]*models.Folder
	invalidated int
}

func newFakeTreeCache() *fakeTreeCache {
	return &fakeTreeCache{trees: make(map[uint][]*models.Folder)}
}

func (c *fakeTreeCache) Get(ctx context.Context, userID uint) ([]*models.Folder, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	tree, ok := c.trees[userID]
	return tree, ok
}

func (c *fakeTreeCache) Set(ctx context.Context, userID uint, tree []*models.Folder) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.trees[userID] = tree
}

func (c *fakeTreeCache) Invalidate(ctx context.Context, userID uint) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.trees, userID)
	c.invalidated++
}

type fakeNotifier struct {
	enqueued []uint
}

func (n *fakeNotifier) Enqueue(userID uint) {
	n.enqueued = append(n.enqueued, userID)
}

type driveFixture struct {
	svc      *Service
	folders  *fakeFolderStore
	files    *fakeFileStore
	cache    *fakeTreeCache
	notifier *fakeNotifier
}

func newDriveFixture(t *testing.T) *driveFixture {
	t.Helper()
	f := &driveFixture{
		folders:  newFakeFolderStore(),
		files:    newFakeFileStore(),
		cache:    newFakeTreeCache(),
		notifier: &fakeNotifier{},
	}
	f.svc = NewService(f.folders, f.files, f.cache, f.notifier, t.TempDir())
	return f
}

func (f *driveFixture) mustCreateFolder(t *testing.T, userID, parentID uint, name string) *models.Folder {
	t.Helper()
	folder, err := f.svc.CreateFolder(context.Background(), userID, parentID, name)
	require.NoError(t, err)
	return folder
}
