package service

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zhipan/internal/models"
)

func TestResolveDocumentPathsDefaultsToUserCorpus(t *testing.T) {
	f := newChatFixture()

	paths, err := f.svc.PreviewDocumentPaths(7, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"user_7"}, paths)
}

func TestResolveDocumentPathsFiltersForeignFiles(t *testing.T) {
	f := newChatFixture()
	f.drive.files[1] = &models.File{ID: 1, UserID: 1, Path: "/data/mine.pdf"}
	f.drive.files[2] = &models.File{ID: 2, UserID: 2, Path: "/data/theirs.pdf"}

	paths, err := f.svc.PreviewDocumentPaths(1, []uint{1, 2}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"/data/mine.pdf"}, paths)
}

func TestResolveDocumentPathsExpandsFoldersRecursively(t *testing.T) {
	f := newChatFixture()
	f.drive.folders[10] = &models.Folder{ID: 10, UserID: 1, ParentID: 0, Name: "root"}
	f.drive.folders[11] = &models.Folder{ID: 11, UserID: 1, ParentID: 10, Name: "sub"}
	f.drive.files[1] = &models.File{ID: 1, UserID: 1, FolderID: 10, Path: "/data/a.txt"}
	f.drive.files[2] = &models.File{ID: 2, UserID: 1, FolderID: 11, Path: "/data/b.txt"}

	paths, err := f.svc.PreviewDocumentPaths(1, nil, []uint{10})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"/data/a.txt", "/data/b.txt"}, paths)
}

func TestResolveDocumentPathsSkipsForeignFolders(t *testing.T) {
	f := newChatFixture()
	f.drive.folders[10] = &models.Folder{ID: 10, UserID: 2, ParentID: 0, Name: "theirs"}
	f.drive.files[1] = &models.File{ID: 1, UserID: 2, FolderID: 10, Path: "/data/theirs.txt"}

	// A foreign folder is skipped silently, leaving the selection empty.
	paths, err := f.svc.PreviewDocumentPaths(1, nil, []uint{10, 999})
	require.NoError(t, err)
	assert.Empty(t, paths)
}

func TestResolveDocumentPathsPropagatesStoreErrors(t *testing.T) {
	f := newChatFixture()
	f.drive.folderErr = errors.New("connection refused")

	// Only "record not found" is a silent skip; real store failures surface.
	_, err := f.svc.PreviewDocumentPaths(1, nil, []uint{10})
	assert.EqualError(t, err, "connection refused")
}

func TestResolveDocumentPathsMixedSelection(t *testing.T) {
	f := newChatFixture()
	f.drive.folders[10] = &models.Folder{ID: 10, UserID: 1, ParentID: 0, Name: "docs"}
	f.drive.files[1] = &models.File{ID: 1, UserID: 1, FolderID: 0, Path: "/data/loose.txt"}
	f.drive.files[2] = &models.File{ID: 2, UserID: 1, FolderID: 10, Path: "/data/in-folder.txt"}

	paths, err := f.svc.PreviewDocumentPaths(1, []uint{1}, []uint{10})
	require.NoError(t, err)
	assert.Equal(t, []string{"/data/loose.txt", "/data/in-folder.txt"}, paths)
}
