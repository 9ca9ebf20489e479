package service

import (
	"context"
	"errors"
	"strings"

	"zhipan/internal/models"
	"zhipan/pkg/logger"
)

// 对外暴露的错误。按照信息隐藏原则，"不存在"与"不属于当前用户"
// 折叠为同一个错误，避免跨租户探测。
var (
	ErrFolderAccess = errors.New("文件夹不存在或权限不足")
	ErrFileAccess   = errors.New("文件不存在或权限不足")
	ErrBlankName    = errors.New("名称不能为空")
	ErrInvalidName  = errors.New("名称不能包含路径分隔符")
	ErrMoveIntoSelf = errors.New("不能将文件夹移动到自身或其子文件夹中")
	ErrNotTextFile  = errors.New("仅支持读取 .txt 文件内容")
	ErrBlobMissing  = errors.New("文件不存在于存储系统")
)

// FolderStore 是文件夹相关的数据访问接口。
type FolderStore interface {
	CreateFolder(folder *models.Folder) error
	FolderByID(id uint) (*models.Folder, error)
	FoldersByParent(userID, parentID uint) ([]*models.Folder, error)
	UpdateFolder(folder *models.Folder) error
	DeleteFolders(ids []uint) error
}

// FileStore 是文件元数据相关的数据访问接口。
type FileStore interface {
	CreateFile(file *models.File) error
	FileForUser(userID, fileID uint) (*models.File, error)
	FilesByIDs(ids []uint) ([]*models.File, error)
	FilesByFolder(userID, folderID uint) ([]*models.File, error)
	FilesByUser(userID uint) ([]*models.File, error)
	FilesInFolders(userID uint, folderIDs []uint) ([]*models.File, error)
	DeleteFilesInFolders(userID uint, folderIDs []uint) error
	UpdateFile(file *models.File) error
	DeleteFile(id uint) error
}

// TreeCache 缓存组装好的文件夹树。实现为 Redis，见 store.TreeCache。
type TreeCache interface {
	Get(ctx context.Context, userID uint) ([]*models.Folder, bool)
	Set(ctx context.Context, userID uint, tree []*models.Folder)
	Invalidate(ctx context.Context, userID uint)
}

// RebuildNotifier 在文件变更后触发向量库的异步重建。
type RebuildNotifier interface {
	Enqueue(userID uint)
}

// Service 封装了文件夹与文件管理的业务逻辑。
type Service struct {
	folders     FolderStore
	files       FileStore
	cache       TreeCache       // 可为 nil（禁用缓存）
	rebuilds    RebuildNotifier // 可为 nil（禁用向量库联动）
	storageRoot string
	log         *logger.Logger
}

// NewService 创建一个新的 Service 实例。
func NewService(folders FolderStore, files FileStore, cache TreeCache,
	rebuilds RebuildNotifier, storageRoot string) *Service {
	return &Service{
		folders:     folders,
		files:       files,
		cache:       cache,
		rebuilds:    rebuilds,
		storageRoot: storageRoot,
		log:         logger.New("drive_service"),
	}
}

// validateName 检查展示名称合法：非空白且不含路径分隔符。
func validateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrBlankName
	}
	if strings.ContainsAny(name, `/\`) {
		return ErrInvalidName
	}
	return nil
}

func (s *Service) invalidateTree(ctx context.Context, userID uint) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, userID)
	}
}

func (s *Service) notifyRebuild(userID uint) {
	if s.rebuilds != nil {
		s.rebuilds.Enqueue(userID)
	}
}
