package store

import (
	"zhipan/internal/models"

	"gorm.io/gorm"
)

// Store 封装了文件夹与文件元数据的数据库操作。
type Store struct {
	DB *gorm.DB
}

// NewStore 创建一个新的 Store 实例。
func NewStore(db *gorm.DB) *Store {
	return &Store{DB: db}
}

// --- 文件夹 ---

// CreateFolder 插入一条文件夹记录。
func (s *Store) CreateFolder(folder *models.Folder) error {
	return s.DB.Create(folder).Error
}

// FolderByID 通过 ID 查找文件夹。
func (s *Store) FolderByID(id uint) (*models.Folder, error) {
	var folder models.Folder
	if err := s.DB.First(&folder, id).Error; err != nil {
		return nil, err
	}
	return &folder, nil
}

// FoldersByParent 返回某用户在指定父文件夹下的所有直接子文件夹。
func (s *Store) FoldersByParent(userID, parentID uint) ([]*models.Folder, error) {
	var folders []*models.Folder
	if err := s.DB.Where("user_id = ? AND parent_id = ?", userID, parentID).
		Find(&folders).Error; err != nil {
		return nil, err
	}
	return folders, nil
}

// UpdateFolder 保存文件夹的全部字段。
func (s *Store) UpdateFolder(folder *models.Folder) error {
	return s.DB.Save(folder).Error
}

// DeleteFolders 批量删除文件夹记录。
func (s *Store) DeleteFolders(ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	return s.DB.Delete(&models.Folder{}, ids).Error
}

// --- 文件 ---

// CreateFile 插入一条文件元数据记录。
func (s *Store) CreateFile(file *models.File) error {
	return s.DB.Create(file).Error
}

// FileForUser 查找属于指定用户的文件。记录不存在与不属于该用户
// 都返回 gorm.ErrRecordNotFound，由上层折叠为统一的权限错误。
func (s *Store) FileForUser(userID, fileID uint) (*models.File, error) {
	var file models.File
	if err := s.DB.Where("id = ? AND user_id = ?", fileID, userID).
		First(&file).Error; err != nil {
		return nil, err
	}
	return &file, nil
}

// FilesByIDs 批量查找文件记录。
func (s *Store) FilesByIDs(ids []uint) ([]*models.File, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var files []*models.File
	if err := s.DB.Where("id IN ?", ids).Find(&files).Error; err != nil {
		return nil, err
	}
	return files, nil
}

// FilesByFolder 返回某用户在指定文件夹下的所有文件。
func (s *Store) FilesByFolder(userID, folderID uint) ([]*models.File, error) {
	var files []*models.File
	if err := s.DB.Where("user_id = ? AND folder_id = ?", userID, folderID).
		Find(&files).Error; err != nil {
		return nil, err
	}
	return files, nil
}

// FilesByUser 返回某用户的全部文件记录。
func (s *Store) FilesByUser(userID uint) ([]*models.File, error) {
	var files []*models.File
	if err := s.DB.Where("user_id = ?", userID).Find(&files).Error; err != nil {
		return nil, err
	}
	return files, nil
}

// FilesInFolders 返回某用户在一组文件夹中的全部文件记录。
func (s *Store) FilesInFolders(userID uint, folderIDs []uint) ([]*models.File, error) {
	if len(folderIDs) == 0 {
		return nil, nil
	}
	var files []*models.File
	if err := s.DB.Where("user_id = ? AND folder_id IN ?", userID, folderIDs).
		Find(&files).Error; err != nil {
		return nil, err
	}
	return files, nil
}

// DeleteFilesInFolders 删除某用户在一组文件夹中的全部文件记录。
func (s *Store) DeleteFilesInFolders(userID uint, folderIDs []uint) error {
	if len(folderIDs) == 0 {
		return nil
	}
	return s.DB.Where("user_id = ? AND folder_id IN ?", userID, folderIDs).
		Delete(&models.File{}).Error
}

// UpdateFile 保存文件记录的全部字段。
func (s *Store) UpdateFile(file *models.File) error {
	return s.DB.Save(file).Error
}

// DeleteFile 删除一条文件记录。
func (s *Store) DeleteFile(id uint) error {
	return s.DB.Delete(&models.File{}, id).Error
}
