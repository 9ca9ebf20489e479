package service

import (
	"context"
	"os"
	"strings"

	"zhipan/internal/models"
)

// CreateFolder 在 parentID 下为用户创建一个文件夹。parentID 为 0 表示根目录。
// 同级允许重名。
func (s *Service) CreateFolder(ctx context.Context, userID, parentID uint, name string) (*models.Folder, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	if parentID != 0 {
		if _, err := s.validateFolderOwnership(userID, parentID); err != nil {
			return nil, err
		}
	}

	folder := &models.Folder{
		UserID:   userID,
		ParentID: parentID,
		Name:     strings.TrimSpace(name),
	}
	if err := s.folders.CreateFolder(folder); err != nil {
		return nil, err
	}

	s.invalidateTree(ctx, userID)
	return folder, nil
}

// FolderTree 返回用户的完整文件夹树。根文件夹按 parentID=0 加载，
// 子节点逐层递归查询（每个节点一次查询，已知的规模上限，靠缓存缓解）。
func (s *Service) FolderTree(ctx context.Context, userID uint) ([]*models.Folder, error) {
	if s.cache != nil {
		if tree, ok := s.cache.Get(ctx, userID); ok {
			return tree, nil
		}
	}

	roots, err := s.folders.FoldersByParent(userID, 0)
	if err != nil {
		return nil, err
	}
	for _, root := range roots {
		if err := s.attachChildren(userID, root); err != nil {
			return nil, err
		}
	}

	if s.cache != nil {
		s.cache.Set(ctx, userID, roots)
	}
	return roots, nil
}

func (s *Service) attachChildren(userID uint, folder *models.Folder) error {
	children, err := s.folders.FoldersByParent(userID, folder.ID)
	if err != nil {
		return err
	}
	for _, child := range children {
		if err := s.attachChildren(userID, child); err != nil {
			return err
		}
	}
	folder.Children = children
	return nil
}

// FolderContents 返回文件夹的直接子文件夹和文件。folderID 为 0 表示
// 虚拟根目录，不做归属校验。
func (s *Service) FolderContents(ctx context.Context, userID, folderID uint) ([]*models.Folder, []*models.File, error) {
	if folderID != 0 {
		if _, err := s.validateFolderOwnership(userID, folderID); err != nil {
			return nil, nil, err
		}
	}

	folders, err := s.folders.FoldersByParent(userID, folderID)
	if err != nil {
		return nil, nil, err
	}
	files, err := s.files.FilesByFolder(userID, folderID)
	if err != nil {
		return nil, nil, err
	}
	return folders, files, nil
}

// RenameFolder 重命名文件夹。
func (s *Service) RenameFolder(ctx context.Context, userID, folderID uint, newName string) (*models.Folder, error) {
	if err := validateName(newName); err != nil {
		return nil, err
	}
	folder, err := s.validateFolderOwnership(userID, folderID)
	if err != nil {
		return nil, err
	}

	folder.Name = strings.TrimSpace(newName)
	if err := s.folders.UpdateFolder(folder); err != nil {
		return nil, err
	}

	s.invalidateTree(ctx, userID)
	return folder, nil
}

// MoveFolder 将文件夹移动到新的父文件夹下。禁止移动到自身或其任何
// 子孙文件夹中，否则树会成环。
func (s *Service) MoveFolder(ctx context.Context, userID, folderID, targetParentID uint) (*models.Folder, error) {
	folder, err := s.validateFolderOwnership(userID, folderID)
	if err != nil {
		return nil, err
	}
	if targetParentID != 0 {
		if _, err := s.validateFolderOwnership(userID, targetParentID); err != nil {
			return nil, err
		}
	}

	if targetParentID == folderID {
		return nil, ErrMoveIntoSelf
	}
	if targetParentID != 0 {
		descendants, err := s.collectSubFolderIDs(userID, folderID)
		if err != nil {
			return nil, err
		}
		for _, id := range descendants {
			if id == targetParentID {
				return nil, ErrMoveIntoSelf
			}
		}
	}

	folder.ParentID = targetParentID
	if err := s.folders.UpdateFolder(folder); err != nil {
		return nil, err
	}

	s.invalidateTree(ctx, userID)
	return folder, nil
}

// DeleteFolderWithContents 递归删除文件夹：先收集全部子孙文件夹，
// 批量删除其中的文件记录，再删除文件夹记录。物理文件按条尽力删除，
// 失败只记日志不回滚（数据库为准，磁盘清理是尽力而为）。
func (s *Service) DeleteFolderWithContents(ctx context.Context, userID, folderID uint) error {
	if _, err := s.validateFolderOwnership(userID, folderID); err != nil {
		return err
	}

	subIDs, err := s.collectSubFolderIDs(userID, folderID)
	if err != nil {
		return err
	}
	allIDs := append(subIDs, folderID)

	// 删除行之前先取出物理路径，用于随后的磁盘清理。
	doomed, err := s.files.FilesInFolders(userID, allIDs)
	if err != nil {
		return err
	}

	if err := s.files.DeleteFilesInFolders(userID, allIDs); err != nil {
		return err
	}
	if err := s.folders.DeleteFolders(allIDs); err != nil {
		return err
	}

	for _, file := range doomed {
		if err := os.Remove(file.Path); err != nil && !os.IsNotExist(err) {
			s.log.WithUser(userID).Warnf("物理文件删除失败: %s: %v", file.Path, err)
		}
	}

	s.invalidateTree(ctx, userID)
	s.notifyRebuild(userID)
	return nil
}

// collectSubFolderIDs 深度优先收集 folderID 下所有子孙文件夹的 ID。
func (s *Service) collectSubFolderIDs(userID, folderID uint) ([]uint, error) {
	var result []uint
	children, err := s.folders.FoldersByParent(userID, folderID)
	if err != nil {
		return nil, err
	}
	for _, child := range children {
		result = append(result, child.ID)
		sub, err := s.collectSubFolderIDs(userID, child.ID)
		if err != nil {
			return nil, err
		}
		result = append(result, sub...)
	}
	return result, nil
}

// validateFolderOwnership 校验文件夹存在且属于该用户。
func (s *Service) validateFolderOwnership(userID, folderID uint) (*models.Folder, error) {
	folder, err := s.folders.FolderByID(folderID)
	if err != nil || folder.UserID != userID {
		return nil, ErrFolderAccess
	}
	return folder, nil
}
