package service

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"zhipan/internal/rag"
)

// PreviewDocumentPaths 以只读方式执行文档路径解析，供调试接口使用。
func (s *Service) PreviewDocumentPaths(userID uint, fileIDs, folderIDs []uint) ([]string, error) {
	paths, err := s.resolveDocumentPaths(userID, fileIDs, folderIDs)
	if err != nil {
		return nil, err
	}
	return []string(paths), nil
}

// resolveDocumentPaths 把文件/文件夹 ID 解析为传给 RAG 服务的文档路径。
// 两者都为空时返回代表整个用户语料的合成路径 user_<id>；指定的文件逐条
// 校验归属（他人的文件静默丢弃）；文件夹递归展开为其下所有文件的存储路径。
func (s *Service) resolveDocumentPaths(userID uint, fileIDs, folderIDs []uint) (rag.DocPath, error) {
	if len(fileIDs) == 0 && len(folderIDs) == 0 {
		return rag.DocPath{fmt.Sprintf("user_%d", userID)}, nil
	}

	var paths rag.DocPath

	if len(fileIDs) > 0 {
		files, err := s.files.FilesByIDs(fileIDs)
		if err != nil {
			return nil, err
		}
		for _, file := range files {
			if file.UserID == userID {
				paths = append(paths, file.Path)
			}
		}
	}

	for _, folderID := range folderIDs {
		folderPaths, err := s.collectFolderPaths(userID, folderID)
		if err != nil {
			return nil, err
		}
		paths = append(paths, folderPaths...)
	}

	return paths, nil
}

// collectFolderPaths 递归收集文件夹下所有文件的存储路径。
// 不存在或不属于该用户的文件夹被跳过并记录警告，不作为错误处理；
// 其余存储层错误原样上抛，避免悄悄缩小检索范围。
func (s *Service) collectFolderPaths(userID, folderID uint) ([]string, error) {
	folder, err := s.folders.FolderByID(folderID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		s.log.WithUser(userID).Warnf("文件夹不存在或无权限访问，folderId: %d", folderID)
		return nil, nil
	}
	if folder.UserID != userID {
		s.log.WithUser(userID).Warnf("文件夹不存在或无权限访问，folderId: %d", folderID)
		return nil, nil
	}

	var paths []string

	files, err := s.files.FilesByFolder(userID, folderID)
	if err != nil {
		return nil, err
	}
	for _, file := range files {
		paths = append(paths, file.Path)
	}

	children, err := s.folders.FoldersByParent(userID, folderID)
	if err != nil {
		return nil, err
	}
	for _, child := range children {
		sub, err := s.collectFolderPaths(userID, child.ID)
		if err != nil {
			return nil, err
		}
		paths = append(paths, sub...)
	}

	return paths, nil
}
