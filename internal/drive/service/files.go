package service

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gobwas/glob"
	"github.com/google/uuid"

	"zhipan/internal/models"
)

// UploadFile 将上传内容写入本地磁盘并插入元数据记录。物理路径为
// <root>/user_<id>/<yyyymmdd>/<uuid>_<原始文件名>。folderID 为 0 表示根目录。
func (s *Service) UploadFile(ctx context.Context, userID, folderID uint, name string,
	reader io.Reader, declaredType string) (*models.File, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	if folderID != 0 {
		if _, err := s.validateFolderOwnership(userID, folderID); err != nil {
			return nil, err
		}
	}

	dir, err := s.storageDir(userID)
	if err != nil {
		return nil, err
	}
	target := filepath.Join(dir, uuid.NewString()+"_"+name)

	size, err := writeBlob(target, reader)
	if err != nil {
		return nil, fmt.Errorf("保存文件失败: %w", err)
	}

	contentType := declaredType
	if contentType == "" {
		if mt, err := mimetype.DetectFile(target); err == nil {
			contentType = mt.String()
		}
	}

	file := &models.File{
		UserID:      userID,
		FolderID:    folderID,
		Name:        name,
		Path:        target,
		ContentType: contentType,
		Size:        size,
	}
	if err := s.files.CreateFile(file); err != nil {
		return nil, err
	}

	s.log.WithUser(userID).Infof("文件保存成功: %s", target)
	s.notifyRebuild(userID)
	return file, nil
}

// CreateTextFile 创建一个文本文件，文件名自动补全 .txt 后缀。
func (s *Service) CreateTextFile(ctx context.Context, userID, folderID uint, name, content string) (*models.File, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	if !strings.HasSuffix(name, ".txt") {
		name += ".txt"
	}
	return s.UploadFile(ctx, userID, folderID, name, strings.NewReader(content), "text/plain; charset=utf-8")
}

// FileContent 读取文本文件的内容，仅支持 .txt 文件。
func (s *Service) FileContent(userID, fileID uint) (string, error) {
	file, err := s.validateFileOwnership(userID, fileID)
	if err != nil {
		return "", err
	}
	if !strings.HasSuffix(strings.ToLower(file.Name), ".txt") {
		return "", ErrNotTextFile
	}

	data, err := os.ReadFile(file.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrBlobMissing
		}
		return "", err
	}
	return string(data), nil
}

// RenameFile 重命名文件。无论新名称如何，原扩展名都被保留：
// 将 a.pdf 改名为 b 得到 b.pdf。
func (s *Service) RenameFile(ctx context.Context, userID, fileID uint, newName string) (*models.File, error) {
	if err := validateName(newName); err != nil {
		return nil, err
	}
	file, err := s.validateFileOwnership(userID, fileID)
	if err != nil {
		return nil, err
	}

	file.Name = newName + path.Ext(file.Name)
	if err := s.files.UpdateFile(file); err != nil {
		return nil, err
	}

	s.notifyRebuild(userID)
	return file, nil
}

// MoveFile 将文件移动到另一个文件夹。文件是叶子节点，无需环检查。
func (s *Service) MoveFile(ctx context.Context, userID, fileID, targetFolderID uint) (*models.File, error) {
	file, err := s.validateFileOwnership(userID, fileID)
	if err != nil {
		return nil, err
	}
	if targetFolderID != 0 {
		if _, err := s.validateFolderOwnership(userID, targetFolderID); err != nil {
			return nil, err
		}
	}

	file.FolderID = targetFolderID
	if err := s.files.UpdateFile(file); err != nil {
		return nil, err
	}

	s.notifyRebuild(userID)
	return file, nil
}

// DownloadFile 校验归属并确认物理文件存在，返回元数据供处理层发送。
func (s *Service) DownloadFile(userID, fileID uint) (*models.File, error) {
	file, err := s.validateFileOwnership(userID, fileID)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(file.Path); err != nil {
		return nil, ErrBlobMissing
	}
	return file, nil
}

// FileMetadata 返回文件的元数据。
func (s *Service) FileMetadata(userID, fileID uint) (*models.File, error) {
	return s.validateFileOwnership(userID, fileID)
}

// DeleteFile 先删除数据库记录，再尽力删除物理文件。磁盘删除失败
// 只记日志，不回滚数据库。
func (s *Service) DeleteFile(ctx context.Context, userID, fileID uint) error {
	file, err := s.validateFileOwnership(userID, fileID)
	if err != nil {
		return err
	}

	if err := s.files.DeleteFile(file.ID); err != nil {
		return err
	}
	if err := os.Remove(file.Path); err != nil && !os.IsNotExist(err) {
		s.log.WithUser(userID).Warnf("物理文件删除失败: %s: %v", file.Path, err)
	}

	s.notifyRebuild(userID)
	return nil
}

// SearchFiles 按 glob 模式（不区分大小写）搜索用户的文件名，
// 例如 "*.pdf" 或 "报告*"。
func (s *Service) SearchFiles(userID uint, pattern string) ([]*models.File, error) {
	if strings.TrimSpace(pattern) == "" {
		return nil, ErrBlankName
	}
	g, err := glob.Compile(strings.ToLower(pattern))
	if err != nil {
		return nil, fmt.Errorf("无效的搜索模式: %w", err)
	}

	files, err := s.files.FilesByUser(userID)
	if err != nil {
		return nil, err
	}

	var matched []*models.File
	for _, file := range files {
		if g.Match(strings.ToLower(file.Name)) {
			matched = append(matched, file)
		}
	}
	return matched, nil
}

// validateFileOwnership 校验文件存在且属于该用户。
func (s *Service) validateFileOwnership(userID, fileID uint) (*models.File, error) {
	file, err := s.files.FileForUser(userID, fileID)
	if err != nil {
		return nil, ErrFileAccess
	}
	return file, nil
}

// storageDir 返回并确保当日的存储目录存在。
func (s *Service) storageDir(userID uint) (string, error) {
	dir := filepath.Join(s.storageRoot,
		fmt.Sprintf("user_%d", userID),
		time.Now().Format("20060102"))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("创建存储目录失败: %w", err)
	}
	return dir, nil
}

// writeBlob 将 reader 的内容写入 target，返回写入的字节数。
func writeBlob(target string, reader io.Reader) (int64, error) {
	f, err := os.Create(target)
	if err != nil {
		return 0, err
	}
	size, err := io.Copy(f, reader)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(target)
		return 0, err
	}
	return size, nil
}
