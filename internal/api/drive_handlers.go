package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	driveservice "zhipan/internal/drive/service"
)

// DriveHandler 负责文件与文件夹相关的 HTTP 接口。
type DriveHandler struct {
	drive *driveservice.Service
}

func NewDriveHandler(drive *driveservice.Service) *DriveHandler {
	return &DriveHandler{drive: drive}
}

// pathID 解析路径参数中的数值 ID。
func pathID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		failMsg(c, http.StatusBadRequest, "无效的 "+name+" 参数")
		return 0, false
	}
	return uint(id), true
}

type createFolderRequest struct {
	ParentID   uint   `json:"parentId"`
	FolderName string `json:"folderName" binding:"required"`
}

// CreateFolder 处理 POST /api/v1/folders。
func (h *DriveHandler) CreateFolder(c *gin.Context) {
	var req createFolderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failMsg(c, http.StatusBadRequest, "无效的请求参数: "+err.Error())
		return
	}

	folder, err := h.drive.CreateFolder(c.Request.Context(), currentUserID(c), req.ParentID, req.FolderName)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, folder)
}

// FolderTree 处理 GET /api/v1/folders/tree。
func (h *DriveHandler) FolderTree(c *gin.Context) {
	tree, err := h.drive.FolderTree(c.Request.Context(), currentUserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, tree)
}

// FolderContents 处理 GET /api/v1/folders/:folderId/contents，folderId 为 0
// 时表示虚拟根目录。
func (h *DriveHandler) FolderContents(c *gin.Context) {
	folderID, valid := pathID(c, "folderId")
	if !valid {
		return
	}

	folders, files, err := h.drive.FolderContents(c.Request.Context(), currentUserID(c), folderID)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"folders": folders, "files": files})
}

type renameRequest struct {
	NewName string `json:"newName" binding:"required"`
}

// RenameFolder 处理 PATCH /api/v1/folders/:folderId/name。
func (h *DriveHandler) RenameFolder(c *gin.Context) {
	folderID, valid := pathID(c, "folderId")
	if !valid {
		return
	}
	var req renameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failMsg(c, http.StatusBadRequest, "无效的请求参数: "+err.Error())
		return
	}

	folder, err := h.drive.RenameFolder(c.Request.Context(), currentUserID(c), folderID, req.NewName)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, folder)
}

type moveFolderRequest struct {
	TargetParentID uint `json:"targetParentId"`
}

// MoveFolder 处理 PATCH /api/v1/folders/:folderId/parent。
func (h *DriveHandler) MoveFolder(c *gin.Context) {
	folderID, valid := pathID(c, "folderId")
	if !valid {
		return
	}
	var req moveFolderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failMsg(c, http.StatusBadRequest, "无效的请求参数: "+err.Error())
		return
	}

	folder, err := h.drive.MoveFolder(c.Request.Context(), currentUserID(c), folderID, req.TargetParentID)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, folder)
}

// DeleteFolder 处理 DELETE /api/v1/folders/:folderId，连同子文件夹与文件
// 一起删除。
func (h *DriveHandler) DeleteFolder(c *gin.Context) {
	folderID, valid := pathID(c, "folderId")
	if !valid {
		return
	}

	if err := h.drive.DeleteFolderWithContents(c.Request.Context(), currentUserID(c), folderID); err != nil {
		fail(c, err)
		return
	}
	ok(c, nil)
}

// UploadFile 处理 POST /api/v1/files，multipart 表单字段：file 与 folderId。
func (h *DriveHandler) UploadFile(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		failMsg(c, http.StatusBadRequest, "未找到上传的文件")
		return
	}
	folderID, err := strconv.ParseUint(c.PostForm("folderId"), 10, 64)
	if err != nil {
		failMsg(c, http.StatusBadRequest, "无效的 folderId 参数")
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		failMsg(c, http.StatusBadRequest, "无法读取上传的文件")
		return
	}
	defer src.Close()

	file, err := h.drive.UploadFile(c.Request.Context(), currentUserID(c), uint(folderID),
		fileHeader.Filename, src, fileHeader.Header.Get("Content-Type"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, file)
}

type createTextFileRequest struct {
	FolderID uint   `json:"folderId"`
	FileName string `json:"fileName" binding:"required"`
	Content  string `json:"content"`
}

// CreateTextFile 处理 POST /api/v1/files/text。
func (h *DriveHandler) CreateTextFile(c *gin.Context) {
	var req createTextFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failMsg(c, http.StatusBadRequest, "无效的请求参数: "+err.Error())
		return
	}

	file, err := h.drive.CreateTextFile(c.Request.Context(), currentUserID(c), req.FolderID, req.FileName, req.Content)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, file)
}

// FileContent 处理 GET /api/v1/files/:fileId/content，仅支持文本文件。
func (h *DriveHandler) FileContent(c *gin.Context) {
	fileID, valid := pathID(c, "fileId")
	if !valid {
		return
	}

	content, err := h.drive.FileContent(currentUserID(c), fileID)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"content": content})
}

// FileMetadata 处理 GET /api/v1/files/:fileId。
func (h *DriveHandler) FileMetadata(c *gin.Context) {
	fileID, valid := pathID(c, "fileId")
	if !valid {
		return
	}

	file, err := h.drive.FileMetadata(currentUserID(c), fileID)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, file)
}

// DownloadFile 处理 GET /api/v1/files/:fileId/download。
func (h *DriveHandler) DownloadFile(c *gin.Context) {
	fileID, valid := pathID(c, "fileId")
	if !valid {
		return
	}

	file, err := h.drive.DownloadFile(currentUserID(c), fileID)
	if err != nil {
		fail(c, err)
		return
	}
	c.FileAttachment(file.Path, file.Name)
}

// RenameFile 处理 PATCH /api/v1/files/:fileId/name，扩展名保持不变。
func (h *DriveHandler) RenameFile(c *gin.Context) {
	fileID, valid := pathID(c, "fileId")
	if !valid {
		return
	}
	var req renameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failMsg(c, http.StatusBadRequest, "无效的请求参数: "+err.Error())
		return
	}

	file, err := h.drive.RenameFile(c.Request.Context(), currentUserID(c), fileID, req.NewName)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, file)
}

type moveFileRequest struct {
	TargetFolderID uint `json:"targetFolderId"` // 0 表示根目录
}

// MoveFile 处理 PATCH /api/v1/files/:fileId/folder。
func (h *DriveHandler) MoveFile(c *gin.Context) {
	fileID, valid := pathID(c, "fileId")
	if !valid {
		return
	}
	var req moveFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failMsg(c, http.StatusBadRequest, "无效的请求参数: "+err.Error())
		return
	}

	file, err := h.drive.MoveFile(c.Request.Context(), currentUserID(c), fileID, req.TargetFolderID)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, file)
}

// DeleteFile 处理 DELETE /api/v1/files/:fileId。
func (h *DriveHandler) DeleteFile(c *gin.Context) {
	fileID, valid := pathID(c, "fileId")
	if !valid {
		return
	}

	if err := h.drive.DeleteFile(c.Request.Context(), currentUserID(c), fileID); err != nil {
		fail(c, err)
		return
	}
	ok(c, nil)
}

// SearchFiles 处理 GET /api/v1/files/search?pattern=*.pdf。
func (h *DriveHandler) SearchFiles(c *gin.Context) {
	pattern := c.Query("pattern")
	if pattern == "" {
		failMsg(c, http.StatusBadRequest, "缺少 pattern 参数")
		return
	}

	files, err := h.drive.SearchFiles(currentUserID(c), pattern)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, files)
}
