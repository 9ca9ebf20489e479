package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	userservice "zhipan/internal/user/service"
)

// UserHandler 负责用户相关的 HTTP 接口。
type UserHandler struct {
	users *userservice.Service
}

func NewUserHandler(users *userservice.Service) *UserHandler {
	return &UserHandler{users: users}
}

type registerRequest struct {
	Username string `json:"username" binding:"required,min=3"`
	Password string `json:"password" binding:"required,min=6"`
}

// Register 处理 POST /api/v1/users/register。
func (h *UserHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failMsg(c, http.StatusBadRequest, "无效的请求参数: "+err.Error())
		return
	}

	user, err := h.users.Register(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, user)
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login 处理 POST /api/v1/users/login，成功时返回 JWT。
func (h *UserHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failMsg(c, http.StatusBadRequest, "无效的请求参数: "+err.Error())
		return
	}

	token, err := h.users.Login(req.Username, req.Password)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"token": token})
}

// Me 处理 GET /api/v1/users/me。
func (h *UserHandler) Me(c *gin.Context) {
	user, err := h.users.UserInfo(currentUserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, user)
}

type updatePasswordRequest struct {
	OldPassword string `json:"oldPassword" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,min=6"`
}

// UpdatePassword 处理 PATCH /api/v1/users/password。
func (h *UserHandler) UpdatePassword(c *gin.Context) {
	var req updatePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failMsg(c, http.StatusBadRequest, "无效的请求参数: "+err.Error())
		return
	}

	if err := h.users.UpdatePassword(currentUserID(c), req.OldPassword, req.NewPassword); err != nil {
		fail(c, err)
		return
	}
	ok(c, nil)
}

// UploadAvatar 处理 POST /api/v1/users/avatar，表单字段名为 avatar。
func (h *UserHandler) UploadAvatar(c *gin.Context) {
	fileHeader, err := c.FormFile("avatar")
	if err != nil {
		failMsg(c, http.StatusBadRequest, "未找到上传的头像文件")
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		failMsg(c, http.StatusBadRequest, "无法读取上传的头像文件")
		return
	}
	defer src.Close()

	url, err := h.users.UpdateAvatar(c.Request.Context(), currentUserID(c),
		fileHeader.Filename, fileHeader.Header.Get("Content-Type"), src, fileHeader.Size)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"avatarUrl": url})
}
