package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	chatservice "zhipan/internal/chat/service"
	driveservice "zhipan/internal/drive/service"
	"zhipan/internal/rag"
	userservice "zhipan/internal/user/service"
)

// Response 是统一的成功/失败响应信封。code 为 0 表示成功，1 表示失败。
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ok 返回成功信封。
func ok(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{Code: 0, Message: "操作成功", Data: data})
}

// fail 返回失败信封，HTTP 状态码根据错误类型选取：校验错误 400，
// 归属/不存在（已折叠）404，其余 500。
func fail(c *gin.Context, err error) {
	c.JSON(statusFor(err), Response{Code: 1, Message: err.Error()})
}

// failMsg 以给定状态码返回失败信封。
func failMsg(c *gin.Context, status int, message string) {
	c.JSON(status, Response{Code: 1, Message: message})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, driveservice.ErrFolderAccess),
		errors.Is(err, driveservice.ErrFileAccess),
		errors.Is(err, driveservice.ErrBlobMissing),
		errors.Is(err, chatservice.ErrSessionAccess),
		errors.Is(err, chatservice.ErrMessageAccess),
		errors.Is(err, userservice.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, driveservice.ErrBlankName),
		errors.Is(err, driveservice.ErrInvalidName),
		errors.Is(err, driveservice.ErrMoveIntoSelf),
		errors.Is(err, driveservice.ErrNotTextFile),
		errors.Is(err, chatservice.ErrBlankMessage),
		errors.Is(err, chatservice.ErrBlankName),
		errors.Is(err, userservice.ErrUsernameTaken),
		errors.Is(err, userservice.ErrWrongPassword),
		errors.Is(err, userservice.ErrAvatarTooLarge),
		errors.Is(err, userservice.ErrAvatarNotImage):
		return http.StatusBadRequest
	case errors.Is(err, userservice.ErrInvalidLogin):
		return http.StatusUnauthorized
	case errors.Is(err, rag.ErrDisabled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
