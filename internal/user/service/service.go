package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"golang.org/x/crypto/bcrypt"

	"zhipan/internal/models"
	"zhipan/pkg/logger"
)

// 对外暴露的错误。登录失败不区分"用户不存在"与"密码错误"。
var (
	ErrUsernameTaken  = errors.New("用户名已被占用")
	ErrInvalidLogin   = errors.New("用户名或密码错误")
	ErrWrongPassword  = errors.New("原密码错误")
	ErrUserNotFound   = errors.New("用户不存在")
	ErrAvatarTooLarge = errors.New("头像文件过大")
	ErrAvatarNotImage = errors.New("头像必须是图片文件")
)

const maxAvatarSize = 5 << 20 // 5 MiB

// UserStore 是用户服务需要的数据访问接口。
type UserStore interface {
	CreateUser(user *models.User) error
	UserByUsername(username string) (*models.User, error)
	UserByID(id uint) (*models.User, error)
	UpdateAvatar(userID uint, avatarURL string) error
	UpdatePassword(userID uint, passwordHash string) error
}

// RootFolderCreator 在注册成功后为用户创建根文件夹。
type RootFolderCreator interface {
	CreateFolder(ctx context.Context, userID, parentID uint, name string) (*models.Folder, error)
}

// ObjectUploader 是头像上传需要的对象存储接口，由 *minio.Client 满足。
type ObjectUploader interface {
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader,
		objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

// AvatarConfig 描述头像对象存储的位置。
type AvatarConfig struct {
	Bucket    string // 存储桶名称
	PublicURL string // 对外可访问的基础地址，例如 "http://localhost:9000"
}

// Service 封装了用户注册、登录与资料维护的业务逻辑。
type Service struct {
	store     UserStore
	folders   RootFolderCreator
	avatars   ObjectUploader
	avatarCfg AvatarConfig
	jwtSecret []byte
	tokenTTL  time.Duration
	log       *logger.Logger
}

// NewService 创建一个新的 Service 实例。avatars 可为 nil（禁用头像上传）。
func NewService(store UserStore, folders RootFolderCreator, avatars ObjectUploader,
	avatarCfg AvatarConfig, jwtSecret string, tokenTTLSeconds int) *Service {
	ttl := time.Duration(tokenTTLSeconds) * time.Second
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &Service{
		store:     store,
		folders:   folders,
		avatars:   avatars,
		avatarCfg: avatarCfg,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  ttl,
		log:       logger.New("user_service"),
	}
}

// Register 注册一个新用户，并自动创建其根文件夹 user_<id>。
func (s *Service) Register(ctx context.Context, username, password string) (*models.User, error) {
	if _, err := s.store.UserByUsername(username); err == nil {
		return nil, ErrUsernameTaken
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("密码哈希失败: %w", err)
	}

	user := &models.User{
		Username:  username,
		Password:  string(hashed),
		SecretKey: strings.ReplaceAll(uuid.NewString(), "-", ""),
	}
	if err := s.store.CreateUser(user); err != nil {
		return nil, err
	}

	// 注册成功后自动创建用户的根文件夹。
	rootName := fmt.Sprintf("user_%d", user.ID)
	if _, err := s.folders.CreateFolder(ctx, user.ID, 0, rootName); err != nil {
		s.log.WithUser(user.ID).Errorf("创建用户根文件夹失败: %v", err)
	}

	return user, nil
}

// Login 校验用户名和密码，成功时返回签发的 JWT。
func (s *Service) Login(username, password string) (string, error) {
	user, err := s.store.UserByUsername(username)
	if err != nil {
		return "", ErrInvalidLogin
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", ErrInvalidLogin
	}
	return s.generateJWT(user.ID)
}

// UserInfo 返回用户资料。
func (s *Service) UserInfo(userID uint) (*models.User, error) {
	user, err := s.store.UserByID(userID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// UpdatePassword 校验原密码后更新为新密码。
func (s *Service) UpdatePassword(userID uint, oldPassword, newPassword string) error {
	user, err := s.store.UserByID(userID)
	if err != nil {
		return ErrUserNotFound
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(oldPassword)); err != nil {
		return ErrWrongPassword
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("密码哈希失败: %w", err)
	}
	return s.store.UpdatePassword(userID, string(hashed))
}

// UpdateAvatar 将头像上传到对象存储并把访问地址写回用户记录。
func (s *Service) UpdateAvatar(ctx context.Context, userID uint, filename, contentType string,
	reader io.Reader, size int64) (string, error) {
	if s.avatars == nil {
		return "", errors.New("头像存储未配置")
	}
	if size > maxAvatarSize {
		return "", ErrAvatarTooLarge
	}
	if !strings.HasPrefix(contentType, "image/") {
		return "", ErrAvatarNotImage
	}

	objectName := fmt.Sprintf("avatars/user_%d_%s%s", userID, uuid.NewString(), path.Ext(filename))
	if _, err := s.avatars.PutObject(ctx, s.avatarCfg.Bucket, objectName, reader, size,
		minio.PutObjectOptions{ContentType: contentType}); err != nil {
		return "", fmt.Errorf("上传头像失败: %w", err)
	}

	avatarURL := fmt.Sprintf("%s/%s/%s", s.avatarCfg.PublicURL, s.avatarCfg.Bucket, objectName)
	if err := s.store.UpdateAvatar(userID, avatarURL); err != nil {
		return "", err
	}
	return avatarURL, nil
}

// generateJWT 为指定用户 ID 签发一个新的 JWT。
func (s *Service) generateJWT(userID uint) (string, error) {
	claims := jwt.MapClaims{
		"sub": userID,
		"iss": "zhipan",
		"exp": time.Now().Add(s.tokenTTL).Unix(),
		"iat": time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}
