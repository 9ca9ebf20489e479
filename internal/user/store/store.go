package store

import (
	"zhipan/internal/models"

	"gorm.io/gorm"
)

// Store 封装了所有与用户相关的数据库操作。
type Store struct {
	DB *gorm.DB
}

// NewStore 创建一个新的 Store 实例。
func NewStore(db *gorm.DB) *Store {
	return &Store{DB: db}
}

// CreateUser 在数据库中创建一个新用户。
func (s *Store) CreateUser(user *models.User) error {
	return s.DB.Create(user).Error
}

// UserByUsername 通过用户名查找用户。
func (s *Store) UserByUsername(username string) (*models.User, error) {
	var user models.User
	if err := s.DB.Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// UserByID 通过 ID 查找用户。
func (s *Store) UserByID(id uint) (*models.User, error) {
	var user models.User
	if err := s.DB.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateAvatar 更新用户的头像地址。
func (s *Store) UpdateAvatar(userID uint, avatarURL string) error {
	return s.DB.Model(&models.User{}).Where("id = ?", userID).
		Update("avatar_url", avatarURL).Error
}

// UpdatePassword 更新用户的密码哈希。
func (s *Store) UpdatePassword(userID uint, passwordHash string) error {
	return s.DB.Model(&models.User{}).Where("id = ?", userID).
		Update("password", passwordHash).Error
}
