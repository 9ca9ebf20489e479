package models

import "time"

// User 代表系统中的一个用户账户。
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"uniqueIndex;not null;size:255" json:"username"`
	Password  string    `gorm:"not null;size:255" json:"-"` // 存储哈希后的密码，json中忽略
	SecretKey string    `gorm:"size:64" json:"-"`           // 用户密钥，注册时生成
	AvatarURL string    `gorm:"size:1024" json:"avatarUrl"` // 用户头像地址
	CreatedAt time.Time `json:"createTime"`
	UpdatedAt time.Time `json:"updateTime"`
}

func (User) TableName() string {
	return "users"
}
