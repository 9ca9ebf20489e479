package models

import "time"

// Folder 代表用户文件树中的一个文件夹。
// ParentID 为 0 表示位于根目录；文件夹树通过 ParentID 自引用构成。
type Folder struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index;not null" json:"userId"`
	ParentID  uint      `gorm:"index;not null;default:0" json:"parentId"`
	Name      string    `gorm:"not null;size:255" json:"folderName"`
	CreatedAt time.Time `json:"createTime"`
	UpdatedAt time.Time `json:"updateTime"`

	// Children 仅用于树形响应的组装，不落库。
	Children []*Folder `gorm:"-" json:"children,omitempty"`
}

func (Folder) TableName() string {
	return "folders"
}
