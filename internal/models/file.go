package models

import "time"

// File 代表一条文件元数据记录。物理内容存放在 Path 指向的本地磁盘位置，
// 数据库行与磁盘文件是两份需要保持一致的状态（以数据库为准）。
type File struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"index;not null" json:"userId"`
	FolderID    uint      `gorm:"index;not null;default:0" json:"folderId"`
	Name        string    `gorm:"not null;size:255" json:"fileName"`
	Path        string    `gorm:"not null;size:1024" json:"filePath"`
	ContentType string    `gorm:"size:255" json:"contentType"`
	Size        int64     `json:"size"`
	CreatedAt   time.Time `json:"uploadTime"`
	UpdatedAt   time.Time `json:"updateTime"`
}

func (File) TableName() string {
	return "files"
}
