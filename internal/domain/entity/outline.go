// Package entity 定义领域实体
package entity

import (
	"time"

	"github.com/google/uuid"
)

// Outline 大纲实体
// 只追加：重新生成产生新版本记录，历史版本不可变。
type Outline struct {
	ID          string    `json:"id" gorm:"type:uuid;primaryKey"`
	BookID      string    `json:"book_id" gorm:"type:uuid;index;not null"`
	Version     int       `json:"version" gorm:"not null;default:1"`
	OutlineText string    `json:"outline_text" gorm:"type:text"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName 指定表名
func (Outline) TableName() string {
	return "outlines"
}

// NewOutline 创建大纲记录
func NewOutline(bookID, outlineText string, version int) *Outline {
	if version < 1 {
		version = 1
	}
	return &Outline{
		ID:          uuid.NewString(),
		BookID:      bookID,
		Version:     version,
		OutlineText: outlineText,
		CreatedAt:   time.Now(),
	}
}
