// Package entity 定义领域实体
package entity

import (
	"time"

	"github.com/google/uuid"
)

// Chapter 章节实体
// 按 (book_id, chapter_number) 唯一；重新生成就地覆盖内容，不做版本化。
type Chapter struct {
	ID            string       `json:"id" gorm:"type:uuid;primaryKey"`
	BookID        string       `json:"book_id" gorm:"type:uuid;uniqueIndex:idx_book_chapter;not null"`
	ChapterNumber int          `json:"chapter_number" gorm:"uniqueIndex:idx_book_chapter;not null"`
	Title         string       `json:"title" gorm:"type:varchar(255)"`
	Content       string       `json:"content" gorm:"type:text"`
	NotesStatus   ReviewStatus `json:"notes_status" gorm:"type:varchar(32);index;default:''"`
	Notes         string       `json:"notes" gorm:"type:text"`
	WordCount     int          `json:"word_count" gorm:"default:0"`
	CreatedAt     time.Time    `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt     time.Time    `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName 指定表名
func (Chapter) TableName() string {
	return "chapters"
}

// NewChapter 创建章节记录，初始状态为待审核
func NewChapter(bookID string, chapterNumber int, title, content string) *Chapter {
	now := time.Now()
	c := &Chapter{
		ID:            uuid.NewString(),
		BookID:        bookID,
		ChapterNumber: chapterNumber,
		Title:         title,
		NotesStatus:   ReviewStatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	c.SetContent(content)
	return c
}

// SetContent 设置章节内容并更新字数
func (c *Chapter) SetContent(content string) {
	c.Content = content
	c.WordCount = len([]rune(content))
	c.UpdatedAt = time.Now()
}

// ReadyForCompile 审核状态是否允许编译（已批准或待审核）
func (c *Chapter) ReadyForCompile() bool {
	return c.NotesStatus == ReviewStatusApproved || c.NotesStatus == ReviewStatusPending
}
