// Package entity 定义领域实体
package entity

import (
	"time"

	"github.com/google/uuid"
)

// ChapterSummary 章节摘要实体
// 与章节 1:1，是后续章节生成时的上下文来源；章节重生成时就地更新。
type ChapterSummary struct {
	ID          string    `json:"id" gorm:"type:uuid;primaryKey"`
	ChapterID   string    `json:"chapter_id" gorm:"type:uuid;uniqueIndex;not null"`
	BookID      string    `json:"book_id" gorm:"type:uuid;index;not null"`
	SummaryText string    `json:"summary_text" gorm:"type:text"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName 指定表名
func (ChapterSummary) TableName() string {
	return "chapter_summaries"
}

// NewChapterSummary 创建章节摘要记录
func NewChapterSummary(chapterID, bookID, summaryText string) *ChapterSummary {
	now := time.Now()
	return &ChapterSummary{
		ID:          uuid.NewString(),
		ChapterID:   chapterID,
		BookID:      bookID,
		SummaryText: summaryText,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
