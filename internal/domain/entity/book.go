// Package entity 定义领域实体
package entity

import (
	"time"

	"github.com/google/uuid"
)

// ReviewStatus 编辑审核状态
// 字符串值是与外部编辑集成（表格/UI）的线上契约，不可更改。
type ReviewStatus string

const (
	ReviewStatusEmpty        ReviewStatus = ""
	ReviewStatusPending      ReviewStatus = "pending"
	ReviewStatusNotesPlanned ReviewStatus = "yes"
	ReviewStatusPaused       ReviewStatus = "no"
	ReviewStatusApproved     ReviewStatus = "no_notes_needed"
)

// IsValid 检查审核状态取值是否合法
func (s ReviewStatus) IsValid() bool {
	switch s {
	case ReviewStatusEmpty, ReviewStatusPending, ReviewStatusNotesPlanned,
		ReviewStatusPaused, ReviewStatusApproved:
		return true
	}
	return false
}

// OutputStatus 成书输出状态
type OutputStatus string

const (
	OutputStatusPending    OutputStatus = "pending"
	OutputStatusInProgress OutputStatus = "in_progress"
	OutputStatusCompleted  OutputStatus = "completed"
	OutputStatusFailed     OutputStatus = "failed"
	OutputStatusPaused     OutputStatus = "paused"
)

// Book 书籍实体
type Book struct {
	ID                string       `json:"id" gorm:"type:uuid;primaryKey"`
	Title             string       `json:"title" gorm:"type:varchar(255);uniqueIndex;not null"`
	NotesBefore       string       `json:"notes_before" gorm:"column:notes_before;type:text"`
	NotesAfter        string       `json:"notes_after" gorm:"column:notes_after;type:text"`
	OutlineStatus     ReviewStatus `json:"outline_status" gorm:"type:varchar(32);index;default:''"`
	FinalReviewStatus ReviewStatus `json:"final_review_status" gorm:"type:varchar(32);default:''"`
	OutputStatus      OutputStatus `json:"output_status" gorm:"type:varchar(32);index;default:'pending'"`
	CreatedAt         time.Time    `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt         time.Time    `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName 指定表名
func (Book) TableName() string {
	return "books"
}

// NewBook 创建新书籍记录
func NewBook(title, notesBefore string) *Book {
	now := time.Now()
	return &Book{
		ID:           uuid.NewString(),
		Title:        title,
		NotesBefore:  notesBefore,
		OutputStatus: OutputStatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// OutlineApproved 大纲是否已批准
func (b *Book) OutlineApproved() bool {
	return b.OutlineStatus == ReviewStatusApproved
}
