package entity

import (
	"time"

	"github.com/google/uuid"
)

// 通知事件类型
const (
	EventOutlineReady  = "outline_ready"  // 大纲待审
	EventChapterReady  = "chapter_ready"  // 章节待审
	EventBookCompleted = "book_completed" // 书稿编译完成
	EventPipelineError = "error"          // 流水线错误
)

// 通知投递状态
const (
	NotificationSent   = "sent"
	NotificationFailed = "failed"
)

// Notification 通知流水实体
// 每次向外部投递的审校/完成事件都会落一条记录，便于排查投递失败。
type Notification struct {
	ID        string    `json:"id" gorm:"type:uuid;primaryKey"`
	BookID    string    `json:"book_id" gorm:"type:uuid;index;not null"`
	EventType string    `json:"event_type" gorm:"type:varchar(32);not null"`
	Message   string    `json:"message" gorm:"type:text"`
	Status    string    `json:"status" gorm:"type:varchar(16);not null"`
	SentAt    time.Time `json:"sent_at" gorm:"autoCreateTime"`
}

// TableName 指定表名
func (Notification) TableName() string {
	return "notifications"
}

// NewNotification 创建通知记录
func NewNotification(bookID, eventType, message, status string) *Notification {
	return &Notification{
		ID:        uuid.NewString(),
		BookID:    bookID,
		EventType: eventType,
		Message:   message,
		Status:    status,
		SentAt:    time.Now(),
	}
}
