package repository

import (
	"context"

	"bookdraft-api/internal/domain/entity"
)

// NotificationRepository 通知流水仓储接口
type NotificationRepository interface {
	// Create 创建通知记录
	Create(ctx context.Context, notification *entity.Notification) error

	// ListByBook 获取书籍通知流水（按发送时间倒序）
	ListByBook(ctx context.Context, bookID string, pagination Pagination) (*PagedResult[*entity.Notification], error)
}
