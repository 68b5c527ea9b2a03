package postgres

import (
	"context"
	"fmt"

	"bookdraft-api/internal/domain/entity"
	"bookdraft-api/internal/domain/repository"
)

// NotificationRepository 通知流水仓储实现
type NotificationRepository struct {
	client *Client
}

// NewNotificationRepository 创建通知流水仓储
func NewNotificationRepository(client *Client) *NotificationRepository {
	return &NotificationRepository{client: client}
}

// Create 创建通知记录
func (r *NotificationRepository) Create(ctx context.Context, notification *entity.Notification) error {
	ctx, span := tracer.Start(ctx, "postgres.NotificationRepository.Create")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Create(notification).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

// ListByBook 获取书籍通知流水
func (r *NotificationRepository) ListByBook(ctx context.Context, bookID string, pagination repository.Pagination) (*repository.PagedResult[*entity.Notification], error) {
	ctx, span := tracer.Start(ctx, "postgres.NotificationRepository.ListByBook")
	defer span.End()

	db := getDB(ctx, r.client.db)
	query := db.Model(&entity.Notification{}).Where("book_id = ?", bookID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to count notifications: %w", err)
	}

	var notifications []*entity.Notification
	if err := query.Order("sent_at DESC").
		Offset(pagination.Offset()).
		Limit(pagination.Limit()).
		Find(&notifications).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}

	return repository.NewPagedResult(notifications, total, pagination), nil
}
