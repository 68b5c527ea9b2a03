package postgres

import (
	"context"
	"fmt"

	"bookdraft-api/internal/domain/entity"
)

// Migrate 执行数据库表结构迁移
func (c *Client) Migrate(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "postgres.Migrate")
	defer span.End()

	if err := c.db.WithContext(ctx).AutoMigrate(
		&entity.Book{},
		&entity.Outline{},
		&entity.Chapter{},
		&entity.ChapterSummary{},
		&entity.Notification{},
	); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}
