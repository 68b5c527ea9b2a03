package repository

import (
	"context"

	"bookdraft-api/internal/domain/entity"
)

// ChapterRepository 章节仓储接口
type ChapterRepository interface {
	// Create 创建章节
	Create(ctx context.Context, chapter *entity.Chapter) error

	// GetByID 根据 ID 获取章节
	GetByID(ctx context.Context, id string) (*entity.Chapter, error)

	// GetByBookAndNumber 根据书籍和章节号获取章节
	GetByBookAndNumber(ctx context.Context, bookID string, chapterNumber int) (*entity.Chapter, error)

	// Update 更新章节
	Update(ctx context.Context, chapter *entity.Chapter) error

	// Delete 删除章节
	Delete(ctx context.Context, id string) error

	// ListByBook 获取书籍章节列表（按章节号升序）
	ListByBook(ctx context.Context, bookID string) ([]*entity.Chapter, error)

	// CountByBook 统计书籍章节数
	CountByBook(ctx context.Context, bookID string) (int64, error)
}
