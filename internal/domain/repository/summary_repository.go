package repository

import (
	"context"

	"bookdraft-api/internal/domain/entity"
)

// SummaryRepository 章节摘要仓储接口
type SummaryRepository interface {
	// Upsert 创建或就地更新章节摘要（按 chapter_id 唯一）
	Upsert(ctx context.Context, summary *entity.ChapterSummary) error

	// GetByChapter 根据章节 ID 获取摘要
	GetByChapter(ctx context.Context, chapterID string) (*entity.ChapterSummary, error)

	// ListByBook 获取书籍全部章节摘要
	ListByBook(ctx context.Context, bookID string) ([]*entity.ChapterSummary, error)
}
