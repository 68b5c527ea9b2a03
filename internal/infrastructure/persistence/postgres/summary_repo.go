package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"bookdraft-api/internal/domain/entity"
)

// SummaryRepository 章节摘要仓储实现
type SummaryRepository struct {
	client *Client
}

// NewSummaryRepository 创建章节摘要仓储
func NewSummaryRepository(client *Client) *SummaryRepository {
	return &SummaryRepository{client: client}
}

// Upsert 创建或就地更新章节摘要
func (r *SummaryRepository) Upsert(ctx context.Context, summary *entity.ChapterSummary) error {
	ctx, span := tracer.Start(ctx, "postgres.SummaryRepository.Upsert")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "chapter_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"summary_text", "updated_at"}),
	}).Create(summary).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to upsert summary: %w", err)
	}
	return nil
}

// GetByChapter 根据章节 ID 获取摘要
func (r *SummaryRepository) GetByChapter(ctx context.Context, chapterID string) (*entity.ChapterSummary, error) {
	ctx, span := tracer.Start(ctx, "postgres.SummaryRepository.GetByChapter")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var summary entity.ChapterSummary
	if err := db.First(&summary, "chapter_id = ?", chapterID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get summary: %w", err)
	}
	return &summary, nil
}

// ListByBook 获取书籍全部章节摘要
func (r *SummaryRepository) ListByBook(ctx context.Context, bookID string) ([]*entity.ChapterSummary, error) {
	ctx, span := tracer.Start(ctx, "postgres.SummaryRepository.ListByBook")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var summaries []*entity.ChapterSummary

	if err := db.Where("book_id = ?", bookID).
		Order("created_at ASC").
		Find(&summaries).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list summaries: %w", err)
	}

	return summaries, nil
}
