package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"bookdraft-api/internal/domain/entity"
)

// OutlineRepository 大纲仓储实现
type OutlineRepository struct {
	client *Client
}

// NewOutlineRepository 创建大纲仓储
func NewOutlineRepository(client *Client) *OutlineRepository {
	return &OutlineRepository{client: client}
}

// Create 创建大纲版本
func (r *OutlineRepository) Create(ctx context.Context, outline *entity.Outline) error {
	ctx, span := tracer.Start(ctx, "postgres.OutlineRepository.Create")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Create(outline).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create outline: %w", err)
	}
	return nil
}

// GetLatestByBook 获取书籍最新版本大纲
func (r *OutlineRepository) GetLatestByBook(ctx context.Context, bookID string) (*entity.Outline, error) {
	ctx, span := tracer.Start(ctx, "postgres.OutlineRepository.GetLatestByBook")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var outline entity.Outline
	if err := db.Where("book_id = ?", bookID).
		Order("version DESC").
		First(&outline).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get latest outline: %w", err)
	}
	return &outline, nil
}

// GetByBookAndVersion 获取书籍指定版本大纲
func (r *OutlineRepository) GetByBookAndVersion(ctx context.Context, bookID string, version int) (*entity.Outline, error) {
	ctx, span := tracer.Start(ctx, "postgres.OutlineRepository.GetByBookAndVersion")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var outline entity.Outline
	if err := db.Where("book_id = ? AND version = ?", bookID, version).
		First(&outline).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get outline version: %w", err)
	}
	return &outline, nil
}

// ListByBook 获取书籍全部大纲版本
func (r *OutlineRepository) ListByBook(ctx context.Context, bookID string) ([]*entity.Outline, error) {
	ctx, span := tracer.Start(ctx, "postgres.OutlineRepository.ListByBook")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var outlines []*entity.Outline

	if err := db.Where("book_id = ?", bookID).
		Order("version ASC").
		Find(&outlines).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list outlines: %w", err)
	}

	return outlines, nil
}

// NextVersion 获取书籍下一个大纲版本号
func (r *OutlineRepository) NextVersion(ctx context.Context, bookID string) (int, error) {
	ctx, span := tracer.Start(ctx, "postgres.OutlineRepository.NextVersion")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var maxVersion *int

	err := db.Model(&entity.Outline{}).
		Where("book_id = ?", bookID).
		Select("MAX(version)").
		Scan(&maxVersion).Error
	if err != nil {
		span.RecordError(err)
		return 0, fmt.Errorf("failed to get max outline version: %w", err)
	}

	if maxVersion == nil {
		return 1, nil
	}
	return *maxVersion + 1, nil
}
