// Package postgres 提供 PostgreSQL Repository 实现
package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"bookdraft-api/internal/domain/entity"
	"bookdraft-api/internal/domain/repository"
)

// BookRepository 书籍仓储实现
type BookRepository struct {
	client *Client
}

// NewBookRepository 创建书籍仓储
func NewBookRepository(client *Client) *BookRepository {
	return &BookRepository{client: client}
}

// Create 创建书籍
func (r *BookRepository) Create(ctx context.Context, book *entity.Book) error {
	ctx, span := tracer.Start(ctx, "postgres.BookRepository.Create")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Create(book).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create book: %w", err)
	}
	return nil
}

// GetByID 根据 ID 获取书籍
func (r *BookRepository) GetByID(ctx context.Context, id string) (*entity.Book, error) {
	ctx, span := tracer.Start(ctx, "postgres.BookRepository.GetByID")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var book entity.Book
	if err := db.First(&book, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get book: %w", err)
	}
	return &book, nil
}

// GetByTitle 根据标题获取书籍
func (r *BookRepository) GetByTitle(ctx context.Context, title string) (*entity.Book, error) {
	ctx, span := tracer.Start(ctx, "postgres.BookRepository.GetByTitle")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var book entity.Book
	if err := db.First(&book, "title = ?", title).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get book by title: %w", err)
	}
	return &book, nil
}

// Update 更新书籍
func (r *BookRepository) Update(ctx context.Context, book *entity.Book) error {
	ctx, span := tracer.Start(ctx, "postgres.BookRepository.Update")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Save(book).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to update book: %w", err)
	}
	return nil
}

// Delete 删除书籍
func (r *BookRepository) Delete(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "postgres.BookRepository.Delete")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Delete(&entity.Book{}, "id = ?", id).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to delete book: %w", err)
	}
	return nil
}

// List 获取书籍列表
func (r *BookRepository) List(ctx context.Context, filter *repository.BookFilter, pagination repository.Pagination) (*repository.PagedResult[*entity.Book], error) {
	ctx, span := tracer.Start(ctx, "postgres.BookRepository.List")
	defer span.End()

	db := getDB(ctx, r.client.db)
	query := db.Model(&entity.Book{})

	// 应用过滤条件
	if filter != nil {
		if filter.OutputStatus != "" {
			query = query.Where("output_status = ?", filter.OutputStatus)
		}
		if filter.OutlineStatus != "" {
			query = query.Where("outline_status = ?", filter.OutlineStatus)
		}
	}

	// 获取总数
	var total int64
	if err := query.Count(&total).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to count books: %w", err)
	}

	// 获取列表
	var books []*entity.Book
	if err := query.Order("created_at ASC").
		Offset(pagination.Offset()).
		Limit(pagination.Limit()).
		Find(&books).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list books: %w", err)
	}

	return repository.NewPagedResult(books, total, pagination), nil
}

// ListPending 获取未完成的书籍
func (r *BookRepository) ListPending(ctx context.Context) ([]*entity.Book, error) {
	ctx, span := tracer.Start(ctx, "postgres.BookRepository.ListPending")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var books []*entity.Book

	if err := db.Where("output_status NOT IN ?", []entity.OutputStatus{
		entity.OutputStatusCompleted, entity.OutputStatusFailed,
	}).Order("created_at ASC").Find(&books).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list pending books: %w", err)
	}

	return books, nil
}
