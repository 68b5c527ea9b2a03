package repository

import (
	"context"

	"bookdraft-api/internal/domain/entity"
)

// BookFilter 书籍过滤条件
type BookFilter struct {
	OutputStatus  string
	OutlineStatus entity.ReviewStatus
}

// BookRepository 书籍仓储接口
type BookRepository interface {
	// Create 创建书籍
	Create(ctx context.Context, book *entity.Book) error

	// GetByID 根据 ID 获取书籍
	GetByID(ctx context.Context, id string) (*entity.Book, error)

	// GetByTitle 根据标题获取书籍（标题唯一）
	GetByTitle(ctx context.Context, title string) (*entity.Book, error)

	// Update 更新书籍
	Update(ctx context.Context, book *entity.Book) error

	// Delete 删除书籍
	Delete(ctx context.Context, id string) error

	// List 获取书籍列表
	List(ctx context.Context, filter *BookFilter, pagination Pagination) (*PagedResult[*entity.Book], error)

	// ListPending 获取未完成的书籍（按创建时间排序），供批量流水线扫描
	ListPending(ctx context.Context) ([]*entity.Book, error)
}
