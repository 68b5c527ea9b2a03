package repository

import (
	"context"

	"bookdraft-api/internal/domain/entity"
)

// OutlineRepository 大纲仓储接口
// 大纲只追加不覆盖，重生成写入新版本。
type OutlineRepository interface {
	// Create 创建大纲版本
	Create(ctx context.Context, outline *entity.Outline) error

	// GetLatestByBook 获取书籍最新版本大纲
	GetLatestByBook(ctx context.Context, bookID string) (*entity.Outline, error)

	// GetByBookAndVersion 获取书籍指定版本大纲
	GetByBookAndVersion(ctx context.Context, bookID string, version int) (*entity.Outline, error)

	// ListByBook 获取书籍全部大纲版本（按版本号升序）
	ListByBook(ctx context.Context, bookID string) ([]*entity.Outline, error)

	// NextVersion 获取书籍下一个大纲版本号
	NextVersion(ctx context.Context, bookID string) (int, error)
}
