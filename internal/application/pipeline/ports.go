package pipeline

import (
	"context"

	"github.com/cloudwego/eino/schema"

	"bookdraft-api/internal/domain/entity"
	"bookdraft-api/internal/infrastructure/messaging"
	wfmodel "bookdraft-api/internal/workflow/model"
)

// OutlineInvoker 大纲生成工作流依赖
type OutlineInvoker interface {
	Invoke(ctx context.Context, in *wfmodel.OutlineGenerateInput) (*schema.Message, error)
}

// ChapterInvoker 章节生成工作流依赖
type ChapterInvoker interface {
	Invoke(ctx context.Context, in *wfmodel.ChapterGenerateInput) (*schema.Message, error)
}

// SummaryInvoker 摘要生成工作流依赖
type SummaryInvoker interface {
	Invoke(ctx context.Context, in *wfmodel.SummaryGenerateInput) (*schema.Message, error)
}

// RevisionInvoker 修订生成工作流依赖
type RevisionInvoker interface {
	Invoke(ctx context.Context, in *wfmodel.RevisionInput) (*schema.Message, error)
}

// Exporter 编译产物渲染依赖
type Exporter interface {
	Render(ctx context.Context, book *entity.Book, outlineText string, chapters []*entity.Chapter) ([]string, error)
}

// EventPublisher 事件流发布依赖
type EventPublisher interface {
	PublishReviewEvent(ctx context.Context, event *messaging.ReviewEventMessage) (string, error)
	PublishPipelineError(ctx context.Context, event *messaging.PipelineErrorMessage) (string, error)
}
