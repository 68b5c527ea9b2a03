package pipeline

import (
	"context"

	"github.com/cloudwego/eino/schema"

	wfmodel "bookdraft-api/internal/workflow/model"
	"bookdraft-api/internal/workflow/retry"
)

// 带重试的工作流装饰器：所有 LLM 调用统一套用同一重试策略。

type retryingOutline struct {
	inner    OutlineInvoker
	cfg      retry.Config
	provider string
}

func (r retryingOutline) Invoke(ctx context.Context, in *wfmodel.OutlineGenerateInput) (*schema.Message, error) {
	return retry.Do(ctx, r.cfg, r.provider, func() (*schema.Message, error) {
		return r.inner.Invoke(ctx, in)
	})
}

type retryingChapter struct {
	inner    ChapterInvoker
	cfg      retry.Config
	provider string
}

func (r retryingChapter) Invoke(ctx context.Context, in *wfmodel.ChapterGenerateInput) (*schema.Message, error) {
	return retry.Do(ctx, r.cfg, r.provider, func() (*schema.Message, error) {
		return r.inner.Invoke(ctx, in)
	})
}

type retryingSummary struct {
	inner    SummaryInvoker
	cfg      retry.Config
	provider string
}

func (r retryingSummary) Invoke(ctx context.Context, in *wfmodel.SummaryGenerateInput) (*schema.Message, error) {
	return retry.Do(ctx, r.cfg, r.provider, func() (*schema.Message, error) {
		return r.inner.Invoke(ctx, in)
	})
}

type retryingRevision struct {
	inner    RevisionInvoker
	cfg      retry.Config
	provider string
}

func (r retryingRevision) Invoke(ctx context.Context, in *wfmodel.RevisionInput) (*schema.Message, error) {
	return retry.Do(ctx, r.cfg, r.provider, func() (*schema.Message, error) {
		return r.inner.Invoke(ctx, in)
	})
}

// WithRetryOutline 为大纲工作流套用重试
func WithRetryOutline(inner OutlineInvoker, cfg retry.Config, provider string) OutlineInvoker {
	return retryingOutline{inner: inner, cfg: cfg, provider: provider}
}

// WithRetryChapter 为章节工作流套用重试
func WithRetryChapter(inner ChapterInvoker, cfg retry.Config, provider string) ChapterInvoker {
	return retryingChapter{inner: inner, cfg: cfg, provider: provider}
}

// WithRetrySummary 为摘要工作流套用重试
func WithRetrySummary(inner SummaryInvoker, cfg retry.Config, provider string) SummaryInvoker {
	return retryingSummary{inner: inner, cfg: cfg, provider: provider}
}

// WithRetryRevision 为修订工作流套用重试
func WithRetryRevision(inner RevisionInvoker, cfg retry.Config, provider string) RevisionInvoker {
	return retryingRevision{inner: inner, cfg: cfg, provider: provider}
}
