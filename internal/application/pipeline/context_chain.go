package pipeline

import (
	"context"
	"fmt"
	"strings"

	"bookdraft-api/internal/domain/entity"
	"bookdraft-api/internal/domain/repository"
	wfmodel "bookdraft-api/internal/workflow/model"
	"bookdraft-api/pkg/logger"
)

// ContextChain 上下文链构建器
// 为第 N 章收集 1..N-1 章的摘要；缺失的摘要现场补生成并持久化，
// 因此补齐失败会作为所属章节生成的失败向上传播。
type ContextChain struct {
	chapters  repository.ChapterRepository
	summaries repository.SummaryRepository
	summarize SummaryInvoker
	provider  string
}

// NewContextChain 创建上下文链构建器
func NewContextChain(
	chapters repository.ChapterRepository,
	summaries repository.SummaryRepository,
	summarize SummaryInvoker,
	provider string,
) *ContextChain {
	return &ContextChain{
		chapters:  chapters,
		summaries: summaries,
		summarize: summarize,
		provider:  provider,
	}
}

// Summaries 返回 1..upToChapter-1 章的摘要文本（按章节号升序）
func (c *ContextChain) Summaries(ctx context.Context, bookID string, upToChapter int) ([]string, error) {
	summaries := make([]string, 0, upToChapter-1)

	for num := 1; num < upToChapter; num++ {
		chapter, err := c.chapters.GetByBookAndNumber(ctx, bookID, num)
		if err != nil {
			return nil, err
		}
		if chapter == nil {
			continue
		}

		summary, err := c.summaries.GetByChapter(ctx, chapter.ID)
		if err != nil {
			return nil, err
		}
		if summary != nil {
			summaries = append(summaries, summary.SummaryText)
			continue
		}

		// 懒补齐：上一轮可能在写入章节后、写入摘要前中断
		logger.Warn(ctx, "no summary found for chapter, backfilling",
			"book_id", bookID, "chapter_number", num)

		text, err := c.generateSummary(ctx, chapter)
		if err != nil {
			return nil, fmt.Errorf("failed to backfill summary for chapter %d: %w", num, err)
		}
		summaries = append(summaries, text)
	}

	return summaries, nil
}

// Build 构建章节生成提示词中的前情上下文块；首章返回空串
func (c *ContextChain) Build(ctx context.Context, bookID string, upToChapter int) (string, error) {
	summaries, err := c.Summaries(ctx, bookID, upToChapter)
	if err != nil {
		return "", err
	}
	return FormatContext(summaries), nil
}

// generateSummary 生成并持久化章节摘要
func (c *ContextChain) generateSummary(ctx context.Context, chapter *entity.Chapter) (string, error) {
	msg, err := c.summarize.Invoke(ctx, &wfmodel.SummaryGenerateInput{
		Provider:     c.provider,
		ChapterTitle: chapter.Title,
		Content:      chapter.Content,
	})
	if err != nil {
		return "", err
	}

	text := strings.TrimSpace(msg.Content)
	record := entity.NewChapterSummary(chapter.ID, chapter.BookID, text)
	if err := c.summaries.Upsert(ctx, record); err != nil {
		return "", err
	}
	return text, nil
}

// FormatContext 将前情摘要拼装为提示词上下文块
func FormatContext(summaries []string) string {
	if len(summaries) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("\n\nPREVIOUS CHAPTERS CONTEXT:\n")
	for i, summary := range summaries {
		fmt.Fprintf(&b, "\nChapter %d: %s\n", i+1, summary)
	}
	return b.String()
}
