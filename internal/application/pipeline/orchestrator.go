package pipeline

import (
	"context"

	"bookdraft-api/internal/domain/entity"
	"bookdraft-api/internal/domain/repository"
	"bookdraft-api/pkg/logger"
)

// WorkflowStats 整轮流水线统计
type WorkflowStats struct {
	OutlinesGenerated int      `json:"outlines_generated"`
	ChaptersGenerated int      `json:"chapters_generated"`
	BooksCompiled     int      `json:"books_compiled"`
	Errors            []string `json:"errors,omitempty"`
}

// BookResult 单本书流水线结果
type BookResult struct {
	BookID            string   `json:"book_id"`
	OutlineGenerated  bool     `json:"outline_generated"`
	ChaptersGenerated int      `json:"chapters_generated"`
	Compiled          bool     `json:"compiled"`
	OutputFiles       []string `json:"output_files,omitempty"`
	Reason            string   `json:"reason,omitempty"`
}

// Orchestrator 批量流水线编排器
// 一轮 Run 依次推进：大纲 → （可选自动批准）→ 章节 → （可选自动批准）→ 编译。
// 每轮都从持久化状态重新评估门控，可安全重复执行。
type Orchestrator struct {
	books    repository.BookRepository
	outlines repository.OutlineRepository
	chapters repository.ChapterRepository
	outline  *OutlineService
	chapter  *ChapterService
	compile  *CompileService

	autoApproveOutlines bool
	autoApproveChapters bool
}

// NewOrchestrator 创建编排器
func NewOrchestrator(
	books repository.BookRepository,
	outlines repository.OutlineRepository,
	chapters repository.ChapterRepository,
	outline *OutlineService,
	chapter *ChapterService,
	compile *CompileService,
	autoApproveOutlines bool,
	autoApproveChapters bool,
) *Orchestrator {
	return &Orchestrator{
		books:               books,
		outlines:            outlines,
		chapters:            chapters,
		outline:             outline,
		chapter:             chapter,
		compile:             compile,
		autoApproveOutlines: autoApproveOutlines,
		autoApproveChapters: autoApproveChapters,
	}
}

// Run 执行一轮完整流水线
func (o *Orchestrator) Run(ctx context.Context) (*WorkflowStats, error) {
	stats := &WorkflowStats{}

	// 阶段一：大纲
	logger.Info(ctx, "workflow stage: generating outlines")
	outlineStats, err := o.outline.ProcessAllPending(ctx)
	if err != nil {
		return stats, err
	}
	stats.OutlinesGenerated = outlineStats.Generated

	if o.autoApproveOutlines {
		if err := o.approveOutlines(ctx); err != nil {
			stats.Errors = append(stats.Errors, err.Error())
		}
	}

	// 阶段二：章节（仅大纲已批准的书）
	logger.Info(ctx, "workflow stage: generating chapters")
	books, err := o.books.ListPending(ctx)
	if err != nil {
		return stats, err
	}

	for _, book := range books {
		if !book.OutlineApproved() {
			continue
		}

		chapterStats, err := o.chapter.GenerateAll(ctx, book.ID)
		if err != nil {
			stats.Errors = append(stats.Errors, err.Error())
			continue
		}
		stats.ChaptersGenerated += chapterStats.Generated

		if o.autoApproveChapters {
			if err := o.approveChapters(ctx, book.ID); err != nil {
				stats.Errors = append(stats.Errors, err.Error())
			}
		}
	}

	// 阶段三：编译
	logger.Info(ctx, "workflow stage: compiling books")
	for _, book := range books {
		if !book.OutlineApproved() {
			continue
		}

		_, decision, err := o.compile.Compile(ctx, book.ID)
		if err != nil {
			stats.Errors = append(stats.Errors, err.Error())
			continue
		}
		if decision.Allowed {
			stats.BooksCompiled++
		} else {
			logger.Info(ctx, "cannot compile book",
				"book_id", book.ID, "title", book.Title, "reason", decision.Reason)
		}
	}

	logger.Info(ctx, "workflow complete",
		"outlines_generated", stats.OutlinesGenerated,
		"chapters_generated", stats.ChaptersGenerated,
		"books_compiled", stats.BooksCompiled,
		"errors", len(stats.Errors))
	return stats, nil
}

// RunBook 对单本书推进一步流水线
// 每次调用只推进一个阶段，阶段间等待编辑审核。
func (o *Orchestrator) RunBook(ctx context.Context, bookID string) (*BookResult, error) {
	result := &BookResult{BookID: bookID}

	book, err := o.books.GetByID(ctx, bookID)
	if err != nil {
		return result, err
	}
	if book == nil {
		result.Reason = "Book not found"
		return result, nil
	}

	// 阶段一：大纲
	outlineDecision, err := o.outline.CanGenerate(ctx, bookID)
	if err != nil {
		return result, err
	}
	if outlineDecision.Allowed {
		if _, err := o.outline.Generate(ctx, bookID); err != nil {
			return result, err
		}
		result.OutlineGenerated = true
		result.Reason = "Outline generated, waiting for editor approval"
		return result, nil
	}

	// 阶段二：章节
	if book.OutlineApproved() {
		chapterStats, err := o.chapter.GenerateAll(ctx, bookID)
		if err != nil {
			return result, err
		}
		if chapterStats.Generated > 0 {
			result.ChaptersGenerated = chapterStats.Generated
			result.Reason = "Chapters generated, waiting for editor approval"
			return result, nil
		}
	}

	// 阶段三：编译
	paths, compileDecision, err := o.compile.Compile(ctx, bookID)
	if err != nil {
		return result, err
	}
	if compileDecision.Allowed {
		result.Compiled = true
		result.OutputFiles = paths
	} else {
		result.Reason = compileDecision.Reason
	}
	return result, nil
}

// approveOutlines 将所有待审且已有大纲的书直接批准
func (o *Orchestrator) approveOutlines(ctx context.Context) error {
	books, err := o.books.ListPending(ctx)
	if err != nil {
		return err
	}
	for _, book := range books {
		if book.OutlineStatus != entity.ReviewStatusPending {
			continue
		}
		outline, err := o.outlines.GetLatestByBook(ctx, book.ID)
		if err != nil {
			return err
		}
		if outline == nil {
			continue
		}
		book.OutlineStatus = entity.ReviewStatusApproved
		if err := o.books.Update(ctx, book); err != nil {
			return err
		}
		logger.Info(ctx, "auto-approved outline", "book_id", book.ID, "title", book.Title)
	}
	return nil
}

// approveChapters 将一本书的全部章节直接批准
func (o *Orchestrator) approveChapters(ctx context.Context, bookID string) error {
	chapters, err := o.chapters.ListByBook(ctx, bookID)
	if err != nil {
		return err
	}
	for _, ch := range chapters {
		if ch.NotesStatus == entity.ReviewStatusApproved {
			continue
		}
		ch.NotesStatus = entity.ReviewStatusApproved
		if err := o.chapters.Update(ctx, ch); err != nil {
			return err
		}
	}
	logger.Info(ctx, "auto-approved chapters", "book_id", bookID, "count", len(chapters))
	return nil
}
