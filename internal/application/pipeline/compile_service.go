package pipeline

import (
	"context"

	"bookdraft-api/internal/domain/entity"
	"bookdraft-api/internal/domain/repository"
	apperrors "bookdraft-api/pkg/errors"
	"bookdraft-api/pkg/logger"
	"bookdraft-api/pkg/metrics"
)

// CompileService 编译门控与成书服务
type CompileService struct {
	books    repository.BookRepository
	outlines repository.OutlineRepository
	chapters repository.ChapterRepository
	exporter Exporter
	notifier *Notifier
}

// NewCompileService 创建编译服务
func NewCompileService(
	books repository.BookRepository,
	outlines repository.OutlineRepository,
	chapters repository.ChapterRepository,
	exporter Exporter,
	notifier *Notifier,
) *CompileService {
	return &CompileService{
		books:    books,
		outlines: outlines,
		chapters: chapters,
		exporter: exporter,
		notifier: notifier,
	}
}

// CanCompile 判定书籍是否可以编译
func (s *CompileService) CanCompile(ctx context.Context, bookID string) (Decision, error) {
	book, err := s.books.GetByID(ctx, bookID)
	if err != nil {
		return Decision{}, err
	}
	chapters, err := s.chapters.ListByBook(ctx, bookID)
	if err != nil {
		return Decision{}, err
	}
	return CanCompile(book, chapters), nil
}

// Compile 编译成稿
// 导出前置 in_progress，全部格式成功后置 completed；
// 导出失败置 failed 并发错误通知，已写入的大纲/章节记录保持不变。
func (s *CompileService) Compile(ctx context.Context, bookID string) ([]string, Decision, error) {
	book, err := s.books.GetByID(ctx, bookID)
	if err != nil {
		return nil, Decision{}, err
	}
	chapters, err := s.chapters.ListByBook(ctx, bookID)
	if err != nil {
		return nil, Decision{}, err
	}

	decision := CanCompile(book, chapters)
	if !decision.Allowed {
		logger.Warn(ctx, "cannot compile book", "book_id", bookID, "reason", decision.Reason)
		metrics.CompileTotal.WithLabelValues("skipped").Inc()
		return nil, decision, nil
	}

	outline, err := s.outlines.GetLatestByBook(ctx, bookID)
	if err != nil {
		return nil, decision, err
	}
	outlineText := ""
	if outline != nil {
		outlineText = outline.OutlineText
	}

	logger.Info(ctx, "compiling book", "book_id", bookID, "title", book.Title)

	book.OutputStatus = entity.OutputStatusInProgress
	if err := s.books.Update(ctx, book); err != nil {
		return nil, decision, err
	}

	paths, err := s.exporter.Render(ctx, book, outlineText, chapters)
	if err != nil {
		book.OutputStatus = entity.OutputStatusFailed
		if updateErr := s.books.Update(ctx, book); updateErr != nil {
			logger.Error(ctx, "failed to mark book as failed", updateErr, "book_id", bookID)
		}
		metrics.CompileTotal.WithLabelValues("failed").Inc()
		logger.Error(ctx, "book compilation failed", err, "book_id", bookID)
		s.notifier.NotifyError(ctx, book, "book compilation", err)
		return nil, decision, apperrors.Wrap(err, apperrors.CodeCompilationFailed, "book compilation failed")
	}

	book.OutputStatus = entity.OutputStatusCompleted
	if err := s.books.Update(ctx, book); err != nil {
		return nil, decision, err
	}

	metrics.CompileTotal.WithLabelValues("success").Inc()
	logger.Info(ctx, "book compilation complete",
		"book_id", bookID, "title", book.Title, "outputs", len(paths))

	s.notifier.NotifyBookCompleted(ctx, book, paths)
	return paths, decision, nil
}
