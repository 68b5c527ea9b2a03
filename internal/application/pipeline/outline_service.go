package pipeline

import (
	"context"
	"strings"
	"time"

	"bookdraft-api/internal/domain/entity"
	"bookdraft-api/internal/domain/repository"
	wfmodel "bookdraft-api/internal/workflow/model"
	"bookdraft-api/pkg/logger"
	"bookdraft-api/pkg/metrics"
)

// OutlineService 大纲生成服务
type OutlineService struct {
	books    repository.BookRepository
	outlines repository.OutlineRepository
	tx       repository.Transactor
	generate OutlineInvoker
	revise   RevisionInvoker
	notifier *Notifier
	provider string
}

// NewOutlineService 创建大纲生成服务
func NewOutlineService(
	books repository.BookRepository,
	outlines repository.OutlineRepository,
	tx repository.Transactor,
	generate OutlineInvoker,
	revise RevisionInvoker,
	notifier *Notifier,
	provider string,
) *OutlineService {
	return &OutlineService{
		books:    books,
		outlines: outlines,
		tx:       tx,
		generate: generate,
		revise:   revise,
		notifier: notifier,
		provider: provider,
	}
}

// CanGenerate 判定书籍是否可以生成大纲
func (s *OutlineService) CanGenerate(ctx context.Context, bookID string) (Decision, error) {
	book, err := s.books.GetByID(ctx, bookID)
	if err != nil {
		return Decision{}, err
	}
	latest, err := s.outlines.GetLatestByBook(ctx, bookID)
	if err != nil {
		return Decision{}, err
	}
	return CanGenerateOutline(book, latest), nil
}

// Generate 为书籍生成（或按反馈重生成）大纲
// 门控拒绝返回 (denied, nil)；生成失败返回 (allowed, err) 并发出错误通知。
func (s *OutlineService) Generate(ctx context.Context, bookID string) (Decision, error) {
	book, err := s.books.GetByID(ctx, bookID)
	if err != nil {
		return Decision{}, err
	}
	latest, err := s.outlines.GetLatestByBook(ctx, bookID)
	if err != nil {
		return Decision{}, err
	}

	decision := CanGenerateOutline(book, latest)
	if !decision.Allowed {
		logger.Warn(ctx, "cannot generate outline",
			"book_id", bookID, "reason", decision.Reason)
		metrics.GenerationTotal.WithLabelValues("outline", "skipped").Inc()
		return decision, nil
	}

	isRegeneration := latest != nil
	logger.Info(ctx, "generating outline",
		"book_id", bookID, "title", book.Title, "regeneration", isRegeneration)

	start := time.Now()
	outlineText, err := s.invoke(ctx, book, latest, isRegeneration)
	metrics.GenerationDuration.WithLabelValues("outline").Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.GenerationTotal.WithLabelValues("outline", "failed").Inc()
		logger.Error(ctx, "outline generation failed", err, "book_id", bookID)
		s.notifier.NotifyError(ctx, book, "outline generation", err)
		return decision, err
	}

	version := 1
	if latest != nil {
		version = latest.Version + 1
	}

	// 新版本大纲与书籍状态必须一起落库
	record := entity.NewOutline(bookID, outlineText, version)
	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.outlines.Create(ctx, record); err != nil {
			return err
		}
		// 等待编辑审核
		book.OutlineStatus = entity.ReviewStatusPending
		return s.books.Update(ctx, book)
	})
	if err != nil {
		metrics.GenerationTotal.WithLabelValues("outline", "failed").Inc()
		s.notifier.NotifyError(ctx, book, "outline generation", err)
		return decision, err
	}

	metrics.GenerationTotal.WithLabelValues("outline", "success").Inc()
	logger.Info(ctx, "outline generated",
		"book_id", bookID, "title", book.Title, "version", version)

	s.notifier.NotifyOutlineReady(ctx, book)
	return decision, nil
}

// ProcessAllPending 扫描并处理所有待生成大纲的书籍
func (s *OutlineService) ProcessAllPending(ctx context.Context) (GenStats, error) {
	var stats GenStats

	books, err := s.books.ListPending(ctx)
	if err != nil {
		return stats, err
	}

	for _, book := range books {
		if book.NotesBefore == "" {
			continue
		}
		stats.Total++

		decision, err := s.Generate(ctx, book.ID)
		switch {
		case err != nil:
			stats.Failed++
		case decision.Allowed:
			stats.Generated++
		default:
			logger.Info(ctx, "skipping outline",
				"book_id", book.ID, "title", book.Title, "reason", decision.Reason)
			stats.Skipped++
		}
	}

	logger.Info(ctx, "outline generation pass complete",
		"total", stats.Total, "generated", stats.Generated,
		"skipped", stats.Skipped, "failed", stats.Failed)
	return stats, nil
}

func (s *OutlineService) invoke(ctx context.Context, book *entity.Book, latest *entity.Outline, isRegeneration bool) (string, error) {
	if isRegeneration && book.NotesAfter != "" {
		msg, err := s.revise.Invoke(ctx,
			wfmodel.NewOutlineRevisionInput(s.provider, latest.OutlineText, book.NotesAfter))
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(msg.Content), nil
	}

	msg, err := s.generate.Invoke(ctx, &wfmodel.OutlineGenerateInput{
		Provider: s.provider,
		Title:    book.Title,
		Notes:    book.NotesBefore,
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(msg.Content), nil
}

// GenStats 单轮生成统计
type GenStats struct {
	Total     int `json:"total"`
	Generated int `json:"generated"`
	Skipped   int `json:"skipped"`
	Failed    int `json:"failed"`
}
