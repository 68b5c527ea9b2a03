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

// ChapterService 章节生成服务
// 整本书的章节生成严格按序推进：跳过继续，失败中止。
type ChapterService struct {
	books     repository.BookRepository
	outlines  repository.OutlineRepository
	chapters  repository.ChapterRepository
	summaries repository.SummaryRepository
	tx        repository.Transactor
	generate  ChapterInvoker
	summarize SummaryInvoker
	revise    RevisionInvoker
	chain     *ContextChain
	notifier  *Notifier
	provider  string
	// maxChapters 单本书章节上限，0 表示不限制
	maxChapters int
}

// NewChapterService 创建章节生成服务
func NewChapterService(
	books repository.BookRepository,
	outlines repository.OutlineRepository,
	chapters repository.ChapterRepository,
	summaries repository.SummaryRepository,
	tx repository.Transactor,
	generate ChapterInvoker,
	summarize SummaryInvoker,
	revise RevisionInvoker,
	chain *ContextChain,
	notifier *Notifier,
	provider string,
	maxChapters int,
) *ChapterService {
	return &ChapterService{
		books:       books,
		outlines:    outlines,
		chapters:    chapters,
		summaries:   summaries,
		tx:          tx,
		generate:    generate,
		summarize:   summarize,
		revise:      revise,
		chain:       chain,
		notifier:    notifier,
		provider:    provider,
		maxChapters: maxChapters,
	}
}

// CanGenerate 判定指定章节是否可以生成
func (s *ChapterService) CanGenerate(ctx context.Context, bookID string, chapterNumber int) (Decision, error) {
	book, err := s.books.GetByID(ctx, bookID)
	if err != nil {
		return Decision{}, err
	}
	latest, err := s.outlines.GetLatestByBook(ctx, bookID)
	if err != nil {
		return Decision{}, err
	}
	existing, err := s.chapters.GetByBookAndNumber(ctx, bookID, chapterNumber)
	if err != nil {
		return Decision{}, err
	}
	var previous *entity.Chapter
	if chapterNumber > 1 {
		previous, err = s.chapters.GetByBookAndNumber(ctx, bookID, chapterNumber-1)
		if err != nil {
			return Decision{}, err
		}
	}
	return CanGenerateChapter(book, latest, existing, previous, chapterNumber), nil
}

// Generate 生成（或按反馈重生成）单个章节
// 成功路径的副作用：落章节、落摘要、状态置 pending、发章节待审通知。
func (s *ChapterService) Generate(ctx context.Context, bookID string, chapterNumber int, chapterTitle string) (Decision, error) {
	decision, err := s.CanGenerate(ctx, bookID, chapterNumber)
	if err != nil {
		return Decision{}, err
	}
	if !decision.Allowed {
		logger.Warn(ctx, "cannot generate chapter",
			"book_id", bookID, "chapter_number", chapterNumber, "reason", decision.Reason)
		metrics.GenerationTotal.WithLabelValues("chapter", "skipped").Inc()
		return decision, nil
	}

	book, err := s.books.GetByID(ctx, bookID)
	if err != nil {
		return Decision{}, err
	}
	latest, err := s.outlines.GetLatestByBook(ctx, bookID)
	if err != nil {
		return Decision{}, err
	}

	start := time.Now()
	if err := s.doGenerate(ctx, book, latest, chapterNumber, chapterTitle); err != nil {
		metrics.GenerationDuration.WithLabelValues("chapter").Observe(time.Since(start).Seconds())
		metrics.GenerationTotal.WithLabelValues("chapter", "failed").Inc()
		logger.Error(ctx, "chapter generation failed", err,
			"book_id", bookID, "chapter_number", chapterNumber)
		s.notifier.NotifyError(ctx, book, "chapter generation", err)
		return decision, err
	}
	metrics.GenerationDuration.WithLabelValues("chapter").Observe(time.Since(start).Seconds())
	metrics.GenerationTotal.WithLabelValues("chapter", "success").Inc()

	logger.Info(ctx, "chapter generated",
		"book_id", bookID, "chapter_number", chapterNumber, "title", chapterTitle)
	s.notifier.NotifyChapterReady(ctx, book, chapterNumber)
	return decision, nil
}

func (s *ChapterService) doGenerate(ctx context.Context, book *entity.Book, outline *entity.Outline, chapterNumber int, chapterTitle string) error {
	// 前情上下文；缺失摘要在此处懒补齐
	contextBlock, err := s.chain.Build(ctx, book.ID, chapterNumber)
	if err != nil {
		return err
	}

	existing, err := s.chapters.GetByBookAndNumber(ctx, book.ID, chapterNumber)
	if err != nil {
		return err
	}
	isRegeneration := existing != nil

	var content string
	if isRegeneration && existing.Notes != "" {
		msg, err := s.revise.Invoke(ctx,
			wfmodel.NewChapterRevisionInput(s.provider, existing.Content, existing.Notes))
		if err != nil {
			return err
		}
		content = strings.TrimSpace(msg.Content)
	} else {
		msg, err := s.generate.Invoke(ctx, &wfmodel.ChapterGenerateInput{
			Provider:      s.provider,
			BookTitle:     book.Title,
			Outline:       outline.OutlineText,
			ChapterNumber: chapterNumber,
			ChapterTitle:  chapterTitle,
			Context:       contextBlock,
		})
		if err != nil {
			return err
		}
		content = strings.TrimSpace(msg.Content)
	}

	summaryMsg, err := s.summarize.Invoke(ctx, &wfmodel.SummaryGenerateInput{
		Provider:     s.provider,
		ChapterTitle: chapterTitle,
		Content:      content,
	})
	if err != nil {
		return err
	}
	summaryText := strings.TrimSpace(summaryMsg.Content)

	metrics.ChapterWordCount.Observe(float64(len([]rune(content))))

	// 章节与摘要必须一起落库
	return s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		var chapterID string
		if isRegeneration {
			// 就地覆盖内容并重置为待审核
			existing.SetContent(content)
			existing.NotesStatus = entity.ReviewStatusPending
			if err := s.chapters.Update(ctx, existing); err != nil {
				return err
			}
			chapterID = existing.ID
		} else {
			chapter := entity.NewChapter(book.ID, chapterNumber, chapterTitle, content)
			if err := s.chapters.Create(ctx, chapter); err != nil {
				return err
			}
			chapterID = chapter.ID
		}
		return s.summaries.Upsert(ctx, entity.NewChapterSummary(chapterID, book.ID, summaryText))
	})
}

// GenerateAll 按大纲顺序生成整本书的章节
// 门控拒绝记为 skip 并继续下一章；生成失败立即中止循环。
func (s *ChapterService) GenerateAll(ctx context.Context, bookID string) (GenStats, error) {
	var stats GenStats

	outline, err := s.outlines.GetLatestByBook(ctx, bookID)
	if err != nil {
		return stats, err
	}
	if outline == nil {
		logger.Warn(ctx, "no outline found for book", "book_id", bookID)
		return stats, nil
	}

	parsed := ParseChapters(outline.OutlineText)
	if s.maxChapters > 0 && len(parsed) > s.maxChapters {
		logger.Info(ctx, "limiting chapters per book",
			"book_id", bookID, "limit", s.maxChapters, "parsed", len(parsed))
	}
	parsed = LimitChapters(parsed, s.maxChapters)
	stats.Total = len(parsed)

	logger.Info(ctx, "generating chapters", "book_id", bookID, "count", stats.Total)

	for _, ch := range parsed {
		decision, err := s.Generate(ctx, bookID, ch.Number, ch.Title)
		if err != nil {
			stats.Failed++
			// 顺序生成：失败即终止，避免后续章节在缺失上下文时继续
			break
		}
		if decision.Allowed {
			stats.Generated++
		} else {
			logger.Info(ctx, "skipping chapter",
				"book_id", bookID, "chapter_number", ch.Number, "reason", decision.Reason)
			stats.Skipped++
		}
	}

	logger.Info(ctx, "chapter generation pass complete",
		"book_id", bookID, "total", stats.Total, "generated", stats.Generated,
		"skipped", stats.Skipped, "failed", stats.Failed)
	return stats, nil
}
