package pipeline

import (
	"context"
	"fmt"

	"bookdraft-api/internal/domain/entity"
	"bookdraft-api/internal/domain/repository"
	"bookdraft-api/internal/infrastructure/messaging"
	"bookdraft-api/pkg/logger"
	"bookdraft-api/pkg/metrics"
)

// Notifier 审校事件通知服务
// 所有投递都是尽力而为：失败只记流水和日志，绝不让触发它的生成操作失败。
type Notifier struct {
	notifications repository.NotificationRepository
	publisher     EventPublisher
}

// NewNotifier 创建通知服务
func NewNotifier(notifications repository.NotificationRepository, publisher EventPublisher) *Notifier {
	return &Notifier{
		notifications: notifications,
		publisher:     publisher,
	}
}

// NotifyOutlineReady 大纲待审通知
func (n *Notifier) NotifyOutlineReady(ctx context.Context, book *entity.Book) {
	message := fmt.Sprintf("Outline for %q is ready for review", book.Title)
	n.deliver(ctx, book, entity.EventOutlineReady, message)
}

// NotifyChapterReady 章节待审通知
func (n *Notifier) NotifyChapterReady(ctx context.Context, book *entity.Book, chapterNumber int) {
	message := fmt.Sprintf("Chapter %d of %q is ready for review", chapterNumber, book.Title)
	n.deliver(ctx, book, entity.EventChapterReady, message)
}

// NotifyBookCompleted 成书完成通知
func (n *Notifier) NotifyBookCompleted(ctx context.Context, book *entity.Book, outputFiles []string) {
	message := fmt.Sprintf("Book %q compiled: %d output file(s)", book.Title, len(outputFiles))
	n.deliver(ctx, book, entity.EventBookCompleted, message)
}

// NotifyError 流水线错误通知
func (n *Notifier) NotifyError(ctx context.Context, book *entity.Book, stage string, cause error) {
	if n == nil || book == nil {
		return
	}

	status := entity.NotificationSent
	if n.publisher != nil {
		_, err := n.publisher.PublishPipelineError(ctx, &messaging.PipelineErrorMessage{
			BookID:    book.ID,
			BookTitle: book.Title,
			Stage:     stage,
			Error:     cause.Error(),
		})
		if err != nil {
			status = entity.NotificationFailed
			logger.Warn(ctx, "failed to publish error notification",
				"book_id", book.ID, "stage", stage, "error", err.Error())
		}
	}

	message := fmt.Sprintf("Error in %s for %q: %v", stage, book.Title, cause)
	n.journal(ctx, book.ID, entity.EventPipelineError, message, status)
}

func (n *Notifier) deliver(ctx context.Context, book *entity.Book, eventType, message string) {
	if n == nil || book == nil {
		return
	}

	status := entity.NotificationSent
	if n.publisher != nil {
		_, err := n.publisher.PublishReviewEvent(ctx, &messaging.ReviewEventMessage{
			BookID:    book.ID,
			BookTitle: book.Title,
			EventType: eventType,
			Detail:    message,
		})
		if err != nil {
			status = entity.NotificationFailed
			logger.Warn(ctx, "failed to publish notification",
				"book_id", book.ID, "event_type", eventType, "error", err.Error())
		}
	}

	n.journal(ctx, book.ID, eventType, message, status)
}

// journal 落一条通知流水；流水写失败同样只记日志
func (n *Notifier) journal(ctx context.Context, bookID, eventType, message, status string) {
	metrics.NotificationTotal.WithLabelValues(eventType, status).Inc()

	if n.notifications == nil {
		return
	}
	record := entity.NewNotification(bookID, eventType, message, status)
	if err := n.notifications.Create(ctx, record); err != nil {
		logger.Warn(ctx, "failed to journal notification",
			"book_id", bookID, "event_type", eventType, "error", err.Error())
	}
}
