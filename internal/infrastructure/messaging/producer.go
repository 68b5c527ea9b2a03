// Package messaging 提供基于 Redis Streams 的事件发布实现
package messaging

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("messaging")

// Producer 消息生产者
// 只负责写入事件流，实际的邮件/IM 投递由外部消费者完成。
type Producer struct {
	client *redis.Client
	stream string
	maxLen int64
}

// NewProducer 创建消息生产者
func NewProducer(client *redis.Client, stream string, maxLen int64) *Producer {
	if stream == "" {
		stream = "bookdraft:notifications"
	}
	if maxLen <= 0 {
		maxLen = 100000
	}
	return &Producer{
		client: client,
		stream: stream,
		maxLen: maxLen,
	}
}

// Publish 发布消息到事件流
func (p *Producer) Publish(ctx context.Context, msg *Message) (string, error) {
	ctx, span := tracer.Start(ctx, "producer.Publish",
		trace.WithAttributes(
			attribute.String("stream", p.stream),
			attribute.String("message.id", msg.ID),
			attribute.String("message.type", msg.Type),
		))
	defer span.End()

	data, err := json.Marshal(msg)
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("failed to marshal message: %w", err)
	}

	result, err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		MaxLen: p.maxLen,
		Approx: true,
		Values: map[string]interface{}{
			"data": string(data),
		},
	}).Result()

	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("failed to publish message: %w", err)
	}

	span.SetAttributes(attribute.String("stream.message_id", result))
	return result, nil
}

// PublishReviewEvent 发布审校事件
func (p *Producer) PublishReviewEvent(ctx context.Context, event *ReviewEventMessage) (string, error) {
	msg, err := NewMessage(uuid.NewString(), event.EventType, event.BookID, event)
	if err != nil {
		return "", err
	}

	msg.SetMetadata("book_title", event.BookTitle)
	return p.Publish(ctx, msg)
}

// PublishPipelineError 发布流水线错误事件
func (p *Producer) PublishPipelineError(ctx context.Context, event *PipelineErrorMessage) (string, error) {
	msg, err := NewMessage(uuid.NewString(), "error", event.BookID, event)
	if err != nil {
		return "", err
	}

	msg.SetMetadata("stage", event.Stage)
	return p.Publish(ctx, msg)
}
