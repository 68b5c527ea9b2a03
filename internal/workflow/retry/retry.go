// Package retry 提供 LLM 调用的指数退避重试
package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"

	apperrors "bookdraft-api/pkg/errors"
	"bookdraft-api/pkg/logger"
	"bookdraft-api/pkg/metrics"

	"bookdraft-api/internal/workflow/node"
)

// Config 重试配置
type Config struct {
	// MaxAttempts 含首次调用的总次数
	MaxAttempts int
	// InitialBackoff 首次重试前的等待时间，之后按 2 倍递增并加入 10% 抖动
	InitialBackoff time.Duration
}

// DefaultConfig 默认重试配置
func DefaultConfig() Config {
	return Config{
		MaxAttempts:    3,
		InitialBackoff: time.Second,
	}
}

// Do 带重试地执行 LLM 调用
// 仅限流/配额类错误触发重试，其余错误立即失败；
// 重试预算耗尽后返回带 CodeRateLimited 的错误，调用方可据此暂停流水线。
func Do[T any](ctx context.Context, cfg Config, provider string, op func() (T, error)) (T, error) {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = time.Second
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = cfg.InitialBackoff
	bo.Multiplier = 2
	bo.RandomizationFactor = 0.1

	result, err := backoff.Retry(ctx, func() (T, error) {
		v, opErr := op()
		if opErr != nil {
			if node.IsRateLimitError(opErr) {
				return v, opErr
			}
			return v, backoff.Permanent(opErr)
		}
		return v, nil
	},
		backoff.WithBackOff(bo),
		backoff.WithMaxTries(uint(cfg.MaxAttempts)),
		backoff.WithNotify(func(notifyErr error, wait time.Duration) {
			metrics.LLMRetryTotal.WithLabelValues(provider).Inc()
			logger.Warn(ctx, "llm call rate limited, backing off",
				"provider", provider,
				"wait", wait.String(),
				"error", notifyErr.Error(),
			)
		}),
	)

	// 按最终返回的错误分类：限流耗尽预算才换错误码，其余错误原样透传
	if err != nil && node.IsRateLimitError(err) {
		return result, apperrors.Wrap(err, apperrors.CodeRateLimited,
			"rate limit or quota exceeded; check provider billing/usage and reduce request rate")
	}
	return result, err
}
