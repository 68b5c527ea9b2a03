package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	apperrors "bookdraft-api/pkg/errors"
)

func testConfig() Config {
	return Config{
		MaxAttempts:    3,
		InitialBackoff: time.Millisecond,
	}
}

func TestDoSucceedsFirstTry(t *testing.T) {
	calls := 0
	got, err := Do(context.Background(), testConfig(), "groq", func() (string, error) {
		calls++
		return "content", nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "content" {
		t.Errorf("got %q, want %q", got, "content")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestDoRetriesRateLimitThenSucceeds(t *testing.T) {
	calls := 0
	got, err := Do(context.Background(), testConfig(), "groq", func() (string, error) {
		calls++
		if calls < 3 {
			return "", errors.New("unexpected status code: 429")
		}
		return "content", nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "content" {
		t.Errorf("got %q, want %q", got, "content")
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestDoBackoffWaitsIncrease(t *testing.T) {
	cfg := Config{MaxAttempts: 3, InitialBackoff: 20 * time.Millisecond}
	var stamps []time.Time
	got, err := Do(context.Background(), cfg, "groq", func() (string, error) {
		stamps = append(stamps, time.Now())
		if len(stamps) < 3 {
			return "", errors.New("unexpected status code: 429")
		}
		return "content", nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "content" {
		t.Errorf("got %q, want %q", got, "content")
	}
	if len(stamps) != 3 {
		t.Fatalf("calls = %d, want 3", len(stamps))
	}
	first := stamps[1].Sub(stamps[0])
	second := stamps[2].Sub(stamps[1])
	if second <= first {
		t.Errorf("second wait %v not longer than first %v", second, first)
	}
}

func TestDoNonRetryableAfterRateLimitStaysPlain(t *testing.T) {
	calls := 0
	_, err := Do(context.Background(), testConfig(), "groq", func() (string, error) {
		calls++
		if calls == 1 {
			return "", errors.New("unexpected status code: 429")
		}
		return "", errors.New("invalid api key")
	})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
	if apperrors.IsCode(err, apperrors.CodeRateLimited) {
		t.Errorf("error = %v, want plain non-retryable error", err)
	}
	if err.Error() != "invalid api key" {
		t.Errorf("error = %q, want %q", err.Error(), "invalid api key")
	}
}

func TestDoExhaustsRateLimitAttempts(t *testing.T) {
	calls := 0
	_, err := Do(context.Background(), testConfig(), "groq", func() (string, error) {
		calls++
		return "", errors.New("rate limit reached")
	})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
	if !apperrors.IsCode(err, apperrors.CodeRateLimited) {
		t.Errorf("error code = %v, want CodeRateLimited", err)
	}
}

func TestDoFailsFastOnNonRetryableError(t *testing.T) {
	calls := 0
	_, err := Do(context.Background(), testConfig(), "groq", func() (string, error) {
		calls++
		return "", errors.New("model not found")
	})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	if apperrors.IsCode(err, apperrors.CodeRateLimited) {
		t.Error("non-retryable error should not be classified as rate limited")
	}
}
