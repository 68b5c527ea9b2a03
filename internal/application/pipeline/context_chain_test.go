package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"

	"bookdraft-api/internal/domain/entity"
)

func seedChapterWithSummary(t *testing.T, env *testEnv, bookID string, number int, title string) *entity.Chapter {
	t.Helper()
	ch := entity.NewChapter(bookID, number, title, "Content of "+title)
	if err := env.chapters.Create(context.Background(), ch); err != nil {
		t.Fatalf("seed chapter %d: %v", number, err)
	}
	summary := entity.NewChapterSummary(ch.ID, bookID, "Summary of "+title)
	if err := env.summaries.Upsert(context.Background(), summary); err != nil {
		t.Fatalf("seed summary %d: %v", number, err)
	}
	return ch
}

func TestContextChainFirstChapterHasNoContext(t *testing.T) {
	env := newTestEnv(0)
	chain := NewContextChain(env.chapters, env.summaries, env.summaryGen, "groq")

	got, err := chain.Build(context.Background(), "book-1", 1)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if got != "" {
		t.Errorf("first chapter context should be empty, got %q", got)
	}
	if env.summaryGen.calls != 0 {
		t.Errorf("no summarize calls expected, got %d", env.summaryGen.calls)
	}
}

func TestContextChainCollectsStoredSummaries(t *testing.T) {
	env := newTestEnv(0)
	chain := NewContextChain(env.chapters, env.summaries, env.summaryGen, "groq")
	bookID := "book-1"
	seedChapterWithSummary(t, env, bookID, 1, "The Beginning")
	seedChapterWithSummary(t, env, bookID, 2, "The Middle")

	got, err := chain.Build(context.Background(), bookID, 3)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !strings.Contains(got, "PREVIOUS CHAPTERS CONTEXT:") {
		t.Errorf("missing context header: %q", got)
	}
	if !strings.Contains(got, "Chapter 1: Summary of The Beginning") ||
		!strings.Contains(got, "Chapter 2: Summary of The Middle") {
		t.Errorf("missing summaries: %q", got)
	}
	if env.summaryGen.calls != 0 {
		t.Errorf("stored summaries should not trigger summarize, got %d calls", env.summaryGen.calls)
	}
}

func TestContextChainBackfillsMissingSummary(t *testing.T) {
	env := newTestEnv(0)
	chain := NewContextChain(env.chapters, env.summaries, env.summaryGen, "groq")
	bookID := "book-1"
	ch1 := seedChapterWithSummary(t, env, bookID, 1, "The Beginning")
	seedChapterWithSummary(t, env, bookID, 2, "The Middle")

	// 模拟上一轮在写入摘要前中断
	env.summaries.deleteByChapter(ch1.ID)

	summaries, err := chain.Summaries(context.Background(), bookID, 3)
	if err != nil {
		t.Fatalf("Summaries: %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("expected 2 summaries, got %d: %v", len(summaries), summaries)
	}
	if env.summaryGen.calls != 1 {
		t.Errorf("expected exactly 1 backfill call, got %d", env.summaryGen.calls)
	}

	// 补齐结果已持久化
	stored, err := env.summaries.GetByChapter(context.Background(), ch1.ID)
	if err != nil || stored == nil {
		t.Fatalf("backfilled summary not persisted: %v, %v", stored, err)
	}
	if stored.SummaryText != "Summary of The Beginning" {
		t.Errorf("unexpected backfilled text %q", stored.SummaryText)
	}
}

func TestContextChainBackfillFailurePropagates(t *testing.T) {
	env := newTestEnv(0)
	env.summaryGen.err = errors.New("model unavailable")
	chain := NewContextChain(env.chapters, env.summaries, env.summaryGen, "groq")
	bookID := "book-1"
	ch1 := seedChapterWithSummary(t, env, bookID, 1, "The Beginning")
	env.summaries.deleteByChapter(ch1.ID)

	_, err := chain.Summaries(context.Background(), bookID, 2)
	if err == nil {
		t.Fatal("expected backfill error")
	}
	if !strings.Contains(err.Error(), "failed to backfill summary for chapter 1") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestContextChainSkipsMissingChapters(t *testing.T) {
	env := newTestEnv(0)
	chain := NewContextChain(env.chapters, env.summaries, env.summaryGen, "groq")
	bookID := "book-1"
	seedChapterWithSummary(t, env, bookID, 2, "The Middle")

	summaries, err := chain.Summaries(context.Background(), bookID, 3)
	if err != nil {
		t.Fatalf("Summaries: %v", err)
	}
	if len(summaries) != 1 {
		t.Errorf("expected 1 summary, got %v", summaries)
	}
}

func TestFormatContextEmpty(t *testing.T) {
	if got := FormatContext(nil); got != "" {
		t.Errorf("expected empty context, got %q", got)
	}
}
