package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"

	"bookdraft-api/internal/domain/entity"
)

// 端到端：入库 → 大纲 → 编辑批准 → 章节 → 编辑批准 → 编译
func TestPipelineEndToEnd(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(0)
	book := env.addBook(ctx, "Test Book", "an adventure story about a lighthouse keeper")

	// 大纲生成
	decision, err := env.outlineSvc.Generate(ctx, book.ID)
	if err != nil {
		t.Fatalf("outline Generate: %v", err)
	}
	if !decision.Allowed {
		t.Fatalf("outline generation denied: %+v", decision)
	}

	stored, _ := env.books.GetByID(ctx, book.ID)
	if stored.OutlineStatus != entity.ReviewStatusPending {
		t.Fatalf("outline status = %q, want pending", stored.OutlineStatus)
	}
	outline, _ := env.outlines.GetLatestByBook(ctx, book.ID)
	if outline == nil || outline.Version != 1 {
		t.Fatalf("expected outline v1, got %+v", outline)
	}

	// 大纲未批准时章节生成被拒绝
	decision, err = env.chapterSvc.CanGenerate(ctx, book.ID, 1)
	if err != nil {
		t.Fatalf("chapter CanGenerate: %v", err)
	}
	if decision.Allowed {
		t.Fatal("chapter 1 must be denied before outline approval")
	}

	// 编辑批准大纲
	env.setOutlineStatus(ctx, book.ID, entity.ReviewStatusApproved)

	stats, err := env.chapterSvc.GenerateAll(ctx, book.ID)
	if err != nil {
		t.Fatalf("GenerateAll: %v", err)
	}
	if stats.Total != 2 || stats.Generated != 2 || stats.Failed != 0 {
		t.Fatalf("chapter stats: %+v", stats)
	}

	chapters, _ := env.chapters.ListByBook(ctx, book.ID)
	if len(chapters) != 2 {
		t.Fatalf("expected 2 chapters, got %d", len(chapters))
	}
	for _, ch := range chapters {
		if ch.NotesStatus != entity.ReviewStatusPending {
			t.Errorf("chapter %d status = %q, want pending", ch.ChapterNumber, ch.NotesStatus)
		}
		if ch.WordCount == 0 {
			t.Errorf("chapter %d word count not set", ch.ChapterNumber)
		}
		summary, _ := env.summaries.GetByChapter(ctx, ch.ID)
		if summary == nil {
			t.Errorf("chapter %d has no summary", ch.ChapterNumber)
		}
	}

	// 第二章的提示词包含第一章摘要（上下文链）
	if env.chapterGen.calls != 2 {
		t.Fatalf("expected 2 chapter invocations, got %d", env.chapterGen.calls)
	}

	// 编辑批准全部章节
	env.setChapterStatus(ctx, book.ID, 1, entity.ReviewStatusApproved)
	env.setChapterStatus(ctx, book.ID, 2, entity.ReviewStatusApproved)

	decision, err = env.compileSvc.CanCompile(ctx, book.ID)
	if err != nil {
		t.Fatalf("CanCompile: %v", err)
	}
	if !decision.Allowed || decision.Reason != "Ready to compile" {
		t.Fatalf("CanCompile: %+v", decision)
	}

	paths, decision, err := env.compileSvc.Compile(ctx, book.ID)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if !decision.Allowed || len(paths) != 2 {
		t.Fatalf("compile result: %+v, %v", decision, paths)
	}

	stored, _ = env.books.GetByID(ctx, book.ID)
	if stored.OutputStatus != entity.OutputStatusCompleted {
		t.Errorf("output status = %q, want completed", stored.OutputStatus)
	}

	// 重复编译被幂等拒绝
	_, decision, err = env.compileSvc.Compile(ctx, book.ID)
	if err != nil {
		t.Fatalf("second Compile: %v", err)
	}
	if decision.Allowed || decision.Reason != "Book already compiled" {
		t.Errorf("second compile: %+v", decision)
	}
	if env.exporter.calls != 1 {
		t.Errorf("exporter called %d times, want 1", env.exporter.calls)
	}

	// 全程事件：大纲待审、两章待审、成书
	wantEvents := []string{
		entity.EventOutlineReady,
		entity.EventChapterReady, entity.EventChapterReady,
		entity.EventBookCompleted,
	}
	if len(env.publisher.events) != len(wantEvents) {
		t.Fatalf("events = %v, want %v", env.publisher.events, wantEvents)
	}
	for i, want := range wantEvents {
		if env.publisher.events[i] != want {
			t.Errorf("event %d = %q, want %q", i, env.publisher.events[i], want)
		}
	}
	if len(env.notifications.records) != len(wantEvents) {
		t.Errorf("expected %d journaled notifications, got %d", len(wantEvents), len(env.notifications.records))
	}
}

func TestOutlineRegenerationWithFeedback(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(0)
	book := env.addBook(ctx, "Test Book", "a mystery novel")

	if _, err := env.outlineSvc.Generate(ctx, book.ID); err != nil {
		t.Fatalf("first Generate: %v", err)
	}

	// 编辑要求按反馈重写
	stored, _ := env.books.GetByID(ctx, book.ID)
	stored.OutlineStatus = entity.ReviewStatusNotesPlanned
	stored.NotesAfter = "add a second detective"
	_ = env.books.Update(ctx, stored)

	decision, err := env.outlineSvc.Generate(ctx, book.ID)
	if err != nil {
		t.Fatalf("regenerate: %v", err)
	}
	if !decision.Allowed || decision.Reason != "Can regenerate with feedback" {
		t.Fatalf("regenerate decision: %+v", decision)
	}
	if env.reviser.calls != 1 {
		t.Errorf("reviser calls = %d, want 1", env.reviser.calls)
	}

	// 版本只追加，历史保留
	versions, _ := env.outlines.ListByBook(ctx, book.ID)
	if len(versions) != 2 || versions[1].Version != 2 {
		t.Fatalf("outline versions: %+v", versions)
	}
	if !strings.Contains(versions[1].OutlineText, "Revised outline") {
		t.Errorf("v2 text = %q", versions[1].OutlineText)
	}
}

func TestChapterRegenerationWithFeedback(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(0)
	book := env.addBook(ctx, "Test Book", "notes")
	env.setOutlineStatus(ctx, book.ID, entity.ReviewStatusApproved)
	_ = env.outlines.Create(ctx, entity.NewOutline(book.ID, defaultOutline, 1))

	if _, err := env.chapterSvc.Generate(ctx, book.ID, 1, "The Beginning of Everything"); err != nil {
		t.Fatalf("Generate: %v", err)
	}

	// 编辑留反馈
	ch, _ := env.chapters.GetByBookAndNumber(ctx, book.ID, 1)
	ch.NotesStatus = entity.ReviewStatusNotesPlanned
	ch.Notes = "slow down the pacing"
	_ = env.chapters.Update(ctx, ch)

	decision, err := env.chapterSvc.Generate(ctx, book.ID, 1, "The Beginning of Everything")
	if err != nil {
		t.Fatalf("regenerate: %v", err)
	}
	if !decision.Allowed {
		t.Fatalf("regeneration denied: %+v", decision)
	}
	if env.reviser.calls != 1 {
		t.Errorf("reviser calls = %d, want 1", env.reviser.calls)
	}

	// 同一记录被覆盖并重置为待审核
	ch, _ = env.chapters.GetByBookAndNumber(ctx, book.ID, 1)
	if ch.NotesStatus != entity.ReviewStatusPending {
		t.Errorf("status after regeneration = %q, want pending", ch.NotesStatus)
	}
	if !strings.Contains(ch.Content, "Revised chapter") {
		t.Errorf("content not revised: %q", ch.Content)
	}
	count, _ := env.chapters.CountByBook(ctx, book.ID)
	if count != 1 {
		t.Errorf("chapter count = %d, want 1 (in-place overwrite)", count)
	}
}

func TestGenerateAllHaltsOnFailure(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(0)
	env.chapterGen.failOn = 2
	env.chapterGen.err = errors.New("model unavailable")

	book := env.addBook(ctx, "Test Book", "notes")
	env.setOutlineStatus(ctx, book.ID, entity.ReviewStatusApproved)
	_ = env.outlines.Create(ctx, entity.NewOutline(book.ID, defaultOutline, 1))

	stats, err := env.chapterSvc.GenerateAll(ctx, book.ID)
	if err != nil {
		t.Fatalf("GenerateAll should swallow per-chapter errors into stats: %v", err)
	}
	if stats.Generated != 1 || stats.Failed != 1 {
		t.Fatalf("stats = %+v, want 1 generated then halt", stats)
	}

	count, _ := env.chapters.CountByBook(ctx, book.ID)
	if count != 1 {
		t.Errorf("chapter count = %d, want 1", count)
	}

	// 失败通过错误通知上报
	if len(env.publisher.events) == 0 || env.publisher.events[len(env.publisher.events)-1] != "error" {
		t.Errorf("expected trailing error event, got %v", env.publisher.events)
	}
}

func TestGenerateAllSkipsApprovedChapters(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(0)
	book := env.addBook(ctx, "Test Book", "notes")
	env.setOutlineStatus(ctx, book.ID, entity.ReviewStatusApproved)
	_ = env.outlines.Create(ctx, entity.NewOutline(book.ID, defaultOutline, 1))

	// 第一章已生成且已批准
	ch := entity.NewChapter(book.ID, 1, "The Beginning of Everything", "existing content")
	ch.NotesStatus = entity.ReviewStatusApproved
	_ = env.chapters.Create(ctx, ch)
	_ = env.summaries.Upsert(ctx, entity.NewChapterSummary(ch.ID, book.ID, "summary one"))

	stats, err := env.chapterSvc.GenerateAll(ctx, book.ID)
	if err != nil {
		t.Fatalf("GenerateAll: %v", err)
	}
	if stats.Skipped != 1 || stats.Generated != 1 {
		t.Fatalf("stats = %+v, want skip chapter 1 and generate chapter 2", stats)
	}
}

func TestChapterLimitCapsGeneration(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(1)
	book := env.addBook(ctx, "Test Book", "notes")
	env.setOutlineStatus(ctx, book.ID, entity.ReviewStatusApproved)
	_ = env.outlines.Create(ctx, entity.NewOutline(book.ID, defaultOutline, 1))

	stats, err := env.chapterSvc.GenerateAll(ctx, book.ID)
	if err != nil {
		t.Fatalf("GenerateAll: %v", err)
	}
	if stats.Total != 1 || stats.Generated != 1 {
		t.Fatalf("stats = %+v, want capped at 1", stats)
	}
}

func TestCompileFailureMarksBookFailed(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(0)
	env.exporter.err = errors.New("disk full")

	book := env.addBook(ctx, "Test Book", "notes")
	env.setOutlineStatus(ctx, book.ID, entity.ReviewStatusApproved)
	_ = env.outlines.Create(ctx, entity.NewOutline(book.ID, defaultOutline, 1))
	ch := entity.NewChapter(book.ID, 1, "The Beginning of Everything", "content")
	ch.NotesStatus = entity.ReviewStatusApproved
	_ = env.chapters.Create(ctx, ch)

	_, _, err := env.compileSvc.Compile(ctx, book.ID)
	if err == nil {
		t.Fatal("expected compile error")
	}

	stored, _ := env.books.GetByID(ctx, book.ID)
	if stored.OutputStatus != entity.OutputStatusFailed {
		t.Errorf("output status = %q, want failed", stored.OutputStatus)
	}

	// 大纲与章节记录保持不变
	outline, _ := env.outlines.GetLatestByBook(ctx, book.ID)
	if outline == nil {
		t.Error("outline lost after compile failure")
	}
	count, _ := env.chapters.CountByBook(ctx, book.ID)
	if count != 1 {
		t.Errorf("chapters lost after compile failure: %d", count)
	}
}

func TestOrchestratorRunAutoApprove(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(0)
	env.addBook(ctx, "Test Book", "an adventure story")

	orch := NewOrchestrator(
		env.books, env.outlines, env.chapters,
		env.outlineSvc, env.chapterSvc, env.compileSvc,
		true, true,
	)

	// 自动批准模式下一轮跑通全程：大纲 → 章节 → 编译
	stats, err := orch.Run(ctx)
	if err != nil {
		t.Fatalf("Run 1: %v", err)
	}
	if stats.OutlinesGenerated != 1 || stats.ChaptersGenerated != 2 || stats.BooksCompiled != 1 {
		t.Fatalf("run 1 stats: %+v", stats)
	}
	if len(stats.Errors) != 0 {
		t.Errorf("unexpected errors: %v", stats.Errors)
	}

	// 第二轮：已完成的书不在待处理列表，幂等
	stats, err = orch.Run(ctx)
	if err != nil {
		t.Fatalf("Run 2: %v", err)
	}
	if stats.OutlinesGenerated != 0 || stats.ChaptersGenerated != 0 || stats.BooksCompiled != 0 {
		t.Errorf("run 2 should be a no-op: %+v", stats)
	}
}

func TestOrchestratorRunBookStepwise(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(0)
	book := env.addBook(ctx, "Test Book", "an adventure story")

	orch := NewOrchestrator(
		env.books, env.outlines, env.chapters,
		env.outlineSvc, env.chapterSvc, env.compileSvc,
		false, false,
	)

	// 第一步：大纲
	result, err := orch.RunBook(ctx, book.ID)
	if err != nil {
		t.Fatalf("RunBook 1: %v", err)
	}
	if !result.OutlineGenerated || result.Reason != "Outline generated, waiting for editor approval" {
		t.Fatalf("step 1: %+v", result)
	}

	// 未批准前再跑一步：大纲被拒、章节不可生成、编译被拒
	result, err = orch.RunBook(ctx, book.ID)
	if err != nil {
		t.Fatalf("RunBook stalled: %v", err)
	}
	if result.OutlineGenerated || result.Compiled || result.ChaptersGenerated != 0 {
		t.Fatalf("stalled step should do nothing: %+v", result)
	}

	// 编辑批准大纲 → 章节
	env.setOutlineStatus(ctx, book.ID, entity.ReviewStatusApproved)
	result, err = orch.RunBook(ctx, book.ID)
	if err != nil {
		t.Fatalf("RunBook 2: %v", err)
	}
	if result.ChaptersGenerated != 2 || result.Reason != "Chapters generated, waiting for editor approval" {
		t.Fatalf("step 2: %+v", result)
	}

	// 编辑批准章节 → 编译
	env.setChapterStatus(ctx, book.ID, 1, entity.ReviewStatusApproved)
	env.setChapterStatus(ctx, book.ID, 2, entity.ReviewStatusApproved)
	result, err = orch.RunBook(ctx, book.ID)
	if err != nil {
		t.Fatalf("RunBook 3: %v", err)
	}
	if !result.Compiled || len(result.OutputFiles) != 2 {
		t.Fatalf("step 3: %+v", result)
	}
}
