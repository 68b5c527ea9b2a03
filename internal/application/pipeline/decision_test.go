package pipeline

import (
	"testing"

	"bookdraft-api/internal/domain/entity"
)

func testBook(outlineStatus entity.ReviewStatus) *entity.Book {
	b := entity.NewBook("Test Book", "an adventure story")
	b.OutlineStatus = outlineStatus
	return b
}

func testChapter(bookID string, number int, status entity.ReviewStatus) *entity.Chapter {
	ch := entity.NewChapter(bookID, number, "Some Chapter", "content")
	ch.NotesStatus = status
	return ch
}

func TestCanGenerateOutline(t *testing.T) {
	outline := entity.NewOutline("book-1", "Chapter 1: Start Here Now", 1)

	tests := []struct {
		name       string
		book       *entity.Book
		latest     *entity.Outline
		allowed    bool
		wantReason string
	}{
		{
			name:       "nil book",
			book:       nil,
			allowed:    false,
			wantReason: "Book not found",
		},
		{
			name: "missing notes_before",
			book: func() *entity.Book {
				b := testBook(entity.ReviewStatusEmpty)
				b.NotesBefore = ""
				return b
			}(),
			allowed:    false,
			wantReason: "notes_before is required before generating outline",
		},
		{
			name:       "no outline yet",
			book:       testBook(entity.ReviewStatusEmpty),
			allowed:    true,
			wantReason: "Ready to generate outline",
		},
		{
			name:       "already approved",
			book:       testBook(entity.ReviewStatusApproved),
			latest:     outline,
			allowed:    false,
			wantReason: "Outline already approved, ready for chapter generation",
		},
		{
			name: "notes planned with feedback",
			book: func() *entity.Book {
				b := testBook(entity.ReviewStatusNotesPlanned)
				b.NotesAfter = "make it darker"
				return b
			}(),
			latest:     outline,
			allowed:    true,
			wantReason: "Can regenerate with feedback",
		},
		{
			name:       "notes planned without feedback",
			book:       testBook(entity.ReviewStatusNotesPlanned),
			latest:     outline,
			allowed:    false,
			wantReason: "Waiting for editor notes (notes_after)",
		},
		{
			name:       "paused",
			book:       testBook(entity.ReviewStatusPaused),
			latest:     outline,
			allowed:    false,
			wantReason: "Outline paused - awaiting editor review",
		},
		{
			name:       "pending review",
			book:       testBook(entity.ReviewStatusPending),
			latest:     outline,
			allowed:    false,
			wantReason: "Outline paused - awaiting editor review",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CanGenerateOutline(tt.book, tt.latest)
			if got.Allowed != tt.allowed {
				t.Errorf("Allowed = %v, want %v (reason: %s)", got.Allowed, tt.allowed, got.Reason)
			}
			if got.Reason != tt.wantReason {
				t.Errorf("Reason = %q, want %q", got.Reason, tt.wantReason)
			}
		})
	}
}

func TestCanGenerateChapterRequiresApprovedOutline(t *testing.T) {
	book := testBook(entity.ReviewStatusPending)
	outline := entity.NewOutline(book.ID, "Chapter 1: Start Here Now", 1)

	got := CanGenerateChapter(book, outline, nil, nil, 1)
	if got.Allowed {
		t.Fatalf("chapter 1 should be denied without approved outline, got %+v", got)
	}
	if got.Reason != "Outline not approved yet (status: pending)" {
		t.Errorf("Reason = %q", got.Reason)
	}
}

func TestCanGenerateChapterSequentialOrder(t *testing.T) {
	book := testBook(entity.ReviewStatusApproved)
	outline := entity.NewOutline(book.ID, "whatever", 1)

	// 前一章不存在
	got := CanGenerateChapter(book, outline, nil, nil, 3)
	if got.Allowed || got.Reason != "Previous chapter 2 not generated yet" {
		t.Errorf("chapter without predecessor: %+v", got)
	}

	// 前一章被编辑暂停
	prev := testChapter(book.ID, 2, entity.ReviewStatusPaused)
	got = CanGenerateChapter(book, outline, nil, prev, 3)
	if got.Allowed || got.Reason != "Previous chapter 2 not approved yet" {
		t.Errorf("chapter with paused predecessor: %+v", got)
	}

	// 前一章待审：可以继续推进，审批在编译阶段把关
	prev = testChapter(book.ID, 2, entity.ReviewStatusPending)
	got = CanGenerateChapter(book, outline, nil, prev, 3)
	if !got.Allowed || got.Reason != "Ready to generate chapter" {
		t.Errorf("chapter with pending predecessor: %+v", got)
	}

	// 第一章无前置约束
	got = CanGenerateChapter(book, outline, nil, nil, 1)
	if !got.Allowed {
		t.Errorf("first chapter should be allowed: %+v", got)
	}
}

func TestCanGenerateChapterExistingStates(t *testing.T) {
	book := testBook(entity.ReviewStatusApproved)
	outline := entity.NewOutline(book.ID, "whatever", 1)

	approved := testChapter(book.ID, 2, entity.ReviewStatusApproved)
	got := CanGenerateChapter(book, outline, approved, nil, 2)
	if got.Allowed || got.Reason != "Chapter 2 already approved" {
		t.Errorf("approved chapter: %+v", got)
	}

	withNotes := testChapter(book.ID, 2, entity.ReviewStatusNotesPlanned)
	withNotes.Notes = "expand the dialogue"
	got = CanGenerateChapter(book, outline, withNotes, nil, 2)
	if !got.Allowed || got.Reason != "Can regenerate with feedback" {
		t.Errorf("chapter with feedback: %+v", got)
	}

	waiting := testChapter(book.ID, 2, entity.ReviewStatusNotesPlanned)
	got = CanGenerateChapter(book, outline, waiting, nil, 2)
	if got.Allowed || got.Reason != "Waiting for editor notes on chapter 2" {
		t.Errorf("chapter waiting for notes: %+v", got)
	}

	pending := testChapter(book.ID, 2, entity.ReviewStatusPending)
	got = CanGenerateChapter(book, outline, pending, nil, 2)
	if got.Allowed || got.Reason != "Chapter 2 paused - awaiting editor review" {
		t.Errorf("pending chapter: %+v", got)
	}
}

func TestCanCompile(t *testing.T) {
	book := testBook(entity.ReviewStatusApproved)
	chapters := []*entity.Chapter{
		testChapter(book.ID, 1, entity.ReviewStatusApproved),
		testChapter(book.ID, 2, entity.ReviewStatusApproved),
	}

	got := CanCompile(book, chapters)
	if !got.Allowed || got.Reason != "Ready to compile" {
		t.Fatalf("fully approved book: %+v", got)
	}

	// 编辑暂停终审
	book.FinalReviewStatus = entity.ReviewStatusPaused
	if got := CanCompile(book, chapters); got.Allowed || got.Reason != "Final compilation paused by editor" {
		t.Errorf("paused final review: %+v", got)
	}
	book.FinalReviewStatus = entity.ReviewStatusEmpty

	// 大纲未批准
	unapproved := testBook(entity.ReviewStatusPending)
	if got := CanCompile(unapproved, chapters); got.Allowed || got.Reason != "Outline not approved (status: pending)" {
		t.Errorf("unapproved outline: %+v", got)
	}

	// 无章节
	if got := CanCompile(book, nil); got.Allowed || got.Reason != "No chapters found" {
		t.Errorf("no chapters: %+v", got)
	}

	// 存在被暂停的章节
	mixed := []*entity.Chapter{
		testChapter(book.ID, 1, entity.ReviewStatusApproved),
		testChapter(book.ID, 2, entity.ReviewStatusPaused),
	}
	if got := CanCompile(book, mixed); got.Allowed || got.Reason != "Chapter 2 not approved (status: no)" {
		t.Errorf("paused chapter: %+v", got)
	}
}

func TestCanCompileCompletedBookIsIdempotent(t *testing.T) {
	book := testBook(entity.ReviewStatusApproved)
	book.OutputStatus = entity.OutputStatusCompleted
	chapters := []*entity.Chapter{testChapter(book.ID, 1, entity.ReviewStatusApproved)}

	first := CanCompile(book, chapters)
	second := CanCompile(book, chapters)
	if first.Allowed || second.Allowed {
		t.Fatalf("completed book must not recompile: %+v, %+v", first, second)
	}
	if first.Reason != "Book already compiled" || first != second {
		t.Errorf("expected stable reason, got %+v then %+v", first, second)
	}
}
