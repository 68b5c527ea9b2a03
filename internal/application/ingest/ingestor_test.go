package ingest

import (
	"context"
	"strings"
	"testing"

	"bookdraft-api/internal/domain/entity"
	"bookdraft-api/internal/domain/repository"
	apperrors "bookdraft-api/pkg/errors"
)

type stubBookRepo struct {
	books map[string]*entity.Book // key: title
}

func newStubBookRepo() *stubBookRepo {
	return &stubBookRepo{books: make(map[string]*entity.Book)}
}

func (r *stubBookRepo) Create(_ context.Context, book *entity.Book) error {
	cp := *book
	r.books[book.Title] = &cp
	return nil
}

func (r *stubBookRepo) GetByID(_ context.Context, id string) (*entity.Book, error) {
	for _, b := range r.books {
		if b.ID == id {
			cp := *b
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *stubBookRepo) GetByTitle(_ context.Context, title string) (*entity.Book, error) {
	if b, ok := r.books[title]; ok {
		cp := *b
		return &cp, nil
	}
	return nil, nil
}

func (r *stubBookRepo) Update(_ context.Context, book *entity.Book) error {
	cp := *book
	r.books[book.Title] = &cp
	return nil
}

func (r *stubBookRepo) Delete(_ context.Context, id string) error {
	for title, b := range r.books {
		if b.ID == id {
			delete(r.books, title)
			return nil
		}
	}
	return nil
}

func (r *stubBookRepo) List(_ context.Context, _ *repository.BookFilter, pagination repository.Pagination) (*repository.PagedResult[*entity.Book], error) {
	books, _ := r.ListPending(context.Background())
	return repository.NewPagedResult(books, int64(len(books)), pagination), nil
}

func (r *stubBookRepo) ListPending(_ context.Context) ([]*entity.Book, error) {
	var out []*entity.Book
	for _, b := range r.books {
		cp := *b
		out = append(out, &cp)
	}
	return out, nil
}

func TestFromCSV(t *testing.T) {
	repo := newStubBookRepo()
	ing := NewIngestor(repo)

	csvData := `title,notes_before
The Lighthouse Keeper,a story about isolation
The Long Road, an epic journey across the steppe
,orphan notes without a title
Silent Harbor,
`
	ids, err := ing.FromCSV(context.Background(), strings.NewReader(csvData))
	if err != nil {
		t.Fatalf("FromCSV: %v", err)
	}
	if len(ids) != 3 {
		t.Fatalf("expected 3 books (empty title skipped), got %d", len(ids))
	}

	book, _ := repo.GetByTitle(context.Background(), "The Long Road")
	if book == nil {
		t.Fatal("book not created")
	}
	if book.NotesBefore != "an epic journey across the steppe" {
		t.Errorf("notes not trimmed: %q", book.NotesBefore)
	}
	if book.OutputStatus != entity.OutputStatusPending {
		t.Errorf("output status = %q, want pending", book.OutputStatus)
	}

	// notes_before 为空的书也会入库，等待编辑补充
	if b, _ := repo.GetByTitle(context.Background(), "Silent Harbor"); b == nil {
		t.Error("book without notes not created")
	}
}

func TestFromCSVHeaderCaseInsensitive(t *testing.T) {
	repo := newStubBookRepo()
	ing := NewIngestor(repo)

	csvData := `Title, Notes_Before
The Lighthouse Keeper,some notes
`
	ids, err := ing.FromCSV(context.Background(), strings.NewReader(csvData))
	if err != nil {
		t.Fatalf("FromCSV: %v", err)
	}
	if len(ids) != 1 {
		t.Errorf("expected 1 book, got %d", len(ids))
	}
}

func TestFromCSVMissingColumns(t *testing.T) {
	repo := newStubBookRepo()
	ing := NewIngestor(repo)

	_, err := ing.FromCSV(context.Background(), strings.NewReader("title,genre\nA Book,mystery\n"))
	if err == nil {
		t.Fatal("expected error for missing notes_before column")
	}
	if !apperrors.IsCode(err, apperrors.CodeIngestionFailed) {
		t.Errorf("unexpected error code: %v", err)
	}
}

func TestFromCSVUpsertByTitle(t *testing.T) {
	repo := newStubBookRepo()
	ing := NewIngestor(repo)
	ctx := context.Background()

	first, err := ing.Create(ctx, "The Lighthouse Keeper", "original notes")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// 编辑已批准大纲后重复导入同名书籍
	book, _ := repo.GetByTitle(context.Background(), "The Lighthouse Keeper")
	book.OutlineStatus = entity.ReviewStatusApproved
	_ = repo.Update(ctx, book)

	csvData := `title,notes_before
The Lighthouse Keeper,updated notes
`
	ids, err := ing.FromCSV(ctx, strings.NewReader(csvData))
	if err != nil {
		t.Fatalf("FromCSV: %v", err)
	}
	if len(ids) != 1 || ids[0] != first {
		t.Fatalf("expected existing book id %s, got %v", first, ids)
	}

	// 只更新 notes_before，不重置审核状态
	book, _ = repo.GetByTitle(context.Background(), "The Lighthouse Keeper")
	if book.NotesBefore != "updated notes" {
		t.Errorf("notes not updated: %q", book.NotesBefore)
	}
	if book.OutlineStatus != entity.ReviewStatusApproved {
		t.Errorf("review status reset to %q", book.OutlineStatus)
	}
}

func TestCreateRequiresTitle(t *testing.T) {
	ing := NewIngestor(newStubBookRepo())

	_, err := ing.Create(context.Background(), "   ", "notes")
	if err == nil {
		t.Fatal("expected error for empty title")
	}
	if !apperrors.IsCode(err, apperrors.CodeInvalidParam) {
		t.Errorf("unexpected error code: %v", err)
	}
}
