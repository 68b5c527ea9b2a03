package pipeline

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/cloudwego/eino/schema"

	"bookdraft-api/internal/domain/entity"
	"bookdraft-api/internal/domain/repository"
	"bookdraft-api/internal/infrastructure/messaging"
	wfmodel "bookdraft-api/internal/workflow/model"
)

// 内存仓储实现，供流水线测试使用

type memBookRepo struct {
	mu    sync.Mutex
	books map[string]*entity.Book
}

func newMemBookRepo() *memBookRepo {
	return &memBookRepo{books: make(map[string]*entity.Book)}
}

func (r *memBookRepo) Create(_ context.Context, book *entity.Book) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *book
	r.books[book.ID] = &cp
	return nil
}

func (r *memBookRepo) GetByID(_ context.Context, id string) (*entity.Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if b, ok := r.books[id]; ok {
		cp := *b
		return &cp, nil
	}
	return nil, nil
}

func (r *memBookRepo) GetByTitle(_ context.Context, title string) (*entity.Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.books {
		if b.Title == title {
			cp := *b
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memBookRepo) Update(_ context.Context, book *entity.Book) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *book
	r.books[book.ID] = &cp
	return nil
}

func (r *memBookRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.books, id)
	return nil
}

func (r *memBookRepo) List(_ context.Context, _ *repository.BookFilter, pagination repository.Pagination) (*repository.PagedResult[*entity.Book], error) {
	books, _ := r.ListPending(context.Background())
	return repository.NewPagedResult(books, int64(len(books)), pagination), nil
}

func (r *memBookRepo) ListPending(_ context.Context) ([]*entity.Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var books []*entity.Book
	for _, b := range r.books {
		if b.OutputStatus == entity.OutputStatusCompleted || b.OutputStatus == entity.OutputStatusFailed {
			continue
		}
		cp := *b
		books = append(books, &cp)
	}
	sort.Slice(books, func(i, j int) bool { return books[i].CreatedAt.Before(books[j].CreatedAt) })
	return books, nil
}

type memOutlineRepo struct {
	mu       sync.Mutex
	outlines []*entity.Outline
}

func newMemOutlineRepo() *memOutlineRepo {
	return &memOutlineRepo{}
}

func (r *memOutlineRepo) Create(_ context.Context, outline *entity.Outline) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *outline
	r.outlines = append(r.outlines, &cp)
	return nil
}

func (r *memOutlineRepo) GetLatestByBook(_ context.Context, bookID string) (*entity.Outline, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var latest *entity.Outline
	for _, o := range r.outlines {
		if o.BookID != bookID {
			continue
		}
		if latest == nil || o.Version > latest.Version {
			latest = o
		}
	}
	if latest == nil {
		return nil, nil
	}
	cp := *latest
	return &cp, nil
}

func (r *memOutlineRepo) GetByBookAndVersion(_ context.Context, bookID string, version int) (*entity.Outline, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.outlines {
		if o.BookID == bookID && o.Version == version {
			cp := *o
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memOutlineRepo) ListByBook(_ context.Context, bookID string) ([]*entity.Outline, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Outline
	for _, o := range r.outlines {
		if o.BookID == bookID {
			cp := *o
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}

func (r *memOutlineRepo) NextVersion(ctx context.Context, bookID string) (int, error) {
	latest, _ := r.GetLatestByBook(ctx, bookID)
	if latest == nil {
		return 1, nil
	}
	return latest.Version + 1, nil
}

type memChapterRepo struct {
	mu       sync.Mutex
	chapters map[string]*entity.Chapter // key: bookID/number
}

func newMemChapterRepo() *memChapterRepo {
	return &memChapterRepo{chapters: make(map[string]*entity.Chapter)}
}

func chapterKey(bookID string, number int) string {
	return fmt.Sprintf("%s/%d", bookID, number)
}

func (r *memChapterRepo) Create(_ context.Context, chapter *entity.Chapter) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := chapterKey(chapter.BookID, chapter.ChapterNumber)
	if _, exists := r.chapters[key]; exists {
		return fmt.Errorf("duplicate chapter %s", key)
	}
	cp := *chapter
	r.chapters[key] = &cp
	return nil
}

func (r *memChapterRepo) GetByID(_ context.Context, id string) (*entity.Chapter, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ch := range r.chapters {
		if ch.ID == id {
			cp := *ch
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memChapterRepo) GetByBookAndNumber(_ context.Context, bookID string, number int) (*entity.Chapter, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ch, ok := r.chapters[chapterKey(bookID, number)]; ok {
		cp := *ch
		return &cp, nil
	}
	return nil, nil
}

func (r *memChapterRepo) Update(_ context.Context, chapter *entity.Chapter) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *chapter
	r.chapters[chapterKey(chapter.BookID, chapter.ChapterNumber)] = &cp
	return nil
}

func (r *memChapterRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key, ch := range r.chapters {
		if ch.ID == id {
			delete(r.chapters, key)
			return nil
		}
	}
	return nil
}

func (r *memChapterRepo) ListByBook(_ context.Context, bookID string) ([]*entity.Chapter, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Chapter
	for _, ch := range r.chapters {
		if ch.BookID == bookID {
			cp := *ch
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ChapterNumber < out[j].ChapterNumber })
	return out, nil
}

func (r *memChapterRepo) CountByBook(ctx context.Context, bookID string) (int64, error) {
	chapters, _ := r.ListByBook(ctx, bookID)
	return int64(len(chapters)), nil
}

type memSummaryRepo struct {
	mu        sync.Mutex
	summaries map[string]*entity.ChapterSummary // key: chapterID
}

func newMemSummaryRepo() *memSummaryRepo {
	return &memSummaryRepo{summaries: make(map[string]*entity.ChapterSummary)}
}

func (r *memSummaryRepo) Upsert(_ context.Context, summary *entity.ChapterSummary) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *summary
	r.summaries[summary.ChapterID] = &cp
	return nil
}

func (r *memSummaryRepo) GetByChapter(_ context.Context, chapterID string) (*entity.ChapterSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.summaries[chapterID]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, nil
}

func (r *memSummaryRepo) ListByBook(_ context.Context, bookID string) ([]*entity.ChapterSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.ChapterSummary
	for _, s := range r.summaries {
		if s.BookID == bookID {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memSummaryRepo) deleteByChapter(chapterID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.summaries, chapterID)
}

type memNotificationRepo struct {
	mu      sync.Mutex
	records []*entity.Notification
}

func newMemNotificationRepo() *memNotificationRepo {
	return &memNotificationRepo{}
}

func (r *memNotificationRepo) Create(_ context.Context, n *entity.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *n
	r.records = append(r.records, &cp)
	return nil
}

func (r *memNotificationRepo) ListByBook(_ context.Context, bookID string, pagination repository.Pagination) (*repository.PagedResult[*entity.Notification], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Notification
	for _, n := range r.records {
		if n.BookID == bookID {
			cp := *n
			out = append(out, &cp)
		}
	}
	return repository.NewPagedResult(out, int64(len(out)), pagination), nil
}

// 工作流假实现：可编程返回内容或错误，并记录调用次数

type fakeOutlineInvoker struct {
	mu      sync.Mutex
	calls   int
	content string
	err     error
}

func (f *fakeOutlineInvoker) Invoke(_ context.Context, _ *wfmodel.OutlineGenerateInput) (*schema.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &schema.Message{Content: f.content}, nil
}

type fakeChapterInvoker struct {
	mu    sync.Mutex
	calls int
	// failOn 指定第几次调用开始返回错误；0 表示不失败
	failOn int
	err    error
}

func (f *fakeChapterInvoker) Invoke(_ context.Context, in *wfmodel.ChapterGenerateInput) (*schema.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.failOn > 0 && f.calls >= f.failOn {
		return nil, f.err
	}
	return &schema.Message{
		Content: fmt.Sprintf("Content of chapter %d: %s", in.ChapterNumber, in.ChapterTitle),
	}, nil
}

type fakeSummaryInvoker struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (f *fakeSummaryInvoker) Invoke(_ context.Context, in *wfmodel.SummaryGenerateInput) (*schema.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &schema.Message{Content: "Summary of " + in.ChapterTitle}, nil
}

type fakeRevisionInvoker struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (f *fakeRevisionInvoker) Invoke(_ context.Context, in *wfmodel.RevisionInput) (*schema.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if _, _, err := in.Payload(); err != nil {
		return nil, err
	}
	return &schema.Message{Content: "Revised " + string(in.Target) + " per feedback"}, nil
}

type fakeExporter struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (f *fakeExporter) Render(_ context.Context, book *entity.Book, _ string, _ []*entity.Chapter) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return []string{"output/" + book.Title + ".txt", "output/" + book.Title + ".md"}, nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []string
	err    error
}

func (f *fakePublisher) PublishReviewEvent(_ context.Context, event *messaging.ReviewEventMessage) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	f.events = append(f.events, event.EventType)
	return "1-0", nil
}

func (f *fakePublisher) PublishPipelineError(_ context.Context, _ *messaging.PipelineErrorMessage) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	f.events = append(f.events, "error")
	return "1-0", nil
}

// memTx 直接执行回调，内存仓储没有事务语义
type memTx struct{}

func (memTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// testEnv 组装一套完整的内存流水线
type testEnv struct {
	books         *memBookRepo
	outlines      *memOutlineRepo
	chapters      *memChapterRepo
	summaries     *memSummaryRepo
	notifications *memNotificationRepo

	outlineGen *fakeOutlineInvoker
	chapterGen *fakeChapterInvoker
	summaryGen *fakeSummaryInvoker
	reviser    *fakeRevisionInvoker
	exporter   *fakeExporter
	publisher  *fakePublisher

	outlineSvc *OutlineService
	chapterSvc *ChapterService
	compileSvc *CompileService
}

func newTestEnv(maxChapters int) *testEnv {
	env := &testEnv{
		books:         newMemBookRepo(),
		outlines:      newMemOutlineRepo(),
		chapters:      newMemChapterRepo(),
		summaries:     newMemSummaryRepo(),
		notifications: newMemNotificationRepo(),
		outlineGen:    &fakeOutlineInvoker{content: defaultOutline},
		chapterGen:    &fakeChapterInvoker{},
		summaryGen:    &fakeSummaryInvoker{},
		reviser:       &fakeRevisionInvoker{},
		exporter:      &fakeExporter{},
		publisher:     &fakePublisher{},
	}

	notifier := NewNotifier(env.notifications, env.publisher)
	chain := NewContextChain(env.chapters, env.summaries, env.summaryGen, "groq")

	env.outlineSvc = NewOutlineService(env.books, env.outlines, memTx{}, env.outlineGen, env.reviser, notifier, "groq")
	env.chapterSvc = NewChapterService(
		env.books, env.outlines, env.chapters, env.summaries, memTx{},
		env.chapterGen, env.summaryGen, env.reviser, chain, notifier, "groq", maxChapters,
	)
	env.compileSvc = NewCompileService(env.books, env.outlines, env.chapters, env.exporter, notifier)
	return env
}

const defaultOutline = `Book Outline

Chapter 1: The Beginning of Everything
Chapter 2: The Long Middle Road
`

func (env *testEnv) addBook(ctx context.Context, title, notesBefore string) *entity.Book {
	book := entity.NewBook(title, notesBefore)
	_ = env.books.Create(ctx, book)
	return book
}

func (env *testEnv) setOutlineStatus(ctx context.Context, bookID string, status entity.ReviewStatus) {
	book, _ := env.books.GetByID(ctx, bookID)
	book.OutlineStatus = status
	_ = env.books.Update(ctx, book)
}

func (env *testEnv) setChapterStatus(ctx context.Context, bookID string, number int, status entity.ReviewStatus) {
	ch, _ := env.chapters.GetByBookAndNumber(ctx, bookID, number)
	ch.NotesStatus = status
	_ = env.chapters.Update(ctx, ch)
}
