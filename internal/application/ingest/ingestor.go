// Package ingest 实现书籍请求的批量导入
package ingest

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"bookdraft-api/internal/domain/entity"
	"bookdraft-api/internal/domain/repository"
	apperrors "bookdraft-api/pkg/errors"
	"bookdraft-api/pkg/logger"
)

// CSV 必需列
const (
	columnTitle       = "title"
	columnNotesBefore = "notes_before"
)

// Ingestor 书籍导入服务
// 按标题去重：已存在的书只更新 notes_before，不重置审核状态。
type Ingestor struct {
	books repository.BookRepository
}

// NewIngestor 创建导入服务
func NewIngestor(books repository.BookRepository) *Ingestor {
	return &Ingestor{books: books}
}

// FromCSV 从 CSV 数据导入书籍，返回涉及的书籍 ID 列表
// 要求首行为表头，必需列 title、notes_before；标题为空的行跳过。
func (s *Ingestor) FromCSV(ctx context.Context, r io.Reader) ([]string, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeIngestionFailed, "failed to read csv header")
	}

	titleIdx, notesIdx := -1, -1
	for i, col := range header {
		switch strings.ToLower(strings.TrimSpace(col)) {
		case columnTitle:
			titleIdx = i
		case columnNotesBefore:
			notesIdx = i
		}
	}
	if titleIdx < 0 || notesIdx < 0 {
		return nil, apperrors.New(apperrors.CodeIngestionFailed,
			fmt.Sprintf("missing required columns: need %q and %q", columnTitle, columnNotesBefore))
	}

	var bookIDs []string
	rowNum := 1

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.CodeIngestionFailed,
				fmt.Sprintf("failed to read csv row %d", rowNum+1))
		}
		rowNum++

		title := ""
		if titleIdx < len(row) {
			title = strings.TrimSpace(row[titleIdx])
		}
		notesBefore := ""
		if notesIdx < len(row) {
			notesBefore = strings.TrimSpace(row[notesIdx])
		}

		if title == "" {
			logger.Warn(ctx, "skipping row with empty title", "row", rowNum)
			continue
		}

		id, err := s.upsert(ctx, title, notesBefore)
		if err != nil {
			return nil, err
		}
		bookIDs = append(bookIDs, id)
	}

	logger.Info(ctx, "ingestion complete", "books", len(bookIDs))
	return bookIDs, nil
}

// Create 创建或更新单本书籍请求
func (s *Ingestor) Create(ctx context.Context, title, notesBefore string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", apperrors.New(apperrors.CodeInvalidParam, "title is required")
	}
	return s.upsert(ctx, title, strings.TrimSpace(notesBefore))
}

func (s *Ingestor) upsert(ctx context.Context, title, notesBefore string) (string, error) {
	existing, err := s.books.GetByTitle(ctx, title)
	if err != nil {
		return "", err
	}

	if existing != nil {
		logger.Info(ctx, "book already exists, updating", "title", title, "book_id", existing.ID)
		existing.NotesBefore = notesBefore
		if err := s.books.Update(ctx, existing); err != nil {
			return "", err
		}
		return existing.ID, nil
	}

	book := entity.NewBook(title, notesBefore)
	if err := s.books.Create(ctx, book); err != nil {
		return "", err
	}
	logger.Info(ctx, "book created", "title", title, "book_id", book.ID)
	return book.ID, nil
}
