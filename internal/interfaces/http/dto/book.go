// Package dto 提供 HTTP 层数据传输对象
package dto

import (
	"time"

	"bookdraft-api/internal/domain/entity"
)

// CreateBookRequest 创建书籍请求
type CreateBookRequest struct {
	Title       string `json:"title" binding:"required"`
	NotesBefore string `json:"notes_before"`
}

// UpdateReviewRequest 编辑审核状态更新请求
// 三个字段均可选，只更新提交的字段。
type UpdateReviewRequest struct {
	OutlineStatus     *string `json:"outline_status,omitempty"`
	NotesAfter        *string `json:"notes_after,omitempty"`
	FinalReviewStatus *string `json:"final_review_status,omitempty"`
}

// BookResponse 书籍响应
type BookResponse struct {
	ID                string    `json:"id"`
	Title             string    `json:"title"`
	NotesBefore       string    `json:"notes_before"`
	NotesAfter        string    `json:"notes_after,omitempty"`
	OutlineStatus     string    `json:"outline_status"`
	FinalReviewStatus string    `json:"final_review_status"`
	OutputStatus      string    `json:"output_status"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// BookListResponse 书籍列表响应
type BookListResponse struct {
	Books []*BookResponse `json:"books"`
}

// ImportResponse 批量导入响应
type ImportResponse struct {
	BookIDs []string `json:"book_ids"`
	Count   int      `json:"count"`
}

// ToBookResponse 转换书籍实体为响应
func ToBookResponse(book *entity.Book) *BookResponse {
	if book == nil {
		return nil
	}
	return &BookResponse{
		ID:                book.ID,
		Title:             book.Title,
		NotesBefore:       book.NotesBefore,
		NotesAfter:        book.NotesAfter,
		OutlineStatus:     string(book.OutlineStatus),
		FinalReviewStatus: string(book.FinalReviewStatus),
		OutputStatus:      string(book.OutputStatus),
		CreatedAt:         book.CreatedAt,
		UpdatedAt:         book.UpdatedAt,
	}
}

// ToBookListResponse 转换书籍实体列表为响应
func ToBookListResponse(books []*entity.Book) *BookListResponse {
	out := make([]*BookResponse, 0, len(books))
	for _, b := range books {
		out = append(out, ToBookResponse(b))
	}
	return &BookListResponse{Books: out}
}
