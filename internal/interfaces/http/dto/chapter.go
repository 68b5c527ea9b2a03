// Package dto 提供 HTTP 层数据传输对象
package dto

import (
	"time"

	"bookdraft-api/internal/application/pipeline"
	"bookdraft-api/internal/domain/entity"
)

// GenerateChapterRequest 单章生成请求
type GenerateChapterRequest struct {
	Title string `json:"title"`
}

// ChapterReviewRequest 章节审核更新请求
type ChapterReviewRequest struct {
	NotesStatus *string `json:"notes_status,omitempty"`
	Notes       *string `json:"notes,omitempty"`
}

// ChapterResponse 章节响应
type ChapterResponse struct {
	ID            string    `json:"id"`
	BookID        string    `json:"book_id"`
	ChapterNumber int       `json:"chapter_number"`
	Title         string    `json:"title"`
	Content       string    `json:"content,omitempty"`
	NotesStatus   string    `json:"notes_status"`
	Notes         string    `json:"notes,omitempty"`
	WordCount     int       `json:"word_count"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ChapterListResponse 章节列表响应
type ChapterListResponse struct {
	Chapters []*ChapterResponse `json:"chapters"`
}

// GenStatsResponse 批量生成统计响应
type GenStatsResponse struct {
	Total     int `json:"total"`
	Generated int `json:"generated"`
	Skipped   int `json:"skipped"`
	Failed    int `json:"failed"`
}

// ToChapterResponse 转换章节实体为响应
// includeContent 为 false 时省略正文（列表场景）。
func ToChapterResponse(chapter *entity.Chapter, includeContent bool) *ChapterResponse {
	if chapter == nil {
		return nil
	}
	resp := &ChapterResponse{
		ID:            chapter.ID,
		BookID:        chapter.BookID,
		ChapterNumber: chapter.ChapterNumber,
		Title:         chapter.Title,
		NotesStatus:   string(chapter.NotesStatus),
		Notes:         chapter.Notes,
		WordCount:     chapter.WordCount,
		CreatedAt:     chapter.CreatedAt,
		UpdatedAt:     chapter.UpdatedAt,
	}
	if includeContent {
		resp.Content = chapter.Content
	}
	return resp
}

// ToChapterListResponse 转换章节实体列表为响应
func ToChapterListResponse(chapters []*entity.Chapter) *ChapterListResponse {
	out := make([]*ChapterResponse, 0, len(chapters))
	for _, ch := range chapters {
		out = append(out, ToChapterResponse(ch, false))
	}
	return &ChapterListResponse{Chapters: out}
}

// ToGenStatsResponse 转换生成统计为响应
func ToGenStatsResponse(stats pipeline.GenStats) *GenStatsResponse {
	return &GenStatsResponse{
		Total:     stats.Total,
		Generated: stats.Generated,
		Skipped:   stats.Skipped,
		Failed:    stats.Failed,
	}
}
