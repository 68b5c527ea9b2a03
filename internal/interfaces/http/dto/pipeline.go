// Package dto 提供 HTTP 层数据传输对象
package dto

import (
	"bookdraft-api/internal/application/pipeline"
)

// CompileResponse 编译结果响应
type CompileResponse struct {
	Compiled    bool     `json:"compiled"`
	Reason      string   `json:"reason,omitempty"`
	OutputFiles []string `json:"output_files,omitempty"`
}

// WorkflowStatsResponse 整轮流水线统计响应
type WorkflowStatsResponse struct {
	OutlinesGenerated int      `json:"outlines_generated"`
	ChaptersGenerated int      `json:"chapters_generated"`
	BooksCompiled     int      `json:"books_compiled"`
	Errors            []string `json:"errors,omitempty"`
}

// BookRunResponse 单本书流水线推进响应
type BookRunResponse struct {
	BookID            string   `json:"book_id"`
	OutlineGenerated  bool     `json:"outline_generated"`
	ChaptersGenerated int      `json:"chapters_generated"`
	Compiled          bool     `json:"compiled"`
	OutputFiles       []string `json:"output_files,omitempty"`
	Reason            string   `json:"reason,omitempty"`
}

// ToWorkflowStatsResponse 转换流水线统计为响应
func ToWorkflowStatsResponse(stats *pipeline.WorkflowStats) *WorkflowStatsResponse {
	if stats == nil {
		return nil
	}
	return &WorkflowStatsResponse{
		OutlinesGenerated: stats.OutlinesGenerated,
		ChaptersGenerated: stats.ChaptersGenerated,
		BooksCompiled:     stats.BooksCompiled,
		Errors:            stats.Errors,
	}
}

// ToBookRunResponse 转换单本书结果为响应
func ToBookRunResponse(result *pipeline.BookResult) *BookRunResponse {
	if result == nil {
		return nil
	}
	return &BookRunResponse{
		BookID:            result.BookID,
		OutlineGenerated:  result.OutlineGenerated,
		ChaptersGenerated: result.ChaptersGenerated,
		Compiled:          result.Compiled,
		OutputFiles:       result.OutputFiles,
		Reason:            result.Reason,
	}
}
