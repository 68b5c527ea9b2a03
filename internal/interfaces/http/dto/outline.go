// Package dto 提供 HTTP 层数据传输对象
package dto

import (
	"time"

	"bookdraft-api/internal/application/pipeline"
	"bookdraft-api/internal/domain/entity"
)

// OutlineResponse 大纲响应
type OutlineResponse struct {
	ID          string    `json:"id"`
	BookID      string    `json:"book_id"`
	Version     int       `json:"version"`
	OutlineText string    `json:"outline_text"`
	CreatedAt   time.Time `json:"created_at"`
}

// OutlineListResponse 大纲版本列表响应
type OutlineListResponse struct {
	Outlines []*OutlineResponse `json:"outlines"`
}

// DecisionResponse 门控判定响应
type DecisionResponse struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason"`
}

// ToOutlineResponse 转换大纲实体为响应
func ToOutlineResponse(outline *entity.Outline) *OutlineResponse {
	if outline == nil {
		return nil
	}
	return &OutlineResponse{
		ID:          outline.ID,
		BookID:      outline.BookID,
		Version:     outline.Version,
		OutlineText: outline.OutlineText,
		CreatedAt:   outline.CreatedAt,
	}
}

// ToOutlineListResponse 转换大纲实体列表为响应
func ToOutlineListResponse(outlines []*entity.Outline) *OutlineListResponse {
	out := make([]*OutlineResponse, 0, len(outlines))
	for _, o := range outlines {
		out = append(out, ToOutlineResponse(o))
	}
	return &OutlineListResponse{Outlines: out}
}

// ToDecisionResponse 转换门控判定为响应
func ToDecisionResponse(d pipeline.Decision) *DecisionResponse {
	return &DecisionResponse{
		Allowed: d.Allowed,
		Reason:  d.Reason,
	}
}
