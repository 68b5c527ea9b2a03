// Package handler 提供 HTTP 请求处理器
package handler

import (
	"bookdraft-api/internal/application/pipeline"
	"bookdraft-api/internal/interfaces/http/dto"
	"bookdraft-api/pkg/logger"

	"github.com/gin-gonic/gin"
)

// PipelineHandler 流水线处理器
type PipelineHandler struct {
	orchestrator *pipeline.Orchestrator
}

// NewPipelineHandler 创建流水线处理器
func NewPipelineHandler(orchestrator *pipeline.Orchestrator) *PipelineHandler {
	return &PipelineHandler{orchestrator: orchestrator}
}

// RunPipeline 执行一轮完整流水线
// @Summary 执行一轮完整流水线
// @Description 扫描全部未完成书籍，依次推进大纲、章节和编译阶段
// @Tags Pipeline
// @Produce json
// @Success 200 {object} dto.Response[dto.WorkflowStatsResponse]
// @Failure 500 {object} dto.ErrorResponse
// @Router /v1/pipeline/run [post]
func (h *PipelineHandler) RunPipeline(c *gin.Context) {
	ctx := c.Request.Context()

	stats, err := h.orchestrator.Run(ctx)
	if err != nil {
		logger.Error(ctx, "pipeline run failed", err)
		dto.InternalError(c, "pipeline run failed")
		return
	}

	dto.Success(c, dto.ToWorkflowStatsResponse(stats))
}

// RunBook 对单本书推进一步流水线
// @Summary 对单本书推进一步流水线
// @Description 每次调用只推进一个阶段，阶段间等待编辑审核
// @Tags Pipeline
// @Produce json
// @Param bid path string true "书籍 ID"
// @Success 200 {object} dto.Response[dto.BookRunResponse]
// @Failure 500 {object} dto.ErrorResponse
// @Router /v1/books/{bid}/run [post]
func (h *PipelineHandler) RunBook(c *gin.Context) {
	ctx := c.Request.Context()
	bookID := dto.BindBookID(c)

	result, err := h.orchestrator.RunBook(ctx, bookID)
	if err != nil {
		logger.Error(ctx, "book pipeline run failed", err, "book_id", bookID)
		dto.InternalError(c, "book pipeline run failed")
		return
	}

	dto.Success(c, dto.ToBookRunResponse(result))
}
