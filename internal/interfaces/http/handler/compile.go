// Package handler 提供 HTTP 请求处理器
package handler

import (
	"bookdraft-api/internal/application/pipeline"
	rediscache "bookdraft-api/internal/infrastructure/persistence/redis"
	"bookdraft-api/internal/interfaces/http/dto"
	"bookdraft-api/pkg/logger"

	"github.com/gin-gonic/gin"
)

// CompileHandler 编译处理器
type CompileHandler struct {
	compileSvc *pipeline.CompileService
	cache      *rediscache.Cache
}

// NewCompileHandler 创建编译处理器
func NewCompileHandler(compileSvc *pipeline.CompileService, cache *rediscache.Cache) *CompileHandler {
	return &CompileHandler{
		compileSvc: compileSvc,
		cache:      cache,
	}
}

// CompileBook 编译成稿
// @Summary 编译成稿
// @Description 门控通过时导出全部格式；拒绝时返回 409 和原因
// @Tags Compile
// @Produce json
// @Param bid path string true "书籍 ID"
// @Success 200 {object} dto.Response[dto.CompileResponse]
// @Failure 409 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /v1/books/{bid}/compile [post]
func (h *CompileHandler) CompileBook(c *gin.Context) {
	ctx := c.Request.Context()
	bookID := dto.BindBookID(c)

	paths, decision, err := h.compileSvc.Compile(ctx, bookID)
	if err != nil {
		logger.Error(ctx, "book compilation failed", err, "book_id", bookID)
		dto.InternalError(c, "book compilation failed")
		return
	}
	if !decision.Allowed {
		dto.Conflict(c, decision.Reason)
		return
	}

	h.invalidate(c, bookID)
	dto.Success(c, &dto.CompileResponse{
		Compiled:    true,
		OutputFiles: paths,
	})
}

// CheckCompile 查询编译门控
// @Summary 查询编译门控
// @Tags Compile
// @Produce json
// @Param bid path string true "书籍 ID"
// @Success 200 {object} dto.Response[dto.DecisionResponse]
// @Failure 500 {object} dto.ErrorResponse
// @Router /v1/books/{bid}/compile/check [get]
func (h *CompileHandler) CheckCompile(c *gin.Context) {
	ctx := c.Request.Context()
	bookID := dto.BindBookID(c)

	decision, err := h.compileSvc.CanCompile(ctx, bookID)
	if err != nil {
		logger.Error(ctx, "failed to check compile gate", err, "book_id", bookID)
		dto.InternalError(c, "failed to check compile gate")
		return
	}

	dto.Success(c, dto.ToDecisionResponse(decision))
}

func (h *CompileHandler) invalidate(c *gin.Context, bookID string) {
	if h.cache == nil {
		return
	}
	if err := h.cache.InvalidateBook(c.Request.Context(), bookID); err != nil {
		logger.Warn(c.Request.Context(), "failed to invalidate book cache",
			"book_id", bookID, "error", err)
	}
}
