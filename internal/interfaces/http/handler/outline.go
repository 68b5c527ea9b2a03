// Package handler 提供 HTTP 请求处理器
package handler

import (
	"strconv"

	"bookdraft-api/internal/application/pipeline"
	"bookdraft-api/internal/domain/entity"
	"bookdraft-api/internal/domain/repository"
	rediscache "bookdraft-api/internal/infrastructure/persistence/redis"
	"bookdraft-api/internal/interfaces/http/dto"
	"bookdraft-api/pkg/logger"

	"github.com/gin-gonic/gin"
)

// OutlineHandler 大纲处理器
type OutlineHandler struct {
	outlineRepo repository.OutlineRepository
	outlineSvc  *pipeline.OutlineService
	cache       *rediscache.Cache
}

// NewOutlineHandler 创建大纲处理器
func NewOutlineHandler(
	outlineRepo repository.OutlineRepository,
	outlineSvc *pipeline.OutlineService,
	cache *rediscache.Cache,
) *OutlineHandler {
	return &OutlineHandler{
		outlineRepo: outlineRepo,
		outlineSvc:  outlineSvc,
		cache:       cache,
	}
}

// GenerateOutline 生成大纲
// @Summary 生成大纲
// @Description 门控通过时为书籍生成（或按反馈重生成）大纲；拒绝时返回 409 和原因
// @Tags Outlines
// @Produce json
// @Param bid path string true "书籍 ID"
// @Success 202 {object} dto.Response[dto.DecisionResponse]
// @Failure 409 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /v1/books/{bid}/outline/generate [post]
func (h *OutlineHandler) GenerateOutline(c *gin.Context) {
	ctx := c.Request.Context()
	bookID := dto.BindBookID(c)

	decision, err := h.outlineSvc.Generate(ctx, bookID)
	if err != nil {
		logger.Error(ctx, "outline generation failed", err, "book_id", bookID)
		dto.InternalError(c, "outline generation failed")
		return
	}
	if !decision.Allowed {
		dto.Conflict(c, decision.Reason)
		return
	}

	h.invalidate(c, bookID)
	dto.Accepted(c, dto.ToDecisionResponse(decision))
}

// CheckOutline 查询大纲生成门控
// @Summary 查询大纲生成门控
// @Tags Outlines
// @Produce json
// @Param bid path string true "书籍 ID"
// @Success 200 {object} dto.Response[dto.DecisionResponse]
// @Failure 500 {object} dto.ErrorResponse
// @Router /v1/books/{bid}/outline/check [get]
func (h *OutlineHandler) CheckOutline(c *gin.Context) {
	ctx := c.Request.Context()
	bookID := dto.BindBookID(c)

	decision, err := h.outlineSvc.CanGenerate(ctx, bookID)
	if err != nil {
		logger.Error(ctx, "failed to check outline gate", err, "book_id", bookID)
		dto.InternalError(c, "failed to check outline gate")
		return
	}

	dto.Success(c, dto.ToDecisionResponse(decision))
}

// GetOutline 获取大纲
// @Summary 获取大纲
// @Description 默认返回最新版本，?version= 返回指定历史版本
// @Tags Outlines
// @Produce json
// @Param bid path string true "书籍 ID"
// @Param version query int false "大纲版本号"
// @Success 200 {object} dto.Response[dto.OutlineResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/books/{bid}/outline [get]
func (h *OutlineHandler) GetOutline(c *gin.Context) {
	ctx := c.Request.Context()
	bookID := dto.BindBookID(c)

	var outline *entity.Outline
	var err error
	if raw := c.Query("version"); raw != "" {
		version, convErr := strconv.Atoi(raw)
		if convErr != nil || version < 1 {
			dto.BadRequest(c, "invalid outline version")
			return
		}
		outline, err = h.outlineRepo.GetByBookAndVersion(ctx, bookID, version)
	} else {
		outline, err = h.outlineRepo.GetLatestByBook(ctx, bookID)
	}
	if err != nil {
		logger.Error(ctx, "failed to get outline", err, "book_id", bookID)
		dto.InternalError(c, "failed to get outline")
		return
	}
	if outline == nil {
		dto.NotFound(c, "outline not found")
		return
	}

	dto.Success(c, dto.ToOutlineResponse(outline))
}

// ListOutlineVersions 获取大纲版本历史
// @Summary 获取大纲版本历史
// @Tags Outlines
// @Produce json
// @Param bid path string true "书籍 ID"
// @Success 200 {object} dto.Response[dto.OutlineListResponse]
// @Failure 500 {object} dto.ErrorResponse
// @Router /v1/books/{bid}/outline/versions [get]
func (h *OutlineHandler) ListOutlineVersions(c *gin.Context) {
	ctx := c.Request.Context()
	bookID := dto.BindBookID(c)

	outlines, err := h.outlineRepo.ListByBook(ctx, bookID)
	if err != nil {
		logger.Error(ctx, "failed to list outline versions", err, "book_id", bookID)
		dto.InternalError(c, "failed to list outline versions")
		return
	}

	dto.Success(c, dto.ToOutlineListResponse(outlines))
}

func (h *OutlineHandler) invalidate(c *gin.Context, bookID string) {
	if h.cache == nil {
		return
	}
	if err := h.cache.InvalidateBook(c.Request.Context(), bookID); err != nil {
		logger.Warn(c.Request.Context(), "failed to invalidate book cache",
			"book_id", bookID, "error", err)
	}
}
