// Package handler 提供 HTTP 请求处理器
package handler

import (
	"bookdraft-api/internal/application/pipeline"
	"bookdraft-api/internal/domain/entity"
	"bookdraft-api/internal/domain/repository"
	rediscache "bookdraft-api/internal/infrastructure/persistence/redis"
	"bookdraft-api/internal/interfaces/http/dto"
	"bookdraft-api/pkg/logger"

	"github.com/gin-gonic/gin"
)

// ChapterHandler 章节处理器
type ChapterHandler struct {
	chapterRepo repository.ChapterRepository
	chapterSvc  *pipeline.ChapterService
	cache       *rediscache.Cache
}

// NewChapterHandler 创建章节处理器
func NewChapterHandler(
	chapterRepo repository.ChapterRepository,
	chapterSvc *pipeline.ChapterService,
	cache *rediscache.Cache,
) *ChapterHandler {
	return &ChapterHandler{
		chapterRepo: chapterRepo,
		chapterSvc:  chapterSvc,
		cache:       cache,
	}
}

// ListChapters 获取章节列表
// @Summary 获取章节列表
// @Description 获取指定书籍的章节列表（不含正文）
// @Tags Chapters
// @Produce json
// @Param bid path string true "书籍 ID"
// @Success 200 {object} dto.Response[dto.ChapterListResponse]
// @Failure 500 {object} dto.ErrorResponse
// @Router /v1/books/{bid}/chapters [get]
func (h *ChapterHandler) ListChapters(c *gin.Context) {
	ctx := c.Request.Context()
	bookID := dto.BindBookID(c)

	chapters, err := h.chapterRepo.ListByBook(ctx, bookID)
	if err != nil {
		logger.Error(ctx, "failed to list chapters", err, "book_id", bookID)
		dto.InternalError(c, "failed to list chapters")
		return
	}

	dto.Success(c, dto.ToChapterListResponse(chapters))
}

// GetChapter 获取章节详情
// @Summary 获取章节详情
// @Tags Chapters
// @Produce json
// @Param bid path string true "书籍 ID"
// @Param num path int true "章节号"
// @Success 200 {object} dto.Response[dto.ChapterResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/books/{bid}/chapters/{num} [get]
func (h *ChapterHandler) GetChapter(c *gin.Context) {
	ctx := c.Request.Context()
	bookID := dto.BindBookID(c)
	num := dto.BindChapterNumber(c)
	if num == 0 {
		dto.BadRequest(c, "invalid chapter number")
		return
	}

	chapter, err := h.chapterRepo.GetByBookAndNumber(ctx, bookID, num)
	if err != nil {
		logger.Error(ctx, "failed to get chapter", err,
			"book_id", bookID, "chapter_number", num)
		dto.InternalError(c, "failed to get chapter")
		return
	}
	if chapter == nil {
		dto.NotFound(c, "chapter not found")
		return
	}

	dto.Success(c, dto.ToChapterResponse(chapter, true))
}

// GenerateChapter 生成单个章节
// @Summary 生成单个章节
// @Description 门控通过时生成（或按反馈重生成）指定章节；拒绝时返回 409 和原因
// @Tags Chapters
// @Accept json
// @Produce json
// @Param bid path string true "书籍 ID"
// @Param num path int true "章节号"
// @Param body body dto.GenerateChapterRequest false "章节标题"
// @Success 202 {object} dto.Response[dto.DecisionResponse]
// @Failure 409 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /v1/books/{bid}/chapters/{num}/generate [post]
func (h *ChapterHandler) GenerateChapter(c *gin.Context) {
	ctx := c.Request.Context()
	bookID := dto.BindBookID(c)
	num := dto.BindChapterNumber(c)
	if num == 0 {
		dto.BadRequest(c, "invalid chapter number")
		return
	}

	// 请求体可选
	var req dto.GenerateChapterRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			dto.BadRequest(c, "invalid request body: "+err.Error())
			return
		}
	}

	decision, err := h.chapterSvc.Generate(ctx, bookID, num, req.Title)
	if err != nil {
		logger.Error(ctx, "chapter generation failed", err,
			"book_id", bookID, "chapter_number", num)
		dto.InternalError(c, "chapter generation failed")
		return
	}
	if !decision.Allowed {
		dto.Conflict(c, decision.Reason)
		return
	}

	h.invalidate(c, bookID)
	dto.Accepted(c, dto.ToDecisionResponse(decision))
}

// GenerateAllChapters 按大纲批量生成章节
// @Summary 按大纲批量生成章节
// @Description 按大纲顺序生成全部章节；跳过被门控拒绝的章节，生成失败即中止
// @Tags Chapters
// @Produce json
// @Param bid path string true "书籍 ID"
// @Success 202 {object} dto.Response[dto.GenStatsResponse]
// @Failure 500 {object} dto.ErrorResponse
// @Router /v1/books/{bid}/chapters/generate [post]
func (h *ChapterHandler) GenerateAllChapters(c *gin.Context) {
	ctx := c.Request.Context()
	bookID := dto.BindBookID(c)

	stats, err := h.chapterSvc.GenerateAll(ctx, bookID)
	if err != nil {
		logger.Error(ctx, "chapter batch generation failed", err, "book_id", bookID)
		dto.InternalError(c, "chapter batch generation failed")
		return
	}

	h.invalidate(c, bookID)
	dto.Accepted(c, dto.ToGenStatsResponse(stats))
}

// UpdateChapterReview 更新章节审核状态
// @Summary 更新章节审核状态
// @Description 模拟编辑在审核表中填写章节状态和反馈
// @Tags Chapters
// @Accept json
// @Produce json
// @Param bid path string true "书籍 ID"
// @Param num path int true "章节号"
// @Param body body dto.ChapterReviewRequest true "审核信息"
// @Success 200 {object} dto.Response[dto.ChapterResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/books/{bid}/chapters/{num}/review [put]
func (h *ChapterHandler) UpdateChapterReview(c *gin.Context) {
	ctx := c.Request.Context()
	bookID := dto.BindBookID(c)
	num := dto.BindChapterNumber(c)
	if num == 0 {
		dto.BadRequest(c, "invalid chapter number")
		return
	}

	var req dto.ChapterReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	chapter, err := h.chapterRepo.GetByBookAndNumber(ctx, bookID, num)
	if err != nil {
		logger.Error(ctx, "failed to get chapter", err,
			"book_id", bookID, "chapter_number", num)
		dto.InternalError(c, "failed to update chapter review")
		return
	}
	if chapter == nil {
		dto.NotFound(c, "chapter not found")
		return
	}

	if req.NotesStatus != nil {
		status := entity.ReviewStatus(*req.NotesStatus)
		if !status.IsValid() {
			dto.BadRequest(c, "invalid notes_status: "+*req.NotesStatus)
			return
		}
		chapter.NotesStatus = status
	}
	if req.Notes != nil {
		chapter.Notes = *req.Notes
	}

	if err := h.chapterRepo.Update(ctx, chapter); err != nil {
		logger.Error(ctx, "failed to update chapter review", err,
			"book_id", bookID, "chapter_number", num)
		dto.InternalError(c, "failed to update chapter review")
		return
	}

	h.invalidate(c, bookID)
	dto.Success(c, dto.ToChapterResponse(chapter, false))
}

func (h *ChapterHandler) invalidate(c *gin.Context, bookID string) {
	if h.cache == nil {
		return
	}
	if err := h.cache.InvalidateBook(c.Request.Context(), bookID); err != nil {
		logger.Warn(c.Request.Context(), "failed to invalidate book cache",
			"book_id", bookID, "error", err)
	}
}
