// Package handler 提供 HTTP 请求处理器
package handler

import (
	"encoding/json"
	"time"

	"bookdraft-api/internal/application/ingest"
	"bookdraft-api/internal/domain/entity"
	"bookdraft-api/internal/domain/repository"
	rediscache "bookdraft-api/internal/infrastructure/persistence/redis"
	"bookdraft-api/internal/interfaces/http/dto"
	"bookdraft-api/pkg/errors"
	"bookdraft-api/pkg/logger"

	"github.com/gin-gonic/gin"
)

// bookCacheTTL 书籍详情缓存时长
const bookCacheTTL = 5 * time.Minute

// BookHandler 书籍处理器
type BookHandler struct {
	bookRepo repository.BookRepository
	ingestor *ingest.Ingestor
	cache    *rediscache.Cache
}

// NewBookHandler 创建书籍处理器
func NewBookHandler(
	bookRepo repository.BookRepository,
	ingestor *ingest.Ingestor,
	cache *rediscache.Cache,
) *BookHandler {
	return &BookHandler{
		bookRepo: bookRepo,
		ingestor: ingestor,
		cache:    cache,
	}
}

// CreateBook 创建书籍请求
// @Summary 创建书籍
// @Description 登记一本待生成的书籍；同名书籍只更新 notes_before
// @Tags Books
// @Accept json
// @Produce json
// @Param body body dto.CreateBookRequest true "书籍信息"
// @Success 201 {object} dto.Response[dto.BookResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Router /v1/books [post]
func (h *BookHandler) CreateBook(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	id, err := h.ingestor.Create(ctx, req.Title, req.NotesBefore)
	if err != nil {
		if errors.IsCode(err, errors.CodeInvalidParam) {
			dto.BadRequest(c, err.Error())
			return
		}
		logger.Error(ctx, "failed to create book", err)
		dto.InternalError(c, "failed to create book")
		return
	}

	book, err := h.bookRepo.GetByID(ctx, id)
	if err != nil || book == nil {
		logger.Error(ctx, "failed to load created book", err, "book_id", id)
		dto.InternalError(c, "failed to create book")
		return
	}

	dto.Created(c, dto.ToBookResponse(book))
}

// ImportBooks 批量导入书籍
// @Summary 批量导入书籍
// @Description 从上传的 CSV 文件导入书籍请求（必需列 title、notes_before）
// @Tags Books
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "CSV 文件"
// @Success 201 {object} dto.Response[dto.ImportResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Router /v1/books/import [post]
func (h *BookHandler) ImportBooks(c *gin.Context) {
	ctx := c.Request.Context()

	file, err := c.FormFile("file")
	if err != nil {
		dto.BadRequest(c, "csv file is required")
		return
	}

	f, err := file.Open()
	if err != nil {
		dto.BadRequest(c, "failed to open uploaded file")
		return
	}
	defer f.Close()

	ids, err := h.ingestor.FromCSV(ctx, f)
	if err != nil {
		if errors.IsCode(err, errors.CodeIngestionFailed) {
			dto.UnprocessableEntity(c, err.Error())
			return
		}
		logger.Error(ctx, "failed to import books", err)
		dto.InternalError(c, "failed to import books")
		return
	}

	dto.Created(c, &dto.ImportResponse{BookIDs: ids, Count: len(ids)})
}

// GetBook 获取书籍详情
// @Summary 获取书籍详情
// @Tags Books
// @Produce json
// @Param bid path string true "书籍 ID"
// @Success 200 {object} dto.Response[dto.BookResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/books/{bid} [get]
func (h *BookHandler) GetBook(c *gin.Context) {
	ctx := c.Request.Context()
	bookID := dto.BindBookID(c)

	book, err := h.loadBook(c, bookID)
	if err != nil {
		logger.Error(ctx, "failed to get book", err, "book_id", bookID)
		dto.InternalError(c, "failed to get book")
		return
	}
	if book == nil {
		dto.NotFound(c, "book not found")
		return
	}

	dto.Success(c, dto.ToBookResponse(book))
}

// ListBooks 获取书籍列表
// @Summary 获取书籍列表
// @Tags Books
// @Produce json
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页条数" default(20)
// @Param output_status query string false "输出状态过滤"
// @Param outline_status query string false "大纲审核状态过滤"
// @Success 200 {object} dto.Response[dto.BookListResponse]
// @Failure 500 {object} dto.ErrorResponse
// @Router /v1/books [get]
func (h *BookHandler) ListBooks(c *gin.Context) {
	ctx := c.Request.Context()
	pageReq := dto.BindPage(c)

	filter := &repository.BookFilter{
		OutputStatus:  c.Query("output_status"),
		OutlineStatus: entity.ReviewStatus(c.Query("outline_status")),
	}

	result, err := h.bookRepo.List(ctx, filter, repository.NewPagination(pageReq.Page, pageReq.PageSize))
	if err != nil {
		logger.Error(ctx, "failed to list books", err)
		dto.InternalError(c, "failed to list books")
		return
	}

	resp := dto.ToBookListResponse(result.Items)
	meta := dto.NewPageMeta(pageReq.Page, pageReq.PageSize, int(result.Total))
	dto.SuccessWithPage(c, resp, meta)
}

// UpdateReview 更新编辑审核状态
// @Summary 更新编辑审核状态
// @Description 模拟编辑在审核表中填写状态：outline_status、notes_after、final_review_status
// @Tags Books
// @Accept json
// @Produce json
// @Param bid path string true "书籍 ID"
// @Param body body dto.UpdateReviewRequest true "审核信息"
// @Success 200 {object} dto.Response[dto.BookResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/books/{bid}/review [put]
func (h *BookHandler) UpdateReview(c *gin.Context) {
	ctx := c.Request.Context()
	bookID := dto.BindBookID(c)

	var req dto.UpdateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	book, err := h.bookRepo.GetByID(ctx, bookID)
	if err != nil {
		logger.Error(ctx, "failed to get book", err, "book_id", bookID)
		dto.InternalError(c, "failed to update review")
		return
	}
	if book == nil {
		dto.NotFound(c, "book not found")
		return
	}

	if req.OutlineStatus != nil {
		status := entity.ReviewStatus(*req.OutlineStatus)
		if !status.IsValid() {
			dto.BadRequest(c, "invalid outline_status: "+*req.OutlineStatus)
			return
		}
		book.OutlineStatus = status
	}
	if req.NotesAfter != nil {
		book.NotesAfter = *req.NotesAfter
	}
	if req.FinalReviewStatus != nil {
		status := entity.ReviewStatus(*req.FinalReviewStatus)
		if !status.IsValid() {
			dto.BadRequest(c, "invalid final_review_status: "+*req.FinalReviewStatus)
			return
		}
		book.FinalReviewStatus = status
	}

	if err := h.bookRepo.Update(ctx, book); err != nil {
		logger.Error(ctx, "failed to update review", err, "book_id", bookID)
		dto.InternalError(c, "failed to update review")
		return
	}

	h.invalidate(c, bookID)
	dto.Success(c, dto.ToBookResponse(book))
}

// DeleteBook 删除书籍
// @Summary 删除书籍
// @Tags Books
// @Produce json
// @Param bid path string true "书籍 ID"
// @Success 200 {object} dto.Response[gin.H]
// @Failure 500 {object} dto.ErrorResponse
// @Router /v1/books/{bid} [delete]
func (h *BookHandler) DeleteBook(c *gin.Context) {
	ctx := c.Request.Context()
	bookID := dto.BindBookID(c)

	if err := h.bookRepo.Delete(ctx, bookID); err != nil {
		logger.Error(ctx, "failed to delete book", err, "book_id", bookID)
		dto.InternalError(c, "failed to delete book")
		return
	}

	h.invalidate(c, bookID)
	dto.Success(c, gin.H{"deleted": bookID})
}

// loadBook 读取书籍详情，命中缓存时直接反序列化
func (h *BookHandler) loadBook(c *gin.Context, bookID string) (*entity.Book, error) {
	ctx := c.Request.Context()

	if h.cache == nil {
		return h.bookRepo.GetByID(ctx, bookID)
	}

	data, err := h.cache.GetOrLoadSafe(ctx, rediscache.BookKey(bookID), bookCacheTTL, func() (interface{}, error) {
		book, err := h.bookRepo.GetByID(ctx, bookID)
		if err != nil {
			return nil, err
		}
		if book == nil {
			return nil, errors.New(errors.CodeBookNotFound, "book not found")
		}
		return book, nil
	})
	if err != nil {
		if errors.IsCode(err, errors.CodeBookNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var book entity.Book
	if err := json.Unmarshal(data, &book); err != nil {
		return nil, err
	}
	return &book, nil
}

// invalidate 清理书籍相关缓存，失败只告警
func (h *BookHandler) invalidate(c *gin.Context, bookID string) {
	if h.cache == nil {
		return
	}
	if err := h.cache.InvalidateBook(c.Request.Context(), bookID); err != nil {
		logger.Warn(c.Request.Context(), "failed to invalidate book cache",
			"book_id", bookID, "error", err)
	}
}
