// Package handler 提供 HTTP 请求处理器
package handler

import (
	"bookdraft-api/internal/domain/repository"
	"bookdraft-api/internal/interfaces/http/dto"
	"bookdraft-api/pkg/logger"

	"github.com/gin-gonic/gin"
)

// NotificationHandler 通知记录处理器
type NotificationHandler struct {
	notificationRepo repository.NotificationRepository
}

// NewNotificationHandler 创建通知记录处理器
func NewNotificationHandler(notificationRepo repository.NotificationRepository) *NotificationHandler {
	return &NotificationHandler{notificationRepo: notificationRepo}
}

// ListNotifications 获取书籍通知记录
// @Summary 获取书籍通知记录
// @Tags Notifications
// @Produce json
// @Param bid path string true "书籍 ID"
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页条数" default(20)
// @Success 200 {object} dto.Response[dto.NotificationListResponse]
// @Failure 500 {object} dto.ErrorResponse
// @Router /v1/books/{bid}/notifications [get]
func (h *NotificationHandler) ListNotifications(c *gin.Context) {
	ctx := c.Request.Context()
	bookID := dto.BindBookID(c)
	pageReq := dto.BindPage(c)

	result, err := h.notificationRepo.ListByBook(ctx, bookID,
		repository.NewPagination(pageReq.Page, pageReq.PageSize))
	if err != nil {
		logger.Error(ctx, "failed to list notifications", err, "book_id", bookID)
		dto.InternalError(c, "failed to list notifications")
		return
	}

	resp := dto.ToNotificationListResponse(result.Items)
	meta := dto.NewPageMeta(pageReq.Page, pageReq.PageSize, int(result.Total))
	dto.SuccessWithPage(c, resp, meta)
}
