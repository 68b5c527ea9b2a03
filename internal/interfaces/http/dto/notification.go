// Package dto 提供 HTTP 层数据传输对象
package dto

import (
	"time"

	"bookdraft-api/internal/domain/entity"
)

// NotificationResponse 通知记录响应
type NotificationResponse struct {
	ID        string    `json:"id"`
	BookID    string    `json:"book_id"`
	EventType string    `json:"event_type"`
	Message   string    `json:"message"`
	Status    string    `json:"status"`
	SentAt    time.Time `json:"sent_at"`
}

// NotificationListResponse 通知记录列表响应
type NotificationListResponse struct {
	Notifications []*NotificationResponse `json:"notifications"`
}

// ToNotificationResponse 转换通知实体为响应
func ToNotificationResponse(n *entity.Notification) *NotificationResponse {
	if n == nil {
		return nil
	}
	return &NotificationResponse{
		ID:        n.ID,
		BookID:    n.BookID,
		EventType: n.EventType,
		Message:   n.Message,
		Status:    n.Status,
		SentAt:    n.SentAt,
	}
}

// ToNotificationListResponse 转换通知实体列表为响应
func ToNotificationListResponse(items []*entity.Notification) *NotificationListResponse {
	out := make([]*NotificationResponse, 0, len(items))
	for _, n := range items {
		out = append(out, ToNotificationResponse(n))
	}
	return &NotificationListResponse{Notifications: out}
}
