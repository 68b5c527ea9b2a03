// Package messaging 提供基于 Redis Streams 的事件发布实现
package messaging

import (
	"encoding/json"
	"time"
)

// Message 消息结构
type Message struct {
	ID        string            `json:"id"`
	Type      string            `json:"type"`
	BookID    string            `json:"book_id"`
	Payload   json.RawMessage   `json:"payload"`
	Metadata  map[string]string `json:"metadata"`
	CreatedAt time.Time         `json:"created_at"`
}

// NewMessage 创建新消息
func NewMessage(id, msgType, bookID string, payload interface{}) (*Message, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &Message{
		ID:        id,
		Type:      msgType,
		BookID:    bookID,
		Payload:   payloadBytes,
		Metadata:  make(map[string]string),
		CreatedAt: time.Now(),
	}, nil
}

// SetMetadata 设置元数据
func (m *Message) SetMetadata(key, value string) {
	if m.Metadata == nil {
		m.Metadata = make(map[string]string)
	}
	m.Metadata[key] = value
}

// UnmarshalPayload 解析消息载荷
func (m *Message) UnmarshalPayload(v interface{}) error {
	return json.Unmarshal(m.Payload, v)
}

// ReviewEventMessage 审校事件消息
// 投递给外部编辑工作台，提示有大纲或章节等待人工审核。
type ReviewEventMessage struct {
	BookID    string `json:"book_id"`
	BookTitle string `json:"book_title"`
	EventType string `json:"event_type"`
	Detail    string `json:"detail,omitempty"`
}

// PipelineErrorMessage 流水线错误消息
type PipelineErrorMessage struct {
	BookID    string `json:"book_id"`
	BookTitle string `json:"book_title"`
	Stage     string `json:"stage"`
	Error     string `json:"error"`
}
