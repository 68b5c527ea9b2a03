// Package node 提供工作流内部的通用辅助逻辑
package node

import "strings"

// IsRateLimitError 判断错误是否为限流/配额类错误
// 依赖错误文本匹配：上游 SDK 不保证结构化错误码。
func IsRateLimitError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "429"):
		return true
	case strings.Contains(msg, "quota"):
		return true
	case strings.Contains(msg, "rate limit"):
		return true
	default:
		return false
	}
}
