package port

import (
	"context"

	"github.com/cloudwego/eino/components/model"
)

// ChatModelFactory 定义生成链对 LLM ChatModel 的最小依赖（port）。
// name 为配置中的提供商名（如 groq）。
type ChatModelFactory interface {
	Get(ctx context.Context, name string) (model.BaseChatModel, error)
}
