package chain

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/schema"

	wfmodel "bookdraft-api/internal/workflow/model"
	workflowport "bookdraft-api/internal/workflow/port"
	workflowprompt "bookdraft-api/internal/workflow/prompt"
)

// RevisionChain 按编辑反馈重生成的工作流
// 大纲和章节共用同一修订提示词，靠 Target 区分措辞。
type RevisionChain struct {
	factory workflowport.ChatModelFactory
}

// NewRevisionChain 创建修订工作流
func NewRevisionChain(factory workflowport.ChatModelFactory) *RevisionChain {
	return &RevisionChain{factory: factory}
}

// Invoke 执行修订生成
func (c *RevisionChain) Invoke(ctx context.Context, in *wfmodel.RevisionInput) (*schema.Message, error) {
	if c == nil || c.factory == nil {
		return nil, fmt.Errorf("llm factory not configured")
	}
	if in == nil {
		return nil, fmt.Errorf("input is nil")
	}
	original, feedback, err := in.Payload()
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(original) == "" {
		return nil, fmt.Errorf("original content is required")
	}
	if strings.TrimSpace(feedback) == "" {
		return nil, fmt.Errorf("feedback is required")
	}

	chatModel, err := c.factory.Get(ctx, strings.TrimSpace(in.Provider))
	if err != nil {
		return nil, err
	}

	tpl, err := promptRegistry.ChatTemplate(workflowprompt.PromptRevisionV1)
	if err != nil {
		return nil, err
	}

	msgs, err := tpl.Format(ctx, map[string]any{
		"content_type":     string(in.Target),
		"original_content": strings.TrimSpace(original),
		"feedback":         strings.TrimSpace(feedback),
	})
	if err != nil {
		return nil, err
	}

	outMsg, err := chatModel.Generate(ctx, msgs, buildModelOptions(nil, in.MaxTokens)...)
	if err != nil {
		return nil, err
	}
	if outMsg == nil {
		return nil, fmt.Errorf("empty llm response")
	}
	return outMsg, nil
}
