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

// 摘要生成固定用较低温度和较小输出上限
var (
	summaryTemperature float32 = 0.5
	summaryMaxTokens           = 512
)

// SummaryChain 章节摘要生成工作流
type SummaryChain struct {
	factory workflowport.ChatModelFactory
}

// NewSummaryChain 创建摘要生成工作流
func NewSummaryChain(factory workflowport.ChatModelFactory) *SummaryChain {
	return &SummaryChain{factory: factory}
}

// Invoke 执行摘要生成
func (c *SummaryChain) Invoke(ctx context.Context, in *wfmodel.SummaryGenerateInput) (*schema.Message, error) {
	if c == nil || c.factory == nil {
		return nil, fmt.Errorf("llm factory not configured")
	}
	if in == nil {
		return nil, fmt.Errorf("input is nil")
	}
	if strings.TrimSpace(in.Content) == "" {
		return nil, fmt.Errorf("chapter content is required")
	}

	chatModel, err := c.factory.Get(ctx, strings.TrimSpace(in.Provider))
	if err != nil {
		return nil, err
	}

	tpl, err := promptRegistry.ChatTemplate(workflowprompt.PromptSummaryV1)
	if err != nil {
		return nil, err
	}

	msgs, err := tpl.Format(ctx, map[string]any{
		"chapter_title": strings.TrimSpace(in.ChapterTitle),
		"content":       strings.TrimSpace(in.Content),
	})
	if err != nil {
		return nil, err
	}

	outMsg, err := chatModel.Generate(ctx, msgs, buildModelOptions(&summaryTemperature, &summaryMaxTokens)...)
	if err != nil {
		return nil, err
	}
	if outMsg == nil {
		return nil, fmt.Errorf("empty llm response")
	}
	return outMsg, nil
}
