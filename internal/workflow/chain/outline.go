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

// OutlineChain 大纲生成工作流
type OutlineChain struct {
	factory workflowport.ChatModelFactory
}

// NewOutlineChain 创建大纲生成工作流
func NewOutlineChain(factory workflowport.ChatModelFactory) *OutlineChain {
	return &OutlineChain{factory: factory}
}

// Invoke 执行大纲生成
func (c *OutlineChain) Invoke(ctx context.Context, in *wfmodel.OutlineGenerateInput) (*schema.Message, error) {
	if c == nil || c.factory == nil {
		return nil, fmt.Errorf("llm factory not configured")
	}
	if in == nil {
		return nil, fmt.Errorf("input is nil")
	}
	if strings.TrimSpace(in.Title) == "" {
		return nil, fmt.Errorf("book title is required")
	}

	chatModel, err := c.factory.Get(ctx, strings.TrimSpace(in.Provider))
	if err != nil {
		return nil, err
	}

	tpl, err := promptRegistry.ChatTemplate(workflowprompt.PromptOutlineGenV1)
	if err != nil {
		return nil, err
	}

	notes := strings.TrimSpace(in.Notes)
	if notes == "" {
		notes = "No additional notes"
	}

	msgs, err := tpl.Format(ctx, map[string]any{
		"title": strings.TrimSpace(in.Title),
		"notes": notes,
	})
	if err != nil {
		return nil, err
	}

	outMsg, err := chatModel.Generate(ctx, msgs, buildModelOptions(in.Temperature, in.MaxTokens)...)
	if err != nil {
		return nil, err
	}
	if outMsg == nil {
		return nil, fmt.Errorf("empty llm response")
	}
	return outMsg, nil
}
