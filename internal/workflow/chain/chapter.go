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

// ChapterChain 章节生成工作流
type ChapterChain struct {
	factory workflowport.ChatModelFactory
}

// NewChapterChain 创建章节生成工作流
func NewChapterChain(factory workflowport.ChatModelFactory) *ChapterChain {
	return &ChapterChain{factory: factory}
}

// Invoke 执行章节生成
func (c *ChapterChain) Invoke(ctx context.Context, in *wfmodel.ChapterGenerateInput) (*schema.Message, error) {
	if c == nil || c.factory == nil {
		return nil, fmt.Errorf("llm factory not configured")
	}
	if in == nil {
		return nil, fmt.Errorf("input is nil")
	}
	if strings.TrimSpace(in.BookTitle) == "" {
		return nil, fmt.Errorf("book title is required")
	}
	if strings.TrimSpace(in.Outline) == "" {
		return nil, fmt.Errorf("outline is required")
	}
	if in.ChapterNumber < 1 {
		return nil, fmt.Errorf("chapter number is required")
	}

	chatModel, err := c.factory.Get(ctx, strings.TrimSpace(in.Provider))
	if err != nil {
		return nil, err
	}

	msgs, err := formatChapterMessages(ctx, in)
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

func formatChapterMessages(ctx context.Context, in *wfmodel.ChapterGenerateInput) ([]*schema.Message, error) {
	tpl, err := promptRegistry.ChatTemplate(workflowprompt.PromptChapterGenV1)
	if err != nil {
		return nil, err
	}

	notesBlock := ""
	if notes := strings.TrimSpace(in.ChapterNotes); notes != "" {
		notesBlock = "SPECIAL INSTRUCTIONS/NOTES FOR THIS CHAPTER:\n" + notes
	}

	return tpl.Format(ctx, map[string]any{
		"title":          strings.TrimSpace(in.BookTitle),
		"outline":        strings.TrimSpace(in.Outline),
		"context":        in.Context,
		"chapter_number": in.ChapterNumber,
		"chapter_title":  strings.TrimSpace(in.ChapterTitle),
		"chapter_notes":  notesBlock,
	})
}
