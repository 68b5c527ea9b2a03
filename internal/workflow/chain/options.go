// Package chain 封装各类生成工作流
package chain

import (
	"github.com/cloudwego/eino/components/model"

	workflowprompt "bookdraft-api/internal/workflow/prompt"
)

var promptRegistry = workflowprompt.NewRegistry()

func buildModelOptions(temperature *float32, maxTokens *int) []model.Option {
	opts := make([]model.Option, 0, 2)
	if temperature != nil {
		opts = append(opts, model.WithTemperature(*temperature))
	}
	if maxTokens != nil {
		opts = append(opts, model.WithMaxTokens(*maxTokens))
	}
	return opts
}
