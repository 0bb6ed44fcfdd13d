package anthropic

import (
	"encoding/json"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"

	"github.com/conduitml/conduit/model"
)

// parseMessage normalizes a complete Messages API response.
func (a *Adapter) parseMessage(message *anthropic.Message) *model.ModelResponse {
	response := &model.ModelResponse{Role: string(model.RoleAssistant)}

	var content strings.Builder
	for _, blockUnion := range message.Content {
		switch block := blockUnion.AsAny().(type) {
		case anthropic.TextBlock:
			content.WriteString(block.Text)
		case anthropic.ToolUseBlock:
			args := "{}"
			if block.Input != nil {
				if data, err := json.Marshal(block.Input); err == nil {
					args = string(data)
				}
			}
			response.ToolCalls = append(response.ToolCalls, model.ToolCall{
				ID:   block.ID,
				Type: "function",
				Function: model.FunctionCall{
					Name:      block.Name,
					Arguments: args,
				},
			})
		}
	}
	response.Content = content.String()

	response.Usage = a.convertUsage(
		int(message.Usage.InputTokens),
		int(message.Usage.OutputTokens),
		int(message.Usage.CacheCreationInputTokens),
		int(message.Usage.CacheReadInputTokens),
	)

	return response
}

// convertUsage builds normalized usage and records the prompt cache counters
// in the metrics bag.
func (a *Adapter) convertUsage(inputTokens, outputTokens, cacheCreation, cacheRead int) *model.Usage {
	usage := model.NewUsage(inputTokens, outputTokens, 0)
	if cacheCreation > 0 || cacheRead > 0 {
		usage.AdditionalMetrics = map[string]any{
			"cache_creation_input_tokens": cacheCreation,
			"cache_read_input_tokens":     cacheRead,
		}

		cacheEfficiency := float64(0)
		if inputTokens > 0 {
			cacheEfficiency = float64(cacheRead) / float64(inputTokens) * 100
		}
		a.logger.Debug().
			Int("input_tokens", inputTokens).
			Int("cache_creation_tokens", cacheCreation).
			Int("cache_read_tokens", cacheRead).
			Float64("cache_efficiency", cacheEfficiency).
			Msg("Prompt cache stats")
	}
	return usage
}
