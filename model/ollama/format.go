package ollama

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/ollama/ollama/api"
	"github.com/samber/lo"

	"github.com/conduitml/conduit/media"
	"github.com/conduitml/conduit/model"
)

// jsonOutputHint is appended to the system message alongside the "json"
// format flag; small local models follow the instruction more reliably when
// both are present.
const jsonOutputHint = "\n\nYour output should be in JSON format."

// formatMessages converts provider-neutral messages to the native chat shape.
// System, user, assistant, and tool roles all map directly.
func (a *Adapter) formatMessages(messages []model.Message) []api.Message {
	result := make([]api.Message, 0, len(messages))
	for _, msg := range messages {
		result = append(result, a.formatMessage(msg))
	}
	return result
}

func (a *Adapter) formatMessage(msg model.Message) api.Message {
	out := api.Message{
		Role:    string(msg.Role),
		Content: msg.Content,
	}

	if msg.Role == model.RoleSystem && a.opts.JSONMode() && !strings.HasSuffix(out.Content, jsonOutputHint) {
		out.Content += jsonOutputHint
	}

	for _, tc := range msg.ToolCalls {
		var args api.ToolCallFunctionArguments
		if err := json.Unmarshal([]byte(tc.Function.Arguments), &args); err != nil {
			a.logger.Warn().
				Err(err).
				Str("tool", tc.Function.Name).
				Msg("Unparseable tool call arguments; sending empty input")
			args = api.ToolCallFunctionArguments{}
		}
		out.ToolCalls = append(out.ToolCalls, api.ToolCall{
			Function: api.ToolCallFunction{
				Name:      tc.Function.Name,
				Arguments: args,
			},
		})
	}

	for _, img := range msg.Images {
		data, err := imageData(img)
		if err != nil {
			a.logger.Warn().Err(err).Msg("Skipping unreadable image attachment")
			continue
		}
		out.Images = append(out.Images, data)
	}
	if len(msg.Audio) > 0 {
		a.logger.Warn().Msg("Audio input is not supported; dropping attachment")
	}
	if len(msg.Videos) > 0 {
		a.logger.Warn().Msg("Video input is not supported; dropping attachment")
	}

	return out
}

// imageData resolves an image to raw bytes; the native API takes no URLs.
func imageData(img media.Image) (api.ImageData, error) {
	if len(img.Content) > 0 {
		return api.ImageData(img.Content), nil
	}
	if img.Filepath != "" {
		data, err := os.ReadFile(img.Filepath)
		if err != nil {
			return nil, fmt.Errorf("failed to read image file: %w", err)
		}
		return api.ImageData(data), nil
	}
	if img.URL != "" {
		return nil, fmt.Errorf("remote image urls are not supported: %w", media.ErrUnprocessable)
	}
	return nil, media.ErrUnprocessable
}

func convertToolDefinitions(tools []model.ToolDefinition) []api.Tool {
	return lo.Map(tools, func(t model.ToolDefinition, _ int) api.Tool {
		properties := map[string]api.ToolProperty{}
		if props, ok := t.Function.Parameters["properties"].(map[string]any); ok {
			for name, raw := range props {
				prop := api.ToolProperty{Type: []string{"string"}}
				if propMap, ok := raw.(map[string]any); ok {
					if propType, ok := propMap["type"].(string); ok {
						prop.Type = []string{propType}
					}
					if desc, ok := propMap["description"].(string); ok {
						prop.Description = desc
					}
				}
				properties[name] = prop
			}
		}

		return api.Tool{
			Type: "function",
			Function: api.ToolFunction{
				Name:        t.Function.Name,
				Description: t.Function.Description,
				Parameters: api.ToolFunctionParameters{
					Type:       "object",
					Properties: properties,
					Required:   requiredFields(t.Function.Parameters["required"]),
				},
			},
		}
	})
}

func requiredFields(v any) []string {
	switch req := v.(type) {
	case []string:
		return req
	case []any:
		result := make([]string, 0, len(req))
		for _, item := range req {
			if s, ok := item.(string); ok {
				result = append(result, s)
			}
		}
		return result
	default:
		return nil
	}
}

// convertToolCall normalizes a native tool call. The server supplies no call
// id, so one is synthesized from the function name and position.
func convertToolCall(tc api.ToolCall, index int) (model.ToolCall, error) {
	if tc.Function.Name == "" {
		return model.ToolCall{}, fmt.Errorf("tool call %d has no function name", index)
	}

	args := "{}"
	if len(tc.Function.Arguments) > 0 {
		data, err := json.Marshal(tc.Function.Arguments)
		if err != nil {
			return model.ToolCall{}, fmt.Errorf("tool call %d arguments: %w", index, err)
		}
		args = string(data)
	}

	return model.ToolCall{
		ID:   fmt.Sprintf("call_%s_%d", tc.Function.Name, index),
		Type: "function",
		Function: model.FunctionCall{
			Name:      tc.Function.Name,
			Arguments: args,
		},
	}, nil
}
