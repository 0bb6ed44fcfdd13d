package anthropic

import (
	"encoding/base64"
	"encoding/json"
	"os"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/samber/lo"

	"github.com/conduitml/conduit/media"
	"github.com/conduitml/conduit/model"
)

// jsonOutputHint is appended to the system prompt when JSON output is
// requested; the Messages API has no response_format parameter.
const jsonOutputHint = "\n\nYour output should be in JSON format."

// formatMessages converts provider-neutral messages into Messages API params.
// System messages are hoisted out into the returned system prompt; tool
// results become tool_result blocks on a user message.
func (a *Adapter) formatMessages(messages []model.Message) ([]anthropic.MessageParam, string) {
	var system strings.Builder
	result := make([]anthropic.MessageParam, 0, len(messages))

	for _, msg := range messages {
		switch msg.Role {
		case model.RoleSystem:
			if system.Len() > 0 {
				system.WriteString("\n\n")
			}
			system.WriteString(msg.Content)

		case model.RoleTool:
			result = append(result, anthropic.NewUserMessage(
				anthropic.NewToolResultBlock(msg.ToolCallID, msg.Content, false),
			))

		case model.RoleAssistant:
			blocks := make([]anthropic.ContentBlockParamUnion, 0, 1+len(msg.ToolCalls))
			if msg.Content != "" {
				blocks = append(blocks, anthropic.NewTextBlock(msg.Content))
			}
			for _, tc := range msg.ToolCalls {
				var input map[string]any
				if err := json.Unmarshal([]byte(tc.Function.Arguments), &input); err != nil {
					a.logger.Warn().
						Err(err).
						Str("tool", tc.Function.Name).
						Msg("Unparseable tool call arguments; sending empty input")
					input = map[string]any{}
				}
				blocks = append(blocks, anthropic.NewToolUseBlock(tc.ID, input, tc.Function.Name))
			}
			result = append(result, anthropic.NewAssistantMessage(blocks...))

		default:
			result = append(result, anthropic.NewUserMessage(a.userBlocks(msg)...))
		}
	}

	prompt := system.String()
	if a.opts.JSONMode() && !strings.HasSuffix(prompt, jsonOutputHint) {
		prompt += jsonOutputHint
	}

	return result, prompt
}

// userBlocks builds the content blocks for a user message, attaching images
// and dropping media kinds the Messages API cannot carry.
func (a *Adapter) userBlocks(msg model.Message) []anthropic.ContentBlockParamUnion {
	blocks := []anthropic.ContentBlockParamUnion{anthropic.NewTextBlock(msg.Content)}

	for _, img := range msg.Images {
		block, err := imageBlock(img)
		if err != nil {
			a.logger.Warn().Err(err).Msg("Skipping unreadable image attachment")
			continue
		}
		blocks = append(blocks, block)
	}
	if len(msg.Audio) > 0 {
		a.logger.Warn().Msg("Audio input is not supported; dropping attachment")
	}
	if len(msg.Videos) > 0 {
		a.logger.Warn().Msg("Video input is not supported; dropping attachment")
	}

	return blocks
}

func imageBlock(img media.Image) (anthropic.ContentBlockParamUnion, error) {
	if img.URL != "" {
		return anthropic.ContentBlockParamUnion{
			OfImage: &anthropic.ImageBlockParam{
				Source: anthropic.ImageBlockParamSourceUnion{
					OfURL: &anthropic.URLImageSourceParam{URL: img.URL},
				},
			},
		}, nil
	}

	content := img.Content
	if content == nil && img.Filepath != "" {
		data, err := os.ReadFile(img.Filepath)
		if err != nil {
			return anthropic.ContentBlockParamUnion{}, err
		}
		content = data
	}
	if content == nil {
		return anthropic.ContentBlockParamUnion{}, media.ErrUnprocessable
	}

	format := img.Format
	if format == "" {
		format = "jpeg"
	}
	encoded := base64.StdEncoding.EncodeToString(content)
	return anthropic.NewImageBlockBase64("image/"+format, encoded), nil
}

func convertToolDefinitions(tools []model.ToolDefinition) []anthropic.ToolUnionParam {
	return lo.Map(tools, func(t model.ToolDefinition, _ int) anthropic.ToolUnionParam {
		schema := anthropic.ToolInputSchemaParam{Type: "object"}
		if props, ok := t.Function.Parameters["properties"]; ok {
			schema.Properties = props
		}
		schema.Required = requiredFields(t.Function.Parameters["required"])

		return anthropic.ToolUnionParam{
			OfTool: &anthropic.ToolParam{
				Name:        t.Function.Name,
				Description: anthropic.String(t.Function.Description),
				InputSchema: schema,
			},
		}
	})
}

// requiredFields normalizes the "required" schema entry, which arrives as
// []string when built in code and []any when decoded from JSON.
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
