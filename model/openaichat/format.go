package openaichat

import (
	"context"
	"strings"

	"github.com/samber/lo"
	openai "github.com/sashabaranov/go-openai"

	"github.com/conduitml/conduit/model"
)

// JSONOutputHint is appended to system messages when JSON mode is requested.
// Some providers require this explicit instruction to honor the response
// format.
const JSONOutputHint = "\n\nYour output should be in JSON format."

func (a *Adapter) formatMessages(ctx context.Context, messages []model.Message) []openai.ChatCompletionMessage {
	result := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, msg := range messages {
		result = append(result, a.FormatMessage(ctx, msg))
	}
	return result
}

// FormatMessage converts a canonical message to the provider wire shape. Only
// set fields are emitted. Media handling: images become multi-part content,
// audio is transcribed synchronously and replaces the text content, video is
// unsupported and dropped with a warning.
func (a *Adapter) FormatMessage(ctx context.Context, msg model.Message) openai.ChatCompletionMessage {
	out := openai.ChatCompletionMessage{
		Role:       string(msg.Role),
		Name:       msg.Name,
		ToolCallID: msg.ToolCallID,
	}

	content := msg.Content
	if msg.Role == model.RoleSystem && a.opts.JSONMode() && !strings.HasSuffix(content, JSONOutputHint) {
		content += JSONOutputHint
	}
	out.Content = content

	if len(msg.ToolCalls) > 0 {
		out.ToolCalls = lo.Map(msg.ToolCalls, func(tc model.ToolCall, _ int) openai.ToolCall {
			return openai.ToolCall{
				ID:   tc.ID,
				Type: openai.ToolType(tc.Type),
				Function: openai.FunctionCall{
					Name:      tc.Function.Name,
					Arguments: tc.Function.Arguments,
				},
			}
		})
	}

	if len(msg.Images) > 0 {
		parts := []openai.ChatMessagePart{
			{Type: openai.ChatMessagePartTypeText, Text: content},
		}
		for _, img := range msg.Images {
			url, err := img.SourceURL()
			if err != nil {
				a.logger.Warn().Err(err).Msg("Skipping image attachment")
				continue
			}
			part := openai.ChatMessagePart{
				Type:     openai.ChatMessagePartTypeImageURL,
				ImageURL: &openai.ChatMessageImageURL{URL: url},
			}
			if img.Detail != "" {
				part.ImageURL.Detail = openai.ImageURLDetail(img.Detail)
			}
			parts = append(parts, part)
		}
		out.Content = ""
		out.MultiContent = parts
	}

	if len(msg.Audio) > 0 {
		text, err := a.TranscribeFirst(ctx, msg.Audio, model.TranscriptionOptions{})
		if err != nil {
			a.logger.Error().Err(err).Msg("Error transcribing audio")
		} else {
			out.Content = "Audio Transcription: " + text
			out.MultiContent = nil
		}
	}

	if len(msg.Videos) > 0 {
		a.logger.Warn().Msg("Video input is currently unsupported")
	}

	return out
}

func convertToolDefinitions(defs []model.ToolDefinition) []openai.Tool {
	return lo.Map(defs, func(def model.ToolDefinition, _ int) openai.Tool {
		return openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        def.Function.Name,
				Description: def.Function.Description,
				Parameters:  def.Function.Parameters,
			},
		}
	})
}
