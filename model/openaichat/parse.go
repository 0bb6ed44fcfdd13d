package openaichat

import (
	"fmt"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"

	"github.com/conduitml/conduit/model"
)

// ParseResponse normalizes a complete chat-completion response. Missing
// optional fields are simply omitted; it never fails. Tool calls convert
// all-or-nothing: one bad call logs a warning and drops the whole list, so
// callers never see a partially converted set.
func ParseResponse(resp *openai.ChatCompletionResponse, logger zerolog.Logger) *model.ModelResponse {
	mr := &model.ModelResponse{}
	if len(resp.Choices) == 0 {
		return mr
	}

	msg := resp.Choices[0].Message
	if msg.Role != "" {
		mr.Role = msg.Role
	}
	if msg.Content != "" {
		mr.Content = msg.Content
	}

	if len(msg.ToolCalls) > 0 {
		calls, err := convertToolCalls(msg.ToolCalls)
		if err != nil {
			logger.Warn().Err(err).Msg("Error processing tool calls")
		} else {
			mr.ToolCalls = calls
		}
	}

	if resp.Usage.PromptTokens > 0 || resp.Usage.CompletionTokens > 0 || resp.Usage.TotalTokens > 0 {
		mr.Usage = model.NewUsage(resp.Usage.PromptTokens, resp.Usage.CompletionTokens, resp.Usage.TotalTokens)
	}

	return mr
}

// ParseResponseDelta normalizes one streamed chunk. Tool-call deltas pass
// through as fragments; reassembly into complete calls is the consumer's job
// (model.MergeToolCallFragments).
func ParseResponseDelta(chunk *openai.ChatCompletionStreamResponse, logger zerolog.Logger) *model.ModelResponse {
	mr := &model.ModelResponse{}

	if len(chunk.Choices) > 0 {
		delta := chunk.Choices[0].Delta
		if delta.Role != "" {
			mr.Role = delta.Role
		}
		if delta.Content != "" {
			mr.Content = delta.Content
		}
		for _, tc := range delta.ToolCalls {
			frag := model.ToolCallFragment{
				ID:        tc.ID,
				Type:      string(tc.Type),
				Name:      tc.Function.Name,
				Arguments: tc.Function.Arguments,
			}
			if tc.Index != nil {
				frag.Index = *tc.Index
			}
			mr.ToolCallFragments = append(mr.ToolCallFragments, frag)
		}
	}

	if chunk.Usage != nil {
		mr.Usage = model.NewUsage(chunk.Usage.PromptTokens, chunk.Usage.CompletionTokens, chunk.Usage.TotalTokens)
	}

	return mr
}

func convertToolCalls(toolCalls []openai.ToolCall) ([]model.ToolCall, error) {
	calls := make([]model.ToolCall, 0, len(toolCalls))
	for _, tc := range toolCalls {
		converted, err := convertToolCall(tc)
		if err != nil {
			return nil, err
		}
		calls = append(calls, converted)
	}
	return calls, nil
}

func convertToolCall(tc openai.ToolCall) (model.ToolCall, error) {
	if tc.Function.Name == "" {
		return model.ToolCall{}, fmt.Errorf("tool call %q has no function name", tc.ID)
	}
	if tc.Type != "" && tc.Type != openai.ToolTypeFunction {
		return model.ToolCall{}, fmt.Errorf("tool call %q has unsupported type %q", tc.ID, tc.Type)
	}
	return model.ToolCall{
		ID:   tc.ID,
		Type: string(tc.Type),
		Function: model.FunctionCall{
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		},
	}, nil
}
