package anthropic

import (
	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/packages/ssestream"
	"github.com/rs/zerolog"

	"github.com/conduitml/conduit/model"
)

// messageStream adapts the Messages API event stream to model.Stream. It is
// pull-based: each Next pulls wire events until one yields a chunk, so an
// abandoned stream holds no buffered backlog.
type messageStream struct {
	stream  *ssestream.Stream[anthropic.MessageStreamEventUnion]
	modelID string
	logger  zerolog.Logger

	current *model.ModelResponse
	err     error
	closed  bool

	// toolIndex maps the wire content-block index to a dense fragment index,
	// so a leading text block does not shift tool call positions.
	toolIndex   map[int64]int
	inputTokens int
}

func newMessageStream(stream *ssestream.Stream[anthropic.MessageStreamEventUnion], modelID string, logger zerolog.Logger) *messageStream {
	return &messageStream{
		stream:    stream,
		modelID:   modelID,
		logger:    logger,
		toolIndex: map[int64]int{},
	}
}

// Next advances to the next chunk. It returns false at end of stream or on
// error; consult Err to distinguish.
func (s *messageStream) Next() bool {
	if s.err != nil || s.closed {
		return false
	}

	for s.stream.Next() {
		if chunk := s.convertEvent(s.stream.Current()); chunk != nil {
			s.current = chunk
			return true
		}
	}

	if err := s.stream.Err(); err != nil {
		s.err = ConvertError(err, "Anthropic", s.modelID, s.logger)
	}
	s.current = nil
	return false
}

// Current returns the chunk produced by the last successful Next.
func (s *messageStream) Current() *model.ModelResponse { return s.current }

// Err returns the error that terminated the stream, if any.
func (s *messageStream) Err() error { return s.err }

// Close releases the underlying connection. Safe to call mid-stream and more
// than once.
func (s *messageStream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.stream.Close()
}

// convertEvent maps one wire event to a chunk, or nil for events that carry
// nothing the consumer needs.
func (s *messageStream) convertEvent(event anthropic.MessageStreamEventUnion) *model.ModelResponse {
	switch evt := event.AsAny().(type) {
	case anthropic.MessageStartEvent:
		s.inputTokens = int(evt.Message.Usage.InputTokens)
		return &model.ModelResponse{Role: string(model.RoleAssistant)}

	case anthropic.ContentBlockStartEvent:
		if block, ok := evt.ContentBlock.AsAny().(anthropic.ToolUseBlock); ok {
			index := len(s.toolIndex)
			s.toolIndex[evt.Index] = index
			return &model.ModelResponse{
				ToolCallFragments: []model.ToolCallFragment{{
					Index: index,
					ID:    block.ID,
					Type:  "function",
					Name:  block.Name,
				}},
			}
		}
		return nil

	case anthropic.ContentBlockDeltaEvent:
		switch delta := evt.Delta.AsAny().(type) {
		case anthropic.TextDelta:
			if delta.Text == "" {
				return nil
			}
			return &model.ModelResponse{Content: delta.Text}
		case anthropic.InputJSONDelta:
			if delta.PartialJSON == "" {
				return nil
			}
			index, ok := s.toolIndex[evt.Index]
			if !ok {
				s.logger.Warn().Int64("index", evt.Index).Msg("Tool input delta for unknown block; dropping")
				return nil
			}
			return &model.ModelResponse{
				ToolCallFragments: []model.ToolCallFragment{{
					Index:     index,
					Arguments: delta.PartialJSON,
				}},
			}
		}
		return nil

	case anthropic.MessageDeltaEvent:
		inputTokens := s.inputTokens
		if evt.Usage.InputTokens > 0 {
			inputTokens = int(evt.Usage.InputTokens)
		}
		usage := model.NewUsage(inputTokens, int(evt.Usage.OutputTokens), 0)
		if evt.Usage.CacheCreationInputTokens > 0 || evt.Usage.CacheReadInputTokens > 0 {
			usage.AdditionalMetrics = map[string]any{
				"cache_creation_input_tokens": int(evt.Usage.CacheCreationInputTokens),
				"cache_read_input_tokens":     int(evt.Usage.CacheReadInputTokens),
			}
		}
		return &model.ModelResponse{Usage: usage}

	default:
		return nil
	}
}

var _ model.Stream = (*messageStream)(nil)
