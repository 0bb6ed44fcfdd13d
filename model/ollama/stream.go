package ollama

import (
	"context"
	"errors"

	"github.com/ollama/ollama/api"
	"github.com/rs/zerolog"

	"github.com/conduitml/conduit/model"
)

// chatStream bridges the callback-driven native client to model.Stream. The
// producer goroutine sends each chunk over an unbuffered channel, so it runs
// no further ahead than the consumer and Close aborts it promptly.
type chatStream struct {
	cancel  context.CancelFunc
	chunks  chan *model.ModelResponse
	done    chan error
	modelID string
	logger  zerolog.Logger

	current *model.ModelResponse
	err     error
	closed  bool
	drained bool
}

func newChatStream(ctx context.Context, client *api.Client, req *api.ChatRequest, modelID string, logger zerolog.Logger) *chatStream {
	ctx, cancel := context.WithCancel(ctx)
	s := &chatStream{
		cancel:  cancel,
		chunks:  make(chan *model.ModelResponse),
		done:    make(chan error, 1),
		modelID: modelID,
		logger:  logger,
	}

	go func() {
		toolIndex := 0
		err := client.Chat(ctx, req, func(resp api.ChatResponse) error {
			for _, chunk := range s.convertResponse(&resp, &toolIndex) {
				select {
				case s.chunks <- chunk:
				case <-ctx.Done():
					return ctx.Err()
				}
			}
			return nil
		})
		s.done <- err
		close(s.chunks)
	}()

	return s
}

// convertResponse maps one callback payload to zero or more chunks.
func (s *chatStream) convertResponse(resp *api.ChatResponse, toolIndex *int) []*model.ModelResponse {
	var chunks []*model.ModelResponse

	if resp.Message.Content != "" {
		chunks = append(chunks, &model.ModelResponse{
			Role:    string(model.RoleAssistant),
			Content: resp.Message.Content,
		})
	}

	// Tool calls arrive whole rather than fragmented; each one becomes a
	// single self-contained fragment at its own index.
	for _, tc := range resp.Message.ToolCalls {
		call, err := convertToolCall(tc, *toolIndex)
		if err != nil {
			s.logger.Warn().Err(err).Msg("Dropping malformed streamed tool call")
			continue
		}
		chunks = append(chunks, &model.ModelResponse{
			ToolCallFragments: []model.ToolCallFragment{{
				Index:     *toolIndex,
				ID:        call.ID,
				Type:      call.Type,
				Name:      call.Function.Name,
				Arguments: call.Function.Arguments,
			}},
		})
		*toolIndex++
	}

	if resp.Done {
		chunks = append(chunks, &model.ModelResponse{Usage: convertUsage(&resp.Metrics)})
	}

	return chunks
}

// Next advances to the next chunk; false at end of stream or on error.
func (s *chatStream) Next() bool {
	if s.err != nil || s.closed || s.drained {
		return false
	}

	chunk, ok := <-s.chunks
	if ok {
		s.current = chunk
		return true
	}

	s.drained = true
	s.current = nil
	if err := <-s.done; err != nil && !errors.Is(err, context.Canceled) {
		s.err = ConvertError(err, "Ollama", s.modelID, s.logger)
	}
	return false
}

// Current returns the chunk produced by the last successful Next.
func (s *chatStream) Current() *model.ModelResponse { return s.current }

// Err returns the error that terminated the stream, if any.
func (s *chatStream) Err() error { return s.err }

// Close aborts the producer. Safe to call mid-stream and more than once.
func (s *chatStream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.cancel()
	return nil
}

var _ model.Stream = (*chatStream)(nil)
