package openaichat

import (
	"errors"
	"io"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"

	"github.com/conduitml/conduit/model"
)

// chatStream implements model.Stream over a go-openai completion stream.
// Each Next pulls exactly one chunk from the transport, so consumption pace
// governs request pacing and abandoning the stream plus Close releases the
// connection.
type chatStream struct {
	stream    *openai.ChatCompletionStream
	modelName string
	modelID   string
	logger    zerolog.Logger
	current   *model.ModelResponse
	err       error
	closed    bool
}

func newChatStream(stream *openai.ChatCompletionStream, modelName, modelID string, logger zerolog.Logger) *chatStream {
	return &chatStream{
		stream:    stream,
		modelName: modelName,
		modelID:   modelID,
		logger:    logger,
	}
}

// Next implements model.Stream.Next.
func (s *chatStream) Next() bool {
	if s.closed || s.err != nil {
		return false
	}

	chunk, err := s.stream.Recv()
	if err != nil {
		if !errors.Is(err, io.EOF) {
			s.err = ConvertError(err, s.modelName, s.modelID, s.logger)
		}
		return false
	}

	s.current = ParseResponseDelta(&chunk, s.logger)
	return true
}

// Current implements model.Stream.Current.
func (s *chatStream) Current() *model.ModelResponse {
	return s.current
}

// Err implements model.Stream.Err.
func (s *chatStream) Err() error {
	return s.err
}

// Close implements model.Stream.Close.
func (s *chatStream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.stream.Close()
}

var _ model.Stream = (*chatStream)(nil)
