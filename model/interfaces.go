package model

import (
	"context"
)

// Adapter is the provider-neutral contract every provider implements.
// Implementations translate canonical messages into their provider's wire
// format, perform the call, and normalize the result into ModelResponse.
type Adapter interface {
	// ID returns the provider model id (e.g. "llama-3.3-70b-versatile").
	ID() string

	// Name returns the human-readable provider name (e.g. "Groq").
	Name() string

	// Invoke sends the conversation and returns a complete normalized
	// response. Blocking; run it from a goroutine for concurrent use.
	Invoke(ctx context.Context, messages []Message) (*ModelResponse, error)

	// InvokeStream sends the conversation and returns a lazy stream of
	// normalized partial responses. The caller must Close the stream; closing
	// before exhaustion releases the underlying transport.
	InvokeStream(ctx context.Context, messages []Message) (Stream, error)
}

// Stream is a pull-based sequence of partial responses. No chunk is fetched
// from the network before the consumer asks for it.
type Stream interface {
	// Next advances to the next chunk. Returns false when the stream is
	// complete or an error occurs.
	Next() bool

	// Current returns the chunk produced by the last successful Next.
	Current() *ModelResponse

	// Err returns any error that occurred during streaming.
	Err() error

	// Close releases the underlying transport. Safe to call more than once.
	Close() error
}

// TranscriptionOptions configures an audio transcription request.
type TranscriptionOptions struct {
	Model          string // provider transcription model; adapters supply a default
	Language       string // ISO-639-1 language hint
	Prompt         string // style/continuation hint
	ResponseFormat string // "text" (default), "json", "verbose_json"
	Temperature    *float64
	FileFormat     string // audio file extension; "mp3" when not inferable
}

// Transcriber is implemented by adapters whose provider exposes an audio
// transcription endpoint.
type Transcriber interface {
	TranscribeBytes(ctx context.Context, audio []byte, opts TranscriptionOptions) (string, error)
}

// Middleware provides hooks for decorating Adapter calls with cross-cutting
// concerns like logging and retry.
type Middleware interface {
	// BeforeInvoke is called before making an API request. It can modify the
	// message list or return an error to abort the call.
	BeforeInvoke(ctx context.Context, messages []Message) ([]Message, error)

	// AfterInvoke is called after receiving a response. It can modify the
	// response or return an error.
	AfterInvoke(ctx context.Context, messages []Message, resp *ModelResponse) (*ModelResponse, error)

	// OnError is called when an invocation fails. It can replace the error,
	// or return nil to swallow it and force a retry by the wrapper.
	OnError(ctx context.Context, messages []Message, err error) error
}

// StreamMiddleware provides hooks for decorating streaming calls.
type StreamMiddleware interface {
	// BeforeStream is called before starting a stream.
	BeforeStream(ctx context.Context, messages []Message) ([]Message, error)

	// OnStreamChunk is called for each streamed chunk. It can modify the
	// chunk or return an error to abort the stream.
	OnStreamChunk(ctx context.Context, chunk *ModelResponse) (*ModelResponse, error)

	// OnStreamError is called when a stream error occurs.
	OnStreamError(ctx context.Context, err error) error
}

// MiddlewareFunc is a function-struct implementation of Middleware.
type MiddlewareFunc struct {
	BeforeInvokeFunc func(ctx context.Context, messages []Message) ([]Message, error)
	AfterInvokeFunc  func(ctx context.Context, messages []Message, resp *ModelResponse) (*ModelResponse, error)
	OnErrorFunc      func(ctx context.Context, messages []Message, err error) error
}

// BeforeInvoke calls the BeforeInvokeFunc if set.
func (f MiddlewareFunc) BeforeInvoke(ctx context.Context, messages []Message) ([]Message, error) {
	if f.BeforeInvokeFunc != nil {
		return f.BeforeInvokeFunc(ctx, messages)
	}
	return messages, nil
}

// AfterInvoke calls the AfterInvokeFunc if set.
func (f MiddlewareFunc) AfterInvoke(ctx context.Context, messages []Message, resp *ModelResponse) (*ModelResponse, error) {
	if f.AfterInvokeFunc != nil {
		return f.AfterInvokeFunc(ctx, messages, resp)
	}
	return resp, nil
}

// OnError calls the OnErrorFunc if set.
func (f MiddlewareFunc) OnError(ctx context.Context, messages []Message, err error) error {
	if f.OnErrorFunc != nil {
		return f.OnErrorFunc(ctx, messages, err)
	}
	return err
}

// StreamMiddlewareFunc is a function-struct implementation of StreamMiddleware.
type StreamMiddlewareFunc struct {
	BeforeStreamFunc  func(ctx context.Context, messages []Message) ([]Message, error)
	OnStreamChunkFunc func(ctx context.Context, chunk *ModelResponse) (*ModelResponse, error)
	OnStreamErrorFunc func(ctx context.Context, err error) error
}

// BeforeStream calls the BeforeStreamFunc if set.
func (f StreamMiddlewareFunc) BeforeStream(ctx context.Context, messages []Message) ([]Message, error) {
	if f.BeforeStreamFunc != nil {
		return f.BeforeStreamFunc(ctx, messages)
	}
	return messages, nil
}

// OnStreamChunk calls the OnStreamChunkFunc if set.
func (f StreamMiddlewareFunc) OnStreamChunk(ctx context.Context, chunk *ModelResponse) (*ModelResponse, error) {
	if f.OnStreamChunkFunc != nil {
		return f.OnStreamChunkFunc(ctx, chunk)
	}
	return chunk, nil
}

// OnStreamError calls the OnStreamErrorFunc if set.
func (f StreamMiddlewareFunc) OnStreamError(ctx context.Context, err error) error {
	if f.OnStreamErrorFunc != nil {
		return f.OnStreamErrorFunc(ctx, err)
	}
	return err
}

// WrapWithMiddleware wraps an Adapter with middleware and returns a new
// Adapter. Middleware runs in order for BeforeInvoke and in reverse order for
// AfterInvoke.
func WrapWithMiddleware(adapter Adapter, middleware ...Middleware) Adapter {
	if len(middleware) == 0 {
		return adapter
	}
	return &adapterWithMiddleware{
		adapter:    adapter,
		middleware: middleware,
	}
}

type adapterWithMiddleware struct {
	adapter    Adapter
	middleware []Middleware
}

func (a *adapterWithMiddleware) ID() string   { return a.adapter.ID() }
func (a *adapterWithMiddleware) Name() string { return a.adapter.Name() }

// Invoke implements Adapter.Invoke with middleware support.
func (a *adapterWithMiddleware) Invoke(ctx context.Context, messages []Message) (*ModelResponse, error) {
	for _, mw := range a.middleware {
		var err error
		messages, err = mw.BeforeInvoke(ctx, messages)
		if err != nil {
			return nil, err
		}
	}

	resp, err := a.adapter.Invoke(ctx, messages)
	if err != nil {
		for _, mw := range a.middleware {
			err = mw.OnError(ctx, messages, err)
			if err == nil {
				break
			}
		}
		return nil, err
	}

	for i := len(a.middleware) - 1; i >= 0; i-- {
		resp, err = a.middleware[i].AfterInvoke(ctx, messages, resp)
		if err != nil {
			return nil, err
		}
	}

	return resp, nil
}

// InvokeStream implements Adapter.InvokeStream with middleware support.
func (a *adapterWithMiddleware) InvokeStream(ctx context.Context, messages []Message) (Stream, error) {
	for _, mw := range a.middleware {
		if smw, ok := mw.(StreamMiddleware); ok {
			var err error
			messages, err = smw.BeforeStream(ctx, messages)
			if err != nil {
				return nil, err
			}
		}
	}

	stream, err := a.adapter.InvokeStream(ctx, messages)
	if err != nil {
		for _, mw := range a.middleware {
			if smw, ok := mw.(StreamMiddleware); ok {
				err = smw.OnStreamError(ctx, err)
				if err == nil {
					break
				}
			}
		}
		return nil, err
	}

	return &streamWithMiddleware{
		stream:     stream,
		middleware: a.middleware,
		ctx:        ctx,
	}, nil
}

type streamWithMiddleware struct {
	stream     Stream
	middleware []Middleware
	ctx        context.Context
	chunk      *ModelResponse
	err        error
}

// Next implements Stream.Next with middleware support. A middleware returning
// a nil chunk swallows it and the stream moves on; a middleware returning an
// error aborts the stream and the error surfaces from Err.
func (s *streamWithMiddleware) Next() bool {
	if s.err != nil {
		return false
	}

chunks:
	for s.stream.Next() {
		chunk := s.stream.Current()
		if chunk == nil {
			continue
		}

		for _, mw := range s.middleware {
			if smw, ok := mw.(StreamMiddleware); ok {
				var err error
				chunk, err = smw.OnStreamChunk(s.ctx, chunk)
				if err != nil {
					s.err = err
					return false
				}
				if chunk == nil {
					continue chunks
				}
			}
		}

		s.chunk = chunk
		return true
	}

	return false
}

// Current implements Stream.Current.
func (s *streamWithMiddleware) Current() *ModelResponse {
	return s.chunk
}

// Err implements Stream.Err. A chunk-middleware abort takes precedence over
// the inner stream's error.
func (s *streamWithMiddleware) Err() error {
	if s.err != nil {
		return s.err
	}
	err := s.stream.Err()
	if err != nil {
		for _, mw := range s.middleware {
			if smw, ok := mw.(StreamMiddleware); ok {
				err = smw.OnStreamError(s.ctx, err)
				if err == nil {
					break
				}
			}
		}
	}
	return err
}

// Close implements Stream.Close.
func (s *streamWithMiddleware) Close() error {
	return s.stream.Close()
}

var _ Stream = (*streamWithMiddleware)(nil)
var _ Adapter = (*adapterWithMiddleware)(nil)
