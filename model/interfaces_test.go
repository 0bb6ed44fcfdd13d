package model

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
)

// fakeAdapter returns canned responses and records invocation counts.
type fakeAdapter struct {
	invocations int
	responses   []*ModelResponse
	errs        []error
	chunks      []*ModelResponse
}

func (f *fakeAdapter) ID() string   { return "fake-model" }
func (f *fakeAdapter) Name() string { return "Fake" }

func (f *fakeAdapter) Invoke(ctx context.Context, messages []Message) (*ModelResponse, error) {
	i := f.invocations
	f.invocations++
	if i < len(f.errs) && f.errs[i] != nil {
		return nil, f.errs[i]
	}
	if i < len(f.responses) {
		return f.responses[i], nil
	}
	return &ModelResponse{Role: "assistant", Content: "ok"}, nil
}

func (f *fakeAdapter) InvokeStream(ctx context.Context, messages []Message) (Stream, error) {
	f.invocations++
	return &fakeStream{chunks: f.chunks}, nil
}

type fakeStream struct {
	chunks []*ModelResponse
	pos    int
	closed bool
}

func (s *fakeStream) Next() bool {
	if s.pos >= len(s.chunks) {
		return false
	}
	s.pos++
	return true
}

func (s *fakeStream) Current() *ModelResponse { return s.chunks[s.pos-1] }
func (s *fakeStream) Err() error              { return nil }
func (s *fakeStream) Close() error            { s.closed = true; return nil }

func TestWrapWithMiddlewareNoMiddleware(t *testing.T) {
	adapter := &fakeAdapter{}
	wrapped := WrapWithMiddleware(adapter)
	if wrapped != Adapter(adapter) {
		t.Error("expected adapter returned unchanged with no middleware")
	}
}

func TestMiddlewareBeforeInvokeModifiesMessages(t *testing.T) {
	adapter := &fakeAdapter{}
	var seen int
	mw := MiddlewareFunc{
		BeforeInvokeFunc: func(ctx context.Context, messages []Message) ([]Message, error) {
			seen = len(messages)
			return append(messages, NewTextMessage(RoleUser, "extra")), nil
		},
	}

	wrapped := WrapWithMiddleware(adapter, mw)
	_, err := wrapped.Invoke(context.Background(), []Message{NewTextMessage(RoleUser, "hi")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if seen != 1 {
		t.Errorf("expected middleware to see 1 message, saw %d", seen)
	}
}

func TestMiddlewareOnErrorCanReplaceError(t *testing.T) {
	sentinel := errors.New("replaced")
	adapter := &fakeAdapter{errs: []error{errors.New("original")}}
	mw := MiddlewareFunc{
		OnErrorFunc: func(ctx context.Context, messages []Message, err error) error {
			return sentinel
		},
	}

	wrapped := WrapWithMiddleware(adapter, mw)
	_, err := wrapped.Invoke(context.Background(), nil)
	if !errors.Is(err, sentinel) {
		t.Errorf("expected replaced error, got %v", err)
	}
}

func TestMiddlewareAfterInvokeRunsInReverseOrder(t *testing.T) {
	adapter := &fakeAdapter{}
	var order []string
	mkMW := func(name string) Middleware {
		return MiddlewareFunc{
			AfterInvokeFunc: func(ctx context.Context, messages []Message, resp *ModelResponse) (*ModelResponse, error) {
				order = append(order, name)
				return resp, nil
			},
		}
	}

	wrapped := WrapWithMiddleware(adapter, mkMW("first"), mkMW("second"))
	if _, err := wrapped.Invoke(context.Background(), nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(order) != 2 || order[0] != "second" || order[1] != "first" {
		t.Errorf("expected AfterInvoke in reverse order, got %v", order)
	}
}

func TestWithRetryRetriesRetryableErrors(t *testing.T) {
	adapter := &fakeAdapter{
		errs: []error{
			NewStatusError(503, "unavailable", "Fake", "fake-model", nil),
			nil,
		},
		responses: []*ModelResponse{nil, {Role: "assistant", Content: "recovered"}},
	}

	cfg := DefaultRetryConfig()
	cfg.InitialInterval = 1 // keep the test fast
	wrapped := WithRetry(adapter, cfg, zerolog.Nop())

	resp, err := wrapped.Invoke(context.Background(), nil)
	if err != nil {
		t.Fatalf("expected retry to recover, got %v", err)
	}
	if resp.Content != "recovered" {
		t.Errorf("expected recovered response, got %q", resp.Content)
	}
	if adapter.invocations != 2 {
		t.Errorf("expected 2 invocations, got %d", adapter.invocations)
	}
}

func TestWithRetryStopsOnPermanentError(t *testing.T) {
	adapter := &fakeAdapter{
		errs: []error{NewStatusError(400, "bad request", "Fake", "fake-model", nil)},
	}

	wrapped := WithRetry(adapter, DefaultRetryConfig(), zerolog.Nop())
	_, err := wrapped.Invoke(context.Background(), nil)
	if err == nil {
		t.Fatal("expected error")
	}
	if adapter.invocations != 1 {
		t.Errorf("expected a single attempt for non-retryable error, got %d", adapter.invocations)
	}
	var pe *ProviderError
	if !errors.As(err, &pe) {
		t.Errorf("expected ProviderError to surface unchanged, got %T", err)
	}
}

func TestStreamMiddlewareSeesChunks(t *testing.T) {
	adapter := &fakeAdapter{chunks: []*ModelResponse{
		{Content: "hel"},
		{Content: "lo"},
	}}

	var collected string
	mw := struct {
		MiddlewareFunc
		StreamMiddlewareFunc
	}{
		StreamMiddlewareFunc: StreamMiddlewareFunc{
			OnStreamChunkFunc: func(ctx context.Context, chunk *ModelResponse) (*ModelResponse, error) {
				collected += chunk.Content
				return chunk, nil
			},
		},
	}

	wrapped := WrapWithMiddleware(adapter, mw)
	stream, err := wrapped.InvokeStream(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer stream.Close()

	for stream.Next() {
	}
	if collected != "hello" {
		t.Errorf("expected middleware to see all chunks, got %q", collected)
	}
}

func TestStreamMiddlewareChunkErrorSurfacesFromErr(t *testing.T) {
	adapter := &fakeAdapter{chunks: []*ModelResponse{
		{Content: "hel"},
		{Content: "lo"},
	}}

	sentinel := errors.New("chunk rejected")
	mw := struct {
		MiddlewareFunc
		StreamMiddlewareFunc
	}{
		StreamMiddlewareFunc: StreamMiddlewareFunc{
			OnStreamChunkFunc: func(ctx context.Context, chunk *ModelResponse) (*ModelResponse, error) {
				return nil, sentinel
			},
		},
	}

	wrapped := WrapWithMiddleware(adapter, mw)
	stream, err := wrapped.InvokeStream(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer stream.Close()

	if stream.Next() {
		t.Error("expected the stream to abort on the first chunk")
	}
	if !errors.Is(stream.Err(), sentinel) {
		t.Errorf("expected middleware error from Err(), got %v", stream.Err())
	}
	if stream.Next() {
		t.Error("expected the stream to stay aborted")
	}
}

func TestStreamMiddlewareNilChunkIsSkipped(t *testing.T) {
	adapter := &fakeAdapter{chunks: []*ModelResponse{
		{Content: "drop me"},
		{Content: "keep me"},
	}}

	mw := struct {
		MiddlewareFunc
		StreamMiddlewareFunc
	}{
		StreamMiddlewareFunc: StreamMiddlewareFunc{
			OnStreamChunkFunc: func(ctx context.Context, chunk *ModelResponse) (*ModelResponse, error) {
				if chunk.Content == "drop me" {
					return nil, nil
				}
				return chunk, nil
			},
		},
	}

	wrapped := WrapWithMiddleware(adapter, mw)
	stream, err := wrapped.InvokeStream(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer stream.Close()

	var seen []string
	for stream.Next() {
		seen = append(seen, stream.Current().Content)
	}
	if stream.Err() != nil {
		t.Fatalf("unexpected stream error: %v", stream.Err())
	}
	if len(seen) != 1 || seen[0] != "keep me" {
		t.Errorf("expected swallowed chunk to be skipped, got %v", seen)
	}
}
