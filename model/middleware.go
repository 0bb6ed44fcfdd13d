package model

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	// DefaultMaxRetries is the default maximum number of retry attempts.
	DefaultMaxRetries = 5
	// DefaultMaxElapsedTime caps the total time spent retrying one call.
	DefaultMaxElapsedTime = 5 * time.Minute
	// DefaultInitialInterval is the initial delay for exponential backoff.
	DefaultInitialInterval = 1 * time.Second
)

// RetryConfig tunes the retry decorator.
type RetryConfig struct {
	MaxRetries      uint64
	MaxElapsedTime  time.Duration
	InitialInterval time.Duration
}

// DefaultRetryConfig returns the default retry settings.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:      DefaultMaxRetries,
		MaxElapsedTime:  DefaultMaxElapsedTime,
		InitialInterval: DefaultInitialInterval,
	}
}

// WithRetry wraps an adapter so that retryable provider errors (rate limits,
// transient server errors) are retried with exponential backoff. Streaming
// calls are retried only at stream-creation time; mid-stream failures surface
// directly.
func WithRetry(adapter Adapter, cfg RetryConfig, logger zerolog.Logger) Adapter {
	return &retryAdapter{
		adapter: adapter,
		cfg:     cfg,
		logger:  logger.With().Str("component", "retry").Str("model", adapter.ID()).Logger(),
	}
}

type retryAdapter struct {
	adapter Adapter
	cfg     RetryConfig
	logger  zerolog.Logger
}

func (r *retryAdapter) ID() string   { return r.adapter.ID() }
func (r *retryAdapter) Name() string { return r.adapter.Name() }

func (r *retryAdapter) Invoke(ctx context.Context, messages []Message) (*ModelResponse, error) {
	var resp *ModelResponse
	err := backoff.Retry(func() error {
		var err error
		resp, err = r.adapter.Invoke(ctx, messages)
		return r.classify(err)
	}, r.newBackoff(ctx))
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (r *retryAdapter) InvokeStream(ctx context.Context, messages []Message) (Stream, error) {
	var stream Stream
	err := backoff.Retry(func() error {
		var err error
		stream, err = r.adapter.InvokeStream(ctx, messages)
		return r.classify(err)
	}, r.newBackoff(ctx))
	if err != nil {
		return nil, err
	}
	return stream, nil
}

// classify marks non-retryable errors permanent so backoff stops immediately.
func (r *retryAdapter) classify(err error) error {
	if err == nil {
		return nil
	}
	if !IsRetryableError(err) {
		return backoff.Permanent(err)
	}
	r.logger.Warn().Err(err).Msg("Retryable provider error, backing off")
	return err
}

func (r *retryAdapter) newBackoff(ctx context.Context) backoff.BackOff {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = r.cfg.InitialInterval
	eb.MaxElapsedTime = r.cfg.MaxElapsedTime
	eb.Reset()
	return backoff.WithContext(backoff.WithMaxRetries(eb, r.cfg.MaxRetries), ctx)
}

// NewLoggingMiddleware returns middleware that logs every invocation with a
// per-request id, message count, token usage, and errors.
func NewLoggingMiddleware(logger zerolog.Logger) Middleware {
	return &loggingMiddleware{
		logger: logger.With().Str("component", "model").Logger(),
	}
}

type loggingMiddleware struct {
	logger zerolog.Logger
}

func (l *loggingMiddleware) BeforeInvoke(ctx context.Context, messages []Message) ([]Message, error) {
	requestID := uuid.NewString()
	l.logger.Debug().
		Str("request_id", requestID).
		Int("messages", len(messages)).
		Msg("Invoking model")
	return messages, nil
}

func (l *loggingMiddleware) AfterInvoke(ctx context.Context, messages []Message, resp *ModelResponse) (*ModelResponse, error) {
	evt := l.logger.Debug().Int("tool_calls", len(resp.ToolCalls))
	if resp.Usage != nil {
		evt = evt.
			Int("input_tokens", resp.Usage.InputTokens).
			Int("output_tokens", resp.Usage.OutputTokens).
			Int("total_tokens", resp.Usage.TotalTokens)
	}
	evt.Msg("Model responded")
	return resp, nil
}

func (l *loggingMiddleware) OnError(ctx context.Context, messages []Message, err error) error {
	l.logger.Error().Err(err).Msg("Model invocation failed")
	return err
}

var _ Middleware = (*loggingMiddleware)(nil)
var _ Adapter = (*retryAdapter)(nil)
