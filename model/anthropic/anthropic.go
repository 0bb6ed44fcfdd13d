// Package anthropic adapts Anthropic's Messages API to the model.Adapter
// contract.
package anthropic

import (
	"context"
	"os"
	"sync"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rs/zerolog"

	"github.com/conduitml/conduit/model"
)

const (
	// DefaultModel is used when no model id is given.
	DefaultModel = "claude-sonnet-4-5"

	// DefaultMaxTokens is sent when Options.MaxTokens is unset; the Messages
	// API requires an explicit cap.
	DefaultMaxTokens = 4096

	envAPIKey = "ANTHROPIC_API_KEY"
)

// Config carries the Anthropic-specific construction parameters.
type Config struct {
	Model  string
	APIKey string

	Options model.Options
}

// Adapter is a model.Adapter for Anthropic models.
type Adapter struct {
	id     string
	apiKey string
	opts   model.Options
	logger zerolog.Logger

	clientOnce sync.Once
	client     *anthropic.Client
}

// New creates an Anthropic adapter. The API key falls back to
// ANTHROPIC_API_KEY; a missing key is logged but not fatal.
func New(cfg Config, logger zerolog.Logger) *Adapter {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv(envAPIKey)
		if apiKey == "" {
			logger.Error().
				Str("env", envAPIKey).
				Str("provider", "Anthropic").
				Msg("API key not set; requests will fail")
		}
	}

	return &Adapter{
		id:     cfg.Model,
		apiKey: apiKey,
		opts:   cfg.Options,
		logger: logger.With().Str("provider", "Anthropic").Str("model", cfg.Model).Logger(),
	}
}

// ID implements model.Adapter.
func (a *Adapter) ID() string { return a.id }

// Name implements model.Adapter.
func (a *Adapter) Name() string { return "Anthropic" }

func (a *Adapter) apiClient() *anthropic.Client {
	a.clientOnce.Do(func() {
		client := anthropic.NewClient(option.WithAPIKey(a.apiKey))
		a.client = &client
	})
	return a.client
}

// Invoke implements model.Adapter.Invoke.
func (a *Adapter) Invoke(ctx context.Context, messages []model.Message) (*model.ModelResponse, error) {
	params := a.buildParams(messages)

	message, err := a.apiClient().Messages.New(ctx, params)
	if err != nil {
		return nil, ConvertError(err, "Anthropic", a.id, a.logger)
	}

	return a.parseMessage(message), nil
}

// InvokeStream implements model.Adapter.InvokeStream. Chunks are pulled from
// the wire one event at a time as the consumer advances the stream.
func (a *Adapter) InvokeStream(ctx context.Context, messages []model.Message) (model.Stream, error) {
	params := a.buildParams(messages)

	stream := a.apiClient().Messages.NewStreaming(ctx, params)
	return newMessageStream(stream, a.id, a.logger), nil
}

func (a *Adapter) buildParams(messages []model.Message) anthropic.MessageNewParams {
	maxTokens := DefaultMaxTokens
	if a.opts.MaxTokens != nil {
		maxTokens = *a.opts.MaxTokens
	}

	anthropicMsgs, system := a.formatMessages(messages)

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(a.id),
		MaxTokens: int64(maxTokens),
		Messages:  anthropicMsgs,
	}
	if system != "" {
		// cache_control on the system block caches the tools + system prefix
		// for repeated requests.
		params.System = []anthropic.TextBlockParam{
			{Text: system, CacheControl: anthropic.NewCacheControlEphemeralParam()},
		}
	}
	if a.opts.Temperature != nil {
		params.Temperature = anthropic.Float(*a.opts.Temperature)
	}
	if a.opts.TopP != nil {
		params.TopP = anthropic.Float(*a.opts.TopP)
	}
	if len(a.opts.Stop) > 0 {
		params.StopSequences = a.opts.Stop
	}
	if len(a.opts.Tools) > 0 {
		params.Tools = convertToolDefinitions(a.opts.Tools)
	}

	return params
}

var _ model.Adapter = (*Adapter)(nil)
