// Package openaichat implements the model.Adapter contract for every provider
// that speaks the OpenAI chat-completions wire format (OpenAI itself, Groq,
// Azure OpenAI, LiteLLM). Provider packages configure it with their base URL,
// API-key environment variable, and defaults.
package openaichat

import (
	"context"
	"os"
	"sync"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"

	"github.com/conduitml/conduit/model"
)

// Config carries the construction parameters for an Adapter. All state is
// explicit and owned by the adapter instance.
type Config struct {
	// Model is the provider model id sent with every request.
	Model string

	// Name is the human-readable provider name used in errors and logs.
	Name string

	// APIKey authenticates requests. When empty, EnvKeyName is consulted;
	// a still-missing key is logged but not fatal — the first network call
	// fails instead.
	APIKey string

	// EnvKeyName is the provider's API-key environment variable
	// (e.g. "GROQ_API_KEY").
	EnvKeyName string

	// BaseURL overrides the default OpenAI endpoint (Groq, LiteLLM, proxies).
	BaseURL string

	// Organization is the OpenAI organization id, when applicable.
	Organization string

	// TranscriptionModel is the default audio transcription model.
	TranscriptionModel string

	// Options is the per-request parameter set; only set fields are sent.
	Options model.Options
}

// Adapter is a model.Adapter for OpenAI-compatible chat APIs.
type Adapter struct {
	id                 string
	name               string
	opts               model.Options
	transcriptionModel string
	clientConfig       openai.ClientConfig
	logger             zerolog.Logger

	clientOnce sync.Once
	client     *openai.Client
}

// New creates an Adapter from Config, resolving the API key from the
// environment when not given explicitly.
func New(cfg Config, logger zerolog.Logger) *Adapter {
	apiKey := cfg.APIKey
	if apiKey == "" && cfg.EnvKeyName != "" {
		apiKey = os.Getenv(cfg.EnvKeyName)
		if apiKey == "" {
			logger.Error().
				Str("env", cfg.EnvKeyName).
				Str("provider", cfg.Name).
				Msg("API key not set; requests will fail")
		}
	}

	clientCfg := openai.DefaultConfig(apiKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	if cfg.Organization != "" {
		clientCfg.OrgID = cfg.Organization
	}

	return NewWithClientConfig(cfg, clientCfg, logger)
}

// NewWithClientConfig creates an Adapter with a fully prepared go-openai
// client configuration. Azure uses this to supply its resource endpoint and
// API version.
func NewWithClientConfig(cfg Config, clientCfg openai.ClientConfig, logger zerolog.Logger) *Adapter {
	return &Adapter{
		id:                 cfg.Model,
		name:               cfg.Name,
		opts:               cfg.Options,
		transcriptionModel: cfg.TranscriptionModel,
		clientConfig:       clientCfg,
		logger:             logger.With().Str("provider", cfg.Name).Str("model", cfg.Model).Logger(),
	}
}

// ID implements model.Adapter.
func (a *Adapter) ID() string { return a.id }

// Name implements model.Adapter.
func (a *Adapter) Name() string { return a.name }

// apiClient lazily constructs the underlying client once and reuses it for
// the adapter's lifetime.
func (a *Adapter) apiClient() *openai.Client {
	a.clientOnce.Do(func() {
		a.client = openai.NewClientWithConfig(a.clientConfig)
	})
	return a.client
}

// Invoke implements model.Adapter.Invoke.
func (a *Adapter) Invoke(ctx context.Context, messages []model.Message) (*model.ModelResponse, error) {
	req := a.buildRequest(ctx, messages, false)

	resp, err := a.apiClient().CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, a.convertError(err)
	}

	return ParseResponse(&resp, a.logger), nil
}

// InvokeStream implements model.Adapter.InvokeStream. The returned stream is
// lazy: each chunk is fetched from the network only when the consumer asks
// for it, and Close releases the transport even mid-stream.
func (a *Adapter) InvokeStream(ctx context.Context, messages []model.Message) (model.Stream, error) {
	req := a.buildRequest(ctx, messages, true)

	stream, err := a.apiClient().CreateChatCompletionStream(ctx, req)
	if err != nil {
		return nil, a.convertError(err)
	}

	return newChatStream(stream, a.name, a.id, a.logger), nil
}

// buildRequest assembles the chat-completion request, transmitting only the
// option fields that are set.
func (a *Adapter) buildRequest(ctx context.Context, messages []model.Message, stream bool) openai.ChatCompletionRequest {
	req := openai.ChatCompletionRequest{
		Model:    a.id,
		Messages: a.formatMessages(ctx, messages),
		Stream:   stream,
	}
	if stream {
		req.StreamOptions = &openai.StreamOptions{IncludeUsage: true}
	}

	opts := a.opts
	if opts.Temperature != nil {
		req.Temperature = float32(*opts.Temperature)
	}
	if opts.TopP != nil {
		req.TopP = float32(*opts.TopP)
	}
	if opts.MaxTokens != nil {
		req.MaxTokens = *opts.MaxTokens
	}
	if len(opts.Stop) > 0 {
		req.Stop = opts.Stop
	}
	if opts.Seed != nil {
		req.Seed = opts.Seed
	}
	if opts.FrequencyPenalty != nil {
		req.FrequencyPenalty = float32(*opts.FrequencyPenalty)
	}
	if opts.PresencePenalty != nil {
		req.PresencePenalty = float32(*opts.PresencePenalty)
	}
	if opts.User != "" {
		req.User = opts.User
	}
	if opts.ResponseFormat != nil {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatType(opts.ResponseFormat.Type),
		}
	}
	if len(opts.Tools) > 0 {
		req.Tools = convertToolDefinitions(opts.Tools)
		if opts.ToolChoice != nil {
			req.ToolChoice = opts.ToolChoice
		} else {
			req.ToolChoice = "auto"
		}
	}

	return req
}

var _ model.Adapter = (*Adapter)(nil)
var _ model.Transcriber = (*Adapter)(nil)
