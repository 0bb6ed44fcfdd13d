// Package ollama adapts a local or remote Ollama server via its native chat
// API.
package ollama

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/ollama/ollama/api"
	"github.com/rs/zerolog"

	"github.com/conduitml/conduit/model"
)

// DefaultHost is used when neither Config.Host nor OLLAMA_HOST is set.
const DefaultHost = "http://localhost:11434"

// Config carries the Ollama-specific construction parameters.
type Config struct {
	Model string

	// Host is the server address. When empty the client is built from the
	// environment (OLLAMA_HOST, falling back to localhost:11434).
	Host string

	Options model.Options
}

// Adapter is a model.Adapter for Ollama-served models.
type Adapter struct {
	id     string
	host   string
	opts   model.Options
	logger zerolog.Logger

	clientOnce sync.Once
	client     *api.Client
	clientErr  error
}

// New creates an Ollama adapter. No network contact happens until the first
// request.
func New(cfg Config, logger zerolog.Logger) *Adapter {
	return &Adapter{
		id:     cfg.Model,
		host:   cfg.Host,
		opts:   cfg.Options,
		logger: logger.With().Str("provider", "Ollama").Str("model", cfg.Model).Logger(),
	}
}

// ID implements model.Adapter.
func (a *Adapter) ID() string { return a.id }

// Name implements model.Adapter.
func (a *Adapter) Name() string { return "Ollama" }

func (a *Adapter) apiClient() (*api.Client, error) {
	a.clientOnce.Do(func() {
		if a.host == "" {
			a.client, a.clientErr = api.ClientFromEnvironment()
			return
		}
		baseURL, err := parseHost(a.host)
		if err != nil {
			a.clientErr = fmt.Errorf("invalid ollama host %q: %w", a.host, err)
			return
		}
		a.client = api.NewClient(baseURL, &http.Client{})
	})
	return a.client, a.clientErr
}

func parseHost(host string) (*url.URL, error) {
	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		host = "http://" + host
	}
	return url.Parse(host)
}

// Invoke implements model.Adapter.Invoke.
func (a *Adapter) Invoke(ctx context.Context, messages []model.Message) (*model.ModelResponse, error) {
	client, err := a.apiClient()
	if err != nil {
		return nil, model.NewProviderError(err.Error(), "Ollama", a.id, err)
	}

	req := a.buildRequest(messages, false)

	var final api.ChatResponse
	err = client.Chat(ctx, req, func(resp api.ChatResponse) error {
		final = resp
		return nil
	})
	if err != nil {
		return nil, ConvertError(err, "Ollama", a.id, a.logger)
	}

	return a.parseResponse(&final), nil
}

// InvokeStream implements model.Adapter.InvokeStream. The callback-driven
// client API is bridged to a pull stream over an unbuffered channel, so the
// producer blocks until the consumer asks for the next chunk.
func (a *Adapter) InvokeStream(ctx context.Context, messages []model.Message) (model.Stream, error) {
	client, err := a.apiClient()
	if err != nil {
		return nil, model.NewProviderError(err.Error(), "Ollama", a.id, err)
	}

	req := a.buildRequest(messages, true)
	return newChatStream(ctx, client, req, a.id, a.logger), nil
}

func (a *Adapter) buildRequest(messages []model.Message, stream bool) *api.ChatRequest {
	req := &api.ChatRequest{
		Model:    a.id,
		Messages: a.formatMessages(messages),
		Stream:   &stream,
		Options:  map[string]any{},
	}

	if a.opts.JSONMode() {
		req.Format = []byte(`"json"`)
	}
	if len(a.opts.Tools) > 0 {
		req.Tools = convertToolDefinitions(a.opts.Tools)
	}
	if a.opts.MaxTokens != nil {
		req.Options["num_predict"] = *a.opts.MaxTokens
	}
	if a.opts.Temperature != nil {
		req.Options["temperature"] = *a.opts.Temperature
	}
	if a.opts.TopP != nil {
		req.Options["top_p"] = *a.opts.TopP
	}
	if a.opts.Seed != nil {
		req.Options["seed"] = *a.opts.Seed
	}
	if len(a.opts.Stop) > 0 {
		req.Options["stop"] = a.opts.Stop
	}
	if a.opts.FrequencyPenalty != nil {
		req.Options["frequency_penalty"] = *a.opts.FrequencyPenalty
	}
	if a.opts.PresencePenalty != nil {
		req.Options["presence_penalty"] = *a.opts.PresencePenalty
	}

	return req
}

// parseResponse normalizes a complete chat response, including the server's
// timing counters.
func (a *Adapter) parseResponse(resp *api.ChatResponse) *model.ModelResponse {
	response := &model.ModelResponse{
		Role:    string(model.RoleAssistant),
		Content: resp.Message.Content,
	}

	for i, tc := range resp.Message.ToolCalls {
		call, err := convertToolCall(tc, i)
		if err != nil {
			a.logger.Warn().Err(err).Msg("Failed to normalize tool calls; omitting all")
			response.ToolCalls = nil
			break
		}
		response.ToolCalls = append(response.ToolCalls, call)
	}

	if resp.Done {
		response.Usage = convertUsage(&resp.Metrics)
	}

	return response
}

// convertUsage maps eval counts onto token usage and keeps the timing
// counters in the metrics bag.
func convertUsage(m *api.Metrics) *model.Usage {
	usage := model.NewUsage(m.PromptEvalCount, m.EvalCount, 0)
	usage.AdditionalMetrics = map[string]any{
		"total_duration":       m.TotalDuration,
		"load_duration":        m.LoadDuration,
		"prompt_eval_duration": m.PromptEvalDuration,
		"eval_duration":        m.EvalDuration,
	}
	return usage
}

var _ model.Adapter = (*Adapter)(nil)
