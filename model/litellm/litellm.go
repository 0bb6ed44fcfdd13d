// Package litellm adapts a LiteLLM proxy, which exposes any backing provider
// behind the OpenAI chat-completions wire format.
package litellm

import (
	"os"

	"github.com/rs/zerolog"

	"github.com/conduitml/conduit/model"
	"github.com/conduitml/conduit/model/openaichat"
)

const (
	// DefaultBaseURL is the proxy's default local listen address.
	DefaultBaseURL = "http://0.0.0.0:4000"

	envAPIKey = "LITELLM_API_KEY"
)

// Config carries the LiteLLM-specific construction parameters.
type Config struct {
	Model   string
	APIKey  string
	BaseURL string

	Options model.Options
}

// New creates a LiteLLM adapter. The API key falls back to LITELLM_API_KEY,
// then OPENAI_API_KEY, matching what proxy deployments commonly configure.
func New(cfg Config, logger zerolog.Logger) *openaichat.Adapter {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv(envAPIKey)
	}

	return openaichat.New(openaichat.Config{
		Model:      cfg.Model,
		Name:       "LiteLLM",
		APIKey:     apiKey,
		EnvKeyName: "OPENAI_API_KEY",
		BaseURL:    cfg.BaseURL,
		Options:    cfg.Options,
	}, logger)
}
