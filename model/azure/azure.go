// Package azure adapts Azure OpenAI deployments. Azure differs from plain
// OpenAI in authentication and routing (resource endpoint plus api-version
// query parameter), so the client configuration is built here rather than in
// openaichat.
package azure

import (
	"os"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"

	"github.com/conduitml/conduit/model"
	"github.com/conduitml/conduit/model/openaichat"
)

const (
	// DefaultAPIVersion is sent when the deployment does not pin one.
	DefaultAPIVersion = "2024-10-21"

	envAPIKey     = "AZURE_OPENAI_API_KEY"
	envEndpoint   = "AZURE_OPENAI_ENDPOINT"
	envAPIVersion = "AZURE_OPENAI_API_VERSION"
)

// Config carries the Azure-specific construction parameters. Model doubles as
// the deployment name.
type Config struct {
	Model      string
	APIKey     string
	Endpoint   string
	APIVersion string

	Options model.Options
}

// New creates an Azure OpenAI adapter. APIKey, Endpoint, and APIVersion fall
// back to AZURE_OPENAI_API_KEY, AZURE_OPENAI_ENDPOINT, and
// AZURE_OPENAI_API_VERSION respectively.
func New(cfg Config, logger zerolog.Logger) *openaichat.Adapter {
	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv(envAPIKey)
		if apiKey == "" {
			logger.Error().
				Str("env", envAPIKey).
				Str("provider", "Azure OpenAI").
				Msg("API key not set; requests will fail")
		}
	}
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = os.Getenv(envEndpoint)
	}
	apiVersion := cfg.APIVersion
	if apiVersion == "" {
		apiVersion = os.Getenv(envAPIVersion)
	}
	if apiVersion == "" {
		apiVersion = DefaultAPIVersion
	}

	clientCfg := openai.DefaultAzureConfig(apiKey, endpoint)
	clientCfg.APIVersion = apiVersion

	return openaichat.NewWithClientConfig(openaichat.Config{
		Model:   cfg.Model,
		Name:    "Azure OpenAI",
		Options: cfg.Options,
	}, clientCfg, logger)
}
