// Package providers constructs adapters from resolved client keys. It is the
// only package that imports every provider SDK, keeping the registry and the
// model package free of them.
package providers

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/conduitml/conduit/model"
	"github.com/conduitml/conduit/model/anthropic"
	"github.com/conduitml/conduit/model/azure"
	"github.com/conduitml/conduit/model/groq"
	"github.com/conduitml/conduit/model/litellm"
	"github.com/conduitml/conduit/model/ollama"
	"github.com/conduitml/conduit/model/openai"
)

// NewAdapter builds the adapter for a resolved client key.
func NewAdapter(key *model.ClientKey, opts model.Options, logger zerolog.Logger) (model.Adapter, error) {
	if key == nil {
		return nil, fmt.Errorf("client key is required")
	}

	switch key.Provider {
	case model.ProviderGroq:
		return groq.New(groq.Config{
			Model:   key.Model,
			APIKey:  key.APIKey,
			BaseURL: key.BaseURL,
			Options: opts,
		}, logger), nil

	case model.ProviderOpenAI:
		return openai.New(openai.Config{
			Model:        key.Model,
			APIKey:       key.APIKey,
			BaseURL:      key.BaseURL,
			Organization: key.Organization,
			Options:      opts,
		}, logger), nil

	case model.ProviderAzure:
		return azure.New(azure.Config{
			Model:      key.Model,
			APIKey:     key.APIKey,
			Endpoint:   key.Endpoint,
			APIVersion: key.APIVersion,
			Options:    opts,
		}, logger), nil

	case model.ProviderLiteLLM:
		return litellm.New(litellm.Config{
			Model:   key.Model,
			APIKey:  key.APIKey,
			BaseURL: key.BaseURL,
			Options: opts,
		}, logger), nil

	case model.ProviderAnthropic:
		return anthropic.New(anthropic.Config{
			Model:   key.Model,
			APIKey:  key.APIKey,
			Options: opts,
		}, logger), nil

	case model.ProviderOllama:
		return ollama.New(ollama.Config{
			Model:   key.Model,
			Host:    key.Host,
			Options: opts,
		}, logger), nil

	default:
		return nil, fmt.Errorf("unknown provider: %s", key.Provider)
	}
}
