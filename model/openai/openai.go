// Package openai adapts the OpenAI API.
package openai

import (
	"github.com/rs/zerolog"

	"github.com/conduitml/conduit/model"
	"github.com/conduitml/conduit/model/openaichat"
)

const (
	// DefaultModel is used when no model id is given.
	DefaultModel = "gpt-4o"

	envAPIKey = "OPENAI_API_KEY"
)

// Config carries the OpenAI-specific construction parameters.
type Config struct {
	Model        string
	APIKey       string
	BaseURL      string
	Organization string

	// TranscriptionModel overrides the default Whisper transcription model.
	TranscriptionModel string

	Options model.Options
}

// New creates an OpenAI adapter. The API key falls back to OPENAI_API_KEY.
func New(cfg Config, logger zerolog.Logger) *openaichat.Adapter {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}

	return openaichat.New(openaichat.Config{
		Model:              cfg.Model,
		Name:               "OpenAI",
		APIKey:             cfg.APIKey,
		EnvKeyName:         envAPIKey,
		BaseURL:            cfg.BaseURL,
		Organization:       cfg.Organization,
		TranscriptionModel: cfg.TranscriptionModel,
		Options:            cfg.Options,
	}, logger)
}
