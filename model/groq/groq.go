// Package groq adapts the Groq API, which speaks the OpenAI chat-completions
// wire format from a different endpoint.
package groq

import (
	"github.com/rs/zerolog"

	"github.com/conduitml/conduit/model"
	"github.com/conduitml/conduit/model/openaichat"
)

const (
	// BaseURL is Groq's OpenAI-compatible endpoint.
	BaseURL = "https://api.groq.com/openai/v1"

	// DefaultModel is used when no model id is given.
	DefaultModel = "llama-3.3-70b-versatile"

	// DefaultTranscriptionModel is Groq's hosted Whisper variant.
	DefaultTranscriptionModel = "whisper-large-v3-turbo"

	envAPIKey = "GROQ_API_KEY"
)

// Config carries the Groq-specific construction parameters.
type Config struct {
	Model   string
	APIKey  string
	BaseURL string

	// TranscriptionModel overrides the default audio transcription model.
	TranscriptionModel string

	Options model.Options
}

// New creates a Groq adapter. The API key falls back to GROQ_API_KEY.
func New(cfg Config, logger zerolog.Logger) *openaichat.Adapter {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = BaseURL
	}
	if cfg.TranscriptionModel == "" {
		cfg.TranscriptionModel = DefaultTranscriptionModel
	}

	return openaichat.New(openaichat.Config{
		Model:              cfg.Model,
		Name:               "Groq",
		APIKey:             cfg.APIKey,
		EnvKeyName:         envAPIKey,
		BaseURL:            cfg.BaseURL,
		TranscriptionModel: cfg.TranscriptionModel,
		Options:            cfg.Options,
	}, logger)
}
