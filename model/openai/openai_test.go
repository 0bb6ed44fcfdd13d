package openai

import (
	"testing"

	"github.com/rs/zerolog"
)

func TestNewDefaults(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "test-key")

	adapter := New(Config{}, zerolog.Nop())

	if adapter.ID() != DefaultModel {
		t.Errorf("expected default model %q, got %q", DefaultModel, adapter.ID())
	}
	if adapter.Name() != "OpenAI" {
		t.Errorf("expected provider name OpenAI, got %q", adapter.Name())
	}
}
