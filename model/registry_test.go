package model

import (
	"testing"
)

// clearProviderEnv keeps registry tests deterministic regardless of the
// developer's shell environment.
func clearProviderEnv(t *testing.T) {
	t.Helper()
	for _, v := range []string{
		"GROQ_API_KEY", "OPENAI_API_KEY", "OPENAI_BASE_URL", "OPENAI_ORG_ID", "OPENAI_MODEL",
		"AZURE_OPENAI_API_KEY", "AZURE_OPENAI_ENDPOINT", "AZURE_OPENAI_API_VERSION",
		"LITELLM_API_KEY", "ANTHROPIC_API_KEY", "OLLAMA_HOST", "OLLAMA_MODEL",
	} {
		t.Setenv(v, "")
	}
}

func TestRegistry_IsProviderEnabled(t *testing.T) {
	registry := NewRegistry(&ProviderConfig{}, []string{ProviderGroq, ProviderOllama})

	if !registry.IsProviderEnabled(ProviderGroq) {
		t.Error("groq should be enabled")
	}
	if !registry.IsProviderEnabled(ProviderOllama) {
		t.Error("ollama should be enabled")
	}
	if registry.IsProviderEnabled(ProviderOpenAI) {
		t.Error("openai should not be enabled")
	}
}

func TestRegistry_IsProviderConfigured(t *testing.T) {
	clearProviderEnv(t)

	registry := NewRegistry(&ProviderConfig{}, []string{ProviderGroq})
	if registry.IsProviderConfigured(ProviderGroq) {
		t.Error("groq should not be configured without API key")
	}

	registry2 := NewRegistry(&ProviderConfig{GroqAPIKey: "test-key"}, []string{ProviderGroq})
	if !registry2.IsProviderConfigured(ProviderGroq) {
		t.Error("groq should be configured with API key")
	}

	// Ollama needs no API key.
	registry3 := NewRegistry(&ProviderConfig{}, []string{ProviderOllama})
	if !registry3.IsProviderConfigured(ProviderOllama) {
		t.Error("ollama should always be configured")
	}

	// Azure needs both key and endpoint.
	registry4 := NewRegistry(&ProviderConfig{AzureAPIKey: "k"}, []string{ProviderAzure})
	if registry4.IsProviderConfigured(ProviderAzure) {
		t.Error("azure should not be configured without endpoint")
	}
	registry5 := NewRegistry(&ProviderConfig{AzureAPIKey: "k", AzureEndpoint: "https://r.openai.azure.com"}, []string{ProviderAzure})
	if !registry5.IsProviderConfigured(ProviderAzure) {
		t.Error("azure should be configured with key and endpoint")
	}
}

func TestRegistry_ConfiguredFromEnvironment(t *testing.T) {
	clearProviderEnv(t)
	t.Setenv("GROQ_API_KEY", "env-key")

	registry := NewRegistry(&ProviderConfig{}, []string{ProviderGroq})
	if !registry.IsProviderConfigured(ProviderGroq) {
		t.Error("groq should be configured from environment")
	}

	key, err := registry.Resolve([]Preference{{Provider: ProviderGroq}})
	if err != nil {
		t.Fatalf("failed to resolve: %v", err)
	}
	if key.APIKey != "env-key" {
		t.Errorf("expected API key from environment, got %q", key.APIKey)
	}
	if key.Model != "llama-3.3-70b-versatile" {
		t.Errorf("expected default groq model, got %q", key.Model)
	}
}

func TestRegistry_ResolveFirstPreference(t *testing.T) {
	clearProviderEnv(t)
	registry := NewRegistry(&ProviderConfig{
		GroqAPIKey:  "gk",
		OllamaHost:  "http://localhost:11434",
		OllamaModel: "mistral",
	}, []string{ProviderGroq, ProviderOllama})

	key, err := registry.Resolve([]Preference{
		{Provider: ProviderGroq, Model: "llama-3.1-8b-instant"},
		{Provider: ProviderOllama, Model: "mistral"},
	})
	if err != nil {
		t.Fatalf("failed to resolve: %v", err)
	}
	if key.Provider != ProviderGroq {
		t.Errorf("expected provider 'groq', got %q", key.Provider)
	}
	if key.Model != "llama-3.1-8b-instant" {
		t.Errorf("expected preferred model, got %q", key.Model)
	}
}

func TestRegistry_ResolveFallsBackToNextPreference(t *testing.T) {
	clearProviderEnv(t)
	// Groq preferred but not enabled; should fall through to ollama.
	registry := NewRegistry(&ProviderConfig{
		OllamaHost:  "http://localhost:11434",
		OllamaModel: "mistral",
	}, []string{ProviderOllama})

	key, err := registry.Resolve([]Preference{
		{Provider: ProviderGroq},
		{Provider: ProviderOllama},
	})
	if err != nil {
		t.Fatalf("failed to resolve: %v", err)
	}
	if key.Provider != ProviderOllama {
		t.Errorf("expected fallback to ollama, got %q", key.Provider)
	}
	if key.Host != "http://localhost:11434" {
		t.Errorf("expected ollama host resolved, got %q", key.Host)
	}
}

func TestRegistry_ResolveNoAvailableProvider(t *testing.T) {
	clearProviderEnv(t)
	registry := NewRegistry(&ProviderConfig{}, []string{})

	if _, err := registry.Resolve([]Preference{{Provider: ProviderGroq}}); err == nil {
		t.Error("expected error when no providers are enabled")
	}
	if _, err := registry.Resolve(nil); err == nil {
		t.Error("expected error for empty preference list")
	}
}

func TestRegistry_LiteLLMDefaults(t *testing.T) {
	clearProviderEnv(t)
	registry := NewRegistry(&ProviderConfig{}, []string{ProviderLiteLLM})

	key, err := registry.Resolve([]Preference{{Provider: ProviderLiteLLM}})
	if err != nil {
		t.Fatalf("failed to resolve: %v", err)
	}
	if key.BaseURL != "http://0.0.0.0:4000" {
		t.Errorf("expected default litellm base URL, got %q", key.BaseURL)
	}
}
