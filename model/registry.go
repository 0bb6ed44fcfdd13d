package model

import (
	"fmt"
	"os"
	"sync"

	"github.com/samber/lo"
)

const (
	ProviderAnthropic = "anthropic"
	ProviderAzure     = "azure"
	ProviderGroq      = "groq"
	ProviderLiteLLM   = "litellm"
	ProviderOllama    = "ollama"
	ProviderOpenAI    = "openai"
)

// Preference represents a single provider/model preference. Callers supply an
// ordered list and the registry resolves the first usable one.
type Preference struct {
	Provider    string
	Model       string
	Temperature *float64
}

// ClientKey uniquely identifies an adapter configuration. Adapter
// construction from a key is the caller's job; the registry only resolves
// configuration so it stays free of provider SDK imports.
type ClientKey struct {
	Provider     string
	Model        string
	APIKey       string
	BaseURL      string // OpenAI-compatible endpoints (Groq, LiteLLM, custom OpenAI)
	Organization string // OpenAI
	Endpoint     string // Azure resource endpoint
	APIVersion   string // Azure API version
	Host         string // Ollama
}

// ProviderConfig holds the static configuration for every known provider.
type ProviderConfig struct {
	GroqAPIKey    string
	GroqBaseURL   string
	GroqModel     string
	OpenAIAPIKey  string
	OpenAIBaseURL string
	OpenAIModel   string
	OpenAIOrg     string
	AzureAPIKey   string
	AzureEndpoint string
	AzureModel    string
	AzureVersion  string
	LiteLLMBase   string
	LiteLLMModel  string
	AnthropicKey  string
	AnthropicMod  string
	OllamaHost    string
	OllamaModel   string
}

// Registry manages provider selection and configuration resolution.
type Registry struct {
	enabledProviders map[string]bool
	mu               sync.RWMutex
	config           *ProviderConfig
}

// NewRegistry creates a Registry with the given config and enabled providers.
func NewRegistry(cfg *ProviderConfig, enabledProviders []string) *Registry {
	enabledMap := make(map[string]bool)
	for _, p := range enabledProviders {
		enabledMap[p] = true
	}
	return &Registry{
		enabledProviders: enabledMap,
		config:           cfg,
	}
}

// IsProviderEnabled checks if a provider is in the enabled set.
func (r *Registry) IsProviderEnabled(provider string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.enabledProviders[provider]
}

// IsProviderConfigured checks if a provider has the configuration it needs
// (API key, endpoint, etc.), consulting the environment as a fallback.
func (r *Registry) IsProviderConfigured(provider string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.isConfiguredUnlocked(provider)
}

// EnabledProviders returns the enabled provider names.
func (r *Registry) EnabledProviders() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return lo.Keys(r.enabledProviders)
}

// Resolve returns a ClientKey for the first enabled and configured provider
// in the preference list.
func (r *Registry) Resolve(prefs []Preference) (*ClientKey, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(prefs) == 0 {
		return nil, fmt.Errorf("no provider preferences given")
	}

	var attempted []string
	for _, pref := range prefs {
		attempted = append(attempted, pref.Provider)
		if !r.enabledProviders[pref.Provider] {
			continue
		}
		if !r.isConfiguredUnlocked(pref.Provider) {
			continue
		}
		key, err := r.resolveProvider(pref.Provider, pref.Model)
		if err != nil {
			continue
		}
		return key, nil
	}

	return nil, fmt.Errorf("no available provider from preferences %v (enabled: %v)",
		attempted, lo.Keys(r.enabledProviders))
}

// isConfiguredUnlocked must be called with r.mu held.
func (r *Registry) isConfiguredUnlocked(provider string) bool {
	switch provider {
	case ProviderGroq:
		return firstNonEmpty(r.config.GroqAPIKey, os.Getenv("GROQ_API_KEY")) != ""
	case ProviderOpenAI:
		return firstNonEmpty(r.config.OpenAIAPIKey, os.Getenv("OPENAI_API_KEY")) != ""
	case ProviderAzure:
		key := firstNonEmpty(r.config.AzureAPIKey, os.Getenv("AZURE_OPENAI_API_KEY"))
		endpoint := firstNonEmpty(r.config.AzureEndpoint, os.Getenv("AZURE_OPENAI_ENDPOINT"))
		return key != "" && endpoint != ""
	case ProviderLiteLLM:
		// LiteLLM proxies locally; a base URL default always exists.
		return true
	case ProviderAnthropic:
		return firstNonEmpty(r.config.AnthropicKey, os.Getenv("ANTHROPIC_API_KEY")) != ""
	case ProviderOllama:
		// Ollama needs no API key, just a host (which has a default).
		return true
	default:
		return false
	}
}

func (r *Registry) resolveProvider(provider, modelOverride string) (*ClientKey, error) {
	key := &ClientKey{
		Provider: provider,
		Model:    modelOverride,
	}

	switch provider {
	case ProviderGroq:
		key.APIKey = firstNonEmpty(r.config.GroqAPIKey, os.Getenv("GROQ_API_KEY"))
		if key.APIKey == "" {
			return nil, fmt.Errorf("groq API key not configured")
		}
		key.BaseURL = r.config.GroqBaseURL
		if key.Model == "" {
			key.Model = firstNonEmpty(r.config.GroqModel, "llama-3.3-70b-versatile")
		}

	case ProviderOpenAI:
		key.APIKey = firstNonEmpty(r.config.OpenAIAPIKey, os.Getenv("OPENAI_API_KEY"))
		if key.APIKey == "" {
			return nil, fmt.Errorf("openai API key not configured")
		}
		key.BaseURL = firstNonEmpty(r.config.OpenAIBaseURL, os.Getenv("OPENAI_BASE_URL"))
		key.Organization = firstNonEmpty(r.config.OpenAIOrg, os.Getenv("OPENAI_ORG_ID"))
		if key.Model == "" {
			key.Model = firstNonEmpty(r.config.OpenAIModel, os.Getenv("OPENAI_MODEL"), "gpt-4o")
		}

	case ProviderAzure:
		key.APIKey = firstNonEmpty(r.config.AzureAPIKey, os.Getenv("AZURE_OPENAI_API_KEY"))
		key.Endpoint = firstNonEmpty(r.config.AzureEndpoint, os.Getenv("AZURE_OPENAI_ENDPOINT"))
		if key.APIKey == "" || key.Endpoint == "" {
			return nil, fmt.Errorf("azure openai key or endpoint not configured")
		}
		key.APIVersion = firstNonEmpty(r.config.AzureVersion, os.Getenv("AZURE_OPENAI_API_VERSION"))
		if key.Model == "" {
			key.Model = r.config.AzureModel
		}
		if key.Model == "" {
			return nil, fmt.Errorf("azure openai deployment not specified")
		}

	case ProviderLiteLLM:
		key.APIKey = firstNonEmpty(os.Getenv("LITELLM_API_KEY"), os.Getenv("OPENAI_API_KEY"))
		key.BaseURL = firstNonEmpty(r.config.LiteLLMBase, "http://0.0.0.0:4000")
		if key.Model == "" {
			key.Model = firstNonEmpty(r.config.LiteLLMModel, "gpt-4o")
		}

	case ProviderAnthropic:
		key.APIKey = firstNonEmpty(r.config.AnthropicKey, os.Getenv("ANTHROPIC_API_KEY"))
		if key.APIKey == "" {
			return nil, fmt.Errorf("anthropic API key not configured")
		}
		if key.Model == "" {
			key.Model = firstNonEmpty(r.config.AnthropicMod, "claude-sonnet-4-5")
		}

	case ProviderOllama:
		key.Host = firstNonEmpty(r.config.OllamaHost, os.Getenv("OLLAMA_HOST"), "http://localhost:11434")
		if key.Model == "" {
			key.Model = firstNonEmpty(r.config.OllamaModel, os.Getenv("OLLAMA_MODEL"))
		}
		if key.Model == "" {
			return nil, fmt.Errorf("ollama model not specified and no default configured")
		}

	default:
		return nil, fmt.Errorf("unknown provider: %s", provider)
	}

	return key, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
