// Package config loads the YAML configuration file and merges it over
// built-in defaults. Provider credentials left empty here fall back to
// environment variables at resolution time.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"dario.cat/mergo"
	"gopkg.in/yaml.v3"

	"github.com/conduitml/conduit/model"
)

// GroqConfig represents configuration for the Groq provider.
type GroqConfig struct {
	APIKey             string `yaml:"api_key,omitempty"`
	BaseURL            string `yaml:"base_url,omitempty"`
	Model              string `yaml:"model,omitempty"`
	TranscriptionModel string `yaml:"transcription_model,omitempty"`
}

// OpenAIConfig represents configuration for the OpenAI provider.
type OpenAIConfig struct {
	APIKey       string `yaml:"api_key,omitempty"`
	BaseURL      string `yaml:"base_url,omitempty"` // Custom base URL (default: official API)
	Model        string `yaml:"model,omitempty"`
	Organization string `yaml:"organization,omitempty"`
}

// AzureConfig represents configuration for Azure OpenAI deployments.
type AzureConfig struct {
	APIKey     string `yaml:"api_key,omitempty"`
	Endpoint   string `yaml:"endpoint,omitempty"`    // Resource endpoint URL
	Deployment string `yaml:"deployment,omitempty"`  // Deployment name, doubles as model id
	APIVersion string `yaml:"api_version,omitempty"` // e.g. "2024-10-21"
}

// LiteLLMConfig represents configuration for a LiteLLM proxy.
type LiteLLMConfig struct {
	APIKey  string `yaml:"api_key,omitempty"`
	BaseURL string `yaml:"base_url,omitempty"` // Proxy address (default: http://0.0.0.0:4000)
	Model   string `yaml:"model,omitempty"`
}

// AnthropicConfig represents configuration for the Anthropic provider.
type AnthropicConfig struct {
	APIKey string `yaml:"api_key,omitempty"`
	Model  string `yaml:"model,omitempty"`
}

// OllamaConfig represents configuration for an Ollama server.
type OllamaConfig struct {
	Host  string `yaml:"host,omitempty"` // Server address (default: http://localhost:11434)
	Model string `yaml:"model,omitempty"`
}

// PreferenceConfig is one entry in the ordered provider preference list.
type PreferenceConfig struct {
	Provider    string   `yaml:"provider"` // Required: "groq", "openai", "azure", "litellm", "anthropic", or "ollama"
	Model       string   `yaml:"model,omitempty"`
	Temperature *float64 `yaml:"temperature,omitempty"`
}

// Config is the full configuration file shape.
type Config struct {
	// Providers enabled for resolution; empty means all configured providers.
	Providers []string `yaml:"providers,omitempty"`

	// Preferences is the ordered provider/model fallback list.
	Preferences []PreferenceConfig `yaml:"preferences,omitempty"`

	Groq      GroqConfig      `yaml:"groq,omitempty"`
	OpenAI    OpenAIConfig    `yaml:"openai,omitempty"`
	Azure     AzureConfig     `yaml:"azure,omitempty"`
	LiteLLM   LiteLLMConfig   `yaml:"litellm,omitempty"`
	Anthropic AnthropicConfig `yaml:"anthropic,omitempty"`
	Ollama    OllamaConfig    `yaml:"ollama,omitempty"`

	// Logging
	LogLevel string `yaml:"log_level,omitempty"` // trace, debug, info, warn, error
	LogFile  string `yaml:"log_file,omitempty"`
}

// GetConfigPath returns the default config file path. Can be overridden via
// the CONDUIT_CONFIG_PATH environment variable.
func GetConfigPath() string {
	if envPath := os.Getenv("CONDUIT_CONFIG_PATH"); envPath != "" {
		return expandPath(envPath)
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "./.conduit/config.yaml"
	}
	return filepath.Join(homeDir, ".conduit", "config.yaml")
}

// expandPath expands ~ to the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(homeDir, path[2:])
	}
	return path
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Providers: []string{
			model.ProviderGroq,
			model.ProviderOpenAI,
			model.ProviderAzure,
			model.ProviderLiteLLM,
			model.ProviderAnthropic,
			model.ProviderOllama,
		},
		Groq: GroqConfig{
			BaseURL: "https://api.groq.com/openai/v1",
			Model:   "llama-3.3-70b-versatile",
		},
		OpenAI: OpenAIConfig{
			Model: "gpt-4o",
		},
		LiteLLM: LiteLLMConfig{
			BaseURL: "http://0.0.0.0:4000",
		},
		Anthropic: AnthropicConfig{
			Model: "claude-sonnet-4-5",
		},
		Ollama: OllamaConfig{
			Host: "http://localhost:11434",
		},
		LogLevel: "info",
	}
}

// Load reads the config file at path and merges it over the defaults. A
// missing file is not an error; the defaults are returned.
func Load(path string) (*Config, error) {
	defaults := Defaults()

	expandedPath := expandPath(path)
	if _, err := os.Stat(expandedPath); err != nil {
		return &defaults, nil
	}

	data, err := os.ReadFile(expandedPath) //#nosec 304 -- intentional file read for config
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %q: %w", expandedPath, err)
	}

	var fileConfig Config
	if err := yaml.Unmarshal(data, &fileConfig); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := mergo.Merge(&defaults, fileConfig, mergo.WithOverride); err != nil {
		return nil, fmt.Errorf("failed to merge config: %w", err)
	}

	return &defaults, nil
}

// Save writes the configuration to the given path, creating the directory if
// needed.
func Save(cfg *Config, path string) error {
	expandedPath := expandPath(path)

	dir := filepath.Dir(expandedPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(expandedPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ProviderConfig flattens the file configuration into the registry's shape.
func (c *Config) ProviderConfig() *model.ProviderConfig {
	return &model.ProviderConfig{
		GroqAPIKey:    c.Groq.APIKey,
		GroqBaseURL:   c.Groq.BaseURL,
		GroqModel:     c.Groq.Model,
		OpenAIAPIKey:  c.OpenAI.APIKey,
		OpenAIBaseURL: c.OpenAI.BaseURL,
		OpenAIModel:   c.OpenAI.Model,
		OpenAIOrg:     c.OpenAI.Organization,
		AzureAPIKey:   c.Azure.APIKey,
		AzureEndpoint: c.Azure.Endpoint,
		AzureModel:    c.Azure.Deployment,
		AzureVersion:  c.Azure.APIVersion,
		LiteLLMBase:   c.LiteLLM.BaseURL,
		LiteLLMModel:  c.LiteLLM.Model,
		AnthropicKey:  c.Anthropic.APIKey,
		AnthropicMod:  c.Anthropic.Model,
		OllamaHost:    c.Ollama.Host,
		OllamaModel:   c.Ollama.Model,
	}
}

// ModelPreferences converts the configured preference list to the registry's
// shape.
func (c *Config) ModelPreferences() []model.Preference {
	prefs := make([]model.Preference, 0, len(c.Preferences))
	for _, p := range c.Preferences {
		prefs = append(prefs, model.Preference{
			Provider:    p.Provider,
			Model:       p.Model,
			Temperature: p.Temperature,
		})
	}
	return prefs
}
