package config

import (
	"encoding/json"
	"fmt"
	"os"
)

type Config struct {
	App       AppConfig                 `json:"app"`
	Providers map[string]ProviderConfig `json:"providers"`
	Search    SearchConfig              `json:"search"`
	Storage   StorageConfig             `json:"storage"`
	Output    OutputConfig              `json:"output"`
	UI        UIConfig                  `json:"ui"`
}

type AppConfig struct {
	Name string `json:"name"`
	// PlanTemplates points at an optional YAML file overriding the
	// built-in plan template.
	PlanTemplates string `json:"plan_templates,omitempty"`
}

type ProviderConfig struct {
	APIKey  string `json:"api_key"`
	Model   string `json:"model"`
	BaseURL string `json:"base_url,omitempty"`
	Enabled bool   `json:"enabled"`
}

type SearchConfig struct {
	Provider     string `json:"provider"` // tavily or duckduckgo
	TavilyAPIKey string `json:"tavily_api_key"`
	MaxResults   int    `json:"max_results"`
	SearchDepth  string `json:"search_depth"`
	FetchContent bool   `json:"fetch_content"`
}

type StorageConfig struct {
	Path string `json:"path"`
}

type OutputConfig struct {
	Format   string `json:"format"` // markdown, json or both
	SavePath string `json:"save_path"`
}

type UIConfig struct {
	Interactive bool `json:"interactive"`
}

// DefaultConfig returns a runnable zero-key setup: template planner,
// DuckDuckGo search, local sqlite db.
func DefaultConfig() *Config {
	return &Config{
		App:     AppConfig{Name: "deep-research"},
		Search:  SearchConfig{Provider: "duckduckgo", MaxResults: 10, SearchDepth: "advanced"},
		Storage: StorageConfig{Path: "data/research.db"},
		Output:  OutputConfig{Format: "both", SavePath: "outputs"},
		UI:      UIConfig{Interactive: true},
	}
}

// LoadConfig reads the JSON config file, falling back to defaults when the
// file does not exist. API keys may come from the environment instead.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	file, err := os.Open(path)
	if err == nil {
		defer file.Close()
		if err := json.NewDecoder(file).Decode(cfg); err != nil {
			return nil, fmt.Errorf("decode config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	if cfg.Search.TavilyAPIKey == "" {
		cfg.Search.TavilyAPIKey = os.Getenv("TAVILY_API_KEY")
	}
	for name, p := range cfg.Providers {
		if p.APIKey != "" {
			continue
		}
		// OPENAI_API_KEY only applies to OpenAI-compatible providers.
		if name != "openai" && name != "openrouter" {
			continue
		}
		if key := os.Getenv("OPENAI_API_KEY"); key != "" {
			p.APIKey = key
			cfg.Providers[name] = p
		}
	}

	return cfg, nil
}

// GetDefaultProvider returns the first enabled LLM provider.
func (c *Config) GetDefaultProvider() (string, ProviderConfig) {
	for name, p := range c.Providers {
		if p.Enabled {
			return name, p
		}
	}
	return "", ProviderConfig{}
}
