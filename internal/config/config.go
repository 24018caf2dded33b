// Package config loads server configuration from JSONC files and the
// environment.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"strconv"

	"github.com/tidwall/jsonc"
)

const apiKeyPlaceholder = "your-api-key-here"

// LLM holds model-capability configuration.
type LLM struct {
	Provider  string `json:"provider,omitempty"` // "openai" (default, any compatible endpoint) or "anthropic"
	APIKey    string `json:"apiKey,omitempty"`
	BaseURL   string `json:"baseUrl,omitempty"`
	Model     string `json:"model,omitempty"`
	MaxTokens int    `json:"maxTokens,omitempty"`
}

// Config is the full server configuration.
type Config struct {
	DataDir  string `json:"dataDir,omitempty"`
	Port     int    `json:"port,omitempty"`
	LogLevel string `json:"logLevel,omitempty"`
	LLM      LLM    `json:"llm,omitempty"`
}

// Configured reports whether the model capability is usable: a key is set
// and is not the sample placeholder.
func (c *Config) Configured() bool {
	return c.LLM.APIKey != "" && c.LLM.APIKey != apiKeyPlaceholder
}

// Load builds the configuration from (lowest to highest priority) defaults,
// tutorkit.json/tutorkit.jsonc in directory, and environment variables.
func Load(directory string) (*Config, error) {
	config := &Config{
		DataDir:  "data",
		Port:     3001,
		LogLevel: "info",
		LLM: LLM{
			Provider: "openai",
			Model:    "gpt-4o",
		},
	}

	if directory != "" {
		loadFile(filepath.Join(directory, "tutorkit.json"), config)
		loadFile(filepath.Join(directory, "tutorkit.jsonc"), config)
	}

	applyEnv(config)

	return config, nil
}

// loadFile merges one config file into config; missing files are skipped.
func loadFile(path string, config *Config) {
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}

	data = jsonc.ToJSON(data)
	data = interpolate(data)

	var fileConfig Config
	if err := json.Unmarshal(data, &fileConfig); err != nil {
		return
	}
	merge(config, &fileConfig)
}

var envPattern = regexp.MustCompile(`\{env:([^}]+)\}`)

// interpolate replaces {env:VAR} placeholders with environment values.
func interpolate(data []byte) []byte {
	return envPattern.ReplaceAllFunc(data, func(match []byte) []byte {
		name := envPattern.FindSubmatch(match)[1]
		return []byte(os.Getenv(string(name)))
	})
}

func merge(dst, src *Config) {
	if src.DataDir != "" {
		dst.DataDir = src.DataDir
	}
	if src.Port != 0 {
		dst.Port = src.Port
	}
	if src.LogLevel != "" {
		dst.LogLevel = src.LogLevel
	}
	if src.LLM.Provider != "" {
		dst.LLM.Provider = src.LLM.Provider
	}
	if src.LLM.APIKey != "" {
		dst.LLM.APIKey = src.LLM.APIKey
	}
	if src.LLM.BaseURL != "" {
		dst.LLM.BaseURL = src.LLM.BaseURL
	}
	if src.LLM.Model != "" {
		dst.LLM.Model = src.LLM.Model
	}
	if src.LLM.MaxTokens != 0 {
		dst.LLM.MaxTokens = src.LLM.MaxTokens
	}
}

func applyEnv(config *Config) {
	if v := os.Getenv("TUTORKIT_DATA_DIR"); v != "" {
		config.DataDir = v
	}
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			config.Port = port
		}
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		config.LogLevel = v
	}
	if v := os.Getenv("LLM_PROVIDER"); v != "" {
		config.LLM.Provider = v
	}
	if v := os.Getenv("LLM_API_KEY"); v != "" {
		config.LLM.APIKey = v
	}
	if v := os.Getenv("LLM_BASE_URL"); v != "" {
		config.LLM.BaseURL = v
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		config.LLM.Model = v
	}
}
