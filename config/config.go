// Package config loads the application settings from a JSON or YAML file, the
// process environment and an optional .env file.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"agentic_ad_copy/generator"
)

const (
	DefaultPath           = "config/config.json"
	DefaultServerAddr     = ":8080"
	DefaultRequestTimeout = 180 * time.Second
)

// Config is the file layout.
type Config struct {
	LLM                   *LLMConfig `json:"llm,omitempty" yaml:"llm,omitempty"`
	ServerAddr            string     `json:"server_addr,omitempty" yaml:"server_addr,omitempty"`
	RequestTimeoutSeconds int        `json:"request_timeout_seconds,omitempty" yaml:"request_timeout_seconds,omitempty"`
}

// LLMConfig selects the model provider.
type LLMConfig struct {
	Provider  string `json:"provider,omitempty" yaml:"provider,omitempty"`
	Model     string `json:"model,omitempty" yaml:"model,omitempty"`
	APIKey    string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	APIKeyEnv string `json:"api_key_env,omitempty" yaml:"api_key_env,omitempty"`
	BaseURL   string `json:"base_url,omitempty" yaml:"base_url,omitempty"`
}

// LoadEnv reads a .env file into the process environment. A missing file is fine.
func LoadEnv(path string) {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		slog.Debug("config.LoadEnv: no env file loaded", "path", path, "error", err)
		return
	}
	slog.Debug("config.LoadEnv: env file loaded", "path", path)
}

// Load reads path (JSON, or YAML for .yaml/.yml) and applies environment overrides.
// When optional is set a missing file yields an env-only configuration.
func Load(path string, optional bool) (Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := decode(path, data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
	case optional && errors.Is(err, fs.ErrNotExist):
		slog.Debug("config.Load: config file not found, using environment", "path", path)
	default:
		return Config{}, err
	}
	cfg.applyEnvOverrides()
	cfg.applyDefaults()
	return cfg, nil
}

func decode(path string, data []byte, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, cfg)
	default:
		return json.Unmarshal(data, cfg)
	}
}

func (c *Config) applyEnvOverrides() {
	if c.LLM == nil {
		c.LLM = &LLMConfig{}
	}
	if v := os.Getenv("ADCOPY_PROVIDER"); v != "" {
		c.LLM.Provider = v
	}
	if v := os.Getenv("ADCOPY_MODEL"); v != "" {
		c.LLM.Model = v
	}
	if v := os.Getenv("ADCOPY_ADDR"); v != "" {
		c.ServerAddr = v
	}
}

func (c *Config) applyDefaults() {
	if c.LLM.Provider == "" {
		c.LLM.Provider = "gemini"
	}
	if c.ServerAddr == "" {
		c.ServerAddr = DefaultServerAddr
	}
}

// RequestTimeout bounds one generation run started from the web server.
func (c Config) RequestTimeout() time.Duration {
	if c.RequestTimeoutSeconds <= 0 {
		return DefaultRequestTimeout
	}
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// apiKeyEnvByProvider names the variable read when neither api_key nor api_key_env is set.
var apiKeyEnvByProvider = map[string]string{
	"gemini":   "GEMINI_API_KEY",
	"openai":   "OPENAI_API_KEY",
	"deepseek": "DEEPSEEK_API_KEY",
}

// LLMSettings resolves the credential and returns the generator settings.
func (c Config) LLMSettings() generator.LLMSettings {
	llm := c.LLM
	if llm == nil {
		llm = &LLMConfig{}
	}
	provider := strings.ToLower(llm.Provider)
	key := llm.APIKey
	if key == "" && llm.APIKeyEnv != "" {
		key = os.Getenv(llm.APIKeyEnv)
	}
	if key == "" {
		if env, ok := apiKeyEnvByProvider[provider]; ok {
			key = os.Getenv(env)
		}
	}
	return generator.LLMSettings{
		Provider: provider,
		Model:    llm.Model,
		APIKey:   key,
		BaseURL:  llm.BaseURL,
	}
}
