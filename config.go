package aieditor

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	defaults "github.com/Paranoid-AF/aieditor/default"
)

// Config represents the user's aieditor configuration.
type Config struct {
	Version    int              `toml:"version"`
	Generation GenerationConfig `toml:"generation"`
	Editor     EditorConfig     `toml:"editor"`
}

// GenerationConfig holds settings for the text-generation API.
type GenerationConfig struct {
	BaseURL         string `toml:"base_url"`
	APIKey          string `toml:"api_key,omitempty"`
	Model           string `toml:"model"`
	MaxRetries      int    `toml:"max_retries,omitempty"`
	BaseDelayMS     int    `toml:"base_delay_ms,omitempty"`
	TimeoutSeconds  int    `toml:"timeout_seconds,omitempty"`
	CacheTTLMinutes int    `toml:"cache_ttl_minutes,omitempty"`

	Temperature     *float64 `toml:"temperature,omitempty"`
	MaxOutputTokens int      `toml:"max_output_tokens,omitempty"`
}

// EditorConfig holds settings for the editing surface.
type EditorConfig struct {
	Placeholder string `toml:"placeholder"`
	MinChars    int    `toml:"min_chars,omitempty"`
}

// ConfigDir returns the config directory path.
// Resolution order: $AIEDITOR_CONFIG_DIR > $XDG_CONFIG_HOME/aieditor > ~/.config/aieditor
func ConfigDir() string {
	if dir := os.Getenv("AIEDITOR_CONFIG_DIR"); dir != "" {
		return dir
	}
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, "aieditor")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join("/tmp", "aieditor-config")
	}
	return filepath.Join(home, ".config", "aieditor")
}

// ConfigPath returns the full path to the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// PromptPath returns the path of the optional system instruction override.
func PromptPath() string {
	return filepath.Join(ConfigDir(), "prompt.md")
}

// LogPath returns the path of the debug log written while the editor runs.
func LogPath() string {
	return filepath.Join(ConfigDir(), "aieditor.log")
}

// DefaultConfig returns the default configuration from the embedded default_config.toml.
func DefaultConfig() *Config {
	var cfg Config
	if _, err := toml.Decode(defaults.DefaultConfigTOML, &cfg); err != nil {
		panic("aieditor: invalid embedded default_config.toml: " + err.Error())
	}
	return &cfg
}

// LoadConfig loads config from disk or returns defaults if not found.
func LoadConfig() (*Config, error) {
	return LoadConfigFile(ConfigPath())
}

// LoadConfigFile loads config from path, filling missing fields from the defaults.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	var cfg Config
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return nil, err
	}

	defaults := DefaultConfig()
	if cfg.Version == 0 {
		cfg.Version = defaults.Version
	}
	if cfg.Generation.BaseURL == "" {
		cfg.Generation.BaseURL = defaults.Generation.BaseURL
	}
	if cfg.Generation.Model == "" {
		cfg.Generation.Model = defaults.Generation.Model
	}
	if cfg.Generation.MaxRetries == 0 {
		cfg.Generation.MaxRetries = defaults.Generation.MaxRetries
	}
	if cfg.Generation.BaseDelayMS == 0 {
		cfg.Generation.BaseDelayMS = defaults.Generation.BaseDelayMS
	}
	if cfg.Editor.Placeholder == "" {
		cfg.Editor.Placeholder = defaults.Editor.Placeholder
	}
	if cfg.Editor.MinChars == 0 {
		cfg.Editor.MinChars = defaults.Editor.MinChars
	}

	return &cfg, nil
}

// ValidateConfig checks configuration for potential issues and returns warnings.
func ValidateConfig(cfg *Config) []string {
	var warnings []string
	if cfg == nil {
		return warnings
	}
	if ResolveAPIKey(cfg) == "" {
		warnings = append(warnings, "no API key configured; set AIEDITOR_API_KEY or GEMINI_API_KEY, requests will be rejected by the provider")
	}
	if cfg.Generation.MaxRetries < 1 {
		warnings = append(warnings, "max_retries is below 1; every request will fail without being sent")
	}
	if cfg.Editor.MinChars < 1 {
		warnings = append(warnings, "min_chars is below 1; empty documents will be sent to the model")
	}
	return warnings
}

// LoadDotEnv loads .env files from the working directory and the config directory.
// Variables already present in the environment are never overridden.
func LoadDotEnv() []string {
	var loaded []string
	for _, path := range []string{".env", filepath.Join(ConfigDir(), ".env")} {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			continue
		}
		loaded = append(loaded, path)
	}
	return loaded
}

// ResolveAPIKey returns the generation API key.
// Priority: $AIEDITOR_API_KEY > $GEMINI_API_KEY > $VITE_GEMINI_API_KEY > config value.
func ResolveAPIKey(cfg *Config) string {
	for _, name := range []string{"AIEDITOR_API_KEY", "GEMINI_API_KEY", "VITE_GEMINI_API_KEY"} {
		if key := os.Getenv(name); key != "" {
			return key
		}
	}
	if cfg != nil {
		return cfg.Generation.APIKey
	}
	return ""
}

// ResolveBaseURL returns the generation API base URL.
// Priority: $AIEDITOR_BASE_URL env > config value.
func ResolveBaseURL(cfg *Config) string {
	if url := os.Getenv("AIEDITOR_BASE_URL"); url != "" {
		return url
	}
	if cfg != nil {
		return cfg.Generation.BaseURL
	}
	return ""
}

// ResolveModel returns the generation model name.
// Priority: $AIEDITOR_MODEL env > config value.
func ResolveModel(cfg *Config) string {
	if model := os.Getenv("AIEDITOR_MODEL"); model != "" {
		return model
	}
	if cfg != nil {
		return cfg.Generation.Model
	}
	return ""
}

// BaseDelay returns the first backoff delay of the retry loop.
func (c GenerationConfig) BaseDelay() time.Duration {
	return time.Duration(c.BaseDelayMS) * time.Millisecond
}

// Timeout returns the per-attempt HTTP timeout, zero meaning none.
func (c GenerationConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// CacheTTL returns how long continuations are cached, zero meaning disabled.
func (c GenerationConfig) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLMinutes) * time.Minute
}

// LoadInstruction returns the custom system instruction from prompt.md, or the
// embedded default when no override exists.
func LoadInstruction() string {
	data, err := os.ReadFile(PromptPath())
	if err == nil {
		if custom := strings.TrimSpace(string(data)); custom != "" {
			return custom
		}
	}
	return strings.TrimSpace(defaults.DefaultInstruction)
}
