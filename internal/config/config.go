package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// ProviderSpec describes one entry of the failover chain, in attempt order.
type ProviderSpec struct {
	Kind  string `mapstructure:"kind"`  // "remote" or "local"
	Model string `mapstructure:"model"` // empty for local uses the ollama default
}

// StoreConfig selects and configures the persistence driver.
type StoreConfig struct {
	Driver string `mapstructure:"driver"` // memory | redis | duckdb
	Redis  struct {
		Addr     string `mapstructure:"addr"`
		Password string `mapstructure:"password"`
		DB       int    `mapstructure:"db"`
	} `mapstructure:"redis"`
	DuckDB struct {
		Path string `mapstructure:"path"`
	} `mapstructure:"duckdb"`
}

// RemoteConfig configures the shared OpenAI-compatible API client.
type RemoteConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
}

// Config is the application configuration, read from an optional YAML file
// with GEMCHAT_* environment overrides.
type Config struct {
	Store      StoreConfig    `mapstructure:"store"`
	Remote     RemoteConfig   `mapstructure:"remote"`
	Providers  []ProviderSpec `mapstructure:"providers"`
	LocalModel string         `mapstructure:"local_model"`
	LogFile    string         `mapstructure:"log_file"`
}

// Gemini exposes an OpenAI-compatible surface; it is the default backend the
// chain talks to.
const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai/"

// Load reads configuration from path (empty means ~/.gemchat/config.yaml, and
// a missing file just yields the defaults).
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	v.SetDefault("store.driver", "duckdb")
	v.SetDefault("store.redis.addr", "localhost:6379")
	v.SetDefault("store.duckdb.path", filepath.Join(home(), ".gemchat", "chat.db"))
	v.SetDefault("remote.base_url", defaultBaseURL)
	v.SetDefault("local_model", "llama3.2")
	v.SetDefault("log_file", filepath.Join(home(), ".gemchat", "gemchat.log"))

	v.SetEnvPrefix("GEMCHAT")
	// Nested keys map to underscores: store.driver <- GEMCHAT_STORE_DRIVER.
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrap(err, "failed to read config file")
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(filepath.Join(home(), ".gemchat"))
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, errors.Wrap(err, "failed to read config file")
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to decode config")
	}

	if cfg.Remote.APIKey == "" {
		cfg.Remote.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	if len(cfg.Providers) == 0 {
		cfg.Providers = DefaultProviders()
	}
	return &cfg, nil
}

// DefaultProviders is the ordered failover chain used when none is
// configured: the freshest remote model first, an on-device model last.
func DefaultProviders() []ProviderSpec {
	return []ProviderSpec{
		{Kind: "remote", Model: "gemini-2.0-flash"},
		{Kind: "remote", Model: "gemini-2.0-flash-lite-preview-02-05"},
		{Kind: "remote", Model: "gemini-flash-latest"},
		{Kind: "remote", Model: "gemini-pro-latest"},
		{Kind: "local"},
	}
}

func home() string {
	dir, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return dir
}
