// Package config loads and validates configuration at startup.
// Precedence: defaults, then the optional YAML file, then environment
// variables. Fail-fast: an invalid combination is returned as an error.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// Store backends.
const (
	StoreMemory   = "memory"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
)

// devJWTSecret is only accepted with the memory store.
const devJWTSecret = "hiring-dev-secret"

// Config holds all runtime configuration for the hiring service.
type Config struct {
	Port             string        `yaml:"port"`
	GRPCPort         string        `yaml:"grpc_port"`
	Store            string        `yaml:"store"`
	DatabaseURL      string        `yaml:"database_url"`
	SQLitePath       string        `yaml:"sqlite_path"`
	RedisURL         string        `yaml:"redis_url"`
	JWTSecret        string        `yaml:"jwt_secret"`
	TokenTTL         time.Duration `yaml:"token_ttl"`
	SimulatedLatency time.Duration `yaml:"simulated_latency"`
	SeedDemo         bool          `yaml:"seed_demo"`
	AdminPassword    string        `yaml:"admin_password"`
	DeadlineSweep    string        `yaml:"deadline_sweep"`
	AutoAdvance      bool          `yaml:"auto_advance"`
	LogLevel         string        `yaml:"log_level"`
	Prompt           PromptConfig  `yaml:"prompt"`
}

// PromptConfig selects the screening model.
type PromptConfig struct {
	Provider     string        `yaml:"provider"`
	Model        string        `yaml:"model"`
	OllamaURL    string        `yaml:"ollama_url"`
	GeminiAPIKey string        `yaml:"gemini_api_key"`
	Timeout      time.Duration `yaml:"timeout"`
}

// Defaults returns the configuration used when nothing is set.
func Defaults() *Config {
	return &Config{
		Port:       "8083",
		GRPCPort:   "9083",
		Store:      StoreMemory,
		SQLitePath: "hiring.db",
		TokenTTL:   24 * time.Hour,
		LogLevel:   "info",
		Prompt: PromptConfig{
			Provider:  "none",
			OllamaURL: "http://localhost:11434",
			Timeout:   60 * time.Second,
		},
	}
}

// Load resolves the configuration. path may be empty.
func Load(path string) (*Config, error) {
	cfg := Defaults()
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		if err := yaml.NewDecoder(f).Decode(cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	setString(&c.Port, "HIRING_PORT")
	setString(&c.GRPCPort, "HIRING_GRPC_PORT")
	setString(&c.Store, "HIRING_STORE")
	setString(&c.DatabaseURL, "DATABASE_URL")
	setString(&c.SQLitePath, "HIRING_SQLITE_PATH")
	setString(&c.RedisURL, "REDIS_URL")
	setString(&c.JWTSecret, "HIRING_JWT_SECRET")
	setString(&c.AdminPassword, "HIRING_ADMIN_PASSWORD")
	setString(&c.DeadlineSweep, "HIRING_DEADLINE_SWEEP")
	setString(&c.LogLevel, "HIRING_LOG_LEVEL")
	setString(&c.Prompt.Provider, "HIRING_PROMPT_PROVIDER")
	setString(&c.Prompt.Model, "HIRING_PROMPT_MODEL")
	setString(&c.Prompt.OllamaURL, "OLLAMA_URL")
	setString(&c.Prompt.GeminiAPIKey, "GEMINI_API_KEY")

	for key, dst := range map[string]*time.Duration{
		"HIRING_TOKEN_TTL":         &c.TokenTTL,
		"HIRING_SIMULATED_LATENCY": &c.SimulatedLatency,
		"HIRING_PROMPT_TIMEOUT":    &c.Prompt.Timeout,
	} {
		if v := os.Getenv(key); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			*dst = d
		}
	}
	for key, dst := range map[string]*bool{
		"HIRING_SEED_DEMO":    &c.SeedDemo,
		"HIRING_AUTO_ADVANCE": &c.AutoAdvance,
	} {
		if v := os.Getenv(key); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			*dst = b
		}
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func (c *Config) validate() error {
	switch c.Store {
	case StoreMemory:
		if c.JWTSecret == "" {
			c.JWTSecret = devJWTSecret
		}
	case StoreSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("HIRING_SQLITE_PATH is required for the sqlite store")
		}
	case StorePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres store")
		}
	default:
		return fmt.Errorf("HIRING_STORE must be memory, sqlite or postgres, got %q", c.Store)
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("HIRING_JWT_SECRET is required outside memory mode")
	}
	if c.Port == "" || c.GRPCPort == "" {
		return fmt.Errorf("HIRING_PORT and HIRING_GRPC_PORT must not be empty")
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("HIRING_TOKEN_TTL must be positive")
	}
	if c.SimulatedLatency < 0 {
		return fmt.Errorf("HIRING_SIMULATED_LATENCY must not be negative")
	}
	if c.DeadlineSweep != "" {
		if _, err := cron.ParseStandard(c.DeadlineSweep); err != nil {
			return fmt.Errorf("HIRING_DEADLINE_SWEEP: %w", err)
		}
	}
	switch c.Prompt.Provider {
	case "", "none":
	case "ollama":
		if c.Prompt.Model == "" {
			return fmt.Errorf("HIRING_PROMPT_MODEL is required for the ollama provider")
		}
	case "gemini":
		if c.Prompt.GeminiAPIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required for the gemini provider")
		}
	default:
		return fmt.Errorf("HIRING_PROMPT_PROVIDER must be none, ollama or gemini, got %q", c.Prompt.Provider)
	}
	return nil
}
