package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobmate/hiring-service/internal/config"
)

var envKeys = []string{
	"HIRING_PORT", "HIRING_GRPC_PORT", "HIRING_STORE", "DATABASE_URL", "HIRING_SQLITE_PATH",
	"REDIS_URL", "HIRING_JWT_SECRET", "HIRING_TOKEN_TTL", "HIRING_SIMULATED_LATENCY",
	"HIRING_SEED_DEMO", "HIRING_ADMIN_PASSWORD", "HIRING_DEADLINE_SWEEP", "HIRING_AUTO_ADVANCE",
	"HIRING_LOG_LEVEL", "HIRING_PROMPT_PROVIDER", "HIRING_PROMPT_MODEL", "OLLAMA_URL",
	"GEMINI_API_KEY", "HIRING_PROMPT_TIMEOUT",
}

// clearEnv blanks every key so the host environment cannot leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, "8083", cfg.Port)
	assert.Equal(t, "9083", cfg.GRPCPort)
	assert.Equal(t, config.StoreMemory, cfg.Store)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.NotEmpty(t, cfg.JWTSecret, "memory mode gets a development secret")
	assert.Empty(t, cfg.DeadlineSweep)
	assert.False(t, cfg.AutoAdvance)
	assert.Equal(t, "none", cfg.Prompt.Provider)
}

func TestLoad_FileThenEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "hiring.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
port: "9000"
store: sqlite
sqlite_path: /tmp/hiring.db
jwt_secret: from-file
token_ttl: 2h
deadline_sweep: "@every 1h"
prompt:
  provider: ollama
  model: llama3
`), 0o600))

	t.Setenv("HIRING_PORT", "9100")
	t.Setenv("HIRING_AUTO_ADVANCE", "true")
	t.Setenv("HIRING_SIMULATED_LATENCY", "150ms")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "9100", cfg.Port, "env wins over file")
	assert.Equal(t, config.StoreSQLite, cfg.Store)
	assert.Equal(t, "from-file", cfg.JWTSecret)
	assert.Equal(t, 2*time.Hour, cfg.TokenTTL)
	assert.Equal(t, "@every 1h", cfg.DeadlineSweep)
	assert.Equal(t, "llama3", cfg.Prompt.Model)
	assert.True(t, cfg.AutoAdvance)
	assert.Equal(t, 150*time.Millisecond, cfg.SimulatedLatency)
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string]map[string]string{
		"unknown store":         {"HIRING_STORE": "mongo"},
		"postgres without url":  {"HIRING_STORE": "postgres", "HIRING_JWT_SECRET": "x"},
		"sqlite without secret": {"HIRING_STORE": "sqlite"},
		"bad duration":          {"HIRING_TOKEN_TTL": "soon"},
		"bad bool":              {"HIRING_SEED_DEMO": "maybe"},
		"bad cron":              {"HIRING_DEADLINE_SWEEP": "whenever"},
		"unknown provider":      {"HIRING_PROMPT_PROVIDER": "openai"},
		"gemini without key":    {"HIRING_PROMPT_PROVIDER": "gemini"},
		"ollama without model":  {"HIRING_PROMPT_PROVIDER": "ollama"},
		"negative latency":      {"HIRING_SIMULATED_LATENCY": "-1s"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := config.Load("")
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	clearEnv(t)
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
