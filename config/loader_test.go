// Config loader tests.
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Loader ---

func TestLoader_LoadDefaults(t *testing.T) {
	cfg, err := NewLoader().Load()
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, "finnhub", cfg.Data.Provider)
	assert.Empty(t, cfg.LLM.BackendURL)
}

func TestLoader_LoadFromYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
llm:
  provider: "anthropic"
  deep_think_llm: "claude-opus-4-0"
  quick_think_llm: "claude-3-5-haiku-latest"
  timeout: 45s
  embedding_model: "text-embedding-3-large"

data:
  provider: "twelvedata"
  dir: "/srv/data"
  twelvedata:
    api_key: "td-key"
    rpm: 55
  redis:
    addr: "redis.example.com:6379"
    db: 2

log:
  level: "debug"
  format: "console"

extra:
  max_debate_rounds: 3
`
	require.NoError(t, os.WriteFile(configPath, []byte(yamlContent), 0644))

	cfg, err := NewLoader().
		WithConfigPath(configPath).
		Load()
	require.NoError(t, err)

	assert.Equal(t, "anthropic", cfg.LLM.Provider)
	assert.Equal(t, "claude-opus-4-0", cfg.LLM.DeepThinkLLM)
	assert.Equal(t, 45*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, "text-embedding-3-large", cfg.LLM.EmbeddingModel)

	assert.Equal(t, "twelvedata", cfg.Data.Provider)
	assert.Equal(t, "/srv/data", cfg.Data.Dir)
	assert.Equal(t, "td-key", cfg.Data.TwelveData.APIKey)
	assert.Equal(t, 55, cfg.Data.TwelveData.RPM)
	// untouched defaults survive a partial section
	assert.Equal(t, "https://api.twelvedata.com", cfg.Data.TwelveData.BaseURL)
	assert.Equal(t, "redis.example.com:6379", cfg.Data.Redis.Addr)
	assert.Equal(t, 2, cfg.Data.Redis.DB)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 3, cfg.Extra["max_debate_rounds"])
}

func TestLoader_LoadFromEnv(t *testing.T) {
	t.Setenv("TRADINGAGENTS_LLM_PROVIDER", "google")
	t.Setenv("TRADINGAGENTS_LLM_TIMEOUT", "2m")
	t.Setenv("TRADINGAGENTS_DATA_REDIS_DB", "4")
	t.Setenv("TRADINGAGENTS_LOG_OUTPUT_PATHS", "stdout, /tmp/ta.log")
	t.Setenv("TRADINGAGENTS_TELEMETRY_ENABLED", "true")
	t.Setenv("TRADINGAGENTS_TELEMETRY_SAMPLE_RATE", "0.25")

	cfg, err := NewLoader().Load()
	require.NoError(t, err)

	assert.Equal(t, "google", cfg.LLM.Provider)
	assert.Equal(t, 2*time.Minute, cfg.LLM.Timeout)
	assert.Equal(t, 4, cfg.Data.Redis.DB)
	assert.Equal(t, []string{"stdout", "/tmp/ta.log"}, cfg.Log.OutputPaths)
	assert.True(t, cfg.Telemetry.Enabled)
	assert.Equal(t, 0.25, cfg.Telemetry.SampleRate)
}

func TestLoader_EnvOverridesYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("llm:\n  provider: ollama\n"), 0644))

	t.Setenv("TRADINGAGENTS_LLM_PROVIDER", "openrouter")

	cfg, err := NewLoader().WithConfigPath(configPath).Load()
	require.NoError(t, err)
	assert.Equal(t, "openrouter", cfg.LLM.Provider)
}

func TestLoader_CustomEnvPrefix(t *testing.T) {
	t.Setenv("TA_DATA_PROVIDER", "sql")

	cfg, err := NewLoader().WithEnvPrefix("TA").Load()
	require.NoError(t, err)
	assert.Equal(t, "sql", cfg.Data.Provider)
}

func TestLoader_InvalidEnvValue(t *testing.T) {
	t.Setenv("TRADINGAGENTS_DATA_TWELVEDATA_RPM", "many")

	_, err := NewLoader().Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TRADINGAGENTS_DATA_TWELVEDATA_RPM")
}

func TestLoader_MissingFileKeepsDefaults(t *testing.T) {
	cfg, err := NewLoader().WithConfigPath(filepath.Join(t.TempDir(), "absent.yaml")).Load()
	require.NoError(t, err)
	assert.Equal(t, "openai", cfg.LLM.Provider)
}

func TestLoader_MalformedYAML(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("llm: [unclosed"), 0644))

	_, err := NewLoader().WithConfigPath(configPath).Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestLoader_WithValidator(t *testing.T) {
	_, err := NewLoader().
		WithValidator(func(c *Config) error { return c.Validate() }).
		WithValidator(func(c *Config) error {
			if c.LLM.Provider == "openai" {
				return assert.AnError
			}
			return nil
		}).
		Load()
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
}

func TestMustLoad_Panics(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(":::"), 0644))

	assert.Panics(t, func() { MustLoad(configPath) })
}

// --- Validate ---

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "bad level", mutate: func(c *Config) { c.Log.Level = "loud" }, wantErr: "invalid log level"},
		{name: "bad format", mutate: func(c *Config) { c.Log.Format = "xml" }, wantErr: "invalid log format"},
		{name: "bad driver", mutate: func(c *Config) { c.Data.SQL.Driver = "oracle" }, wantErr: "unsupported sql driver"},
		{name: "negative rpm", mutate: func(c *Config) { c.Data.TwelveData.RPM = -1 }, wantErr: "rpm"},
		{name: "sample rate", mutate: func(c *Config) { c.Telemetry.SampleRate = 1.5 }, wantErr: "sample rate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

// --- ProviderConfig flattening ---

func TestConfig_ProviderConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LLM.APIKey = "sk-test"
	cfg.LLM.Timeout = 30 * time.Second
	cfg.Data.Redis.DB = 3
	cfg.Extra = map[string]any{"online_tools": true, KeyLLMProvider: "overridden"}

	pc := cfg.ProviderConfig()

	assert.Equal(t, "openai", pc[KeyLLMProvider], "structured fields win over extra")
	assert.Equal(t, "o4-mini", pc[KeyDeepThinkLLM])
	assert.Equal(t, "gpt-4o-mini", pc[KeyQuickThinkLLM])
	assert.Equal(t, "sk-test", pc[KeyAPIKey])
	assert.Equal(t, 30*time.Second, pc[KeyTimeout])
	assert.Equal(t, "finnhub", pc[KeyDataProvider])
	assert.Equal(t, "./data", pc[KeyDataDir])
	assert.Equal(t, 8, pc[KeyTwelveDataRPM])
	assert.Equal(t, 3, pc[KeyRedisDB])
	assert.Equal(t, true, pc["online_tools"])

	_, hasBackend := pc[KeyBackendURL]
	assert.False(t, hasBackend, "empty backend_url must be omitted")
	_, hasDSN := pc[KeySQLDSN]
	assert.False(t, hasDSN)
}
