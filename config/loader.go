// =============================================================================
// tradingagents configuration loader
// =============================================================================
// Unified loading: YAML file + environment variable overrides.
//
// Usage:
//
//	cfg, err := config.NewLoader().
//	    WithConfigPath("config.yaml").
//	    WithEnvPrefix("TRADINGAGENTS").
//	    Load()
//
// Precedence: defaults → YAML file → environment variables
// =============================================================================
package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// =============================================================================
// Core configuration structure
// =============================================================================

// Config is the complete on-disk configuration.
type Config struct {
	// LLM selects the language-model and embedding vendor.
	LLM LLMConfig `yaml:"llm" env:"LLM"`

	// Data selects the financial data source.
	Data DataConfig `yaml:"data" env:"DATA"`

	// Log configures zap.
	Log LogConfig `yaml:"log" env:"LOG"`

	// Metrics configures the prometheus collector.
	Metrics MetricsConfig `yaml:"metrics" env:"METRICS"`

	// Telemetry configures OpenTelemetry tracing.
	Telemetry TelemetryConfig `yaml:"telemetry" env:"TELEMETRY"`

	// Extra is passed through to every provider constructor untouched.
	Extra map[string]any `yaml:"extra,omitempty"`
}

// LLMConfig LLM and embedding settings
type LLMConfig struct {
	Provider            string        `yaml:"provider" env:"PROVIDER"`
	DeepThinkLLM        string        `yaml:"deep_think_llm" env:"DEEP_THINK_LLM"`
	QuickThinkLLM       string        `yaml:"quick_think_llm" env:"QUICK_THINK_LLM"`
	BackendURL          string        `yaml:"backend_url" env:"BACKEND_URL"`
	APIKey              string        `yaml:"api_key" env:"API_KEY"`
	Timeout             time.Duration `yaml:"timeout" env:"TIMEOUT"`
	EmbeddingModel      string        `yaml:"embedding_model" env:"EMBEDDING_MODEL"`
	EmbeddingBackendURL string        `yaml:"embedding_backend_url" env:"EMBEDDING_BACKEND_URL"`
	EmbeddingAPIKey     string        `yaml:"embedding_api_key" env:"EMBEDDING_API_KEY"`
}

// DataConfig data-source settings
type DataConfig struct {
	Provider   string           `yaml:"provider" env:"PROVIDER"`
	Dir        string           `yaml:"dir" env:"DIR"`
	ResultsDir string           `yaml:"results_dir" env:"RESULTS_DIR"`
	TwelveData TwelveDataConfig `yaml:"twelvedata" env:"TWELVEDATA"`
	Redis      RedisConfig      `yaml:"redis" env:"REDIS"`
	SQL        SQLConfig        `yaml:"sql" env:"SQL"`
}

// TwelveDataConfig TwelveData API settings
type TwelveDataConfig struct {
	APIKey  string `yaml:"api_key" env:"API_KEY"`
	BaseURL string `yaml:"base_url" env:"BASE_URL"`
	// RPM is the request budget per minute enforced by the adapter.
	RPM int `yaml:"rpm" env:"RPM"`
}

// RedisConfig Redis-backed data source settings
type RedisConfig struct {
	Addr     string `yaml:"addr" env:"ADDR"`
	Password string `yaml:"password" env:"PASSWORD"`
	DB       int    `yaml:"db" env:"DB"`
	Prefix   string `yaml:"prefix" env:"PREFIX"`
}

// SQLConfig SQL-backed data source settings
type SQLConfig struct {
	// Driver: sqlite, postgres, mysql
	Driver string `yaml:"driver" env:"DRIVER"`
	DSN    string `yaml:"dsn" env:"DSN"`
}

// LogConfig logging settings
type LogConfig struct {
	// Level: debug, info, warn, error
	Level string `yaml:"level" env:"LEVEL"`
	// Format: json, console
	Format      string   `yaml:"format" env:"FORMAT"`
	OutputPaths []string `yaml:"output_paths" env:"OUTPUT_PATHS"`
}

// MetricsConfig prometheus settings
type MetricsConfig struct {
	Namespace string `yaml:"namespace" env:"NAMESPACE"`
	// Addr, when set, exposes /metrics on this address.
	Addr string `yaml:"addr" env:"ADDR"`
}

// TelemetryConfig OpenTelemetry settings
type TelemetryConfig struct {
	Enabled      bool    `yaml:"enabled" env:"ENABLED"`
	OTLPEndpoint string  `yaml:"otlp_endpoint" env:"OTLP_ENDPOINT"`
	ServiceName  string  `yaml:"service_name" env:"SERVICE_NAME"`
	SampleRate   float64 `yaml:"sample_rate" env:"SAMPLE_RATE"`
}

// =============================================================================
// Loader
// =============================================================================

// Loader builds a Config (builder pattern).
type Loader struct {
	configPath string
	envPrefix  string
	validators []func(*Config) error
}

// NewLoader creates a loader with the default TRADINGAGENTS env prefix.
func NewLoader() *Loader {
	return &Loader{
		envPrefix:  "TRADINGAGENTS",
		validators: make([]func(*Config) error, 0),
	}
}

// WithConfigPath sets the YAML file path.
func (l *Loader) WithConfigPath(path string) *Loader {
	l.configPath = path
	return l
}

// WithEnvPrefix sets the environment variable prefix.
func (l *Loader) WithEnvPrefix(prefix string) *Loader {
	l.envPrefix = prefix
	return l
}

// WithValidator adds a validation step run after loading.
func (l *Loader) WithValidator(v func(*Config) error) *Loader {
	l.validators = append(l.validators, v)
	return l
}

// Path returns the configured YAML path.
func (l *Loader) Path() string { return l.configPath }

// Load loads the configuration.
// Precedence: defaults → YAML file → environment variables
func (l *Loader) Load() (*Config, error) {
	cfg := DefaultConfig()

	if l.configPath != "" {
		if err := l.loadFromFile(cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := l.loadFromEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	for _, v := range l.validators {
		if err := v(cfg); err != nil {
			return nil, fmt.Errorf("config validation failed: %w", err)
		}
	}

	return cfg, nil
}

// loadFromFile reads the YAML file; a missing file keeps the defaults.
func (l *Loader) loadFromFile(cfg *Config) error {
	data, err := os.ReadFile(l.configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

func (l *Loader) loadFromEnv(cfg *Config) error {
	return l.setFieldsFromEnv(reflect.ValueOf(cfg).Elem(), l.envPrefix)
}

// setFieldsFromEnv walks struct fields recursively using their env tags.
func (l *Loader) setFieldsFromEnv(v reflect.Value, prefix string) error {
	t := v.Type()

	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		fieldType := t.Field(i)

		envTag := fieldType.Tag.Get("env")
		if envTag == "" || envTag == "-" {
			continue
		}

		envKey := prefix + "_" + envTag

		if field.Kind() == reflect.Struct {
			if err := l.setFieldsFromEnv(field, envKey); err != nil {
				return err
			}
			continue
		}

		envValue, ok := os.LookupEnv(envKey)
		if !ok || envValue == "" {
			continue
		}

		if err := setFieldValue(field, envValue); err != nil {
			return fmt.Errorf("failed to set %s: %w", envKey, err)
		}
	}

	return nil
}

func setFieldValue(field reflect.Value, value string) error {
	if !field.CanSet() {
		return nil
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(value)

	case reflect.Int, reflect.Int64:
		if field.Type() == reflect.TypeOf(time.Duration(0)) {
			d, err := time.ParseDuration(value)
			if err != nil {
				return err
			}
			field.SetInt(int64(d))
			return nil
		}
		i, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return err
		}
		field.SetInt(i)

	case reflect.Float64:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return err
		}
		field.SetFloat(f)

	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		field.SetBool(b)

	case reflect.Slice:
		// comma separated string slices
		if field.Type().Elem().Kind() == reflect.String {
			parts := strings.Split(value, ",")
			for i := range parts {
				parts[i] = strings.TrimSpace(parts[i])
			}
			field.Set(reflect.ValueOf(parts))
		}
	}

	return nil
}

// =============================================================================
// Helpers
// =============================================================================

// MustLoad loads the configuration and panics on failure.
func MustLoad(path string) *Config {
	cfg, err := NewLoader().WithConfigPath(path).Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}
	return cfg
}

// Validate checks values the providers cannot default on their own.
func (c *Config) Validate() error {
	var errs []string

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Sprintf("invalid log level %q", c.Log.Level))
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		errs = append(errs, fmt.Sprintf("invalid log format %q", c.Log.Format))
	}
	switch c.Data.SQL.Driver {
	case "", "sqlite", "postgres", "mysql":
	default:
		errs = append(errs, fmt.Sprintf("unsupported sql driver %q", c.Data.SQL.Driver))
	}
	if c.Data.TwelveData.RPM < 0 {
		errs = append(errs, "twelvedata rpm must not be negative")
	}
	if c.Telemetry.SampleRate < 0 || c.Telemetry.SampleRate > 1 {
		errs = append(errs, fmt.Sprintf("telemetry sample rate %v out of range [0, 1]", c.Telemetry.SampleRate))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation errors: %s", strings.Join(errs, "; "))
	}
	return nil
}

// ProviderConfig flattens the structured configuration into the key/value form
// consumed by the registries. Empty values are omitted so adapters apply their
// own vendor defaults.
func (c *Config) ProviderConfig() ProviderConfig {
	out := make(ProviderConfig, len(c.Extra)+24)
	for k, v := range c.Extra {
		out[k] = v
	}

	putString := func(key, value string) {
		if strings.TrimSpace(value) != "" {
			out[key] = value
		}
	}

	putString(KeyLLMProvider, c.LLM.Provider)
	putString(KeyDeepThinkLLM, c.LLM.DeepThinkLLM)
	putString(KeyQuickThinkLLM, c.LLM.QuickThinkLLM)
	putString(KeyBackendURL, c.LLM.BackendURL)
	putString(KeyAPIKey, c.LLM.APIKey)
	putString(KeyEmbeddingModel, c.LLM.EmbeddingModel)
	putString(KeyEmbeddingBackendURL, c.LLM.EmbeddingBackendURL)
	putString(KeyEmbeddingAPIKey, c.LLM.EmbeddingAPIKey)
	if c.LLM.Timeout > 0 {
		out[KeyTimeout] = c.LLM.Timeout
	}

	putString(KeyDataProvider, c.Data.Provider)
	putString(KeyDataDir, c.Data.Dir)
	putString(KeyResultsDir, c.Data.ResultsDir)
	putString(KeyTwelveDataAPIKey, c.Data.TwelveData.APIKey)
	putString(KeyTwelveDataBaseURL, c.Data.TwelveData.BaseURL)
	if c.Data.TwelveData.RPM > 0 {
		out[KeyTwelveDataRPM] = c.Data.TwelveData.RPM
	}
	putString(KeyRedisAddr, c.Data.Redis.Addr)
	putString(KeyRedisPassword, c.Data.Redis.Password)
	if c.Data.Redis.DB > 0 {
		out[KeyRedisDB] = c.Data.Redis.DB
	}
	putString(KeyRedisPrefix, c.Data.Redis.Prefix)
	putString(KeySQLDriver, c.Data.SQL.Driver)
	putString(KeySQLDSN, c.Data.SQL.DSN)

	return out
}
