package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Keys recognized by the registries and the built-in adapters. Any other key is
// passed through untouched; adapters ignore what they do not understand.
const (
	KeyLLMProvider         = "llm_provider"
	KeyDataProvider        = "data_provider"
	KeyDeepThinkLLM        = "deep_think_llm"
	KeyQuickThinkLLM       = "quick_think_llm"
	KeyBackendURL          = "backend_url"
	KeyAPIKey              = "api_key"
	KeyTimeout             = "timeout"
	KeyEmbeddingModel      = "embedding_model"
	KeyEmbeddingBackendURL = "embedding_backend_url"
	KeyEmbeddingAPIKey     = "embedding_api_key"
	KeyDataDir             = "data_dir"
	KeyResultsDir          = "results_dir"

	KeyTwelveDataAPIKey  = "twelvedata_api_key"
	KeyTwelveDataBaseURL = "twelvedata_base_url"
	KeyTwelveDataRPM     = "twelvedata_rpm"

	KeyRedisAddr     = "redis_addr"
	KeyRedisPassword = "redis_password"
	KeyRedisDB       = "redis_db"
	KeyRedisPrefix   = "redis_prefix"

	KeySQLDriver = "sql_driver"
	KeySQLDSN    = "sql_dsn"
)

// ProviderConfig is the flat key/value configuration handed to provider
// constructors. A missing key is never an error: getters return the supplied default.
type ProviderConfig map[string]any

// Clone returns a shallow copy. A nil receiver yields an empty, non-nil map.
func (c ProviderConfig) Clone() ProviderConfig {
	out := make(ProviderConfig, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// Merge returns a copy of c with every key of other applied on top.
func (c ProviderConfig) Merge(other ProviderConfig) ProviderConfig {
	out := c.Clone()
	for k, v := range other {
		out[k] = v
	}
	return out
}

// WithDefaults returns a copy of c where keys absent from c are taken from defaults.
func (c ProviderConfig) WithDefaults(defaults ProviderConfig) ProviderConfig {
	return defaults.Merge(c)
}

// Has reports whether key is present with a non-empty value.
func (c ProviderConfig) Has(key string) bool {
	v, ok := c[key]
	if !ok || v == nil {
		return false
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s) != ""
	}
	return true
}

// String returns the trimmed string value of key, or def when absent or blank.
func (c ProviderConfig) String(key, def string) string {
	v, ok := c[key]
	if !ok || v == nil {
		return def
	}
	var s string
	switch t := v.(type) {
	case string:
		s = t
	case fmt.Stringer:
		s = t.String()
	default:
		s = fmt.Sprint(t)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	return s
}

// Int returns key as an int. Numeric YAML/JSON values and numeric strings are accepted.
func (c ProviderConfig) Int(key string, def int) int {
	switch t := c[key].(type) {
	case int:
		return t
	case int64:
		return int(t)
	case int32:
		return int(t)
	case float64:
		return int(t)
	case float32:
		return int(t)
	case string:
		if i, err := strconv.Atoi(strings.TrimSpace(t)); err == nil {
			return i
		}
	}
	return def
}

// Duration returns key as a time.Duration. Strings use time.ParseDuration,
// bare numbers are read as seconds.
func (c ProviderConfig) Duration(key string, def time.Duration) time.Duration {
	switch t := c[key].(type) {
	case time.Duration:
		return t
	case int:
		return time.Duration(t) * time.Second
	case int64:
		return time.Duration(t) * time.Second
	case float64:
		return time.Duration(t * float64(time.Second))
	case string:
		if d, err := time.ParseDuration(strings.TrimSpace(t)); err == nil {
			return d
		}
	}
	return def
}
