// =============================================================================
// tradingagents default configuration
// =============================================================================
package config

// DefaultConfig returns the baseline configuration. backend_url is left empty on
// purpose so each LLM adapter falls back to its own vendor endpoint.
func DefaultConfig() *Config {
	return &Config{
		LLM:       DefaultLLMConfig(),
		Data:      DefaultDataConfig(),
		Log:       DefaultLogConfig(),
		Metrics:   DefaultMetricsConfig(),
		Telemetry: DefaultTelemetryConfig(),
	}
}

// DefaultLLMConfig returns the default LLM settings.
func DefaultLLMConfig() LLMConfig {
	return LLMConfig{
		Provider:      "openai",
		DeepThinkLLM:  "o4-mini",
		QuickThinkLLM: "gpt-4o-mini",
	}
}

// DefaultDataConfig returns the default data-source settings.
func DefaultDataConfig() DataConfig {
	return DataConfig{
		Provider:   "finnhub",
		Dir:        "./data",
		ResultsDir: "./results",
		TwelveData: TwelveDataConfig{
			BaseURL: "https://api.twelvedata.com",
			RPM:     8,
		},
		Redis: RedisConfig{
			Addr:   "localhost:6379",
			Prefix: "tradingagents",
		},
		SQL: SQLConfig{
			Driver: "sqlite",
		},
	}
}

// DefaultLogConfig returns the default logging settings.
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level:       "info",
		Format:      "json",
		OutputPaths: []string{"stdout"},
	}
}

// DefaultMetricsConfig returns the default metrics settings.
func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "tradingagents",
	}
}

// DefaultTelemetryConfig returns the default telemetry settings. Tracing is off
// until an OTLP collector is configured.
func DefaultTelemetryConfig() TelemetryConfig {
	return TelemetryConfig{
		Enabled:      false,
		OTLPEndpoint: "localhost:4317",
		ServiceName:  "tradingagents",
		SampleRate:   0.1,
	}
}
