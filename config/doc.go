// Package config loads tradingagents configuration.
//
// Config is read with defaults, then a YAML file, then TRADINGAGENTS_* environment
// variables. Config.ProviderConfig flattens it into the key/value ProviderConfig
// handed to provider constructors. Store holds the process defaults and Watcher
// keeps the Store in sync with the file on disk.
package config
