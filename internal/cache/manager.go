// Package cache wraps the Redis client used by the Redis data source.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/mygamer123/tradingagents/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// =============================================================================
// Manager
// =============================================================================

// Manager owns one Redis client and namespaces every key under Prefix.
type Manager struct {
	redis  *redis.Client
	config Config
	logger *zap.Logger
	mu     sync.RWMutex
	closed bool
}

// Config is the Redis connection configuration.
type Config struct {
	Addr     string `yaml:"addr" json:"addr"`
	Password string `yaml:"password" json:"password"`
	DB       int    `yaml:"db" json:"db"`

	// Prefix namespaces every key, e.g. "tradingagents:news:AAPL".
	Prefix string `yaml:"prefix" json:"prefix"`

	DialTimeout  time.Duration `yaml:"dial_timeout" json:"dial_timeout"`
	MaxRetries   int           `yaml:"max_retries" json:"max_retries"`
	PoolSize     int           `yaml:"pool_size" json:"pool_size"`
	MinIdleConns int           `yaml:"min_idle_conns" json:"min_idle_conns"`
}

// DefaultConfig returns the local-development defaults.
func DefaultConfig() Config {
	return Config{
		Addr:         "localhost:6379",
		Prefix:       "tradingagents",
		DialTimeout:  5 * time.Second,
		MaxRetries:   3,
		PoolSize:     10,
		MinIdleConns: 0,
	}
}

// ConfigFrom overlays the redis_* keys of cfg on DefaultConfig.
func ConfigFrom(cfg config.ProviderConfig) Config {
	c := DefaultConfig()
	c.Addr = cfg.String(config.KeyRedisAddr, c.Addr)
	c.Password = cfg.String(config.KeyRedisPassword, c.Password)
	c.DB = cfg.Int(config.KeyRedisDB, c.DB)
	c.Prefix = cfg.String(config.KeyRedisPrefix, c.Prefix)
	return c
}

// NewManager creates a manager. go-redis dials lazily, so nothing touches the
// network until the first command.
func NewManager(cfg Config, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  cfg.DialTimeout,
		MaxRetries:   cfg.MaxRetries,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
	})

	return &Manager{
		redis:  client,
		config: cfg,
		logger: logger.With(zap.String("component", "cache")),
	}
}

// Key joins parts under the configured prefix.
func (m *Manager) Key(parts ...string) string {
	if m.config.Prefix == "" {
		return strings.Join(parts, ":")
	}
	return m.config.Prefix + ":" + strings.Join(parts, ":")
}

// HGetAll returns every field of the hash at key. A missing key is an empty map.
func (m *Manager) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrClosed
	}

	vals, err := m.redis.HGetAll(ctx, key).Result()
	if err != nil {
		m.logger.Debug("hgetall failed", zap.String("key", key), zap.Error(err))
		return nil, fmt.Errorf("cache hgetall failed: %w", err)
	}
	return vals, nil
}

// HSetJSON stores each value of fields JSON-encoded under its field name.
func (m *Manager) HSetJSON(ctx context.Context, key string, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}

	args := make([]any, 0, len(fields)*2)
	for f, v := range fields {
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to marshal cache value: %w", err)
		}
		args = append(args, f, string(data))
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return ErrClosed
	}

	if err := m.redis.HSet(ctx, key, args...).Err(); err != nil {
		m.logger.Error("hset failed", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("cache hset failed: %w", err)
	}
	return nil
}

// Delete removes keys.
func (m *Manager) Delete(ctx context.Context, keys ...string) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return ErrClosed
	}
	if len(keys) == 0 {
		return nil
	}
	if err := m.redis.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("cache delete failed: %w", err)
	}
	return nil
}

// Ping checks the connection.
func (m *Manager) Ping(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return ErrClosed
	}
	return m.redis.Ping(ctx).Err()
}

// Close releases the client. Calling it twice is a no-op.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil
	}
	m.closed = true
	return m.redis.Close()
}

// ErrClosed is returned by every call after Close.
var ErrClosed = errors.New("cache manager is closed")
