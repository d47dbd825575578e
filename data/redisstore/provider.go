// Package redisstore serves data feeds from Redis hashes.
//
// Each feed of a ticker is one hash, <prefix>:<feed>:<TICKER>, whose fields
// are ISO dates and whose values are JSON arrays of records.
package redisstore

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/mygamer123/tradingagents/config"
	"github.com/mygamer123/tradingagents/data"
	"github.com/mygamer123/tradingagents/internal/cache"
	"github.com/mygamer123/tradingagents/types"
	"go.uber.org/zap"
)

// Name is the registry key.
const Name = "redis"

// Provider reads and writes feeds in Redis.
type Provider struct {
	cache  *cache.Manager
	logger *zap.Logger
}

// New builds the provider from the redis_* keys of cfg. The connection is
// opened by the first feed call.
func New(cfg config.ProviderConfig, logger *zap.Logger) (*Provider, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("component", "data"), zap.String("provider", Name))
	return &Provider{
		cache:  cache.NewManager(cache.ConfigFrom(cfg), logger),
		logger: logger,
	}, nil
}

func (p *Provider) Name() string { return Name }

func (p *Provider) News(ctx context.Context, ticker, startDate, endDate string) (data.DateIndexed[data.NewsItem], error) {
	return readRange[data.NewsItem](ctx, p, data.FeedNews, ticker, startDate, endDate)
}

func (p *Provider) InsiderSentiment(ctx context.Context, ticker, startDate, endDate string) (data.DateIndexed[data.InsiderSentiment], error) {
	return readRange[data.InsiderSentiment](ctx, p, data.FeedInsiderSentiment, ticker, startDate, endDate)
}

func (p *Provider) InsiderTransactions(ctx context.Context, ticker, startDate, endDate string) (data.DateIndexed[data.InsiderTransaction], error) {
	return readRange[data.InsiderTransaction](ctx, p, data.FeedInsiderTransactions, ticker, startDate, endDate)
}

// SaveSnapshot writes every non-empty date of snap, replacing existing fields.
func (p *Provider) SaveSnapshot(ctx context.Context, snap *data.Snapshot) error {
	if err := write(ctx, p, data.FeedNews, snap.Ticker, snap.News); err != nil {
		return err
	}
	if err := write(ctx, p, data.FeedInsiderSentiment, snap.Ticker, snap.InsiderSentiment); err != nil {
		return err
	}
	return write(ctx, p, data.FeedInsiderTransactions, snap.Ticker, snap.InsiderTransactions)
}

// Ping checks the Redis connection.
func (p *Provider) Ping(ctx context.Context) error {
	if err := p.cache.Ping(ctx); err != nil {
		return storageError("ping failed", err)
	}
	return nil
}

// Close releases the Redis client.
func (p *Provider) Close() error { return p.cache.Close() }

func (p *Provider) key(feed, ticker string) string {
	return p.cache.Key(feed, strings.ToUpper(ticker))
}

func readRange[T any](ctx context.Context, p *Provider, feed, ticker, startDate, endDate string) (data.DateIndexed[T], error) {
	out := make(data.DateIndexed[T])
	if data.EmptyWindow(startDate, endDate) {
		return out, nil
	}

	key := p.key(feed, ticker)
	fields, err := p.cache.HGetAll(ctx, key)
	if err != nil {
		return nil, storageError("read "+key, err)
	}

	for date, raw := range fields {
		if !data.InWindow(date, startDate, endDate) {
			continue
		}
		var records []T
		if err := json.Unmarshal([]byte(raw), &records); err != nil {
			return nil, types.AdapterFailure(Name, types.ReasonDecode, "malformed field "+date+" of "+key).WithCause(err)
		}
		if len(records) > 0 {
			out[date] = records
		}
	}
	return out, nil
}

func write[T any](ctx context.Context, p *Provider, feed, ticker string, records data.DateIndexed[T]) error {
	fields := make(map[string]any, len(records))
	for date, recs := range records {
		if len(recs) > 0 {
			fields[date] = recs
		}
	}
	key := p.key(feed, ticker)
	if err := p.cache.HSetJSON(ctx, key, fields); err != nil {
		return storageError("write "+key, err)
	}
	p.logger.Debug("feed stored", zap.String("key", key), zap.Int("dates", len(fields)))
	return nil
}

func storageError(msg string, err error) *types.Error {
	return types.AdapterFailure(Name, types.ReasonStorage, msg).
		WithCause(err).
		WithRetryable(true)
}
