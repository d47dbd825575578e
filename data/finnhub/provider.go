// Package finnhub serves Finnhub data that was downloaded and preprocessed
// onto local disk, one JSON file per ticker and data type:
//
//	<data_dir>/finnhub_data/<type>/<TICKER>_data_formatted.json
//
// Each file maps ISO dates to lists of records.
package finnhub

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/mygamer123/tradingagents/config"
	"github.com/mygamer123/tradingagents/data"
	"github.com/mygamer123/tradingagents/types"
	"go.uber.org/zap"
)

// Name is the registry key.
const Name = "finnhub"

// DefaultDataDir is used when data_dir is absent.
const DefaultDataDir = "./data"

// On-disk directory names of the three feeds.
const (
	newsDir         = "news_data"
	sentimentDir    = "insider_senti"
	transactionsDir = "insider_trans"
)

// Provider reads the local Finnhub cache.
type Provider struct {
	dataDir string
	logger  *zap.Logger
}

// New builds the provider from cfg. The directory is not checked here; see Available.
func New(cfg config.ProviderConfig, logger *zap.Logger) (*Provider, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Provider{
		dataDir: cfg.String(config.KeyDataDir, DefaultDataDir),
		logger:  logger.With(zap.String("component", "data"), zap.String("provider", Name)),
	}, nil
}

func (p *Provider) Name() string { return Name }

// DataDir returns the root directory the provider reads.
func (p *Provider) DataDir() string { return p.dataDir }

// Available reports whether the finnhub_data directory exists.
func (p *Provider) Available() bool {
	info, err := os.Stat(filepath.Join(p.dataDir, "finnhub_data"))
	return err == nil && info.IsDir()
}

// SupportedDataTypes lists the feeds this provider serves.
func (p *Provider) SupportedDataTypes() []string {
	return []string{data.FeedNews, data.FeedInsiderSentiment, data.FeedInsiderTransactions}
}

func (p *Provider) News(ctx context.Context, ticker, startDate, endDate string) (data.DateIndexed[data.NewsItem], error) {
	return readRange[data.NewsItem](ctx, p, newsDir, ticker, startDate, endDate)
}

func (p *Provider) InsiderSentiment(ctx context.Context, ticker, startDate, endDate string) (data.DateIndexed[data.InsiderSentiment], error) {
	return readRange[data.InsiderSentiment](ctx, p, sentimentDir, ticker, startDate, endDate)
}

func (p *Provider) InsiderTransactions(ctx context.Context, ticker, startDate, endDate string) (data.DateIndexed[data.InsiderTransaction], error) {
	return readRange[data.InsiderTransaction](ctx, p, transactionsDir, ticker, startDate, endDate)
}

func (p *Provider) path(dataType, ticker string) string {
	return filepath.Join(p.dataDir, "finnhub_data", dataType, ticker+"_data_formatted.json")
}

// readRange loads one file and keeps the non-empty dates in the window.
// A missing file is an empty result; an unreadable or malformed file is an
// ADAPTER_FAILURE.
func readRange[T any](ctx context.Context, p *Provider, dataType, ticker, startDate, endDate string) (data.DateIndexed[T], error) {
	if data.EmptyWindow(startDate, endDate) {
		return data.DateIndexed[T]{}, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, types.FromTransport(Name, err)
	}

	path := p.path(dataType, ticker)
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		p.logger.Debug("no local data", zap.String("path", path))
		return data.DateIndexed[T]{}, nil
	}
	if err != nil {
		return nil, types.AdapterFailure(Name, types.ReasonStorage, "failed to read "+path).WithCause(err)
	}

	var all data.DateIndexed[T]
	if err := json.Unmarshal(raw, &all); err != nil {
		return nil, types.AdapterFailure(Name, types.ReasonDecode, "malformed data file "+path).WithCause(err)
	}
	return data.Filter(all, startDate, endDate), nil
}
