// Package sqlstore serves data feeds from a SQL database through gorm.
//
// Three tables hold the feeds (news, insider_sentiment, insider_transactions),
// each row carrying its ticker and ISO date. sqlite, postgres and mysql are
// supported; sqlite defaults to <data_dir>/tradingagents.db.
package sqlstore

import (
	"context"
	"path/filepath"
	"strings"
	"sync"

	"github.com/mygamer123/tradingagents/config"
	"github.com/mygamer123/tradingagents/data"
	"github.com/mygamer123/tradingagents/internal/database"
	"github.com/mygamer123/tradingagents/types"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Name is the registry key.
const Name = "sql"

// DefaultFile is the sqlite file created under data_dir when sql_dsn is absent.
const DefaultFile = "tradingagents.db"

// Provider reads and writes feeds in a SQL database. The connection is opened
// and the schema migrated on first use.
type Provider struct {
	driver string
	dsn    string
	logger *zap.Logger

	once    sync.Once
	pool    *database.PoolManager
	openErr error
	mu      sync.Mutex
}

// New builds the provider from sql_driver and sql_dsn. An unknown driver is
// rejected here; nothing is opened.
func New(cfg config.ProviderConfig, logger *zap.Logger) (*Provider, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	driver := strings.ToLower(cfg.String(config.KeySQLDriver, database.DriverSQLite))
	if _, err := database.Dialector(driver, ""); err != nil {
		return nil, types.InvalidProvider("data", Name, err.Error())
	}

	dsn := cfg.String(config.KeySQLDSN, "")
	if dsn == "" && driver == database.DriverSQLite {
		dsn = filepath.Join(cfg.String(config.KeyDataDir, "./data"), DefaultFile)
	}

	return &Provider{
		driver: driver,
		dsn:    dsn,
		logger: logger.With(zap.String("component", "data"), zap.String("provider", Name)),
	}, nil
}

func (p *Provider) Name() string { return Name }

// Driver returns the configured driver.
func (p *Provider) Driver() string { return p.driver }

// DSN returns the connection string.
func (p *Provider) DSN() string { return p.dsn }

func (p *Provider) db(ctx context.Context) (*gorm.DB, error) {
	p.once.Do(func() {
		pool, err := database.Open(p.driver, p.dsn, p.logger)
		if err != nil {
			p.openErr = storageError("open database", err)
			return
		}
		if err := pool.DB().WithContext(context.WithoutCancel(ctx)).AutoMigrate(&NewsRow{}, &SentimentRow{}, &TransactionRow{}); err != nil {
			_ = pool.Close()
			p.openErr = storageError("migrate schema", err)
			return
		}
		p.mu.Lock()
		p.pool = pool
		p.mu.Unlock()
		p.logger.Debug("database opened", zap.String("driver", p.driver))
	})
	if p.openErr != nil {
		return nil, p.openErr
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.pool == nil {
		return nil, storageError("database", database.ErrPoolClosed)
	}
	return p.pool.DB().WithContext(ctx), nil
}

// Migrate opens the database and creates or updates the feed tables.
func (p *Provider) Migrate(ctx context.Context) error {
	_, err := p.db(ctx)
	return err
}

func (p *Provider) News(ctx context.Context, ticker, startDate, endDate string) (data.DateIndexed[data.NewsItem], error) {
	return readRange[NewsRow, data.NewsItem](ctx, p, ticker, startDate, endDate)
}

func (p *Provider) InsiderSentiment(ctx context.Context, ticker, startDate, endDate string) (data.DateIndexed[data.InsiderSentiment], error) {
	return readRange[SentimentRow, data.InsiderSentiment](ctx, p, ticker, startDate, endDate)
}

func (p *Provider) InsiderTransactions(ctx context.Context, ticker, startDate, endDate string) (data.DateIndexed[data.InsiderTransaction], error) {
	return readRange[TransactionRow, data.InsiderTransaction](ctx, p, ticker, startDate, endDate)
}

func readRange[R row[T], T any](ctx context.Context, p *Provider, ticker, startDate, endDate string) (data.DateIndexed[T], error) {
	out := make(data.DateIndexed[T])
	if data.EmptyWindow(startDate, endDate) {
		return out, nil
	}

	db, err := p.db(ctx)
	if err != nil {
		return nil, err
	}

	var rows []R
	err = db.Where("ticker = ? AND date >= ? AND date <= ?", strings.ToUpper(ticker), startDate, endDate).
		Order("date").Order("id").
		Find(&rows).Error
	if err != nil {
		return nil, storageError("query", err)
	}

	for _, r := range rows {
		out[r.date()] = append(out[r.date()], r.record())
	}
	return out, nil
}

// SaveSnapshot replaces the stored records of every date present in snap, in
// one transaction.
func (p *Provider) SaveSnapshot(ctx context.Context, snap *data.Snapshot) error {
	if _, err := p.db(ctx); err != nil {
		return err
	}
	ticker := strings.ToUpper(snap.Ticker)

	p.mu.Lock()
	pool := p.pool
	p.mu.Unlock()

	err := pool.WithTransaction(ctx, func(tx *gorm.DB) error {
		if err := replace(tx, ticker, snap.News.Dates(), newsRows(ticker, snap.News)); err != nil {
			return err
		}
		if err := replace(tx, ticker, snap.InsiderSentiment.Dates(), sentimentRows(ticker, snap.InsiderSentiment)); err != nil {
			return err
		}
		return replace(tx, ticker, snap.InsiderTransactions.Dates(), transactionRows(ticker, snap.InsiderTransactions))
	})
	if err != nil {
		return storageError("save snapshot", err)
	}
	return nil
}

func replace[R any](tx *gorm.DB, ticker string, dates []string, rows []R) error {
	if len(dates) == 0 {
		return nil
	}
	var zero R
	if err := tx.Where("ticker = ? AND date IN ?", ticker, dates).Delete(&zero).Error; err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}
	return tx.CreateInBatches(&rows, 200).Error
}

// Ping checks the database connection, opening it if needed.
func (p *Provider) Ping(ctx context.Context) error {
	if _, err := p.db(ctx); err != nil {
		return err
	}
	p.mu.Lock()
	pool := p.pool
	p.mu.Unlock()
	if pool == nil {
		return storageError("ping", database.ErrPoolClosed)
	}
	if err := pool.Ping(ctx); err != nil {
		return storageError("ping", err)
	}
	return nil
}

// Stats returns the connection pool statistics; ok is false until the
// database has been opened.
func (p *Provider) Stats() (stats database.PoolStats, ok bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.pool == nil {
		return database.PoolStats{}, false
	}
	return p.pool.GetStats(), true
}

// Close closes the database if it was opened.
func (p *Provider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.pool == nil {
		return nil
	}
	err := p.pool.Close()
	p.pool = nil
	return err
}

func storageError(msg string, err error) *types.Error {
	return types.AdapterFailure(Name, types.ReasonStorage, msg).WithCause(err)
}
