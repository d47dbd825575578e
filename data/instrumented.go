package data

import (
	"context"
	"time"
)

// CallRecorder observes capability calls.
type CallRecorder interface {
	RecordCapabilityCall(family, provider, operation string, duration time.Duration, err error)
}

type instrumented struct {
	Provider
	rec CallRecorder
}

// WithMetrics wraps p so every feed call is reported to rec. A nil rec
// returns p unchanged.
func WithMetrics(p Provider, rec CallRecorder) Provider {
	if rec == nil || p == nil {
		return p
	}
	return &instrumented{Provider: p, rec: rec}
}

func (i *instrumented) observe(op string, start time.Time, err error) {
	i.rec.RecordCapabilityCall("data", i.Name(), op, time.Since(start), err)
}

func (i *instrumented) News(ctx context.Context, ticker, startDate, endDate string) (out DateIndexed[NewsItem], err error) {
	start := time.Now()
	defer func() { i.observe(FeedNews, start, err) }()
	return i.Provider.News(ctx, ticker, startDate, endDate)
}

func (i *instrumented) InsiderSentiment(ctx context.Context, ticker, startDate, endDate string) (out DateIndexed[InsiderSentiment], err error) {
	start := time.Now()
	defer func() { i.observe(FeedInsiderSentiment, start, err) }()
	return i.Provider.InsiderSentiment(ctx, ticker, startDate, endDate)
}

func (i *instrumented) InsiderTransactions(ctx context.Context, ticker, startDate, endDate string) (out DateIndexed[InsiderTransaction], err error) {
	start := time.Now()
	defer func() { i.observe(FeedInsiderTransactions, start, err) }()
	return i.Provider.InsiderTransactions(ctx, ticker, startDate, endDate)
}

// Close closes the wrapped provider when it holds resources.
func (i *instrumented) Close() error {
	if c, ok := i.Provider.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}
