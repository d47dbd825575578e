package data

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Snapshot is the three feeds of one ticker over one window.
type Snapshot struct {
	Provider            string                          `json:"provider"`
	Ticker              string                          `json:"ticker"`
	StartDate           string                          `json:"start_date"`
	EndDate             string                          `json:"end_date"`
	News                DateIndexed[NewsItem]           `json:"news"`
	InsiderSentiment    DateIndexed[InsiderSentiment]   `json:"insider_sentiment"`
	InsiderTransactions DateIndexed[InsiderTransaction] `json:"insider_transactions"`
}

// FetchSnapshot queries the three feeds of p concurrently. The first error
// cancels the remaining calls and is returned.
func FetchSnapshot(ctx context.Context, p Provider, ticker, startDate, endDate string) (*Snapshot, error) {
	snap := &Snapshot{
		Provider:  p.Name(),
		Ticker:    ticker,
		StartDate: startDate,
		EndDate:   endDate,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		v, err := p.News(gctx, ticker, startDate, endDate)
		snap.News = v
		return err
	})
	g.Go(func() error {
		v, err := p.InsiderSentiment(gctx, ticker, startDate, endDate)
		snap.InsiderSentiment = v
		return err
	})
	g.Go(func() error {
		v, err := p.InsiderTransactions(gctx, ticker, startDate, endDate)
		snap.InsiderTransactions = v
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return snap, nil
}

// Sink is implemented by data sources that can also be written to, so a
// snapshot taken from one provider can seed another.
type Sink interface {
	SaveSnapshot(ctx context.Context, snap *Snapshot) error
}
