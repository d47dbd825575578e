package redisstore

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/mygamer123/tradingagents/config"
	"github.com/mygamer123/tradingagents/data"
	"github.com/mygamer123/tradingagents/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProvider(t *testing.T) (*miniredis.Miniredis, *Provider) {
	t.Helper()
	mr := miniredis.RunT(t)
	p, err := New(config.ProviderConfig{
		config.KeyRedisAddr:   mr.Addr(),
		config.KeyRedisPrefix: "ta",
	}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })
	return mr, p
}

func TestNew_NoDial(t *testing.T) {
	p, err := New(config.ProviderConfig{config.KeyRedisAddr: "127.0.0.1:1"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "redis", p.Name())
	require.NoError(t, p.Close())
}

func TestProvider_ReadsHashes(t *testing.T) {
	mr, p := newTestProvider(t)
	mr.HSet("ta:news:AAPL", "2024-01-02", `[{"headline":"Up","summary":"s"}]`)
	mr.HSet("ta:news:AAPL", "2024-01-03", `[]`)
	mr.HSet("ta:news:AAPL", "2024-02-01", `[{"headline":"Later"}]`)
	mr.HSet("ta:insider_sentiment:AAPL", "2024-01-01", `[{"year":2024,"month":1,"change":10,"mspr":3.5}]`)

	ctx := context.Background()

	news, err := p.News(ctx, "aapl", "2024-01-01", "2024-01-31")
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-01-02"}, news.Dates())
	assert.Equal(t, "Up", news["2024-01-02"][0].Headline)

	senti, err := p.InsiderSentiment(ctx, "AAPL", "2024-01-01", "2024-01-01")
	require.NoError(t, err)
	assert.Equal(t, data.FlexString("2024"), senti["2024-01-01"][0].Year)

	trans, err := p.InsiderTransactions(ctx, "AAPL", "2024-01-01", "2024-01-31")
	require.NoError(t, err)
	assert.Empty(t, trans)

	empty, err := p.News(ctx, "AAPL", "2024-01-31", "2024-01-01")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestProvider_SaveSnapshot(t *testing.T) {
	mr, p := newTestProvider(t)
	ctx := context.Background()

	snap := &data.Snapshot{
		Ticker: "MSFT",
		News: data.DateIndexed[data.NewsItem]{
			"2024-05-01": {{Headline: "Build", Summary: "keynote"}},
			"2024-05-02": {},
		},
		InsiderTransactions: data.DateIndexed[data.InsiderTransaction]{
			"2024-05-03": {{Name: "Doe", Change: -5, Share: 10, TransactionCode: "S"}},
		},
	}
	require.NoError(t, p.SaveSnapshot(ctx, snap))

	fields, err := mr.HKeys("ta:news:MSFT")
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-05-01"}, fields)
	assert.False(t, mr.Exists("ta:insider_sentiment:MSFT"))

	got, err := data.FetchSnapshot(ctx, p, "MSFT", "2024-05-01", "2024-05-31")
	require.NoError(t, err)
	assert.Equal(t, data.DateIndexed[data.NewsItem]{"2024-05-01": {{Headline: "Build", Summary: "keynote"}}}, got.News)
	assert.Equal(t, snap.InsiderTransactions, got.InsiderTransactions)
}

func TestProvider_Errors(t *testing.T) {
	mr, p := newTestProvider(t)
	ctx := context.Background()

	mr.HSet("ta:news:BAD", "2024-01-01", `{oops`)
	_, err := p.News(ctx, "BAD", "2024-01-01", "2024-12-31")
	e, ok := types.AsError(err)
	require.True(t, ok)
	assert.Equal(t, types.ErrAdapterFailure, e.Code)
	assert.Equal(t, types.ReasonDecode, e.Reason)

	require.NoError(t, p.Ping(ctx))
	require.NoError(t, p.Close())

	_, err = p.News(ctx, "AAPL", "2024-01-01", "2024-12-31")
	e, ok = types.AsError(err)
	require.True(t, ok)
	assert.Equal(t, types.ReasonStorage, e.Reason)
	assert.True(t, e.Retryable)
}
