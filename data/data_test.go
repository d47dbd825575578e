package data

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/mygamer123/tradingagents/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilter(t *testing.T) {
	src := DateIndexed[NewsItem]{
		"2024-01-01": {{Headline: "a"}},
		"2024-01-05": {{Headline: "b"}},
		"2024-01-06": {},
		"2024-01-10": {{Headline: "c"}},
	}

	tests := []struct {
		name       string
		start, end string
		want       []string
	}{
		{"inclusive bounds", "2024-01-01", "2024-01-10", []string{"2024-01-01", "2024-01-05", "2024-01-10"}},
		{"inner window drops empty dates", "2024-01-02", "2024-01-09", []string{"2024-01-05"}},
		{"single day", "2024-01-05", "2024-01-05", []string{"2024-01-05"}},
		{"start after end", "2024-01-10", "2024-01-01", []string{}},
		{"outside", "2023-01-01", "2023-12-31", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Filter(src, tt.start, tt.end)
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got.Dates())
		})
	}
}

func TestLookbackWindow(t *testing.T) {
	start, end, err := LookbackWindow("2024-03-01", 7)
	require.NoError(t, err)
	assert.Equal(t, "2024-02-23", start)
	assert.Equal(t, "2024-03-01", end)

	_, _, err = LookbackWindow("03/01/2024", 7)
	assert.Error(t, err)
}

func TestDateIndexed_Count(t *testing.T) {
	d := DateIndexed[InsiderTransaction]{
		"2024-01-01": {{Name: "a"}, {Name: "b"}},
		"2024-01-02": {{Name: "c"}},
	}
	assert.Equal(t, 3, d.Count())
	assert.Equal(t, 0, DateIndexed[InsiderTransaction]{}.Count())
}

func TestInsiderSentiment_JSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		year  FlexString
		month FlexString
	}{
		{"numbers", `{"year":2024,"month":3,"change":-120,"mspr":-12.5}`, "2024", "3"},
		{"strings", `{"year":"2024","month":"03","change":5,"mspr":1}`, "2024", "03"},
		{"null", `{"year":null,"month":null}`, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s InsiderSentiment
			require.NoError(t, json.Unmarshal([]byte(tt.input), &s))
			assert.Equal(t, tt.year, s.Year)
			assert.Equal(t, tt.month, s.Month)
		})
	}

	out, err := json.Marshal(InsiderSentiment{Year: "2024", Month: "3", Change: 1, MSPR: 2})
	require.NoError(t, err)
	assert.JSONEq(t, `{"year":"2024","month":"3","change":1,"mspr":2}`, string(out))

	var bad InsiderSentiment
	assert.Error(t, json.Unmarshal([]byte(`{"year":true}`), &bad))
}

// fakeProvider serves fixed feeds and optionally fails one of them.
type fakeProvider struct {
	failOn string
	calls  sync.Map
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) fail(op string) error {
	f.calls.Store(op, true)
	if f.failOn == op {
		return types.AdapterFailure("fake", types.ReasonUpstreamError, op+" failed")
	}
	return nil
}

func (f *fakeProvider) News(_ context.Context, _, _, _ string) (DateIndexed[NewsItem], error) {
	if err := f.fail(FeedNews); err != nil {
		return nil, err
	}
	return DateIndexed[NewsItem]{"2024-01-02": {{Headline: "h", Summary: "s"}}}, nil
}

func (f *fakeProvider) InsiderSentiment(_ context.Context, _, _, _ string) (DateIndexed[InsiderSentiment], error) {
	if err := f.fail(FeedInsiderSentiment); err != nil {
		return nil, err
	}
	return DateIndexed[InsiderSentiment]{"2024-01-01": {{Year: "2024", Month: "1"}}}, nil
}

func (f *fakeProvider) InsiderTransactions(_ context.Context, _, _, _ string) (DateIndexed[InsiderTransaction], error) {
	if err := f.fail(FeedInsiderTransactions); err != nil {
		return nil, err
	}
	return DateIndexed[InsiderTransaction]{}, nil
}

func TestFetchSnapshot(t *testing.T) {
	snap, err := FetchSnapshot(context.Background(), &fakeProvider{}, "AAPL", "2024-01-01", "2024-01-31")
	require.NoError(t, err)

	assert.Equal(t, "fake", snap.Provider)
	assert.Equal(t, "AAPL", snap.Ticker)
	assert.Equal(t, 1, snap.News.Count())
	assert.Equal(t, 1, snap.InsiderSentiment.Count())
	assert.NotNil(t, snap.InsiderTransactions)
}

func TestFetchSnapshot_Error(t *testing.T) {
	_, err := FetchSnapshot(context.Background(), &fakeProvider{failOn: FeedInsiderSentiment}, "AAPL", "2024-01-01", "2024-01-31")
	require.Error(t, err)
	assert.True(t, types.IsCode(err, types.ErrAdapterFailure))
}

type recordedCall struct {
	family, provider, op string
	err                  error
}

type callLog struct {
	mu    sync.Mutex
	calls []recordedCall
}

func (c *callLog) RecordCapabilityCall(family, provider, op string, _ time.Duration, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, recordedCall{family, provider, op, err})
}

func TestWithMetrics(t *testing.T) {
	p := &fakeProvider{failOn: FeedInsiderTransactions}
	assert.Same(t, p, WithMetrics(p, nil))

	log := &callLog{}
	wrapped := WithMetrics(p, log)
	assert.Equal(t, "fake", wrapped.Name())

	ctx := context.Background()
	_, err := wrapped.News(ctx, "AAPL", "2024-01-01", "2024-01-31")
	require.NoError(t, err)
	_, err = wrapped.InsiderTransactions(ctx, "AAPL", "2024-01-01", "2024-01-31")
	require.Error(t, err)

	require.Len(t, log.calls, 2)
	assert.Equal(t, recordedCall{"data", "fake", FeedNews, nil}, log.calls[0])
	assert.Equal(t, FeedInsiderTransactions, log.calls[1].op)
	var te *types.Error
	assert.True(t, errors.As(log.calls[1].err, &te))
}
