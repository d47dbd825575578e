// Package twelvedata adapts the Twelve Data REST API to data.Provider.
//
// Twelve Data publishes insider transactions but neither company news nor an
// insider-sentiment score; those feeds always return an empty mapping.
package twelvedata

import (
	"context"
	"encoding/json"
	"io"
	"math"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/mygamer123/tradingagents/config"
	"github.com/mygamer123/tradingagents/data"
	"github.com/mygamer123/tradingagents/internal/httpx"
	"github.com/mygamer123/tradingagents/types"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Name is the registry key.
const Name = "twelvedata"

const (
	// DefaultBaseURL is the public API root.
	DefaultBaseURL = "https://api.twelvedata.com"
	// DefaultRPM matches the free plan's per-minute credit allowance.
	DefaultRPM = 8

	apiKeyEnv = "TWELVEDATA_API_KEY"
)

// Config is the adapter configuration read from a ProviderConfig.
type Config struct {
	APIKey  string        `json:"twelvedata_api_key" yaml:"api_key"`
	BaseURL string        `json:"twelvedata_base_url" yaml:"base_url"`
	RPM     int           `json:"twelvedata_rpm" yaml:"rpm"`
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// ConfigFrom reads the adapter keys; absent keys take the defaults.
func ConfigFrom(cfg config.ProviderConfig) Config {
	apiKey := cfg.String(config.KeyTwelveDataAPIKey, "")
	if apiKey == "" {
		apiKey = os.Getenv(apiKeyEnv)
	}
	return Config{
		APIKey:  apiKey,
		BaseURL: cfg.String(config.KeyTwelveDataBaseURL, DefaultBaseURL),
		RPM:     cfg.Int(config.KeyTwelveDataRPM, DefaultRPM),
		Timeout: cfg.Duration(config.KeyTimeout, 0),
	}
}

// Provider is the Twelve Data adapter.
type Provider struct {
	cfg     Config
	client  *http.Client
	limiter *rate.Limiter
	logger  *zap.Logger
}

// New builds the adapter. No request is sent until a feed is called.
func New(cfg config.ProviderConfig, logger *zap.Logger) (*Provider, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := ConfigFrom(cfg)

	limit := rate.Inf
	if c.RPM > 0 {
		limit = rate.Every(time.Minute / time.Duration(c.RPM))
	}

	return &Provider{
		cfg:     c,
		client:  httpx.NewClient(c.Timeout),
		limiter: rate.NewLimiter(limit, 1),
		logger:  logger.With(zap.String("component", "data"), zap.String("provider", Name)),
	}, nil
}

func (p *Provider) Name() string { return Name }

// SupportedDataTypes lists the feeds backed by the vendor API.
func (p *Provider) SupportedDataTypes() []string {
	return []string{data.FeedInsiderTransactions}
}

// News has no vendor source and is always empty.
func (p *Provider) News(context.Context, string, string, string) (data.DateIndexed[data.NewsItem], error) {
	return make(data.DateIndexed[data.NewsItem]), nil
}

// InsiderSentiment has no vendor source and is always empty.
func (p *Provider) InsiderSentiment(context.Context, string, string, string) (data.DateIndexed[data.InsiderSentiment], error) {
	return make(data.DateIndexed[data.InsiderSentiment]), nil
}

type insiderTransaction struct {
	FullName     string  `json:"full_name"`
	Position     string  `json:"position"`
	DateReported string  `json:"date_reported"`
	IsDirect     bool    `json:"is_direct"`
	Shares       float64 `json:"shares"`
	Value        float64 `json:"value"`
	Description  string  `json:"description"`
}

type insiderResponse struct {
	Items []insiderTransaction `json:"insider_transactions"`
}

// InsiderTransactions returns the filings reported inside the window, keyed
// by report date.
func (p *Provider) InsiderTransactions(ctx context.Context, ticker, startDate, endDate string) (data.DateIndexed[data.InsiderTransaction], error) {
	out := make(data.DateIndexed[data.InsiderTransaction])
	if data.EmptyWindow(startDate, endDate) {
		return out, nil
	}

	var resp insiderResponse
	if err := p.get(ctx, "/insider_transactions", url.Values{"symbol": {ticker}}, &resp); err != nil {
		return nil, err
	}

	for _, it := range resp.Items {
		date := it.DateReported
		if !data.InWindow(date, startDate, endDate) {
			continue
		}
		out[date] = append(out[date], toTransaction(it))
	}
	return out, nil
}

func toTransaction(it insiderTransaction) data.InsiderTransaction {
	code, sign := classify(it.Description)
	var price float64
	if it.Shares != 0 {
		price = math.Round(it.Value/it.Shares*100) / 100
	}
	// Share is the post-trade holding, which Twelve Data does not report.
	return data.InsiderTransaction{
		FilingDate:       it.DateReported,
		Name:             it.FullName,
		Change:           sign * it.Shares,
		TransactionPrice: price,
		TransactionCode:  code,
	}
}

// classify maps the free-text description to a Form 4 code and a share sign.
func classify(desc string) (string, float64) {
	d := strings.ToLower(desc)
	switch {
	case strings.Contains(d, "sale"):
		return "S", -1
	case strings.Contains(d, "purchase"):
		return "P", 1
	case strings.Contains(d, "gift"):
		return "G", -1
	case strings.Contains(d, "exercise"), strings.Contains(d, "conversion"):
		return "M", 1
	case strings.Contains(d, "award"), strings.Contains(d, "grant"):
		return "A", 1
	}
	return "", 1
}

// get waits for the limiter, then fetches path and decodes the JSON body into
// out. Twelve Data reports some errors as HTTP 200 with status "error".
func (p *Provider) get(ctx context.Context, path string, q url.Values, out any) error {
	if err := p.limiter.Wait(ctx); err != nil {
		return types.FromTransport(Name, err)
	}

	if p.cfg.APIKey != "" {
		q.Set("apikey", p.cfg.APIKey)
	}
	u := httpx.Endpoint(p.cfg.BaseURL, path) + "?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return types.AdapterFailure(Name, types.ReasonInvalidRequest, "failed to create request").WithCause(err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return types.FromTransport(Name, err)
	}
	defer httpx.CloseBody(resp.Body)

	if resp.StatusCode >= 400 {
		msg := httpx.ReadErrorMessage(resp.Body)
		p.logger.Debug("request failed", zap.String("path", path), zap.Int("status", resp.StatusCode))
		return types.FromHTTPStatus(Name, resp.StatusCode, msg)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return types.FromTransport(Name, err)
	}

	var status struct {
		Status  string `json:"status"`
		Code    int    `json:"code"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &status); err != nil {
		return types.AdapterFailure(Name, types.ReasonDecode, "failed to decode response").WithCause(err)
	}
	if status.Status == "error" {
		code := status.Code
		if code == 0 {
			code = http.StatusBadGateway
		}
		return types.FromHTTPStatus(Name, code, status.Message)
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return types.AdapterFailure(Name, types.ReasonDecode, "failed to decode response").WithCause(err)
	}
	return nil
}
