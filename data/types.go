// Package data defines the financial data-source capability family.
//
// Every feed returns records grouped by ISO date (YYYY-MM-DD). Dates with no
// records are omitted, and a window whose start is after its end yields an
// empty mapping rather than an error.
package data

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Feed names, also used as metric operation labels.
const (
	FeedNews                = "news"
	FeedInsiderSentiment    = "insider_sentiment"
	FeedInsiderTransactions = "insider_transactions"
)

// NewsItem is one headline.
type NewsItem struct {
	Headline string `json:"headline" gorm:"not null"`
	Summary  string `json:"summary"`
}

// InsiderSentiment is one monthly insider-sentiment record. Year and Month
// are kept as strings; vendors deliver either numbers or strings.
type InsiderSentiment struct {
	Year   FlexString `json:"year"`
	Month  FlexString `json:"month"`
	Change float64    `json:"change"`
	MSPR   float64    `json:"mspr"`
}

// InsiderTransaction is one reported insider trade.
type InsiderTransaction struct {
	FilingDate       string  `json:"filingDate"`
	Name             string  `json:"name"`
	Change           float64 `json:"change"`
	// Share is the holding after the trade; zero when the vendor omits it.
	Share            float64 `json:"share"`
	TransactionPrice float64 `json:"transactionPrice"`
	TransactionCode  string  `json:"transactionCode"`
}

// DateIndexed groups records by ISO date.
type DateIndexed[T any] map[string][]T

// Dates returns the keys in ascending order.
func (d DateIndexed[T]) Dates() []string {
	out := make([]string, 0, len(d))
	for k := range d {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Count returns the number of records across all dates.
func (d DateIndexed[T]) Count() int {
	n := 0
	for _, v := range d {
		n += len(v)
	}
	return n
}

// Provider is the data-source capability family.
type Provider interface {
	// Name returns the provider's registry key.
	Name() string

	News(ctx context.Context, ticker, startDate, endDate string) (DateIndexed[NewsItem], error)
	InsiderSentiment(ctx context.Context, ticker, startDate, endDate string) (DateIndexed[InsiderSentiment], error)
	InsiderTransactions(ctx context.Context, ticker, startDate, endDate string) (DateIndexed[InsiderTransaction], error)
}

// FlexString decodes a JSON string or number into its string form and always
// encodes as a string.
type FlexString string

func (s *FlexString) UnmarshalJSON(b []byte) error {
	raw := strings.TrimSpace(string(b))
	if raw == "null" {
		*s = ""
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = FlexString(v)
		return nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Errorf("flex string: %q is neither string nor number", raw)
	}
	*s = FlexString(strconv.FormatFloat(f, 'f', -1, 64))
	return nil
}

func (s FlexString) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(s))
}
