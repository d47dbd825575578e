package data

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName names the tracer feed spans are created with.
const TracerName = "github.com/mygamer123/tradingagents/data"

type traced struct {
	Provider
	tracer trace.Tracer
}

// WithTracing wraps p so every feed call runs in its own span. A nil tp
// returns p unchanged.
func WithTracing(p Provider, tp trace.TracerProvider) Provider {
	if tp == nil || p == nil {
		return p
	}
	return &traced{Provider: p, tracer: tp.Tracer(TracerName)}
}

func (t *traced) start(ctx context.Context, op, ticker, startDate, endDate string) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, "data."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("data.provider", t.Name()),
			attribute.String("data.ticker", ticker),
			attribute.String("data.start_date", startDate),
			attribute.String("data.end_date", endDate),
		),
	)
}

func finish(span trace.Span, records int, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetAttributes(attribute.Int("data.records", records))
	}
	span.End()
}

func (t *traced) News(ctx context.Context, ticker, startDate, endDate string) (DateIndexed[NewsItem], error) {
	ctx, span := t.start(ctx, FeedNews, ticker, startDate, endDate)
	out, err := t.Provider.News(ctx, ticker, startDate, endDate)
	finish(span, out.Count(), err)
	return out, err
}

func (t *traced) InsiderSentiment(ctx context.Context, ticker, startDate, endDate string) (DateIndexed[InsiderSentiment], error) {
	ctx, span := t.start(ctx, FeedInsiderSentiment, ticker, startDate, endDate)
	out, err := t.Provider.InsiderSentiment(ctx, ticker, startDate, endDate)
	finish(span, out.Count(), err)
	return out, err
}

func (t *traced) InsiderTransactions(ctx context.Context, ticker, startDate, endDate string) (DateIndexed[InsiderTransaction], error) {
	ctx, span := t.start(ctx, FeedInsiderTransactions, ticker, startDate, endDate)
	out, err := t.Provider.InsiderTransactions(ctx, ticker, startDate, endDate)
	finish(span, out.Count(), err)
	return out, err
}

// Close closes the wrapped provider when it holds resources.
func (t *traced) Close() error {
	if c, ok := t.Provider.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}
