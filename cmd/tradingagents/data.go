package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mygamer123/tradingagents/config"
	"github.com/mygamer123/tradingagents/data"
	"github.com/mygamer123/tradingagents/internal/database"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type feedSpec struct {
	use   string
	short string
	fetch func(ctx context.Context, p data.Provider, ticker, start, end string) (any, error)
}

var (
	feedNews = feedSpec{
		use:   "news",
		short: "Company news headlines in a date window",
		fetch: func(ctx context.Context, p data.Provider, ticker, start, end string) (any, error) {
			return p.News(ctx, ticker, start, end)
		},
	}
	feedSentiment = feedSpec{
		use:   "sentiment",
		short: "Monthly insider sentiment (MSPR) in a date window",
		fetch: func(ctx context.Context, p data.Provider, ticker, start, end string) (any, error) {
			return p.InsiderSentiment(ctx, ticker, start, end)
		},
	}
	feedTransactions = feedSpec{
		use:   "transactions",
		short: "Insider transactions in a date window",
		fetch: func(ctx context.Context, p data.Provider, ticker, start, end string) (any, error) {
			return p.InsiderTransactions(ctx, ticker, start, end)
		},
	}
)

func addWindowFlags(cmd *cobra.Command) {
	cmd.Flags().String("start", "", "First date of the window (YYYY-MM-DD)")
	cmd.Flags().String("end", "", "Last date of the window (YYYY-MM-DD)")
	cmd.Flags().String("date", "", "Window end date when --start/--end are not given (default today)")
	cmd.Flags().Int("lookback", 7, "Days before --date to include")
}

// window returns the inclusive date range selected by the window flags.
func window(cmd *cobra.Command) (string, string, error) {
	start, _ := cmd.Flags().GetString("start")
	end, _ := cmd.Flags().GetString("end")
	if start != "" || end != "" {
		if start == "" || end == "" {
			return "", "", fmt.Errorf("--start and --end must be given together")
		}
		for _, d := range []string{start, end} {
			if _, err := time.Parse(data.DateLayout, d); err != nil {
				return "", "", fmt.Errorf("invalid date %q: want YYYY-MM-DD", d)
			}
		}
		return start, end, nil
	}

	date, _ := cmd.Flags().GetString("date")
	if date == "" {
		date = time.Now().Format(data.DateLayout)
	}
	days, _ := cmd.Flags().GetInt("lookback")
	start, end, err := data.LookbackWindow(date, days)
	if err != nil {
		return "", "", fmt.Errorf("invalid --date %q: %w", date, err)
	}
	return start, end, nil
}

// poolStatser is implemented by data stores backed by a SQL pool.
type poolStatser interface {
	Driver() string
	Stats() (database.PoolStats, bool)
}

// recordPool reports the pool size of a SQL-backed store.
func (a *app) recordPool(v any) {
	ps, ok := v.(poolStatser)
	if !ok {
		return
	}
	if stats, ok := ps.Stats(); ok {
		a.collector.RecordDBConnections(ps.Driver(), stats.OpenConnections, stats.Idle)
	}
}

func closeProvider(v any) {
	if c, ok := v.(io.Closer); ok {
		_ = c.Close()
	}
}

func newFeedCmd(a *app, feed feedSpec) *cobra.Command {
	cmd := &cobra.Command{
		Use:   feed.use + " <ticker>",
		Short: feed.short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, end, err := window(cmd)
			if err != nil {
				return err
			}
			p, err := a.regs.DataProvider(a.providerConfig())
			if err != nil {
				return err
			}
			defer closeProvider(p)

			out, err := feed.fetch(cmd.Context(), p, args[0], start, end)
			if err != nil {
				return err
			}
			return write(cmd, out)
		},
	}
	addWindowFlags(cmd)
	addOutputFlag(cmd)
	return cmd
}

func newSnapshotCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot <ticker>",
		Short: "All three data feeds for a ticker, fetched concurrently",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, end, err := window(cmd)
			if err != nil {
				return err
			}
			p, err := a.regs.DataProvider(a.providerConfig())
			if err != nil {
				return err
			}
			defer closeProvider(p)

			snap, err := data.FetchSnapshot(cmd.Context(), p, args[0], start, end)
			if err != nil {
				return err
			}
			return write(cmd, snap)
		},
	}
	addWindowFlags(cmd)
	addOutputFlag(cmd)
	return cmd
}

func newImportCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <ticker>...",
		Short: "Copy feeds from one data provider into a writable store",
		Long: `Fetch a snapshot of every ticker from the --from provider and save it
into the --to provider. Only stores that accept writes (redis, sql) can be
targets; dates present in the snapshot replace what the store held.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, end, err := window(cmd)
			if err != nil {
				return err
			}
			from, _ := cmd.Flags().GetString("from")
			to, _ := cmd.Flags().GetString("to")

			cfg := a.providerConfig()
			if from != "" {
				cfg = cfg.Merge(config.ProviderConfig{config.KeyDataProvider: from})
			}
			src, err := a.regs.DataProvider(cfg)
			if err != nil {
				return err
			}
			defer closeProvider(src)

			dst, err := a.regs.Data.GetByKey(to, cfg)
			if err != nil {
				return err
			}
			defer closeProvider(dst)
			sink, ok := dst.(data.Sink)
			if !ok {
				return fmt.Errorf("data provider %q does not accept writes", dst.Name())
			}

			for _, ticker := range args {
				ticker = strings.ToUpper(ticker)
				snap, err := data.FetchSnapshot(cmd.Context(), src, ticker, start, end)
				if err != nil {
					return fmt.Errorf("fetching %s: %w", ticker, err)
				}
				if err := sink.SaveSnapshot(cmd.Context(), snap); err != nil {
					return fmt.Errorf("saving %s: %w", ticker, err)
				}
				a.logger.Info("snapshot imported",
					zap.String("ticker", ticker),
					zap.String("from", src.Name()),
					zap.String("to", dst.Name()))
				fmt.Fprintf(cmd.OutOrStdout(), "%-8s %s -> %s  news=%d sentiment=%d transactions=%d\n",
					ticker, src.Name(), dst.Name(),
					snap.News.Count(), snap.InsiderSentiment.Count(), snap.InsiderTransactions.Count())
			}
			a.recordPool(dst)
			return nil
		},
	}
	addWindowFlags(cmd)
	cmd.Flags().String("from", "", "Source data provider (default: configured data_provider)")
	cmd.Flags().String("to", "", "Target data provider (redis or sql)")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}
