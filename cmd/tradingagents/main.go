// =============================================================================
// tradingagents CLI
// =============================================================================
// Resolves LLM, embedding and data providers from configuration and runs one
// capability call per command.
//
// Usage:
//
//	tradingagents providers [llm|embedding|data]
//	tradingagents news AAPL --date 2024-05-10 --lookback 7
//	tradingagents snapshot AAPL --start 2024-05-01 --end 2024-05-10
//	tradingagents import AAPL --from finnhub --to sql --start 2024-01-01 --end 2024-12-31
//	tradingagents embed "Apple raises guidance"
//	tradingagents chat --tier quick "Summarize NVDA insider activity"
//	tradingagents config show
//	tradingagents watch --config tradingagents.yaml --metrics-addr :9090
// =============================================================================
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mygamer123/tradingagents/config"
	"github.com/mygamer123/tradingagents/internal/logging"
	"github.com/mygamer123/tradingagents/internal/metrics"
	"github.com/mygamer123/tradingagents/internal/server"
	"github.com/mygamer123/tradingagents/internal/telemetry"
	"github.com/mygamer123/tradingagents/llm/factory"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Build information, set through ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

// run executes one command line and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	a := &app{}
	defer a.close()

	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return 1
	}
	return 0
}

// globalFlags are the persistent flags shared by every command.
type globalFlags struct {
	configPath   string
	logLevel     string
	metricsAddr  string
	llmProvider  string
	dataProvider string
	dataDir      string
	set          map[string]string
}

// app is the state built once per invocation before the command runs.
type app struct {
	flags globalFlags

	loader    *config.Loader
	cfg       *config.Config
	store     *config.Store
	regs      *factory.Registries
	collector *metrics.Collector
	metrics   *server.Manager
	telemetry *telemetry.Providers
	logger    *zap.Logger
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "tradingagents",
		Short: "Provider layer of the trading agents framework",
		Long: `Resolve LLM, embedding and financial data providers by name and call them.

Providers are selected with llm_provider and data_provider, taken from the
config file, TRADINGAGENTS_* environment variables or the flags below.`,
		Version:           fmt.Sprintf("%s (%s)", Version, GitCommit),
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: func(*cobra.Command, []string) error { return a.setup() },
	}

	f := root.PersistentFlags()
	f.StringVarP(&a.flags.configPath, "config", "c", "", "Path to YAML config file")
	f.StringVar(&a.flags.logLevel, "log-level", "", "Log level override: debug, info, warn, error")
	f.StringVar(&a.flags.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address")
	f.StringVar(&a.flags.llmProvider, "llm-provider", "", "LLM provider key")
	f.StringVar(&a.flags.dataProvider, "data-provider", "", "Data provider key")
	f.StringVar(&a.flags.dataDir, "data-dir", "", "Local data directory")
	f.StringToStringVar(&a.flags.set, "set", nil, "Extra provider config entries (key=value)")

	root.AddCommand(
		newProvidersCmd(a),
		newFeedCmd(a, feedNews),
		newFeedCmd(a, feedSentiment),
		newFeedCmd(a, feedTransactions),
		newSnapshotCmd(a),
		newImportCmd(a),
		newEmbedCmd(a),
		newChatCmd(a),
		newConfigCmd(a),
		newWatchCmd(a),
	)
	return root
}

// setup loads configuration, builds the logger and the registries, and starts
// the metrics endpoint when asked to.
func (a *app) setup() error {
	a.loader = config.NewLoader()
	if a.flags.configPath != "" {
		a.loader = a.loader.WithConfigPath(a.flags.configPath)
	}

	cfg, err := a.loader.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	a.cfg = cfg

	logCfg := cfg.Log
	if a.flags.logLevel != "" {
		logCfg.Level = a.flags.logLevel
	}
	// command output owns stdout
	logCfg.OutputPaths = redirectStdout(logCfg.OutputPaths)
	a.logger, err = logging.New(logCfg)
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	a.collector = metrics.NewCollector(cfg.Metrics.Namespace, reg, a.logger)

	a.telemetry, err = telemetry.Init(cfg.Telemetry, a.logger)
	if err != nil {
		return fmt.Errorf("initializing telemetry: %w", err)
	}

	a.store = config.NewStore(cfg.ProviderConfig())
	a.regs, err = factory.New(
		factory.WithLogger(a.logger),
		factory.WithStore(a.store),
		factory.WithRecorder(a.collector),
		factory.WithTracerProvider(a.telemetry.TracerProvider()),
	)
	if err != nil {
		return fmt.Errorf("building registries: %w", err)
	}

	addr := a.flags.metricsAddr
	if addr == "" {
		addr = cfg.Metrics.Addr
	}
	if addr != "" {
		a.metrics = server.NewMetricsServer(addr, reg, a.logger)
		if err := a.metrics.Start(); err != nil {
			return err
		}
	}
	return nil
}

// providerConfig is the process configuration with the command-line overrides
// applied on top.
func (a *app) providerConfig() config.ProviderConfig {
	overrides := config.ProviderConfig{}
	for k, v := range a.flags.set {
		overrides[k] = v
	}
	if a.flags.llmProvider != "" {
		overrides[config.KeyLLMProvider] = a.flags.llmProvider
	}
	if a.flags.dataProvider != "" {
		overrides[config.KeyDataProvider] = a.flags.dataProvider
	}
	if a.flags.dataDir != "" {
		overrides[config.KeyDataDir] = a.flags.dataDir
	}
	return a.store.Get().Merge(overrides)
}

func (a *app) close() {
	if a.metrics != nil {
		_ = a.metrics.Shutdown(context.Background())
	}
	if a.telemetry != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := a.telemetry.Shutdown(ctx); err != nil {
			a.logger.Warn("telemetry shutdown failed", zap.Error(err))
		}
		cancel()
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}

func redirectStdout(paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if p == "stdout" {
			p = "stderr"
		}
		out = append(out, p)
	}
	return out
}
