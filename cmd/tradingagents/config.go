package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mygamer123/tradingagents/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the effective configuration",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the provider configuration after file, env and flag overrides",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return write(cmd, redact(a.providerConfig()))
		},
	}
	show.Flags().StringP("output", "o", formatYAML, "Output format: json, yaml")

	cmd.AddCommand(show)
	return cmd
}

// redact masks credentials so the configuration can be printed.
func redact(cfg config.ProviderConfig) config.ProviderConfig {
	out := cfg.Clone()
	for k, v := range out {
		lower := strings.ToLower(k)
		if !strings.Contains(lower, "api_key") && !strings.Contains(lower, "password") {
			continue
		}
		if s := fmt.Sprint(v); s != "" {
			out[k] = "***"
		}
	}
	return out
}

func newWatchCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Reload the config file on change and report the selected providers",
		Long: `Poll the file given by --config and replace the process configuration
whenever it changes. Each reload prints the LLM and data providers that the
new configuration selects. Combine with --metrics-addr to keep the metrics
endpoint up while watching.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			interval, _ := cmd.Flags().GetDuration("interval")

			w, err := config.NewWatcher(a.loader, a.store,
				config.WithPollInterval(interval),
				config.WithWatcherLogger(a.logger))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			report := func(prefix string) {
				cfg := a.providerConfig()
				fmt.Fprintf(out, "%s llm=%s embedding=%s data=%s\n", prefix,
					a.regs.LLM.KeyFor(cfg), a.regs.Embedding.KeyFor(cfg), a.regs.Data.KeyFor(cfg))
			}
			w.OnReload(func(evt config.ReloadEvent) {
				if evt.Error != nil {
					fmt.Fprintf(out, "reload failed: %v\n", evt.Error)
					return
				}
				if _, err := a.regs.LLMProvider(a.providerConfig()); err != nil {
					a.logger.Warn("reloaded llm selection does not resolve", zap.Error(err))
				}
				report("reloaded")
			})

			report("watching " + a.loader.Path() + ":")
			// the watcher gets its own lifetime so Stop waits for the poll loop
			if err := w.Start(context.Background()); err != nil {
				return err
			}
			<-cmd.Context().Done()
			w.Stop()
			return nil
		},
	}
	cmd.Flags().Duration("interval", time.Second, "Polling interval")
	return cmd
}
