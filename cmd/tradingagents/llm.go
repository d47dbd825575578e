package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/mygamer123/tradingagents/config"
	"github.com/mygamer123/tradingagents/llm"
	"github.com/mygamer123/tradingagents/llm/embedding"
	"github.com/mygamer123/tradingagents/llm/factory"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const llmTracerName = "github.com/mygamer123/tradingagents/llm"

func newProvidersCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:       "providers [llm|embedding|data]",
		Short:     "List registered providers; * marks the configured one",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{factory.FamilyLLM, factory.FamilyEmbedding, factory.FamilyData},
		RunE: func(cmd *cobra.Command, args []string) error {
			families := []string{factory.FamilyLLM, factory.FamilyEmbedding, factory.FamilyData}
			if len(args) == 1 {
				families = args
			}

			cfg := a.providerConfig()
			out := cmd.OutOrStdout()
			for i, family := range families {
				if i > 0 {
					fmt.Fprintln(out)
				}
				fmt.Fprintf(out, "%s:\n", family)
				for _, line := range a.describe(family, cfg) {
					fmt.Fprintln(out, line)
				}
			}
			return nil
		},
	}
}

// describe renders one line per registered key of family.
func (a *app) describe(family string, cfg config.ProviderConfig) []string {
	var (
		keys     []string
		selected string
		detail   func(key string) string
	)

	switch family {
	case factory.FamilyLLM:
		keys, selected = a.regs.LLM.List(), a.regs.LLM.KeyFor(cfg)
		detail = func(key string) string {
			p, err := a.regs.LLM.GetByKey(key, cfg)
			if err != nil {
				return "error: " + err.Error()
			}
			deep, err := p.DeepThinkingLLM()
			if err != nil {
				return "error: " + err.Error()
			}
			quick, err := p.QuickThinkingLLM()
			if err != nil {
				return "error: " + err.Error()
			}
			return fmt.Sprintf("deep=%s quick=%s", deep.ModelName(), quick.ModelName())
		}
	case factory.FamilyEmbedding:
		keys, selected = a.regs.LLM.List(), a.regs.Embedding.KeyFor(cfg)
		detail = func(key string) string {
			p, err := a.regs.Embeddings.ResolveKey(key, cfg)
			if err != nil {
				return "error: " + err.Error()
			}
			switch v := p.(type) {
			case *embedding.Fallback:
				return fmt.Sprintf("model=%s (fallback to %s)", v.EmbeddingModelName(), v.Target().Name())
			case *embedding.Unsupported:
				return "unsupported"
			default:
				return "model=" + p.EmbeddingModelName()
			}
		}
	default:
		keys, selected = a.regs.Data.List(), a.regs.Data.KeyFor(cfg)
		detail = func(key string) string {
			p, err := a.regs.Data.GetByKey(key, cfg)
			if err != nil {
				return "error: " + err.Error()
			}
			defer closeProvider(p)
			if av, ok := p.(interface{ Available() bool }); ok && !av.Available() {
				return "no local data"
			}
			return ""
		}
	}

	lines := make([]string, 0, len(keys))
	for _, key := range keys {
		mark := " "
		if key == selected {
			mark = "*"
		}
		lines = append(lines, strings.TrimRight(fmt.Sprintf("  %s %-12s %s", mark, key, detail(key)), " "))
	}
	return lines
}

type embedResult struct {
	Provider   string    `json:"provider"`
	Model      string    `json:"model"`
	Text       string    `json:"text"`
	Dimensions int       `json:"dimensions"`
	Vector     []float64 `json:"vector,omitempty"`
}

func newEmbedCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "embed <text>",
		Short: "Embed text with the embedding provider of the configured LLM",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.regs.EmbeddingProvider(a.providerConfig())
			if err != nil {
				return err
			}

			text := strings.Join(args, " ")
			start := time.Now()
			vec, err := p.Embedding(cmd.Context(), text)
			a.collector.RecordCapabilityCall(factory.FamilyEmbedding, p.Name(), "embedding", time.Since(start), err)
			if err != nil {
				return err
			}

			res := embedResult{Provider: p.Name(), Model: p.EmbeddingModelName(), Text: text, Dimensions: len(vec)}
			if full, _ := cmd.Flags().GetBool("full"); full {
				res.Vector = vec
			}
			return write(cmd, res)
		},
	}
	cmd.Flags().Bool("full", false, "Include the vector in the output")
	addOutputFlag(cmd)
	return cmd
}

func newChatCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat <prompt>",
		Short: "Send one prompt to the deep or quick model of the configured LLM",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tier, _ := cmd.Flags().GetString("tier")
			system, _ := cmd.Flags().GetString("system")
			maxTokens, _ := cmd.Flags().GetInt("max-tokens")
			format, _ := cmd.Flags().GetString("output")

			p, err := a.regs.LLMProvider(a.providerConfig())
			if err != nil {
				return err
			}
			model, err := llm.ModelFor(p, llm.Tier(tier))
			if err != nil {
				return err
			}

			req := &llm.ChatRequest{MaxTokens: maxTokens}
			if system != "" {
				req.Messages = append(req.Messages, llm.Message{Role: llm.RoleSystem, Content: system})
			}
			req.Messages = append(req.Messages, llm.Message{Role: llm.RoleUser, Content: strings.Join(args, " ")})
			llm.EnsureTraceID(req)

			ctx, span := a.telemetry.TracerProvider().Tracer(llmTracerName).Start(cmd.Context(), "llm.completion",
				trace.WithSpanKind(trace.SpanKindClient),
				trace.WithAttributes(
					attribute.String("llm.provider", model.Provider()),
					attribute.String("llm.model", model.ModelName()),
					attribute.String("llm.tier", tier),
					attribute.String("llm.trace_id", req.TraceID),
				),
			)
			start := time.Now()
			resp, err := model.Completion(ctx, req)
			var usage llm.ChatUsage
			if resp != nil {
				usage = resp.Usage
			}
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
			}
			span.SetAttributes(
				attribute.Int("llm.prompt_tokens", usage.PromptTokens),
				attribute.Int("llm.completion_tokens", usage.CompletionTokens),
			)
			span.End()
			a.collector.RecordLLMRequest(model.Provider(), model.ModelName(), time.Since(start),
				usage.PromptTokens, usage.CompletionTokens, err)
			if err != nil {
				return err
			}

			if format == "text" {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), resp.Text())
				return err
			}
			return render(cmd.OutOrStdout(), format, resp)
		},
	}
	cmd.Flags().String("tier", string(llm.TierDeep), "Model tier: deep, quick")
	cmd.Flags().String("system", "", "Optional system message")
	cmd.Flags().Int("max-tokens", 0, "Completion token limit (0 = vendor default)")
	cmd.Flags().StringP("output", "o", "text", "Output format: text, json, yaml")
	return cmd
}
