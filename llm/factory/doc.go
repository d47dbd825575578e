// Package factory wires every built-in adapter into the LLM, embedding and
// data registries.
//
// The registry and capability packages never import a concrete adapter, so
// this package is the one place that knows them all. Callers build a
// Registries value once at start-up:
//
//	regs, err := factory.New(factory.WithLogger(logger), factory.WithStore(store))
//	llmProvider, err := regs.LLMProvider(cfg)
//	embedder, err := regs.EmbeddingProvider(cfg)
//	feeds, err := regs.DataProvider(cfg)
package factory
