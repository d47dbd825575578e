// Package openai adapts the OpenAI chat completions API to llm.Provider.
package openai
