// Package openrouter adapts the OpenRouter gateway to llm.Provider.
package openrouter
