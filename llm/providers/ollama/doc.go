// Package ollama adapts a local Ollama server to llm.Provider.
package ollama
