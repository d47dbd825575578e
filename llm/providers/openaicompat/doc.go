// Package openaicompat implements the chat completion client shared by the
// OpenAI-compatible vendors (openai, openrouter, ollama).
package openaicompat
