/*
Package providers holds what the LLM vendor adapters share: reading the
common configuration keys, mapping vendor HTTP failures into ADAPTER_FAILURE
errors, and the OpenAI-compatible wire types.

Each vendor lives in its own subpackage (openai, anthropic, gemini,
openrouter, ollama). The OpenAI-compatible ones embed openaicompat.Provider
and only supply their defaults and headers.
*/
package providers
