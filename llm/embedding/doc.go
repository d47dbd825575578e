/*
Package embedding defines the embedding capability family and decides which
provider serves embeddings for a given LLM vendor.

openai and ollama embed natively through the OpenAI /embeddings protocol.
anthropic, google and openrouter have no embedding API and are served by
openai through a Fallback, which reports its model as
"openai-fallback-<model>". A custom LLM provider that implements Provider is
used as is; one that does not yields Unsupported, whose calls fail with
UNSUPPORTED_CAPABILITY.

The caller's embedding_model wins for model selection; DefaultFallbacks wins
for provider selection.
*/
package embedding
