/*
Package llm defines the LLM capability family.

A Provider exposes two chat handles: DeepThinkingLLM for long-form reasoning
and QuickThinkingLLM for cheap, fast calls. Handles are built without I/O;
only ChatModel.Completion reaches the vendor. Concrete vendors live under
llm/providers and are registered by llm/factory, so this package imports none
of them.

Every ChatRequest carries a trace id (see EnsureTraceID) that adapters forward
as X-Request-ID and copy into the response.
*/
package llm
