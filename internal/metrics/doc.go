/*
Package metrics exports Prometheus metrics for provider resolution and
capability calls.

Collector registers its vectors through promauto on the registerer it is
given, namespaced so several collectors can share one registry. It is passed
to factory.WithRecorder and receives:

  - provider_resolutions_total by family, provider and outcome
  - capability_calls_total and capability_call_duration_seconds by family,
    provider and operation
  - capability_errors_total by error code and reason
  - llm_requests_total, llm_request_duration_seconds and llm_tokens_used_total
    for chat completions
  - db_connections_open and db_connections_idle for the SQL store
*/
package metrics
