/*
Package cache wraps a go-redis client for the Redis-backed data source.

Manager namespaces keys under a configurable prefix, stores records as
JSON-encoded hash fields and exposes the few commands the data source needs.
Construction never dials; the first command does.
*/
package cache
