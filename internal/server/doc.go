// Package server runs a background HTTP server with graceful shutdown. The
// CLI uses it to expose Prometheus metrics on --metrics-addr.
package server
