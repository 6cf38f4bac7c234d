// Package server provides the shared state and HTTP plumbing behind the
// inboxreview MCP server.
//
// # Key Components
//
// ServerContext holds the review pipeline together with its metrics and
// audit logger, and serializes review runs so two MCP clients can never
// process the same inbox at once.
//
// HealthChecker serves /healthz, /readyz and /healthz/detailed next to the
// streamable-http MCP endpoint. The detailed endpoint reports the last run.
//
// MetricsServer exposes Prometheus metrics on a dedicated port.
package server
