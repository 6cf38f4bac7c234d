// Package instrumentation provides OpenTelemetry instrumentation for inboxreview.
//
// This package enables observability of review runs through:
//   - OpenTelemetry metrics for runs, pipeline stages and MCP tool invocations
//   - Distributed tracing for runs, tasks and individual stage calls
//   - Prometheus metrics export via /metrics endpoint on a dedicated port
//   - OTLP export support for modern observability platforms
//   - Audit records for every task mutation (content update, section move)
//
// # Metrics
//
// Review Metrics:
//   - review_runs_total: Counter of review runs by status
//   - review_tasks_total: Counter of processed tasks by outcome
//   - review_stage_total: Counter of stage calls by stage and status
//   - review_stage_duration_seconds: Histogram of stage call durations
//   - review_rewrite_fallbacks_total: Counter of rewrites that fell back to the original text
//
// MCP Tool Metrics:
//   - mcp_tool_invocations_total: Counter of MCP tool invocations by tool name and status
//   - mcp_tool_duration_seconds: Histogram of MCP tool execution durations
//
// # Tracing
//
// Spans are created for:
//   - review.run: one per pipeline run
//   - review.task: one per processed task
//   - review.<stage>: fetch, rewrite, update, relocate
//   - tool.<name>: MCP tool invocations
//
// # Configuration
//
// Instrumentation can be configured via environment variables:
//   - INSTRUMENTATION_ENABLED: Enable/disable instrumentation (default: true)
//   - METRICS_EXPORTER: Metrics exporter type (prometheus, otlp, stdout, default: prometheus)
//   - TRACING_EXPORTER: Tracing exporter type (otlp, stdout, none, default: none)
//   - OTEL_EXPORTER_OTLP_ENDPOINT: OTLP endpoint for traces/metrics
//   - OTEL_TRACES_SAMPLER_ARG: Sampling rate (0.0 to 1.0, default: 0.1)
//   - OTEL_SERVICE_NAME: Service name (default: inboxreview)
//
// # Example Usage
//
//	provider, err := instrumentation.NewProvider(ctx, instrumentation.DefaultConfig())
//	if err != nil {
//		return err
//	}
//	defer provider.Shutdown(ctx)
//
//	recorder := provider.Metrics()
//	recorder.RecordStage(ctx, instrumentation.StageRewrite, instrumentation.StatusSuccess, time.Since(start))
package instrumentation
