package instrumentation

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric attribute keys
const (
	attrStatus  = "status"
	attrStage   = "stage"
	attrOutcome = "outcome"
	attrTool    = "tool"
)

// Metrics provides methods for recording observability metrics.
// A zero Metrics is a valid no-op recorder.
type Metrics struct {
	// Review metrics
	runsTotal        metric.Int64Counter
	tasksTotal       metric.Int64Counter
	stageTotal       metric.Int64Counter
	stageDuration    metric.Float64Histogram
	rewriteFallbacks metric.Int64Counter

	// MCP Tool metrics
	toolInvocationsTotal metric.Int64Counter
	toolDuration         metric.Float64Histogram
}

// NewMetrics creates a new Metrics instance with all metrics initialized.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}

	var err error

	m.runsTotal, err = meter.Int64Counter(
		"review_runs_total",
		metric.WithDescription("Total number of review runs"),
		metric.WithUnit("{run}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create review_runs_total counter: %w", err)
	}

	m.tasksTotal, err = meter.Int64Counter(
		"review_tasks_total",
		metric.WithDescription("Total number of inbox tasks processed"),
		metric.WithUnit("{task}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create review_tasks_total counter: %w", err)
	}

	m.stageTotal, err = meter.Int64Counter(
		"review_stage_total",
		metric.WithDescription("Total number of pipeline stage calls"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create review_stage_total counter: %w", err)
	}

	m.stageDuration, err = meter.Float64Histogram(
		"review_stage_duration_seconds",
		metric.WithDescription("Pipeline stage call duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create review_stage_duration_seconds histogram: %w", err)
	}

	m.rewriteFallbacks, err = meter.Int64Counter(
		"review_rewrite_fallbacks_total",
		metric.WithDescription("Total number of rewrites that kept the original text"),
		metric.WithUnit("{task}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create review_rewrite_fallbacks_total counter: %w", err)
	}

	m.toolInvocationsTotal, err = meter.Int64Counter(
		"mcp_tool_invocations_total",
		metric.WithDescription("Total number of MCP tool invocations"),
		metric.WithUnit("{invocation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mcp_tool_invocations_total counter: %w", err)
	}

	m.toolDuration, err = meter.Float64Histogram(
		"mcp_tool_duration_seconds",
		metric.WithDescription("MCP tool execution duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mcp_tool_duration_seconds histogram: %w", err)
	}

	return m, nil
}

// RecordRun records a finished review run.
// Status should be one of: "noop", "completed", "canceled"
func (m *Metrics) RecordRun(ctx context.Context, status string) {
	if m == nil || m.runsTotal == nil {
		return // Instrumentation not initialized
	}

	m.runsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String(attrStatus, status)))
}

// RecordTask records the outcome of one processed task.
// Outcome should be one of: "reviewed", "partial", "failed", "skipped"
func (m *Metrics) RecordTask(ctx context.Context, outcome string) {
	if m == nil || m.tasksTotal == nil {
		return // Instrumentation not initialized
	}

	m.tasksTotal.Add(ctx, 1, metric.WithAttributes(attribute.String(attrOutcome, outcome)))
}

// RecordStage records a single pipeline stage call.
//
// Parameters:
//   - stage: fetch, rewrite, update or relocate
//   - status: Result status ("success" or "error")
//   - duration: Time taken for the call
func (m *Metrics) RecordStage(ctx context.Context, stage, status string, duration time.Duration) {
	if m == nil || m.stageTotal == nil || m.stageDuration == nil {
		return // Instrumentation not initialized
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrStage, stage),
		attribute.String(attrStatus, status),
	}

	m.stageTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.stageDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordRewriteFallback records a rewrite that kept the original task text.
func (m *Metrics) RecordRewriteFallback(ctx context.Context) {
	if m == nil || m.rewriteFallbacks == nil {
		return // Instrumentation not initialized
	}

	m.rewriteFallbacks.Add(ctx, 1)
}

// RecordToolInvocation records an MCP tool invocation with tool name, status, and duration.
func (m *Metrics) RecordToolInvocation(ctx context.Context, toolName, status string, duration time.Duration) {
	if m == nil || m.toolInvocationsTotal == nil || m.toolDuration == nil {
		return // Instrumentation not initialized
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrTool, toolName),
		attribute.String(attrStatus, status),
	}

	m.toolInvocationsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.toolDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}
