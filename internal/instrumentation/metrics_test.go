package instrumentation

import (
	"context"
	"testing"
	"time"
)

func newTestProvider(t *testing.T) (*Provider, context.Context) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)

	provider, err := NewProvider(ctx, Config{
		ServiceName:     "test-service",
		ServiceVersion:  "1.0.0",
		Enabled:         true,
		MetricsExporter: "prometheus",
		TracingExporter: "none",
	})
	if err != nil {
		t.Fatalf("failed to create provider: %v", err)
	}
	t.Cleanup(func() { _ = provider.Shutdown(ctx) })
	return provider, ctx
}

func TestMetrics_RecordRun(t *testing.T) {
	provider, ctx := newTestProvider(t)

	metrics := provider.Metrics()
	if metrics == nil {
		t.Fatal("expected metrics to be non-nil")
	}

	// Should not panic
	metrics.RecordRun(ctx, RunStatusNoop)
	metrics.RecordRun(ctx, RunStatusCompleted)
	metrics.RecordRun(ctx, RunStatusCanceled)
}

func TestMetrics_RecordTask(t *testing.T) {
	provider, ctx := newTestProvider(t)

	metrics := provider.Metrics()

	// Should not panic
	metrics.RecordTask(ctx, OutcomeReviewed)
	metrics.RecordTask(ctx, OutcomePartial)
	metrics.RecordTask(ctx, OutcomeFailed)
	metrics.RecordTask(ctx, OutcomeSkipped)
}

func TestMetrics_RecordStage(t *testing.T) {
	provider, ctx := newTestProvider(t)

	metrics := provider.Metrics()

	// Should not panic
	metrics.RecordStage(ctx, StageFetch, StatusSuccess, 200*time.Millisecond)
	metrics.RecordStage(ctx, StageRewrite, StatusError, 2*time.Second)
	metrics.RecordStage(ctx, StageUpdate, StatusSuccess, 80*time.Millisecond)
	metrics.RecordStage(ctx, StageRelocate, StatusSuccess, 90*time.Millisecond)
	metrics.RecordRewriteFallback(ctx)
}

func TestMetrics_RecordToolInvocation(t *testing.T) {
	provider, ctx := newTestProvider(t)

	// Should not panic
	provider.Metrics().RecordToolInvocation(ctx, "review_list_inbox", StatusSuccess, 150*time.Millisecond)
	provider.Metrics().RecordToolInvocation(ctx, "review_run", StatusError, time.Second)
}

func TestMetrics_NilSafe(t *testing.T) {
	ctx := context.Background()

	// Zero-value metrics (disabled instrumentation)
	m := &Metrics{}
	m.RecordRun(ctx, RunStatusCompleted)
	m.RecordTask(ctx, OutcomeReviewed)
	m.RecordStage(ctx, StageFetch, StatusSuccess, time.Millisecond)
	m.RecordRewriteFallback(ctx)
	m.RecordToolInvocation(ctx, "review_run", StatusSuccess, time.Millisecond)

	// Nil pointer receiver
	var nilMetrics *Metrics
	nilMetrics.RecordRun(ctx, RunStatusNoop)
	nilMetrics.RecordStage(ctx, StageUpdate, StatusError, time.Millisecond)
	nilMetrics.RecordRewriteFallback(ctx)
}
