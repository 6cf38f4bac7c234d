package server

import (
	"context"
	"errors"
	"sync"

	"github.com/teemow/inboxreview/internal/instrumentation"
	"github.com/teemow/inboxreview/internal/review"
)

// ErrRunInProgress is returned when a review is requested while another one
// is still running.
var ErrRunInProgress = errors.New("a review run is already in progress")

// ErrShutdown is returned once the server context has been shut down.
var ErrShutdown = errors.New("server is shutting down")

// SectionNamer resolves a section ID to a display name.
type SectionNamer interface {
	SectionName(ctx context.Context, projectID, sectionID string) (string, error)
}

// ServerContext holds the context for the MCP server
type ServerContext struct {
	ctx      context.Context
	cancel   context.CancelFunc
	pipeline *review.Pipeline
	sections SectionNamer
	metrics  *instrumentation.Metrics
	audit    *instrumentation.AuditLogger

	runMu      sync.Mutex
	mu         sync.RWMutex
	lastReport *review.Report
	shutdown   bool
}

// Option configures a ServerContext.
type Option func(*ServerContext)

// WithMetrics sets the metrics recorder used by instrumented tools.
func WithMetrics(m *instrumentation.Metrics) Option {
	return func(sc *ServerContext) {
		sc.metrics = m
	}
}

// WithAuditLogger sets the audit logger.
func WithAuditLogger(al *instrumentation.AuditLogger) Option {
	return func(sc *ServerContext) {
		sc.audit = al
	}
}

// WithSectionNamer sets the resolver used to name the reviewed section.
func WithSectionNamer(sn SectionNamer) Option {
	return func(sc *ServerContext) {
		sc.sections = sn
	}
}

// NewServerContext creates a new server context
func NewServerContext(ctx context.Context, pipeline *review.Pipeline, opts ...Option) (*ServerContext, error) {
	if pipeline == nil {
		return nil, errors.New("pipeline is required")
	}

	shutdownCtx, cancel := context.WithCancel(ctx)
	sc := &ServerContext{
		ctx:      shutdownCtx,
		cancel:   cancel,
		pipeline: pipeline,
	}
	for _, opt := range opts {
		opt(sc)
	}
	return sc, nil
}

// Context returns the server context
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// Pipeline returns the review pipeline.
func (sc *ServerContext) Pipeline() *review.Pipeline {
	return sc.pipeline
}

// Metrics returns the metrics recorder, which may be nil.
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	return sc.metrics
}

// AuditLogger returns the audit logger, which may be nil.
func (sc *ServerContext) AuditLogger() *instrumentation.AuditLogger {
	return sc.audit
}

// SectionName resolves sectionID, or returns "" when no resolver is set.
func (sc *ServerContext) SectionName(ctx context.Context, projectID, sectionID string) (string, error) {
	if sc.sections == nil {
		return "", nil
	}
	return sc.sections.SectionName(ctx, projectID, sectionID)
}

// RunReview performs one review pass. Only one run may be in progress at a
// time; a concurrent call fails with ErrRunInProgress instead of waiting.
// The run is canceled when either ctx or the server context is done.
func (sc *ServerContext) RunReview(ctx context.Context) (*review.Report, error) {
	if sc.IsShutdown() {
		return nil, ErrShutdown
	}
	if !sc.runMu.TryLock() {
		return nil, ErrRunInProgress
	}
	defer sc.runMu.Unlock()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(sc.ctx, cancel)
	defer stop()

	report, err := sc.pipeline.Run(runCtx)
	if report != nil {
		sc.mu.Lock()
		sc.lastReport = report
		sc.mu.Unlock()
	}
	return report, err
}

// LastReport returns the report of the most recent run, or nil.
func (sc *ServerContext) LastReport() *review.Report {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.lastReport
}

// Shutdown cancels the server context. A running review stops before its
// next task.
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}
	sc.shutdown = true
	sc.cancel()
	return nil
}

// IsShutdown reports whether Shutdown has been called.
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}
