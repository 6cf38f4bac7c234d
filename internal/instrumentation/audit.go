package instrumentation

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"
)

// Mutation captures one write against the task service for audit logging:
// either a content update or a move into the reviewed section.
type Mutation struct {
	RunID   string
	TaskID  string
	Stage   string // update or relocate
	Backend string

	// Target values
	Content   string
	SectionID string

	// Execution details
	StartTime time.Time
	Duration  time.Duration
	Success   bool
	Error     string

	// Tracing context
	TraceID string
	SpanID  string
}

// NewMutation creates a new Mutation with timing started.
// Call Complete() when the write finishes.
func NewMutation(runID, taskID, stage string) *Mutation {
	return &Mutation{
		RunID:     runID,
		TaskID:    taskID,
		Stage:     stage,
		StartTime: time.Now(),
	}
}

// WithBackend sets the task backend name.
func (m *Mutation) WithBackend(backend string) *Mutation {
	m.Backend = backend
	return m
}

// WithContent sets the new task content.
func (m *Mutation) WithContent(content string) *Mutation {
	m.Content = content
	return m
}

// WithSection sets the destination section.
func (m *Mutation) WithSection(sectionID string) *Mutation {
	m.SectionID = sectionID
	return m
}

// WithSpanContext extracts trace context from the current span.
func (m *Mutation) WithSpanContext(ctx context.Context) *Mutation {
	span := trace.SpanFromContext(ctx)
	if span.SpanContext().IsValid() {
		m.TraceID = span.SpanContext().TraceID().String()
		m.SpanID = span.SpanContext().SpanID().String()
	}
	return m
}

// Complete marks the mutation as finished and calculates duration.
func (m *Mutation) Complete(err error) *Mutation {
	m.Duration = time.Since(m.StartTime)
	m.Success = err == nil
	if err != nil {
		m.Error = err.Error()
	}
	return m
}

// Status returns "success" or "error" based on the Success field.
func (m *Mutation) Status() string {
	if m.Success {
		return StatusSuccess
	}
	return StatusError
}

// LogAttrs returns slog attributes for the mutation. Content is replaced by
// its length unless includeContent is set.
func (m *Mutation) LogAttrs(includeContent bool) []slog.Attr {
	attrs := []slog.Attr{
		slog.String("run_id", m.RunID),
		slog.String("task_id", m.TaskID),
		slog.String("stage", m.Stage),
		slog.Duration("duration", m.Duration),
		slog.Bool("success", m.Success),
	}

	if m.Backend != "" {
		attrs = append(attrs, slog.String("backend", m.Backend))
	}
	if m.Content != "" {
		if includeContent {
			attrs = append(attrs, slog.String("content", m.Content))
		} else {
			attrs = append(attrs, slog.Int("content_len", len([]rune(m.Content))))
		}
	}
	if m.SectionID != "" {
		attrs = append(attrs, slog.String("section_id", m.SectionID))
	}
	if m.TraceID != "" {
		attrs = append(attrs, slog.String("trace_id", m.TraceID))
	}
	if m.SpanID != "" {
		attrs = append(attrs, slog.String("span_id", m.SpanID))
	}
	if m.Error != "" {
		attrs = append(attrs, slog.String("error", m.Error))
	}

	return attrs
}

// AuditLogger provides structured audit logging for task mutations.
type AuditLogger struct {
	logger         *slog.Logger
	includeContent bool
	enabled        bool
}

// NewAuditLogger creates a new, enabled AuditLogger with the given slog.Logger.
func NewAuditLogger(logger *slog.Logger) *AuditLogger {
	return NewAuditLoggerWithConfig(logger, AuditLoggingConfig{Enabled: true})
}

// NewAuditLoggerWithConfig creates a new AuditLogger with the given configuration.
func NewAuditLoggerWithConfig(logger *slog.Logger, config AuditLoggingConfig) *AuditLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditLogger{
		logger:         logger,
		includeContent: config.IncludeContent,
		enabled:        config.Enabled,
	}
}

// SetEnabled sets whether audit logging is enabled.
func (al *AuditLogger) SetEnabled(enabled bool) {
	al.enabled = enabled
}

// Enabled reports whether audit records are written.
func (al *AuditLogger) Enabled() bool {
	return al != nil && al.enabled
}

// LogMutation writes one audit record. A nil or disabled logger is a no-op.
func (al *AuditLogger) LogMutation(m *Mutation) {
	if !al.Enabled() || m == nil {
		return
	}

	attrs := m.LogAttrs(al.includeContent)
	args := make([]any, len(attrs))
	for i, attr := range attrs {
		args[i] = attr
	}

	if m.Success {
		al.logger.Info("task_mutated", args...)
	} else {
		al.logger.Warn("task_mutation_failed", args...)
	}
}

// ToolInvocation captures one MCP tool call for audit logging.
type ToolInvocation struct {
	Tool      string
	StartTime time.Time
	Duration  time.Duration
	Success   bool
	Error     string
	TraceID   string
	SpanID    string
}

// NewToolInvocation creates a ToolInvocation with timing started.
func NewToolInvocation(tool string) *ToolInvocation {
	return &ToolInvocation{Tool: tool, StartTime: time.Now()}
}

// WithSpanContext extracts trace context from the current span.
func (ti *ToolInvocation) WithSpanContext(ctx context.Context) *ToolInvocation {
	sc := trace.SpanFromContext(ctx).SpanContext()
	if sc.IsValid() {
		ti.TraceID = sc.TraceID().String()
		ti.SpanID = sc.SpanID().String()
	}
	return ti
}

// Complete marks the invocation as finished. A nil err with a non-empty
// errMsg records a tool-level error result.
func (ti *ToolInvocation) Complete(err error, errMsg string) *ToolInvocation {
	ti.Duration = time.Since(ti.StartTime)
	if err != nil {
		errMsg = err.Error()
	}
	ti.Success = errMsg == ""
	ti.Error = errMsg
	return ti
}

// Status returns "success" or "error" based on the Success field.
func (ti *ToolInvocation) Status() string {
	if ti.Success {
		return StatusSuccess
	}
	return StatusError
}

// LogToolInvocation writes one audit record for a tool call.
func (al *AuditLogger) LogToolInvocation(ti *ToolInvocation) {
	if !al.Enabled() || ti == nil {
		return
	}

	args := []any{
		slog.String("tool", ti.Tool),
		slog.Duration("duration", ti.Duration),
		slog.Bool("success", ti.Success),
	}
	if ti.TraceID != "" {
		args = append(args, slog.String("trace_id", ti.TraceID))
	}
	if ti.Error != "" {
		args = append(args, slog.String("error", ti.Error))
	}

	if ti.Success {
		al.logger.Info("tool_invocation", args...)
	} else {
		al.logger.Warn("tool_invocation_failed", args...)
	}
}
