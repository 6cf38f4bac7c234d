package review

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/teemow/inboxreview/internal/config"
	"github.com/teemow/inboxreview/internal/instrumentation"
	"github.com/teemow/inboxreview/internal/logging"
)

// Pipeline runs the four review stages over the inbox.
type Pipeline struct {
	cfg       *config.Config
	backend   string
	fetcher   *Fetcher
	rewriter  *Rewriter
	updater   *Updater
	relocator *Relocator

	logger   *slog.Logger
	metrics  *instrumentation.Metrics
	audit    *instrumentation.AuditLogger
	newRunID func() string
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m *instrumentation.Metrics) Option {
	return func(p *Pipeline) {
		p.metrics = m
	}
}

// WithAuditLogger sets the audit logger for task mutations.
func WithAuditLogger(al *instrumentation.AuditLogger) Option {
	return func(p *Pipeline) {
		p.audit = al
	}
}

// WithRunIDFunc overrides run ID generation.
func WithRunIDFunc(fn func() string) Option {
	return func(p *Pipeline) {
		if fn != nil {
			p.newRunID = fn
		}
	}
}

// New builds a Pipeline from a validated configuration.
func New(cfg *config.Config, svc TaskService, completer Completer, opts ...Option) *Pipeline {
	p := &Pipeline{
		cfg:       cfg,
		backend:   svc.Name(),
		fetcher:   NewFetcher(svc, cfg.InboxProjectID),
		rewriter:  NewRewriter(completer, cfg.Rewrite.Instruction, cfg.Rewrite.Language, cfg.Rewrite.MaxLength),
		updater:   NewUpdater(svc),
		relocator: NewRelocator(svc, cfg.ReviewedSectionID),
		logger:    slog.Default(),
		newRunID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Backend returns the task service name.
func (p *Pipeline) Backend() string {
	return p.backend
}

// ProjectID returns the inbox project the pipeline reviews.
func (p *Pipeline) ProjectID() string { return p.cfg.InboxProjectID }

// SectionID returns the section reviewed tasks are moved to.
func (p *Pipeline) SectionID() string { return p.cfg.ReviewedSectionID }

// Run performs one review pass. Stage failures never abort the run; they are
// logged and recorded in the report. The returned error is non-nil only when
// ctx was canceled before every task was processed, in which case the report
// covers the tasks handled so far.
func (p *Pipeline) Run(ctx context.Context) (*Report, error) {
	runID := p.newRunID()
	logger := logging.WithRun(p.logger, runID)
	report := &Report{
		RunID:     runID,
		Backend:   p.backend,
		ProjectID: p.cfg.InboxProjectID,
		SectionID: p.cfg.ReviewedSectionID,
		DryRun:    p.cfg.DryRun,
		StartedAt: time.Now(),
		Tasks:     []TaskResult{},
	}

	ctx, span := instrumentation.StartSpan(ctx, "review.run",
		instrumentation.NewSpanAttributeBuilder().
			WithRunID(runID).
			WithProject(p.cfg.InboxProjectID).
			WithSection(p.cfg.ReviewedSectionID).
			WithBackend(p.backend).
			WithDryRun(p.cfg.DryRun).
			Build()...)
	defer span.End()

	logger.Debug("starting review", logging.Backend(p.backend), logging.Project(p.cfg.InboxProjectID))

	tasks, err := p.fetch(ctx, runID)
	if err != nil {
		logger.Error("failed to fetch inbox tasks", logging.Project(p.cfg.InboxProjectID), logging.Err(err))
		report.FetchError = err.Error()
		tasks = nil
	}
	span.SetAttributes(attribute.Int(instrumentation.SpanAttrTaskCount, len(tasks)))

	if len(tasks) == 0 {
		logger.Info("No tasks to process")
		p.finish(ctx, span, report, instrumentation.RunStatusNoop)
		return report, nil
	}

	logger.Info("processing tasks", "count", len(tasks))
	for i, task := range tasks {
		if err := ctx.Err(); err != nil {
			logger.Warn("review canceled, remaining tasks left in inbox", "remaining", len(tasks)-i)
			p.finish(ctx, span, report, instrumentation.RunStatusCanceled)
			instrumentation.SetSpanError(span, err)
			return report, err
		}
		report.Tasks = append(report.Tasks, p.process(ctx, logger, runID, task))
	}

	p.finish(ctx, span, report, instrumentation.RunStatusCompleted)

	t := report.Totals()
	switch {
	case p.cfg.DryRun:
		logger.Info("dry run finished, no task was modified", "tasks", t.Tasks, "rewrite_fallbacks", t.Fallbacks)
	case t.Reviewed == t.Tasks:
		logger.Info("All tasks reviewed and moved to the reviewed section",
			"tasks", t.Tasks, "rewrite_fallbacks", t.Fallbacks, logging.Section(p.cfg.ReviewedSectionID))
	default:
		logger.Warn("review finished with failures",
			"tasks", t.Tasks, "reviewed", t.Reviewed, "partial", t.Partial, "failed", t.Failed,
			"rewrite_fallbacks", t.Fallbacks)
	}
	return report, nil
}

// Inbox returns the current inbox tasks without modifying anything. Unlike
// Run it reports fetch failures to the caller.
func (p *Pipeline) Inbox(ctx context.Context) ([]Task, error) {
	return p.fetch(ctx, "")
}

// Rewrite runs the rewrite stage alone on text.
func (p *Pipeline) Rewrite(ctx context.Context, text string) (string, error) {
	return p.rewrite(ctx, "", text)
}

func (p *Pipeline) rewrite(ctx context.Context, taskID, text string) (string, error) {
	var out string
	err := p.stage(ctx, StageRewrite, taskID, func(ctx context.Context) error {
		var err error
		out, err = p.rewriter.Rewrite(ctx, text)
		return err
	})
	return out, err
}

// Instruction returns the system instruction sent to the language model.
func (p *Pipeline) Instruction() string {
	return p.rewriter.Instruction()
}

func (p *Pipeline) fetch(ctx context.Context, runID string) ([]Task, error) {
	var tasks []Task
	err := p.stage(ctx, StageFetch, "", func(ctx context.Context) error {
		var err error
		tasks, err = p.fetcher.Fetch(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	logging.WithRun(p.logger, runID).Debug("fetched inbox tasks", "count", len(tasks))
	return tasks, nil
}

func (p *Pipeline) process(ctx context.Context, logger *slog.Logger, runID string, task Task) TaskResult {
	ctx, span := instrumentation.StartSpan(ctx, "review.task",
		instrumentation.NewSpanAttributeBuilder().WithRunID(runID).WithTask(task.ID).Build()...)
	defer span.End()

	logger = logger.With(logging.TaskID(task.ID))
	result := TaskResult{TaskID: task.ID, Original: task.Content}

	content, err := p.rewrite(ctx, task.ID, task.Content)
	if err != nil {
		logger.Error("rewrite failed, keeping original text", logging.Err(err))
		p.metrics.RecordRewriteFallback(ctx)
		result.RewriteFallback = true
		result.addError(err)
		content = task.Content
	}
	result.Content = content
	logger.Debug("task rewritten", "original", task.Content, "content", content)

	if p.cfg.DryRun {
		logger.Info("dry run, task left unchanged", "content", logging.Preview(content, 40))
		return p.settle(ctx, span, &result)
	}

	if err := p.mutate(ctx, runID, task.ID, StageUpdate, content, func(ctx context.Context) error {
		return p.updater.Update(ctx, task.ID, content)
	}); err != nil {
		logger.Error("failed to update task", logging.Err(err))
		result.addError(err)
	} else {
		result.Updated = true
		logger.Info("task updated")
	}

	if !result.Updated && p.cfg.StrictMove {
		logger.Warn("update failed, leaving task in inbox")
		result.MoveSkipped = true
		return p.settle(ctx, span, &result)
	}

	if err := p.mutate(ctx, runID, task.ID, StageRelocate, "", func(ctx context.Context) error {
		return p.relocator.Relocate(ctx, task.ID)
	}); err != nil {
		logger.Error("failed to move task", logging.Section(p.cfg.ReviewedSectionID), logging.Err(err))
		result.addError(err)
	} else {
		result.Moved = true
		logger.Info("task moved", logging.Section(p.cfg.ReviewedSectionID))
	}

	return p.settle(ctx, span, &result)
}

func (p *Pipeline) settle(ctx context.Context, span trace.Span, result *TaskResult) TaskResult {
	result.settle(p.cfg.DryRun)
	p.metrics.RecordTask(ctx, result.Outcome)
	span.SetAttributes(attribute.String("review.outcome", result.Outcome))
	return *result
}

// mutate runs a write stage and records it in the audit log.
func (p *Pipeline) mutate(ctx context.Context, runID, taskID, stage, content string, fn func(context.Context) error) error {
	m := instrumentation.NewMutation(runID, taskID, stage).
		WithBackend(p.backend).
		WithSpanContext(ctx)
	if stage == StageRelocate {
		m.WithSection(p.cfg.ReviewedSectionID)
	} else {
		m.WithContent(content)
	}

	err := p.stage(ctx, stage, taskID, fn)
	p.audit.LogMutation(m.Complete(err))
	return err
}

// stage wraps one stage call in a span and records its duration.
func (p *Pipeline) stage(ctx context.Context, name, taskID string, fn func(context.Context) error) error {
	ctx, span := instrumentation.StartStageSpan(ctx, name,
		instrumentation.NewSpanAttributeBuilder().WithTask(taskID).WithBackend(p.backend).Build()...)
	defer span.End()

	start := time.Now()
	err := fn(ctx)

	status := instrumentation.StatusSuccess
	if err != nil {
		status = instrumentation.StatusError
		instrumentation.SetSpanError(span, err)
		span.SetAttributes(attribute.String("review.error_kind", string(Classify(err))))
	} else {
		instrumentation.SetSpanSuccess(span)
	}
	p.metrics.RecordStage(ctx, name, status, time.Since(start))
	return err
}

func (p *Pipeline) finish(ctx context.Context, span trace.Span, report *Report, status string) {
	report.Status = status
	report.FinishedAt = time.Now()
	p.metrics.RecordRun(ctx, status)
	if status != instrumentation.RunStatusCanceled {
		instrumentation.SetSpanSuccess(span)
	}
}
