// Package logging provides structured logging utilities for inboxreview.
//
// This package centralizes logging patterns to ensure consistent, structured logging
// throughout the codebase using the standard library's slog package.
//
// # Key Features
//
//   - Structured logging with slog (text or JSON)
//   - Optional rotating log file via lumberjack, teed with stderr
//   - Consistent attribute naming across the codebase (run_id, task_id, stage)
//   - Token sanitization
//
// # Usage Patterns
//
// Create a logger for a run and attach per-task attributes:
//
//	logger := logging.WithRun(slog.Default(), runID)
//	logger.Info("task moved",
//	    logging.TaskID(task.ID),
//	    logging.Stage(logging.StageRelocate))
//
// # Security Considerations
//
//   - API tokens are never logged directly, only through SanitizeToken
//   - Task text is only emitted at debug level
package logging
