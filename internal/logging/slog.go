package logging

import (
	"fmt"
	"log/slog"
	"unicode/utf8"
)

// Common log attribute keys for consistent naming across the codebase.
const (
	KeyRunID     = "run_id"
	KeyTaskID    = "task_id"
	KeyStage     = "stage"
	KeyProject   = "project"
	KeySection   = "section"
	KeyBackend   = "backend"
	KeyOperation = "operation"
	KeyDuration  = "duration"
	KeyStatus    = "status"
	KeyError     = "error"
	KeyTool      = "tool"
)

// Status values for consistent logging.
// Note: These are intentionally duplicated from instrumentation package
// to avoid circular dependencies (instrumentation imports logging).
const (
	StatusSuccess = "success"
	StatusError   = "error"
	StatusSkipped = "skipped"
)

// Pipeline stage names.
const (
	StageFetch    = "fetch"
	StageRewrite  = "rewrite"
	StageUpdate   = "update"
	StageRelocate = "relocate"
)

// WithRun returns a logger with the run_id attribute set.
func WithRun(logger *slog.Logger, runID string) *slog.Logger {
	return logger.With(slog.String(KeyRunID, runID))
}

// WithOperation returns a logger with the operation attribute set.
func WithOperation(logger *slog.Logger, operation string) *slog.Logger {
	return logger.With(slog.String(KeyOperation, operation))
}

// TaskID returns a slog attribute for a task identifier.
func TaskID(id string) slog.Attr {
	return slog.String(KeyTaskID, id)
}

// Stage returns a slog attribute for a pipeline stage.
func Stage(stage string) slog.Attr {
	return slog.String(KeyStage, stage)
}

// Project returns a slog attribute for a project identifier.
func Project(id string) slog.Attr {
	return slog.String(KeyProject, id)
}

// Section returns a slog attribute for a section identifier.
func Section(id string) slog.Attr {
	return slog.String(KeySection, id)
}

// Backend returns a slog attribute for the task backend name.
func Backend(name string) slog.Attr {
	return slog.String(KeyBackend, name)
}

// Status returns a slog attribute for the status.
func Status(status string) slog.Attr {
	return slog.String(KeyStatus, status)
}

// Err returns a slog attribute for an error.
// If err is nil, returns an empty Group attribute that will be omitted from output.
//
// Usage:
//
//	logger.Info("operation", logging.Err(err))  // Safe even if err is nil
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Group("")
	}
	return slog.String(KeyError, err.Error())
}

// SanitizeToken returns a masked version of a token for logging.
// It returns a length indicator without exposing any token content.
func SanitizeToken(token string) string {
	if token == "" {
		return "<empty>"
	}
	return fmt.Sprintf("[token:%d chars]", len(token))
}

// Preview shortens text to at most n runes for debug output, appending an
// ellipsis when something was cut.
func Preview(text string, n int) string {
	if n <= 0 || utf8.RuneCountInString(text) <= n {
		return text
	}
	runes := []rune(text)
	return string(runes[:n]) + "…"
}
