package review

import (
	"fmt"
	"time"

	"github.com/teemow/inboxreview/internal/instrumentation"
)

// TaskResult records what happened to one task during a run.
type TaskResult struct {
	TaskID string `json:"task_id"`
	// Original is the text as fetched.
	Original string `json:"original"`
	// Content is the text written back, or that would have been in a dry run.
	Content         string   `json:"content"`
	Outcome         string   `json:"outcome"`
	RewriteFallback bool     `json:"rewrite_fallback,omitempty"`
	Updated         bool     `json:"updated"`
	Moved           bool     `json:"moved"`
	MoveSkipped     bool     `json:"move_skipped,omitempty"`
	Errors          []string `json:"errors,omitempty"`
}

func (r *TaskResult) addError(err error) {
	r.Errors = append(r.Errors, err.Error())
}

func (r *TaskResult) settle(dryRun bool) {
	switch {
	case dryRun:
		r.Outcome = instrumentation.OutcomeSkipped
	case r.Updated && r.Moved:
		r.Outcome = instrumentation.OutcomeReviewed
	case !r.Updated && !r.Moved:
		r.Outcome = instrumentation.OutcomeFailed
	default:
		r.Outcome = instrumentation.OutcomePartial
	}
}

// Report summarizes a run.
type Report struct {
	RunID      string       `json:"run_id"`
	Backend    string       `json:"backend"`
	ProjectID  string       `json:"project_id"`
	SectionID  string       `json:"section_id"`
	DryRun     bool         `json:"dry_run"`
	Status     string       `json:"status"`
	FetchError string       `json:"fetch_error,omitempty"`
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt time.Time    `json:"finished_at"`
	Tasks      []TaskResult `json:"tasks"`
}

// Totals counts task outcomes.
type Totals struct {
	Tasks     int `json:"tasks"`
	Reviewed  int `json:"reviewed"`
	Partial   int `json:"partial"`
	Failed    int `json:"failed"`
	Skipped   int `json:"skipped"`
	Fallbacks int `json:"rewrite_fallbacks"`
}

// Totals returns outcome counts over all processed tasks.
func (r *Report) Totals() Totals {
	t := Totals{Tasks: len(r.Tasks)}
	for _, res := range r.Tasks {
		switch res.Outcome {
		case instrumentation.OutcomeReviewed:
			t.Reviewed++
		case instrumentation.OutcomePartial:
			t.Partial++
		case instrumentation.OutcomeFailed:
			t.Failed++
		case instrumentation.OutcomeSkipped:
			t.Skipped++
		}
		if res.RewriteFallback {
			t.Fallbacks++
		}
	}
	return t
}

// Summary returns a one-line human readable summary.
func (r *Report) Summary() string {
	t := r.Totals()
	if t.Tasks == 0 {
		return "No tasks to process."
	}
	return fmt.Sprintf("%d tasks: %d reviewed, %d partial, %d failed, %d skipped (%d rewrite fallbacks) in %s",
		t.Tasks, t.Reviewed, t.Partial, t.Failed, t.Skipped, t.Fallbacks,
		r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond))
}
