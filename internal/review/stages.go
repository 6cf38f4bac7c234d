package review

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Stage names.
const (
	StageFetch    = "fetch"
	StageRewrite  = "rewrite"
	StageUpdate   = "update"
	StageRelocate = "relocate"
)

// Fetcher lists the inbox tasks of one project.
type Fetcher struct {
	svc       TaskService
	projectID string
}

// NewFetcher returns a Fetcher for projectID.
func NewFetcher(svc TaskService, projectID string) *Fetcher {
	return &Fetcher{svc: svc, projectID: projectID}
}

// Fetch returns the project's tasks that have no section, in service order.
// Tasks of other projects are dropped even if the backend returned them.
func (f *Fetcher) Fetch(ctx context.Context) ([]Task, error) {
	tasks, err := f.svc.ListTasks(ctx, f.projectID)
	if err != nil {
		return nil, newStageError(StageFetch, err)
	}

	inbox := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if t.InInbox(f.projectID) {
			inbox = append(inbox, t)
		}
	}
	return inbox, nil
}

// Instruction builds the system instruction sent with every task.
func Instruction(language string, maxLength int) string {
	return fmt.Sprintf("Fix spelling and grammar, translate to %s if needed, and ensure it does not exceed %d characters.", language, maxLength)
}

// Rewriter corrects task text with a language model.
type Rewriter struct {
	completer   Completer
	instruction string
	maxLength   int
}

// NewRewriter returns a Rewriter. An empty instruction is replaced by
// Instruction(language, maxLength).
func NewRewriter(completer Completer, instruction, language string, maxLength int) *Rewriter {
	if strings.TrimSpace(instruction) == "" {
		instruction = Instruction(language, maxLength)
	}
	return &Rewriter{completer: completer, instruction: instruction, maxLength: maxLength}
}

// Instruction returns the system instruction in use.
func (r *Rewriter) Instruction() string {
	return r.instruction
}

// Rewrite returns the corrected text, cut to the configured maximum length.
// On failure it returns an empty string and a *StageError; falling back to
// the original text is up to the caller.
func (r *Rewriter) Rewrite(ctx context.Context, text string) (string, error) {
	out, err := r.completer.Complete(ctx, r.instruction, text)
	if err != nil {
		return "", newStageError(StageRewrite, err)
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return "", newStageError(StageRewrite, fmt.Errorf("%w: empty completion", ErrInvalidResponse))
	}
	return Truncate(out, r.maxLength), nil
}

// Truncate cuts s to at most n runes. n <= 0 disables the cut.
func Truncate(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

// Updater writes new content to a task.
type Updater struct {
	svc TaskService
}

// NewUpdater returns an Updater.
func NewUpdater(svc TaskService) *Updater {
	return &Updater{svc: svc}
}

// Update replaces the content of taskID.
func (u *Updater) Update(ctx context.Context, taskID, content string) error {
	if err := u.svc.UpdateContent(ctx, taskID, content); err != nil {
		return newStageError(StageUpdate, err)
	}
	return nil
}

// Relocator moves tasks into the reviewed section.
type Relocator struct {
	svc       TaskService
	sectionID string
}

// NewRelocator returns a Relocator targeting sectionID.
func NewRelocator(svc TaskService, sectionID string) *Relocator {
	return &Relocator{svc: svc, sectionID: sectionID}
}

// Relocate moves taskID into the reviewed section.
func (r *Relocator) Relocate(ctx context.Context, taskID string) error {
	if err := r.svc.MoveToSection(ctx, taskID, r.sectionID); err != nil {
		return newStageError(StageRelocate, err)
	}
	return nil
}
