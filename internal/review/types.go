package review

import "context"

// Task is a backend-neutral task. SectionID is empty for tasks that have not
// been filed into a section yet.
type Task struct {
	ID        string `json:"id"`
	Content   string `json:"content"`
	ProjectID string `json:"project_id"`
	SectionID string `json:"section_id,omitempty"`
}

// InInbox reports whether the task belongs to projectID and has no section.
func (t Task) InInbox(projectID string) bool {
	return t.ProjectID == projectID && t.SectionID == ""
}

// TaskService is the task management backend.
type TaskService interface {
	// Name identifies the backend in logs and metrics.
	Name() string
	ListTasks(ctx context.Context, projectID string) ([]Task, error)
	UpdateContent(ctx context.Context, taskID, content string) error
	MoveToSection(ctx context.Context, taskID, sectionID string) error
}

// Completer sends a system instruction and user text to a language model and
// returns the generated text.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}
