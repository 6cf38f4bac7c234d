package todoist

import (
	"fmt"
	"time"

	"github.com/teemow/inboxreview/internal/review"
)

// Task represents a Todoist task as returned by the REST API.
type Task struct {
	ID          string    `json:"id"`
	Content     string    `json:"content"`
	Description string    `json:"description"`
	ProjectID   string    `json:"project_id"`
	SectionID   *string   `json:"section_id"`
	ParentID    *string   `json:"parent_id"`
	Order       int       `json:"order"`
	Priority    int       `json:"priority"`
	Labels      []string  `json:"labels"`
	IsCompleted bool      `json:"is_completed"`
	CreatedAt   time.Time `json:"created_at"`
	URL         string    `json:"url"`
}

// HasSection reports whether the task is assigned to a section.
func (t Task) HasSection() bool {
	return t.SectionID != nil && *t.SectionID != ""
}

// Section represents a Todoist project section.
type Section struct {
	ID        string `json:"id"`
	ProjectID string `json:"project_id"`
	Order     int    `json:"order"`
	Name      string `json:"name"`
}

// APIError is returned for non-2xx responses.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("todoist %s %s: http status %d: %s", e.Method, e.Path, e.StatusCode, e.Message)
}

// HTTPStatus returns the response status code.
func (e *APIError) HTTPStatus() int {
	return e.StatusCode
}

// toReviewTask converts a Todoist task into the backend-neutral review.Task.
func toReviewTask(t Task) review.Task {
	result := review.Task{
		ID:        t.ID,
		Content:   t.Content,
		ProjectID: t.ProjectID,
	}
	if t.SectionID != nil {
		result.SectionID = *t.SectionID
	}
	return result
}
