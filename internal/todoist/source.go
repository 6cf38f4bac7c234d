package todoist

import (
	"context"

	"github.com/teemow/inboxreview/internal/review"
)

// Source exposes a Client as a review.TaskService.
type Source struct {
	client *Client
}

var _ review.TaskService = (*Source)(nil)

// NewSource wraps a Client for use by the review pipeline.
func NewSource(client *Client) *Source {
	return &Source{client: client}
}

// Name returns the backend name.
func (s *Source) Name() string {
	return "todoist"
}

// ListTasks returns the project's tasks as review tasks.
func (s *Source) ListTasks(ctx context.Context, projectID string) ([]review.Task, error) {
	tasks, err := s.client.ListTasks(ctx, projectID)
	if err != nil {
		return nil, err
	}
	result := make([]review.Task, 0, len(tasks))
	for _, t := range tasks {
		result = append(result, toReviewTask(t))
	}
	return result, nil
}

// UpdateContent replaces a task's content.
func (s *Source) UpdateContent(ctx context.Context, taskID, content string) error {
	return s.client.UpdateContent(ctx, taskID, content)
}

// MoveToSection moves a task into a section.
func (s *Source) MoveToSection(ctx context.Context, taskID, sectionID string) error {
	return s.client.MoveToSection(ctx, taskID, sectionID)
}

// SectionName resolves a section ID to its display name within a project.
func (s *Source) SectionName(ctx context.Context, projectID, sectionID string) (string, error) {
	sections, err := s.client.ListSections(ctx, projectID)
	if err != nil {
		return "", err
	}
	for _, sec := range sections {
		if sec.ID == sectionID {
			return sec.Name, nil
		}
	}
	return "", nil
}
