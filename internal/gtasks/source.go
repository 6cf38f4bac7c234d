package gtasks

import (
	"context"

	"github.com/teemow/inboxreview/internal/review"
)

// Source exposes one Google task list as a review.TaskService.
type Source struct {
	client    *Client
	listID    string
	headingID string
}

var _ review.TaskService = (*Source)(nil)

// NewSource returns a Source for listID whose reviewed section is the
// top-level task headingID.
func NewSource(client *Client, listID, headingID string) *Source {
	return &Source{client: client, listID: listID, headingID: headingID}
}

// Name returns the backend name.
func (s *Source) Name() string {
	return "gtasks"
}

// ListTasks returns the open tasks of the list. Subtasks carry their parent
// as section; the heading itself is never returned.
func (s *Source) ListTasks(ctx context.Context, listID string) ([]review.Task, error) {
	items, err := s.client.ListTasks(ctx, listID)
	if err != nil {
		return nil, err
	}

	result := make([]review.Task, 0, len(items))
	for _, t := range items {
		if t.ID == s.headingID || t.Done() {
			continue
		}
		result = append(result, review.Task{
			ID:        t.ID,
			Content:   t.Title,
			ProjectID: listID,
			SectionID: t.Parent,
		})
	}
	return result, nil
}

// UpdateContent replaces the task title.
func (s *Source) UpdateContent(ctx context.Context, taskID, content string) error {
	_, err := s.client.UpdateTitle(ctx, s.listID, taskID, content)
	return err
}

// MoveToSection makes the task a subtask of sectionID.
func (s *Source) MoveToSection(ctx context.Context, taskID, sectionID string) error {
	_, err := s.client.MoveTask(ctx, s.listID, taskID, sectionID)
	return err
}

// SectionName returns the title of the heading task sectionID.
func (s *Source) SectionName(ctx context.Context, listID, sectionID string) (string, error) {
	t, err := s.client.GetTask(ctx, listID, sectionID)
	if err != nil {
		return "", err
	}
	return t.Title, nil
}
