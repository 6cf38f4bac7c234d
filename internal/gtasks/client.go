package gtasks

import (
	"context"
	"fmt"
	"net/http"

	"google.golang.org/api/option"
	tasks "google.golang.org/api/tasks/v1"
)

// Client wraps the Google Tasks service
type Client struct {
	svc *tasks.Service
}

// NewClient creates a Tasks client using an already authorized HTTP client.
// Extra options (such as option.WithEndpoint) are passed to the service.
func NewClient(ctx context.Context, httpClient *http.Client, opts ...option.ClientOption) (*Client, error) {
	opts = append([]option.ClientOption{option.WithHTTPClient(httpClient)}, opts...)
	svc, err := tasks.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Tasks service: %w", err)
	}
	return &Client{svc: svc}, nil
}

// ListTaskLists lists all task lists for the authenticated user
func (c *Client) ListTaskLists(ctx context.Context) ([]TaskList, error) {
	var taskLists []TaskList
	err := c.svc.Tasklists.List().Pages(ctx, func(page *tasks.TaskLists) error {
		for _, tl := range page.Items {
			taskLists = append(taskLists, toTaskList(tl))
		}
		return nil
	})
	if err != nil {
		return nil, wrapErr("list task lists", err)
	}
	return taskLists, nil
}

// ListTasks lists the open tasks of a task list, in list order.
func (c *Client) ListTasks(ctx context.Context, taskListID string) ([]Task, error) {
	var taskList []Task
	call := c.svc.Tasks.List(taskListID).ShowCompleted(false).ShowHidden(false).MaxResults(100)
	err := call.Pages(ctx, func(page *tasks.Tasks) error {
		for _, t := range page.Items {
			taskList = append(taskList, toTask(t))
		}
		return nil
	})
	if err != nil {
		return nil, wrapErr("list tasks", err)
	}
	return taskList, nil
}

// GetTask retrieves a specific task by ID
func (c *Client) GetTask(ctx context.Context, taskListID, taskID string) (*Task, error) {
	t, err := c.svc.Tasks.Get(taskListID, taskID).Context(ctx).Do()
	if err != nil {
		return nil, wrapErr("get task", err)
	}

	result := toTask(t)
	return &result, nil
}

// UpdateTitle replaces a task's title, leaving the other fields untouched.
func (c *Client) UpdateTitle(ctx context.Context, taskListID, taskID, title string) (*Task, error) {
	updated, err := c.svc.Tasks.Patch(taskListID, taskID, &tasks.Task{Title: title}).Context(ctx).Do()
	if err != nil {
		return nil, wrapErr("update task", err)
	}

	result := toTask(updated)
	return &result, nil
}

// MoveTask moves a task under parent. An empty parent moves it to the top level.
func (c *Client) MoveTask(ctx context.Context, taskListID, taskID, parent string) (*Task, error) {
	call := c.svc.Tasks.Move(taskListID, taskID)

	if parent != "" {
		call = call.Parent(parent)
	}

	moved, err := call.Context(ctx).Do()
	if err != nil {
		return nil, wrapErr("move task", err)
	}

	result := toTask(moved)
	return &result, nil
}
