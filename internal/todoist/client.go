package todoist

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/teemow/inboxreview/internal/review"
)

const (
	// DefaultBaseURL is the Todoist REST API v2 root.
	DefaultBaseURL = "https://api.todoist.com/rest/v2"

	// DefaultRequestsPerMinute keeps a single run well under the 450 requests / 15 min quota.
	DefaultRequestsPerMinute = 50

	// DefaultTimeout bounds a single HTTP round trip.
	DefaultTimeout = 30 * time.Second

	maxErrorBody = 4 << 10
)

// ErrRateLimitWait is returned when a request gives up waiting for the
// client-side rate limiter. It is a transport failure, not a cancellation.
var ErrRateLimitWait = errors.New("rate limiter wait aborted")

// Client talks to the Todoist REST API.
type Client struct {
	token   string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API root, e.g. for tests.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithRateLimit sets the maximum number of requests per minute. Zero or a
// negative value disables limiting.
func WithRateLimit(perMinute int) Option {
	return func(c *Client) {
		if perMinute <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		c.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 1)
	}
}

// NewClient creates a Todoist client authenticated with the given API token.
func NewClient(token string, opts ...Option) *Client {
	c := &Client{
		token:   token,
		baseURL: DefaultBaseURL,
		http:    &http.Client{Timeout: DefaultTimeout},
	}
	WithRateLimit(DefaultRequestsPerMinute)(c)
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListTasks returns the active tasks of a project.
func (c *Client) ListTasks(ctx context.Context, projectID string) ([]Task, error) {
	q := url.Values{}
	if projectID != "" {
		q.Set("project_id", projectID)
	}

	var tasks []Task
	if err := c.do(ctx, http.MethodGet, "/tasks", q, nil, &tasks); err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// ListSections returns the sections of a project.
func (c *Client) ListSections(ctx context.Context, projectID string) ([]Section, error) {
	q := url.Values{}
	if projectID != "" {
		q.Set("project_id", projectID)
	}

	var sections []Section
	if err := c.do(ctx, http.MethodGet, "/sections", q, nil, &sections); err != nil {
		return nil, fmt.Errorf("failed to list sections: %w", err)
	}
	return sections, nil
}

// UpdateContent replaces a task's content.
func (c *Client) UpdateContent(ctx context.Context, taskID, content string) error {
	body := map[string]string{"content": content}
	if err := c.do(ctx, http.MethodPost, "/tasks/"+url.PathEscape(taskID), nil, body, nil); err != nil {
		return fmt.Errorf("failed to update task %s: %w", taskID, err)
	}
	return nil
}

// MoveToSection moves a task into the given section.
func (c *Client) MoveToSection(ctx context.Context, taskID, sectionID string) error {
	body := map[string]string{"section_id": sectionID}
	if err := c.do(ctx, http.MethodPost, "/tasks/"+url.PathEscape(taskID)+"/move", nil, body, nil); err != nil {
		return fmt.Errorf("failed to move task %s: %w", taskID, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrRateLimitWait, err)
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		slurp, _ := io.ReadAll(io.LimitReader(res.Body, maxErrorBody))
		msg := strings.TrimSpace(string(slurp))
		if msg == "" {
			msg = res.Status
		}
		return &APIError{Method: method, Path: path, StatusCode: res.StatusCode, Message: msg}
	}

	if out == nil || res.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: failed to decode response: %v", review.ErrInvalidResponse, err)
	}
	return nil
}
