package review

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/teemow/inboxreview/internal/config"
)

const (
	testProject = "2240869572"
	testSection = "185733968"
)

type call struct {
	Op      string
	TaskID  string
	Content string
	Section string
}

type fakeService struct {
	mu        sync.Mutex
	tasks     []Task
	listErr   error
	updateErr map[string]error
	moveErr   map[string]error
	calls     []call

	// afterMove runs after every successful move.
	afterMove func(taskID string)
}

func (f *fakeService) Name() string { return "fake" }

func (f *fakeService) ListTasks(_ context.Context, projectID string) ([]Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call{Op: "list", Content: projectID})
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]Task(nil), f.tasks...), nil
}

func (f *fakeService) UpdateContent(_ context.Context, taskID, content string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call{Op: "update", TaskID: taskID, Content: content})
	return f.updateErr[taskID]
}

func (f *fakeService) MoveToSection(_ context.Context, taskID, sectionID string) error {
	f.mu.Lock()
	f.calls = append(f.calls, call{Op: "move", TaskID: taskID, Section: sectionID})
	err := f.moveErr[taskID]
	hook := f.afterMove
	f.mu.Unlock()
	if err == nil && hook != nil {
		hook(taskID)
	}
	return err
}

func (f *fakeService) callsOf(op string) []call {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []call
	for _, c := range f.calls {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

type fakeCompleter struct {
	mu        sync.Mutex
	responses map[string]string
	errs      map[string]error
	systems   []string
	inputs    []string
}

func (f *fakeCompleter) Complete(_ context.Context, system, user string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.systems = append(f.systems, system)
	f.inputs = append(f.inputs, user)
	if err, ok := f.errs[user]; ok {
		return "", err
	}
	if out, ok := f.responses[user]; ok {
		return out, nil
	}
	return "", fmt.Errorf("no canned response for %q", user)
}

type statusErr int

func (e statusErr) Error() string   { return fmt.Sprintf("http status %d", int(e)) }
func (e statusErr) HTTPStatus() int { return int(e) }

var errBoom = errors.New("boom")

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.InboxProjectID = testProject
	cfg.ReviewedSectionID = testSection
	return cfg
}

func inboxTask(id, content string) Task {
	return Task{ID: id, Content: content, ProjectID: testProject}
}

// captureLogger returns an info-level text logger writing to buf.
func captureLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
}

func logLines(buf *bytes.Buffer) []string {
	s := strings.TrimSpace(buf.String())
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

func fixedRunID() string { return "run-test" }
