package review_tools

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/inboxreview/internal/config"
	"github.com/teemow/inboxreview/internal/review"
	"github.com/teemow/inboxreview/internal/server"
	"github.com/teemow/inboxreview/internal/tools/common"
)

const (
	inboxProject    = "2240869572"
	reviewedSection = "185733968"
)

type memService struct {
	mu      sync.Mutex
	tasks   []review.Task
	listErr error
	updates map[string]string
	moves   map[string]string
}

func newMemService(tasks ...review.Task) *memService {
	return &memService{tasks: tasks, updates: map[string]string{}, moves: map[string]string{}}
}

func (s *memService) Name() string { return "memory" }

func (s *memService) ListTasks(context.Context, string) ([]review.Task, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.tasks, nil
}

func (s *memService) UpdateContent(_ context.Context, id, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updates[id] = content
	return nil
}

func (s *memService) MoveToSection(_ context.Context, id, section string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.moves[id] = section
	return nil
}

type upperCompleter struct{ err error }

func (c upperCompleter) Complete(_ context.Context, _, user string) (string, error) {
	if c.err != nil {
		return "", c.err
	}
	return user + "!", nil
}

type sectionNames map[string]string

func (n sectionNames) SectionName(_ context.Context, _, id string) (string, error) {
	name, ok := n[id]
	if !ok {
		return "", errors.New("unknown section")
	}
	return name, nil
}

func newContext(t *testing.T, svc review.TaskService, completer review.Completer, opts ...server.Option) *server.ServerContext {
	t.Helper()
	sc, err := server.NewServerContext(context.Background(), review.New(config.Default(), svc, completer), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sc.Shutdown() })
	return sc
}

func callRequest(name string, args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func TestRegisterReviewTools(t *testing.T) {
	sc := newContext(t, newMemService(), upperCompleter{})

	t.Run("read only", func(t *testing.T) {
		s := mcpserver.NewMCPServer("test", "0.0.0", mcpserver.WithToolCapabilities(true))
		require.NoError(t, RegisterReviewTools(s, sc, true))

		assert.NotNil(t, s.GetTool(ToolListInbox))
		assert.NotNil(t, s.GetTool(ToolRewriteText))
		assert.Nil(t, s.GetTool(ToolRun), "review_run must not be registered in read-only mode")
	})

	t.Run("yolo", func(t *testing.T) {
		s := mcpserver.NewMCPServer("test", "0.0.0", mcpserver.WithToolCapabilities(true))
		require.NoError(t, RegisterReviewTools(s, sc, false))

		assert.NotNil(t, s.GetTool(ToolRun))
	})

	t.Run("nil context", func(t *testing.T) {
		s := mcpserver.NewMCPServer("test", "0.0.0")
		assert.Error(t, RegisterReviewTools(s, nil, true))
	})
}

func TestHandleListInbox(t *testing.T) {
	svc := newMemService(
		review.Task{ID: "1", Content: "appeler maman", ProjectID: inboxProject},
		review.Task{ID: "2", Content: "already filed", ProjectID: inboxProject, SectionID: reviewedSection},
		review.Task{ID: "3", Content: "other project", ProjectID: "999"},
	)
	sc := newContext(t, svc, upperCompleter{}, server.WithSectionNamer(sectionNames{reviewedSection: "Reviewed"}))

	result, err := handleListInbox(context.Background(), callRequest(ToolListInbox, nil), sc)
	require.NoError(t, err)
	require.False(t, result.IsError, common.ResultText(result))

	var listing InboxListing
	require.NoError(t, json.Unmarshal([]byte(common.ResultText(result)), &listing))

	assert.Equal(t, inboxProject, listing.ProjectID)
	assert.Equal(t, reviewedSection, listing.SectionID)
	assert.Equal(t, "Reviewed", listing.SectionName)
	assert.Equal(t, 1, listing.Count)
	require.Len(t, listing.Tasks, 1)
	assert.Equal(t, "1", listing.Tasks[0].ID)
}

func TestHandleListInbox_Empty(t *testing.T) {
	sc := newContext(t, newMemService(), upperCompleter{})

	result, err := handleListInbox(context.Background(), callRequest(ToolListInbox, nil), sc)
	require.NoError(t, err)

	assert.Contains(t, common.ResultText(result), `"tasks": []`)
	assert.Contains(t, common.ResultText(result), `"count": 0`)
}

func TestHandleListInbox_FetchError(t *testing.T) {
	svc := newMemService()
	svc.listErr = errors.New("503 service unavailable")
	sc := newContext(t, svc, upperCompleter{})

	result, err := handleListInbox(context.Background(), callRequest(ToolListInbox, nil), sc)
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, common.ResultText(result), "Failed to list inbox")
}

func TestHandleRewriteText(t *testing.T) {
	sc := newContext(t, newMemService(), upperCompleter{})

	t.Run("rewrites", func(t *testing.T) {
		result, err := handleRewriteText(context.Background(), callRequest(ToolRewriteText, map[string]any{"text": "bonjour"}), sc)
		require.NoError(t, err)
		assert.False(t, result.IsError)
		assert.Equal(t, "bonjour!", common.ResultText(result))
	})

	t.Run("missing text", func(t *testing.T) {
		result, err := handleRewriteText(context.Background(), callRequest(ToolRewriteText, map[string]any{}), sc)
		require.NoError(t, err)
		assert.True(t, result.IsError)
		assert.Equal(t, "text is required", common.ResultText(result))
	})

	t.Run("blank text", func(t *testing.T) {
		result, err := handleRewriteText(context.Background(), callRequest(ToolRewriteText, map[string]any{"text": "   "}), sc)
		require.NoError(t, err)
		assert.True(t, result.IsError)
	})
}

func TestHandleRewriteText_CompleterError(t *testing.T) {
	sc := newContext(t, newMemService(), upperCompleter{err: errors.New("model overloaded")})

	result, err := handleRewriteText(context.Background(), callRequest(ToolRewriteText, map[string]any{"text": "bonjour"}), sc)
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, common.ResultText(result), "Failed to rewrite text")
}

func TestHandleRun(t *testing.T) {
	svc := newMemService(
		review.Task{ID: "1", Content: "appeler maman", ProjectID: inboxProject},
		review.Task{ID: "2", Content: "acheter du pain", ProjectID: inboxProject},
	)
	sc := newContext(t, svc, upperCompleter{})

	result, err := handleRun(context.Background(), callRequest(ToolRun, nil), sc)
	require.NoError(t, err)
	require.False(t, result.IsError, common.ResultText(result))

	var payload struct {
		RunID   string        `json:"run_id"`
		Status  string        `json:"status"`
		Totals  review.Totals `json:"totals"`
		Summary string        `json:"summary"`
	}
	require.NoError(t, json.Unmarshal([]byte(common.ResultText(result)), &payload))

	assert.NotEmpty(t, payload.RunID)
	assert.Equal(t, 2, payload.Totals.Tasks)
	assert.Equal(t, 2, payload.Totals.Reviewed)
	assert.NotEmpty(t, payload.Summary)

	assert.Equal(t, map[string]string{"1": "appeler maman!", "2": "acheter du pain!"}, svc.updates)
	assert.Equal(t, map[string]string{"1": reviewedSection, "2": reviewedSection}, svc.moves)
	assert.Equal(t, payload.RunID, sc.LastReport().RunID)
}

func TestHandleRun_AfterShutdown(t *testing.T) {
	sc := newContext(t, newMemService(), upperCompleter{})
	require.NoError(t, sc.Shutdown())

	result, err := handleRun(context.Background(), callRequest(ToolRun, nil), sc)
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, common.ResultText(result), server.ErrShutdown.Error())
}
