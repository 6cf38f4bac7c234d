package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/teemow/inboxreview/internal/config"
	"github.com/teemow/inboxreview/internal/review"
)

type stubService struct {
	mu      sync.Mutex
	tasks   []review.Task
	block   chan struct{}
	started chan struct{}
	moves   int
}

func (s *stubService) Name() string { return "stub" }

func (s *stubService) ListTasks(ctx context.Context, _ string) ([]review.Task, error) {
	if s.started != nil {
		close(s.started)
	}
	if s.block != nil {
		select {
		case <-s.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return s.tasks, nil
}

func (s *stubService) UpdateContent(context.Context, string, string) error { return nil }

func (s *stubService) MoveToSection(context.Context, string, string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.moves++
	return nil
}

type echoCompleter struct{}

func (echoCompleter) Complete(_ context.Context, _, user string) (string, error) {
	return user + ".", nil
}

func newTestContext(t *testing.T, svc *stubService) *ServerContext {
	t.Helper()
	cfg := config.Default()
	sc, err := NewServerContext(context.Background(), review.New(cfg, svc, echoCompleter{}))
	if err != nil {
		t.Fatalf("NewServerContext() error = %v", err)
	}
	t.Cleanup(func() { _ = sc.Shutdown() })
	return sc
}

func TestNewServerContext_RequiresPipeline(t *testing.T) {
	if _, err := NewServerContext(context.Background(), nil); err == nil {
		t.Error("expected error for nil pipeline")
	}
}

func TestServerContext_RunReview(t *testing.T) {
	cfg := config.Default()
	svc := &stubService{tasks: []review.Task{{ID: "1", Content: "buy milk", ProjectID: cfg.InboxProjectID}}}
	sc := newTestContext(t, svc)

	if sc.LastReport() != nil {
		t.Fatal("LastReport() should be nil before any run")
	}

	report, err := sc.RunReview(context.Background())
	if err != nil {
		t.Fatalf("RunReview() error = %v", err)
	}
	if got := report.Totals().Reviewed; got != 1 {
		t.Errorf("reviewed = %d, want 1", got)
	}
	if sc.LastReport() != report {
		t.Error("LastReport() should return the last run's report")
	}
}

func TestServerContext_RunReviewIsExclusive(t *testing.T) {
	svc := &stubService{block: make(chan struct{}), started: make(chan struct{})}
	sc := newTestContext(t, svc)

	done := make(chan error, 1)
	go func() {
		_, err := sc.RunReview(context.Background())
		done <- err
	}()
	<-svc.started

	if _, err := sc.RunReview(context.Background()); !errors.Is(err, ErrRunInProgress) {
		t.Errorf("concurrent RunReview() error = %v, want ErrRunInProgress", err)
	}

	close(svc.block)
	if err := <-done; err != nil {
		t.Errorf("first RunReview() error = %v", err)
	}
}

func TestServerContext_Shutdown(t *testing.T) {
	sc := newTestContext(t, &stubService{})

	if sc.IsShutdown() {
		t.Fatal("new context should not be shut down")
	}
	if err := sc.Shutdown(); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
	if err := sc.Shutdown(); err != nil {
		t.Fatalf("second Shutdown() error = %v", err)
	}
	if !sc.IsShutdown() {
		t.Error("IsShutdown() should be true after Shutdown()")
	}
	if sc.Context().Err() == nil {
		t.Error("context should be canceled after Shutdown()")
	}
	if _, err := sc.RunReview(context.Background()); !errors.Is(err, ErrShutdown) {
		t.Errorf("RunReview() after shutdown error = %v, want ErrShutdown", err)
	}
}

func TestHealthChecker(t *testing.T) {
	cfg := config.Default()
	svc := &stubService{tasks: []review.Task{{ID: "1", Content: "a", ProjectID: cfg.InboxProjectID}}}
	sc := newTestContext(t, svc)
	h := NewHealthChecker(sc)

	mux := http.NewServeMux()
	h.RegisterHealthEndpoints(mux)
	ts := httptest.NewServer(mux)
	defer ts.Close()

	get := func(path string) (int, map[string]interface{}) {
		t.Helper()
		resp, err := http.Get(ts.URL + path)
		if err != nil {
			t.Fatalf("GET %s error = %v", path, err)
		}
		defer resp.Body.Close()
		var body map[string]interface{}
		_ = json.NewDecoder(resp.Body).Decode(&body)
		return resp.StatusCode, body
	}

	if code, _ := get("/healthz"); code != http.StatusOK {
		t.Errorf("/healthz = %d, want 200", code)
	}
	if code, _ := get("/readyz"); code != http.StatusOK {
		t.Errorf("/readyz = %d, want 200", code)
	}

	if _, err := sc.RunReview(context.Background()); err != nil {
		t.Fatal(err)
	}
	code, body := get("/healthz/detailed")
	if code != http.StatusOK {
		t.Errorf("/healthz/detailed = %d, want 200", code)
	}
	if body["backend"] != "stub" {
		t.Errorf("backend = %v, want stub", body["backend"])
	}
	lastRun, ok := body["last_run"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected last_run in %v", body)
	}
	if lastRun["reviewed"] != float64(1) {
		t.Errorf("last_run.reviewed = %v, want 1", lastRun["reviewed"])
	}

	h.SetReady(false)
	if code, _ := get("/readyz"); code != http.StatusServiceUnavailable {
		t.Errorf("/readyz after SetReady(false) = %d, want 503", code)
	}

	h.SetReady(true)
	_ = sc.Shutdown()
	if code, _ := get("/readyz"); code != http.StatusServiceUnavailable {
		t.Errorf("/readyz after shutdown = %d, want 503", code)
	}
}
