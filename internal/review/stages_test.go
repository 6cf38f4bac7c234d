package review

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstruction(t *testing.T) {
	assert.Equal(t,
		"Fix spelling and grammar, translate to French if needed, and ensure it does not exceed 255 characters.",
		Instruction("French", 255))
}

func TestNewRewriter_InstructionOverride(t *testing.T) {
	r := NewRewriter(&fakeCompleter{}, "Just fix typos.", "French", 255)
	assert.Equal(t, "Just fix typos.", r.Instruction())

	r = NewRewriter(&fakeCompleter{}, "  ", "German", 100)
	assert.Equal(t, Instruction("German", 100), r.Instruction())
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		n    int
		want string
	}{
		{name: "short", in: "Buy milk.", n: 255, want: "Buy milk."},
		{name: "exact", in: "abc", n: 3, want: "abc"},
		{name: "cut", in: "abcdef", n: 4, want: "abcd"},
		{name: "runes not bytes", in: "àéîõü", n: 3, want: "àéî"},
		{name: "disabled", in: "abcdef", n: 0, want: "abcdef"},
		{name: "empty", in: "", n: 3, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Truncate(tt.in, tt.n)
			assert.Equal(t, tt.want, got)
			assert.True(t, utf8.ValidString(got))
		})
	}
}

func TestRewriter_Rewrite(t *testing.T) {
	long := strings.Repeat("é", 300)
	llm := &fakeCompleter{
		responses: map[string]string{
			"cal mom": "  Appeler maman.\n",
			"long":    long,
		},
		errs: map[string]error{"fail": statusErr(401)},
	}
	r := NewRewriter(llm, "", "French", 255)

	out, err := r.Rewrite(context.Background(), "cal mom")
	require.NoError(t, err)
	assert.Equal(t, "Appeler maman.", out)

	out, err = r.Rewrite(context.Background(), "long")
	require.NoError(t, err)
	assert.Equal(t, 255, utf8.RuneCountInString(out))

	out, err = r.Rewrite(context.Background(), "fail")
	require.Error(t, err)
	assert.Empty(t, out)
	var se *StageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, StageRewrite, se.Stage)
	assert.Equal(t, KindAuth, se.Kind)
}

func TestFetcher_FiltersInbox(t *testing.T) {
	svc := &fakeService{tasks: []Task{
		inboxTask("1", "a"),
		{ID: "2", ProjectID: testProject, SectionID: testSection},
		{ID: "3", ProjectID: "other"},
		inboxTask("4", "d"),
	}}

	tasks, err := NewFetcher(svc, testProject).Fetch(context.Background())
	require.NoError(t, err)

	require.Len(t, tasks, 2)
	assert.Equal(t, "1", tasks[0].ID)
	assert.Equal(t, "4", tasks[1].ID)
	for _, task := range tasks {
		assert.Empty(t, task.SectionID)
		assert.Equal(t, testProject, task.ProjectID)
	}
	assert.Equal(t, testProject, svc.calls[0].Content, "list is scoped to the inbox project")
}

func TestUpdaterAndRelocator_WrapErrors(t *testing.T) {
	svc := &fakeService{
		updateErr: map[string]error{"1": errBoom},
		moveErr:   map[string]error{"1": context.DeadlineExceeded},
	}

	err := NewUpdater(svc).Update(context.Background(), "1", "x")
	var se *StageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, StageUpdate, se.Stage)
	assert.Equal(t, KindTransport, se.Kind)
	assert.ErrorIs(t, err, errBoom)

	err = NewRelocator(svc, testSection).Relocate(context.Background(), "1")
	require.ErrorAs(t, err, &se)
	assert.Equal(t, StageRelocate, se.Stage)
	assert.Equal(t, KindTransport, se.Kind)

	require.NoError(t, NewUpdater(svc).Update(context.Background(), "2", "x"))
	require.NoError(t, NewRelocator(svc, testSection).Relocate(context.Background(), "2"))
	assert.Equal(t, testSection, svc.callsOf("move")[1].Section)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{name: "nil", err: nil, want: ""},
		{name: "unauthorized", err: statusErr(401), want: KindAuth},
		{name: "forbidden", err: fmt.Errorf("wrapped: %w", statusErr(403)), want: KindAuth},
		{name: "rate limited", err: statusErr(429), want: KindRateLimited},
		{name: "server error", err: statusErr(502), want: KindTransport},
		{name: "canceled", err: context.Canceled, want: KindCanceled},
		{name: "wrapped cancel", err: fmt.Errorf("post: %w", context.Canceled), want: KindCanceled},
		{name: "deadline", err: fmt.Errorf("post: %w", context.DeadlineExceeded), want: KindTransport},
		{name: "invalid response", err: fmt.Errorf("%w: no choices", ErrInvalidResponse), want: KindInvalidResponse},
		{name: "plain", err: errors.New("connection refused"), want: KindTransport},
		{name: "stage error keeps kind", err: &StageError{Stage: StageFetch, Kind: KindAuth, Err: errBoom}, want: KindAuth},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}
}

func TestClassify_ClientTimeoutIsTransport(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(release) })

	client := &http.Client{Timeout: 20 * time.Millisecond}
	_, err := client.Get(srv.URL)
	require.Error(t, err)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	assert.Equal(t, KindTransport, Classify(err))
	assert.Equal(t, KindTransport, newStageError(StageRewrite, err).Kind)
}

func TestStageError_Message(t *testing.T) {
	err := newStageError(StageUpdate, statusErr(503))
	assert.Equal(t, "update failed (transport): http status 503", err.Error())
}
