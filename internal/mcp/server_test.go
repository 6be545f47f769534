package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/liftlog/liftlog/internal/api"
	"github.com/liftlog/liftlog/internal/models"
	"github.com/liftlog/liftlog/internal/viewmodel"
	"github.com/mark3labs/mcp-go/mcp"
)

type fakeSource struct {
	sessions  []models.Session
	exercises []models.Exercise
	err       error
}

func (f *fakeSource) ListSessions(context.Context) ([]models.Session, error) {
	return f.sessions, f.err
}

func (f *fakeSource) ListExercises(context.Context) ([]models.Exercise, error) {
	return f.exercises, f.err
}

func (f *fakeSource) GetExercise(_ context.Context, id models.ID) (models.Exercise, error) {
	for _, ex := range f.exercises {
		if ex.ID == id {
			return ex, nil
		}
	}
	return models.Exercise{}, errors.New("not found")
}

func intp(v int) *int           { return &v }
func floatp(v float64) *float64 { return &v }

func newFakeSource() *fakeSource {
	return &fakeSource{
		exercises: []models.Exercise{{ID: 1, Name: "Bench Press"}, {ID: 2, Name: "Dips"}},
		sessions: []models.Session{
			{ID: 10, Date: "2024-03-04", Type: "Push", Sets: []models.SetRecord{
				{Reps: intp(12), Weight: floatp(60), ExerciseID: 1},
				{Reps: intp(10), Weight: floatp(0), ExerciseID: 2},
				{Reps: intp(8), Weight: floatp(70), ExerciseID: 1},
			}},
			{ID: 11, Date: "2024-04-01", Sets: []models.SetRecord{
				{Reps: intp(6), Weight: floatp(80), ExerciseID: 1},
			}},
		},
	}
}

func newTestHandlers(ds DataSource) *handlers {
	return &handlers{
		source: Static(ds),
		cfg: Config{
			Templates: viewmodel.DefaultTemplates(),
			Options:   viewmodel.DefaultOptions(),
		},
		log: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func callRequest(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

// resultText returns the text of the first content item.
func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) == 0 {
		t.Fatal("result has no content")
	}
	switch c := res.Content[0].(type) {
	case mcp.TextContent:
		return c.Text
	case *mcp.TextContent:
		return c.Text
	default:
		t.Fatalf("content = %T, want text", c)
		return ""
	}
}

// TestTokenFromContext verifies the token round-trips through the context.
func TestTokenFromContext(t *testing.T) {
	if tok := TokenFromContext(context.Background()); tok != "" {
		t.Errorf("TokenFromContext(empty) = %q, want empty", tok)
	}
	ctx := WithToken(context.Background(), "abc")
	if tok := TokenFromContext(ctx); tok != "abc" {
		t.Errorf("TokenFromContext = %q, want abc", tok)
	}
}

// TestClientSourceRequiresToken verifies anonymous callers are refused.
func TestClientSourceRequiresToken(t *testing.T) {
	src := ClientSource(api.New("http://example.test", 0))
	if _, err := src(context.Background()); !errors.Is(err, ErrNoToken) {
		t.Errorf("err = %v, want ErrNoToken", err)
	}
	ds, err := src(WithToken(context.Background(), "t"))
	if err != nil {
		t.Fatal(err)
	}
	if c, ok := ds.(*api.Client); !ok || c.Token() != "t" {
		t.Errorf("data source = %#v, want client bound to t", ds)
	}
}

// TestParseMonth verifies month parsing from both accepted forms.
func TestParseMonth(t *testing.T) {
	for _, in := range []string{"2024-03", "2024-03-17"} {
		m, err := parseMonth(in)
		if err != nil {
			t.Fatalf("parseMonth(%q): %v", in, err)
		}
		if m.Year() != 2024 || m.Month() != 3 {
			t.Errorf("parseMonth(%q) = %v, want March 2024", in, m)
		}
	}
	if _, err := parseMonth("March"); err == nil {
		t.Error("expected error for invalid month")
	}
}

// TestGetSessionGroupsByExercise verifies the session tool returns named
// groups in first-occurrence order.
func TestGetSessionGroupsByExercise(t *testing.T) {
	h := newTestHandlers(newFakeSource())
	res, err := h.getSession(context.Background(), callRequest(map[string]any{"date": "2024-03-04"}))
	if err != nil {
		t.Fatal(err)
	}
	if res.IsError {
		t.Fatalf("tool error: %s", resultText(t, res))
	}

	var view sessionView
	if err := json.Unmarshal([]byte(resultText(t, res)), &view); err != nil {
		t.Fatal(err)
	}
	if !view.Exists || view.SessionID != 10 || view.Type != "Push" {
		t.Errorf("view = %+v", view)
	}
	if len(view.Exercises) != 2 || view.Exercises[0].Name != "Bench Press" || len(view.Exercises[0].Sets) != 2 {
		t.Errorf("exercises = %+v", view.Exercises)
	}
}

// TestGetSessionMissingDate verifies argument validation surfaces as a tool error.
func TestGetSessionMissingDate(t *testing.T) {
	h := newTestHandlers(newFakeSource())
	for _, args := range []map[string]any{{}, {"date": "yesterday"}} {
		res, err := h.getSession(context.Background(), callRequest(args))
		if err != nil {
			t.Fatal(err)
		}
		if !res.IsError {
			t.Errorf("args %v: expected tool error", args)
		}
	}
}

// TestGetCalendarMonthFilter verifies the month filter and default titles.
func TestGetCalendarMonthFilter(t *testing.T) {
	h := newTestHandlers(newFakeSource())
	res, err := h.getCalendar(context.Background(), callRequest(map[string]any{"month": "2024-04"}))
	if err != nil {
		t.Fatal(err)
	}
	var out struct {
		Events []viewmodel.CalendarEvent `json:"events"`
	}
	if err := json.Unmarshal([]byte(resultText(t, res)), &out); err != nil {
		t.Fatal(err)
	}
	if len(out.Events) != 1 || out.Events[0].Title != "Workout" || out.Events[0].SessionID != 11 {
		t.Errorf("events = %+v", out.Events)
	}
}

// TestGetExerciseHistory verifies rows are newest first.
func TestGetExerciseHistory(t *testing.T) {
	h := newTestHandlers(newFakeSource())
	res, err := h.getExerciseHistory(context.Background(), callRequest(map[string]any{"exercise_id": "1"}))
	if err != nil {
		t.Fatal(err)
	}
	if res.IsError {
		t.Fatalf("tool error: %s", resultText(t, res))
	}
	var out struct {
		Exercise models.Exercise        `json:"exercise"`
		Rows     []viewmodel.HistoryRow `json:"rows"`
	}
	if err := json.Unmarshal([]byte(resultText(t, res)), &out); err != nil {
		t.Fatal(err)
	}
	if out.Exercise.Name != "Bench Press" {
		t.Errorf("exercise = %+v", out.Exercise)
	}
	if len(out.Rows) != 2 || out.Rows[0].Date != "2024-04-01" {
		t.Errorf("rows = %+v", out.Rows)
	}
}

// TestBackendErrorIsToolError verifies backend failures do not fail the call.
func TestBackendErrorIsToolError(t *testing.T) {
	h := newTestHandlers(&fakeSource{err: errors.New("backend down")})
	res, err := h.listExercises(context.Background(), callRequest(nil))
	if err != nil {
		t.Fatalf("handler error = %v, want tool error", err)
	}
	if !res.IsError {
		t.Error("expected tool error")
	}
}

// TestTemplatesResource verifies the resource lists the configured templates.
func TestTemplatesResource(t *testing.T) {
	h := newTestHandlers(newFakeSource())
	var req mcp.ReadResourceRequest
	req.Params.URI = "liftlog://templates"
	contents, err := h.templates(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	text, ok := contents[0].(mcp.TextResourceContents)
	if !ok {
		t.Fatalf("contents = %T", contents[0])
	}
	var ts viewmodel.Templates
	if err := json.Unmarshal([]byte(text.Text), &ts); err != nil {
		t.Fatal(err)
	}
	if _, ok := ts.Lookup("Push"); !ok {
		t.Errorf("templates = %v, want Push", ts.Labels())
	}
}
