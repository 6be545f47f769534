package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/liftlog/liftlog/internal/models"
	"github.com/liftlog/liftlog/internal/viewmodel"
	"github.com/mark3labs/mcp-go/mcp"
)

// parseMonth accepts YYYY-MM or a full date and returns a time inside that month.
func parseMonth(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01", s); err == nil {
		return t, nil
	}
	if key, ok := models.NormalizeDate(s); ok {
		return time.Parse(models.DateLayout, key)
	}
	return time.Time{}, fmt.Errorf("%q is not YYYY-MM or YYYY-MM-DD", s)
}

// --- Tool definitions ---

var toolListExercises = mcp.NewTool("list_exercises",
	mcp.WithDescription("List the exercise catalog: id, name and category of every exercise."),
)

var toolGetCalendar = mcp.NewTool("get_calendar",
	mcp.WithDescription("List workouts as all-day calendar events with session id, date and title (the session type)."),
	mcp.WithString("month", mcp.Description("Only events in this month (YYYY-MM). Defaults to all months.")),
)

var toolGetSession = mcp.NewTool("get_session",
	mcp.WithDescription("Get the workout on a date, grouped by exercise in the order exercises were first performed. Returns exists=false when no workout was logged that day."),
	mcp.WithString("date", mcp.Required(), mcp.Description("Session date (YYYY-MM-DD)")),
)

var toolGetExerciseHistory = mcp.NewTool("get_exercise_history",
	mcp.WithDescription("Per-date history of one exercise, newest first, plus a set-by-date matrix where missing sets are null."),
	mcp.WithString("exercise_id", mcp.Required(), mcp.Description("Exercise id from list_exercises")),
)

// --- Tool handlers ---

func (h *handlers) listExercises(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ds, err := h.source(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	exercises, err := ds.ListExercises(ctx)
	if err != nil {
		h.log.Error("mcp list_exercises", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(exercises)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getCalendar(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var month time.Time
	if s := req.GetString("month", ""); s != "" {
		m, err := parseMonth(s)
		if err != nil {
			return mcp.NewToolResultError("invalid month: " + err.Error()), nil
		}
		month = m
	}

	ds, err := h.source(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	sessions, err := ds.ListSessions(ctx)
	if err != nil {
		h.log.Error("mcp get_calendar", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	events := viewmodel.CalendarEvents(sessions, h.cfg.Options)
	if !month.IsZero() {
		events = viewmodel.EventsInMonth(events, month)
	}

	result, err := mcp.NewToolResultJSON(map[string]any{"events": events})
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getSession(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	date, err := req.RequireString("date")
	if err != nil {
		return mcp.NewToolResultError("date parameter is required"), nil
	}
	key, ok := models.NormalizeDate(date)
	if !ok {
		return mcp.NewToolResultError("invalid date format: " + date), nil
	}

	ds, err := h.source(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	sessions, err := ds.ListSessions(ctx)
	if err != nil {
		h.log.Error("mcp get_session sessions", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	exercises, err := ds.ListExercises(ctx)
	if err != nil {
		h.log.Error("mcp get_session exercises", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(namedEditor(viewmodel.BuildEditor(sessions, key), exercises))
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getExerciseHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := req.RequireString("exercise_id")
	if err != nil {
		return mcp.NewToolResultError("exercise_id parameter is required"), nil
	}
	id, ok := models.ParseID(raw)
	if !ok {
		return mcp.NewToolResultError("invalid exercise_id: " + raw), nil
	}

	ds, err := h.source(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	exercise, err := ds.GetExercise(ctx, id)
	if err != nil {
		h.log.Error("mcp get_exercise_history exercise", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	sessions, err := ds.ListSessions(ctx)
	if err != nil {
		h.log.Error("mcp get_exercise_history sessions", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	rows := viewmodel.BuildHistory(sessions, id)
	result, err := mcp.NewToolResultJSON(map[string]any{
		"exercise": exercise,
		"rows":     rows,
		"matrix":   viewmodel.Transpose(rows),
	})
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

// sessionGroup is an exercise group with the exercise name resolved.
type sessionGroup struct {
	ExerciseID models.ID               `json:"exerciseId"`
	Name       string                  `json:"name"`
	Sets       []viewmodel.EditableSet `json:"sets"`
}

type sessionView struct {
	Date      string         `json:"date"`
	SessionID models.ID      `json:"sessionId,omitempty"`
	Type      string         `json:"type"`
	Exists    bool           `json:"exists"`
	Exercises []sessionGroup `json:"exercises"`
}

func namedEditor(ed viewmodel.Editor, exercises []models.Exercise) sessionView {
	catalog := viewmodel.Catalog(exercises)
	groups := make([]sessionGroup, 0, len(ed.Groups))
	for _, g := range ed.Groups {
		groups = append(groups, sessionGroup{
			ExerciseID: g.ExerciseID,
			Name:       catalog.Name(g.ExerciseID),
			Sets:       g.Sets,
		})
	}
	return sessionView{
		Date:      ed.Date,
		SessionID: ed.SessionID,
		Type:      ed.Type,
		Exists:    ed.Exists,
		Exercises: groups,
	}
}
