package viewmodel

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/liftlog/liftlog/internal/models"
)

func historySessions() []models.Session {
	return []models.Session{
		{Date: "2024-01-01", Sets: []models.SetRecord{
			set(1, 10, 60),
			set(2, 12, 0),
			set(1, 8, 70),
		}},
		{Date: "2024-01-02", Sets: []models.SetRecord{
			set(2, 12, 0),
			{Reps: nil, Weight: floatp(50), ExerciseID: 1},
		}},
		{Date: "2024-01-03", Sets: []models.SetRecord{
			{Reps: intp(6), Exercise: &models.ExerciseRef{ID: 1}},
		}},
	}
}

// TestBuildHistoryFilterAndSort verifies only sessions with a matching set
// that has reps are kept, newest first, with only the matching sets.
func TestBuildHistoryFilterAndSort(t *testing.T) {
	rows := BuildHistory(historySessions(), 1)
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	if rows[0].Date != "2024-01-03" || rows[1].Date != "2024-01-01" {
		t.Errorf("dates = [%s %s], want [2024-01-03 2024-01-01]", rows[0].Date, rows[1].Date)
	}
	if len(rows[1].Sets) != 2 || rows[1].Sets[0].Reps != 10 || rows[1].Sets[1].Reps != 8 {
		t.Errorf("2024-01-01 sets = %+v", rows[1].Sets)
	}
	if rows[0].Sets[0].Weight != 0 {
		t.Errorf("missing weight = %v, want 0", rows[0].Sets[0].Weight)
	}
}

// TestTransposeShape verifies the matrix is rectangular and that the newer
// date, which has a single set, gets an absent cell in the second row.
func TestTransposeShape(t *testing.T) {
	m := Transpose(BuildHistory(historySessions(), 1))
	if len(m.Dates) != 2 || m.Dates[0] != "2024-01-03" || m.Dates[1] != "2024-01-01" {
		t.Fatalf("dates = %v", m.Dates)
	}
	if len(m.Rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(m.Rows))
	}
	for r, row := range m.Rows {
		if len(row) != 2 {
			t.Errorf("row %d has %d cells, want 2", r, len(row))
		}
	}
	if !m.Rows[1][0].Absent() {
		t.Errorf("row 1, 2024-01-03 should be absent")
	}
	if m.Rows[1][1].Absent() || m.Rows[1][1].Set.Reps != 8 {
		t.Errorf("row 1, 2024-01-01 = %+v, want 8 reps", m.Rows[1][1])
	}
}

// TestTransposeUnevenDates verifies 2024-01-01 with 2 sets and 2024-01-03
// with 1 set: columns descending, 2 rows, row 1 of the newer date absent.
func TestTransposeUnevenDates(t *testing.T) {
	sessions := []models.Session{
		{Date: "2024-01-01", Sets: []models.SetRecord{set(5, 5, 100), set(5, 5, 105)}},
		{Date: "2024-01-03", Sets: []models.SetRecord{set(5, 3, 110)}},
	}
	m := Transpose(BuildHistory(sessions, 5))
	if m.Dates[0] != "2024-01-03" || m.Dates[1] != "2024-01-01" {
		t.Errorf("dates = %v", m.Dates)
	}
	if len(m.Rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(m.Rows))
	}
	if !m.Rows[1][0].Absent() {
		t.Error("second set of 2024-01-03 should be absent")
	}
	if m.Rows[1][1].Absent() {
		t.Error("second set of 2024-01-01 should be present")
	}
}

// TestHistoryNoMatch verifies an exercise never recorded yields an empty matrix.
func TestHistoryNoMatch(t *testing.T) {
	m := Transpose(BuildHistory(historySessions(), 42))
	if !m.Empty() || len(m.Rows) != 0 {
		t.Errorf("matrix = %+v, want empty", m)
	}
}

// TestHistoryTimestampDates verifies timestamp dates sort with bare dates.
func TestHistoryTimestampDates(t *testing.T) {
	sessions := []models.Session{
		{Date: "2024-02-01T00:00:00Z", Sets: []models.SetRecord{set(1, 1, 1)}},
		{Date: "2024-03-01", Sets: []models.SetRecord{set(1, 1, 1)}},
	}
	rows := BuildHistory(sessions, 1)
	if rows[0].Date != "2024-03-01" || rows[1].Date != "2024-02-01" {
		t.Errorf("dates = [%s %s]", rows[0].Date, rows[1].Date)
	}
}

// TestCellLabels verifies bodyweight sets render differently from absent cells.
func TestCellLabels(t *testing.T) {
	bw := Cell{Set: &HistorySet{Reps: 12, Weight: 0}}
	loaded := Cell{Set: &HistorySet{Reps: 8, Weight: 62.5}}
	negative := Cell{Set: &HistorySet{Reps: 5, Weight: -10}}
	absent := Cell{}

	cases := []struct {
		cell Cell
		want string
	}{
		{bw, "12 reps @ BW"},
		{loaded, "8 reps @ 62.5kg"},
		{negative, "5 reps"},
		{absent, AbsentLabel},
	}
	for _, tc := range cases {
		if got := tc.cell.Label(); got != tc.want {
			t.Errorf("Label = %q, want %q", got, tc.want)
		}
	}
	if bw.Absent() {
		t.Error("bodyweight cell reported absent")
	}
}

// TestCellJSON verifies absent cells encode as null and present cells carry a label.
func TestCellJSON(t *testing.T) {
	data, err := json.Marshal([]Cell{{Set: &HistorySet{Reps: 12}}, {}})
	if err != nil {
		t.Fatal(err)
	}
	want := `[{"reps":12,"weight":0,"label":"12 reps @ BW"},null]`
	if string(data) != want {
		t.Errorf("json = %s, want %s", data, want)
	}
}

// TestFormatColumnDate verifies column headers and the passthrough for bad keys.
func TestFormatColumnDate(t *testing.T) {
	if got := FormatColumnDate("2024-01-01"); got != "Mon, Jan 1" {
		t.Errorf("FormatColumnDate = %q, want %q", got, "Mon, Jan 1")
	}
	if got := FormatColumnDate("soon"); got != "soon" {
		t.Errorf("FormatColumnDate = %q, want passthrough", got)
	}
}

// TestCalendarEvents verifies labels, full-day bounds and skipped bad dates.
func TestCalendarEvents(t *testing.T) {
	loc := time.FixedZone("EST", -5*60*60)
	opts := DefaultOptions()
	opts.Location = loc

	events := CalendarEvents([]models.Session{
		{ID: 1, Date: "2024-01-05", Type: "Push"},
		{ID: 2, Date: "2024-01-06"},
		{ID: 3, Date: "not a date", Type: "Legs"},
	}, opts)
	if len(events) != 2 {
		t.Fatalf("events = %d, want 2", len(events))
	}
	if events[0].Title != "Push" {
		t.Errorf("title = %q, want Push", events[0].Title)
	}
	e := events[1]
	if e.Title != "Workout" {
		t.Errorf("default title = %q, want Workout", e.Title)
	}
	if !e.AllDay {
		t.Error("event should be all-day")
	}
	wantStart := time.Date(2024, 1, 6, 0, 0, 0, 0, loc)
	if !e.Start.Equal(wantStart) {
		t.Errorf("start = %v, want %v", e.Start, wantStart)
	}
	if e.End.Day() != 6 || e.End.Hour() != 23 || e.End.Minute() != 59 {
		t.Errorf("end = %v, want last moment of 2024-01-06", e.End)
	}
	if !e.End.Before(wantStart.AddDate(0, 0, 1)) {
		t.Errorf("end %v must be before next midnight", e.End)
	}
}

// TestEventsInMonth verifies month filtering by date key.
func TestEventsInMonth(t *testing.T) {
	events := CalendarEvents([]models.Session{
		{Date: "2024-01-31"}, {Date: "2024-02-01"}, {Date: "2024-02-29"},
	}, DefaultOptions())
	got := EventsInMonth(events, time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC))
	if len(got) != 2 {
		t.Errorf("february events = %d, want 2", len(got))
	}
}

// TestBuildEditor verifies lookup by date, including timestamp dates, and
// the empty new-workout state.
func TestBuildEditor(t *testing.T) {
	sessions := []models.Session{
		{ID: 9, Date: "2024-04-01T00:00:00Z", Type: "Legs", Sets: []models.SetRecord{set(1, 5, 100)}},
	}
	ed := BuildEditor(sessions, "2024-04-01")
	if !ed.Exists || ed.SessionID != 9 || ed.Type != "Legs" || len(ed.Groups) != 1 {
		t.Errorf("editor = %+v", ed)
	}

	empty := BuildEditor(sessions, "2024-04-02")
	if empty.Exists || empty.SessionID != 0 || empty.Type != "" {
		t.Errorf("new editor = %+v", empty)
	}
	if empty.Groups == nil || len(empty.Groups) != 0 {
		t.Errorf("new editor groups = %#v, want empty", empty.Groups)
	}
}

// TestFormValueJSON verifies numbers, strings and null all decode, and
// numeric values encode back as numbers.
func TestFormValueJSON(t *testing.T) {
	var s []EditableSet
	raw := `[{"reps":12,"weight":"62.5"},{"reps":"","weight":null}]`
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		t.Fatal(err)
	}
	if s[0].Reps != "12" || s[0].Weight != "62.5" || s[1].Reps != "" || s[1].Weight != "" {
		t.Errorf("decoded = %+v", s)
	}
	out, err := json.Marshal(s)
	if err != nil {
		t.Fatal(err)
	}
	want := `[{"reps":12,"weight":62.5},{"reps":"","weight":""}]`
	if string(out) != want {
		t.Errorf("encoded = %s, want %s", out, want)
	}
}
