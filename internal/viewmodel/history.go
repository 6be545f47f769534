package viewmodel

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/liftlog/liftlog/internal/models"
)

// AbsentLabel is shown for a history cell with no set.
const AbsentLabel = "—"

// HistorySet is one recorded set of the exercise being viewed.
type HistorySet struct {
	Reps   int     `json:"reps"`
	Weight float64 `json:"weight"`
}

// Label renders the set the way the history table shows it. Weight 0 is
// bodyweight.
func (s HistorySet) Label() string {
	switch {
	case s.Weight > 0:
		return fmt.Sprintf("%d reps @ %skg", s.Reps, strconv.FormatFloat(s.Weight, 'f', -1, 64))
	case s.Weight == 0:
		return fmt.Sprintf("%d reps @ BW", s.Reps)
	default:
		return fmt.Sprintf("%d reps", s.Reps)
	}
}

// HistoryRow holds the sets of one exercise recorded on one date.
type HistoryRow struct {
	Date string       `json:"date"`
	Sets []HistorySet `json:"sets"`
}

// BuildHistory collects the sets of exerciseID from every session, newest
// date first. Sessions without a matching set that has reps are left out.
func BuildHistory(sessions []models.Session, exerciseID models.ID) []HistoryRow {
	rows := make([]HistoryRow, 0)
	for _, s := range sessions {
		var sets []HistorySet
		for _, set := range s.Sets {
			id, ok := models.ResolveExerciseID(set)
			if !ok || id != exerciseID || set.Reps == nil {
				continue
			}
			sets = append(sets, HistorySet{Reps: *set.Reps, Weight: set.WeightOrZero()})
		}
		if len(sets) == 0 {
			continue
		}
		rows = append(rows, HistoryRow{Date: dateKey(s.Date), Sets: sets})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Date > rows[j].Date
	})
	return rows
}

// dateKey normalizes a session date for sorting, keeping unparseable values
// as they are so they still sort deterministically.
func dateKey(raw string) string {
	if key, ok := models.NormalizeDate(raw); ok {
		return key
	}
	return strings.TrimSpace(raw)
}

// Cell is one position of the history matrix. A nil Set marks a date that
// has fewer sets than the row index.
type Cell struct {
	Set *HistorySet
}

// Absent reports whether the date had no set at this index.
func (c Cell) Absent() bool {
	return c.Set == nil
}

// Label renders the cell, using AbsentLabel for absent cells.
func (c Cell) Label() string {
	if c.Set == nil {
		return AbsentLabel
	}
	return c.Set.Label()
}

func (c Cell) MarshalJSON() ([]byte, error) {
	if c.Set == nil {
		return []byte("null"), nil
	}
	return json.Marshal(struct {
		Reps   int     `json:"reps"`
		Weight float64 `json:"weight"`
		Label  string  `json:"label"`
	}{c.Set.Reps, c.Set.Weight, c.Set.Label()})
}

// HistoryMatrix is the transposed history table: Rows[r][c] is set r of the
// date in Dates[c].
type HistoryMatrix struct {
	Dates []string `json:"dates"`
	Rows  [][]Cell `json:"rows"`
}

// Empty reports whether no session recorded the exercise.
func (m HistoryMatrix) Empty() bool {
	return len(m.Dates) == 0
}

// Transpose turns per-date rows into per-set-index rows. The result is
// rectangular: dates with fewer sets get absent cells.
func Transpose(rows []HistoryRow) HistoryMatrix {
	m := HistoryMatrix{
		Dates: make([]string, len(rows)),
		Rows:  [][]Cell{},
	}
	maxSets := 0
	for i, r := range rows {
		m.Dates[i] = r.Date
		maxSets = max(maxSets, len(r.Sets))
	}

	for idx := range maxSets {
		line := make([]Cell, len(rows))
		for col, r := range rows {
			if idx < len(r.Sets) {
				set := r.Sets[idx]
				line[col] = Cell{Set: &set}
			}
		}
		m.Rows = append(m.Rows, line)
	}
	return m
}

// FormatColumnDate renders a date key as a short column header
// ("Mon, Jan 1"). Keys that do not parse are returned unchanged.
func FormatColumnDate(key string) string {
	t, err := time.Parse(models.DateLayout, key)
	if err != nil {
		return key
	}
	return t.Format("Mon, Jan 2")
}
