package cli

import (
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/liftlog/liftlog/internal/models"
	"github.com/liftlog/liftlog/internal/viewmodel"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	titleStyle  = lipgloss.NewStyle().Bold(true)
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

func renderEvents(events []viewmodel.CalendarEvent) string {
	t := newTable("Date", "Weekday", "Workout", "Session")
	for _, e := range events {
		t.Row(e.Date, e.Start.Weekday().String(), e.Title, e.SessionID.String())
	}
	return t.Render()
}

func renderExercises(exercises []models.Exercise) string {
	t := newTable("ID", "Name", "Category")
	for _, ex := range exercises {
		t.Row(ex.ID.String(), ex.Name, ex.Category)
	}
	return t.Render()
}

// renderEditor lists each group's sets under the exercise name.
func renderEditor(e viewmodel.Editor, catalog viewmodel.Catalog) string {
	t := newTable("Exercise", "Set", "Reps", "Weight")
	for _, g := range e.Groups {
		name := catalog.Name(g.ExerciseID)
		if name == "" {
			name = g.NewExerciseName
		}
		if name == "" {
			name = "#" + g.ExerciseID.String()
		}
		for i, s := range g.Sets {
			label := name
			if i > 0 {
				label = ""
			}
			t.Row(label, strconv.Itoa(i+1), string(s.Reps), string(s.Weight))
		}
	}
	return t.Render()
}

// renderHistory draws the transposed matrix: one column per date, one row
// per set index.
func renderHistory(m viewmodel.HistoryMatrix) string {
	headers := make([]string, 0, len(m.Dates)+1)
	headers = append(headers, "Set")
	for _, d := range m.Dates {
		headers = append(headers, viewmodel.FormatColumnDate(d))
	}
	t := newTable(headers...)
	for i, row := range m.Rows {
		cells := make([]string, 0, len(row)+1)
		cells = append(cells, strconv.Itoa(i+1))
		for _, c := range row {
			cells = append(cells, c.Label())
		}
		t.Row(cells...)
	}
	t.StyleFunc(func(row, col int) lipgloss.Style {
		switch {
		case row == table.HeaderRow:
			return headerStyle
		case col > 0 && row < len(m.Rows) && m.Rows[row][col-1].Absent():
			return dimStyle
		default:
			return cellStyle
		}
	})
	return t.Render()
}
