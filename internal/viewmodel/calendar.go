package viewmodel

import (
	"time"

	"github.com/liftlog/liftlog/internal/models"
)

// CalendarEvent is an all-day calendar entry for one session.
type CalendarEvent struct {
	SessionID models.ID `json:"sessionId,omitempty"`
	Date      string    `json:"date"`
	Title     string    `json:"title"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	AllDay    bool      `json:"allDay"`
}

// CalendarEvents maps sessions to calendar events spanning their whole day.
// Sessions whose date cannot be read are skipped.
func CalendarEvents(sessions []models.Session, opts Options) []CalendarEvent {
	loc := opts.location()
	events := make([]CalendarEvent, 0, len(sessions))
	for _, s := range sessions {
		key, ok := models.NormalizeDate(s.Date)
		if !ok {
			continue
		}
		start, err := models.ParseDateIn(key, loc)
		if err != nil {
			continue
		}
		title := s.Type
		if title == "" {
			title = opts.DefaultLabel
		}
		events = append(events, CalendarEvent{
			SessionID: s.ID,
			Date:      key,
			Title:     title,
			Start:     start,
			End:       start.AddDate(0, 0, 1).Add(-time.Nanosecond),
			AllDay:    true,
		})
	}
	return events
}

// EventsInMonth keeps the events whose date falls in the month of ref.
func EventsInMonth(events []CalendarEvent, ref time.Time) []CalendarEvent {
	prefix := ref.Format("2006-01")
	out := make([]CalendarEvent, 0, len(events))
	for _, e := range events {
		if len(e.Date) >= len(prefix) && e.Date[:len(prefix)] == prefix {
			out = append(out, e)
		}
	}
	return out
}
