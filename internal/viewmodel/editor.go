package viewmodel

import (
	"github.com/liftlog/liftlog/internal/models"
)

// Editor is the session editor state for one date.
type Editor struct {
	Date      string          `json:"date"`
	SessionID models.ID       `json:"sessionId,omitempty"`
	Type      string          `json:"type"`
	Groups    []ExerciseGroup `json:"exerciseGroups"`
	// Exists is false for a date without a recorded session.
	Exists bool `json:"exists"`
}

// FindSession returns the first session recorded on date. Dates are compared
// as normalized keys, so a backend that returns timestamps still matches.
func FindSession(sessions []models.Session, date string) (models.Session, bool) {
	want, ok := models.NormalizeDate(date)
	if !ok {
		return models.Session{}, false
	}
	for _, s := range sessions {
		if key, ok := models.NormalizeDate(s.Date); ok && key == want {
			return s, true
		}
	}
	return models.Session{}, false
}

// BuildEditor returns the editor state for date. A date without a session
// is a new workout with no groups.
func BuildEditor(sessions []models.Session, date string) Editor {
	key, ok := models.NormalizeDate(date)
	if !ok {
		key = date
	}
	s, found := FindSession(sessions, date)
	if !found {
		return Editor{Date: key, Groups: []ExerciseGroup{}}
	}
	return Editor{
		Date:      key,
		SessionID: s.ID,
		Type:      s.Type,
		Groups:    NormalizeGroups(s.Sets),
		Exists:    true,
	}
}
