package models

// Session is one day's recorded workout as returned by the backend.
type Session struct {
	ID   ID          `json:"id,omitempty"`
	Date string      `json:"date"`
	Type string      `json:"type,omitempty"`
	Sets []SetRecord `json:"sets"`
}

// SetRecord is a single recorded set. The backend references the exercise
// either through ExerciseID or through a nested Exercise object; use
// ResolveExerciseID instead of reading either field directly.
type SetRecord struct {
	Reps       *int         `json:"reps"`
	Weight     *float64     `json:"weight"`
	ExerciseID ID           `json:"exerciseId,omitempty"`
	Exercise   *ExerciseRef `json:"exercise,omitempty"`
}

// ExerciseRef is the nested exercise reference carried by set records and
// by submission payloads.
type ExerciseRef struct {
	ID       ID     `json:"id"`
	Name     string `json:"name,omitempty"`
	Category string `json:"category,omitempty"`
}

// Exercise is an exercise catalog entry.
type Exercise struct {
	ID       ID     `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category,omitempty"`
}

// ResolveExerciseID returns the exercise a set belongs to. The direct field
// wins when set; otherwise the nested reference is used.
func ResolveExerciseID(s SetRecord) (ID, bool) {
	if s.ExerciseID.Valid() {
		return s.ExerciseID, true
	}
	if s.Exercise != nil && s.Exercise.ID.Valid() {
		return s.Exercise.ID, true
	}
	return 0, false
}

// WeightOrZero returns the recorded weight. A missing weight counts as
// bodyweight (0).
func (s SetRecord) WeightOrZero() float64 {
	if s.Weight == nil {
		return 0
	}
	return *s.Weight
}

// SessionPayload is the body of POST /api/sessions and PUT /api/sessions/:id.
type SessionPayload struct {
	Date string       `json:"date"`
	Type string       `json:"type"`
	Sets []SetPayload `json:"sets"`
}

// SetPayload is one flattened set in a SessionPayload.
type SetPayload struct {
	Reps     int         `json:"reps"`
	Weight   float64     `json:"weight"`
	Exercise ExerciseRef `json:"exercise"`
}

// NewExercise is the body of POST /api/exercises.
type NewExercise struct {
	Name     string `json:"name"`
	Category string `json:"category"`
}

// Credentials is the body of the login and register endpoints.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResult is the decoded login response.
type LoginResult struct {
	Token    string `json:"token"`
	Username string `json:"username,omitempty"`
}
