package viewmodel

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// FormValue is a raw editor input. Browsers post numbers, numeric strings or
// blanks interchangeably; the raw text is kept until Coercion turns it into a
// number at submission time.
type FormValue string

// IntValue renders an integer as a form value.
func IntValue(n int) FormValue {
	return FormValue(strconv.Itoa(n))
}

// FloatValue renders a float as a form value without trailing zeros.
func FloatValue(f float64) FormValue {
	return FormValue(strconv.FormatFloat(f, 'f', -1, 64))
}

func (v *FormValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*v = ""
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = FormValue(s)
	default:
		*v = FormValue(data)
	}
	return nil
}

func (v FormValue) MarshalJSON() ([]byte, error) {
	if f, ok := v.number(); ok {
		return json.Marshal(f)
	}
	return json.Marshal(string(v))
}

func (v FormValue) number() (float64, bool) {
	s := strings.TrimSpace(string(v))
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// Coercion turns form values into numbers. Blank or non-numeric input falls
// back to the defaults.
type Coercion struct {
	DefaultReps   int
	DefaultWeight float64
}

// Reps coerces v to a rep count, truncating fractions toward zero.
func (c Coercion) Reps(v FormValue) int {
	f, ok := v.number()
	if !ok || f > math.MaxInt32 || f < math.MinInt32 {
		return c.DefaultReps
	}
	return int(f)
}

// Weight coerces v to a weight.
func (c Coercion) Weight(v FormValue) float64 {
	f, ok := v.number()
	if !ok {
		return c.DefaultWeight
	}
	return f
}

// Options carries the builder settings that come from configuration.
type Options struct {
	// DefaultType is the session type submitted when the editor left it blank.
	DefaultType string
	// DefaultLabel titles calendar events of sessions without a type.
	DefaultLabel string
	// NewExerciseCategory is sent when the editor creates an exercise.
	NewExerciseCategory string
	Coercion            Coercion
	// Location anchors calendar days. Nil means UTC.
	Location *time.Location
}

// DefaultOptions returns the settings used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		DefaultType:         "Workout",
		DefaultLabel:        "Workout",
		NewExerciseCategory: "Custom",
		Location:            time.UTC,
	}
}

func (o Options) location() *time.Location {
	if o.Location == nil {
		return time.UTC
	}
	return o.Location
}
