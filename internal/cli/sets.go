package cli

import (
	"fmt"
	"strings"

	"github.com/liftlog/liftlog/internal/viewmodel"
)

// ParseSetFlag parses one --set value of the form "Name=12x60,8x70,10".
// A set without "x" is bodyweight. Names found in catalog reference the
// existing exercise; any other name is created on save.
func ParseSetFlag(value string, catalog viewmodel.Catalog) (viewmodel.ExerciseGroup, error) {
	name, list, ok := strings.Cut(value, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return viewmodel.ExerciseGroup{}, fmt.Errorf("--set %q: want NAME=REPSxWEIGHT,...", value)
	}

	g := viewmodel.ExerciseGroup{Sets: []viewmodel.EditableSet{}}
	if ex, found := catalog.FindByName(name); found {
		g.ExerciseID = ex.ID
	} else {
		g.NewExerciseName = name
	}

	for _, part := range strings.Split(list, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		reps, weight, _ := strings.Cut(strings.ToLower(part), "x")
		g.Sets = append(g.Sets, viewmodel.EditableSet{
			Reps:   viewmodel.FormValue(strings.TrimSpace(reps)),
			Weight: viewmodel.FormValue(strings.TrimSpace(weight)),
		})
	}
	if len(g.Sets) == 0 {
		return viewmodel.ExerciseGroup{}, fmt.Errorf("--set %q: no sets given", value)
	}
	return g, nil
}
