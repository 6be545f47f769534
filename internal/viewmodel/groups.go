package viewmodel

import (
	"github.com/liftlog/liftlog/internal/models"
)

// EditableSet is one set row in the session editor.
type EditableSet struct {
	Reps   FormValue `json:"reps"`
	Weight FormValue `json:"weight"`
}

// ExerciseGroup is the editor's view of all sets of one exercise in a
// session. NewExerciseName is set when the user typed an exercise that does
// not exist yet; it takes precedence over ExerciseID at submission.
type ExerciseGroup struct {
	ExerciseID      models.ID     `json:"exerciseId"`
	Sets            []EditableSet `json:"sets"`
	NewExerciseName string        `json:"newExerciseName"`
}

// NormalizeGroups groups a session's flat set list by exercise. Groups come
// out in the order each exercise first appears; sets keep their relative
// order within a group. Sets without a resolvable exercise or without reps
// are skipped.
func NormalizeGroups(sets []models.SetRecord) []ExerciseGroup {
	groups := make([]ExerciseGroup, 0, len(sets))
	index := make(map[models.ID]int)

	for _, s := range sets {
		id, ok := models.ResolveExerciseID(s)
		if !ok || s.Reps == nil {
			continue
		}
		i, seen := index[id]
		if !seen {
			i = len(groups)
			index[id] = i
			groups = append(groups, ExerciseGroup{ExerciseID: id, Sets: []EditableSet{}})
		}
		groups[i].Sets = append(groups[i].Sets, EditableSet{
			Reps:   IntValue(*s.Reps),
			Weight: FloatValue(s.WeightOrZero()),
		})
	}
	return groups
}
