package viewmodel

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/liftlog/liftlog/internal/models"
)

// ErrNoCreator is returned when a group names a new exercise but no
// ExerciseCreator was supplied.
var ErrNoCreator = errors.New("no exercise creator configured")

// FlattenResult is the outcome of Flatten.
type FlattenResult struct {
	Sets    []models.SetPayload
	Created []models.Exercise
}

// Flatten turns editor groups back into the flat set list the backend
// stores. Groups naming a new exercise create it first, one at a time and in
// group order. Groups that end up without an exercise are dropped. The
// groups themselves are not modified.
func Flatten(ctx context.Context, groups []ExerciseGroup, creator ExerciseCreator, opts Options) (FlattenResult, error) {
	start := FlattenResult{Sets: []models.SetPayload{}}

	return foldSequential(ctx, groups, start, func(ctx context.Context, acc FlattenResult, g ExerciseGroup) (FlattenResult, error) {
		id := g.ExerciseID
		if name := strings.TrimSpace(g.NewExerciseName); name != "" {
			if creator == nil {
				return acc, ErrNoCreator
			}
			created, err := creator.CreateExercise(ctx, models.NewExercise{
				Name:     name,
				Category: opts.NewExerciseCategory,
			})
			if err != nil {
				return acc, fmt.Errorf("creating exercise %q: %w", name, err)
			}
			acc.Created = append(acc.Created, created)
			id = created.ID
		}
		if !id.Valid() {
			return acc, nil
		}

		for _, s := range g.Sets {
			acc.Sets = append(acc.Sets, models.SetPayload{
				Reps:     opts.Coercion.Reps(s.Reps),
				Weight:   opts.Coercion.Weight(s.Weight),
				Exercise: models.ExerciseRef{ID: id},
			})
		}
		return acc, nil
	})
}

// BuildPayload flattens groups into a submission body for date. A blank
// type is replaced by opts.DefaultType.
func BuildPayload(ctx context.Context, date, sessionType string, groups []ExerciseGroup, creator ExerciseCreator, opts Options) (models.SessionPayload, FlattenResult, error) {
	key, ok := models.NormalizeDate(date)
	if !ok {
		return models.SessionPayload{}, FlattenResult{}, fmt.Errorf("invalid session date %q", date)
	}

	flat, err := Flatten(ctx, groups, creator, opts)
	if err != nil {
		return models.SessionPayload{}, flat, err
	}

	if sessionType == "" {
		sessionType = opts.DefaultType
	}
	return models.SessionPayload{
		Date: key,
		Type: sessionType,
		Sets: flat.Sets,
	}, flat, nil
}
