package viewmodel

import (
	"context"

	"github.com/liftlog/liftlog/internal/models"
)

// ExerciseCreator creates catalog entries on the backend.
type ExerciseCreator interface {
	CreateExercise(ctx context.Context, ex models.NewExercise) (models.Exercise, error)
}

// foldSequential applies step to each item in order, threading acc through.
// A step only starts after the previous one returned, so results that depend
// on position (template slots, group order) never depend on response timing.
func foldSequential[T, A any](ctx context.Context, items []T, acc A, step func(context.Context, A, T) (A, error)) (A, error) {
	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return acc, err
		}
		next, err := step(ctx, acc, item)
		if err != nil {
			return acc, err
		}
		acc = next
	}
	return acc, nil
}
