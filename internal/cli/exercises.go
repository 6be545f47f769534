package cli

import (
	"context"
	"fmt"

	"github.com/liftlog/liftlog/internal/models"
	"github.com/liftlog/liftlog/internal/viewmodel"
)

type ExercisesCmd struct{}

func (c *ExercisesCmd) Run(app *App, ctx context.Context) error {
	client, err := app.authed()
	if err != nil {
		return err
	}
	exercises, err := client.ListExercises(ctx)
	if err != nil {
		return fmt.Errorf("listing exercises: %w", err)
	}
	if len(exercises) == 0 {
		app.println("No exercises yet")
		return nil
	}
	app.println(renderExercises(exercises))
	return nil
}

type HistoryCmd struct {
	ExerciseID int64 `arg:"" name:"exercise-id" help:"Exercise id (see the exercises command)."`
}

func (c *HistoryCmd) Run(app *App, ctx context.Context) error {
	id := models.ID(c.ExerciseID)
	if !id.Valid() {
		return fmt.Errorf("invalid exercise id %d", c.ExerciseID)
	}
	client, err := app.authed()
	if err != nil {
		return err
	}
	exercise, err := client.GetExercise(ctx, id)
	if err != nil {
		return fmt.Errorf("loading exercise: %w", err)
	}
	sessions, err := client.ListSessions(ctx)
	if err != nil {
		return fmt.Errorf("listing sessions: %w", err)
	}

	app.println(titleStyle.Render(exercise.Name))
	matrix := viewmodel.Transpose(viewmodel.BuildHistory(sessions, id))
	if matrix.Empty() {
		app.println("No sets recorded")
		return nil
	}
	app.println(renderHistory(matrix))
	return nil
}
