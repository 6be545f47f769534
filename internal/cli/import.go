package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/liftlog/liftlog/internal/importer"
)

// ImportCmd loads an Alpha Progression CSV export.
type ImportCmd struct {
	File    string `arg:"" type:"existingfile" help:"Alpha Progression CSV export."`
	Replace bool   `help:"Overwrite workouts already recorded on the same date."`
	Warmups bool   `help:"Include warmup sets."`
	DryRun  bool   `help:"Show what would be imported without saving." name:"dry-run"`
}

func (c *ImportCmd) Run(app *App, ctx context.Context) error {
	client, err := app.authed()
	if err != nil {
		return err
	}
	f, err := os.Open(c.File)
	if err != nil {
		return err
	}
	defer f.Close()

	workouts, err := importer.ParseAlpha(f)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", c.File, err)
	}
	if len(workouts) == 0 {
		app.println("No workouts found")
		return nil
	}

	res, err := importer.New(client, app.Options, app.Log).Import(ctx, workouts, importer.Options{
		Replace: c.Replace,
		Warmups: c.Warmups,
		DryRun:  c.DryRun,
	})
	if err != nil {
		return err
	}

	prefix := ""
	if c.DryRun {
		prefix = "[dry run] "
	}
	app.printf("%sImported %d, replaced %d, skipped %d workouts (%d sets)\n", prefix, res.Imported, res.Replaced, res.Skipped, res.Sets)
	if len(res.NewExercises) > 0 {
		app.printf("%sNew exercises: %s\n", prefix, strings.Join(res.NewExercises, ", "))
	}
	return nil
}
