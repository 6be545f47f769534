// Package importer brings workouts recorded in other apps into the backend.
// Imported sessions go through the same grouping and flattening as the
// session editor, so unknown exercises are created on the way.
package importer

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/liftlog/liftlog/internal/models"
	"github.com/liftlog/liftlog/internal/viewmodel"
)

// Backend is the part of the REST client the importer needs. *api.Client
// satisfies it.
type Backend interface {
	viewmodel.ExerciseCreator
	ListSessions(ctx context.Context) ([]models.Session, error)
	ListExercises(ctx context.Context) ([]models.Exercise, error)
	SaveSession(ctx context.Context, id models.ID, p models.SessionPayload) (models.Session, error)
}

// Options controls an import run.
type Options struct {
	// Replace overwrites sessions already recorded on a workout's date.
	// Otherwise those dates are skipped.
	Replace bool
	// Warmups includes warmup sets.
	Warmups bool
	// DryRun reports what would change without writing.
	DryRun bool
}

// Result summarizes an import run.
type Result struct {
	Imported     int               `json:"imported"`
	Replaced     int               `json:"replaced"`
	Skipped      int               `json:"skipped"`
	Sets         int               `json:"sets"`
	NewExercises []string          `json:"new_exercises"`
	Created      []models.Exercise `json:"created"`
}

// Importer writes parsed workouts through a Backend.
type Importer struct {
	backend Backend
	view    viewmodel.Options
	log     *slog.Logger
}

// New creates an Importer.
func New(backend Backend, view viewmodel.Options, log *slog.Logger) *Importer {
	return &Importer{backend: backend, view: view, log: log}
}

// day is the merged content of all workouts on one date.
type day struct {
	date     string
	typ      string
	workouts []Workout
}

// byDay merges workouts that share a date, oldest date first.
func byDay(workouts []Workout) []day {
	index := map[string]int{}
	var days []day
	for _, w := range workouts {
		key := w.Date.Format(models.DateLayout)
		i, ok := index[key]
		if !ok {
			i = len(days)
			index[key] = i
			days = append(days, day{date: key, typ: w.Type()})
		}
		days[i].workouts = append(days[i].workouts, w)
	}
	sort.SliceStable(days, func(i, j int) bool { return days[i].date < days[j].date })
	return days
}

// groups builds editor groups for d, one per exercise name in order of
// first appearance.
func (d day) groups(catalog viewmodel.Catalog, warmups bool) []viewmodel.ExerciseGroup {
	var groups []viewmodel.ExerciseGroup
	index := map[string]int{}
	for _, w := range d.workouts {
		for _, ex := range w.Exercises {
			var sets []viewmodel.EditableSet
			for _, s := range ex.Sets {
				if s.Warmup && !warmups {
					continue
				}
				sets = append(sets, viewmodel.EditableSet{
					Reps:   viewmodel.IntValue(s.Reps),
					Weight: viewmodel.FloatValue(s.Weight),
				})
			}
			if len(sets) == 0 {
				continue
			}
			if i, ok := index[ex.Name]; ok {
				groups[i].Sets = append(groups[i].Sets, sets...)
				continue
			}
			g := viewmodel.ExerciseGroup{Sets: sets}
			if known, ok := catalog.FindByName(ex.Name); ok {
				g.ExerciseID = known.ID
			} else {
				g.NewExerciseName = ex.Name
			}
			index[ex.Name] = len(groups)
			groups = append(groups, g)
		}
	}
	return groups
}

// Import saves workouts one date at a time. A failure stops the run; the
// result still counts what was written before it.
func (imp *Importer) Import(ctx context.Context, workouts []Workout, opts Options) (Result, error) {
	res := Result{NewExercises: []string{}, Created: []models.Exercise{}}

	sessions, err := imp.backend.ListSessions(ctx)
	if err != nil {
		return res, fmt.Errorf("listing sessions: %w", err)
	}
	exercises, err := imp.backend.ListExercises(ctx)
	if err != nil {
		return res, fmt.Errorf("listing exercises: %w", err)
	}
	catalog := viewmodel.Catalog(exercises)
	pending := map[string]bool{}

	for _, d := range byDay(workouts) {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		existing, found := viewmodel.FindSession(sessions, d.date)
		if found && !opts.Replace {
			imp.log.Info("skipping date with a recorded session", "date", d.date)
			res.Skipped++
			continue
		}

		groups := d.groups(catalog, opts.Warmups)
		for _, g := range groups {
			if g.NewExerciseName != "" && !pending[g.NewExerciseName] {
				pending[g.NewExerciseName] = true
				res.NewExercises = append(res.NewExercises, g.NewExerciseName)
			}
		}

		if opts.DryRun {
			for _, g := range groups {
				res.Sets += len(g.Sets)
			}
		} else {
			payload, flat, err := viewmodel.BuildPayload(ctx, d.date, d.typ, groups, imp.backend, imp.view)
			catalog = append(catalog, flat.Created...)
			res.Created = append(res.Created, flat.Created...)
			if err != nil {
				return res, fmt.Errorf("importing %s: %w", d.date, err)
			}
			if _, err := imp.backend.SaveSession(ctx, existing.ID, payload); err != nil {
				return res, fmt.Errorf("saving %s: %w", d.date, err)
			}
			res.Sets += len(payload.Sets)
		}

		if found {
			res.Replaced++
		} else {
			res.Imported++
		}
		imp.log.Info("workout imported", "date", d.date, "type", d.typ, "replaced", found, "dry_run", opts.DryRun)
	}

	return res, nil
}
