package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/liftlog/liftlog/internal/models"
	"github.com/liftlog/liftlog/internal/viewmodel"
)

func parseDateArg(raw string) (string, error) {
	if strings.EqualFold(raw, "today") {
		return time.Now().Format(models.DateLayout), nil
	}
	key, ok := models.NormalizeDate(raw)
	if !ok {
		return "", fmt.Errorf("invalid date %q, want YYYY-MM-DD", raw)
	}
	return key, nil
}

type CalendarCmd struct {
	Month string `help:"Only show this month (YYYY-MM). Empty shows everything."`
}

func (c *CalendarCmd) Run(app *App, ctx context.Context) error {
	client, err := app.authed()
	if err != nil {
		return err
	}
	sessions, err := client.ListSessions(ctx)
	if err != nil {
		return fmt.Errorf("listing sessions: %w", err)
	}

	events := viewmodel.CalendarEvents(sessions, app.Options)
	if c.Month != "" {
		month, err := time.Parse("2006-01", c.Month)
		if err != nil {
			return fmt.Errorf("invalid month %q, want YYYY-MM", c.Month)
		}
		events = viewmodel.EventsInMonth(events, month)
	}
	if len(events) == 0 {
		app.println("No workouts recorded")
		return nil
	}
	app.println(renderEvents(events))
	return nil
}

type ShowCmd struct {
	Date string `arg:"" help:"Session date (YYYY-MM-DD or today)."`
}

func (c *ShowCmd) Run(app *App, ctx context.Context) error {
	key, err := parseDateArg(c.Date)
	if err != nil {
		return err
	}
	client, err := app.authed()
	if err != nil {
		return err
	}
	sessions, err := client.ListSessions(ctx)
	if err != nil {
		return fmt.Errorf("listing sessions: %w", err)
	}
	exercises, err := client.ListExercises(ctx)
	if err != nil {
		return fmt.Errorf("listing exercises: %w", err)
	}

	editor := viewmodel.BuildEditor(sessions, key)
	if !editor.Exists {
		app.printf("No workout on %s\n", key)
		return nil
	}
	app.println(titleStyle.Render(fmt.Sprintf("%s  %s", key, editor.Type)))
	app.println(renderEditor(editor, exercises))
	return nil
}

// SaveCmd adds sets to the workout on a date. Sets already recorded that
// day are kept unless --replace is given.
type SaveCmd struct {
	Date     string   `arg:"" help:"Session date (YYYY-MM-DD or today)."`
	Type     string   `help:"Workout type. Defaults to the recorded type, then the template name, then the configured default."`
	Template string   `help:"Add the sets of this template (see the templates in the config)."`
	Set      []string `help:"Sets for one exercise, e.g. \"Bench Press=12x60,8x70\". Repeatable." sep:"none"`
	Replace  bool     `help:"Discard the sets already recorded on the date."`
}

func (c *SaveCmd) Run(app *App, ctx context.Context) error {
	key, err := parseDateArg(c.Date)
	if err != nil {
		return err
	}
	client, err := app.authed()
	if err != nil {
		return err
	}
	exercises, err := client.ListExercises(ctx)
	if err != nil {
		return fmt.Errorf("listing exercises: %w", err)
	}
	catalog := viewmodel.Catalog(exercises)
	sessions, err := client.ListSessions(ctx)
	if err != nil {
		return fmt.Errorf("listing sessions: %w", err)
	}
	existing, _ := viewmodel.FindSession(sessions, key)

	var groups []viewmodel.ExerciseGroup
	var created []models.Exercise
	sessionType := c.Type
	if !c.Replace {
		editor := viewmodel.BuildEditor(sessions, key)
		groups = editor.Groups
		if sessionType == "" {
			sessionType = editor.Type
		}
	}
	if c.Template != "" {
		if _, ok := app.Templates.Lookup(c.Template); !ok {
			return fmt.Errorf("unknown template %q (have %s)", c.Template, strings.Join(app.Templates.Labels(), ", "))
		}
		res, err := viewmodel.LoadTemplate(ctx, c.Template, app.Templates, catalog, client, app.Options)
		if err != nil {
			return fmt.Errorf("loading template: %w", err)
		}
		groups = append(groups, res.Groups...)
		catalog, created = res.Catalog, res.Created
		if sessionType == "" {
			sessionType = c.Template
		}
	}
	for _, v := range c.Set {
		g, err := ParseSetFlag(v, catalog)
		if err != nil {
			return err
		}
		groups = append(groups, g)
	}

	payload, flat, err := viewmodel.BuildPayload(ctx, key, sessionType, groups, client, app.Options)
	if err != nil {
		return fmt.Errorf("preparing session: %w", err)
	}
	saved, err := client.SaveSession(ctx, existing.ID, payload)
	if err != nil {
		return fmt.Errorf("saving session: %w", err)
	}

	for _, ex := range append(created, flat.Created...) {
		app.printf("Created exercise %s (#%s)\n", ex.Name, ex.ID)
	}
	verb := "Saved"
	if existing.ID.Valid() {
		verb = "Updated"
	}
	app.Log.Info("session saved", "date", key, "session_id", saved.ID, "sets", len(payload.Sets))
	app.printf("%s %s workout on %s with %d sets\n", verb, payload.Type, key, len(payload.Sets))
	return nil
}

type DeleteCmd struct {
	Date string `arg:"" help:"Session date (YYYY-MM-DD or today)."`
}

func (c *DeleteCmd) Run(app *App, ctx context.Context) error {
	key, err := parseDateArg(c.Date)
	if err != nil {
		return err
	}
	client, err := app.authed()
	if err != nil {
		return err
	}
	sessions, err := client.ListSessions(ctx)
	if err != nil {
		return fmt.Errorf("listing sessions: %w", err)
	}
	existing, found := viewmodel.FindSession(sessions, key)
	if !found || !existing.ID.Valid() {
		return fmt.Errorf("no workout on %s", key)
	}
	if err := client.DeleteSession(ctx, existing.ID); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	app.printf("Deleted workout on %s\n", key)
	return nil
}
