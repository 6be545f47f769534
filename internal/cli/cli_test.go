package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/liftlog/liftlog/internal/api"
	"github.com/liftlog/liftlog/internal/backend"
	"github.com/liftlog/liftlog/internal/credstore"
	"github.com/liftlog/liftlog/internal/models"
	"github.com/liftlog/liftlog/internal/storage"
	"github.com/liftlog/liftlog/internal/viewmodel"
	"golang.org/x/crypto/bcrypt"
)

// newTestApp wires an App to an in-memory backend and a SQLite credential
// store in a temp dir.
func newTestApp(t *testing.T) (*App, *bytes.Buffer) {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	ts := httptest.NewServer(backend.New(storage.NewMemory(), backend.Options{BcryptCost: bcrypt.MinCost}, log))
	t.Cleanup(ts.Close)

	store, err := credstore.OpenSQLite(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })

	out := &bytes.Buffer{}
	return &App{
		Client:    api.New(ts.URL, 5*time.Second),
		Store:     store,
		Templates: viewmodel.DefaultTemplates(),
		Options:   viewmodel.DefaultOptions(),
		Out:       out,
		Log:       log,
	}, out
}

func loginApp(t *testing.T, app *App) {
	t.Helper()
	ctx := context.Background()
	if err := (&RegisterCmd{Username: "ana", Password: "secret-pw"}).Run(app, ctx); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := (&LoginCmd{Username: "ana", Password: "secret-pw"}).Run(app, ctx); err != nil {
		t.Fatalf("login: %v", err)
	}
}

// TestParseSetFlag verifies the NAME=REPSxWEIGHT syntax.
func TestParseSetFlag(t *testing.T) {
	catalog := viewmodel.Catalog{{ID: 3, Name: "Bench Press"}}

	g, err := ParseSetFlag("Bench Press=12x60, 8X70.5,10", catalog)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g.ExerciseID != 3 || g.NewExerciseName != "" {
		t.Errorf("group = %+v, want existing exercise 3", g)
	}
	want := []viewmodel.EditableSet{{Reps: "12", Weight: "60"}, {Reps: "8", Weight: "70.5"}, {Reps: "10", Weight: ""}}
	if len(g.Sets) != len(want) {
		t.Fatalf("sets = %+v, want %+v", g.Sets, want)
	}
	for i := range want {
		if g.Sets[i] != want[i] {
			t.Errorf("set %d = %+v, want %+v", i, g.Sets[i], want[i])
		}
	}

	g, err = ParseSetFlag("Pull-ups=10", catalog)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g.ExerciseID.Valid() || g.NewExerciseName != "Pull-ups" {
		t.Errorf("group = %+v, want new exercise Pull-ups", g)
	}

	for _, bad := range []string{"12x60", "=12x60", "Squat=", "Squat= , "} {
		if _, err := ParseSetFlag(bad, catalog); err == nil {
			t.Errorf("ParseSetFlag(%q): expected error", bad)
		}
	}
}

// TestCommandsRequireLogin verifies data commands fail cleanly without a
// stored credential.
func TestCommandsRequireLogin(t *testing.T) {
	app, _ := newTestApp(t)
	ctx := context.Background()

	if err := (&CalendarCmd{}).Run(app, ctx); !errors.Is(err, ErrNotLoggedIn) {
		t.Errorf("calendar: err = %v, want ErrNotLoggedIn", err)
	}
	if err := (&ExercisesCmd{}).Run(app, ctx); !errors.Is(err, ErrNotLoggedIn) {
		t.Errorf("exercises: err = %v, want ErrNotLoggedIn", err)
	}
}

// TestLoginLogout verifies login persists the token and logout removes it.
func TestLoginLogout(t *testing.T) {
	app, out := newTestApp(t)
	loginApp(t, app)

	cred, err := app.Store.Load()
	if err != nil || cred.Username != "ana" || cred.Token == "" {
		t.Fatalf("stored credential = %+v, %v", cred, err)
	}
	if !strings.Contains(out.String(), "Logged in as ana") {
		t.Errorf("output = %q", out.String())
	}

	if err := (&LogoutCmd{}).Run(app); err != nil {
		t.Fatal(err)
	}
	if _, err := app.Store.Load(); !errors.Is(err, credstore.ErrNotFound) {
		t.Errorf("after logout: err = %v, want ErrNotFound", err)
	}

	err = (&LoginCmd{Username: "ana", Password: "wrong-pw"}).Run(app, context.Background())
	if !api.IsUnauthorized(err) {
		t.Errorf("bad password: err = %v, want unauthorized", err)
	}
}

// TestSaveShowDelete verifies a session saved from a template plus --set
// flags can be shown, updated and deleted.
func TestSaveShowDelete(t *testing.T) {
	app, out := newTestApp(t)
	loginApp(t, app)
	ctx := context.Background()

	save := &SaveCmd{Date: "2024-05-01", Template: "Push", Set: []string{"Curl=10x12.5"}}
	if err := save.Run(app, ctx); err != nil {
		t.Fatalf("save: %v", err)
	}
	got := out.String()
	for _, want := range []string{"Created exercise Bench Press", "Created exercise Curl", "Saved Push workout on 2024-05-01 with 9 sets"} {
		if !strings.Contains(got, want) {
			t.Errorf("save output missing %q:\n%s", want, got)
		}
	}

	out.Reset()
	if err := (&ShowCmd{Date: "2024-05-01"}).Run(app, ctx); err != nil {
		t.Fatalf("show: %v", err)
	}
	for _, want := range []string{"Push", "Bench Press", "Triceps extensions", "Curl", "12.5"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("show output missing %q:\n%s", want, out.String())
		}
	}

	out.Reset()
	if err := (&SaveCmd{Date: "2024-05-01", Set: []string{"Curl=8x15"}}).Run(app, ctx); err != nil {
		t.Fatalf("second save: %v", err)
	}
	if !strings.Contains(out.String(), "Updated Push workout on 2024-05-01 with 10 sets") {
		t.Errorf("second save output = %q, want recorded sets kept", out.String())
	}
	if strings.Contains(out.String(), "Created exercise") {
		t.Errorf("second save created exercises: %q", out.String())
	}

	out.Reset()
	if err := (&SaveCmd{Date: "2024-05-01", Type: "Arms", Set: []string{"Curl=8x15"}, Replace: true}).Run(app, ctx); err != nil {
		t.Fatalf("replace save: %v", err)
	}
	if !strings.Contains(out.String(), "Updated Arms workout on 2024-05-01 with 1 sets") {
		t.Errorf("replace save output = %q", out.String())
	}
	out.Reset()
	if err := (&ShowCmd{Date: "2024-05-01"}).Run(app, ctx); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(out.String(), "Bench Press") {
		t.Errorf("show after replace still lists Bench Press:\n%s", out.String())
	}

	if err := (&DeleteCmd{Date: "2024-05-01"}).Run(app, ctx); err != nil {
		t.Fatalf("delete: %v", err)
	}
	out.Reset()
	if err := (&ShowCmd{Date: "2024-05-01"}).Run(app, ctx); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "No workout on 2024-05-01") {
		t.Errorf("show after delete = %q", out.String())
	}
	if err := (&DeleteCmd{Date: "2024-05-01"}).Run(app, ctx); err == nil {
		t.Error("second delete: expected error")
	}
}

// TestSaveUnknownTemplate verifies an unknown template is rejected before
// anything is written.
func TestSaveUnknownTemplate(t *testing.T) {
	app, _ := newTestApp(t)
	loginApp(t, app)

	err := (&SaveCmd{Date: "2024-05-01", Template: "Yoga"}).Run(app, context.Background())
	if err == nil || !strings.Contains(err.Error(), "unknown template") {
		t.Errorf("err = %v, want unknown template", err)
	}
	client, _ := app.authed()
	if exercises, _ := client.ListExercises(context.Background()); len(exercises) != 0 {
		t.Errorf("exercises = %+v, want none", exercises)
	}
}

// TestCalendarAndHistory verifies the calendar month filter and the history
// table.
func TestCalendarAndHistory(t *testing.T) {
	app, out := newTestApp(t)
	loginApp(t, app)
	ctx := context.Background()

	for _, s := range []*SaveCmd{
		{Date: "2024-05-30", Type: "Legs", Set: []string{"Squat=5x100"}},
		{Date: "2024-06-02", Type: "Legs", Set: []string{"Squat=5x105,3x110"}},
	} {
		if err := s.Run(app, ctx); err != nil {
			t.Fatal(err)
		}
	}

	out.Reset()
	if err := (&CalendarCmd{Month: "2024-06"}).Run(app, ctx); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "2024-06-02") || strings.Contains(out.String(), "2024-05-30") {
		t.Errorf("calendar output = %q", out.String())
	}
	if err := (&CalendarCmd{Month: "June"}).Run(app, ctx); err == nil {
		t.Error("bad month: expected error")
	}

	client, _ := app.authed()
	exercises, err := client.ListExercises(ctx)
	if err != nil || len(exercises) != 1 {
		t.Fatalf("exercises = %+v, %v", exercises, err)
	}

	out.Reset()
	if err := (&HistoryCmd{ExerciseID: int64(exercises[0].ID)}).Run(app, ctx); err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"Squat", "5 reps @ 105kg", "3 reps @ 110kg", viewmodel.AbsentLabel} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("history output missing %q:\n%s", want, out.String())
		}
	}

	if err := (&HistoryCmd{ExerciseID: 0}).Run(app, ctx); err == nil {
		t.Error("zero id: expected error")
	}
}

// TestExercisesCmd verifies the catalog listing.
func TestExercisesCmd(t *testing.T) {
	app, out := newTestApp(t)
	loginApp(t, app)
	ctx := context.Background()

	out.Reset()
	if err := (&ExercisesCmd{}).Run(app, ctx); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "No exercises yet") {
		t.Errorf("empty output = %q", out.String())
	}

	client, _ := app.authed()
	if _, err := client.CreateExercise(ctx, models.NewExercise{Name: "Deadlift", Category: "Back"}); err != nil {
		t.Fatal(err)
	}
	out.Reset()
	if err := (&ExercisesCmd{}).Run(app, ctx); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "Deadlift") || !strings.Contains(out.String(), "Back") {
		t.Errorf("output = %q", out.String())
	}
}

const alphaExport = `"Push · Day 1";"2024-07-01 18:00 h";"1:00 hr"
"1. Bench Press · Barbell · 6 reps";"WU1 · 40 kg · 10 reps"
#;KG;REPS;RIR
1;80;6;1
2;80;6;0
`

// TestImportCmd verifies an export is imported once and skipped after.
func TestImportCmd(t *testing.T) {
	app, out := newTestApp(t)
	loginApp(t, app)
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "export.csv")
	if err := os.WriteFile(path, []byte(alphaExport), 0o644); err != nil {
		t.Fatal(err)
	}

	out.Reset()
	if err := (&ImportCmd{File: path, DryRun: true}).Run(app, ctx); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "[dry run] Imported 1, replaced 0, skipped 0 workouts (2 sets)") {
		t.Errorf("dry run output = %q", out.String())
	}

	out.Reset()
	if err := (&ImportCmd{File: path, Warmups: true}).Run(app, ctx); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "Imported 1, replaced 0, skipped 0 workouts (3 sets)") ||
		!strings.Contains(out.String(), "New exercises: Bench Press") {
		t.Errorf("import output = %q", out.String())
	}

	out.Reset()
	if err := (&ImportCmd{File: path}).Run(app, ctx); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "skipped 1") {
		t.Errorf("second import output = %q", out.String())
	}
}
