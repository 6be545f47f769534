// Package cli implements the liftlog-cli commands. Each command is a kong
// command struct whose Run method receives the shared *App.
package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/liftlog/liftlog/internal/api"
	"github.com/liftlog/liftlog/internal/credstore"
	"github.com/liftlog/liftlog/internal/viewmodel"
)

// ErrNotLoggedIn is returned by commands that need a stored credential.
var ErrNotLoggedIn = errors.New("not logged in, run `liftlog-cli login` first")

// App is the state shared by all commands.
type App struct {
	Client    *api.Client
	Store     credstore.Store
	Templates viewmodel.Templates
	Options   viewmodel.Options
	Version   string
	Out       io.Writer
	Log       *slog.Logger
}

// authed returns the backend client bound to the stored token.
func (a *App) authed() (*api.Client, error) {
	cred, err := a.Store.Load()
	if errors.Is(err, credstore.ErrNotFound) {
		return nil, ErrNotLoggedIn
	}
	if err != nil {
		return nil, fmt.Errorf("loading credential: %w", err)
	}
	return a.Client.WithToken(cred.Token), nil
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.Out, format, args...)
}

func (a *App) println(s string) {
	fmt.Fprintln(a.Out, s)
}
