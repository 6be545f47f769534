package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/liftlog/liftlog/internal/credstore"
	"github.com/liftlog/liftlog/internal/models"
)

type LoginCmd struct {
	Username string `arg:"" help:"Account name."`
	Password string `help:"Account password." env:"LIFTLOG_PASSWORD" required:""`
}

func (c *LoginCmd) Run(app *App, ctx context.Context) error {
	res, err := app.Client.Login(ctx, models.Credentials{Username: c.Username, Password: c.Password})
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}
	cred := credstore.Credential{Username: res.Username, Token: res.Token, SavedAt: time.Now().UTC()}
	if err := app.Store.Save(cred); err != nil {
		return fmt.Errorf("saving credential: %w", err)
	}
	app.Log.Info("logged in", "username", res.Username)
	app.printf("Logged in as %s\n", res.Username)
	return nil
}

type RegisterCmd struct {
	Username string `arg:"" help:"Account name."`
	Password string `help:"Account password (at least 6 characters)." env:"LIFTLOG_PASSWORD" required:""`
}

func (c *RegisterCmd) Run(app *App, ctx context.Context) error {
	if err := app.Client.Register(ctx, models.Credentials{Username: c.Username, Password: c.Password}); err != nil {
		return fmt.Errorf("registration failed: %w", err)
	}
	app.printf("Registered %s. Run `liftlog-cli login %s` to sign in.\n", c.Username, c.Username)
	return nil
}

type LogoutCmd struct{}

func (c *LogoutCmd) Run(app *App) error {
	if err := app.Store.Delete(); err != nil {
		return fmt.Errorf("removing credential: %w", err)
	}
	app.println("Logged out")
	return nil
}
