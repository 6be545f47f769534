package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/liftlog/liftlog/internal/api"
	"github.com/liftlog/liftlog/internal/cli"
	"github.com/liftlog/liftlog/internal/config"
	"github.com/liftlog/liftlog/internal/credstore"
	"github.com/liftlog/liftlog/internal/logging"
)

// Version is set at build time via -ldflags.
var Version = "dev"

var CLI struct {
	Version kong.VersionFlag
	Config  string `help:"Config file path. Empty uses defaults plus LIFTLOG_* variables." type:"path" env:"LIFTLOG_CONFIG"`

	Login     cli.LoginCmd     `cmd:"" help:"Log in and remember the session."`
	Register  cli.RegisterCmd  `cmd:"" help:"Create an account."`
	Logout    cli.LogoutCmd    `cmd:"" help:"Forget the stored session."`
	Calendar  cli.CalendarCmd  `cmd:"" help:"List recorded workouts." default:"1"`
	Show      cli.ShowCmd      `cmd:"" help:"Show one day's workout grouped by exercise."`
	Save      cli.SaveCmd      `cmd:"" help:"Record or replace a day's workout."`
	Delete    cli.DeleteCmd    `cmd:"" help:"Delete a day's workout."`
	Exercises cli.ExercisesCmd `cmd:"" help:"List the exercise catalog."`
	History   cli.HistoryCmd   `cmd:"" help:"Show every recorded set of an exercise."`
	Import    cli.ImportCmd    `cmd:"" help:"Import an Alpha Progression CSV export."`
	MCP       cli.MCPCmd       `cmd:"" name:"mcp" help:"Serve MCP tools on stdio."`
}

func main() {
	kctx := kong.Parse(&CLI,
		kong.Name("liftlog-cli"),
		kong.Description("Workout log from the terminal"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{"version": Version},
	)

	cfg, err := config.Load(CLI.Config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.RequireAPI(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v (set LIFTLOG_API_BASE_URL)\n", err)
		os.Exit(1)
	}

	// Logs only go to the file; stdout belongs to the command (and to the
	// MCP protocol for the mcp command).
	log, logCloser, err := logging.New(logging.Options{Level: cfg.Log.SlogLevel(), File: cfg.Log.File})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer logCloser.Close()

	opts, err := cfg.Editor.ViewOptions()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	templates, err := cfg.Editor.Templates()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	store, err := credstore.Open(cfg.Auth)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	app := &cli.App{
		Client:    api.New(cfg.API.BaseURL, cfg.API.Timeout),
		Store:     store,
		Templates: templates,
		Options:   opts,
		Version:   Version,
		Out:       os.Stdout,
		Log:       log,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	kctx.BindTo(ctx, (*context.Context)(nil))
	if err := kctx.Run(app); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", api.Message(err))
		stop()
		store.Close()
		logCloser.Close()
		os.Exit(1)
	}
}
