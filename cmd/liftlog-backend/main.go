package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/liftlog/liftlog/internal/backend"
	"github.com/liftlog/liftlog/internal/config"
	"github.com/liftlog/liftlog/internal/logging"
	"github.com/liftlog/liftlog/internal/storage"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	migrateOnly := flag.Bool("migrate-only", false, "run migrations and exit")
	memory := flag.Bool("memory", false, "keep data in memory instead of PostgreSQL (demo mode)")
	migrationsDir := flag.String("migrations", "migrations", "directory holding the SQL migrations")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, logCloser, err := logging.New(logging.Options{
		Level:   cfg.Log.SlogLevel(),
		File:    cfg.Log.File,
		Console: os.Stdout,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to set up logging: %v\n", err)
		os.Exit(1)
	}
	defer logCloser.Close()
	log.Info("liftlog-backend starting", "version", Version)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var store backend.Store
	if *memory {
		store = storage.NewMemory()
		log.Warn("demo mode: data is kept in memory and lost on exit")
	} else {
		if err := cfg.RequireDatabase(); err != nil {
			log.Error("invalid config", "error", err)
			os.Exit(1)
		}

		dsn := cfg.Database.DSN()
		version, err := storage.RunMigrations(dsn, *migrationsDir)
		if err != nil {
			log.Error("migration failed", "error", err)
			os.Exit(1)
		}
		log.Info("schema up to date", "version", version)

		if *migrateOnly {
			log.Info("migrate-only: exiting")
			return
		}

		db, err := storage.New(ctx, dsn, int32(cfg.Database.MaxConns))
		if err != nil {
			log.Error("failed to connect database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		log.Info("database connected", "host", cfg.Database.Host, "name", cfg.Database.Name)
		store = db
	}

	srv := backend.New(store, backend.Options{TokenTTL: cfg.Auth.TokenTTL}, log)
	go srv.PurgeExpiredTokens(ctx, time.Hour)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	httpSrv := &http.Server{Addr: addr, Handler: srv, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		log.Info("server starting", "addr", addr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", "error", err)
	}
	log.Info("server stopped")
}
