package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/liftlog/liftlog/internal/api"
	"github.com/liftlog/liftlog/internal/config"
	"github.com/liftlog/liftlog/internal/credstore"
	"github.com/liftlog/liftlog/internal/logging"
	"github.com/liftlog/liftlog/internal/mcp"
	"github.com/liftlog/liftlog/internal/web"
	"tailscale.com/tsnet"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
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
	log.Info("liftlog starting", "version", Version)

	if err := cfg.RequireAPI(); err != nil {
		log.Error("invalid config", "error", err)
		os.Exit(1)
	}

	opts, err := cfg.Editor.ViewOptions()
	if err != nil {
		log.Error("invalid editor config", "error", err)
		os.Exit(1)
	}
	templates, err := cfg.Editor.Templates()
	if err != nil {
		log.Error("failed to load templates", "error", err)
		os.Exit(1)
	}

	client := api.New(cfg.API.BaseURL, cfg.API.Timeout)

	// The stored CLI login only stands in for callers on this machine; on a
	// tailnet every user must bring their own token.
	var store credstore.Store
	if !cfg.Tailscale.Enabled {
		store, err = credstore.Open(cfg.Auth)
		if err != nil {
			log.Warn("credential store unavailable, requests need a token", "error", err)
		} else {
			defer store.Close()
		}
	}

	srv := web.New(client, store, web.Config{
		Templates:      templates,
		Options:        opts,
		SecureCookies:  cfg.Tailscale.Enabled,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	}, log)

	mcpServer := mcp.New(mcp.ClientSource(client), mcp.Config{
		Templates: templates,
		Options:   opts,
		Version:   Version,
	}, log)
	srv.MountMCP(func(tokenFor func(*http.Request) string) http.Handler {
		return mcp.HTTPHandler(mcpServer, tokenFor)
	})

	// Listen on the tailnet or on plain TCP
	var listener net.Listener
	var tsServer *tsnet.Server

	if cfg.Tailscale.Enabled {
		tsServer = &tsnet.Server{
			Hostname: cfg.Tailscale.Hostname,
			Dir:      cfg.Tailscale.StateDir,
			Logf:     func(format string, args ...any) { log.Debug(fmt.Sprintf(format, args...), "component", "tsnet") },
		}
		if err := tsServer.Start(); err != nil {
			log.Error("tsnet start failed", "error", err)
			os.Exit(1)
		}
		defer tsServer.Close()

		lc, err := tsServer.LocalClient()
		if err != nil {
			log.Error("tsnet local client failed", "error", err)
			os.Exit(1)
		}
		srv.SetTailscale(lc)

		listener, err = tsServer.Listen("tcp", ":80")
		if err != nil {
			log.Error("tsnet listen failed", "error", err)
			os.Exit(1)
		}
		log.Info("tsnet server starting", "hostname", cfg.Tailscale.Hostname)
	} else {
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		listener, err = net.Listen("tcp", addr)
		if err != nil {
			log.Error("listen failed", "addr", addr, "error", err)
			os.Exit(1)
		}
		log.Info("server starting", "addr", addr, "backend", client.BaseURL())
	}

	httpSrv := &http.Server{Handler: srv, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		if err := httpSrv.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info("shutting down", "signal", sig)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", "error", err)
	}
	log.Info("server stopped")
}
