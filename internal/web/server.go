package web

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/liftlog/liftlog/internal/api"
	"github.com/liftlog/liftlog/internal/credstore"
	"github.com/liftlog/liftlog/internal/viewmodel"
	"tailscale.com/client/tailscale/apitype"
)

// WhoIser resolves the tailnet identity behind a remote address.
// *local.Client from tsnet satisfies it.
type WhoIser interface {
	WhoIs(ctx context.Context, remoteAddr string) (*apitype.WhoIsResponse, error)
}

// Config carries the view-model settings for the handlers.
type Config struct {
	Templates viewmodel.Templates
	Options   viewmodel.Options
	// SecureCookies marks the token cookie Secure.
	SecureCookies bool
	// AllowedOrigins may call the API cross-origin. Empty allows none.
	AllowedOrigins []string
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	client *api.Client
	store  credstore.Store
	cfg    Config
	log    *slog.Logger
	whois  WhoIser
	router chi.Router
}

// New creates a new Server with all routes configured. store may be nil;
// when set, its credential serves requests that carry no token.
func New(client *api.Client, store credstore.Store, cfg Config, log *slog.Logger) *Server {
	s := &Server{
		client: client,
		store:  store,
		cfg:    cfg,
		log:    log,
		router: chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// SetTailscale enables tailnet identities on /api/v1/me.
func (s *Server) SetTailscale(w WhoIser) {
	s.whois = w
}

// MountMCP serves h at /mcp. The caller's token is resolved the same way as
// for the REST routes.
func (s *Server) MountMCP(h func(tokenFor func(*http.Request) string) http.Handler) {
	s.router.Handle("/mcp", h(s.tokenFor))
}

func (s *Server) routes() {
	s.router.Use(RequestID)
	s.router.Use(RequestLogging(s.log))
	s.router.Use(s.cors)

	s.router.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/login", s.handleLogin)
		r.Post("/register", s.handleRegister)
		r.Post("/logout", s.handleLogout)
	})
	s.router.Get("/api/v1/me", s.handleMe)

	s.router.Group(func(r chi.Router) {
		r.Use(s.RequireToken)
		r.Get("/api/v1/calendar", s.handleCalendar)
		r.Get("/api/v1/sessions/{date}", s.handleGetSession)
		r.Post("/api/v1/sessions/{date}/template", s.handleApplyTemplate)
		r.Put("/api/v1/sessions/{date}", s.handleSaveSession)
		r.Delete("/api/v1/sessions/{date}", s.handleDeleteSession)
		r.Get("/api/v1/exercises", s.handleListExercises)
		r.Post("/api/v1/exercises", s.handleCreateExercise)
		r.Get("/api/v1/history/{exerciseID}", s.handleHistory)
		r.Get("/api/v1/templates", s.handleTemplates)
		r.Post("/api/v1/import", s.handleImport)
	})
}
