// Package backend is the reference implementation of the workout REST API
// the client talks to. It stores data through a Store and scopes every
// record to the user behind the bearer token.
package backend

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/liftlog/liftlog/internal/models"
	"github.com/liftlog/liftlog/internal/storage"
	"golang.org/x/crypto/bcrypt"
)

// Store is the persistence the backend needs.
type Store interface {
	CreateUser(ctx context.Context, username string, passwordHash []byte) (models.ID, error)
	UserByName(ctx context.Context, username string) (storage.User, error)
	CreateToken(ctx context.Context, token uuid.UUID, userID models.ID, expires time.Time) error
	UserForToken(ctx context.Context, token uuid.UUID, now time.Time) (models.ID, error)
	DeleteExpiredTokens(ctx context.Context, now time.Time) (int64, error)

	ListExercises(ctx context.Context, userID models.ID) ([]models.Exercise, error)
	GetExercise(ctx context.Context, userID, id models.ID) (models.Exercise, error)
	CreateExercise(ctx context.Context, userID models.ID, in models.NewExercise) (models.Exercise, error)

	ListSessions(ctx context.Context, userID models.ID) ([]models.Session, error)
	CreateSession(ctx context.Context, userID models.ID, p models.SessionPayload) (models.Session, error)
	UpdateSession(ctx context.Context, userID, id models.ID, p models.SessionPayload) (models.Session, error)
	DeleteSession(ctx context.Context, userID, id models.ID) error
}

var (
	_ Store = (*storage.DB)(nil)
	_ Store = (*storage.Memory)(nil)
)

// Options tunes authentication.
type Options struct {
	TokenTTL   time.Duration
	BcryptCost int
}

// Server holds dependencies for the REST handlers.
type Server struct {
	store  Store
	opts   Options
	log    *slog.Logger
	now    func() time.Time
	router chi.Router

	// dummyHash is compared on logins for unknown users so they take as
	// long as a wrong password.
	dummyHash   []byte
	compareHash func(hash, password []byte) error
}

// New creates a Server with all routes configured.
func New(store Store, opts Options, log *slog.Logger) *Server {
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = 30 * 24 * time.Hour
	}
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}
	s := &Server{
		store:  store,
		opts:   opts,
		log:    log,
		now:    time.Now,
		router: chi.NewRouter(),

		compareHash: bcrypt.CompareHashAndPassword,
	}
	dummy, err := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), opts.BcryptCost)
	if err != nil {
		log.Warn("generating dummy password hash", "error", err)
	}
	s.dummyHash = dummy
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(requestLogging(s.log))

	s.router.Post("/api/auth/register", s.handleRegister)
	s.router.Post("/api/auth/login", s.handleLogin)

	s.router.Group(func(r chi.Router) {
		r.Use(s.bearerAuth)
		r.Get("/api/exercises", s.handleListExercises)
		r.Post("/api/exercises", s.handleCreateExercise)
		r.Get("/api/exercises/{id}", s.handleGetExercise)
		r.Get("/api/sessions", s.handleListSessions)
		r.Post("/api/sessions", s.handleCreateSession)
		r.Put("/api/sessions/{id}", s.handleUpdateSession)
		r.Delete("/api/sessions/{id}", s.handleDeleteSession)
	})
}

// PurgeExpiredTokens deletes expired tokens every interval until ctx ends.
func (s *Server) PurgeExpiredTokens(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.store.DeleteExpiredTokens(ctx, s.now())
			if err != nil {
				s.log.Warn("purging expired tokens", "error", err)
				continue
			}
			if n > 0 {
				s.log.Info("purged expired tokens", "count", n)
			}
		}
	}
}

func requestLogging(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(sw, r)
			log.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", sw.status,
				"duration", time.Since(start).String(),
			)
		})
	}
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
