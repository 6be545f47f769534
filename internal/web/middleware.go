package web

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/liftlog/liftlog/internal/api"
	"github.com/liftlog/liftlog/internal/credstore"
)

// TokenCookie holds the backend token for browser clients.
const TokenCookie = "liftlog_token"

type contextKey int

const (
	tokenKey contextKey = iota
	requestIDKey
)

// tokenFor returns the caller's backend token: the cookie, then an
// Authorization bearer header, then the stored credential.
func (s *Server) tokenFor(r *http.Request) string {
	if c, err := r.Cookie(TokenCookie); err == nil && c.Value != "" {
		return c.Value
	}
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		if tok := strings.TrimSpace(strings.TrimPrefix(h, "Bearer ")); tok != "" {
			return tok
		}
	}
	if cred, ok := s.storedCredential(r); ok {
		return cred.Token
	}
	return ""
}

// storedCredential loads the local login for requests sent without an
// Origin header. Browsers attach Origin to cross-site fetches, so pages
// on other sites never act as the stored user.
func (s *Server) storedCredential(r *http.Request) (credstore.Credential, bool) {
	if s.store == nil || r.Header.Get("Origin") != "" {
		return credstore.Credential{}, false
	}
	cred, err := s.store.Load()
	if err != nil {
		if !errors.Is(err, credstore.ErrNotFound) {
			s.log.Warn("loading stored credential", "error", err)
		}
		return credstore.Credential{}, false
	}
	return cred, true
}

// RequireToken rejects requests without a token and stores it in the context.
func (s *Server) RequireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tok := s.tokenFor(r)
		if tok == "" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not logged in"})
			return
		}
		ctx := context.WithValue(r.Context(), tokenKey, tok)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// clientFor returns the backend client bound to the request's token.
func (s *Server) clientFor(r *http.Request) *api.Client {
	tok, _ := r.Context().Value(tokenKey).(string)
	return s.client.WithToken(tok)
}

// RequestID tags each request with an id, reusing X-Request-ID when present.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		ctx := context.WithValue(r.Context(), requestIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequestLogging returns middleware that logs each request.
func RequestLogging(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(sw, r)
			reqID, _ := r.Context().Value(requestIDKey).(string)
			log.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", sw.status,
				"duration", time.Since(start).String(),
				"request_id", reqID,
			)
		})
	}
}

// cors allows cross-origin calls from the configured origins only.
// Other origins get no CORS headers, so browsers block the response.
func (s *Server) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if origin := r.Header.Get("Origin"); origin != "" {
			w.Header().Add("Vary", "Origin")
			if slices.Contains(s.cfg.AllowedOrigins, origin) {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Mcp-Session-Id")
			}
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// statusWriter wraps ResponseWriter to capture the status code.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// Flush keeps streaming responses working through the wrapper.
func (w *statusWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
