package mcp

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/liftlog/liftlog/internal/viewmodel"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

type contextKey int

const tokenKey contextKey = iota

// ErrNoToken is returned by a Source when the caller is not logged in.
var ErrNoToken = errors.New("not logged in")

// TokenFromContext extracts the bearer token injected by the transport layer.
func TokenFromContext(ctx context.Context) string {
	tok, _ := ctx.Value(tokenKey).(string)
	return tok
}

// WithToken returns a context carrying the caller's bearer token.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey, token)
}

// Config carries what the handlers need besides the data source.
type Config struct {
	Templates viewmodel.Templates
	Options   viewmodel.Options
	Version   string
}

// New creates an MCP server with all tools and resources registered.
func New(source Source, cfg Config, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("liftlog", cfg.Version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("liftlog workout log. Browse the exercise catalog, the workout calendar, a day's session grouped by exercise, and per-exercise history. All data is scoped to the logged-in user."),
	)

	h := &handlers{source: source, cfg: cfg, log: log}

	s.AddTools(
		server.ServerTool{Tool: toolListExercises, Handler: h.listExercises},
		server.ServerTool{Tool: toolGetCalendar, Handler: h.getCalendar},
		server.ServerTool{Tool: toolGetSession, Handler: h.getSession},
		server.ServerTool{Tool: toolGetExerciseHistory, Handler: h.getExerciseHistory},
	)

	s.AddResources(
		server.ServerResource{Resource: resTemplates, Handler: h.templates},
	)

	return s
}

// HTTPHandler serves s over streamable HTTP. tokenFor extracts the caller's
// token from each request.
func HTTPHandler(s *server.MCPServer, tokenFor func(*http.Request) string) http.Handler {
	return server.NewStreamableHTTPServer(s,
		server.WithStateLess(true),
		server.WithHTTPContextFunc(func(ctx context.Context, r *http.Request) context.Context {
			return WithToken(ctx, tokenFor(r))
		}),
	)
}

// ServeStdio serves s on stdin/stdout until EOF.
func ServeStdio(s *server.MCPServer) error {
	return server.ServeStdio(s)
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	source Source
	cfg    Config
	log    *slog.Logger
}

// --- Resource definitions ---

var resTemplates = mcp.NewResource(
	"liftlog://templates",
	"Workout Templates",
	mcp.WithResourceDescription("Predefined workout templates by session type, with their exercises and prescribed sets"),
	mcp.WithMIMEType("application/json"),
)
