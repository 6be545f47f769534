package mcp

import (
	"context"

	"github.com/liftlog/liftlog/internal/api"
	"github.com/liftlog/liftlog/internal/models"
)

// DataSource abstracts the backend for MCP tools. *api.Client satisfies it.
type DataSource interface {
	ListSessions(ctx context.Context) ([]models.Session, error)
	ListExercises(ctx context.Context) ([]models.Exercise, error)
	GetExercise(ctx context.Context, id models.ID) (models.Exercise, error)
}

// Compile-time check: *api.Client satisfies DataSource.
var _ DataSource = (*api.Client)(nil)

// Source resolves the DataSource for the caller in ctx.
type Source func(ctx context.Context) (DataSource, error)

// Static always returns ds. The stdio server uses it with the stored login.
func Static(ds DataSource) Source {
	return func(context.Context) (DataSource, error) { return ds, nil }
}

// ClientSource binds client to the token carried in ctx.
func ClientSource(client *api.Client) Source {
	return func(ctx context.Context) (DataSource, error) {
		tok := TokenFromContext(ctx)
		if tok == "" {
			return nil, ErrNoToken
		}
		return client.WithToken(tok), nil
	}
}
