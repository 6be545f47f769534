package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/liftlog/liftlog/internal/models"
)

// ListSessions returns every session of the authenticated user.
func (c *Client) ListSessions(ctx context.Context) ([]models.Session, error) {
	body, err := c.do(ctx, http.MethodGet, "/api/sessions", nil)
	if err != nil {
		return nil, err
	}
	sessions, err := models.DecodeEnvelope[[]models.Session](body)
	if err != nil {
		return nil, fmt.Errorf("api: decode sessions: %w", err)
	}
	if sessions == nil {
		sessions = []models.Session{}
	}
	return sessions, nil
}

// ListExercises returns the exercise catalog.
func (c *Client) ListExercises(ctx context.Context) ([]models.Exercise, error) {
	body, err := c.do(ctx, http.MethodGet, "/api/exercises", nil)
	if err != nil {
		return nil, err
	}
	exercises, err := models.DecodeEnvelope[[]models.Exercise](body)
	if err != nil {
		return nil, fmt.Errorf("api: decode exercises: %w", err)
	}
	if exercises == nil {
		exercises = []models.Exercise{}
	}
	return exercises, nil
}

// GetExercise returns one exercise.
func (c *Client) GetExercise(ctx context.Context, id models.ID) (models.Exercise, error) {
	body, err := c.do(ctx, http.MethodGet, "/api/exercises/"+id.String(), nil)
	if err != nil {
		return models.Exercise{}, err
	}
	ex, err := models.DecodeEnvelope[models.Exercise](body)
	if err != nil {
		return models.Exercise{}, fmt.Errorf("api: decode exercise: %w", err)
	}
	return ex, nil
}

// CreateExercise adds an exercise to the catalog and returns it with the
// id the backend assigned.
func (c *Client) CreateExercise(ctx context.Context, ex models.NewExercise) (models.Exercise, error) {
	body, err := c.do(ctx, http.MethodPost, "/api/exercises", ex)
	if err != nil {
		return models.Exercise{}, err
	}
	created, err := models.DecodeEnvelope[models.Exercise](body)
	if err != nil {
		return models.Exercise{}, fmt.Errorf("api: decode created exercise: %w", err)
	}
	if !created.ID.Valid() {
		return models.Exercise{}, fmt.Errorf("api: created exercise %q has no id", ex.Name)
	}
	return created, nil
}

// SaveSession creates the session when id is unset and replaces it otherwise.
func (c *Client) SaveSession(ctx context.Context, id models.ID, p models.SessionPayload) (models.Session, error) {
	method, path := http.MethodPost, "/api/sessions"
	if id.Valid() {
		method, path = http.MethodPut, "/api/sessions/"+id.String()
	}
	body, err := c.do(ctx, method, path, p)
	if err != nil {
		return models.Session{}, err
	}
	saved, err := models.DecodeEnvelope[models.Session](body)
	if err != nil {
		return models.Session{}, fmt.Errorf("api: decode saved session: %w", err)
	}
	return saved, nil
}

// DeleteSession removes a session.
func (c *Client) DeleteSession(ctx context.Context, id models.ID) error {
	if !id.Valid() {
		return fmt.Errorf("api: delete session: invalid id %d", id)
	}
	_, err := c.do(ctx, http.MethodDelete, "/api/sessions/"+id.String(), nil)
	return err
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, creds models.Credentials) (models.LoginResult, error) {
	body, err := c.do(ctx, http.MethodPost, "/api/auth/login", creds)
	if err != nil {
		return models.LoginResult{}, err
	}
	res, err := models.DecodeEnvelope[models.LoginResult](body)
	if err != nil {
		return models.LoginResult{}, fmt.Errorf("api: decode login: %w", err)
	}
	if res.Token == "" {
		return models.LoginResult{}, errors.New("api: login response carried no token")
	}
	if res.Username == "" {
		res.Username = creds.Username
	}
	return res, nil
}

// Register creates an account. It does not log in.
func (c *Client) Register(ctx context.Context, creds models.Credentials) error {
	_, err := c.do(ctx, http.MethodPost, "/api/auth/register", creds)
	return err
}
