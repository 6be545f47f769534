package storage

import (
	"context"
	"fmt"

	"github.com/liftlog/liftlog/internal/models"
)

// ListExercises returns the user's catalog ordered by name.
func (db *DB) ListExercises(ctx context.Context, userID models.ID) ([]models.Exercise, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, name, category FROM exercises WHERE user_id = $1 ORDER BY name, id`,
		int64(userID),
	)
	if err != nil {
		return nil, fmt.Errorf("querying exercises: %w", err)
	}
	defer rows.Close()

	result := []models.Exercise{}
	for rows.Next() {
		var id int64
		var ex models.Exercise
		if err := rows.Scan(&id, &ex.Name, &ex.Category); err != nil {
			return nil, fmt.Errorf("scanning exercise: %w", err)
		}
		ex.ID = models.ID(id)
		result = append(result, ex)
	}
	return result, rows.Err()
}

// GetExercise returns one of the user's exercises.
func (db *DB) GetExercise(ctx context.Context, userID, id models.ID) (models.Exercise, error) {
	ex := models.Exercise{ID: id}
	err := db.Pool.QueryRow(ctx,
		`SELECT name, category FROM exercises WHERE id = $1 AND user_id = $2`,
		int64(id), int64(userID),
	).Scan(&ex.Name, &ex.Category)
	if err != nil {
		return models.Exercise{}, mapErr(err)
	}
	return ex, nil
}

// CreateExercise adds an exercise to the user's catalog.
func (db *DB) CreateExercise(ctx context.Context, userID models.ID, in models.NewExercise) (models.Exercise, error) {
	var id int64
	err := db.Pool.QueryRow(ctx,
		`INSERT INTO exercises (user_id, name, category) VALUES ($1, $2, $3) RETURNING id`,
		int64(userID), in.Name, in.Category,
	).Scan(&id)
	if err != nil {
		return models.Exercise{}, fmt.Errorf("creating exercise: %w", mapErr(err))
	}
	return models.Exercise{ID: models.ID(id), Name: in.Name, Category: in.Category}, nil
}
