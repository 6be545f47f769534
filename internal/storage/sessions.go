package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/liftlog/liftlog/internal/models"
)

// ListSessions returns the user's sessions, oldest first, with their sets in
// recorded order.
func (db *DB) ListSessions(ctx context.Context, userID models.ID) ([]models.Session, error) {
	return db.querySessions(ctx, userID, 0)
}

// GetSession returns one of the user's sessions.
func (db *DB) GetSession(ctx context.Context, userID, id models.ID) (models.Session, error) {
	sessions, err := db.querySessions(ctx, userID, id)
	if err != nil {
		return models.Session{}, err
	}
	if len(sessions) == 0 {
		return models.Session{}, ErrNotFound
	}
	return sessions[0], nil
}

// querySessions loads sessions and their sets. A zero id loads all of the
// user's sessions.
func (db *DB) querySessions(ctx context.Context, userID, id models.ID) ([]models.Session, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, date, type FROM sessions
		 WHERE user_id = $1 AND ($2 = 0 OR id = $2)
		 ORDER BY date, id`,
		int64(userID), int64(id),
	)
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}

	sessions := []models.Session{}
	index := map[int64]int{}
	for rows.Next() {
		var sid int64
		var date time.Time
		var s models.Session
		if err := rows.Scan(&sid, &date, &s.Type); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		s.ID = models.ID(sid)
		s.Date = date.Format(models.DateLayout)
		s.Sets = []models.SetRecord{}
		index[sid] = len(sessions)
		sessions = append(sessions, s)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}
	if len(sessions) == 0 {
		return sessions, nil
	}

	setRows, err := db.Pool.Query(ctx,
		`SELECT ss.session_id, ss.reps, ss.weight, e.id, e.name, e.category
		 FROM session_sets ss
		 JOIN sessions s ON s.id = ss.session_id
		 JOIN exercises e ON e.id = ss.exercise_id
		 WHERE s.user_id = $1 AND ($2 = 0 OR s.id = $2)
		 ORDER BY ss.session_id, ss.position`,
		int64(userID), int64(id),
	)
	if err != nil {
		return nil, fmt.Errorf("querying session sets: %w", err)
	}
	defer setRows.Close()

	for setRows.Next() {
		var sid, exID int64
		var reps int
		var weight float64
		ref := &models.ExerciseRef{}
		if err := setRows.Scan(&sid, &reps, &weight, &exID, &ref.Name, &ref.Category); err != nil {
			return nil, fmt.Errorf("scanning session set: %w", err)
		}
		ref.ID = models.ID(exID)
		i, ok := index[sid]
		if !ok {
			continue
		}
		sessions[i].Sets = append(sessions[i].Sets, models.SetRecord{
			Reps:       &reps,
			Weight:     &weight,
			ExerciseID: ref.ID,
			Exercise:   ref,
		})
	}
	return sessions, setRows.Err()
}

// CreateSession stores a session and its sets in one transaction.
func (db *DB) CreateSession(ctx context.Context, userID models.ID, p models.SessionPayload) (models.Session, error) {
	date, err := time.Parse(models.DateLayout, p.Date)
	if err != nil {
		return models.Session{}, fmt.Errorf("session date %q: %w", p.Date, err)
	}

	var sid int64
	err = pgx.BeginFunc(ctx, db.Pool, func(tx pgx.Tx) error {
		if err := checkExercises(ctx, tx, userID, p.Sets); err != nil {
			return err
		}
		if err := tx.QueryRow(ctx,
			`INSERT INTO sessions (user_id, date, type) VALUES ($1, $2, $3) RETURNING id`,
			int64(userID), date, p.Type,
		).Scan(&sid); err != nil {
			return fmt.Errorf("inserting session: %w", err)
		}
		return insertSets(ctx, tx, sid, p.Sets)
	})
	if err != nil {
		return models.Session{}, err
	}
	return db.GetSession(ctx, userID, models.ID(sid))
}

// UpdateSession replaces a session's date, type and sets.
func (db *DB) UpdateSession(ctx context.Context, userID, id models.ID, p models.SessionPayload) (models.Session, error) {
	date, err := time.Parse(models.DateLayout, p.Date)
	if err != nil {
		return models.Session{}, fmt.Errorf("session date %q: %w", p.Date, err)
	}

	err = pgx.BeginFunc(ctx, db.Pool, func(tx pgx.Tx) error {
		if err := checkExercises(ctx, tx, userID, p.Sets); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx,
			`UPDATE sessions SET date = $1, type = $2, updated_at = NOW()
			 WHERE id = $3 AND user_id = $4`,
			date, p.Type, int64(id), int64(userID),
		)
		if err != nil {
			return fmt.Errorf("updating session: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		if _, err := tx.Exec(ctx, `DELETE FROM session_sets WHERE session_id = $1`, int64(id)); err != nil {
			return fmt.Errorf("clearing session sets: %w", err)
		}
		return insertSets(ctx, tx, int64(id), p.Sets)
	})
	if err != nil {
		return models.Session{}, err
	}
	return db.GetSession(ctx, userID, id)
}

// DeleteSession removes a session and its sets.
func (db *DB) DeleteSession(ctx context.Context, userID, id models.ID) error {
	tag, err := db.Pool.Exec(ctx,
		`DELETE FROM sessions WHERE id = $1 AND user_id = $2`, int64(id), int64(userID),
	)
	if err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// checkExercises verifies every set references one of the user's exercises.
func checkExercises(ctx context.Context, tx pgx.Tx, userID models.ID, sets []models.SetPayload) error {
	want := map[int64]bool{}
	for _, s := range sets {
		want[int64(s.Exercise.ID)] = true
	}
	if len(want) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(want))
	for id := range want {
		ids = append(ids, id)
	}

	var owned int
	err := tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM exercises WHERE user_id = $1 AND id = ANY($2)`,
		int64(userID), ids,
	).Scan(&owned)
	if err != nil {
		return fmt.Errorf("checking exercises: %w", err)
	}
	if owned != len(ids) {
		return ErrUnknownExercise
	}
	return nil
}

// insertSets batch-inserts sets keeping their order in position.
func insertSets(ctx context.Context, tx pgx.Tx, sessionID int64, sets []models.SetPayload) error {
	if len(sets) == 0 {
		return nil
	}

	query := `INSERT INTO session_sets (session_id, position, exercise_id, reps, weight) VALUES `
	args := make([]any, 0, len(sets)*5)
	valueStrings := make([]string, 0, len(sets))

	for i, s := range sets {
		base := i * 5
		valueStrings = append(valueStrings, fmt.Sprintf(
			"($%d,$%d,$%d,$%d,$%d)",
			base+1, base+2, base+3, base+4, base+5,
		))
		args = append(args, sessionID, i, int64(s.Exercise.ID), s.Reps, s.Weight)
	}

	query += strings.Join(valueStrings, ",")

	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("inserting session sets: %w", err)
	}
	return nil
}
