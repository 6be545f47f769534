package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/liftlog/liftlog/internal/models"
)

// Memory is an in-process store with the same semantics as DB. It backs
// the backend's demo mode and handler tests.
type Memory struct {
	mu        sync.Mutex
	nextID    int64
	users     map[string]User
	tokens    map[uuid.UUID]memToken
	exercises map[models.ID]memExercise
	sessions  map[models.ID]memSession
}

type memToken struct {
	userID  models.ID
	expires time.Time
}

type memExercise struct {
	userID models.ID
	ex     models.Exercise
}

type memSession struct {
	userID models.ID
	date   string
	typ    string
	sets   []models.SetPayload
}

// NewMemory returns an empty Memory store.
func NewMemory() *Memory {
	return &Memory{
		users:     map[string]User{},
		tokens:    map[uuid.UUID]memToken{},
		exercises: map[models.ID]memExercise{},
		sessions:  map[models.ID]memSession{},
	}
}

func (m *Memory) id() models.ID {
	m.nextID++
	return models.ID(m.nextID)
}

func (m *Memory) CreateUser(_ context.Context, username string, passwordHash []byte) (models.ID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[username]; ok {
		return 0, ErrConflict
	}
	u := User{ID: m.id(), Username: username, PasswordHash: passwordHash}
	m.users[username] = u
	return u.ID, nil
}

func (m *Memory) UserByName(_ context.Context, username string) (User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[username]
	if !ok {
		return User{}, ErrNotFound
	}
	return u, nil
}

func (m *Memory) CreateToken(_ context.Context, token uuid.UUID, userID models.ID, expires time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[token] = memToken{userID: userID, expires: expires}
	return nil
}

func (m *Memory) UserForToken(_ context.Context, token uuid.UUID, now time.Time) (models.ID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tokens[token]
	if !ok || !t.expires.After(now) {
		return 0, ErrNotFound
	}
	return t.userID, nil
}

func (m *Memory) DeleteExpiredTokens(_ context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for tok, t := range m.tokens {
		if !t.expires.After(now) {
			delete(m.tokens, tok)
			n++
		}
	}
	return n, nil
}

func (m *Memory) ListExercises(_ context.Context, userID models.ID) ([]models.Exercise, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := []models.Exercise{}
	for _, e := range m.exercises {
		if e.userID == userID {
			result = append(result, e.ex)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Name != result[j].Name {
			return result[i].Name < result[j].Name
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (m *Memory) GetExercise(_ context.Context, userID, id models.ID) (models.Exercise, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.exercises[id]
	if !ok || e.userID != userID {
		return models.Exercise{}, ErrNotFound
	}
	return e.ex, nil
}

func (m *Memory) CreateExercise(_ context.Context, userID models.ID, in models.NewExercise) (models.Exercise, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ex := models.Exercise{ID: m.id(), Name: in.Name, Category: in.Category}
	m.exercises[ex.ID] = memExercise{userID: userID, ex: ex}
	return ex, nil
}

func (m *Memory) ListSessions(_ context.Context, userID models.ID) ([]models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := []models.Session{}
	for id, s := range m.sessions {
		if s.userID == userID {
			result = append(result, m.render(id, s))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Date != result[j].Date {
			return result[i].Date < result[j].Date
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (m *Memory) GetSession(_ context.Context, userID, id models.ID) (models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok || s.userID != userID {
		return models.Session{}, ErrNotFound
	}
	return m.render(id, s), nil
}

func (m *Memory) CreateSession(_ context.Context, userID models.ID, p models.SessionPayload) (models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkExercises(userID, p.Sets); err != nil {
		return models.Session{}, err
	}
	id := m.id()
	s := memSession{userID: userID, date: p.Date, typ: p.Type, sets: append([]models.SetPayload(nil), p.Sets...)}
	m.sessions[id] = s
	return m.render(id, s), nil
}

func (m *Memory) UpdateSession(_ context.Context, userID, id models.ID, p models.SessionPayload) (models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	old, ok := m.sessions[id]
	if !ok || old.userID != userID {
		return models.Session{}, ErrNotFound
	}
	if err := m.checkExercises(userID, p.Sets); err != nil {
		return models.Session{}, err
	}
	s := memSession{userID: userID, date: p.Date, typ: p.Type, sets: append([]models.SetPayload(nil), p.Sets...)}
	m.sessions[id] = s
	return m.render(id, s), nil
}

func (m *Memory) DeleteSession(_ context.Context, userID, id models.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok || s.userID != userID {
		return ErrNotFound
	}
	delete(m.sessions, id)
	return nil
}

func (m *Memory) checkExercises(userID models.ID, sets []models.SetPayload) error {
	for _, s := range sets {
		e, ok := m.exercises[s.Exercise.ID]
		if !ok || e.userID != userID {
			return ErrUnknownExercise
		}
	}
	return nil
}

// render builds the wire form of a stored session. Callers hold m.mu.
func (m *Memory) render(id models.ID, s memSession) models.Session {
	out := models.Session{ID: id, Date: s.date, Type: s.typ, Sets: make([]models.SetRecord, 0, len(s.sets))}
	for _, set := range s.sets {
		reps, weight := set.Reps, set.Weight
		ex := m.exercises[set.Exercise.ID].ex
		out.Sets = append(out.Sets, models.SetRecord{
			Reps:       &reps,
			Weight:     &weight,
			ExerciseID: ex.ID,
			Exercise:   &models.ExerciseRef{ID: ex.ID, Name: ex.Name, Category: ex.Category},
		})
	}
	return out
}
