package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/liftlog/liftlog/internal/models"
	"github.com/liftlog/liftlog/internal/storage"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 6

type contextKey int

const userIDKey contextKey = iota

func userIDFromContext(r *http.Request) models.ID {
	id, _ := r.Context().Value(userIDKey).(models.ID)
	return id
}

// bearerAuth resolves "Authorization: Bearer <token>" to a user.
func (s *Server) bearerAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			writeError(w, http.StatusUnauthorized, "missing authorization header")
			return
		}
		parts := strings.Split(header, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			writeError(w, http.StatusUnauthorized, "invalid authorization header format")
			return
		}
		token, err := uuid.Parse(parts[1])
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		userID, err := s.store.UserForToken(r.Context(), token, s.now())
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}
		if err != nil {
			s.log.Error("token lookup", "error", err)
			writeError(w, http.StatusInternalServerError, "token lookup failed")
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func decodeCredentials(w http.ResponseWriter, r *http.Request) (models.Credentials, bool) {
	var creds models.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return creds, false
	}
	creds.Username = strings.TrimSpace(creds.Username)
	if creds.Username == "" || creds.Password == "" {
		writeError(w, http.StatusBadRequest, "username and password are required")
		return creds, false
	}
	return creds, true
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	creds, ok := decodeCredentials(w, r)
	if !ok {
		return
	}
	if len(creds.Password) < minPasswordLength {
		writeError(w, http.StatusBadRequest, "password must be at least 6 characters")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(creds.Password), s.opts.BcryptCost)
	if err != nil {
		s.log.Error("hashing password", "error", err)
		writeError(w, http.StatusInternalServerError, "registration failed")
		return
	}

	id, err := s.store.CreateUser(r.Context(), creds.Username, hash)
	if errors.Is(err, storage.ErrConflict) {
		writeError(w, http.StatusConflict, "username already taken")
		return
	}
	if err != nil {
		s.writeStoreError(w, "create user", err)
		return
	}

	s.log.Info("user registered", "user_id", id, "username", creds.Username)
	writeData(w, http.StatusCreated, map[string]any{"id": id, "username": creds.Username})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	creds, ok := decodeCredentials(w, r)
	if !ok {
		return
	}

	user, err := s.store.UserByName(r.Context(), creds.Username)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		s.writeStoreError(w, "find user", err)
		return
	}
	hash := s.dummyHash
	if err == nil {
		hash = user.PasswordHash
	}
	if s.compareHash(hash, []byte(creds.Password)) != nil || err != nil {
		writeError(w, http.StatusUnauthorized, "invalid username or password")
		return
	}

	token := uuid.New()
	if err := s.store.CreateToken(r.Context(), token, user.ID, s.now().Add(s.opts.TokenTTL)); err != nil {
		s.writeStoreError(w, "create token", err)
		return
	}

	writeData(w, http.StatusOK, models.LoginResult{Token: token.String(), Username: user.Username})
}
