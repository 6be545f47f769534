package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/liftlog/liftlog/internal/models"
)

// userCookie remembers the username for /api/v1/me.
const userCookie = "liftlog_user"

const cookieMaxAge = 30 * 24 * time.Hour

// UserInfo is returned by /api/v1/me.
type UserInfo struct {
	Username      string `json:"username,omitempty"`
	Authenticated bool   `json:"authenticated"`
	TailnetLogin  string `json:"tailnet_login,omitempty"`
	DisplayName   string `json:"display_name,omitempty"`
}

func decodeCredentials(r *http.Request) (models.Credentials, error) {
	var creds models.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		return creds, errors.New("invalid JSON: " + err.Error())
	}
	creds.Username = strings.TrimSpace(creds.Username)
	if creds.Username == "" || creds.Password == "" {
		return creds, errors.New("username and password are required")
	}
	return creds, nil
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	creds, err := decodeCredentials(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	res, err := s.client.Login(r.Context(), creds)
	if err != nil {
		s.writeBackendError(w, "login", err)
		return
	}

	s.setCookie(w, TokenCookie, res.Token, true)
	s.setCookie(w, userCookie, res.Username, false)
	writeJSON(w, http.StatusOK, models.LoginResult{Token: res.Token, Username: res.Username})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	creds, err := decodeCredentials(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if err := s.client.Register(r.Context(), creds); err != nil {
		s.writeBackendError(w, "register", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"status": "registered"})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	for _, name := range []string{TokenCookie, userCookie} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: name == TokenCookie,
			Secure:   s.cfg.SecureCookies,
			SameSite: http.SameSiteLaxMode,
		})
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	info := UserInfo{Authenticated: s.tokenFor(r) != ""}
	if c, err := r.Cookie(userCookie); err == nil {
		info.Username = c.Value
	} else if cred, ok := s.storedCredential(r); ok {
		info.Username = cred.Username
	}

	if s.whois != nil {
		who, err := s.whois.WhoIs(r.Context(), r.RemoteAddr)
		if err != nil {
			s.log.Warn("tailscale whois failed", "remote", r.RemoteAddr, "error", err)
		} else if who != nil && who.UserProfile != nil {
			info.TailnetLogin = who.UserProfile.LoginName
			info.DisplayName = who.UserProfile.DisplayName
		}
	}

	writeJSON(w, http.StatusOK, info)
}

func (s *Server) setCookie(w http.ResponseWriter, name, value string, httpOnly bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(cookieMaxAge.Seconds()),
		HttpOnly: httpOnly,
		Secure:   s.cfg.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}
