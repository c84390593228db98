package auth

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// tokenFrom pulls the session token from the Authorization header or the
// session cookie.
func tokenFrom(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	if c, err := r.Cookie("session"); err == nil {
		return c.Value
	}
	return ""
}

// Login mints a session for valid credentials.
func Login(m *Manager, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad login payload"})
			return
		}
		token, user, ok := m.Login(body.Username, body.Password)
		if !ok {
			logger.Warn().Str("user", body.Username).Msg("login rejected")
			writeJSON(w, http.StatusUnauthorized, map[string]any{"authenticated": false})
			return
		}
		http.SetCookie(w, &http.Cookie{
			Name:     "session",
			Value:    token,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
		writeJSON(w, http.StatusOK, map[string]any{
			"authenticated": true,
			"token":         token,
			"user":          user,
		})
	}
}

// SessionCheck reports whether the caller holds a live session.
func SessionCheck(m *Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := m.Check(tokenFrom(r))
		if !ok {
			writeJSON(w, http.StatusOK, map[string]any{"authenticated": false})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"authenticated": true,
			"user":          user,
		})
	}
}

// Logout drops the caller's session.
func Logout(m *Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m.Logout(tokenFrom(r))
		http.SetCookie(w, &http.Cookie{Name: "session", Value: "", Path: "/", MaxAge: -1})
		writeJSON(w, http.StatusOK, map[string]any{"authenticated": false})
	}
}

// RequirePermission gates a route on an opaque capability flag.
func RequirePermission(m *Manager, perm string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := m.Check(tokenFrom(r))
			if !ok {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "login required"})
				return
			}
			if !user.HasPermission(perm) {
				writeJSON(w, http.StatusForbidden, map[string]string{"error": "missing permission: " + perm})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
