// Package auth is the session boundary around the dashboard: token login,
// session check, logout, and permission gates for the mutating routes. Roles
// and permissions are opaque capability strings; nothing in the pricing core
// depends on their values.
package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"sync"
	"time"

	"github.com/google/uuid"
)

// User is what the session-check endpoint reports.
type User struct {
	Name        string   `json:"name"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
}

type account struct {
	passwordHash string // hex sha-256
	user         User
}

// demo accounts; replace with a real identity provider behind the same
// interface when one exists.
var accounts = map[string]account{
	"admin": {
		passwordHash: hashPassword("admin123"),
		user: User{
			Name:        "管理者",
			Role:        "admin",
			Permissions: []string{"upload", "edit", "alerts", "export"},
		},
	},
	"analyst": {
		passwordHash: hashPassword("analyst123"),
		user: User{
			Name:        "分析担当",
			Role:        "analyst",
			Permissions: []string{"upload", "alerts", "export"},
		},
	},
	"viewer": {
		passwordHash: hashPassword("viewer123"),
		user: User{
			Name:        "閲覧者",
			Role:        "viewer",
			Permissions: []string{},
		},
	},
}

func hashPassword(pw string) string {
	sum := sha256.Sum256([]byte(pw))
	return hex.EncodeToString(sum[:])
}

const sessionTTL = 8 * time.Hour

type sessionEntry struct {
	user    User
	expires time.Time
}

// Manager holds active tokens in memory. Sessions die with the process,
// which matches the client-local scope of everything else here.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]sessionEntry
}

func NewManager() *Manager {
	return &Manager{sessions: map[string]sessionEntry{}}
}

// Login verifies credentials and mints a session token.
func (m *Manager) Login(username, password string) (token string, user User, ok bool) {
	acct, found := accounts[username]
	if !found {
		return "", User{}, false
	}
	given := hashPassword(password)
	if subtle.ConstantTimeCompare([]byte(given), []byte(acct.passwordHash)) != 1 {
		return "", User{}, false
	}
	token = uuid.NewString()
	m.mu.Lock()
	m.sessions[token] = sessionEntry{user: acct.user, expires: time.Now().Add(sessionTTL)}
	m.mu.Unlock()
	return token, acct.user, true
}

// Check resolves a token to its user, expiring stale sessions lazily.
func (m *Manager) Check(token string) (User, bool) {
	if token == "" {
		return User{}, false
	}
	m.mu.RLock()
	entry, ok := m.sessions[token]
	m.mu.RUnlock()
	if !ok {
		return User{}, false
	}
	if time.Now().After(entry.expires) {
		m.mu.Lock()
		delete(m.sessions, token)
		m.mu.Unlock()
		return User{}, false
	}
	return entry.user, true
}

// Logout invalidates a token. Unknown tokens are a no-op.
func (m *Manager) Logout(token string) {
	m.mu.Lock()
	delete(m.sessions, token)
	m.mu.Unlock()
}

// HasPermission is a presence check over the opaque permission list.
func (u User) HasPermission(perm string) bool {
	for _, p := range u.Permissions {
		if p == perm {
			return true
		}
	}
	return false
}
