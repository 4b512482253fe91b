package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mamadbah2/stockdesk/internal/domain/models"
	"github.com/mamadbah2/stockdesk/internal/service/stocktake"
)

// Session is a logged-in staff member and the stocktake rows they collected.
type Session struct {
	Token     string
	User      models.User
	Stocktake *stocktake.Reconciler
	CreatedAt time.Time

	lastSeen time.Time
}

// Manager keeps sessions in memory; they disappear on logout, restart or
// after ttl without activity.
type Manager struct {
	sessions map[string]*Session
	mu       sync.Mutex
	ttl      time.Duration
	now      func() time.Time
}

// NewManager creates a new session manager. A ttl of zero or less keeps
// sessions until logout.
func NewManager(ttl time.Duration) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Open starts a session for user and returns it with a fresh token.
func (m *Manager) Open(user models.User) *Session {
	now := m.now().UTC()
	s := &Session{
		Token:     uuid.NewString(),
		User:      user.Public(),
		Stocktake: stocktake.NewReconciler(),
		CreatedAt: now,
		lastSeen:  now,
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.Token] = s
	return s
}

// Get retrieves the session for token and marks it as active. Expired
// sessions are dropped on sight.
func (m *Manager) Get(token string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[token]
	if !ok {
		return nil, false
	}
	now := m.now().UTC()
	if m.expired(s, now) {
		delete(m.sessions, token)
		return nil, false
	}
	s.lastSeen = now
	return s, true
}

// Close removes a session together with its stocktake rows.
func (m *Manager) Close(token string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[token]; !ok {
		return false
	}
	delete(m.sessions, token)
	return true
}

// Sweep drops every expired session and returns how many were removed.
func (m *Manager) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now().UTC()
	removed := 0
	for token, s := range m.sessions {
		if m.expired(s, now) {
			delete(m.sessions, token)
			removed++
		}
	}
	return removed
}

// Count is the number of open sessions.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func (m *Manager) expired(s *Session, now time.Time) bool {
	return m.ttl > 0 && now.Sub(s.lastSeen) >= m.ttl
}
