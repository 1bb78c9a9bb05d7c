package access

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"zencontrol/internal/models"
)

type entry struct {
	session   models.Session
	updatedAt time.Time
}

// SessionStore keeps sessions by opaque token with a sliding timeout.
type SessionStore struct {
	sessions map[string]*entry
	mu       sync.Mutex
	timeout  time.Duration
	now      func() time.Time
}

func NewSessionStore(timeout time.Duration) *SessionStore {
	if timeout <= 0 {
		timeout = 12 * time.Hour
	}
	return &SessionStore{
		sessions: make(map[string]*entry),
		timeout:  timeout,
		now:      time.Now,
	}
}

// Create stores the session and returns its token.
func (ss *SessionStore) Create(s models.Session) string {
	token := uuid.NewString()
	ss.mu.Lock()
	defer ss.mu.Unlock()
	ss.sessions[token] = &entry{session: s, updatedAt: ss.now()}
	return token
}

// Get returns the session for token and refreshes its timeout.
func (ss *SessionStore) Get(token string) (models.Session, error) {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	e, ok := ss.sessions[token]
	if !ok {
		return models.Session{}, ErrSessionNotFound
	}
	if ss.now().Sub(e.updatedAt) > ss.timeout {
		delete(ss.sessions, token)
		return models.Session{}, ErrSessionNotFound
	}
	e.updatedAt = ss.now()
	return e.session, nil
}

func (ss *SessionStore) Delete(token string) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	delete(ss.sessions, token)
}

// Cleanup removes expired sessions.
func (ss *SessionStore) Cleanup() int {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	removed := 0
	for token, e := range ss.sessions {
		if ss.now().Sub(e.updatedAt) > ss.timeout {
			delete(ss.sessions, token)
			removed++
		}
	}
	return removed
}
