package server

import (
	"net"
	"sync"
	"time"

	"github.com/LightOfTheWar/Online-Chat-Prive/pkg/protocol"
)

// Session is one authenticated client's live connection. A per-session
// write lock serializes concurrent broadcasts so length-prefixed frames
// never interleave on the wire.
type Session struct {
	Username string
	JoinedAt time.Time

	mu           sync.Mutex
	conn         net.Conn
	writeTimeout time.Duration
}

func newSession(username string, conn net.Conn, writeTimeout time.Duration) *Session {
	return &Session{
		Username:     username,
		JoinedAt:     time.Now(),
		conn:         conn,
		writeTimeout: writeTimeout,
	}
}

// Send delivers one payload to the client. Each send carries a bounded
// write deadline so a stalled peer cannot block a broadcast pass.
func (s *Session) Send(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.writeTimeout > 0 {
		_ = s.conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
	}
	return protocol.WritePayload(s.conn, text)
}

// Close closes the client connection.
func (s *Session) Close() error {
	return s.conn.Close()
}

// Registry is the shared mapping from active username to session. It is the
// single synchronization point mutated by multiple goroutines; register,
// unregister, and snapshot are mutually atomic.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewRegistry creates an empty session registry.
func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
	}
}

// Register inserts a session. It returns false without inserting when the
// username already has a live session (duplicate logins are rejected).
func (r *Registry) Register(sess *Session) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sessions[sess.Username]; exists {
		return false
	}
	r.sessions[sess.Username] = sess
	return true
}

// Unregister removes the entry for name if present. It is idempotent and
// reports whether an entry was actually removed, so callers can decide
// whether to announce the departure exactly once.
func (r *Registry) Unregister(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sessions[name]; !exists {
		return false
	}
	delete(r.sessions, name)
	return true
}

// Lookup retrieves a session by username.
func (r *Registry) Lookup(name string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sess, ok := r.sessions[name]
	return sess, ok
}

// Snapshot returns all active sessions. The slice is a point-in-time copy;
// iteration never observes a partially inserted entry.
func (r *Registry) Snapshot() []*Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*Session, 0, len(r.sessions))
	for _, sess := range r.sessions {
		result = append(result, sess)
	}
	return result
}

// Count returns the number of active sessions.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Usernames returns the names of all active sessions.
func (r *Registry) Usernames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.sessions))
	for name := range r.sessions {
		names = append(names, name)
	}
	return names
}
