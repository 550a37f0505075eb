// session/session.go
package session

import (
	"sync"
	"time"

	"github.com/wfunc/dodgerelay/network"
)

// Session binds one transport connection to the room and player it is
// acting as. RoomCode and PlayerID are empty until the client creates or
// joins a room.
type Session struct {
	ID        string
	Conn      network.Connection
	RoomCode  string
	PlayerID  string
	CreatedAt time.Time

	mutex      sync.Mutex
	lastActive time.Time
}

func NewSession(id string, conn network.Connection) *Session {
	now := time.Now()
	return &Session{
		ID:         id,
		Conn:       conn,
		CreatedAt:  now,
		lastActive: now,
	}
}

// Send is safe for concurrent use: the timer-callback goroutine and the
// connection's own goroutine can both send to one session, so the
// activity stamp is guarded here and the connection serializes its
// writes.
func (s *Session) Send(v interface{}) error {
	s.mutex.Lock()
	s.lastActive = time.Now()
	s.mutex.Unlock()
	return s.Conn.Send(v)
}

func (s *Session) LastActive() time.Time {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.lastActive
}

func (s *Session) GetID() string {
	return s.ID
}

func (s *Session) Close() error {
	return s.Conn.Close()
}

// Manager tracks every open session.
type Manager struct {
	sessions map[string]*Session
	mutex    sync.RWMutex
}

func NewManager() *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
	}
}

func (m *Manager) Add(session *Session) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.sessions[session.ID] = session
}

func (m *Manager) Remove(sessionID string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	delete(m.sessions, sessionID)
}

func (m *Manager) Get(sessionID string) (*Session, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	session, exists := m.sessions[sessionID]
	return session, exists
}

func (m *Manager) Count() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.sessions)
}
