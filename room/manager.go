// room/manager.go
package room

import (
	"strings"
	"sync"

	"github.com/wfunc/dodgerelay/config"
	"github.com/wfunc/dodgerelay/network"
	"github.com/wfunc/dodgerelay/session"
)

// Manager is the process-wide room registry: code -> Room. Lock order is
// always manager before room; no room operation ever takes m.mu.
type Manager struct {
	mu    sync.RWMutex
	rooms map[string]*Room

	cfg         config.GameConfig
	broadcaster Broadcaster
	scheduler   Scheduler
}

func NewManager(cfg config.GameConfig, b Broadcaster, s Scheduler) *Manager {
	return &Manager{
		rooms:       make(map[string]*Room),
		cfg:         cfg,
		broadcaster: b,
		scheduler:   s,
	}
}

// CreateRoom makes a room with the caller as sole player and host. The
// host's id is the requested name, unmodified. Fails only if the code
// space is exhausted.
func (m *Manager) CreateRoom(sess *session.Session, name, color string) (*Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	code, err := GenerateCode(m.cfg.RoomCodeLength, func(c string) bool {
		_, taken := m.rooms[c]
		return taken
	})
	if err != nil {
		return nil, err
	}

	r := newRoom(m, code, sess, name, color)
	m.rooms[code] = r

	m.broadcaster.Send(sess, network.RoomCreated{
		Type:     network.MsgRoomCreated,
		RoomCode: code,
		PlayerID: name,
		IsHost:   true,
	})
	return r, nil
}

// JoinRoom resolves the code (case-insensitively) and adds the player.
func (m *Manager) JoinRoom(code string, sess *session.Session, name, color string) (*Room, string, error) {
	r, ok := m.GetRoom(code)
	if !ok {
		return nil, "", ErrRoomNotFound
	}
	id, err := r.Join(sess, name, color)
	if err != nil {
		return nil, "", err
	}
	return r, id, nil
}

func (m *Manager) GetRoom(code string) (*Room, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.rooms[strings.ToUpper(code)]
	return r, ok
}

// RemovePlayer handles a disconnect: roster cleanup, departure broadcast,
// host migration, and deletion of the room the instant it empties.
func (m *Manager) RemovePlayer(code, playerID string) {
	r, ok := m.GetRoom(code)
	if !ok {
		return
	}

	if r.Disconnect(playerID) {
		m.mu.Lock()
		// The room is already closed, so no join can sneak in; the
		// identity check protects a new room that reused the code.
		if cur, ok := m.rooms[r.code]; ok && cur == r {
			delete(m.rooms, r.code)
		}
		m.mu.Unlock()
	}
}

func (m *Manager) RoomCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rooms)
}

// Rooms returns a snapshot of all live rooms.
func (m *Manager) Rooms() []*Room {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rooms := make([]*Room, 0, len(m.rooms))
	for _, r := range m.rooms {
		rooms = append(rooms, r)
	}
	return rooms
}

// scheduleAdvance arms the one-shot level-advance timer. The callback
// re-resolves the room by code so a deleted room is naturally a no-op, and
// the captured generation makes a timer from a finished match harmless.
func (m *Manager) scheduleAdvance(code string, generation uint64) {
	m.scheduler.AddTimer(m.cfg.AdvanceDelay, 0, func() {
		r, ok := m.GetRoom(code)
		if !ok {
			return
		}
		r.advanceLevel(generation)
	})
}
