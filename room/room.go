// room/room.go
package room

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/wfunc/dodgerelay/network"
	"github.com/wfunc/dodgerelay/session"
)

var (
	ErrRoomNotFound   = errors.New("room not found")
	ErrGameInProgress = errors.New("game already started")
	ErrRoomFull       = errors.New("room full")
	ErrNotAllReady    = errors.New("not all players are ready")
)

// DefaultColor is assigned when a client supplies no color.
const DefaultColor = "#ffffff"

// Position is a last-reported coordinate, trusted as reported.
type Position struct {
	X float64
	Y float64
}

// Player is one room member. Its session is exclusively owned by the
// player while the connection is open; the id doubles as display name and
// is unique within the room.
type Player struct {
	ID      string
	Session *session.Session
	Color   string
	Ready   bool
	Alive   bool
	Pos     Position
}

// Room holds all state for one match instance. Every exported operation
// takes r.mu for its full duration, including the sends it triggers, which
// reproduces the single-threaded model: one inbound message runs to
// completion before the next touches the room.
type Room struct {
	mu sync.Mutex

	manager *Manager

	code    string
	hostID  string
	players map[string]*Player
	order   []string // join order; drives host migration and roster output

	started bool
	level   int

	// closed is set, under mu, the moment the last player leaves and
	// before the registry drops the room. A join that resolved the room
	// earlier sees it and fails instead of resurrecting a deleted room.
	closed bool

	// generation is bumped on every game start. The level-advance timer
	// captures it so a timer scheduled during one match never acts on a
	// restarted match in the same room.
	generation uint64

	levelWins map[string]int
	ready     map[string]struct{}
	finished  map[string]struct{}
	deaths    map[string]Position

	createdAt time.Time
}

func newRoom(m *Manager, code string, sess *session.Session, hostName, color string) *Room {
	r := &Room{
		manager:   m,
		code:      code,
		hostID:    hostName,
		players:   make(map[string]*Player),
		levelWins: make(map[string]int),
		ready:     make(map[string]struct{}),
		finished:  make(map[string]struct{}),
		deaths:    make(map[string]Position),
		createdAt: time.Now(),
	}
	r.addPlayer(sess, hostName, color)
	return r
}

// addPlayer inserts a player under an id that is unique within the room.
// Caller must hold r.mu (or, for newRoom, have exclusive access).
func (r *Room) addPlayer(sess *session.Session, name, color string) *Player {
	id := name
	for n := 1; ; n++ {
		if _, taken := r.players[id]; !taken {
			break
		}
		id = fmt.Sprintf("%s%d", name, n)
	}

	if color == "" {
		color = DefaultColor
	}
	p := &Player{ID: id, Session: sess, Color: color, Alive: true}
	r.players[id] = p
	r.order = append(r.order, id)

	sess.RoomCode = r.code
	sess.PlayerID = id
	return p
}

// Join adds a player to the lobby. The joiner's confirmation reflects the
// roster after the add; everyone else learns of the arrival.
func (r *Room) Join(sess *session.Session, name, color string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return "", ErrRoomNotFound
	}
	if r.started {
		return "", ErrGameInProgress
	}
	if len(r.players) >= r.manager.cfg.MaxPlayers {
		return "", ErrRoomFull
	}

	p := r.addPlayer(sess, name, color)

	r.manager.broadcaster.Send(sess, network.RoomJoined{
		Type:     network.MsgRoomJoined,
		RoomCode: r.code,
		PlayerID: p.ID,
		HostID:   r.hostID,
		Players:  r.roster(),
	})
	r.manager.broadcaster.SendAll(r.sessionsExcept(p.ID), network.PlayerJoined{
		Type:       network.MsgPlayerJoined,
		PlayerID:   p.ID,
		PlayerName: p.ID,
		Color:      p.Color,
	})
	return p.ID, nil
}

// Disconnect removes a player from every collection and notifies the rest.
// Returns true when the room is now empty and must be deleted by the
// registry. Win history of departed players is kept for the wins table.
func (r *Room) Disconnect(playerID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.players[playerID]; !exists {
		return len(r.players) == 0
	}

	delete(r.players, playerID)
	delete(r.ready, playerID)
	delete(r.finished, playerID)
	delete(r.deaths, playerID)
	for i, id := range r.order {
		if id == playerID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}

	if len(r.players) == 0 {
		r.closed = true
		return true
	}

	r.manager.broadcaster.SendAll(r.allSessions(), network.PlayerLeft{
		Type:     network.MsgPlayerLeft,
		PlayerID: playerID,
	})

	if r.hostID == playerID {
		r.hostID = r.order[0]
		r.manager.broadcaster.SendAll(r.allSessions(), network.NewHost{
			Type:   network.MsgNewHost,
			HostID: r.hostID,
		})
	}
	return false
}

// --- accessors (safe without holding r.mu externally) ---

func (r *Room) Code() string {
	return r.code
}

// CreatedAt is immutable after construction.
func (r *Room) CreatedAt() time.Time {
	return r.createdAt
}

func (r *Room) HostID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.hostID
}

func (r *Room) PlayerCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.players)
}

func (r *Room) Started() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.started
}

func (r *Room) Level() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.level
}

// Wins returns a copy of the per-player win table.
func (r *Room) Wins() map[string]int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.winsSnapshot()
}

// --- helpers, caller must hold r.mu ---

func (r *Room) roster() []network.RosterEntry {
	entries := make([]network.RosterEntry, 0, len(r.order))
	for _, id := range r.order {
		p := r.players[id]
		entries = append(entries, network.RosterEntry{
			ID:    p.ID,
			Name:  p.ID,
			Ready: p.Ready,
			Color: p.Color,
		})
	}
	return entries
}

func (r *Room) matchRoster() []network.MatchPlayer {
	entries := make([]network.MatchPlayer, 0, len(r.order))
	for _, id := range r.order {
		p := r.players[id]
		entries = append(entries, network.MatchPlayer{ID: p.ID, Name: p.ID, Color: p.Color})
	}
	return entries
}

func (r *Room) allSessions() []*session.Session {
	sessions := make([]*session.Session, 0, len(r.order))
	for _, id := range r.order {
		sessions = append(sessions, r.players[id].Session)
	}
	return sessions
}

func (r *Room) sessionsExcept(playerID string) []*session.Session {
	sessions := make([]*session.Session, 0, len(r.order))
	for _, id := range r.order {
		if id == playerID {
			continue
		}
		sessions = append(sessions, r.players[id].Session)
	}
	return sessions
}

func (r *Room) winsSnapshot() map[string]int {
	wins := make(map[string]int, len(r.levelWins))
	for id, n := range r.levelWins {
		wins[id] = n
	}
	return wins
}
