package services

import (
	"sort"
	"time"

	"github.com/wfunc/dodgerelay/room"
	"github.com/wfunc/dodgerelay/session"
)

// RoomSummary is a point-in-time view of one room for operators.
type RoomSummary struct {
	Code      string    `json:"code"`
	Host      string    `json:"host"`
	Players   int       `json:"players"`
	Started   bool      `json:"started"`
	Level     int       `json:"level"`
	CreatedAt time.Time `json:"created_at"`
}

// StatsService aggregates the room and session managers for the admin RPC
// endpoint.
type StatsService struct {
	rooms    *room.Manager
	sessions *session.Manager
}

func NewStatsService(rooms *room.Manager, sessions *session.Manager) *StatsService {
	return &StatsService{rooms: rooms, sessions: sessions}
}

// Counts returns the number of live rooms and open sessions.
func (s *StatsService) Counts() (rooms, players int) {
	return s.rooms.RoomCount(), s.sessions.Count()
}

// ListRooms returns summaries of every live room, sorted by code.
func (s *StatsService) ListRooms() []RoomSummary {
	live := s.rooms.Rooms()

	summaries := make([]RoomSummary, 0, len(live))
	for _, r := range live {
		summaries = append(summaries, RoomSummary{
			Code:      r.Code(),
			Host:      r.HostID(),
			Players:   r.PlayerCount(),
			Started:   r.Started(),
			Level:     r.Level(),
			CreatedAt: r.CreatedAt(),
		})
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Code < summaries[j].Code
	})
	return summaries
}
