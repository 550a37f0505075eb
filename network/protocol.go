// network/protocol.go
package network

// Inbound message types.
const (
	MsgCreateRoom     = "create_room"
	MsgJoinRoom       = "join_room"
	MsgPlayerReady    = "player_ready"
	MsgStartGame      = "start_game"
	MsgPlayerPosition = "player_position"
	MsgPlayerDied     = "player_died"
	MsgRevivePlayer   = "revive_player"
	MsgPlayerFinished = "player_finished"
	MsgLobbyPosition  = "lobby_position"
)

// Outbound message types.
const (
	MsgRoomCreated      = "room_created"
	MsgRoomJoined       = "room_joined"
	MsgPlayerJoined     = "player_joined"
	MsgError            = "error"
	MsgReadyUpdate      = "player_ready_update"
	MsgGameStart        = "game_start"
	MsgPlayerMoved      = "player_moved"
	MsgPlayerDiedBcast  = "player_died"
	MsgYouDied          = "you_died"
	MsgPlayerRevived    = "player_revived"
	MsgPlayerFinishedBC = "player_finished"
	MsgNextLevel        = "next_level"
	MsgGameOver         = "game_over"
	MsgLobbyPlayerMoved = "lobby_player_moved"
	MsgPlayerLeft       = "player_left"
	MsgNewHost          = "new_host"
)

// ClientMessage is the union of every inbound message. Only the fields
// relevant to Type are populated.
type ClientMessage struct {
	Type       string  `json:"type"`
	PlayerName string  `json:"player_name,omitempty"`
	Color      string  `json:"color,omitempty"`
	RoomCode   string  `json:"room_code,omitempty"`
	Ready      bool    `json:"ready,omitempty"`
	X          float64 `json:"x,omitempty"`
	Y          float64 `json:"y,omitempty"`
	TargetID   string  `json:"target_id,omitempty"`
}

// RosterEntry describes one room member in lobby-facing messages.
type RosterEntry struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Ready bool   `json:"ready"`
	Color string `json:"color"`
}

// MatchPlayer describes one room member in the game_start roster.
type MatchPlayer struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

type RoomCreated struct {
	Type     string `json:"type"`
	RoomCode string `json:"room_code"`
	PlayerID string `json:"player_id"`
	IsHost   bool   `json:"is_host"`
}

type RoomJoined struct {
	Type     string        `json:"type"`
	RoomCode string        `json:"room_code"`
	PlayerID string        `json:"player_id"`
	HostID   string        `json:"host_id"`
	Players  []RosterEntry `json:"players"`
}

type PlayerJoined struct {
	Type       string `json:"type"`
	PlayerID   string `json:"player_id"`
	PlayerName string `json:"player_name"`
	Color      string `json:"color"`
}

type ErrorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type ReadyUpdate struct {
	Type       string `json:"type"`
	PlayerID   string `json:"player_id"`
	Ready      bool   `json:"ready"`
	ReadyCount int    `json:"ready_count"`
	TotalCount int    `json:"total_count"`
}

// GameStart is individualized per recipient via YourID.
type GameStart struct {
	Type    string        `json:"type"`
	Level   int           `json:"level"`
	YourID  string        `json:"your_id"`
	Players []MatchPlayer `json:"players"`
}

type PlayerMoved struct {
	Type     string  `json:"type"`
	PlayerID string  `json:"player_id"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
}

type PlayerDied struct {
	Type     string  `json:"type"`
	PlayerID string  `json:"player_id"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
}

type YouDied struct {
	Type string  `json:"type"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

// PlayerRevived carries the position at time of death, not of revival.
type PlayerRevived struct {
	Type      string  `json:"type"`
	PlayerID  string  `json:"player_id"`
	RevivedBy string  `json:"revived_by"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
}

type PlayerFinished struct {
	Type          string         `json:"type"`
	PlayerID      string         `json:"player_id"`
	IsFirst       bool           `json:"is_first"`
	FinishedCount int            `json:"finished_count"`
	TotalCount    int            `json:"total_count"`
	LevelWins     map[string]int `json:"level_wins"`
}

type NextLevel struct {
	Type      string         `json:"type"`
	Level     int            `json:"level"`
	LevelWins map[string]int `json:"level_wins"`
}

type GameOver struct {
	Type      string         `json:"type"`
	LevelWins map[string]int `json:"level_wins"`
}

type LobbyPlayerMoved struct {
	Type     string  `json:"type"`
	PlayerID string  `json:"player_id"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
}

type PlayerLeft struct {
	Type     string `json:"type"`
	PlayerID string `json:"player_id"`
}

type NewHost struct {
	Type   string `json:"type"`
	HostID string `json:"host_id"`
}
