package room

import (
	"testing"

	"github.com/wfunc/dodgerelay/network"
)

// twoPlayerMatch creates a room with alice (host, session s1) and bob
// (session s2), both ready, match started.
func twoPlayerMatch(t *testing.T, m *Manager, b *MockBroadcaster) *Room {
	t.Helper()

	r, err := m.CreateRoom(newTestSession("s1"), "alice", "")
	if err != nil {
		t.Fatalf("CreateRoom failed: %v", err)
	}
	if _, _, err := m.JoinRoom(r.Code(), newTestSession("s2"), "bob", ""); err != nil {
		t.Fatalf("JoinRoom failed: %v", err)
	}
	r.SetReady("alice", true)
	r.SetReady("bob", true)
	if err := r.StartGame("alice"); err != nil {
		t.Fatalf("StartGame failed: %v", err)
	}
	b.reset()
	return r
}

func TestRoom_SetReady_Counts(t *testing.T) {
	m, b, _ := newTestManager(testConfig())

	r, _ := m.CreateRoom(newTestSession("s1"), "alice", "")
	m.JoinRoom(r.Code(), newTestSession("s2"), "bob", "")
	b.reset()

	r.SetReady("alice", true)

	msgs := b.to("s2")
	if len(msgs) != 1 {
		t.Fatalf("Expected 1 ready update to bob, got %d", len(msgs))
	}
	update := msgs[0].(network.ReadyUpdate)
	if update.PlayerID != "alice" || !update.Ready || update.ReadyCount != 1 || update.TotalCount != 2 {
		t.Errorf("Unexpected ReadyUpdate: %+v", update)
	}
	// Sender is included in the broadcast.
	if len(b.to("s1")) != 1 {
		t.Error("Ready updates should also reach the sender")
	}

	b.reset()
	r.SetReady("alice", false)
	update = b.to("s1")[0].(network.ReadyUpdate)
	if update.Ready || update.ReadyCount != 0 {
		t.Errorf("Unready should drop the count back to 0, got %+v", update)
	}

	if len(r.ready) > len(r.players) {
		t.Error("Ready set must never exceed the player count")
	}
}

func TestRoom_SetReady_UnknownPlayer(t *testing.T) {
	m, b, _ := newTestManager(testConfig())

	r, _ := m.CreateRoom(newTestSession("s1"), "alice", "")
	b.reset()

	r.SetReady("mallory", true)

	if len(b.sent) != 0 {
		t.Error("Ready from a non-member should be a silent no-op")
	}
}

func TestRoom_StartGame_NotHost(t *testing.T) {
	m, b, _ := newTestManager(testConfig())

	r, _ := m.CreateRoom(newTestSession("s1"), "alice", "")
	m.JoinRoom(r.Code(), newTestSession("s2"), "bob", "")
	r.SetReady("alice", true)
	r.SetReady("bob", true)
	b.reset()

	if err := r.StartGame("bob"); err != nil {
		t.Errorf("Non-host start should be a silent no-op, got %v", err)
	}
	if r.Started() {
		t.Error("Non-host must not be able to start the match")
	}
	if len(b.sent) != 0 {
		t.Error("Non-host start should emit nothing")
	}
}

func TestRoom_StartGame_NotAllReady(t *testing.T) {
	m, _, _ := newTestManager(testConfig())

	r, _ := m.CreateRoom(newTestSession("s1"), "alice", "")
	m.JoinRoom(r.Code(), newTestSession("s2"), "bob", "")
	r.SetReady("alice", true)

	if err := r.StartGame("alice"); err != ErrNotAllReady {
		t.Errorf("Expected ErrNotAllReady, got %v", err)
	}
	if r.Started() {
		t.Error("Match must not start until everyone is ready")
	}
}

func TestRoom_StartGame(t *testing.T) {
	m, b, _ := newTestManager(testConfig())

	r, _ := m.CreateRoom(newTestSession("s1"), "alice", "")
	m.JoinRoom(r.Code(), newTestSession("s2"), "bob", "")
	r.SetReady("alice", true)
	r.SetReady("bob", true)
	b.reset()

	if err := r.StartGame("alice"); err != nil {
		t.Fatalf("StartGame failed: %v", err)
	}

	if !r.Started() || r.Level() != 1 {
		t.Errorf("Expected a started match at level 1, got started=%v level=%d", r.Started(), r.Level())
	}
	for id, p := range r.players {
		if !p.Alive {
			t.Errorf("Player %s should be alive after start", id)
		}
		if _, ok := r.levelWins[id]; !ok {
			t.Errorf("Player %s should have a levelWins entry after start", id)
		}
	}
	if len(r.finished) != 0 || len(r.deaths) != 0 {
		t.Error("Finished set and death placeholders must be empty after start")
	}

	// Each player gets an individualized game_start.
	for _, sid := range []string{"s1", "s2"} {
		msgs := b.to(sid)
		if len(msgs) != 1 {
			t.Fatalf("Expected 1 game_start for %s, got %d", sid, len(msgs))
		}
		start := msgs[0].(network.GameStart)
		if start.Level != 1 || len(start.Players) != 2 {
			t.Errorf("Unexpected GameStart for %s: %+v", sid, start)
		}
	}
	if b.to("s1")[0].(network.GameStart).YourID != "alice" {
		t.Error("alice's game_start should carry her own id")
	}
	if b.to("s2")[0].(network.GameStart).YourID != "bob" {
		t.Error("bob's game_start should carry his own id")
	}
}

func TestRoom_StartGame_PreservesWinsAcrossMatches(t *testing.T) {
	m, b, _ := newTestManager(testConfig())
	r := twoPlayerMatch(t, m, b)

	r.levelWins["alice"] = 5

	if err := r.StartGame("alice"); err != nil {
		t.Fatalf("Restart failed: %v", err)
	}
	if r.levelWins["alice"] != 5 {
		t.Errorf("Win history must survive a restart, got %d", r.levelWins["alice"])
	}
}

func TestRoom_MovePlayer_RelaysToOthersOnly(t *testing.T) {
	m, b, _ := newTestManager(testConfig())
	r := twoPlayerMatch(t, m, b)

	r.MovePlayer("alice", 10, 20)

	if len(b.to("s1")) != 0 {
		t.Error("The sender should not receive its own position relay")
	}
	msgs := b.to("s2")
	if len(msgs) != 1 {
		t.Fatalf("Expected 1 relay to bob, got %d", len(msgs))
	}
	moved := msgs[0].(network.PlayerMoved)
	if moved.PlayerID != "alice" || moved.X != 10 || moved.Y != 20 {
		t.Errorf("Unexpected PlayerMoved: %+v", moved)
	}
}

func TestRoom_MoveLobbyPlayer_DistinctKind(t *testing.T) {
	m, b, _ := newTestManager(testConfig())

	r, _ := m.CreateRoom(newTestSession("s1"), "alice", "")
	m.JoinRoom(r.Code(), newTestSession("s2"), "bob", "")
	b.reset()

	r.MoveLobbyPlayer("alice", 1, 2)

	msgs := b.to("s2")
	if len(msgs) != 1 {
		t.Fatalf("Expected 1 lobby relay to bob, got %d", len(msgs))
	}
	if _, ok := msgs[0].(network.LobbyPlayerMoved); !ok {
		t.Errorf("Lobby movement must use its own message kind, got %T", msgs[0])
	}
}

func TestRoom_KillAndRevive(t *testing.T) {
	m, b, _ := newTestManager(testConfig())
	r := twoPlayerMatch(t, m, b)

	r.KillPlayer("bob", 7, 8)

	if r.players["bob"].Alive {
		t.Error("A dead player must be marked not alive")
	}
	if pos, ok := r.deaths["bob"]; !ok || pos.X != 7 || pos.Y != 8 {
		t.Errorf("Death placeholder should record the death position, got %+v", pos)
	}

	// Others get player_died; the dying player gets you_died.
	if died, ok := b.to("s1")[0].(network.PlayerDied); !ok || died.PlayerID != "bob" {
		t.Errorf("alice should see bob's death, got %+v", b.to("s1")[0])
	}
	if _, ok := b.to("s2")[0].(network.YouDied); !ok {
		t.Errorf("bob should get a you_died, got %T", b.to("s2")[0])
	}

	b.reset()
	r.RevivePlayer("alice", "bob")

	if _, ok := r.deaths["bob"]; ok {
		t.Error("Revival must clear the death placeholder")
	}
	if !r.players["bob"].Alive {
		t.Error("A revived player must be alive")
	}
	// Everyone hears it, reviver and revived included, at the death position.
	for _, sid := range []string{"s1", "s2"} {
		msgs := b.to(sid)
		if len(msgs) != 1 {
			t.Fatalf("Expected 1 revival notice for %s, got %d", sid, len(msgs))
		}
		revived := msgs[0].(network.PlayerRevived)
		if revived.PlayerID != "bob" || revived.RevivedBy != "alice" || revived.X != 7 || revived.Y != 8 {
			t.Errorf("Unexpected PlayerRevived: %+v", revived)
		}
	}
}

func TestRoom_Revive_NotDead(t *testing.T) {
	m, b, _ := newTestManager(testConfig())
	r := twoPlayerMatch(t, m, b)

	r.RevivePlayer("alice", "bob")

	if len(b.sent) != 0 {
		t.Error("Reviving a living player should be a silent no-op")
	}
}

func TestRoom_FinishLevel_FirstFinisherWins(t *testing.T) {
	m, b, sch := newTestManager(testConfig())
	r := twoPlayerMatch(t, m, b)

	r.FinishLevel("alice")

	if r.levelWins["alice"] != 1 {
		t.Errorf("First finisher should earn a win, got %d", r.levelWins["alice"])
	}
	if len(sch.tasks) != 1 {
		t.Fatalf("First finisher should arm exactly one advance timer, got %d", len(sch.tasks))
	}
	if sch.tasks[0].delay != testConfig().AdvanceDelay {
		t.Errorf("Advance timer should use the configured delay, got %v", sch.tasks[0].delay)
	}

	finished := b.to("s2")[0].(network.PlayerFinished)
	if !finished.IsFirst || finished.FinishedCount != 1 || finished.TotalCount != 2 {
		t.Errorf("Unexpected first PlayerFinished: %+v", finished)
	}
	if finished.LevelWins["alice"] != 1 || finished.LevelWins["bob"] != 0 {
		t.Errorf("Wins table should ride along: %+v", finished.LevelWins)
	}

	b.reset()
	r.FinishLevel("bob")

	if r.levelWins["bob"] != 0 {
		t.Errorf("Only the first finisher earns a win, bob has %d", r.levelWins["bob"])
	}
	if len(sch.tasks) != 1 {
		t.Errorf("A later finisher must not arm another timer, got %d", len(sch.tasks))
	}
	finished = b.to("s1")[0].(network.PlayerFinished)
	if finished.IsFirst || finished.FinishedCount != 2 {
		t.Errorf("Unexpected second PlayerFinished: %+v", finished)
	}
}

func TestRoom_FinishLevel_DuplicateFinisher(t *testing.T) {
	m, b, sch := newTestManager(testConfig())
	r := twoPlayerMatch(t, m, b)

	r.FinishLevel("alice")
	b.reset()
	r.FinishLevel("alice")

	if r.levelWins["alice"] != 1 {
		t.Errorf("Finishing twice must not double-credit, got %d", r.levelWins["alice"])
	}
	if len(sch.tasks) != 1 {
		t.Errorf("Finishing twice must not arm a second timer, got %d", len(sch.tasks))
	}
	finished := b.to("s1")[0].(network.PlayerFinished)
	if finished.IsFirst || finished.FinishedCount != 1 {
		t.Errorf("Unexpected duplicate PlayerFinished: %+v", finished)
	}
}

func TestRoom_FinishLevel_BeforeStart(t *testing.T) {
	m, b, sch := newTestManager(testConfig())

	r, _ := m.CreateRoom(newTestSession("s1"), "alice", "")
	b.reset()

	r.FinishLevel("alice")

	if len(b.sent) != 0 || len(sch.tasks) != 0 {
		t.Error("Finishing in the lobby should be a silent no-op")
	}
}

func TestRoom_AdvanceLevel(t *testing.T) {
	m, b, sch := newTestManager(testConfig())
	r := twoPlayerMatch(t, m, b)

	r.KillPlayer("bob", 1, 1)
	r.FinishLevel("alice")
	b.reset()

	sch.fire()

	if r.Level() != 2 {
		t.Errorf("Expected level 2 after the advance timer, got %d", r.Level())
	}
	if len(r.finished) != 0 || len(r.deaths) != 0 {
		t.Error("Advance must clear the finished set and death placeholders")
	}
	if !r.players["bob"].Alive {
		t.Error("Advance must revive every player")
	}

	for _, sid := range []string{"s1", "s2"} {
		msgs := b.to(sid)
		if len(msgs) != 1 {
			t.Fatalf("Expected 1 next_level for %s, got %d", sid, len(msgs))
		}
		next := msgs[0].(network.NextLevel)
		if next.Level != 2 || next.LevelWins["alice"] != 1 {
			t.Errorf("Unexpected NextLevel: %+v", next)
		}
	}
}

func TestRoom_AdvanceLevel_RoomDeleted(t *testing.T) {
	m, b, sch := newTestManager(testConfig())
	r := twoPlayerMatch(t, m, b)

	r.FinishLevel("alice")
	m.RemovePlayer(r.Code(), "alice")
	m.RemovePlayer(r.Code(), "bob")
	b.reset()

	sch.fire() // must be a no-op, the room is gone

	if len(b.sent) != 0 {
		t.Error("A timer firing for a deleted room must emit nothing")
	}
}

func TestRoom_AdvanceLevel_StaleGeneration(t *testing.T) {
	m, b, sch := newTestManager(testConfig())
	r := twoPlayerMatch(t, m, b)

	r.FinishLevel("alice") // arms a timer for the current match

	// Host restarts the match before the timer fires.
	if err := r.StartGame("alice"); err != nil {
		t.Fatalf("Restart failed: %v", err)
	}
	b.reset()

	sch.fire()

	if r.Level() != 1 {
		t.Errorf("A stale timer must not advance a restarted match, level is %d", r.Level())
	}
	if len(b.sent) != 0 {
		t.Error("A stale timer must emit nothing")
	}
}

func TestRoom_GameOver(t *testing.T) {
	cfg := testConfig()
	cfg.MaxLevel = 1
	m, b, sch := newTestManager(cfg)
	r := twoPlayerMatch(t, m, b)

	r.FinishLevel("alice")
	b.reset()
	sch.fire()

	if r.Started() {
		t.Error("The match must be over after the final level")
	}
	if r.Level() != 2 {
		t.Errorf("The level is deliberately not reset at game over, got %d", r.Level())
	}
	if r.levelWins["alice"] != 1 {
		t.Error("The win table must survive game over")
	}

	for _, sid := range []string{"s1", "s2"} {
		msgs := b.to(sid)
		if len(msgs) != 1 {
			t.Fatalf("Expected 1 game_over for %s, got %d", sid, len(msgs))
		}
		over := msgs[0].(network.GameOver)
		if over.LevelWins["alice"] != 1 || over.LevelWins["bob"] != 0 {
			t.Errorf("Unexpected GameOver wins: %+v", over.LevelWins)
		}
	}

	// The room stays usable: the same roster can start a fresh match.
	if err := r.StartGame("alice"); err != nil {
		t.Fatalf("A finished room should accept a fresh start: %v", err)
	}
	if !r.Started() || r.Level() != 1 {
		t.Errorf("Expected a restarted match at level 1, got started=%v level=%d", r.Started(), r.Level())
	}
	if r.levelWins["alice"] != 1 {
		t.Error("Win history should persist into the next match")
	}
}
