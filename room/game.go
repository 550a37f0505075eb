// room/game.go
//
// Match lifecycle operations. Each one maps to a single inbound message
// kind; preconditions that fail without a named error are silent no-ops,
// matching the two-tier error model.
package room

import "github.com/wfunc/dodgerelay/network"

// SetReady updates a player's ready flag and tells the whole room the new
// ready/total counts. Meaningful only in the lobby.
func (r *Room) SetReady(playerID string, ready bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.players[playerID]
	if !ok {
		return
	}

	p.Ready = ready
	if ready {
		r.ready[playerID] = struct{}{}
	} else {
		delete(r.ready, playerID)
	}

	r.manager.broadcaster.SendAll(r.allSessions(), network.ReadyUpdate{
		Type:       network.MsgReadyUpdate,
		PlayerID:   playerID,
		Ready:      ready,
		ReadyCount: len(r.ready),
		TotalCount: len(r.players),
	})
}

// StartGame begins a match at level 1. Only the host may start; a non-host
// call is silently ignored. ErrNotAllReady is reported to the requester
// only and leaves the room untouched. Win history from a previous match in
// the same room is preserved.
func (r *Room) StartGame(playerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if playerID != r.hostID {
		return nil
	}
	if len(r.ready) < len(r.players) {
		return ErrNotAllReady
	}

	r.started = true
	r.level = 1
	r.generation++
	clear(r.finished)
	clear(r.deaths)
	for _, p := range r.players {
		p.Alive = true
		if _, ok := r.levelWins[p.ID]; !ok {
			r.levelWins[p.ID] = 0
		}
	}

	roster := r.matchRoster()
	for _, id := range r.order {
		r.manager.broadcaster.Send(r.players[id].Session, network.GameStart{
			Type:    network.MsgGameStart,
			Level:   r.level,
			YourID:  id,
			Players: roster,
		})
	}
	return nil
}

// MovePlayer relays an in-level position to everyone but the sender. The
// value is not validated or rate-limited.
func (r *Room) MovePlayer(playerID string, x, y float64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.players[playerID]
	if !ok {
		return
	}
	p.Pos = Position{X: x, Y: y}

	r.manager.broadcaster.SendAll(r.sessionsExcept(playerID), network.PlayerMoved{
		Type:     network.MsgPlayerMoved,
		PlayerID: playerID,
		X:        x,
		Y:        y,
	})
}

// MoveLobbyPlayer is the pre-match twin of MovePlayer, kept as a distinct
// message kind so clients can ignore it outside the lobby view.
func (r *Room) MoveLobbyPlayer(playerID string, x, y float64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.players[playerID]
	if !ok {
		return
	}
	p.Pos = Position{X: x, Y: y}

	r.manager.broadcaster.SendAll(r.sessionsExcept(playerID), network.LobbyPlayerMoved{
		Type:     network.MsgLobbyPlayerMoved,
		PlayerID: playerID,
		X:        x,
		Y:        y,
	})
}

// KillPlayer marks a player dead at (x, y) and records the death
// placeholder used for revival. The sender gets a distinct you_died so the
// client can special-case its own death.
func (r *Room) KillPlayer(playerID string, x, y float64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.players[playerID]
	if !ok || !r.started {
		return
	}

	p.Alive = false
	r.deaths[playerID] = Position{X: x, Y: y}

	r.manager.broadcaster.SendAll(r.sessionsExcept(playerID), network.PlayerDied{
		Type:     network.MsgPlayerDiedBcast,
		PlayerID: playerID,
		X:        x,
		Y:        y,
	})
	r.manager.broadcaster.Send(p.Session, network.YouDied{
		Type: network.MsgYouDied,
		X:    x,
		Y:    y,
	})
}

// RevivePlayer clears the target's death placeholder. A no-op unless the
// target is currently dead. Everyone, reviver and revived included, hears
// about it; the position carried is the one recorded at death.
func (r *Room) RevivePlayer(reviverID, targetID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	pos, dead := r.deaths[targetID]
	if !dead {
		return
	}

	delete(r.deaths, targetID)
	if p, ok := r.players[targetID]; ok {
		p.Alive = true
	}

	r.manager.broadcaster.SendAll(r.allSessions(), network.PlayerRevived{
		Type:      network.MsgPlayerRevived,
		PlayerID:  targetID,
		RevivedBy: reviverID,
		X:         pos.X,
		Y:         pos.Y,
	})
}

// FinishLevel records that a player crossed the finish line. The first
// finisher of a level is credited a win and arms the one-shot advance
// timer; later finishers only update the counts.
func (r *Room) FinishLevel(playerID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.players[playerID]; !ok || !r.started {
		return
	}

	sizeBefore := len(r.finished)
	r.finished[playerID] = struct{}{}
	isFirst := sizeBefore == 0 && len(r.finished) == 1

	if isFirst {
		r.levelWins[playerID]++
	}

	r.manager.broadcaster.SendAll(r.allSessions(), network.PlayerFinished{
		Type:          network.MsgPlayerFinishedBC,
		PlayerID:      playerID,
		IsFirst:       isFirst,
		FinishedCount: len(r.finished),
		TotalCount:    len(r.players),
		LevelWins:     r.winsSnapshot(),
	})

	if isFirst {
		r.manager.scheduleAdvance(r.code, r.generation)
	}
}

// advanceLevel is fired by the scheduler, never by a client. A stale timer
// is a no-op: the room may have been deleted (the manager re-resolves by
// code before calling) or the match restarted (generation mismatch).
func (r *Room) advanceLevel(generation uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.started || generation != r.generation {
		return
	}

	r.level++
	clear(r.finished)
	clear(r.deaths)
	for _, p := range r.players {
		p.Alive = true
	}

	if r.level > r.manager.cfg.MaxLevel {
		// Match over. The level and win table are deliberately not reset;
		// the room stays usable for a subsequent start_game.
		r.started = false
		r.manager.broadcaster.SendAll(r.allSessions(), network.GameOver{
			Type:      network.MsgGameOver,
			LevelWins: r.winsSnapshot(),
		})
		return
	}

	r.manager.broadcaster.SendAll(r.allSessions(), network.NextLevel{
		Type:      network.MsgNextLevel,
		Level:     r.level,
		LevelWins: r.winsSnapshot(),
	})
}
