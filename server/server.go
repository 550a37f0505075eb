package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/rpc"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/wfunc/dodgerelay/broadcast"
	"github.com/wfunc/dodgerelay/config"
	"github.com/wfunc/dodgerelay/logger"
	"github.com/wfunc/dodgerelay/monitor"
	"github.com/wfunc/dodgerelay/network"
	"github.com/wfunc/dodgerelay/room"
	dodgerpc "github.com/wfunc/dodgerelay/rpc"
	"github.com/wfunc/dodgerelay/services"
	"github.com/wfunc/dodgerelay/session"
	"github.com/wfunc/dodgerelay/timer"
)

type GameServer struct {
	cfg            *config.Config
	upgrader       websocket.Upgrader
	roomManager    *room.Manager
	sessionManager *session.Manager
	dispatcher     *broadcast.Dispatcher
	timers         *timer.Manager
	statsService   *services.StatsService
	rpcServer      *dodgerpc.Server
	monitor        *monitor.Monitor
	shutdownChan   chan struct{}
}

func NewGameServer(cfg *config.Config) *GameServer {
	s := &GameServer{
		cfg:            cfg,
		dispatcher:     broadcast.NewDispatcher(),
		timers:         timer.NewManager(),
		sessionManager: session.NewManager(),
		monitor:        monitor.NewMonitor("dodgerelay"),
		shutdownChan:   make(chan struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // browser clients connect from any origin
			},
		},
	}

	s.roomManager = room.NewManager(cfg.Game, s.dispatcher, s.timers)
	s.statsService = services.NewStatsService(s.roomManager, s.sessionManager)

	rpcServer, err := dodgerpc.NewServer(cfg.Server.RPCAddress)
	if err != nil {
		logger.Log.Fatalf("Failed to create RPC server: %v", err)
	}
	s.rpcServer = rpcServer
	rpc.Register(dodgerpc.NewAdminService(s.statsService))

	return s
}

func (s *GameServer) Start() error {
	go s.rpcServer.Start()
	s.monitor.StartServer(s.cfg.Server.MetricsAddress)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	logger.Log.Infof("Game server listening on %s", s.cfg.Server.HTTPAddress)
	return http.ListenAndServe(s.cfg.Server.HTTPAddress, mux)
}

func (s *GameServer) Shutdown() {
	close(s.shutdownChan)
	s.timers.Stop()
	s.rpcServer.Stop()
}

func (s *GameServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Infof("Failed to upgrade connection: %v", err)
		return
	}
	s.handleConnection(conn)
}

func (s *GameServer) handleConnection(conn *websocket.Conn) {
	wsConn := network.NewWSConnection(conn)
	if s.cfg.Game.Heartbeat > 0 {
		wsConn.SetHeartbeat(s.cfg.Game.Heartbeat)
	}

	sess := session.NewSession(uuid.New().String(), wsConn)
	s.sessionManager.Add(sess)
	s.monitor.IncOnlinePlayers()

	logger.Log.Infof("New connection from %s, session ID: %s", wsConn.RemoteAddr(), sess.GetID())

	defer func() {
		logger.Log.Infof("Connection closed from %s, session ID: %s", wsConn.RemoteAddr(), sess.GetID())
		s.sessionManager.Remove(sess.GetID())
		s.monitor.DecOnlinePlayers()
		if sess.RoomCode != "" && sess.PlayerID != "" {
			s.roomManager.RemovePlayer(sess.RoomCode, sess.PlayerID)
			s.monitor.SetActiveRooms(s.roomManager.RoomCount())
		}
		wsConn.Close()
	}()

	for {
		select {
		case <-s.shutdownChan:
			return
		default:
			raw, err := wsConn.ReadMessage()
			if err != nil {
				return
			}
			start := time.Now()
			s.handleMessage(sess, raw)
			s.monitor.ObserveMessageLatency(time.Since(start))
		}
	}
}

// handleMessage decodes one inbound frame and dispatches on its type.
// Malformed JSON is dropped; an unrecognized type is ignored. Neither is
// fatal to the connection.
func (s *GameServer) handleMessage(sess *session.Session, raw []byte) {
	var msg network.ClientMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		logger.Log.Debugf("Dropping malformed message from session %s: %v", sess.GetID(), err)
		return
	}
	s.monitor.IncMessagesReceived()

	switch msg.Type {
	case network.MsgCreateRoom:
		s.handleCreateRoom(sess, &msg)
	case network.MsgJoinRoom:
		s.handleJoinRoom(sess, &msg)
	case network.MsgPlayerReady:
		if r, ok := s.currentRoom(sess); ok {
			r.SetReady(sess.PlayerID, msg.Ready)
		}
	case network.MsgStartGame:
		s.handleStartGame(sess)
	case network.MsgPlayerPosition:
		if r, ok := s.currentRoom(sess); ok {
			r.MovePlayer(sess.PlayerID, msg.X, msg.Y)
		}
	case network.MsgLobbyPosition:
		if r, ok := s.currentRoom(sess); ok {
			r.MoveLobbyPlayer(sess.PlayerID, msg.X, msg.Y)
		}
	case network.MsgPlayerDied:
		if r, ok := s.currentRoom(sess); ok {
			r.KillPlayer(sess.PlayerID, msg.X, msg.Y)
		}
	case network.MsgRevivePlayer:
		if r, ok := s.currentRoom(sess); ok {
			r.RevivePlayer(sess.PlayerID, msg.TargetID)
		}
	case network.MsgPlayerFinished:
		if r, ok := s.currentRoom(sess); ok {
			r.FinishLevel(sess.PlayerID)
		}
	default:
		logger.Log.Debugf("Unknown message type %q from session %s", msg.Type, sess.GetID())
	}
}

func (s *GameServer) handleCreateRoom(sess *session.Session, msg *network.ClientMessage) {
	if sess.RoomCode != "" {
		return // already in a room
	}

	r, err := s.roomManager.CreateRoom(sess, msg.PlayerName, msg.Color)
	if err != nil {
		// Only possible when the code space is exhausted.
		logger.Log.Errorf("Failed to create room for session %s: %v", sess.GetID(), err)
		s.sendError(sess, err)
		return
	}

	s.monitor.IncRoomsCreated()
	s.monitor.SetActiveRooms(s.roomManager.RoomCount())
	logger.Log.Infof("Session %s created room %s as %q", sess.GetID(), r.Code(), sess.PlayerID)
}

func (s *GameServer) handleJoinRoom(sess *session.Session, msg *network.ClientMessage) {
	if sess.RoomCode != "" {
		return
	}

	r, id, err := s.roomManager.JoinRoom(msg.RoomCode, sess, msg.PlayerName, msg.Color)
	if err != nil {
		s.sendError(sess, err)
		return
	}
	logger.Log.Infof("Session %s joined room %s as %q", sess.GetID(), r.Code(), id)
}

func (s *GameServer) handleStartGame(sess *session.Session) {
	r, ok := s.currentRoom(sess)
	if !ok {
		return
	}
	if err := r.StartGame(sess.PlayerID); err != nil {
		if errors.Is(err, room.ErrNotAllReady) {
			s.sendError(sess, err)
		}
		return
	}
	if sess.PlayerID == r.HostID() {
		logger.Log.Infof("Room %s started a match with %d players", r.Code(), r.PlayerCount())
	}
}

func (s *GameServer) currentRoom(sess *session.Session) (*room.Room, bool) {
	if sess.RoomCode == "" || sess.PlayerID == "" {
		return nil, false
	}
	return s.roomManager.GetRoom(sess.RoomCode)
}

func (s *GameServer) sendError(sess *session.Session, err error) {
	s.dispatcher.Send(sess, network.ErrorMessage{
		Type:    network.MsgError,
		Message: err.Error(),
	})
}
