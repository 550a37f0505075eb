package rpc

import (
	"net"
	"net/rpc"

	"github.com/wfunc/dodgerelay/logger"
	"github.com/wfunc/dodgerelay/services"
)

// Server manages the RPC listener.
type Server struct {
	listener net.Listener
	address  string
}

// NewServer creates a new RPC server. Services must be registered with the
// rpc package before Start.
func NewServer(addr string) (*Server, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &Server{
		listener: listener,
		address:  addr,
	}, nil
}

// Start begins listening for RPC requests.
func (s *Server) Start() {
	logger.Log.Infof("RPC server listening on %s", s.address)
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if _, ok := err.(*net.OpError); ok {
				logger.Log.Info("RPC server listener closed.")
				return
			}
			logger.Log.Errorf("RPC server accept error: %v", err)
			continue
		}
		go rpc.ServeConn(conn)
	}
}

// Stop closes the RPC listener.
func (s *Server) Stop() {
	if s.listener != nil {
		logger.Log.Info("Stopping RPC server.")
		s.listener.Close()
	}
}

// AdminService exposes operator queries over net/rpc. Methods follow the
// net/rpc signature: exported args struct, pointer reply, error return.
type AdminService struct {
	stats *services.StatsService
}

func NewAdminService(stats *services.StatsService) *AdminService {
	return &AdminService{stats: stats}
}

type StatsArgs struct{}

type StatsReply struct {
	Rooms   int
	Players int
}

func (a *AdminService) GetStats(args *StatsArgs, reply *StatsReply) error {
	reply.Rooms, reply.Players = a.stats.Counts()
	return nil
}

type ListRoomsArgs struct{}

type ListRoomsReply struct {
	Rooms []services.RoomSummary
}

func (a *AdminService) ListRooms(args *ListRoomsArgs, reply *ListRoomsReply) error {
	reply.Rooms = a.stats.ListRooms()
	return nil
}
