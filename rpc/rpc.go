package rpc

import (
	"net"
	"net/rpc"

	"github.com/jetchart/impostor/logger"
	"github.com/jetchart/impostor/models"
	"github.com/jetchart/impostor/services"
)

// Server manages the RPC listener.
type Server struct {
	listener net.Listener
	address  string
}

// NewServer creates a new RPC server. Services must be registered with
// net/rpc before Start.
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

// StatsService exposes session analytics over net/rpc, for ops tooling.
type StatsService struct {
	sessions *services.SessionService
}

func NewStatsService(sessions *services.SessionService) *StatsService {
	return &StatsService{sessions: sessions}
}

type SessionStatsArgs struct{}

type SessionStatsReply struct {
	Stats models.SessionStats
}

func (s *StatsService) SessionStats(args *SessionStatsArgs, reply *SessionStatsReply) error {
	stats, err := s.sessions.Stats()
	if err != nil {
		return err
	}
	reply.Stats = stats
	return nil
}
