package tcp

import (
	"context"
	stderrors "errors"
	"log/slog"
	"net"
)

// Server accepts connections and gives each one its own handler goroutine.
// Handlers are never awaited: a connection that never completes its
// handshake only ties up its own goroutine.
type Server struct {
	log      *slog.Logger
	listener net.Listener
	handler  *Handler
}

func NewServer(log *slog.Logger, listener net.Listener, handler *Handler) *Server {
	return &Server{log: log, listener: listener, handler: handler}
}

func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

// Serve runs the accept loop until the listener is closed. A failed accept is
// logged and the loop goes on.
func (s *Server) Serve(ctx context.Context) error {
	s.log.Info("Accepting connections", "addr", s.listener.Addr().String())
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if stderrors.Is(err, net.ErrClosed) {
				s.log.Debug("Listener closed, stopping accept loop")
				return nil
			}
			s.log.Warn("Accept failed", "error", err)
			continue
		}
		s.log.Debug("Connection accepted", "remote", conn.RemoteAddr().String())
		go s.handler.Handle(ctx, conn)
	}
}

func (s *Server) Close() error {
	return s.listener.Close()
}
