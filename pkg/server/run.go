package server

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// Start binds the listener and launches the accept loop. It returns once
// the server is accepting connections.
func (s *Server) Start() error {
	if s.store == nil {
		return fmt.Errorf("server: missing store dependency")
	}
	if s.transcript == nil {
		return fmt.Errorf("server: missing transcript dependency")
	}

	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("server: listen: %w", err)
	}
	s.ln = ln

	slog.Info("chat server listening", "addr", ln.Addr().String())

	go s.acceptLoop()
	return nil
}

// Addr returns the listener's bound address, useful when Addr was ":0".
func (s *Server) Addr() net.Addr {
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

func (s *Server) acceptLoop() {
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			select {
			case <-s.ctx.Done():
				return
			default:
			}
			if errors.Is(err, net.ErrClosed) {
				return
			}
			slog.Error("accept error", "err", err)
			continue
		}
		go s.handleConn(conn)
	}
}

// Run starts the server plus the operator console and blocks until a
// shutdown signal. The console's stop command exits the process directly
// and never returns here.
func (s *Server) Run() error {
	if err := s.Start(); err != nil {
		return err
	}

	s.StartMetricsHTTP()
	s.metrics.StartPeriodicLog(60*time.Second, s.ctx.Done())

	console := NewConsole(s, os.Stdin, os.Stdout)
	go console.Run()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
		slog.Info("shutting down on signal")
	case <-s.ctx.Done():
	}

	s.Shutdown()
	return nil
}

// Shutdown stops the accept loop and closes every live session.
func (s *Server) Shutdown() {
	s.cancel()
	if s.ln != nil {
		_ = s.ln.Close()
	}
	for _, sess := range s.registry.Snapshot() {
		s.registry.Unregister(sess.Username)
		_ = sess.Close()
	}
}
