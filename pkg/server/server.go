// Package server implements the chat server core: session registry,
// broadcast engine, command handling, and the operator console.
package server

import (
	"context"
	"net"
	"time"

	"github.com/LightOfTheWar/Online-Chat-Prive/pkg/datastore"
)

// Config holds server configuration.
type Config struct {
	Addr           string        // TCP bind address (e.g. ":12345")
	DBPath         string        // SQLite database path
	TranscriptPath string        // flat-file chat log path
	Admins         []string      // usernames allowed to issue privileged commands
	HistoryLines   int           // transcript lines replayed to a joining client
	AuthTimeout    time.Duration // deadline for the first (credentials) payload
	WriteTimeout   time.Duration // per-send deadline during broadcast
	ShutdownGrace  time.Duration // wait after the shutdown notice before exiting
	MetricsAddr    string        // HTTP bind address for /metrics (empty = disabled)
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Addr:           ":12345",
		DBPath:         "database.db",
		TranscriptPath: "chat.txt",
		Admins:         []string{"admin"},
		HistoryLines:   40,
		AuthTimeout:    10 * time.Second,
		WriteTimeout:   5 * time.Second,
		ShutdownGrace:  3 * time.Second,
	}
}

// TranscriptLog is the chat log consumed by the server core.
type TranscriptLog interface {
	Append(line string) error
	Recent(n int) ([]string, error)
	Clear() error
}

// Dependencies holds external collaborators for the server. The caller
// retains ownership and closes them after shutdown.
type Dependencies struct {
	Store      datastore.CredentialStore
	Transcript TranscriptLog
}

// Server is the central chat relay.
type Server struct {
	cfg        Config
	registry   *Registry
	admins     map[string]bool // seeded at startup, read-only afterwards
	store      datastore.CredentialStore
	transcript TranscriptLog
	metrics    *Metrics
	ln         net.Listener
	ctx        context.Context
	cancel     context.CancelFunc
}

// New creates a new Server instance.
func New(cfg Config, deps Dependencies) *Server {
	admins := make(map[string]bool, len(cfg.Admins))
	for _, name := range cfg.Admins {
		admins[name] = true
	}
	if len(admins) == 0 {
		admins["admin"] = true // bootstrap admin
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		cfg:        cfg,
		registry:   NewRegistry(),
		admins:     admins,
		store:      deps.Store,
		transcript: deps.Transcript,
		metrics:    NewMetrics(),
		ctx:        ctx,
		cancel:     cancel,
	}
}

// IsAdmin reports whether a username may issue privileged commands.
func (s *Server) IsAdmin(name string) bool {
	return s.admins[name]
}

// Registry returns the session registry.
func (s *Server) Registry() *Registry {
	return s.registry
}

// Metrics returns the server metrics.
func (s *Server) Metrics() *Metrics {
	return s.metrics
}
