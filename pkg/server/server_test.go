package server

import (
	"bytes"
	"errors"
	"io"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/LightOfTheWar/Online-Chat-Prive/pkg/datastore"
	"github.com/LightOfTheWar/Online-Chat-Prive/pkg/protocol"
)

// nopConn accepts writes and EOFs on read.
type nopConn struct{}

func (c *nopConn) Read(_ []byte) (int, error)         { return 0, io.EOF }
func (c *nopConn) Write(p []byte) (int, error)        { return len(p), nil }
func (c *nopConn) Close() error                       { return nil }
func (c *nopConn) LocalAddr() net.Addr                { return &net.IPAddr{} }
func (c *nopConn) RemoteAddr() net.Addr               { return &net.IPAddr{} }
func (c *nopConn) SetDeadline(_ time.Time) error      { return nil }
func (c *nopConn) SetReadDeadline(_ time.Time) error  { return nil }
func (c *nopConn) SetWriteDeadline(_ time.Time) error { return nil }

// recConn records every payload written to it.
type recConn struct {
	nopConn
	mu  sync.Mutex
	buf bytes.Buffer
}

func (c *recConn) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buf.Write(p)
}

// payloads decodes and returns everything written so far.
func (c *recConn) payloads(t *testing.T) []string {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()

	var out []string
	r := bytes.NewReader(c.buf.Bytes())
	for {
		msg, err := protocol.ReadPayload(r)
		if errors.Is(err, io.EOF) {
			return out
		}
		if err != nil {
			t.Fatalf("decode recorded payload: %v", err)
		}
		out = append(out, msg)
	}
}

// failConn rejects every write, simulating a reset peer.
type failConn struct {
	nopConn
	closed bool
}

func (c *failConn) Write(_ []byte) (int, error) { return 0, errors.New("connection reset") }
func (c *failConn) Close() error                { c.closed = true; return nil }

// memTranscript is an in-memory TranscriptLog for unit tests.
type memTranscript struct {
	mu    sync.Mutex
	lines []string
}

func (m *memTranscript) Append(line string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lines = append(m.lines, line)
	return nil
}

func (m *memTranscript) Recent(n int) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.lines) > n {
		return append([]string(nil), m.lines[len(m.lines)-n:]...), nil
	}
	return append([]string(nil), m.lines...), nil
}

func (m *memTranscript) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lines = nil
	return nil
}

func (m *memTranscript) all() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.lines...)
}

func newTestServer(t *testing.T) (*Server, *datastore.Memory, *memTranscript) {
	t.Helper()
	st := datastore.NewMemory()
	tr := &memTranscript{}
	cfg := DefaultConfig()
	cfg.Addr = "127.0.0.1:0"
	cfg.ShutdownGrace = 10 * time.Millisecond
	srv := New(cfg, Dependencies{Store: st, Transcript: tr})
	return srv, st, tr
}

// register wires a fake connection into the registry as an active session.
func register(t *testing.T, srv *Server, name string, conn net.Conn) *Session {
	t.Helper()
	sess := newSession(name, conn, 0)
	if !srv.registry.Register(sess) {
		t.Fatalf("Register(%q) returned false", name)
	}
	return sess
}

func TestIsAdmin(t *testing.T) {
	srv, _, _ := newTestServer(t)

	if !srv.IsAdmin("admin") {
		t.Errorf("bootstrap admin not recognized")
	}
	if srv.IsAdmin("alice") {
		t.Errorf("non-admin recognized as admin")
	}
}

func TestAdminSetFromConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Admins = []string{"root", "ops"}
	srv := New(cfg, Dependencies{Store: datastore.NewMemory(), Transcript: &memTranscript{}})

	if !srv.IsAdmin("root") || !srv.IsAdmin("ops") {
		t.Errorf("configured admins not recognized")
	}
	if srv.IsAdmin("admin") {
		t.Errorf("default admin should not apply when admins are configured")
	}
}
