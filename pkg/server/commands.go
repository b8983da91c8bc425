package server

import (
	"log/slog"
	"strings"
)

// Admin actions shared by the slash-command interpreter and the operator
// console. Both front ends parse independently but converge here so the two
// paths cannot drift apart.

// ClearChat empties the transcript and announces it.
func (s *Server) ClearChat() error {
	if err := s.transcript.Clear(); err != nil {
		return err
	}
	s.metrics.ChatClears.Add(1)
	s.Broadcast("[SERVER] chat cleared by admin")
	return nil
}

// BanUser forcibly disconnects name if online, persists the ban, and
// announces it. Bans are permanent.
func (s *Server) BanUser(name, bannedBy string) error {
	if sess, ok := s.registry.Lookup(name); ok {
		s.registry.Unregister(name)
		_ = sess.Close()
	}
	if err := s.store.CreateBan(name, "", bannedBy); err != nil {
		return err
	}
	s.metrics.BanCount.Add(1)
	slog.Info("user banned", "user", name, "by", bannedBy)
	s.Broadcast("[SERVER] " + name + " was banned")
	return nil
}

// Announce broadcasts an operator message to the room.
func (s *Server) Announce(text string) {
	s.Broadcast("[CONSOLE] " + text)
}

// Dispatch applies a leading-slash command line issued by a connected
// client. Commands from non-admins are silently ignored, as are unknown or
// malformed ones.
func (s *Server) Dispatch(line, issuer string) {
	if !s.IsAdmin(issuer) {
		slog.Debug("ignored command from non-admin", "user", issuer)
		return
	}

	args := strings.Fields(line)
	if len(args) == 0 {
		return
	}

	switch args[0] {
	case "/clear":
		if err := s.ClearChat(); err != nil {
			slog.Error("clear chat failed", "by", issuer, "err", err)
		}
	case "/ban":
		if len(args) < 2 {
			return
		}
		if err := s.BanUser(args[1], issuer); err != nil {
			slog.Error("ban failed", "target", args[1], "by", issuer, "err", err)
		}
	}
}
