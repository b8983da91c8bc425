package server

import (
	"errors"
	"io"
	"log/slog"
	"net"
	"strings"
	"time"
	"unicode"

	"github.com/LightOfTheWar/Online-Chat-Prive/pkg/crypto"
	"github.com/LightOfTheWar/Online-Chat-Prive/pkg/model"
	"github.com/LightOfTheWar/Online-Chat-Prive/pkg/protocol"
)

// handleConn drives one client connection through its lifecycle:
// authentication, registration, the receive loop, and cleanup. A failure
// here only ever affects this one session.
func (s *Server) handleConn(conn net.Conn) {
	defer func() { _ = conn.Close() }()

	remote := conn.RemoteAddr().String()
	s.metrics.TotalConnections.Add(1)
	s.metrics.ActiveConnections.Add(1)
	defer s.metrics.ActiveConnections.Add(-1)
	slog.Debug("new connection", "remote", remote)

	sess := s.authenticate(conn, remote)
	if sess == nil {
		return
	}
	username := sess.Username
	announced := false

	defer func() {
		// The broadcast engine may have pruned this session already;
		// announce the departure only if we remove the entry here, and only
		// if the join itself was ever announced.
		if s.registry.Unregister(username) {
			s.metrics.TotalDisconnects.Add(1)
			slog.Info("client disconnected", "user", username)
			if announced {
				s.Broadcast("[SERVER] " + username + " left")
			}
		}
	}()

	// Replay recent history as a single payload before the join notice, so
	// the new client never sees its own join echoed twice.
	lines, err := s.transcript.Recent(s.cfg.HistoryLines)
	if err != nil {
		slog.Error("history replay failed", "user", username, "err", err)
		return
	}
	if err := sess.Send(strings.Join(lines, "\n")); err != nil {
		slog.Warn("history send failed", "user", username, "err", err)
		return
	}

	// Join notices are part of the durable history; departure and admin
	// notices are ephemeral.
	joinNotice := "[SERVER] " + username + " joined"
	if err := s.transcript.Append(joinNotice); err != nil {
		slog.Error("transcript append failed", "user", username, "err", err)
		return
	}
	announced = true
	s.Broadcast(joinNotice)
	slog.Info("client joined", "user", username, "remote", remote)

	for {
		select {
		case <-s.ctx.Done():
			return
		default:
		}

		payload, err := protocol.ReadPayload(conn)
		if err != nil {
			if !errors.Is(err, io.EOF) && !isClosedErr(err) {
				slog.Warn("read failed", "user", username, "err", err)
			}
			return
		}

		text := sanitizeText(strings.TrimSpace(payload))
		if text == "" {
			continue
		}

		if strings.HasPrefix(text, "/") {
			s.Dispatch(text, username)
			continue
		}

		line := username + ": " + text
		if err := s.transcript.Append(line); err != nil {
			slog.Error("transcript append failed", "user", username, "err", err)
			return
		}
		s.metrics.MessagesRelayed.Add(1)
		s.Broadcast(line)
	}
}

// authenticate runs the CONNECTED -> AUTHENTICATING transition. It returns
// a registered session on success; on any rejection the client has been
// sent an error payload and nil is returned, leaving cleanup to the caller.
func (s *Server) authenticate(conn net.Conn, remote string) *Session {
	// First payload must be the credentials; a bounded deadline keeps idle
	// connects from pinning a goroutine forever.
	_ = conn.SetReadDeadline(time.Now().Add(s.cfg.AuthTimeout))
	payload, err := protocol.ReadPayload(conn)
	if err != nil {
		slog.Debug("credentials read failed", "remote", remote, "err", err)
		return nil
	}
	_ = conn.SetReadDeadline(time.Time{}) // clear deadline

	username, password, err := protocol.ParseCredentials(payload)
	if err != nil {
		s.reject(conn, "invalid credential format: expected username and password")
		return nil
	}
	if err := model.ValidateUsername(username); err != nil {
		s.reject(conn, "invalid username: "+err.Error())
		return nil
	}

	banned, err := s.store.IsBanned(username)
	if err != nil {
		slog.Error("ban check failed", "user", username, "err", err)
		s.reject(conn, "internal error")
		return nil
	}
	if banned {
		s.metrics.FailedAuths.Add(1)
		slog.Info("banned user rejected", "user", username, "remote", remote)
		s.reject(conn, "you are banned from this server")
		return nil
	}

	user, err := s.store.GetUserByUsername(username)
	if err != nil {
		slog.Error("user lookup failed", "user", username, "err", err)
		s.reject(conn, "internal error")
		return nil
	}

	if user == nil {
		// First login doubles as registration.
		salt, err := crypto.GenerateSalt()
		if err != nil {
			slog.Error("salt generation failed", "err", err)
			s.reject(conn, "internal error")
			return nil
		}
		hash, err := crypto.HashPassword(password, salt)
		if err != nil {
			slog.Error("password hash failed", "err", err)
			s.reject(conn, "internal error")
			return nil
		}
		if _, err := s.store.CreateUser(username, hash, salt); err != nil {
			slog.Error("account creation failed", "user", username, "err", err)
			s.reject(conn, "failed to create account")
			return nil
		}
		slog.Info("account created", "user", username)
	} else if !crypto.Verify(password, user.Salt, user.PasswordHash) {
		s.metrics.FailedAuths.Add(1)
		slog.Info("wrong password", "user", username, "remote", remote)
		s.reject(conn, "incorrect password")
		return nil
	}

	sess := newSession(username, conn, s.cfg.WriteTimeout)
	if !s.registry.Register(sess) {
		s.metrics.FailedAuths.Add(1)
		slog.Info("duplicate login rejected", "user", username, "remote", remote)
		s.reject(conn, "name already in use")
		return nil
	}

	s.metrics.SuccessfulAuths.Add(1)
	return sess
}

// reject sends an error payload before the caller closes the connection.
func (s *Server) reject(conn net.Conn, msg string) {
	if s.cfg.WriteTimeout > 0 {
		_ = conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
	}
	_ = protocol.WritePayload(conn, msg)
}

// isClosedErr reports whether err is the expected result of the connection
// being closed out from under a blocked read.
func isClosedErr(err error) bool {
	return errors.Is(err, net.ErrClosed)
}

// sanitizeText collapses newlines to spaces and strips other control
// characters, keeping the transcript file line-oriented.
func sanitizeText(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\r' {
			return ' '
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}
