package server

import "log/slog"

// Broadcast delivers text to every session in the current registry
// snapshot. Sessions whose delivery fails are pruned: unregistered, closed,
// and announced with a single departure notice. The notice itself is
// broadcast the same way, but a failed session is detected at most once, so
// the pass always terminates.
func (s *Server) Broadcast(text string) {
	pruned := make(map[string]bool)
	pending := []string{text}

	for len(pending) > 0 {
		msg := pending[0]
		pending = pending[1:]

		for _, sess := range s.registry.Snapshot() {
			if pruned[sess.Username] {
				continue
			}
			err := sess.Send(msg)
			if err == nil {
				continue
			}
			pruned[sess.Username] = true
			_ = sess.Close()
			// Another path (handler cleanup, a ban) may have removed this
			// session already and owns its announcement; only the path that
			// wins the unregister announces the departure.
			if !s.registry.Unregister(sess.Username) {
				continue
			}
			s.metrics.SessionsPruned.Add(1)
			slog.Warn("pruned unreachable session", "user", sess.Username, "err", err)
			pending = append(pending, "[SERVER] "+sess.Username+" left")
		}
	}
}
