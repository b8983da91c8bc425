package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// StartMetricsHTTP starts a lightweight HTTP server that exposes /metrics
// in Prometheus text exposition format. It runs in the background and
// shuts down when the server context is cancelled.
func (s *Server) StartMetricsHTTP() {
	addr := s.cfg.MetricsAddr
	if addr == "" {
		return // metrics endpoint disabled
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/metrics", s.handleMetrics)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		slog.Info("metrics HTTP listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("metrics HTTP error", "err", err)
		}
	}()

	go func() {
		<-s.ctx.Done()
		_ = srv.Close()
	}()
}

// handleMetrics writes all metrics in Prometheus text exposition format.
func (s *Server) handleMetrics(w http.ResponseWriter, _ *http.Request) {
	snap := s.metrics.Snapshot()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")

	// Write errors to http.ResponseWriter are non-actionable; suppress errcheck.
	write := func(name, help, mtype string, value int64) {
		_, _ = fmt.Fprintf(w, "# HELP %s %s\n", name, help)
		_, _ = fmt.Fprintf(w, "# TYPE %s %s\n", name, mtype)
		_, _ = fmt.Fprintf(w, "%s %d\n", name, value)
	}

	write("chat_uptime_seconds", "Seconds since server start", "gauge", snap.UptimeSeconds)
	write("chat_active_connections", "Current open connections", "gauge", snap.ActiveConnections)
	write("chat_connections_total", "Lifetime accepted connections", "counter", snap.TotalConnections)
	write("chat_auth_success_total", "Successful authentications", "counter", snap.SuccessfulAuths)
	write("chat_auth_failure_total", "Rejected authentications", "counter", snap.FailedAuths)
	write("chat_disconnects_total", "Clean client disconnects", "counter", snap.TotalDisconnects)
	write("chat_messages_total", "Chat lines broadcast", "counter", snap.MessagesRelayed)
	write("chat_sessions_pruned_total", "Sessions dropped after failed sends", "counter", snap.SessionsPruned)
	write("chat_bans_total", "Users banned this run", "counter", snap.BanCount)
	write("chat_clears_total", "Transcript clears this run", "counter", snap.ChatClears)
}
