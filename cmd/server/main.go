package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/LightOfTheWar/Online-Chat-Prive/pkg/datastore"
	"github.com/LightOfTheWar/Online-Chat-Prive/pkg/logging"
	"github.com/LightOfTheWar/Online-Chat-Prive/pkg/server"
	"github.com/LightOfTheWar/Online-Chat-Prive/pkg/transcript"
	"github.com/LightOfTheWar/Online-Chat-Prive/pkg/version"
)

func main() {
	cfg := server.DefaultConfig()

	configFile := flag.String("config", "", "YAML config file (flags override file values)")
	flag.StringVar(&cfg.Addr, "addr", cfg.Addr, "TCP bind address")
	flag.StringVar(&cfg.DBPath, "db", cfg.DBPath, "SQLite database file path")
	flag.StringVar(&cfg.TranscriptPath, "transcript", cfg.TranscriptPath, "Chat transcript file path")
	flag.IntVar(&cfg.HistoryLines, "history", cfg.HistoryLines, "Number of transcript lines replayed on join")
	flag.StringVar(&cfg.MetricsAddr, "metrics", cfg.MetricsAddr, "HTTP bind address for Prometheus /metrics (empty to disable)")
	admins := flag.String("admins", "", "Comma-separated admin usernames (default: admin)")

	logLevel := flag.String("log-level", "info", "Log level: "+logging.LevelNames())
	logFormat := flag.String("log-format", "text", "Log format: text or json")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}

	if err := logging.Setup(logging.Options{
		Level:  *logLevel,
		Format: *logFormat,
		Output: os.Stdout,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "invalid logging config: %v\n", err)
		os.Exit(1)
	}

	if *configFile != "" {
		if err := server.LoadConfigFile(*configFile, &cfg); err != nil {
			slog.Error("load config", "path", *configFile, "err", err)
			os.Exit(1)
		}
	}
	if *admins != "" {
		cfg.Admins = strings.Split(*admins, ",")
	}

	st, err := datastore.New(cfg.DBPath)
	if err != nil {
		slog.Error("open database", "err", err)
		os.Exit(1)
	}
	defer func() { _ = st.Close() }()

	tr, err := transcript.Open(cfg.TranscriptPath)
	if err != nil {
		slog.Error("open transcript", "path", cfg.TranscriptPath, "err", err)
		os.Exit(1)
	}
	defer func() { _ = tr.Close() }()

	srv := server.New(cfg, server.Dependencies{Store: st, Transcript: tr})
	if err := srv.Run(); err != nil {
		slog.Error("server error", "err", err)
		os.Exit(1)
	}
}
