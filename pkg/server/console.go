package server

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"
	"time"
)

const consoleHelp = `Commands:
  stop        broadcast a shutdown notice, wait the grace period, then exit
  clear       clear the chat transcript
  ban <name>  ban a user (disconnects them if online)
  say <text>  broadcast a message from the console
  who         list online users
  bans        list ban records
  help        show this help`

// Console is the trusted local control plane. It reads commands line by
// line from a single input stream and applies the same admin actions as the
// slash-command interpreter.
type Console struct {
	server *Server
	in     io.Reader
	out    io.Writer

	// Exit terminates the process after a stop command. Tests override it.
	Exit func()
}

// NewConsole creates a console bound to the given input and output streams.
func NewConsole(srv *Server, in io.Reader, out io.Writer) *Console {
	return &Console{
		server: srv,
		in:     in,
		out:    out,
		Exit:   func() { os.Exit(0) },
	}
}

// Run processes console input until stop is issued or the input stream
// ends. Unknown input is ignored.
func (c *Console) Run() {
	sc := bufio.NewScanner(c.in)
	for sc.Scan() {
		args := strings.Fields(strings.TrimSpace(sc.Text()))
		if len(args) == 0 {
			continue
		}

		switch strings.ToLower(args[0]) {
		case "stop":
			c.stop()
			return
		case "clear":
			if err := c.server.ClearChat(); err != nil {
				slog.Error("clear chat failed", "err", err)
				continue
			}
			slog.Info("chat cleared from console")
		case "ban":
			if len(args) < 2 {
				fmt.Fprintln(c.out, "usage: ban <name>")
				continue
			}
			if err := c.server.BanUser(args[1], "console"); err != nil {
				slog.Error("ban failed", "target", args[1], "err", err)
			}
		case "say":
			if len(args) < 2 {
				fmt.Fprintln(c.out, "usage: say <text>")
				continue
			}
			c.server.Announce(strings.Join(args[1:], " "))
		case "who":
			names := c.server.registry.Usernames()
			sort.Strings(names)
			fmt.Fprintf(c.out, "%d online: %s\n", len(names), strings.Join(names, ", "))
		case "bans":
			bans, err := c.server.store.ListBans()
			if err != nil {
				slog.Error("list bans failed", "err", err)
				continue
			}
			for _, b := range bans {
				fmt.Fprintf(c.out, "%s (by %s at %s)\n", b.Username, b.BannedBy, b.CreatedAt.Format(time.RFC3339))
			}
		case "help":
			fmt.Fprintln(c.out, consoleHelp)
		}
	}
}

// stop announces the shutdown, waits the grace period so in-flight sends
// can land, then terminates the process.
func (c *Console) stop() {
	slog.Info("shutdown requested from console")
	c.server.Broadcast("[SERVER] server shutting down")
	time.Sleep(c.server.cfg.ShutdownGrace)
	c.server.Shutdown()
	c.Exit()
}
