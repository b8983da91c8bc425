package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"net"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/LightOfTheWar/Online-Chat-Prive/pkg/protocol"
)

func main() {
	addr := flag.String("addr", "127.0.0.1:12345", "chat server address")
	user := flag.String("user", "", "username (prompted if empty)")
	flag.Parse()

	stdin := bufio.NewReader(os.Stdin)

	username := strings.TrimSpace(*user)
	if username == "" {
		fmt.Print("Username: ")
		line, err := stdin.ReadString('\n')
		if err != nil {
			fatalf("read username: %v", err)
		}
		username = strings.TrimSpace(line)
	}

	password, err := readPassword(stdin)
	if err != nil {
		fatalf("read password: %v", err)
	}

	conn, err := net.Dial("tcp", *addr)
	if err != nil {
		fatalf("connect to %s: %v", *addr, err)
	}
	defer func() { _ = conn.Close() }()

	if err := protocol.WritePayload(conn, username+"\n"+password); err != nil {
		fatalf("send credentials: %v", err)
	}

	// The server speaks first: either the history replay or a rejection
	// message followed by a close. Print everything until the connection
	// drops, then exit.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			msg, err := protocol.ReadPayload(conn)
			if err != nil {
				if !errors.Is(err, io.EOF) && !errors.Is(err, net.ErrClosed) {
					fmt.Fprintf(os.Stderr, "connection lost: %v\n", err)
				}
				return
			}
			if msg != "" {
				fmt.Println(msg)
			}
		}
	}()

	go func() {
		for {
			line, err := stdin.ReadString('\n')
			if err != nil {
				return
			}
			text := strings.TrimSpace(line)
			if text == "" {
				continue
			}
			if err := protocol.WritePayload(conn, text); err != nil {
				return
			}
		}
	}()

	<-done
	fmt.Println("disconnected")
}

// readPassword reads without echo when stdin is a terminal, and falls back
// to a plain line read when it is piped.
func readPassword(stdin *bufio.Reader) (string, error) {
	fmt.Print("Password: ")
	if fd := int(os.Stdin.Fd()); term.IsTerminal(fd) {
		raw, err := term.ReadPassword(fd)
		fmt.Println()
		if err != nil {
			return "", err
		}
		return string(raw), nil
	}
	line, err := stdin.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
