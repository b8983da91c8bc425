// Package transcript persists the chat log as an append-only flat file.
//
// The file is the durable record of chat lines, one per line. Only the most
// recent lines are ever replayed to a newly joined client, but the file
// itself is unbounded.
package transcript

import (
	"fmt"
	"os"
	"strings"
	"sync"
)

// Log is a mutex-guarded append-only chat log. Concurrent appends from
// multiple sessions are serialized so partial writes never interleave.
type Log struct {
	mu   sync.Mutex
	path string
	f    *os.File
}

// Open opens (or creates) the transcript file for appending.
func Open(path string) (*Log, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644) //nolint:gosec // path from server config
	if err != nil {
		return nil, fmt.Errorf("transcript: open: %w", err)
	}
	return &Log{path: path, f: f}, nil
}

// Append writes one chat line to the log.
func (l *Log) Append(line string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, err := l.f.WriteString(line + "\n"); err != nil {
		return fmt.Errorf("transcript: append: %w", err)
	}
	return nil
}

// Recent returns the last n lines of the transcript in arrival order.
// A missing or empty file yields no lines and no error.
func (l *Log) Recent(n int) ([]string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	data, err := os.ReadFile(l.path) //nolint:gosec // path from server config
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("transcript: read: %w", err)
	}

	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) == 1 && lines[0] == "" {
		return nil, nil
	}
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return lines, nil
}

// Clear truncates the transcript.
func (l *Log) Clear() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.f.Truncate(0); err != nil {
		return fmt.Errorf("transcript: truncate: %w", err)
	}
	if _, err := l.f.Seek(0, 0); err != nil {
		return fmt.Errorf("transcript: seek: %w", err)
	}
	return nil
}

// Close closes the underlying file.
func (l *Log) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.f.Close()
}
