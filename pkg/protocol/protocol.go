// Package protocol defines payload framing for the chat wire format.
//
// TCP offers a byte stream with no message boundaries, so every payload in
// either direction is framed as [4-byte big-endian length][UTF-8 text].
// Payload contents are opaque strings: credentials on the first
// client->server payload, chat lines and commands afterwards, broadcast
// strings server->client.
package protocol

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strings"
)

// MaxPayload is the maximum payload size (64KB).
const MaxPayload = 65536

var (
	ErrPayloadTooLarge = errors.New("protocol: payload too large")
	ErrBadCredentials  = errors.New("protocol: credentials must be username and password separated by a newline")
)

// WritePayload writes one length-prefixed payload to a writer.
func WritePayload(w io.Writer, text string) error {
	if len(text) > MaxPayload {
		return fmt.Errorf("%w: %d bytes", ErrPayloadTooLarge, len(text))
	}

	buf := make([]byte, 4+len(text))
	binary.BigEndian.PutUint32(buf[:4], uint32(len(text)))
	copy(buf[4:], text)

	// Single Write so concurrent senders guarded by a per-connection lock
	// never interleave a prefix with another payload's body.
	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("protocol: write payload: %w", err)
	}
	return nil
}

// ReadPayload reads one length-prefixed payload from a reader.
func ReadPayload(r io.Reader) (string, error) {
	lenBuf := make([]byte, 4)
	if _, err := io.ReadFull(r, lenBuf); err != nil {
		return "", fmt.Errorf("protocol: read length: %w", err)
	}
	length := binary.BigEndian.Uint32(lenBuf)
	if length > MaxPayload {
		return "", fmt.Errorf("%w: %d bytes", ErrPayloadTooLarge, length)
	}

	data := make([]byte, length)
	if _, err := io.ReadFull(r, data); err != nil {
		return "", fmt.Errorf("protocol: read payload: %w", err)
	}
	return string(data), nil
}

// ParseCredentials splits the first client payload ("<username>\n<password>")
// into its two fields, trimming surrounding whitespace from each. A payload
// without a newline separator is malformed.
func ParseCredentials(payload string) (username, password string, err error) {
	user, pass, found := strings.Cut(payload, "\n")
	if !found {
		return "", "", ErrBadCredentials
	}
	return strings.TrimSpace(user), strings.TrimSpace(pass), nil
}
