// Package crypto provides password hashing for account credentials.
package crypto

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"io"

	"golang.org/x/crypto/argon2"
)

// SaltLength is the byte length of per-user password salts.
const SaltLength = 16

// GenerateSalt returns a random per-user salt, hex-encoded for storage.
func GenerateSalt() (string, error) {
	b := make([]byte, SaltLength)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return "", fmt.Errorf("crypto: generate salt: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// HashPassword hashes a password using Argon2id with the given hex-encoded
// salt. The result is hex-encoded for storage alongside the salt.
func HashPassword(password, saltHex string) (string, error) {
	salt, err := hex.DecodeString(saltHex)
	if err != nil {
		return "", fmt.Errorf("crypto: decode salt: %w", err)
	}
	hash := argon2.IDKey([]byte(password), salt, 1, 64*1024, 4, 32)
	return hex.EncodeToString(hash), nil
}

// Verify reports whether password matches the stored hash for the stored
// salt. The hash comparison is constant-time.
func Verify(password, saltHex, hashHex string) bool {
	computed, err := HashPassword(password, saltHex)
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(computed), []byte(hashHex)) == 1
}
