// Package datastore provides persistence for accounts and bans.
//
// The default implementation is SQLite; a memory implementation mirrors its
// validation for tests. Both are safe for concurrent use.
package datastore

import "github.com/LightOfTheWar/Online-Chat-Prive/pkg/model"

// CredentialStore is the persistence interface consumed by the server core.
// Implementations must treat every method as potentially slow I/O; callers
// never invoke them while holding the session registry lock.
type CredentialStore interface {
	UserReadProvider
	UserWriteProvider
	BanReadProvider
	BanWriteProvider

	Close() error
}

type UserReadProvider interface {
	// GetUserByUsername returns nil, nil when no account exists.
	GetUserByUsername(username string) (*model.User, error)
	ListUsers() ([]model.User, error)
}

type UserWriteProvider interface {
	// CreateUser registers an account. It is called at most once per
	// username; a duplicate violates the unique constraint and errors.
	CreateUser(username, passwordHash, salt string) (*model.User, error)
}

type BanReadProvider interface {
	IsBanned(username string) (bool, error)
	ListBans() ([]model.Ban, error)
}

type BanWriteProvider interface {
	// CreateBan is idempotent: banning an already banned name is a no-op.
	CreateBan(username, reason, bannedBy string) error
}

// Compile-time checks: both implementations satisfy CredentialStore.
var _ CredentialStore = (*Store)(nil)
var _ CredentialStore = (*Memory)(nil)
