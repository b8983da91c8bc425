package datastore_test

import (
	"testing"
	"time"

	"github.com/LightOfTheWar/Online-Chat-Prive/pkg/datastore"
	"github.com/LightOfTheWar/Online-Chat-Prive/pkg/model"

	"github.com/google/go-cmp/cmp"
)

// The memory store mirrors SQLite validation so server tests exercise the
// same error paths without a database file.

func TestMemoryMirrorsSQLiteValidation(t *testing.T) {
	t.Parallel()
	mem := datastore.NewMemory()

	if _, err := mem.CreateUser("", "h", "s"); err == nil {
		t.Errorf("empty username accepted")
	}
	if _, err := mem.CreateUser("has space", "h", "s"); err == nil {
		t.Errorf("invalid username accepted")
	}
	if _, err := mem.CreateUser("alice", "h1", "s1"); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if _, err := mem.CreateUser("alice", "h2", "s2"); err == nil {
		t.Errorf("duplicate username accepted")
	}
}

func TestMemoryUsersAndBans(t *testing.T) {
	t.Parallel()

	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	mem := datastore.NewMemoryWithClock(func() time.Time { return fixed })

	created, err := mem.CreateUser("bob", "hash", "salt")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	want := &model.User{ID: 1, Username: "bob", PasswordHash: "hash", Salt: "salt", CreatedAt: fixed}
	if diff := cmp.Diff(want, created); diff != "" {
		t.Errorf("CreateUser mismatch (-want +got):\n%s", diff)
	}

	got, err := mem.GetUserByUsername("bob")
	if err != nil {
		t.Fatalf("GetUserByUsername: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("GetUserByUsername mismatch (-want +got):\n%s", diff)
	}

	// Returned values are copies; mutating one must not leak into the store.
	got.PasswordHash = "tampered"
	again, _ := mem.GetUserByUsername("bob")
	if again.PasswordHash != "hash" {
		t.Errorf("store state mutated through returned copy")
	}

	if err := mem.CreateBan("bob", "rude", "admin"); err != nil {
		t.Fatalf("CreateBan: %v", err)
	}
	if err := mem.CreateBan("bob", "still rude", "admin"); err != nil {
		t.Fatalf("repeated CreateBan: %v", err)
	}
	banned, err := mem.IsBanned("bob")
	if err != nil || !banned {
		t.Fatalf("IsBanned = %t, %v, want true", banned, err)
	}
	bans, err := mem.ListBans()
	if err != nil {
		t.Fatalf("ListBans: %v", err)
	}
	if len(bans) != 1 || bans[0].Reason != "rude" {
		t.Errorf("ListBans = %+v, want single record with first reason", bans)
	}
}
