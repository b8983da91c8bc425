package datastore_test

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/LightOfTheWar/Online-Chat-Prive/pkg/datastore"
	"github.com/LightOfTheWar/Online-Chat-Prive/pkg/model"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func newTestSqlConn(t *testing.T) *datastore.Store {
	t.Helper()

	// Creates a temporary on-disk database with a unique path per test.
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")

	store, err := datastore.New(dbPath)
	if err != nil {
		t.Fatalf("datastore_test: failed to open db: %v", err)
	}

	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			fmt.Printf("Error closing database: %v\n", err)
		}
	})

	return store
}

func TestCreateUser(t *testing.T) {
	t.Parallel()

	type tcase struct {
		username  string
		expectErr bool
	}

	tcases := map[string]tcase{
		"minimum_required_fields": {
			username:  "johndoe",
			expectErr: false,
		},
		"injection_username": { // SQL injection contains invalid chars (quotes, spaces, equals)
			username:  "' OR '1'='1",
			expectErr: true,
		},
		"empty_username": {
			username:  "",
			expectErr: true,
		},
		"full_username": { // 65 character username is too long
			username:  "24433252080542468109190329288548376491503980265648043643151614656",
			expectErr: true,
		},
	}

	fn := func(tc tcase) func(*testing.T) {
		return func(t *testing.T) {
			store := newTestSqlConn(t)

			got, err := store.CreateUser(tc.username, "deadbeef", "cafe")
			if tc.expectErr {
				if err == nil {
					t.Fatalf("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			want := &model.User{
				Username:     tc.username,
				PasswordHash: "deadbeef",
				Salt:         "cafe",
			}

			if diff := cmp.Diff(want, got, cmpopts.IgnoreFields(model.User{}, "ID", "CreatedAt")); diff != "" {
				t.Errorf("store.CreateUser mismatch (-want +got):\n%s", diff)
			}
		}
	}

	for name, tc := range tcases {
		t.Run(name, fn(tc))
	}
}

func TestCreateUserDuplicate(t *testing.T) {
	t.Parallel()
	store := newTestSqlConn(t)

	if _, err := store.CreateUser("alice", "h1", "s1"); err != nil {
		t.Fatalf("first CreateUser: %v", err)
	}
	if _, err := store.CreateUser("alice", "h2", "s2"); err == nil {
		t.Fatalf("duplicate CreateUser succeeded, want unique constraint error")
	}

	// The original record is untouched.
	u, err := store.GetUserByUsername("alice")
	if err != nil {
		t.Fatalf("GetUserByUsername: %v", err)
	}
	if u == nil || u.PasswordHash != "h1" {
		t.Errorf("original record was modified: %+v", u)
	}
}

func TestGetUserByUsername(t *testing.T) {
	t.Parallel()
	store := newTestSqlConn(t)

	created, err := store.CreateUser("janedoe", "beefcafe", "f00d")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	got, err := store.GetUserByUsername("janedoe")
	if err != nil {
		t.Fatalf("GetUserByUsername: %v", err)
	}
	if diff := cmp.Diff(created, got, cmpopts.IgnoreFields(model.User{}, "CreatedAt")); diff != "" {
		t.Errorf("store.GetUserByUsername mismatch (-want +got):\n%s", diff)
	}

	absent, err := store.GetUserByUsername("nobody")
	if err != nil {
		t.Fatalf("GetUserByUsername(nobody): %v", err)
	}
	if absent != nil {
		t.Errorf("expected nil for unknown username, got %+v", absent)
	}
}

func TestBans(t *testing.T) {
	t.Parallel()
	store := newTestSqlConn(t)

	banned, err := store.IsBanned("mallory")
	if err != nil {
		t.Fatalf("IsBanned: %v", err)
	}
	if banned {
		t.Fatalf("fresh store reports mallory banned")
	}

	if err := store.CreateBan("mallory", "spam", "admin"); err != nil {
		t.Fatalf("CreateBan: %v", err)
	}
	// Idempotent: a second ban for the same name must not error.
	if err := store.CreateBan("mallory", "spam again", "admin"); err != nil {
		t.Fatalf("repeated CreateBan: %v", err)
	}

	banned, err = store.IsBanned("mallory")
	if err != nil {
		t.Fatalf("IsBanned: %v", err)
	}
	if !banned {
		t.Errorf("mallory not banned after CreateBan")
	}

	bans, err := store.ListBans()
	if err != nil {
		t.Fatalf("ListBans: %v", err)
	}
	if len(bans) != 1 {
		t.Fatalf("ListBans returned %d records, want 1", len(bans))
	}
	want := model.Ban{Username: "mallory", Reason: "spam", BannedBy: "admin"}
	if diff := cmp.Diff(want, bans[0], cmpopts.IgnoreFields(model.Ban{}, "ID", "CreatedAt")); diff != "" {
		t.Errorf("store.ListBans mismatch (-want +got):\n%s", diff)
	}
}

func TestPersistsAcrossReopen(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	dbPath := filepath.Join(dir, "reopen.db")

	store, err := datastore.New(dbPath)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := store.CreateUser("alice", "h1", "s1"); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if err := store.CreateBan("bob", "", "console"); err != nil {
		t.Fatalf("CreateBan: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := datastore.New(dbPath)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() { _ = reopened.Close() }()

	u, err := reopened.GetUserByUsername("alice")
	if err != nil || u == nil {
		t.Fatalf("GetUserByUsername after reopen = %+v, %v", u, err)
	}
	banned, err := reopened.IsBanned("bob")
	if err != nil || !banned {
		t.Fatalf("IsBanned after reopen = %t, %v, want true", banned, err)
	}
}
