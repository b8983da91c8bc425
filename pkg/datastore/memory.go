package datastore

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/LightOfTheWar/Online-Chat-Prive/pkg/model"
)

// Memory provides an in-memory CredentialStore implementation for tests.
// It mirrors SQLite behavior for validation and error handling.
type Memory struct {
	mu sync.RWMutex

	now func() time.Time

	nextUserID int64
	nextBanID  int64

	usersByUsername map[string]*model.User
	bansByUsername  map[string]*model.Ban
}

// NewMemory creates a Memory store using time.Now().UTC().
func NewMemory() *Memory {
	return NewMemoryWithClock(func() time.Time { return time.Now().UTC() })
}

// NewMemoryWithClock creates a Memory store with a custom clock.
func NewMemoryWithClock(now func() time.Time) *Memory {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Memory{
		now:             now,
		nextUserID:      1,
		nextBanID:       1,
		usersByUsername: make(map[string]*model.User),
		bansByUsername:  make(map[string]*model.Ban),
	}
}

// Close is a no-op for the memory store.
func (m *Memory) Close() error { return nil }

func (m *Memory) CreateUser(username, passwordHash, salt string) (*model.User, error) {
	if err := model.ValidateUsername(username); err != nil {
		return nil, fmt.Errorf("datastore: create user: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.usersByUsername[username]; exists {
		return nil, fmt.Errorf("datastore: create user: username %q already exists", username)
	}

	u := &model.User{
		ID:           m.nextUserID,
		Username:     username,
		PasswordHash: passwordHash,
		Salt:         salt,
		CreatedAt:    m.now(),
	}
	m.nextUserID++
	m.usersByUsername[username] = u

	cp := *u
	return &cp, nil
}

func (m *Memory) GetUserByUsername(username string) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.usersByUsername[username]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (m *Memory) ListUsers() ([]model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	users := make([]model.User, 0, len(m.usersByUsername))
	for _, u := range m.usersByUsername {
		users = append(users, *u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (m *Memory) CreateBan(username, reason, bannedBy string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.bansByUsername[username]; exists {
		return nil // idempotent, matches INSERT OR IGNORE
	}
	m.bansByUsername[username] = &model.Ban{
		ID:        m.nextBanID,
		Username:  username,
		Reason:    reason,
		BannedBy:  bannedBy,
		CreatedAt: m.now(),
	}
	m.nextBanID++
	return nil
}

func (m *Memory) IsBanned(username string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, banned := m.bansByUsername[username]
	return banned, nil
}

func (m *Memory) ListBans() ([]model.Ban, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	bans := make([]model.Ban, 0, len(m.bansByUsername))
	for _, b := range m.bansByUsername {
		bans = append(bans, *b)
	}
	sort.Slice(bans, func(i, j int) bool { return bans[i].ID < bans[j].ID })
	return bans, nil
}
