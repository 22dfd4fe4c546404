package auth

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/beconnected/beconnected"
)

var _ UserStore = (*MemoryStore)(nil)

// A MemoryStore is a UserStore keeping users in memory,
// for environments that can use service stubs.
//
// A MemoryStore is safe for concurrent use.
type MemoryStore struct {
	mu     sync.RWMutex
	nextID uint
	users  map[uint]beconnected.User
}

// NewMemoryStore constructs a *MemoryStore holding users.
func NewMemoryStore(users ...beconnected.User) *MemoryStore {
	ms := &MemoryStore{users: make(map[uint]beconnected.User)}
	for _, u := range users {
		u := u
		_ = ms.Create(context.Background(), &u)
	}

	return ms
}

func (ms *MemoryStore) Create(_ context.Context, u *beconnected.User) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	for _, existing := range ms.users {
		if strings.EqualFold(existing.Username, u.Username) || strings.EqualFold(existing.Email, u.Email) {
			return fmt.Errorf("%w: user %q", beconnected.ErrExists, u.Username)
		}
	}

	ms.nextID++
	now := time.Now().UTC()
	u.ID = ms.nextID
	u.CreatedAt, u.UpdatedAt = now, now
	ms.users[u.ID] = *u
	return nil
}

func (ms *MemoryStore) FindByEmail(_ context.Context, email string) (beconnected.User, error) {
	return ms.find(func(u beconnected.User) bool { return strings.EqualFold(u.Email, email) })
}

func (ms *MemoryStore) FindByID(_ context.Context, id uint) (beconnected.User, error) {
	return ms.find(func(u beconnected.User) bool { return u.ID == id })
}

func (ms *MemoryStore) FindByUsername(_ context.Context, username string) (beconnected.User, error) {
	return ms.find(func(u beconnected.User) bool { return strings.EqualFold(u.Username, username) })
}

func (ms *MemoryStore) Search(_ context.Context, query string, excludeID uint) ([]beconnected.User, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	q := strings.ToLower(query)
	found := make([]beconnected.User, 0)
	for _, u := range ms.users {
		if u.ID == excludeID {
			continue
		}

		if strings.Contains(strings.ToLower(u.Username), q) ||
			strings.Contains(strings.ToLower(u.FirstName), q) ||
			strings.Contains(strings.ToLower(u.LastName), q) {
			found = append(found, u)
		}
	}

	sort.Slice(found, func(i, j int) bool { return found[i].ID < found[j].ID })
	return found, nil
}

func (ms *MemoryStore) find(match func(beconnected.User) bool) (beconnected.User, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	for _, u := range ms.users {
		if match(u) {
			return u, nil
		}
	}

	return beconnected.User{}, fmt.Errorf("%w: user", beconnected.ErrNotExist)
}
