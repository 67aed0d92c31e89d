package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/dlawede/fantasy-roster/internal/domain/roster"
)

type userRecord struct {
	user    roster.FantasyUser
	version int64
}

// UserRepository is an in-memory fantasy-user store with the same
// optimistic-versioning contract as the postgres implementation.
type UserRepository struct {
	mu    sync.RWMutex
	items map[string]userRecord
}

func NewUserRepository() *UserRepository {
	return &UserRepository{items: make(map[string]userRecord)}
}

func (r *UserRepository) Get(_ context.Context, userID string) (roster.FantasyUser, int64, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.items[userID]
	if !ok {
		return roster.FantasyUser{}, 0, false, nil
	}

	return cloneUser(record.user), record.version, true, nil
}

func (r *UserRepository) Save(_ context.Context, user roster.FantasyUser, expectedVersion int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	record, exists := r.items[user.UserID]
	currentVersion := int64(0)
	if exists {
		currentVersion = record.version
	}
	if currentVersion != expectedVersion {
		return fmt.Errorf("%w: user=%s expected=%d current=%d", roster.ErrVersionConflict, user.UserID, expectedVersion, currentVersion)
	}

	r.items[user.UserID] = userRecord{
		user:    cloneUser(user),
		version: currentVersion + 1,
	}
	return nil
}

func (r *UserRepository) ListUserIDs(_ context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.items))
	for id := range r.items {
		ids = append(ids, id)
	}
	return ids, nil
}

func cloneUser(u roster.FantasyUser) roster.FantasyUser {
	copied := u
	copied.Roster.Squad = append([]string(nil), u.Roster.Squad...)
	copied.Roster.Starting = append([]string(nil), u.Roster.Starting...)
	return copied
}
