package roster

import "context"

// Repository describes fantasy-user persistence needs from use cases.
// Records carry a version stamp for optimistic concurrency: Save with a
// stale expected version must fail with ErrVersionConflict and write
// nothing. Version 0 means "record does not exist yet".
type Repository interface {
	Get(ctx context.Context, userID string) (FantasyUser, int64, bool, error)
	Save(ctx context.Context, user FantasyUser, expectedVersion int64) error
	ListUserIDs(ctx context.Context) ([]string, error)
}
