package player

import "context"

// Source loads the full current-season player dataset. The storage format
// behind it (tabular file, database, remote feed) is opaque to callers.
type Source interface {
	LoadAllPlayers(ctx context.Context) ([]Player, error)
}
