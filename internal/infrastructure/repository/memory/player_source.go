package memory

import (
	"context"

	"github.com/dlawede/fantasy-roster/internal/domain/player"
)

// PlayerSource serves a fixed season dataset, for development and tests.
type PlayerSource struct {
	players []player.Player
}

func NewPlayerSource(players []player.Player) *PlayerSource {
	return &PlayerSource{players: append([]player.Player(nil), players...)}
}

func (s *PlayerSource) LoadAllPlayers(_ context.Context) ([]player.Player, error) {
	return append([]player.Player(nil), s.players...), nil
}
