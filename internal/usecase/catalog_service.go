package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dlawede/fantasy-roster/internal/domain/player"
	"github.com/dlawede/fantasy-roster/internal/platform/cache"
	"github.com/dlawede/fantasy-roster/internal/platform/logging"
)

const catalogSnapshotKey = "catalog:players"

// CatalogSnapshot is an immutable view of the player catalog, valid for one
// cache generation. Lookups never mutate it, so a snapshot can be shared
// across concurrent roster operations.
type CatalogSnapshot struct {
	players  map[string]player.Player
	teams    []string
	loadedAt time.Time
}

func newCatalogSnapshot(players []player.Player, loadedAt time.Time) *CatalogSnapshot {
	byName := make(map[string]player.Player, len(players))
	teamSet := make(map[string]struct{})
	for _, p := range players {
		byName[p.Name] = p
		teamSet[p.Team] = struct{}{}
	}

	teams := make([]string, 0, len(teamSet))
	for team := range teamSet {
		teams = append(teams, team)
	}
	sort.Strings(teams)

	return &CatalogSnapshot{
		players:  byName,
		teams:    teams,
		loadedAt: loadedAt,
	}
}

func (s *CatalogSnapshot) Player(name string) (player.Player, bool) {
	p, ok := s.players[name]
	return p, ok
}

// Players resolves names against the snapshot, skipping unknown ones.
// Callers detect missing players by comparing result size to input size.
func (s *CatalogSnapshot) Players(names []string) []player.Player {
	out := make([]player.Player, 0, len(names))
	for _, name := range names {
		if p, ok := s.players[name]; ok {
			out = append(out, p)
		}
	}
	return out
}

func (s *CatalogSnapshot) Teams() []string {
	return append([]string(nil), s.teams...)
}

func (s *CatalogSnapshot) Size() int {
	return len(s.players)
}

func (s *CatalogSnapshot) LoadedAt() time.Time {
	return s.loadedAt
}

// CatalogService is the read-mostly cached catalog of season players and
// their teams. A whole snapshot is rebuilt on cache miss or expiry and
// swapped atomically, so readers never observe a half-built catalog.
type CatalogService struct {
	source player.Source
	store  *cache.Store
	logger *logging.Logger
	now    func() time.Time
}

func NewCatalogService(source player.Source, store *cache.Store, logger *logging.Logger) *CatalogService {
	if logger == nil {
		logger = logging.Default()
	}

	return &CatalogService{
		source: source,
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

func (s *CatalogService) Snapshot(ctx context.Context) (*CatalogSnapshot, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CatalogService.Snapshot")
	defer span.End()

	value, err := s.store.GetOrLoad(ctx, catalogSnapshotKey, func(ctx context.Context) (any, error) {
		return s.buildSnapshot(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: load player catalog: %v", ErrDependencyUnavailable, err)
	}

	snapshot, ok := value.(*CatalogSnapshot)
	if !ok {
		return nil, fmt.Errorf("%w: unexpected catalog cache entry type %T", ErrDependencyUnavailable, value)
	}

	return snapshot, nil
}

func (s *CatalogService) GetPlayer(ctx context.Context, name string) (player.Player, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CatalogService.GetPlayer")
	defer span.End()

	name = strings.TrimSpace(name)
	if name == "" {
		return player.Player{}, fmt.Errorf("%w: player name is required", ErrInvalidInput)
	}

	snapshot, err := s.Snapshot(ctx)
	if err != nil {
		return player.Player{}, err
	}

	p, ok := snapshot.Player(name)
	if !ok {
		return player.Player{}, fmt.Errorf("%w: player %s", ErrNotFound, name)
	}

	return p, nil
}

func (s *CatalogService) ListPlayers(ctx context.Context) ([]player.Player, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CatalogService.ListPlayers")
	defer span.End()

	snapshot, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]player.Player, 0, len(snapshot.players))
	for _, p := range snapshot.players {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })

	return out, nil
}

func (s *CatalogService) ListTeams(ctx context.Context) ([]string, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CatalogService.ListTeams")
	defer span.End()

	snapshot, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	return snapshot.Teams(), nil
}

func (s *CatalogService) buildSnapshot(ctx context.Context) (*CatalogSnapshot, error) {
	players, err := s.source.LoadAllPlayers(ctx)
	if err != nil {
		return nil, fmt.Errorf("load all players: %w", err)
	}

	valid := make([]player.Player, 0, len(players))
	seen := make(map[string]struct{}, len(players))
	for _, p := range players {
		if err := p.Validate(); err != nil {
			s.logger.WarnContext(ctx, "skipping invalid catalog player", "error", err)
			continue
		}
		if _, dup := seen[p.Name]; dup {
			s.logger.WarnContext(ctx, "skipping duplicate catalog player", "player", p.Name)
			continue
		}
		seen[p.Name] = struct{}{}
		valid = append(valid, p)
	}

	snapshot := newCatalogSnapshot(valid, s.now().UTC())
	s.logger.InfoContext(ctx, "player catalog refreshed",
		"player_count", snapshot.Size(),
		"team_count", len(snapshot.teams),
	)

	return snapshot, nil
}
