package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/dlawede/fantasy-roster/internal/domain/player"
	qb "github.com/dlawede/fantasy-roster/internal/platform/querybuilder"
)

type PlayerSource struct {
	db *sqlx.DB
}

var playerSelectColumns = []string{
	"id",
	"name",
	"team",
	"season",
	"position",
	"cost",
	"goals",
	"assists",
	"saves",
	"created_at",
	"updated_at",
	"deleted_at",
}

func NewPlayerSource(db *sqlx.DB) *PlayerSource {
	return &PlayerSource{db: db}
}

func (r *PlayerSource) LoadAllPlayers(ctx context.Context) ([]player.Player, error) {
	query, args, err := qb.Select(playerSelectColumns...).From("players").
		Where(
			qb.IsNull("deleted_at"),
		).
		OrderBy("name").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select players query: %w", err)
	}

	var rows []playerTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select players: %w", err)
	}

	out := make([]player.Player, 0, len(rows))
	for _, row := range rows {
		out = append(out, player.Player{
			Name:     row.Name,
			Team:     row.Team,
			Season:   row.Season,
			Position: player.Position(row.Position),
			Cost:     row.Cost,
			Stats: player.SeasonStats{
				Goals:   row.Goals,
				Assists: row.Assists,
				Saves:   row.Saves,
			},
		})
	}

	return out, nil
}
