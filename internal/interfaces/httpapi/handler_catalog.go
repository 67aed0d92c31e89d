package httpapi

import (
	"net/http"
	"strings"

	"github.com/dlawede/fantasy-roster/internal/domain/player"
)

type playerDTO struct {
	Name     string  `json:"name"`
	Team     string  `json:"team"`
	Season   int     `json:"season"`
	Position string  `json:"position"`
	Cost     float64 `json:"cost"`
	Goals    int     `json:"goals"`
	Assists  int     `json:"assists"`
	Saves    int     `json:"saves"`
}

func playerToDTO(v player.Player) playerDTO {
	return playerDTO{
		Name:     v.Name,
		Team:     v.Team,
		Season:   v.Season,
		Position: string(v.Position),
		Cost:     v.Cost,
		Goals:    v.Stats.Goals,
		Assists:  v.Stats.Assists,
		Saves:    v.Stats.Saves,
	}
}

func (h *Handler) ListPlayers(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListPlayers")
	defer span.End()

	players, err := h.catalogService.ListPlayers(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "list players failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]playerDTO, 0, len(players))
	for _, p := range players {
		items = append(items, playerToDTO(p))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) GetPlayer(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetPlayer")
	defer span.End()

	name := strings.TrimSpace(r.PathValue("playerName"))
	item, err := h.catalogService.GetPlayer(ctx, name)
	if err != nil {
		h.logger.WarnContext(ctx, "get player failed", "player", name, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, playerToDTO(item))
}

func (h *Handler) ListTeams(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListTeams")
	defer span.End()

	teams, err := h.catalogService.ListTeams(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "list teams failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, teams)
}
