package httpapi

import (
	"fmt"
	"net/http"

	sonic "github.com/bytedance/sonic"

	"github.com/dlawede/fantasy-roster/internal/usecase"
)

type createTeamRequest struct {
	Players []string `json:"players" validate:"required,len=8,dive,required"`
}

type selectLineupRequest struct {
	Players []string `json:"players" validate:"required,len=5,dive,required"`
}

type setCaptainRequest struct {
	Player string `json:"player" validate:"required"`
}

type substituteRequest struct {
	PlayersOut []string `json:"players_out" validate:"required,min=1,max=5,dive,required"`
	PlayersIn  []string `json:"players_in" validate:"required,min=1,max=5,dive,required"`
}

type transferRequest struct {
	PlayerIn  string `json:"player_in" validate:"required"`
	PlayerOut string `json:"player_out" validate:"required"`
}

func (h *Handler) GetRoster(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetRoster")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	view, err := h.rosterService.GetRoster(ctx, principal.UserID)
	if err != nil {
		h.logger.WarnContext(ctx, "get roster failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, view)
}

func (h *Handler) CreateTeam(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreateTeam")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	var req createTeamRequest
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	view, err := h.rosterService.CreateTeam(ctx, usecase.CreateTeamInput{
		UserID:      principal.UserID,
		Username:    principal.Username,
		PlayerNames: req.Players,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "create team failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, view)
}

func (h *Handler) SelectLineup(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SelectLineup")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	var req selectLineupRequest
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	view, err := h.rosterService.SelectLineup(ctx, usecase.SelectLineupInput{
		UserID:      principal.UserID,
		Username:    principal.Username,
		PlayerNames: req.Players,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "select lineup failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, view)
}

func (h *Handler) SetCaptain(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SetCaptain")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	var req setCaptainRequest
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	view, err := h.rosterService.SetCaptain(ctx, usecase.SetCaptainInput{
		UserID:     principal.UserID,
		Username:   principal.Username,
		PlayerName: req.Player,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "set captain failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, view)
}

func (h *Handler) Substitute(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Substitute")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	var req substituteRequest
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	view, err := h.rosterService.Substitute(ctx, usecase.SubstituteInput{
		UserID:     principal.UserID,
		Username:   principal.Username,
		PlayersOut: req.PlayersOut,
		PlayersIn:  req.PlayersIn,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "substitute failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, view)
}

func (h *Handler) Transfer(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Transfer")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	var req transferRequest
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	view, err := h.rosterService.Transfer(ctx, usecase.TransferInput{
		UserID:    principal.UserID,
		Username:  principal.Username,
		PlayerIn:  req.PlayerIn,
		PlayerOut: req.PlayerOut,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "transfer failed", "user_id", principal.UserID, "player_in", req.PlayerIn, "player_out", req.PlayerOut, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, view)
}

func (h *Handler) RunGameweekRollover(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunGameweekRollover")
	defer span.End()

	result, err := h.gameweekService.Rollover(ctx, usecase.RolloverInput{MaxWorkers: h.rolloverWorkers})
	if err != nil {
		h.logger.ErrorContext(ctx, "gameweek rollover failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}
