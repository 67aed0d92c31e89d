package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dlawede/fantasy-roster/internal/domain/player"
	"github.com/dlawede/fantasy-roster/internal/domain/roster"
	"github.com/dlawede/fantasy-roster/internal/platform/logging"
)

const defaultCommitRetries = 3

// RosterView is the user-visible projection of a committed roster state.
type RosterView struct {
	UserID        string   `json:"user_id"`
	Username      string   `json:"username"`
	State         string   `json:"state"`
	Squad         []string `json:"squad"`
	Starting      []string `json:"starting"`
	Bench         []string `json:"bench"`
	Captain       string   `json:"captain,omitempty"`
	Balance       float64  `json:"balance"`
	FreeTransfers int      `json:"free_transfers"`
	TotalPoints   int      `json:"total_points"`
	WeekPoints    int      `json:"week_points"`
}

type CreateTeamInput struct {
	UserID      string
	Username    string
	PlayerNames []string
}

type SelectLineupInput struct {
	UserID      string
	Username    string
	PlayerNames []string
}

type SetCaptainInput struct {
	UserID     string
	Username   string
	PlayerName string
}

type SubstituteInput struct {
	UserID     string
	Username   string
	PlayersOut []string
	PlayersIn  []string
}

type TransferInput struct {
	UserID    string
	Username  string
	PlayerIn  string
	PlayerOut string
}

// RosterService orchestrates all roster mutations: it loads the persisted
// user, validates the requested operation against the prospective resulting
// state, and commits with optimistic concurrency. A failed validation or
// commit leaves the persisted record untouched.
type RosterService struct {
	userRepo      roster.Repository
	catalog       *CatalogService
	rules         roster.Rules
	audit         roster.AuditSink
	logger        *logging.Logger
	now           func() time.Time
	commitRetries int
}

func NewRosterService(
	userRepo roster.Repository,
	catalog *CatalogService,
	rules roster.Rules,
	audit roster.AuditSink,
	logger *logging.Logger,
) *RosterService {
	if logger == nil {
		logger = logging.Default()
	}

	return &RosterService{
		userRepo:      userRepo,
		catalog:       catalog,
		rules:         rules,
		audit:         audit,
		logger:        logger,
		now:           time.Now,
		commitRetries: defaultCommitRetries,
	}
}

func (s *RosterService) GetRoster(ctx context.Context, userID string) (RosterView, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RosterService.GetRoster")
	defer span.End()

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return RosterView{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	user, _, exists, err := s.userRepo.Get(ctx, userID)
	if err != nil {
		return RosterView{}, fmt.Errorf("%w: get user %s: %v", ErrDependencyUnavailable, userID, err)
	}
	if !exists {
		return RosterView{}, fmt.Errorf("%w: user %s has no roster record", ErrNotFound, userID)
	}

	return viewOf(user), nil
}

func (s *RosterService) CreateTeam(ctx context.Context, input CreateTeamInput) (RosterView, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RosterService.CreateTeam")
	defer span.End()

	names, err := cleanPlayerNames(input.PlayerNames)
	if err != nil {
		return RosterView{}, err
	}

	snapshot, err := s.catalog.Snapshot(ctx)
	if err != nil {
		return RosterView{}, err
	}

	return s.commit(ctx, input.UserID, input.Username, "create_team", map[string]any{
		"players": names,
	}, func(user *roster.FantasyUser) error {
		if user.Roster.State() != roster.StateNoRoster {
			return roster.ErrRosterExists
		}

		players, err := resolveAll(snapshot, names)
		if err != nil {
			return err
		}
		if err := roster.ValidateCreation(players, user.Balance, s.rules); err != nil {
			return err
		}

		user.Roster.Squad = names
		user.Balance -= roster.TotalCost(players)
		return nil
	})
}

func (s *RosterService) SelectLineup(ctx context.Context, input SelectLineupInput) (RosterView, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RosterService.SelectLineup")
	defer span.End()

	names, err := cleanPlayerNames(input.PlayerNames)
	if err != nil {
		return RosterView{}, err
	}

	snapshot, err := s.catalog.Snapshot(ctx)
	if err != nil {
		return RosterView{}, err
	}

	return s.commit(ctx, input.UserID, input.Username, "select_weekly_team", map[string]any{
		"starting": names,
	}, func(user *roster.FantasyUser) error {
		if user.Roster.State() == roster.StateNoRoster {
			return roster.ErrNoRoster
		}

		for _, name := range names {
			if !user.Roster.HasPlayer(name) {
				return fmt.Errorf("%w: %s is not in your squad", roster.ErrNotInSquad, name)
			}
		}

		players, err := resolveAll(snapshot, names)
		if err != nil {
			return err
		}
		if err := roster.ValidateLineup(players, s.rules); err != nil {
			return err
		}

		user.Roster.Starting = names
		// A reshuffled lineup can orphan the captain; reset rather than
		// carry a captain outside the starting five.
		if user.Roster.Captain != "" && !user.Roster.IsStarting(user.Roster.Captain) {
			user.Roster.Captain = ""
		}
		return nil
	})
}

func (s *RosterService) SetCaptain(ctx context.Context, input SetCaptainInput) (RosterView, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RosterService.SetCaptain")
	defer span.End()

	candidate := strings.TrimSpace(input.PlayerName)
	if candidate == "" {
		return RosterView{}, fmt.Errorf("%w: captain name is required", ErrInvalidInput)
	}

	return s.commit(ctx, input.UserID, input.Username, "set_captain", map[string]any{
		"captain": candidate,
	}, func(user *roster.FantasyUser) error {
		switch user.Roster.State() {
		case roster.StateNoRoster:
			return roster.ErrNoRoster
		case roster.StateSquadBuilt:
			return roster.ErrNoLineup
		}

		if err := roster.ValidateCaptain(candidate, user.Roster.Starting); err != nil {
			return err
		}

		user.Roster.Captain = candidate
		return nil
	})
}

func (s *RosterService) Substitute(ctx context.Context, input SubstituteInput) (RosterView, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RosterService.Substitute")
	defer span.End()

	outs, err := cleanPlayerNames(input.PlayersOut)
	if err != nil {
		return RosterView{}, err
	}
	ins, err := cleanPlayerNames(input.PlayersIn)
	if err != nil {
		return RosterView{}, err
	}
	if len(outs) != len(ins) {
		return RosterView{}, fmt.Errorf("%w: substitution pairs must match, got %d out and %d in", ErrInvalidInput, len(outs), len(ins))
	}

	snapshot, err := s.catalog.Snapshot(ctx)
	if err != nil {
		return RosterView{}, err
	}

	return s.commit(ctx, input.UserID, input.Username, "substitute", map[string]any{
		"players_out": outs,
		"players_in":  ins,
	}, func(user *roster.FantasyUser) error {
		switch user.Roster.State() {
		case roster.StateNoRoster:
			return roster.ErrNoRoster
		case roster.StateSquadBuilt:
			return roster.ErrNoLineup
		}

		candidate, err := applySubstitutions(user.Roster, outs, ins)
		if err != nil {
			return err
		}

		players, err := resolveAll(snapshot, candidate)
		if err != nil {
			return err
		}
		if err := roster.ValidateLineup(players, s.rules); err != nil {
			return err
		}

		user.Roster.Starting = candidate
		if user.Roster.Captain != "" && !user.Roster.IsStarting(user.Roster.Captain) {
			user.Roster.Captain = ""
		}
		return nil
	})
}

func (s *RosterService) Transfer(ctx context.Context, input TransferInput) (RosterView, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RosterService.Transfer")
	defer span.End()

	playerIn := strings.TrimSpace(input.PlayerIn)
	playerOut := strings.TrimSpace(input.PlayerOut)
	if playerIn == "" || playerOut == "" {
		return RosterView{}, fmt.Errorf("%w: both incoming and outgoing player names are required", ErrInvalidInput)
	}

	snapshot, err := s.catalog.Snapshot(ctx)
	if err != nil {
		return RosterView{}, err
	}

	return s.commit(ctx, input.UserID, input.Username, "transfer", map[string]any{
		"player_in":  playerIn,
		"player_out": playerOut,
	}, func(user *roster.FantasyUser) error {
		if user.Roster.State() == roster.StateNoRoster {
			return roster.ErrNoRoster
		}

		in, ok := snapshot.Player(playerIn)
		if !ok {
			return fmt.Errorf("%w: %s", roster.ErrUnknownPlayer, playerIn)
		}
		out, ok := snapshot.Player(playerOut)
		if !ok {
			return fmt.Errorf("%w: %s", roster.ErrUnknownPlayer, playerOut)
		}

		if user.Roster.HasPlayer(playerIn) {
			return fmt.Errorf("%w: %s", roster.ErrAlreadyInSquad, playerIn)
		}
		if !user.Roster.HasPlayer(playerOut) {
			return fmt.Errorf("%w: %s", roster.ErrNotInSquad, playerOut)
		}

		costDelta := in.Cost - out.Cost
		if user.Balance-costDelta < 0 {
			return fmt.Errorf("%w: transfer needs %.1f more than your balance", roster.ErrInsufficientFunds, costDelta-user.Balance)
		}

		// Quotas are checked on the full hypothetical post-transfer state,
		// never the delta, and the squad and lineup checks succeed or fail
		// as one unit.
		candidateSquad := replaceName(user.Roster.Squad, playerOut, playerIn)
		squadPlayers, err := resolveAll(snapshot, candidateSquad)
		if err != nil {
			return err
		}
		if err := roster.ValidateSquadQuotas(squadPlayers, s.rules); err != nil {
			return err
		}

		outWasStarting := user.Roster.IsStarting(playerOut)
		var candidateStarting []string
		if outWasStarting {
			candidateStarting = replaceName(user.Roster.Starting, playerOut, playerIn)
			startingPlayers, err := resolveAll(snapshot, candidateStarting)
			if err != nil {
				return err
			}
			if err := roster.ValidateLineupQuotas(startingPlayers, s.rules); err != nil {
				return err
			}
		}

		user.Roster.Squad = candidateSquad
		if outWasStarting {
			user.Roster.Starting = candidateStarting
		}
		if user.Roster.Captain == playerOut {
			user.Roster.Captain = ""
		}
		user.Balance -= costDelta
		if user.FreeTransfers > 0 {
			user.FreeTransfers--
		} else {
			user.TotalPoints -= roster.TransferPenaltyPts
		}
		return nil
	})
}

// commit runs the read-validate-write sequence with bounded optimistic
// retries. mutate receives a scratch copy of the persisted user; a mutate
// error aborts the whole operation with nothing written.
func (s *RosterService) commit(
	ctx context.Context,
	userID, username, action string,
	details map[string]any,
	mutate func(*roster.FantasyUser) error,
) (RosterView, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return RosterView{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	var lastErr error
	for attempt := 0; attempt < s.commitRetries; attempt++ {
		user, version, exists, err := s.userRepo.Get(ctx, userID)
		if err != nil {
			return RosterView{}, fmt.Errorf("%w: get user %s: %v", ErrDependencyUnavailable, userID, err)
		}
		if !exists {
			user = roster.NewFantasyUser(userID, strings.TrimSpace(username))
		}

		if err := mutate(&user); err != nil {
			return RosterView{}, fmt.Errorf("%s rejected: %w", action, err)
		}

		if err := user.CheckInvariants(); err != nil {
			return RosterView{}, fmt.Errorf("%s produced an invalid roster: %w", action, err)
		}

		user.UpdatedAt = s.now().UTC()
		err = s.userRepo.Save(ctx, user, version)
		if err == nil {
			s.logger.InfoContext(ctx, "roster operation committed",
				"user_id", userID,
				"action", action,
				"state", string(user.Roster.State()),
			)
			if s.audit != nil {
				s.audit.RecordAction(ctx, userID, action, details)
			}
			return viewOf(user), nil
		}
		if errors.Is(err, roster.ErrVersionConflict) {
			lastErr = err
			continue
		}
		return RosterView{}, fmt.Errorf("%w: save user %s: %v", ErrDependencyUnavailable, userID, err)
	}

	return RosterView{}, fmt.Errorf("%w: %s for user %s: %v", ErrConflict, action, userID, lastErr)
}

func viewOf(user roster.FantasyUser) RosterView {
	return RosterView{
		UserID:        user.UserID,
		Username:      user.Username,
		State:         string(user.Roster.State()),
		Squad:         append([]string(nil), user.Roster.Squad...),
		Starting:      append([]string(nil), user.Roster.Starting...),
		Bench:         user.Roster.Bench(),
		Captain:       user.Roster.Captain,
		Balance:       user.Balance,
		FreeTransfers: user.FreeTransfers,
		TotalPoints:   user.TotalPoints,
		WeekPoints:    user.WeekPoints,
	}
}

func resolveAll(snapshot *CatalogSnapshot, names []string) ([]player.Player, error) {
	players := snapshot.Players(names)
	if len(players) == len(names) {
		return players, nil
	}

	for _, name := range names {
		if _, ok := snapshot.Player(name); !ok {
			return nil, fmt.Errorf("%w: %s", roster.ErrUnknownPlayer, name)
		}
	}
	return players, nil
}

// applySubstitutions swaps each outgoing starter for its paired incoming
// bench player on a scratch copy. All membership checks run before any swap
// so the batch is all-or-nothing.
func applySubstitutions(current roster.Roster, outs, ins []string) ([]string, error) {
	seenIn := make(map[string]struct{}, len(ins))
	for i := range outs {
		if !current.IsStarting(outs[i]) {
			return nil, fmt.Errorf("%w: %s", roster.ErrNotInLineup, outs[i])
		}
		if !current.HasPlayer(ins[i]) {
			return nil, fmt.Errorf("%w: %s is not in your squad", roster.ErrNotInSquad, ins[i])
		}
		if current.IsStarting(ins[i]) {
			return nil, fmt.Errorf("%w: %s is already starting", roster.ErrAlreadyStarting, ins[i])
		}
		if _, dup := seenIn[ins[i]]; dup {
			return nil, fmt.Errorf("%w: %s", roster.ErrDuplicatePlayer, ins[i])
		}
		seenIn[ins[i]] = struct{}{}
	}

	candidate := append([]string(nil), current.Starting...)
	for i := range outs {
		for j := range candidate {
			if candidate[j] == outs[i] {
				candidate[j] = ins[i]
				break
			}
		}
	}
	return candidate, nil
}

func replaceName(names []string, from, to string) []string {
	out := append([]string(nil), names...)
	for i := range out {
		if out[i] == from {
			out[i] = to
		}
	}
	return out
}

func cleanPlayerNames(names []string) ([]string, error) {
	cleaned := make([]string, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("%w: player name cannot be empty", ErrInvalidInput)
		}
		if _, ok := seen[name]; ok {
			return nil, fmt.Errorf("%w: %s", roster.ErrDuplicatePlayer, name)
		}
		seen[name] = struct{}{}
		cleaned = append(cleaned, name)
	}

	return cleaned, nil
}
