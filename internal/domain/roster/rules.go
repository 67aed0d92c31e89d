package roster

import (
	"errors"
	"fmt"

	"github.com/dlawede/fantasy-roster/internal/domain/player"
)

var (
	ErrSquadSize          = errors.New("wrong squad size")
	ErrLineupSize         = errors.New("wrong starting team size")
	ErrDuplicatePlayer    = errors.New("duplicate player in selection")
	ErrUnknownPlayer      = errors.New("unknown player")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrTeamDiversity      = errors.New("need 5 different teams")
	ErrPositionQuota      = errors.New("position quota not met")
	ErrCaptainNotStarting = errors.New("must be in starting team")
	ErrAlreadyInSquad     = errors.New("player already in your team")
	ErrAlreadyStarting    = errors.New("player already in starting team")
	ErrNotInSquad         = errors.New("player not in your team")
	ErrNotInLineup        = errors.New("player not in starting team")
	ErrRosterExists       = errors.New("team already created")
	ErrNoRoster           = errors.New("no team created yet")
	ErrNoLineup           = errors.New("no starting team selected yet")
	ErrVersionConflict    = errors.New("roster was modified concurrently")
)

// Rules stores roster validation parameters. Squad quotas apply to the
// owned 8-player squad; lineup quotas apply to the weekly starting five.
type Rules struct {
	SquadSize           int
	StartingSize        int
	MinDistinctTeams    int
	MinSquadByPosition  map[player.Position]int
	StartingGoalkeepers int
	MinStartingDefMid   int
	MinStartingForwards int
}

func DefaultRules() Rules {
	return Rules{
		SquadSize:        8,
		StartingSize:     5,
		MinDistinctTeams: 5,
		MinSquadByPosition: map[player.Position]int{
			player.PositionGoalkeeper: 2,
			player.PositionDefender:   2,
			player.PositionMidfielder: 1,
			player.PositionForward:    2,
		},
		StartingGoalkeepers: 1,
		MinStartingDefMid:   2,
		MinStartingForwards: 1,
	}
}

// quotaCounts aggregates team and position distribution for one candidate
// selection. Every validator entry point counts through here so creation,
// weekly, transfer and substitution checks share identical semantics.
type quotaCounts struct {
	distinctTeams int
	byPosition    map[player.Position]int
}

func countQuotas(players []player.Player) quotaCounts {
	teams := make(map[string]struct{}, len(players))
	byPosition := make(map[player.Position]int, len(player.AllPositions))
	for _, p := range players {
		teams[p.Team] = struct{}{}
		byPosition[p.Position]++
	}

	return quotaCounts{
		distinctTeams: len(teams),
		byPosition:    byPosition,
	}
}

func TotalCost(players []player.Player) float64 {
	var total float64
	for _, p := range players {
		total += p.Cost
	}
	return total
}

// ValidateCreation checks a full team-creation selection against the
// candidate resulting squad: exact size, affordable cost, and squad quotas.
func ValidateCreation(selection []player.Player, balance float64, rules Rules) error {
	if len(selection) != rules.SquadSize {
		return fmt.Errorf("%w: you must select exactly %d players, got %d", ErrSquadSize, rules.SquadSize, len(selection))
	}

	total := TotalCost(selection)
	if total > balance {
		return fmt.Errorf("%w: cost %.1f exceeds available balance %.1f", ErrInsufficientFunds, total, balance)
	}

	return ValidateSquadQuotas(selection, rules)
}

// ValidateSquadQuotas checks the composition rules that must hold for any
// owned squad: team diversity plus minimum position counts. Size and cost
// are deliberately not checked here so transfer rechecks can reuse it.
func ValidateSquadQuotas(squad []player.Player, rules Rules) error {
	counts := countQuotas(squad)

	if counts.distinctTeams < rules.MinDistinctTeams {
		return fmt.Errorf("%w: you need players from at least %d different teams, got %d", ErrTeamDiversity, rules.MinDistinctTeams, counts.distinctTeams)
	}

	for _, check := range []struct {
		pos   player.Position
		label string
	}{
		{player.PositionGoalkeeper, "Goalkeepers"},
		{player.PositionDefender, "Defenders"},
		{player.PositionMidfielder, "Midfielders"},
		{player.PositionForward, "Forwards"},
	} {
		min := rules.MinSquadByPosition[check.pos]
		if counts.byPosition[check.pos] < min {
			return fmt.Errorf("%w: you need at least %d %s, got %d", ErrPositionQuota, min, check.label, counts.byPosition[check.pos])
		}
	}

	return nil
}

// ValidateLineup checks a complete candidate starting lineup: exact size
// plus the weekly quotas.
func ValidateLineup(starting []player.Player, rules Rules) error {
	if len(starting) != rules.StartingSize {
		return fmt.Errorf("%w: you must start exactly %d players, got %d", ErrLineupSize, rules.StartingSize, len(starting))
	}

	return ValidateLineupQuotas(starting, rules)
}

// ValidateLineupQuotas checks the weekly composition rules on a candidate
// starting lineup. Stricter than squad quotas: exactly one goalkeeper.
func ValidateLineupQuotas(starting []player.Player, rules Rules) error {
	counts := countQuotas(starting)

	if counts.distinctTeams < rules.MinDistinctTeams {
		return fmt.Errorf("%w: you need to start players from %d different teams, got %d", ErrTeamDiversity, rules.MinDistinctTeams, counts.distinctTeams)
	}
	if gk := counts.byPosition[player.PositionGoalkeeper]; gk != rules.StartingGoalkeepers {
		return fmt.Errorf("%w: you need exactly %d Goalkeeper in your starting team, got %d", ErrPositionQuota, rules.StartingGoalkeepers, gk)
	}
	defMid := counts.byPosition[player.PositionDefender] + counts.byPosition[player.PositionMidfielder]
	if defMid < rules.MinStartingDefMid {
		return fmt.Errorf("%w: you need at least %d defenders + midfielders in your starting team, got %d", ErrPositionQuota, rules.MinStartingDefMid, defMid)
	}
	if fwd := counts.byPosition[player.PositionForward]; fwd < rules.MinStartingForwards {
		return fmt.Errorf("%w: you need at least %d Forward in your starting team, got %d", ErrPositionQuota, rules.MinStartingForwards, fwd)
	}

	return nil
}

// ValidateCaptain rejects any candidate outside the starting lineup.
func ValidateCaptain(candidate string, starting []string) error {
	for _, name := range starting {
		if name == candidate {
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrCaptainNotStarting, candidate)
}
