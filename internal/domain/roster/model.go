package roster

import (
	"fmt"
	"time"
)

// Roster contains one user's squad composition.
type Roster struct {
	// Squad is the full set of owned player names. Size is only constrained
	// at creation time.
	Squad []string
	// Starting is the active weekly subset of Squad.
	Starting []string
	// Captain is empty until set, and always a member of Starting afterwards.
	Captain string
}

// Bench returns owned players outside the starting lineup, in squad order.
func (r Roster) Bench() []string {
	starting := make(map[string]struct{}, len(r.Starting))
	for _, name := range r.Starting {
		starting[name] = struct{}{}
	}

	bench := make([]string, 0, len(r.Squad))
	for _, name := range r.Squad {
		if _, ok := starting[name]; !ok {
			bench = append(bench, name)
		}
	}
	return bench
}

func (r Roster) HasPlayer(name string) bool {
	for _, owned := range r.Squad {
		if owned == name {
			return true
		}
	}
	return false
}

func (r Roster) IsStarting(name string) bool {
	for _, starting := range r.Starting {
		if starting == name {
			return true
		}
	}
	return false
}

// State is the lifecycle stage of a user's roster.
type State string

const (
	StateNoRoster   State = "no_roster"
	StateSquadBuilt State = "squad_built"
	StateLineupSet  State = "lineup_set"
)

func (r Roster) State() State {
	switch {
	case len(r.Squad) == 0:
		return StateNoRoster
	case len(r.Starting) == 0:
		return StateSquadBuilt
	default:
		return StateLineupSet
	}
}

const (
	InitialBalance      = 100.0
	InitialFreeTransfer = 2
	TransferPenaltyPts  = 4
)

// FantasyUser is the aggregate root for one manager: roster plus budget
// ledger plus points. Mutated only through the roster service.
type FantasyUser struct {
	UserID        string
	Username      string
	Admin         bool
	Balance       float64
	FreeTransfers int
	TotalPoints   int
	WeekPoints    int
	Roster        Roster
	UpdatedAt     time.Time
}

// NewFantasyUser builds the default record created lazily on a user's first
// roster operation.
func NewFantasyUser(userID, username string) FantasyUser {
	return FantasyUser{
		UserID:        userID,
		Username:      username,
		Balance:       InitialBalance,
		FreeTransfers: InitialFreeTransfer,
	}
}

// CheckInvariants verifies the structural invariants every committed record
// must satisfy: starting ⊆ squad, captain in starting or unset, balance and
// free transfers never negative.
func (u FantasyUser) CheckInvariants() error {
	if u.UserID == "" {
		return fmt.Errorf("user id is required")
	}
	if u.Balance < 0 {
		return fmt.Errorf("balance cannot be negative: %.2f", u.Balance)
	}
	if u.FreeTransfers < 0 {
		return fmt.Errorf("free transfers cannot be negative: %d", u.FreeTransfers)
	}

	owned := make(map[string]struct{}, len(u.Roster.Squad))
	for _, name := range u.Roster.Squad {
		if name == "" {
			return fmt.Errorf("squad contains an empty player name")
		}
		if _, dup := owned[name]; dup {
			return fmt.Errorf("squad contains duplicate player %s", name)
		}
		owned[name] = struct{}{}
	}

	startingSet := make(map[string]struct{}, len(u.Roster.Starting))
	for _, name := range u.Roster.Starting {
		if _, ok := owned[name]; !ok {
			return fmt.Errorf("starting player %s is not in squad", name)
		}
		if _, dup := startingSet[name]; dup {
			return fmt.Errorf("starting lineup contains duplicate player %s", name)
		}
		startingSet[name] = struct{}{}
	}

	if u.Roster.Captain != "" {
		if _, ok := startingSet[u.Roster.Captain]; !ok {
			return fmt.Errorf("captain %s is not in starting lineup", u.Roster.Captain)
		}
	}

	return nil
}
