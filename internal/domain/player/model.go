package player

import "fmt"

// Position represents football position categories used in roster rules.
type Position string

const (
	PositionGoalkeeper Position = "GK"
	PositionDefender   Position = "DEF"
	PositionMidfielder Position = "MID"
	PositionForward    Position = "FWD"
)

var AllPositions = map[Position]struct{}{
	PositionGoalkeeper: {},
	PositionDefender:   {},
	PositionMidfielder: {},
	PositionForward:    {},
}

func ParsePosition(raw string) (Position, error) {
	pos := Position(raw)
	if _, ok := AllPositions[pos]; !ok {
		return "", fmt.Errorf("unknown player position: %q", raw)
	}
	return pos, nil
}

// SeasonStats carries display-only aggregates merged from the stats feed.
type SeasonStats struct {
	Goals   int
	Assists int
	Saves   int
}

// Player is a selectable athlete in the season catalog. Instances are
// immutable for the lifetime of one catalog snapshot.
type Player struct {
	Name     string
	Team     string
	Season   int
	Position Position
	Cost     float64
	Stats    SeasonStats
}

func (p Player) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("player name is required")
	}
	if p.Team == "" {
		return fmt.Errorf("player team is required for %s", p.Name)
	}
	if _, ok := AllPositions[p.Position]; !ok {
		return fmt.Errorf("invalid position for player %s: %s", p.Name, p.Position)
	}
	if p.Cost <= 0 {
		return fmt.Errorf("player cost must be greater than zero: %s", p.Name)
	}

	return nil
}
