package postgres

import "time"

type userTableModel struct {
	UserID        string    `db:"user_id"`
	Username      string    `db:"username"`
	IsAdmin       bool      `db:"is_admin"`
	Balance       float64   `db:"balance"`
	FreeTransfers int       `db:"free_transfers"`
	TotalPoints   int       `db:"total_points"`
	WeekPoints    int       `db:"week_points"`
	Version       int64     `db:"version"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

// userInsertModel carries only the insert columns; version starts at 1 and
// the timestamps take their table defaults.
type userInsertModel struct {
	UserID        string  `db:"user_id"`
	Username      string  `db:"username"`
	IsAdmin       bool    `db:"is_admin"`
	Balance       float64 `db:"balance"`
	FreeTransfers int     `db:"free_transfers"`
	TotalPoints   int     `db:"total_points"`
	WeekPoints    int     `db:"week_points"`
	Version       int64   `db:"version"`
}

type rosterPickTableModel struct {
	PlayerName string `db:"player_name"`
	IsStarting bool   `db:"is_starting"`
	IsCaptain  bool   `db:"is_captain"`
}

type rosterPickInsertModel struct {
	UserID     string `db:"user_id"`
	PlayerName string `db:"player_name"`
	IsStarting bool   `db:"is_starting"`
	IsCaptain  bool   `db:"is_captain"`
}
