package postgres

import "time"

type playerTableModel struct {
	ID        int64      `db:"id"`
	Name      string     `db:"name"`
	Team      string     `db:"team"`
	Season    int        `db:"season"`
	Position  string     `db:"position"`
	Cost      float64    `db:"cost"`
	Goals     int        `db:"goals"`
	Assists   int        `db:"assists"`
	Saves     int        `db:"saves"`
	CreatedAt time.Time  `db:"created_at"`
	UpdatedAt time.Time  `db:"updated_at"`
	DeletedAt *time.Time `db:"deleted_at"`
}
