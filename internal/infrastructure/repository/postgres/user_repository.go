package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/dlawede/fantasy-roster/internal/domain/roster"
	qb "github.com/dlawede/fantasy-roster/internal/platform/querybuilder"
)

// UserRepository persists fantasy users with an optimistic version column.
// Save only applies when the stored version matches the version the caller
// read, so concurrent writers serialize through roster.ErrVersionConflict.
type UserRepository struct {
	db *sqlx.DB
}

var userSelectColumns = []string{
	"user_id",
	"username",
	"is_admin",
	"balance",
	"free_transfers",
	"total_points",
	"week_points",
	"version",
	"created_at",
	"updated_at",
}

var pickSelectColumns = []string{
	"player_name",
	"is_starting",
	"is_captain",
}

func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Get(ctx context.Context, userID string) (roster.FantasyUser, int64, bool, error) {
	query, args, err := qb.Select(userSelectColumns...).From("fantasy_users").
		Where(qb.Eq("user_id", userID)).
		ToSQL()
	if err != nil {
		return roster.FantasyUser{}, 0, false, fmt.Errorf("build select fantasy user query: %w", err)
	}

	var row userTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return roster.FantasyUser{}, 0, false, nil
		}
		return roster.FantasyUser{}, 0, false, fmt.Errorf("get fantasy user: %w", err)
	}

	query, args, err = qb.Select(pickSelectColumns...).From("roster_picks").
		Where(
			qb.Eq("user_id", userID),
			qb.IsNull("deleted_at"),
		).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return roster.FantasyUser{}, 0, false, fmt.Errorf("build select roster picks query: %w", err)
	}

	var pickRows []rosterPickTableModel
	if err := r.db.SelectContext(ctx, &pickRows, query, args...); err != nil {
		return roster.FantasyUser{}, 0, false, fmt.Errorf("list roster picks: %w", err)
	}

	user := roster.FantasyUser{
		UserID:        row.UserID,
		Username:      row.Username,
		Admin:         row.IsAdmin,
		Balance:       row.Balance,
		FreeTransfers: row.FreeTransfers,
		TotalPoints:   row.TotalPoints,
		WeekPoints:    row.WeekPoints,
		UpdatedAt:     row.UpdatedAt,
	}
	for _, pick := range pickRows {
		user.Roster.Squad = append(user.Roster.Squad, pick.PlayerName)
		if pick.IsStarting {
			user.Roster.Starting = append(user.Roster.Starting, pick.PlayerName)
		}
		if pick.IsCaptain {
			user.Roster.Captain = pick.PlayerName
		}
	}

	return user, row.Version, true, nil
}

func (r *UserRepository) Save(ctx context.Context, user roster.FantasyUser, expectedVersion int64) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx for user save: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if expectedVersion == 0 {
		if err := r.insertUser(ctx, tx, user); err != nil {
			return err
		}
	} else {
		if err := r.updateUser(ctx, tx, user, expectedVersion); err != nil {
			return err
		}
	}

	if err := r.replacePicks(ctx, tx, user); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit user save tx: %w", err)
	}
	return nil
}

func (r *UserRepository) insertUser(ctx context.Context, tx *sqlx.Tx, user roster.FantasyUser) error {
	query, args, err := qb.InsertModel("fantasy_users", userInsertModel{
		UserID:        user.UserID,
		Username:      user.Username,
		IsAdmin:       user.Admin,
		Balance:       user.Balance,
		FreeTransfers: user.FreeTransfers,
		TotalPoints:   user.TotalPoints,
		WeekPoints:    user.WeekPoints,
		Version:       1,
	}, "ON CONFLICT (user_id) DO NOTHING")
	if err != nil {
		return fmt.Errorf("build insert fantasy user query: %w", err)
	}

	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("insert fantasy user: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("insert fantasy user rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: user %s already created", roster.ErrVersionConflict, user.UserID)
	}
	return nil
}

func (r *UserRepository) updateUser(ctx context.Context, tx *sqlx.Tx, user roster.FantasyUser, expectedVersion int64) error {
	query, args, err := qb.Update("fantasy_users").
		Set("username", user.Username).
		Set("is_admin", user.Admin).
		Set("balance", user.Balance).
		Set("free_transfers", user.FreeTransfers).
		Set("total_points", user.TotalPoints).
		Set("week_points", user.WeekPoints).
		SetExpr("version", "version + 1").
		SetExpr("updated_at", "NOW()").
		Where(
			qb.Eq("user_id", user.UserID),
			qb.Eq("version", expectedVersion),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update fantasy user query: %w", err)
	}

	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update fantasy user: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update fantasy user rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: user %s version %d is stale", roster.ErrVersionConflict, user.UserID, expectedVersion)
	}
	return nil
}

// replacePicks soft-deletes the live pick rows and rewrites the current
// squad, keeping prior picks queryable through deleted_at.
func (r *UserRepository) replacePicks(ctx context.Context, tx *sqlx.Tx, user roster.FantasyUser) error {
	query, args, err := qb.Update("roster_picks").
		SetExpr("deleted_at", "NOW()").
		Where(
			qb.Eq("user_id", user.UserID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build clear roster picks query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("soft delete roster picks: %w", err)
	}

	for _, name := range user.Roster.Squad {
		query, args, err := qb.InsertModel("roster_picks", rosterPickInsertModel{
			UserID:     user.UserID,
			PlayerName: name,
			IsStarting: user.Roster.IsStarting(name),
			IsCaptain:  user.Roster.Captain == name,
		}, "")
		if err != nil {
			return fmt.Errorf("build insert roster pick query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert roster pick player=%s: %w", name, err)
		}
	}
	return nil
}

func (r *UserRepository) ListUserIDs(ctx context.Context) ([]string, error) {
	query, args, err := qb.Select("user_id").From("fantasy_users").
		OrderBy("user_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list fantasy user ids query: %w", err)
	}

	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, args...); err != nil {
		return nil, fmt.Errorf("list fantasy user ids: %w", err)
	}
	return ids, nil
}
