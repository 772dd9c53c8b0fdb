package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/clawhub/clawhub/internal/apperror"
	"github.com/clawhub/clawhub/internal/model"
	"github.com/clawhub/clawhub/internal/repository"
)

// compile-time check that *DB implements repository.UserRepository
var _ repository.UserRepository = (*DB)(nil)

// Upsert inserts the user when it has no ID yet, and otherwise refreshes
// its display fields. The caller (auth service) decides which case applies
// by consulting the identities table first.
func (db *DB) Upsert(ctx context.Context, user *model.User) (bool, error) {
	now := time.Now()

	if user.ID == "" {
		user.ID = xid.New().String()
		user.CreatedAt = now
		user.UpdatedAt = now

		_, err := db.conn.ExecContext(ctx,
			`INSERT INTO users (id, name, email, image, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			user.ID, user.Name, user.Email, user.Image, user.CreatedAt, user.UpdatedAt,
		)
		if err != nil {
			return false, fmt.Errorf("sqlite: inserting user: %w", err)
		}
		return true, nil
	}

	user.UpdatedAt = now
	res, err := db.conn.ExecContext(ctx,
		`UPDATE users SET name = ?, email = ?, image = ?, updated_at = ? WHERE id = ?`,
		user.Name, user.Email, user.Image, user.UpdatedAt, user.ID,
	)
	if err != nil {
		return false, fmt.Errorf("sqlite: updating user %s: %w", user.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return false, apperror.NotFound("user", user.ID)
	}
	return false, nil
}

// GetUserByID retrieves a user by internal ID.
// Returns apperror.ErrNotFound if no user exists with that ID.
func (db *DB) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	var (
		u             model.User
		deactivatedAt sql.NullInt64
		ghCreatedAt   sql.NullInt64
		ghSyncedAt    sql.NullInt64
	)

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, name, email, image, deactivated_at, github_created_at,
		        github_profile_synced_at, created_at, updated_at
		 FROM users WHERE id = ?`,
		id,
	).Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.Image,
		&deactivatedAt,
		&ghCreatedAt,
		&ghSyncedAt,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", id)
		}
		return nil, fmt.Errorf("sqlite: getting user %s: %w", id, err)
	}

	u.DeactivatedAt = millisTime(deactivatedAt)
	u.GithubCreatedAt = millisTime(ghCreatedAt)
	u.GithubProfileSyncedAt = millisTime(ghSyncedAt)
	return &u, nil
}

// SetGithubCreatedAt populates the cached GitHub account creation time.
// COALESCE keeps the column write-once at the store level: a concurrent
// duplicate verification cannot overwrite an already-cached value.
func (db *DB) SetGithubCreatedAt(ctx context.Context, id string, createdAt time.Time) error {
	res, err := db.conn.ExecContext(ctx,
		`UPDATE users
		 SET github_created_at = COALESCE(github_created_at, ?), updated_at = ?
		 WHERE id = ?`,
		createdAt.UnixMilli(), time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: setting github_created_at for user %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperror.NotFound("user", id)
	}
	return nil
}

// SyncProfile applies a profile patch: name, image, and the synced-at
// watermark in one statement.
func (db *DB) SyncProfile(ctx context.Context, id string, patch repository.ProfilePatch) error {
	res, err := db.conn.ExecContext(ctx,
		`UPDATE users
		 SET name = ?, image = ?, github_profile_synced_at = ?, updated_at = ?
		 WHERE id = ?`,
		patch.Name, patch.Image, patch.SyncedAt.UnixMilli(), time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: syncing profile for user %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperror.NotFound("user", id)
	}
	return nil
}

// Deactivate disables an account. Kept idempotent: re-deactivating keeps
// the original timestamp.
func (db *DB) Deactivate(ctx context.Context, id string, at time.Time) error {
	res, err := db.conn.ExecContext(ctx,
		`UPDATE users
		 SET deactivated_at = COALESCE(deactivated_at, ?), updated_at = ?
		 WHERE id = ?`,
		at.UnixMilli(), time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deactivating user %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperror.NotFound("user", id)
	}
	return nil
}
