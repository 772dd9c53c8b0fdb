package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/clawhub/clawhub/internal/apperror"
	"github.com/clawhub/clawhub/internal/repository"
)

// compile-time check that *DB implements repository.TokenRepository
var _ repository.TokenRepository = (*DB)(nil)

// CreateToken stores a publish token row. Only the bcrypt hash of the
// secret is persisted.
func (db *DB) CreateToken(ctx context.Context, id, userID, secretHash string) error {
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO publish_tokens (id, user_id, secret_hash, created_at) VALUES (?, ?, ?, ?)`,
		id, userID, secretHash, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting publish token: %w", err)
	}
	return nil
}

// GetTokenSecretHash retrieves the owner and secret hash for a token id.
func (db *DB) GetTokenSecretHash(ctx context.Context, id string) (string, string, error) {
	var userID, hash string
	err := db.conn.QueryRowContext(ctx,
		`SELECT user_id, secret_hash FROM publish_tokens WHERE id = ?`,
		id,
	).Scan(&userID, &hash)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", "", apperror.NotFound("publish token", id)
		}
		return "", "", fmt.Errorf("sqlite: getting publish token %s: %w", id, err)
	}
	return userID, hash, nil
}
