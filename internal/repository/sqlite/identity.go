package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/clawhub/clawhub/internal/repository"
)

// compile-time check that *DB implements repository.IdentityRepository
var _ repository.IdentityRepository = (*DB)(nil)

// GetProviderAccountID returns the GitHub account id linked to the user,
// or "" when no linkage exists. Absence is not an error here: the services
// decide whether a missing link is fatal (age gate) or a no-op (sync).
func (db *DB) GetProviderAccountID(ctx context.Context, userID string) (string, error) {
	var accountID string
	err := db.conn.QueryRowContext(ctx,
		`SELECT provider_account_id FROM identities WHERE user_id = ? AND provider = 'github'`,
		userID,
	).Scan(&accountID)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", nil
		}
		return "", fmt.Errorf("sqlite: getting provider account for user %s: %w", userID, err)
	}
	return accountID, nil
}

// GetUserIDByProviderAccount returns the internal user linked to a provider
// account, or "" when the account is not linked to anyone.
func (db *DB) GetUserIDByProviderAccount(ctx context.Context, provider, providerAccountID string) (string, error) {
	var userID string
	err := db.conn.QueryRowContext(ctx,
		`SELECT user_id FROM identities WHERE provider = ? AND provider_account_id = ?`,
		provider, providerAccountID,
	).Scan(&userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", nil
		}
		return "", fmt.Errorf("sqlite: getting user for %s account %s: %w", provider, providerAccountID, err)
	}
	return userID, nil
}

// Link records a provider account linkage. Relinking the same pair is a
// no-op, so the OAuth callback can call this unconditionally.
func (db *DB) Link(ctx context.Context, userID, provider, providerAccountID string) error {
	_, err := db.conn.ExecContext(ctx,
		`INSERT OR IGNORE INTO identities (provider, provider_account_id, user_id, created_at)
		 VALUES (?, ?, ?, ?)`,
		provider, providerAccountID, userID, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("sqlite: linking %s account %s to user %s: %w", provider, providerAccountID, userID, err)
	}
	return nil
}
