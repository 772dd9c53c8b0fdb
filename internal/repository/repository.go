// Package repository declares the storage interfaces the service layer
// depends on. The sqlite subpackage provides the real implementation; tests
// substitute in-memory fakes.
package repository

import (
	"context"
	"time"

	"github.com/clawhub/clawhub/internal/model"
)

type ListOptions struct {
	Limit  int
	Offset int
}

// ProfilePatch is the single atomic write issued by profile sync: whatever
// display fields changed, plus the new synced-at watermark, together.
type ProfilePatch struct {
	Name     string
	Image    string
	SyncedAt time.Time
}

// UserRepository reads and patches user records.
//
// GetUserByID returns apperror.ErrNotFound when no record exists; callers
// that also treat deactivated accounts as missing do that check themselves.
type UserRepository interface {
	Upsert(ctx context.Context, user *model.User) (created bool, err error)
	GetUserByID(ctx context.Context, id string) (*model.User, error)

	// SetGithubCreatedAt populates the cached GitHub account creation time.
	// The field is write-once from the caller's perspective: once set it is
	// never cleared and never moves backward.
	SetGithubCreatedAt(ctx context.Context, id string, createdAt time.Time) error

	// SyncProfile applies a profile patch in one update.
	SyncProfile(ctx context.Context, id string, patch ProfilePatch) error
}

// IdentityRepository maps internal users to external provider accounts.
// Read-only from the services' perspective; rows are written during the
// OAuth callback.
type IdentityRepository interface {
	// GetProviderAccountID returns the GitHub numeric account id (as the
	// provider supplied it, a decimal string) linked to the user, or ""
	// when no GitHub identity is linked.
	GetProviderAccountID(ctx context.Context, userID string) (string, error)

	// GetUserIDByProviderAccount is the reverse lookup, used by the OAuth
	// callback to find the existing account for a returning user. Returns
	// "" when the provider account is not linked to anyone.
	GetUserIDByProviderAccount(ctx context.Context, provider, providerAccountID string) (string, error)

	Link(ctx context.Context, userID, provider, providerAccountID string) error
}

type SkillRepository interface {
	Create(ctx context.Context, skill *model.Skill) error
	GetBySlug(ctx context.Context, slug string) (*model.Skill, error)
	List(ctx context.Context, opts ListOptions) ([]model.Skill, error)
	Update(ctx context.Context, skill *model.Skill) error
	Delete(ctx context.Context, slug string) error
}

// TokenRepository stores CLI publish tokens. Only the bcrypt hash of the
// secret is persisted; the plaintext is shown once at mint time.
type TokenRepository interface {
	CreateToken(ctx context.Context, id, userID, secretHash string) error
	GetTokenSecretHash(ctx context.Context, id string) (userID, secretHash string, err error)
}
