// Package model defines the data structures used throughout the application.
package model

import "time"

// User represents a registered account on the registry.
//
// GitHub OAuth is the identity provider, but the GitHub linkage itself
// (provider account id) lives in a separate identities table, not here.
// We generate our own internal string ID (xid) to avoid tying primary keys
// to a third party's numbering scheme.
//
// The three pointer timestamps are all "absent until something happened":
//
//   - DeactivatedAt: set when the account is disabled. A deactivated user is
//     never progressed further by the age gate or profile sync.
//   - GithubCreatedAt: cached GitHub account creation time, populated lazily
//     by the first age-gate verification. Once set it is treated as immutable
//     truth and never re-verified.
//   - GithubProfileSyncedAt: last time profile sync wrote to this record,
//     used to throttle GitHub API calls.
type User struct {
	ID                    string     `json:"id"                    db:"id"`
	Name                  string     `json:"name"                  db:"name"`       // GitHub login, kept loosely in sync
	Email                 string     `json:"email"                 db:"email"`      // primary public email (may be empty)
	Image                 string     `json:"image"                 db:"image"`      // GitHub avatar URL, kept loosely in sync
	DeactivatedAt         *time.Time `json:"deactivatedAt,omitempty"         db:"deactivated_at"`
	GithubCreatedAt       *time.Time `json:"githubCreatedAt,omitempty"       db:"github_created_at"`
	GithubProfileSyncedAt *time.Time `json:"githubProfileSyncedAt,omitempty" db:"github_profile_synced_at"`
	CreatedAt             time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt             time.Time  `json:"updatedAt" db:"updated_at"`
}

// Deactivated reports whether the account is disabled.
func (u *User) Deactivated() bool {
	return u.DeactivatedAt != nil
}
