package model

import "time"

// Skill is a published skill package. The slug is the stable public
// identifier (what the CLI and URLs use); the name and description come from
// the SKILL.md frontmatter at publish time.
type Skill struct {
	ID          string    `json:"id"          db:"id"`
	Slug        string    `json:"slug"        db:"slug"`
	Name        string    `json:"name"        db:"name"`
	Description string    `json:"description" db:"description"`
	Version     string    `json:"version"     db:"version"`
	License     string    `json:"license"     db:"license"`
	Readme      string    `json:"readme"      db:"readme"`   // full SKILL.md body
	OwnerID     string    `json:"ownerId"     db:"owner_id"` // internal user ID of the publisher
	CreatedAt   time.Time `json:"createdAt"   db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt"   db:"updated_at"`
}
