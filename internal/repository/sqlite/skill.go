package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/xid"

	"github.com/clawhub/clawhub/internal/apperror"
	"github.com/clawhub/clawhub/internal/model"
	"github.com/clawhub/clawhub/internal/repository"
)

// compile-time check that *DB implements repository.SkillRepository
var _ repository.SkillRepository = (*DB)(nil)

// Create inserts a new skill, assigning its ID and timestamps.
// A duplicate slug surfaces as apperror.ErrConflict.
func (db *DB) Create(ctx context.Context, skill *model.Skill) error {
	now := time.Now()
	skill.ID = xid.New().String()
	skill.CreatedAt = now
	skill.UpdatedAt = now

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO skills (id, slug, name, description, version, license, readme, owner_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		skill.ID,
		skill.Slug,
		skill.Name,
		skill.Description,
		skill.Version,
		skill.License,
		skill.Readme,
		skill.OwnerID,
		skill.CreatedAt,
		skill.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("skill", skill.Slug)
		}
		return fmt.Errorf("sqlite: inserting skill %s: %w", skill.Slug, err)
	}
	return nil
}

// GetBySlug retrieves a skill by its public slug.
// Returns apperror.ErrNotFound if no skill exists with that slug.
func (db *DB) GetBySlug(ctx context.Context, slug string) (*model.Skill, error) {
	var s model.Skill
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, slug, name, description, version, license, readme, owner_id, created_at, updated_at
		 FROM skills WHERE slug = ?`,
		slug,
	).Scan(
		&s.ID,
		&s.Slug,
		&s.Name,
		&s.Description,
		&s.Version,
		&s.License,
		&s.Readme,
		&s.OwnerID,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("skill", slug)
		}
		return nil, fmt.Errorf("sqlite: getting skill %s: %w", slug, err)
	}
	return &s, nil
}

// List retrieves skills newest-first. The readme is omitted from list
// results; it can be large and the list view never shows it.
func (db *DB) List(ctx context.Context, opts repository.ListOptions) ([]model.Skill, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, slug, name, description, version, license, owner_id, created_at, updated_at
		 FROM skills ORDER BY created_at DESC LIMIT ? OFFSET ?`,
		opts.Limit, opts.Offset,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing skills: %w", err)
	}
	defer rows.Close()

	skills := []model.Skill{}
	for rows.Next() {
		var s model.Skill
		if err := rows.Scan(
			&s.ID,
			&s.Slug,
			&s.Name,
			&s.Description,
			&s.Version,
			&s.License,
			&s.OwnerID,
			&s.CreatedAt,
			&s.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning skill row: %w", err)
		}
		skills = append(skills, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating skills: %w", err)
	}
	return skills, nil
}

// Update saves a republished skill.
func (db *DB) Update(ctx context.Context, skill *model.Skill) error {
	skill.UpdatedAt = time.Now()
	res, err := db.conn.ExecContext(ctx,
		`UPDATE skills
		 SET name = ?, description = ?, version = ?, license = ?, readme = ?, updated_at = ?
		 WHERE slug = ?`,
		skill.Name,
		skill.Description,
		skill.Version,
		skill.License,
		skill.Readme,
		skill.UpdatedAt,
		skill.Slug,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating skill %s: %w", skill.Slug, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperror.NotFound("skill", skill.Slug)
	}
	return nil
}

// Delete removes a skill by slug.
func (db *DB) Delete(ctx context.Context, slug string) error {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM skills WHERE slug = ?`, slug)
	if err != nil {
		return fmt.Errorf("sqlite: deleting skill %s: %w", slug, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperror.NotFound("skill", slug)
	}
	return nil
}

// isUniqueViolation sniffs the driver error for a UNIQUE constraint
// failure. modernc.org/sqlite doesn't export a typed error for this, so
// matching the message is the pragmatic option.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
