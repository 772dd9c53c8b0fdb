package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/clawhub/clawhub/internal/apperror"
	"github.com/clawhub/clawhub/internal/model"
	"github.com/clawhub/clawhub/internal/repository"
	"github.com/clawhub/clawhub/internal/skillfile"
)

const (
	MaxSkillNameLength = 100
	MaxReadmeLength    = 200000 // ~200KB of markdown
	DefaultListLimit   = 20
	MaxListLimit       = 100
)

// SkillService handles business logic for skill packages.
//
// Publishing is the registry's one privileged action: the handler runs the
// age gate before calling Publish, so this service only deals with
// validation and ownership.
type SkillService struct {
	repo   repository.SkillRepository
	logger *slog.Logger
}

func NewSkillService(repo repository.SkillRepository, logger *slog.Logger) *SkillService {
	return &SkillService{
		repo:   repo,
		logger: logger,
	}
}

// Publish creates a skill from a parsed manifest, or updates it when the
// same owner republishes under the same slug. Republishing someone else's
// slug fails with ErrForbidden.
func (s *SkillService) Publish(ctx context.Context, ownerID string, m *skillfile.Manifest, readme string) (*model.Skill, error) {
	if ownerID == "" {
		return nil, apperror.ValidationFailed("owner", "publisher is required")
	}
	if len(m.Name) > MaxSkillNameLength {
		return nil, apperror.ValidationFailed("name",
			fmt.Sprintf("skill name must be %d characters or less", MaxSkillNameLength))
	}
	if len(readme) > MaxReadmeLength {
		return nil, apperror.ValidationFailed("readme",
			fmt.Sprintf("readme must be %d characters or less", MaxReadmeLength))
	}

	slug := skillfile.Slugify(m.Name)
	if slug == "" {
		return nil, apperror.ValidationFailed("name", "skill name must contain letters or digits")
	}

	version := m.Version
	if version == "" {
		version = "0.0.1"
	}

	existing, err := s.repo.GetBySlug(ctx, slug)
	switch {
	case err == nil:
		if existing.OwnerID != ownerID {
			return nil, apperror.Forbidden(
				fmt.Sprintf("skill %q is owned by another user", slug))
		}
		existing.Name = m.Name
		existing.Description = m.Description
		existing.Version = version
		existing.License = m.License
		existing.Readme = readme
		if err := s.repo.Update(ctx, existing); err != nil {
			return nil, fmt.Errorf("republishing skill %s: %w", slug, err)
		}
		s.logger.Info("skill republished",
			slog.String("slug", slug),
			slog.String("version", version),
			slog.String("ownerID", ownerID),
		)
		return existing, nil

	case isNotFound(err):
		skill := &model.Skill{
			Slug:        slug,
			Name:        m.Name,
			Description: m.Description,
			Version:     version,
			License:     m.License,
			Readme:      readme,
			OwnerID:     ownerID,
		}
		if err := s.repo.Create(ctx, skill); err != nil {
			return nil, fmt.Errorf("publishing skill %s: %w", slug, err)
		}
		s.logger.Info("skill published",
			slog.String("slug", slug),
			slog.String("version", version),
			slog.String("ownerID", ownerID),
		)
		return skill, nil

	default:
		return nil, fmt.Errorf("looking up skill %s: %w", slug, err)
	}
}

// GetBySlug retrieves a skill by its slug.
func (s *SkillService) GetBySlug(ctx context.Context, slug string) (*model.Skill, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, apperror.ValidationFailed("slug", "skill slug is required")
	}
	return s.repo.GetBySlug(ctx, slug)
}

// List retrieves skills with pagination. The limit is clamped to a sane
// range so callers can't request the whole table.
func (s *SkillService) List(ctx context.Context, limit, offset int) ([]model.Skill, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	if offset < 0 {
		offset = 0
	}

	skills, err := s.repo.List(ctx, repository.ListOptions{Limit: limit, Offset: offset})
	if err != nil {
		s.logger.Error("failed to list skills", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing skills: %w", err)
	}
	return skills, nil
}

// Delete removes a skill. Only the owner may delete it.
func (s *SkillService) Delete(ctx context.Context, ownerID, slug string) error {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return apperror.ValidationFailed("slug", "skill slug is required")
	}

	skill, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		return err
	}
	if skill.OwnerID != ownerID {
		return apperror.Forbidden(fmt.Sprintf("skill %q is owned by another user", slug))
	}

	if err := s.repo.Delete(ctx, slug); err != nil {
		return err
	}

	s.logger.Info("skill deleted", slog.String("slug", slug), slog.String("ownerID", ownerID))
	return nil
}

func isNotFound(err error) bool {
	return errors.Is(err, apperror.ErrNotFound)
}
