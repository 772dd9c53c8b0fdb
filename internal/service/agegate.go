// Package service contains the business logic layer of the application.
//
// Services sit between the HTTP handlers and the repositories:
//
//	Handler (HTTP)  → Service (rules, orchestration) → Repository (DB)
//	                ↘ github.Client (external API)
//
// Every service takes its dependencies through its constructor as
// interfaces, so tests swap in fakes without touching a database or the
// network. Services return apperror values; handlers translate them to HTTP.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/clawhub/clawhub/internal/apperror"
	"github.com/clawhub/clawhub/internal/github"
	"github.com/clawhub/clawhub/internal/repository"
)

// MinAccountAge is the minimum age a GitHub account must have before its
// owner may publish. The boundary is inclusive: an account exactly this old
// passes.
const MinAccountAge = 7 * 24 * time.Hour

// ProfileFetcher is the slice of github.Client the services need.
// Declared here so tests can substitute a fake without a real HTTP server.
type ProfileFetcher interface {
	FetchProfile(ctx context.Context, providerAccountID string) (*github.Profile, error)
}

// AgeGateService enforces the minimum GitHub account age before privileged
// actions, using the cheapest available evidence.
//
// The verified creation time is cached on the user record
// (githubCreatedAt). The dominant path is a cache hit: one store read, a
// local comparison, zero network calls. Only the first verification for a
// user reaches the GitHub API, and its result is written through before the
// age is evaluated, so a subsequent call never repeats the call even when
// the account turns out to be too young.
type AgeGateService struct {
	users  repository.UserRepository
	idents repository.IdentityRepository
	github ProfileFetcher
	logger *slog.Logger

	// now is swapped out in tests to make age arithmetic deterministic.
	now func() time.Time
}

// NewAgeGateService creates an AgeGateService.
func NewAgeGateService(
	users repository.UserRepository,
	idents repository.IdentityRepository,
	gh ProfileFetcher,
	logger *slog.Logger,
) *AgeGateService {
	return &AgeGateService{
		users:  users,
		idents: idents,
		github: gh,
		logger: logger,
		now:    time.Now,
	}
}

// RequireAccountAge returns nil when the user's GitHub account satisfies
// the minimum-age policy, and one of the apperror sentinels otherwise:
//
//   - ErrNotFound: the user does not exist, or is deactivated. The two
//     cases are deliberately indistinguishable to the caller: the gate
//     never reveals "banned" versus "doesn't exist".
//   - ErrAccountTooYoung: verified age below MinAccountAge.
//   - ErrGitHubRequired: no GitHub identity linked at all.
//   - ErrGitHubLookup / ErrRateLimited: propagated from the fetch.
func (s *AgeGateService) RequireAccountAge(ctx context.Context, userID string) error {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.Deactivated() {
		return apperror.NotFound("user", userID)
	}

	// Cache hit: the creation time was verified before and is immutable
	// truth. Evaluate locally, never touch the network.
	if user.GithubCreatedAt != nil {
		return s.evaluateAge(*user.GithubCreatedAt)
	}

	accountID, err := s.idents.GetProviderAccountID(ctx, userID)
	if err != nil {
		return fmt.Errorf("service/agegate: resolving provider account for user %s: %w", userID, err)
	}
	if accountID == "" {
		return apperror.GitHubRequired("a linked GitHub account is required")
	}

	profile, err := s.github.FetchProfile(ctx, accountID)
	if err != nil {
		// ErrRateLimited and ErrGitHubLookup propagate unchanged so the
		// caller can branch on them.
		return err
	}

	// Write-through before evaluating: the cache must be populated even if
	// the account is too young, so the next call is a cache hit.
	if err := s.users.SetGithubCreatedAt(ctx, userID, profile.CreatedAt); err != nil {
		return fmt.Errorf("service/agegate: caching github creation time for user %s: %w", userID, err)
	}

	s.logger.Info("github account age verified",
		slog.String("userID", userID),
		slog.Time("githubCreatedAt", profile.CreatedAt),
	)

	return s.evaluateAge(profile.CreatedAt)
}

func (s *AgeGateService) evaluateAge(createdAt time.Time) error {
	if age := s.now().Sub(createdAt); age < MinAccountAge {
		return apperror.AccountTooYoung(fmt.Sprintf(
			"GitHub account must be at least %d days old to publish",
			int(MinAccountAge.Hours()/24)))
	}
	return nil
}
