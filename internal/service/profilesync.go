package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/clawhub/clawhub/internal/repository"
)

// SyncThrottleWindow is the minimum interval between successive profile-sync
// network attempts for the same user. One refresh a day keeps display names
// and avatars reasonably fresh without spending GitHub API budget on every
// page view.
const SyncThrottleWindow = 24 * time.Hour

// ProfileSyncService keeps a user's cached display name and avatar loosely
// in sync with their live GitHub profile.
//
// Sync is best-effort and opportunistic: it is called from request paths
// (e.g. /api/me) where a failed or skipped refresh must not break anything.
// Accordingly the no-link and throttled cases return nil; only store
// failures and GitHub failures on an attempted fetch surface as errors.
type ProfileSyncService struct {
	users  repository.UserRepository
	idents repository.IdentityRepository
	github ProfileFetcher
	logger *slog.Logger

	now func() time.Time
}

// NewProfileSyncService creates a ProfileSyncService.
func NewProfileSyncService(
	users repository.UserRepository,
	idents repository.IdentityRepository,
	gh ProfileFetcher,
	logger *slog.Logger,
) *ProfileSyncService {
	return &ProfileSyncService{
		users:  users,
		idents: idents,
		github: gh,
		logger: logger,
		now:    time.Now,
	}
}

// SyncProfile refreshes the user's name/image from GitHub if a refresh is
// due. At most one store read, one network call, and one store write, in
// that order.
//
// The synced-at watermark only advances when something actually changed.
// An unchanged profile leaves the watermark alone, so the next eligible
// attempt still performs the network check; the cost is bounded at one
// GitHub call per throttle-eligible request for unchanged profiles, which
// is acceptable at our call sites.
func (s *ProfileSyncService) SyncProfile(ctx context.Context, userID string) error {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.Deactivated() {
		// Deactivated accounts are never progressed.
		return nil
	}

	now := s.now()
	if user.GithubProfileSyncedAt != nil && now.Sub(*user.GithubProfileSyncedAt) < SyncThrottleWindow {
		// Throttle hit: no network call, no mutation.
		return nil
	}

	accountID, err := s.idents.GetProviderAccountID(ctx, userID)
	if err != nil {
		return fmt.Errorf("service/profilesync: resolving provider account for user %s: %w", userID, err)
	}
	if accountID == "" {
		// No linked GitHub identity. Unlike the age gate this is not a
		// failure: the profile is simply left unsynced.
		return nil
	}

	profile, err := s.github.FetchProfile(ctx, accountID)
	if err != nil {
		return err
	}

	newName := profile.Login
	if newName == "" {
		newName = user.Name
	}
	newImage := profile.AvatarURL
	if newImage == "" {
		newImage = user.Image
	}

	if newName == user.Name && newImage == user.Image {
		return nil
	}

	patch := repository.ProfilePatch{
		Name:     newName,
		Image:    newImage,
		SyncedAt: now,
	}
	if err := s.users.SyncProfile(ctx, userID, patch); err != nil {
		return fmt.Errorf("service/profilesync: updating profile for user %s: %w", userID, err)
	}

	s.logger.Info("github profile synced",
		slog.String("userID", userID),
		slog.String("name", newName),
	)
	return nil
}
