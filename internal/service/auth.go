package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/clawhub/clawhub/internal/apperror"
	"github.com/clawhub/clawhub/internal/auth"
	"github.com/clawhub/clawhub/internal/model"
	"github.com/clawhub/clawhub/internal/repository"
)

// GitHubProviderName is the provider key identity rows are stored under.
const GitHubProviderName = "github"

// AuthService orchestrates the GitHub OAuth callback: find or create the
// account for the GitHub identity, record the provider linkage, issue a
// session token. It has no knowledge of HTTP; cookies are the handler's job.
type AuthService struct {
	users  repository.UserRepository
	idents repository.IdentityRepository
	tokens *auth.TokenService
	logger *slog.Logger
}

func NewAuthService(
	users repository.UserRepository,
	idents repository.IdentityRepository,
	tokens *auth.TokenService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:  users,
		idents: idents,
		tokens: tokens,
		logger: logger,
	}
}

// AuthResult bundles the user record and the issued session JWT so the
// handler can set the cookie and respond in one step.
type AuthResult struct {
	User  *model.User
	Token string
}

// LoginOrRegisterGitHub completes a GitHub login.
//
// The provider account id (GitHub's numeric user id, stable for the life of
// the GitHub account) is the join key: a returning user is found through
// the identities table, a first-time user gets a fresh account plus a
// linkage row. Display fields are refreshed from the OAuth profile on every
// login; the throttled profile sync covers drift between logins.
func (s *AuthService) LoginOrRegisterGitHub(ctx context.Context, ghUser *auth.GitHubUser) (*AuthResult, error) {
	if ghUser == nil {
		return nil, fmt.Errorf("service/auth: GitHub user must not be nil")
	}

	accountID := strconv.FormatInt(ghUser.ID, 10)
	userID, err := s.idents.GetUserIDByProviderAccount(ctx, GitHubProviderName, accountID)
	if err != nil {
		return nil, fmt.Errorf("service/auth: looking up identity %s: %w", accountID, err)
	}

	var user *model.User
	if userID != "" {
		user, err = s.users.GetUserByID(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("service/auth: fetching user %s: %w", userID, err)
		}
		if user.Deactivated() {
			return nil, apperror.Forbidden("this account has been deactivated")
		}

		user.Name = ghUser.Login
		user.Email = ghUser.Email
		user.Image = ghUser.AvatarURL
		if _, err := s.users.Upsert(ctx, user); err != nil {
			return nil, fmt.Errorf("service/auth: updating user %s: %w", userID, err)
		}
	} else {
		user = &model.User{
			Name:  ghUser.Login,
			Email: ghUser.Email,
			Image: ghUser.AvatarURL,
		}
		if _, err := s.users.Upsert(ctx, user); err != nil {
			return nil, fmt.Errorf("service/auth: creating user (githubID=%d): %w", ghUser.ID, err)
		}
		if err := s.idents.Link(ctx, user.ID, GitHubProviderName, accountID); err != nil {
			return nil, fmt.Errorf("service/auth: linking identity for user %s: %w", user.ID, err)
		}
	}

	s.logger.Info("user authenticated via GitHub",
		slog.String("userID", user.ID),
		slog.String("login", user.Name),
	)

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, fmt.Errorf("service/auth: generating token for user %s: %w", user.ID, err)
	}

	return &AuthResult{User: user, Token: token}, nil
}

// GetUserByID returns the user for the given internal ID. Used by /api/me
// after the middleware validates the session.
func (s *AuthService) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	if id == "" {
		return nil, fmt.Errorf("service/auth: user ID must not be empty")
	}

	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service/auth: fetching user %s: %w", id, err)
	}
	return user, nil
}

// ValidateToken validates a session JWT and returns the userID it encodes.
func (s *AuthService) ValidateToken(tokenStr string) (string, error) {
	userID, err := s.tokens.Validate(tokenStr)
	if err != nil {
		return "", fmt.Errorf("service/auth: %w", err)
	}
	return userID, nil
}
