// Package github is a minimal client for the one GitHub REST call the
// registry makes on its own behalf: fetching a user's public profile by
// numeric account id.
//
// This is NOT the OAuth login flow (see internal/auth/oauth.go). The login
// flow acts with the user's token; this client acts with an optional
// operator-supplied token and is used by the age gate and profile sync,
// where the user may not have an active session at all.
//
// Each FetchProfile call is exactly one network round trip. No retries, no
// backoff: failures are classified and surfaced for the caller to handle.
package github

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/clawhub/clawhub/internal/apperror"
)

// DefaultBaseURL is the public GitHub REST API endpoint.
const DefaultBaseURL = "https://api.github.com"

// userAgent identifies us to GitHub. GitHub rejects requests without a
// User-Agent header.
const userAgent = "clawhub"

// Profile is the portion of GitHub's /user/{id} response we care about.
// GitHub returns a much larger object; we only unmarshal what we need.
//
// Login and AvatarURL may be empty: GitHub does not guarantee them and we
// pass absence through to the caller. CreatedAt is mandatory; a response
// without it is treated as malformed.
type Profile struct {
	CreatedAt time.Time
	Login     string
	AvatarURL string
}

// profileBody mirrors the JSON wire shape.
type profileBody struct {
	CreatedAt string `json:"created_at"`
	Login     string `json:"login"`
	AvatarURL string `json:"avatar_url"`
}

// Config holds the client's construction-time settings.
//
// Token is the operator-supplied GitHub access token (GITHUB_API_TOKEN).
// It is optional: without it, requests go out unauthenticated and share
// GitHub's small anonymous rate budget. We deliberately take it as an
// explicit value rather than reading the environment here, so tests can
// construct clients without global state.
type Config struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client // timeout policy belongs to the injected client
}

// Client fetches GitHub profiles.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewClient creates a Client. Zero-value config fields get defaults:
// the public API endpoint and http.DefaultClient.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = http.DefaultClient
	}
	return &Client{
		baseURL: cfg.BaseURL,
		token:   cfg.Token,
		http:    cfg.HTTPClient,
	}
}

// FetchProfile fetches the public profile for a GitHub numeric account id.
//
// providerAccountID must be composed only of decimal digits. Anything else
// means the identity linkage is corrupt, and we fail with ErrGitHubLookup
// without making a network call: a non-numeric id is never a valid GitHub
// user id, so there is nothing to ask the network.
//
// Status classification:
//   - 403 and 429 fail with ErrRateLimited, so callers can distinguish
//     "back off" from a genuine lookup failure.
//   - any other non-2xx fails with ErrGitHubLookup.
//   - a 2xx body missing created_at fails with ErrGitHubLookup.
func (c *Client) FetchProfile(ctx context.Context, providerAccountID string) (*Profile, error) {
	if !isDigits(providerAccountID) {
		return nil, apperror.GitHubLookup(
			fmt.Sprintf("provider account id %q is not a numeric GitHub id", providerAccountID))
	}

	url := fmt.Sprintf("%s/user/%s", c.baseURL, providerAccountID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("github: building request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, apperror.GitHubLookup(fmt.Sprintf("calling GitHub API: %v", err))
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusTooManyRequests:
		return nil, apperror.RateLimited(
			fmt.Sprintf("GitHub API returned status %d", resp.StatusCode))
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, apperror.GitHubLookup(
			fmt.Sprintf("GitHub API returned status %d", resp.StatusCode))
	}

	var body profileBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, apperror.GitHubLookup(fmt.Sprintf("decoding GitHub response: %v", err))
	}

	if body.CreatedAt == "" {
		return nil, apperror.GitHubLookup("GitHub response missing created_at")
	}
	createdAt, err := time.Parse(time.RFC3339, body.CreatedAt)
	if err != nil {
		return nil, apperror.GitHubLookup(
			fmt.Sprintf("GitHub returned unparseable created_at %q", body.CreatedAt))
	}

	return &Profile{
		CreatedAt: createdAt,
		Login:     body.Login,
		AvatarURL: body.AvatarURL,
	}, nil
}

// isDigits reports whether s is non-empty and contains only '0'..'9'.
func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
