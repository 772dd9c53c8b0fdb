package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/clawhub/clawhub/internal/model"
)

// Client talks to the registry's HTTP API with a publish token.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewClient creates an API client from the CLI config.
func NewClient(cfg *Config) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.ServerURL, "/"),
		token:   cfg.Token,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// apiError mirrors the server's ErrorResponse shape.
type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type listResponse struct {
	Skills []model.Skill `json:"skills"`
	Count  int           `json:"count"`
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("cli: building request: %w", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "text/markdown")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("cli: calling %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr apiError
		if json.NewDecoder(resp.Body).Decode(&apiErr) == nil && apiErr.Message != "" {
			return fmt.Errorf("%s (%s)", apiErr.Message, apiErr.Error)
		}
		return fmt.Errorf("cli: %s returned status %d", path, resp.StatusCode)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("cli: decoding %s response: %w", path, err)
		}
	}
	return nil
}

// Me returns the profile of the token's owner.
func (c *Client) Me(ctx context.Context) (*model.User, error) {
	var user model.User
	if err := c.do(ctx, http.MethodGet, "/api/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ListSkills returns a page of skills.
func (c *Client) ListSkills(ctx context.Context, limit int) ([]model.Skill, error) {
	var out listResponse
	path := fmt.Sprintf("/api/skills?limit=%d", limit)
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Skills, nil
}

// GetSkill returns one skill, readme included.
func (c *Client) GetSkill(ctx context.Context, slug string) (*model.Skill, error) {
	var skill model.Skill
	if err := c.do(ctx, http.MethodGet, "/api/skills/"+slug, nil, &skill); err != nil {
		return nil, err
	}
	return &skill, nil
}

// Publish uploads a raw SKILL.md document.
func (c *Client) Publish(ctx context.Context, content string) (*model.Skill, error) {
	var skill model.Skill
	if err := c.do(ctx, http.MethodPost, "/api/skills", strings.NewReader(content), &skill); err != nil {
		return nil, err
	}
	return &skill, nil
}

// DeleteSkill removes one of the caller's skills.
func (c *Client) DeleteSkill(ctx context.Context, slug string) error {
	return c.do(ctx, http.MethodDelete, "/api/skills/"+slug, nil, nil)
}
