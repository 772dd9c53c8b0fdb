package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/rs/xid"
	"golang.org/x/crypto/bcrypt"

	"github.com/clawhub/clawhub/internal/repository"
)

// TokenPrefix marks a publish token on the wire: claw_<id>_<secret>.
// The id half is the database key; the secret half is compared against a
// stored bcrypt hash and never persisted in plaintext.
const TokenPrefix = "claw"

// secretBytes of entropy per token secret (hex-encoded on the wire).
const secretBytes = 24

// PublishTokenService mints and verifies CLI publish tokens.
type PublishTokenService struct {
	tokens repository.TokenRepository
	cost   int // bcrypt cost
}

// NewPublishTokenService creates a service with the default bcrypt cost.
func NewPublishTokenService(tokens repository.TokenRepository) *PublishTokenService {
	return &PublishTokenService{tokens: tokens, cost: bcrypt.DefaultCost}
}

// NewPublishTokenServiceForTest allows a lower bcrypt cost so tests run
// fast. Cost 4 is the bcrypt minimum.
func NewPublishTokenServiceForTest(tokens repository.TokenRepository, cost int) *PublishTokenService {
	return &PublishTokenService{tokens: tokens, cost: cost}
}

// Mint creates a new publish token for the user and returns the plaintext.
// This is the only time the plaintext exists; we store only the hash.
func (s *PublishTokenService) Mint(ctx context.Context, userID string) (string, error) {
	id := xid.New().String()

	raw := make([]byte, secretBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("auth: generating token secret: %w", err)
	}
	secret := hex.EncodeToString(raw)

	hash, err := bcrypt.GenerateFromPassword([]byte(secret), s.cost)
	if err != nil {
		return "", fmt.Errorf("auth: hashing token secret: %w", err)
	}

	if err := s.tokens.CreateToken(ctx, id, userID, string(hash)); err != nil {
		return "", fmt.Errorf("auth: storing token: %w", err)
	}

	return fmt.Sprintf("%s_%s_%s", TokenPrefix, id, secret), nil
}

// Verify checks a presented token and returns the userID it belongs to.
// Any failure (bad shape, unknown id, wrong secret) returns a generic
// error; callers should not reveal which part failed.
func (s *PublishTokenService) Verify(ctx context.Context, token string) (string, error) {
	parts := strings.Split(token, "_")
	if len(parts) != 3 || parts[0] != TokenPrefix || parts[1] == "" || parts[2] == "" {
		return "", fmt.Errorf("auth: malformed publish token")
	}

	userID, hash, err := s.tokens.GetTokenSecretHash(ctx, parts[1])
	if err != nil {
		return "", fmt.Errorf("auth: unknown publish token")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(parts[2])); err != nil {
		return "", fmt.Errorf("auth: invalid publish token")
	}

	return userID, nil
}
