package service

import (
	"context"
	"errors"
	"testing"

	"github.com/clawhub/clawhub/internal/apperror"
	"github.com/clawhub/clawhub/internal/auth"
	"github.com/clawhub/clawhub/internal/model"
)

func newTestAuthService(t *testing.T, users *fakeUserRepo, idents *fakeIdentRepo) *AuthService {
	t.Helper()
	tokens, err := auth.NewTokenService("test-secret-at-least-16-chars!!")
	if err != nil {
		t.Fatalf("NewTokenService() error = %v", err)
	}
	return NewAuthService(users, idents, tokens, testLogger())
}

func testGitHubUser() *auth.GitHubUser {
	return &auth.GitHubUser{
		ID:        583231,
		Login:     "octocat",
		Email:     "octocat@github.com",
		AvatarURL: "https://avatars.githubusercontent.com/u/583231",
	}
}

func TestLoginOrRegisterGitHub_NewUser(t *testing.T) {
	users := newFakeUserRepo()
	idents := &fakeIdentRepo{}
	svc := newTestAuthService(t, users, idents)

	result, err := svc.LoginOrRegisterGitHub(context.Background(), testGitHubUser())
	if err != nil {
		t.Fatalf("LoginOrRegisterGitHub() error = %v", err)
	}
	if result.User.ID == "" {
		t.Error("new user was not assigned an ID")
	}
	if result.User.Name != "octocat" {
		t.Errorf("Name = %q, want %q", result.User.Name, "octocat")
	}
	if result.Token == "" {
		t.Error("no session token issued")
	}
	if got := idents.accounts[result.User.ID]; got != "583231" {
		t.Errorf("linked account = %q, want %q", got, "583231")
	}

	// The token must validate back to the same user.
	userID, err := svc.ValidateToken(result.Token)
	if err != nil {
		t.Fatalf("ValidateToken() error = %v", err)
	}
	if userID != result.User.ID {
		t.Errorf("ValidateToken() = %q, want %q", userID, result.User.ID)
	}
}

func TestLoginOrRegisterGitHub_ReturningUser(t *testing.T) {
	existing := &model.User{ID: "u1", Name: "old-login", Email: "old@example.com"}
	users := newFakeUserRepo(existing)
	idents := &fakeIdentRepo{accounts: map[string]string{"u1": "583231"}}
	svc := newTestAuthService(t, users, idents)

	result, err := svc.LoginOrRegisterGitHub(context.Background(), testGitHubUser())
	if err != nil {
		t.Fatalf("LoginOrRegisterGitHub() error = %v", err)
	}
	if result.User.ID != "u1" {
		t.Errorf("user ID = %q, want existing %q", result.User.ID, "u1")
	}
	// Display fields are refreshed from the OAuth profile on every login.
	if result.User.Name != "octocat" {
		t.Errorf("Name = %q, want refreshed %q", result.User.Name, "octocat")
	}
	if len(users.users) != 1 {
		t.Errorf("user count = %d, want 1 (no duplicate account)", len(users.users))
	}
}

func TestLoginOrRegisterGitHub_DeactivatedUser(t *testing.T) {
	deactivated := testNow
	users := newFakeUserRepo(&model.User{ID: "u1", DeactivatedAt: &deactivated})
	idents := &fakeIdentRepo{accounts: map[string]string{"u1": "583231"}}
	svc := newTestAuthService(t, users, idents)

	_, err := svc.LoginOrRegisterGitHub(context.Background(), testGitHubUser())
	if !errors.Is(err, apperror.ErrForbidden) {
		t.Fatalf("LoginOrRegisterGitHub() error = %v, want ErrForbidden", err)
	}
}

func TestLoginOrRegisterGitHub_NilUser(t *testing.T) {
	svc := newTestAuthService(t, newFakeUserRepo(), &fakeIdentRepo{})

	if _, err := svc.LoginOrRegisterGitHub(context.Background(), nil); err == nil {
		t.Fatal("LoginOrRegisterGitHub(nil) should fail")
	}
}

func TestAuthGetUserByID(t *testing.T) {
	users := newFakeUserRepo(&model.User{ID: "u1", Name: "octocat"})
	svc := newTestAuthService(t, users, &fakeIdentRepo{})

	user, err := svc.GetUserByID(context.Background(), "u1")
	if err != nil {
		t.Fatalf("GetUserByID() error = %v", err)
	}
	if user.Name != "octocat" {
		t.Errorf("Name = %q, want %q", user.Name, "octocat")
	}

	if _, err := svc.GetUserByID(context.Background(), ""); err == nil {
		t.Error("GetUserByID(\"\") should fail")
	}
	if _, err := svc.GetUserByID(context.Background(), "missing"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetUserByID(missing) error = %v, want ErrNotFound", err)
	}
}

func TestValidateToken_Garbage(t *testing.T) {
	svc := newTestAuthService(t, newFakeUserRepo(), &fakeIdentRepo{})

	if _, err := svc.ValidateToken("not-a-jwt"); err == nil {
		t.Fatal("ValidateToken() should reject garbage")
	}
}
