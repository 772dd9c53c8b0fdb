package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/clawhub/clawhub/internal/apperror"
	"github.com/clawhub/clawhub/internal/model"
	"github.com/clawhub/clawhub/internal/repository"
)

// newTestDB returns a DB backed by an in-memory SQLite database, with
// migrations applied. The database is lost when the test ends.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("New(:memory:): %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// createTestUser creates a user and fails the test on error.
func createTestUser(t *testing.T, db *DB, name string) *model.User {
	t.Helper()
	user := &model.User{
		Name:  name,
		Email: name + "@example.com",
		Image: "https://avatars.githubusercontent.com/u/123",
	}
	created, err := db.Upsert(context.Background(), user)
	if err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	if !created {
		t.Fatal("Upsert() should report created=true for a new user")
	}
	return user
}

func TestUserUpsert_Create(t *testing.T) {
	db := newTestDB(t)

	user := &model.User{Name: "octocat", Email: "octo@example.com"}
	created, err := db.Upsert(context.Background(), user)
	if err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if !created {
		t.Error("Upsert() created = false, want true")
	}
	if user.ID == "" {
		t.Error("Upsert() did not set user.ID")
	}
	if user.CreatedAt.IsZero() {
		t.Error("Upsert() did not set user.CreatedAt")
	}
}

func TestUserUpsert_Update(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "before")

	user.Name = "after"
	user.Image = "https://a/new.png"
	created, err := db.Upsert(context.Background(), user)
	if err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if created {
		t.Error("Upsert() created = true, want false for existing user")
	}

	found, err := db.GetUserByID(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("GetUserByID() error = %v", err)
	}
	if found.Name != "after" {
		t.Errorf("Name = %q, want %q", found.Name, "after")
	}
	if found.Image != "https://a/new.png" {
		t.Errorf("Image = %q, want updated image", found.Image)
	}
}

func TestUserUpsert_UpdateMissingUser(t *testing.T) {
	db := newTestDB(t)

	ghost := &model.User{ID: "nonexistent", Name: "ghost"}
	if _, err := db.Upsert(context.Background(), ghost); !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("Upsert() error = %v, want ErrNotFound", err)
	}
}

func TestUserGetByID_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.GetUserByID(context.Background(), "nonexistent-id")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetUserByID() error = %v, want ErrNotFound", err)
	}
}

func TestUserNullableTimestampsDefaultToNil(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "fresh")

	found, err := db.GetUserByID(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("GetUserByID() error = %v", err)
	}
	if found.DeactivatedAt != nil {
		t.Error("DeactivatedAt should be nil for a fresh user")
	}
	if found.GithubCreatedAt != nil {
		t.Error("GithubCreatedAt should be nil before first verification")
	}
	if found.GithubProfileSyncedAt != nil {
		t.Error("GithubProfileSyncedAt should be nil before first sync")
	}
}

func TestSetGithubCreatedAt_RoundTrip(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "verified")

	createdAt := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	if err := db.SetGithubCreatedAt(context.Background(), user.ID, createdAt); err != nil {
		t.Fatalf("SetGithubCreatedAt() error = %v", err)
	}

	found, err := db.GetUserByID(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("GetUserByID() error = %v", err)
	}
	if found.GithubCreatedAt == nil {
		t.Fatal("GithubCreatedAt is nil after SetGithubCreatedAt")
	}
	if !found.GithubCreatedAt.Equal(createdAt) {
		t.Errorf("GithubCreatedAt = %v, want %v (millisecond round trip)", found.GithubCreatedAt, createdAt)
	}
}

func TestSetGithubCreatedAt_WriteOnce(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "verified")

	first := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	second := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	if err := db.SetGithubCreatedAt(context.Background(), user.ID, first); err != nil {
		t.Fatalf("first SetGithubCreatedAt() error = %v", err)
	}
	// A later (duplicate) verification must not move the cached value.
	if err := db.SetGithubCreatedAt(context.Background(), user.ID, second); err != nil {
		t.Fatalf("second SetGithubCreatedAt() error = %v", err)
	}

	found, _ := db.GetUserByID(context.Background(), user.ID)
	if !found.GithubCreatedAt.Equal(first) {
		t.Errorf("GithubCreatedAt = %v, want original %v", found.GithubCreatedAt, first)
	}
}

func TestSetGithubCreatedAt_MissingUser(t *testing.T) {
	db := newTestDB(t)

	err := db.SetGithubCreatedAt(context.Background(), "ghost", time.Now())
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("SetGithubCreatedAt() error = %v, want ErrNotFound", err)
	}
}

func TestSyncProfile_AppliesPatch(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "old-login")

	syncedAt := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	patch := repository.ProfilePatch{
		Name:     "new-login",
		Image:    "https://a/new.png",
		SyncedAt: syncedAt,
	}
	if err := db.SyncProfile(context.Background(), user.ID, patch); err != nil {
		t.Fatalf("SyncProfile() error = %v", err)
	}

	found, err := db.GetUserByID(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("GetUserByID() error = %v", err)
	}
	if found.Name != "new-login" {
		t.Errorf("Name = %q, want %q", found.Name, "new-login")
	}
	if found.Image != "https://a/new.png" {
		t.Errorf("Image = %q, want updated image", found.Image)
	}
	if found.GithubProfileSyncedAt == nil || !found.GithubProfileSyncedAt.Equal(syncedAt) {
		t.Errorf("GithubProfileSyncedAt = %v, want %v", found.GithubProfileSyncedAt, syncedAt)
	}
}

func TestDeactivate(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "soon-gone")

	at := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	if err := db.Deactivate(context.Background(), user.ID, at); err != nil {
		t.Fatalf("Deactivate() error = %v", err)
	}

	found, _ := db.GetUserByID(context.Background(), user.ID)
	if found.DeactivatedAt == nil || !found.DeactivatedAt.Equal(at) {
		t.Errorf("DeactivatedAt = %v, want %v", found.DeactivatedAt, at)
	}

	// Idempotent: the original timestamp survives a second call.
	later := at.Add(24 * time.Hour)
	if err := db.Deactivate(context.Background(), user.ID, later); err != nil {
		t.Fatalf("second Deactivate() error = %v", err)
	}
	found, _ = db.GetUserByID(context.Background(), user.ID)
	if !found.DeactivatedAt.Equal(at) {
		t.Errorf("DeactivatedAt = %v, want original %v", found.DeactivatedAt, at)
	}
}
