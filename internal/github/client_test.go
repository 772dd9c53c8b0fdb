package github

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clawhub/clawhub/internal/apperror"
)

// newTestClient spins up an httptest server answering every request with the
// given handler and returns a Client pointed at it, plus a counter of how
// many requests actually hit the network.
func newTestClient(t *testing.T, token string, handler http.HandlerFunc) (*Client, *int) {
	t.Helper()

	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	c := NewClient(Config{
		BaseURL:    srv.URL,
		Token:      token,
		HTTPClient: srv.Client(),
	})
	return c, &calls
}

func TestFetchProfile_Success(t *testing.T) {
	c, calls := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/user/12345", r.URL.Path)
		assert.Equal(t, "clawhub", r.Header.Get("User-Agent"))
		w.Write([]byte(`{"created_at":"2020-01-01T00:00:00Z","login":"octocat","avatar_url":"https://example.com/a.png"}`))
	})

	p, err := c.FetchProfile(context.Background(), "12345")
	require.NoError(t, err)

	want := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.True(t, p.CreatedAt.Equal(want), "CreatedAt = %v, want %v", p.CreatedAt, want)
	assert.Equal(t, "octocat", p.Login)
	assert.Equal(t, "https://example.com/a.png", p.AvatarURL)
	assert.Equal(t, 1, *calls, "exactly one round trip")
}

func TestFetchProfile_OptionalFieldsAbsent(t *testing.T) {
	// login and avatar_url are optional in the response body; only
	// created_at is mandatory.
	c, _ := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"created_at":"2019-06-15T12:30:00Z"}`))
	})

	p, err := c.FetchProfile(context.Background(), "1")
	require.NoError(t, err)
	assert.Empty(t, p.Login)
	assert.Empty(t, p.AvatarURL)
}

func TestFetchProfile_AuthorizationHeader(t *testing.T) {
	t.Run("token configured", func(t *testing.T) {
		c, _ := newTestClient(t, "ghp_secret", func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Bearer ghp_secret", r.Header.Get("Authorization"))
			w.Write([]byte(`{"created_at":"2020-01-01T00:00:00Z"}`))
		})
		_, err := c.FetchProfile(context.Background(), "1")
		require.NoError(t, err)
	})

	t.Run("no token", func(t *testing.T) {
		c, _ := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
			assert.Empty(t, r.Header.Get("Authorization"), "no Authorization header without a token")
			w.Write([]byte(`{"created_at":"2020-01-01T00:00:00Z"}`))
		})
		_, err := c.FetchProfile(context.Background(), "1")
		require.NoError(t, err)
	})
}

func TestFetchProfile_NonNumericID(t *testing.T) {
	// Corrupt linkage must fail locally: never hand a non-numeric id to the
	// network.
	c, calls := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		t.Error("network call made for non-numeric provider account id")
	})

	for _, id := range []string{"", "abc", "12a45", "12 45", "-123", "١٢٣"} {
		_, err := c.FetchProfile(context.Background(), id)
		assert.ErrorIs(t, err, apperror.ErrGitHubLookup, "id %q", id)
	}
	assert.Equal(t, 0, *calls)
}

func TestFetchProfile_RateLimited(t *testing.T) {
	for _, status := range []int{http.StatusForbidden, http.StatusTooManyRequests} {
		c, _ := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		})

		_, err := c.FetchProfile(context.Background(), "12345")
		assert.ErrorIs(t, err, apperror.ErrRateLimited, "status %d", status)
		assert.NotErrorIs(t, err, apperror.ErrGitHubLookup, "status %d", status)
	}
}

func TestFetchProfile_HTTPError(t *testing.T) {
	for _, status := range []int{http.StatusNotFound, http.StatusInternalServerError, http.StatusBadGateway} {
		c, _ := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		})

		_, err := c.FetchProfile(context.Background(), "12345")
		assert.ErrorIs(t, err, apperror.ErrGitHubLookup, "status %d", status)
	}
}

func TestFetchProfile_MissingCreatedAt(t *testing.T) {
	c, _ := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"login":"octocat"}`))
	})

	_, err := c.FetchProfile(context.Background(), "12345")
	assert.ErrorIs(t, err, apperror.ErrGitHubLookup)
}

func TestFetchProfile_MalformedBody(t *testing.T) {
	c, _ := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	})

	_, err := c.FetchProfile(context.Background(), "12345")
	assert.ErrorIs(t, err, apperror.ErrGitHubLookup)
}

func TestFetchProfile_UnparseableCreatedAt(t *testing.T) {
	c, _ := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"created_at":"last tuesday"}`))
	})

	_, err := c.FetchProfile(context.Background(), "12345")
	assert.ErrorIs(t, err, apperror.ErrGitHubLookup)
}

func TestFetchProfile_DefaultConfig(t *testing.T) {
	c := NewClient(Config{})
	assert.Equal(t, DefaultBaseURL, c.baseURL)
	require.NotNil(t, c.http)
}

func TestIsDigits(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"12345", true},
		{"0", true},
		{"", false},
		{"12.5", false},
		{"0x1f", false},
		{" 123", false},
	}
	for _, tt := range tests {
		if got := isDigits(tt.in); got != tt.want {
			t.Errorf("isDigits(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestFetchProfile_WrapsAppError(t *testing.T) {
	c, _ := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := c.FetchProfile(context.Background(), "12345")
	var appErr *apperror.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Contains(t, appErr.Message, "429")
}
