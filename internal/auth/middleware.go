package auth

import (
	"context"
	"net/http"
	"strings"
)

// contextKey is an unexported type for context keys in this package, so no
// other package can read or shadow the values we store.
type contextKey string

const userIDKey contextKey = "userID"

// Credentials groups the two verifiers the middleware accepts: the session
// JWT cookie set by the browser login flow, and the bearer publish token
// presented by the CLI.
type Credentials struct {
	Sessions *TokenService
	Tokens   *PublishTokenService
}

// RequireAuth enforces authentication on protected routes. It accepts
// either credential, stores the userID in the request context, and answers
// 401 when neither verifies.
func RequireAuth(creds Credentials) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := extractUserID(r, creds)
			if err != nil {
				http.Error(w, `{"error":"unauthorized","message":"valid authentication required"}`, http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(ContextWithUserID(r.Context(), userID)))
		})
	}
}

// OptionalAuth extracts the user identity if a valid credential is present
// but never blocks the request. Anonymous requests proceed with no userID
// in context.
func OptionalAuth(creds Credentials) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if userID, err := extractUserID(r, creds); err == nil && userID != "" {
				r = r.WithContext(ContextWithUserID(r.Context(), userID))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ContextWithUserID stores an authenticated user's ID in the context.
func ContextWithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFromContext retrieves the authenticated user's ID from the request
// context. Returns ("", false) for anonymous requests.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}

// extractUserID tries the Authorization header first (CLI publish token),
// then the session cookie.
func extractUserID(r *http.Request, creds Credentials) (string, error) {
	if header := r.Header.Get("Authorization"); header != "" && creds.Tokens != nil {
		token := strings.TrimPrefix(header, "Bearer ")
		if strings.HasPrefix(token, TokenPrefix+"_") {
			return creds.Tokens.Verify(r.Context(), token)
		}
	}

	cookie, err := r.Cookie("token")
	if err != nil {
		return "", err
	}
	return creds.Sessions.Validate(cookie.Value)
}
