package handler

import (
	"log/slog"
	"net/http"

	"github.com/rs/xid"

	"github.com/clawhub/clawhub/internal/auth"
	"github.com/clawhub/clawhub/internal/service"
)

// AuthHandler manages the GitHub OAuth login flow, sessions, and publish
// token minting.
type AuthHandler struct {
	github   *auth.GitHubProvider
	authSvc  *service.AuthService
	syncSvc  *service.ProfileSyncService
	pubToken *auth.PublishTokenService
	logger   *slog.Logger
}

func NewAuthHandler(
	github *auth.GitHubProvider,
	authSvc *service.AuthService,
	syncSvc *service.ProfileSyncService,
	pubToken *auth.PublishTokenService,
	logger *slog.Logger,
) *AuthHandler {
	return &AuthHandler{
		github:   github,
		authSvc:  authSvc,
		syncSvc:  syncSvc,
		pubToken: pubToken,
		logger:   logger,
	}
}

// HandleGitHubLogin redirects the browser to GitHub's authorization page.
//
// HTTP: GET /auth/github/login
//
// The random state lands in a short-lived HttpOnly cookie; the callback
// verifies it to reject forged redirects.
func (h *AuthHandler) HandleGitHubLogin(w http.ResponseWriter, r *http.Request) {
	state := xid.New().String()

	http.SetCookie(w, &http.Cookie{
		Name:     "oauth_state",
		Value:    state,
		Path:     "/",
		MaxAge:   600,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.github.AuthURL(state), http.StatusTemporaryRedirect)
}

// HandleGitHubCallback completes the OAuth login flow: verify state,
// exchange the code, find-or-create the account, set the session cookie.
//
// HTTP: GET /auth/github/callback?code=xxx&state=yyy
func (h *AuthHandler) HandleGitHubCallback(w http.ResponseWriter, r *http.Request) {
	stateCookie, err := r.Cookie("oauth_state")
	if err != nil || stateCookie.Value == "" {
		h.logger.Warn("auth callback: missing state cookie")
		http.Error(w, "invalid OAuth state", http.StatusBadRequest)
		return
	}
	if r.URL.Query().Get("state") != stateCookie.Value {
		h.logger.Warn("auth callback: state mismatch")
		http.Error(w, "invalid OAuth state", http.StatusBadRequest)
		return
	}

	// The state cookie is single-use.
	http.SetCookie(w, &http.Cookie{
		Name:   "oauth_state",
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})

	if errParam := r.URL.Query().Get("error"); errParam != "" {
		h.logger.Info("auth callback: user denied authorization",
			slog.String("error", errParam),
		)
		http.Redirect(w, r, "/?auth=denied", http.StatusSeeOther)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		http.Error(w, "missing OAuth code", http.StatusBadRequest)
		return
	}

	ghUser, err := h.github.Exchange(r.Context(), code)
	if err != nil {
		h.logger.Error("auth callback: GitHub exchange failed", slog.String("error", err.Error()))
		http.Error(w, "authentication failed", http.StatusInternalServerError)
		return
	}

	result, err := h.authSvc.LoginOrRegisterGitHub(r.Context(), ghUser)
	if err != nil {
		h.logger.Error("auth callback: login failed",
			slog.Int64("githubID", ghUser.ID),
			slog.String("error", err.Error()),
		)
		writeError(w, err)
		return
	}

	// HttpOnly keeps the JWT away from page scripts; SameSite=Lax keeps it
	// off cross-site POSTs. Secure should be enabled behind HTTPS.
	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    result.Token,
		Path:     "/",
		MaxAge:   int(auth.SessionLifetime.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// HandleLogout clears the session cookie.
//
// HTTP: POST /auth/logout
//
// Sessions are stateless JWTs, so logout is purely client-side: the token
// stays valid until expiry but the browser no longer carries it.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// HandleMe returns the authenticated user's profile.
//
// HTTP: GET /api/me
// Auth: required
//
// A profile sync runs first, best effort: the throttle inside the service
// makes this cheap, and a failed sync never blocks the response.
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}

	if err := h.syncSvc.SyncProfile(r.Context(), userID); err != nil {
		h.logger.Warn("profile sync failed",
			slog.String("userID", userID),
			slog.String("error", err.Error()),
		)
	}

	user, err := h.authSvc.GetUserByID(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// HandleCreateToken mints a publish token for the CLI. The plaintext is
// returned exactly once and never stored.
//
// HTTP: POST /api/tokens
// Auth: required
func (h *AuthHandler) HandleCreateToken(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}

	token, err := h.pubToken.Mint(r.Context(), userID)
	if err != nil {
		h.logger.Error("token mint failed",
			slog.String("userID", userID),
			slog.String("error", err.Error()),
		)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"token": token})
}
