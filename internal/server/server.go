// Package server is the composition root: it opens the database, wires
// services to handlers, declares every route, and runs the HTTP server
// with graceful shutdown.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/clawhub/clawhub/internal/auth"
	"github.com/clawhub/clawhub/internal/github"
	"github.com/clawhub/clawhub/internal/handler"
	"github.com/clawhub/clawhub/internal/middleware"
	sqliteRepo "github.com/clawhub/clawhub/internal/repository/sqlite"
	"github.com/clawhub/clawhub/internal/service"
)

// Config holds server configuration, populated from the environment by
// cmd/server.
type Config struct {
	Port   int
	DBPath string

	// JWTSecret signs session tokens. The server refuses to start without
	// one; an unauthenticated registry can't accept publishes.
	JWTSecret string

	// GitHub OAuth App credentials for the browser login flow.
	GitHubClientID     string
	GitHubClientSecret string
	GitHubCallbackURL  string

	// GitHubAPIToken authenticates the registry's own profile lookups
	// (age gate, profile sync). Optional; anonymous requests share
	// GitHub's small unauthenticated rate budget.
	GitHubAPIToken string

	// GitHubAPIBaseURL overrides the GitHub API endpoint, for tests and
	// GitHub Enterprise installs. Empty means api.github.com.
	GitHubAPIBaseURL string
}

// Server owns the router and the database connection. The connection is
// closed during graceful shutdown.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New opens the database and assembles the full dependency chain:
// repositories (the sqlite DB implements all of them), then services,
// then handlers, then routes.
func New(cfg Config, logger *slog.Logger) (*Server, error) {
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("server: JWT secret is required")
	}

	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// setupRoutes wires middleware, services, handlers, and routes.
//
// Route map:
//
//	GET    /healthz                     liveness probe
//	GET    /auth/github/login           start OAuth flow
//	GET    /auth/github/callback        finish OAuth flow, set session
//	POST   /auth/logout                 clear session cookie
//	GET    /api/skills                  list skills (public)
//	GET    /api/skills/{slug}           get one skill (public)
//	GET    /api/me                      current user (auth)
//	POST   /api/tokens                  mint a publish token (auth)
//	POST   /api/skills                  publish a SKILL.md (auth + age gate)
//	DELETE /api/skills/{slug}           delete own skill (auth)
func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	sessions, err := auth.NewTokenService(s.config.JWTSecret)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	pubTokens := auth.NewPublishTokenService(s.db)
	creds := auth.Credentials{Sessions: sessions, Tokens: pubTokens}

	ghClient := github.NewClient(github.Config{
		BaseURL: s.config.GitHubAPIBaseURL,
		Token:   s.config.GitHubAPIToken,
	})
	provider := auth.NewGitHubProvider(
		s.config.GitHubClientID,
		s.config.GitHubClientSecret,
		s.config.GitHubCallbackURL,
	)

	authSvc := service.NewAuthService(s.db, s.db, sessions, s.logger)
	ageGate := service.NewAgeGateService(s.db, s.db, ghClient, s.logger)
	syncSvc := service.NewProfileSyncService(s.db, s.db, ghClient, s.logger)
	skillSvc := service.NewSkillService(s.db, s.logger)

	authHandler := handler.NewAuthHandler(provider, authSvc, syncSvc, pubTokens, s.logger)
	skillHandler := handler.NewSkillHandler(skillSvc, ageGate, s.logger)

	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	s.router.Route("/auth", func(r chi.Router) {
		r.Get("/github/login", authHandler.HandleGitHubLogin)
		r.Get("/github/callback", authHandler.HandleGitHubCallback)
		r.Post("/logout", authHandler.HandleLogout)
	})

	s.router.Route("/api", func(r chi.Router) {
		// Browsing is public.
		r.Get("/skills", skillHandler.HandleList)
		r.Get("/skills/{slug}", skillHandler.HandleGet)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(creds))
			r.Get("/me", authHandler.HandleMe)
			r.Post("/tokens", authHandler.HandleCreateToken)
			r.Post("/skills", skillHandler.HandlePublish)
			r.Delete("/skills/{slug}", skillHandler.HandleDelete)
		})
	})

	return nil
}

// Start runs the server until SIGINT/SIGTERM, then drains in-flight
// requests and closes the database.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("database", s.config.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
