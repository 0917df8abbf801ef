// Package api provides the HTTP API server and handlers for the BookDen application.
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/bookdenapp/bookden-server/internal/config"
	"github.com/bookdenapp/bookden-server/internal/http/response"
	"github.com/bookdenapp/bookden-server/internal/ratelimit"
	"github.com/bookdenapp/bookden-server/internal/service"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	authService    *service.AuthService
	bookService    *service.BookService
	reviewService  *service.ReviewService
	ratingService  *service.RatingService
	profileService *service.ProfileService
	loginLimiter   *ratelimit.KeyedRateLimiter
	router         *chi.Mux
	logger         *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(
	authService *service.AuthService,
	bookService *service.BookService,
	reviewService *service.ReviewService,
	ratingService *service.RatingService,
	profileService *service.ProfileService,
	cfg config.AuthConfig,
	logger *slog.Logger,
) *Server {
	s := &Server{
		authService:    authService,
		bookService:    bookService,
		reviewService:  reviewService,
		ratingService:  ratingService,
		profileService: profileService,
		loginLimiter:   newLoginLimiter(cfg.LoginRatePerMinute, cfg.LoginBurst),
		router:         chi.NewRouter(),
		logger:         logger,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// setupMiddleware configures middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	// Health check.
	s.router.Get("/health", s.handleHealthCheck)

	// API v1.
	s.router.Route("/api/v1", func(r chi.Router) {
		// Auth endpoints (public, rate limited where credentials are guessed).
		r.Route("/auth", func(r chi.Router) {
			r.With(s.rateLimitByIP).Post("/register", s.handleRegister)
			r.With(s.rateLimitByIP).Post("/login", s.handleLogin)
			r.Post("/refresh", s.handleRefresh)
			r.Post("/logout", s.handleLogout)
			r.With(s.requireAuth).Post("/logout-all", s.handleLogoutAll)
		})

		// Books: browsing is public, writes require auth.
		r.Route("/books", func(r chi.Router) {
			r.Get("/", s.handleListBooks)
			r.Get("/genres", s.handleListGenres)
			r.Get("/{id}", s.handleGetBook)
			r.Get("/{id}/reviews", s.handleListBookReviews)
			r.Get("/{id}/rating-distribution", s.handleRatingDistribution)

			r.Group(func(r chi.Router) {
				r.Use(s.requireAuth)
				r.Post("/", s.handleCreateBook)
				r.Put("/{id}", s.handleUpdateBook)
				r.Delete("/{id}", s.handleDeleteBook)
				r.Post("/{id}/reviews", s.handleCreateReview)
			})
		})

		// Reviews (author only).
		r.Route("/reviews", func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Put("/{id}", s.handleUpdateReview)
			r.Delete("/{id}", s.handleDeleteReview)
		})

		// Protected user endpoints.
		r.Route("/users", func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Get("/me", s.handleGetCurrentUser)
		})

		r.With(s.requireAuth).Get("/profile", s.handleGetProfile)
	})
}

// handleHealthCheck returns server health status.
func (s *Server) handleHealthCheck(w http.ResponseWriter, _ *http.Request) {
	response.Success(w, map[string]string{
		"status": "healthy",
	}, s.logger)
}
