package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"

	"github.com/ideaforge/idea-engine/internal/auth"
	"github.com/ideaforge/idea-engine/internal/cache"
	"github.com/ideaforge/idea-engine/internal/catalog"
	"github.com/ideaforge/idea-engine/internal/config"
	"github.com/ideaforge/idea-engine/internal/ledger"
	"github.com/ideaforge/idea-engine/internal/storage"
)

// Server represents the HTTP API server
type Server struct {
	config         config.ServerConfig
	router         *chi.Mux
	catalog        *catalog.Loader
	ledger         ledger.Service
	repo           storage.Repository
	cache          *cache.Cache
	authMiddleware *AuthMiddleware
	validate       *validator.Validate
}

// NewServer creates a new API server
func NewServer(
	cfg config.ServerConfig,
	cat *catalog.Loader,
	svc ledger.Service,
	repo storage.Repository,
	c *cache.Cache,
	verifier *auth.Verifier,
) *Server {
	s := &Server{
		config:         cfg,
		catalog:        cat,
		ledger:         svc,
		repo:           repo,
		cache:          c,
		authMiddleware: NewAuthMiddleware(verifier),
		validate:       validator.New(),
	}
	s.setupRouter()
	return s
}

// Router returns the configured router
func (s *Server) Router() http.Handler {
	return s.router
}

// setupRouter configures all routes and middleware
func (s *Server) setupRouter() {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check (outside versioned API - public)
	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Tokens are parsed everywhere; guest access is decided
		// per-route
		r.Use(s.authMiddleware.Optional)

		// Catalog (public)
		r.Route("/ideas", func(r chi.Router) {
			r.Get("/", s.handleListIdeas)
			r.Get("/options", s.handleIdeaOptions)
			r.Get("/{id}", s.handleGetIdea)
		})

		// Global stats (public)
		r.Get("/stats", s.handleStats)

		// Guest-tolerant: returns an empty list without a session
		r.Get("/projects", s.handleListProjects)

		// Live unlock notifications (token may arrive via query param)
		r.Get("/events", s.handleEventsWS)

		// Authenticated routes
		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware.Require)

			r.Get("/profile", s.handleGetProfile)
			r.Put("/profile", s.handleUpdateProfile)

			r.Post("/projects", s.handleMarkCompleted)
			r.Delete("/projects", s.handleUnmarkCompleted)

			r.Get("/badges", s.handleListBadges)
			r.Get("/achievements", s.handleListAchievements)
		})
	})

	s.router = r
}

// loggingMiddleware logs HTTP requests using slog
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			slog.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", middleware.GetReqID(r.Context()),
				"remote_addr", r.RemoteAddr,
			)
		}()

		next.ServeHTTP(ww, r)
	})
}
