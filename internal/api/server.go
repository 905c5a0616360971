package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/Subhash2005/equi-bridge/internal/catalog"
	"github.com/Subhash2005/equi-bridge/internal/platform"
	"github.com/Subhash2005/equi-bridge/internal/storage"
)

// Server represents the HTTP API server
type Server struct {
	router   *chi.Mux
	repo     storage.Repository
	sessions SessionStore
	catalog  *catalog.Loader
	registry *platform.Registry
	geocoder *platform.ReverseGeocoder
	auth     *AuthMiddleware
}

// NewServer creates a new API server
func NewServer(
	repo storage.Repository,
	sessions SessionStore,
	loader *catalog.Loader,
	registry *platform.Registry,
	geocoder *platform.ReverseGeocoder,
) *Server {
	s := &Server{
		repo:     repo,
		sessions: sessions,
		catalog:  loader,
		registry: registry,
		geocoder: geocoder,
		auth:     NewAuthMiddleware(sessions),
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

	// Public routes
	r.Get("/", s.handleRoot)
	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", s.handleRegister)
		r.Post("/login", s.handleLogin)
		r.Post("/google", s.handleGoogleAuth)

		r.With(s.auth.Authenticate).Post("/logout", s.handleLogout)
	})

	// Authenticated routes
	r.Group(func(r chi.Router) {
		r.Use(s.auth.Authenticate)

		r.Route("/session", func(r chi.Router) {
			r.Get("/workflow", s.handleGetWorkflow)
			r.Put("/workflow", s.handlePutWorkflow)
		})

		r.Route("/student", func(r chi.Router) {
			r.Post("/register", s.handleStudentRegister)
			r.Get("/me/{email}", s.handleStudentMe)
			r.Get("/organizations", s.handleOrganizations)
			r.Get("/pipeline/{org}", s.handlePipeline)
			r.Post("/select-org", s.handleSelectOrg)
			r.Post("/progress", s.handleProgress)
			r.Get("/curriculum/{field}", s.handleCurriculum)
			r.Post("/quiz/submit", s.handleQuizSubmit)
			r.Get("/quiz/results/{email}", s.handleQuizResults)
			r.Get("/job-status/{email}", s.handleJobStatus)
			r.Post("/repay-month", s.handleRepayMonth)
		})

		r.Route("/daily", func(r chi.Router) {
			r.Post("/register", s.handleWorkerRegister)
			r.Get("/me/{email}", s.handleWorkerMe)
			r.Post("/post-problem", s.handlePostProblem)
			r.Get("/work", s.handleOpenWork)
			r.Get("/nearby", s.handleNearbyWorkers)
			r.Get("/map", s.handleWorkMap)
			r.Get("/geocode", s.handleGeocode)
			r.Post("/accept", s.handleAcceptWork)
			r.Post("/complete", s.handleCompleteWork)
			r.Get("/revenue/{email}", s.handleWorkerRevenue)
			r.Post("/withdraw", s.handleWithdraw)
			r.Post("/toggle-invest", s.handleToggleInvest)
		})

		r.Route("/disability", func(r chi.Router) {
			r.Post("/register", s.handleDisabilityRegister)
			r.Post("/post-job", s.handlePostDisabilityJob)
			r.Get("/jobs", s.handleDisabilityJobs)
			r.Post("/accept", s.handleAcceptDisabilityJob)
			r.Get("/my-active-jobs/{email}", s.handleMyActiveJobs)
			r.Post("/complete", s.handleCompleteDisabilityJob)
			r.Post("/approve", s.handleApproveDisabilityJob)
			r.Get("/revenue/{email}", s.handleDisabilityRevenue)
		})

		r.Route("/investment", func(r chi.Router) {
			r.Post("/invest", s.handleInvest)
			r.Get("/status/{email}", s.handleInvestmentStatus)
			r.Post("/recover", s.handleRecover)
		})

		r.Get("/ledger/{email}", s.handleLedger)

		r.Route("/assistant", func(r chi.Router) {
			r.Post("/interpret", s.handleInterpret)
			r.Get("/ws", s.handleAssistantWS)
		})

		r.Get("/platform/capabilities", s.handleCapabilities)
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
