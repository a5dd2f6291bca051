// Package web serves the interview console page and binds its forms to the
// controllers.
package web

import (
	"html/template"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/terra-clan/interview-console/internal/availability"
	"github.com/terra-clan/interview-console/internal/demo"
	"github.com/terra-clan/interview-console/internal/directory"
	"github.com/terra-clan/interview-console/internal/health"
	"github.com/terra-clan/interview-console/internal/interview"
	"github.com/terra-clan/interview-console/internal/metrics"
	"github.com/terra-clan/interview-console/internal/notify"
)

const unexpectedError = "An unexpected error occurred. Please try again."

// Deps are the collaborators the web server binds to
type Deps struct {
	Directory    *directory.Controller
	Availability *availability.Controller
	Interviews   *interview.Controller
	Seeder       *demo.Seeder
	Notifier     *notify.Notifier
	Hub          *notify.Hub
	Health       *health.Registry
	BackendURL   string
	Metrics      bool
	Logger       *slog.Logger
}

// Server is the HTTP front of the console
type Server struct {
	Deps
	router *chi.Mux
	page   *template.Template
}

// NewServer creates a new web server
func NewServer(deps Deps) *Server {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	s := &Server{
		Deps: deps,
		page: template.Must(template.New("index.html").Funcs(pageFuncs).ParseFS(templatesFS, "templates/index.html")),
	}
	s.setupRouter()
	return s
}

// Router returns the configured router
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) setupRouter() {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggingMiddleware)
	if s.Metrics {
		r.Use(metrics.HTTPMetricsMiddleware)
	}
	r.Use(s.recoverMiddleware)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)
	if s.Metrics {
		r.Handle("/metrics", promhttp.Handler())
	}

	// long-lived; kept outside the request timeout
	r.Get("/ws/notifications", s.Hub.ServeHTTP)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(60 * time.Second))

		r.Get("/", s.handleIndex)

		r.Post("/users", s.handleCreateUser)
		r.Post("/users/reload", s.handleReloadUsers)

		r.Route("/availability", func(r chi.Router) {
			r.Post("/parse", s.handleParseAvailability)
			r.Post("/manual", s.handleManualAvailability)
			r.Post("/view", s.handleViewAvailability)
		})

		r.Route("/interviews", func(r chi.Router) {
			r.Post("/schedule", s.handleSchedule)
			r.Post("/schedule-by-email", s.handleScheduleByEmail)
			r.Post("/view", s.handleViewInterviews)
			r.Post("/{id}/status", s.handleUpdateStatus)
		})

		r.Post("/demo/init", s.handleDemoInit)
		r.Post("/notifications/{id}/dismiss", s.handleDismiss)
	})

	s.router = r
}

// loggingMiddleware logs HTTP requests using slog
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			s.Logger.Info("http request",
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

// recoverMiddleware turns a panic in any feature into a logged error and a
// generic toast, leaving the rest of the page usable
func (s *Server) recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}

			s.Logger.Error("unhandled panic",
				"panic", rec,
				"method", r.Method,
				"path", r.URL.Path,
				"request_id", middleware.GetReqID(r.Context()),
				"stack", string(debug.Stack()),
			)
			s.Notifier.Error(unexpectedError)

			if r.Method == http.MethodGet {
				http.Error(w, unexpectedError, http.StatusInternalServerError)
				return
			}
			http.Redirect(w, r, "/", http.StatusSeeOther)
		}()

		next.ServeHTTP(w, r)
	})
}
