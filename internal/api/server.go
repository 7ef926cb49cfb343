// Package api provides the Praxis HTTP server: auth, action items,
// practice logs, dashboard insights, and reminder management.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/praxis-labs/praxis/internal/app/notify"
	"github.com/praxis-labs/praxis/internal/health"
	"github.com/praxis-labs/praxis/internal/infra/extract"
	"github.com/praxis-labs/praxis/internal/infra/metrics"
	"github.com/praxis-labs/praxis/internal/infra/sqlite"
	"github.com/praxis-labs/praxis/internal/security"
)

// Server is the Praxis HTTP API server.
type Server struct {
	db             *sqlite.DB
	tokens         *security.TokenManager
	extractor      extract.Client
	notify         *notify.Service
	checker        *health.Checker
	version        string
	metricsEnabled bool
}

// NewServer creates an API server.
func NewServer(db *sqlite.DB, tokens *security.TokenManager, extractor extract.Client, n *notify.Service, version string) *Server {
	return &Server{db: db, tokens: tokens, extractor: extractor, notify: n, version: version}
}

// EnableMetrics enables the /metrics Prometheus endpoint.
func (s *Server) EnableMetrics() { s.metricsEnabled = true }

// SetHealthChecker attaches a background health checker; /health reports
// its cached statuses instead of pinging the database inline.
func (s *Server) SetHealthChecker(c *health.Checker) { s.checker = c }

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(2 * time.Minute))
	r.Use(corsMiddleware)
	r.Use(metricsMiddleware)

	r.Get("/health", s.handleHealth)

	r.Get("/api/version", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"version": s.version})
	})

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", s.handleRegister)
		r.Post("/login", s.handleLogin)
		r.With(s.requireAuth).Get("/me", s.handleMe)
		r.With(s.requireAuth).Delete("/me", s.handleDeleteAccount)
	})

	r.Route("/api/actions", func(r chi.Router) {
		r.Use(s.requireAuth)
		r.Post("/upload-notes", s.handleUploadNotes)
		r.Get("/", s.handleListActions)
		r.Post("/", s.handleCreateAction)
		r.Get("/stats/summary", s.handleActionStats)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetAction)
			r.Put("/", s.handleUpdateAction)
			r.Delete("/", s.handleDeleteAction)
			r.Put("/status", s.handleUpdateActionStatus)
			r.Post("/practice", s.handleLogPractice)
		})
	})

	r.Route("/api/practice", func(r chi.Router) {
		r.Use(s.requireAuth)
		r.Get("/logs", s.handleListPracticeLogs)
		r.Get("/logs/{id}", s.handleGetPracticeLog)
		r.Put("/logs/{id}", s.handleUpdatePracticeLog)
		r.Delete("/logs/{id}", s.handleDeletePracticeLog)
		r.Get("/stats/summary", s.handlePracticeStats)
		r.Get("/calendar/{year}/{month}", s.handleCalendar)
	})

	r.Route("/api/dashboard", func(r chi.Router) {
		r.Use(s.requireAuth)
		r.Get("/stats", s.handleDashboardStats)
		r.Get("/insights", s.handleDashboardInsights)
		r.Get("/goals", s.handleDashboardGoals)
		r.Put("/goals/{actionID}", s.handleSetGoal)
		r.Get("/milestones", s.handleMilestones)
	})

	r.Route("/api/reminders", func(r chi.Router) {
		r.Use(s.requireAuth)
		r.Get("/settings", s.handleGetReminderSettings)
		r.Put("/settings", s.handleUpdateReminderSettings)
		r.Get("/logs", s.handleListReminderLogs)
		r.Post("/trigger", s.handleTriggerReminder)
		r.Post("/logs/{id}/dismiss", s.handleDismissReminder)
	})

	if s.metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	return r
}

// handleHealth reports daemon health. With a checker attached it returns
// the cached check statuses; otherwise it pings the database directly.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.checker != nil {
		status := http.StatusOK
		state := "ok"
		if !s.checker.IsHealthy() {
			status = http.StatusServiceUnavailable
			state = "degraded"
		}
		writeJSON(w, status, map[string]interface{}{
			"status": state,
			"checks": s.checker.Statuses(),
		})
		return
	}
	if err := s.db.Ping(); err != nil {
		writeError(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ─── Auth middleware ────────────────────────────────────────────────────────

type ctxKey int

const userIDKey ctxKey = 0

// requireAuth validates the bearer token and puts the user id in context.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		userID, err := s.tokens.Verify(token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userIDKey, userID)))
	})
}

// currentUserID returns the authenticated user id from the request context.
func currentUserID(r *http.Request) int64 {
	id, _ := r.Context().Value(userIDKey).(int64)
	return id
}

// ─── Helpers ────────────────────────────────────────────────────────────────

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]interface{}{
			"message": msg,
			"type":    "error",
		},
	})
}

// pathID parses the {id} URL segment.
func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	return id, err == nil && id > 0
}

// queryInt parses an integer query parameter with a default.
func queryInt(r *http.Request, name string, def int) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// corsMiddleware adds CORS headers for local development.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// metricsMiddleware records request counts and latency per route.
func metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = "unmatched"
		}
		metrics.HTTPLatency.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
		metrics.HTTPRequests.WithLabelValues(route, strconv.Itoa(ww.Status())).Inc()
	})
}
