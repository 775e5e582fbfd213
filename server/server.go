// Package server exposes the HTTP surface: token login, on-demand probe
// cycles, endpoint administration and operational endpoints.
package server

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/jonwraymond/probeops/monitor"
	"github.com/jonwraymond/probeops/observe"
	"github.com/jonwraymond/probeops/registry"
	"github.com/jonwraymond/probeops/token"
)

// RoleHeader carries the caller role for admin routes.
const RoleHeader = "role"

// LoginFunc exchanges a project key and API key for a token.
type LoginFunc func(ctx context.Context, projectKey, apiKey string) (*token.AuthContext, error)

// Config configures the HTTP server.
type Config struct {
	// Runner drives on-demand probe cycles. Required.
	Runner *monitor.Runner

	// Registry backs the admin CRUD routes. Required.
	Registry registry.Registry

	// Login backs POST /api/login. If nil, the route returns 503.
	Login LoginFunc

	// AdminRole is the role header value granting admin access.
	// Default: "admin"
	AdminRole string

	// Metrics is mounted at GET /metrics when set.
	Metrics http.Handler

	// Health serves GET /healthz when set; otherwise a static ok
	// response is served.
	Health http.Handler

	// Logger receives request logs. If nil, logging is disabled.
	Logger observe.Logger
}

// Server is the probeops HTTP server.
type Server struct {
	config Config
	mux    *http.ServeMux
}

// New creates the server and registers all routes.
func New(config Config) *Server {
	if config.AdminRole == "" {
		config.AdminRole = "admin"
	}
	if config.Logger == nil {
		config.Logger = observe.NopLogger()
	}

	s := &Server{config: config, mux: http.NewServeMux()}

	s.mux.HandleFunc("POST /api/login", s.handleLogin)
	s.mux.HandleFunc("GET /monitor", s.handleMonitor)
	s.mux.HandleFunc("GET /monitor/test/{key}", s.handleMonitorSingle)

	s.mux.HandleFunc("GET /admin/api-endpoints", s.requireAdmin(s.handleListEndpoints))
	s.mux.HandleFunc("POST /admin/api-endpoints", s.requireAdmin(s.handleCreateEndpoint))
	s.mux.HandleFunc("PUT /admin/api-endpoints/{key}", s.requireAdmin(s.handleUpdateEndpoint))
	s.mux.HandleFunc("DELETE /admin/api-endpoints/{key}", s.requireAdmin(s.handleDeleteEndpoint))

	if config.Health != nil {
		s.mux.Handle("GET /healthz", config.Health)
	} else {
		s.mux.HandleFunc("GET /healthz", s.handleHealthz)
	}
	if config.Metrics != nil {
		s.mux.Handle("GET /metrics", config.Metrics)
	}

	return s
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) requireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(RoleHeader) != s.config.AdminRole {
			writeError(w, http.StatusForbidden, "forbidden")
			return
		}
		next(w, r)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
