package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/jonwraymond/probeops/monitor"
	"github.com/jonwraymond/probeops/observe"
	"github.com/jonwraymond/probeops/probe"
	"github.com/jonwraymond/probeops/registry"
)

type loginRequest struct {
	ProjectKey string `json:"project_key"`
	APIKey     string `json:"api_key"`
}

type loginResponse struct {
	Token   string `json:"token"`
	Expires int64  `json:"expires"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if s.config.Login == nil {
		writeError(w, http.StatusServiceUnavailable, "login is not configured")
		return
	}

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ProjectKey == "" || req.APIKey == "" {
		writeError(w, http.StatusBadRequest, "project_key and api_key are required")
		return
	}

	auth, err := s.config.Login(r.Context(), req.ProjectKey, req.APIKey)
	if err != nil {
		s.config.Logger.Warn(r.Context(), "login failed",
			observe.Field{Key: "project_key", Value: req.ProjectKey},
			observe.Field{Key: "error", Value: err.Error()},
		)
		writeError(w, http.StatusUnauthorized, "authentication failed")
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		Token:   auth.Bearer,
		Expires: auth.ExpiresAt.Unix(),
	})
}

// paramsFromHeaders reads the recognized probe parameter headers.
func paramsFromHeaders(r *http.Request) probe.Params {
	values := make(map[string]string, len(probe.ParamNames))
	for _, name := range probe.ParamNames {
		if v := r.Header.Get(name); v != "" {
			values[name] = v
		}
	}
	return probe.FromMap(values)
}

func (s *Server) handleMonitor(w http.ResponseWriter, r *http.Request) {
	params := paramsFromHeaders(r)

	var (
		report *monitor.CycleReport
		err    error
	)
	if bearer := r.Header.Get(probe.TokenHeader); bearer != "" {
		report, err = s.config.Runner.CycleWithToken(r.Context(), bearer, params)
	} else {
		report, err = s.config.Runner.RunCycle(r.Context(), params)
	}
	if err != nil {
		s.writeMonitorError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleMonitorSingle(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	params := paramsFromHeaders(r)

	var (
		detail *monitor.EndpointDetail
		err    error
	)
	if bearer := r.Header.Get(probe.TokenHeader); bearer != "" {
		detail, err = s.config.Runner.SingleWithToken(r.Context(), key, bearer, params)
	} else {
		detail, err = s.config.Runner.RunSingle(r.Context(), key, params)
	}
	if err != nil {
		s.writeMonitorError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (s *Server) writeMonitorError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, registry.ErrNotFound):
		writeError(w, http.StatusNotFound, "endpoint not found")
	case errors.Is(err, monitor.ErrTokenUnavailable):
		writeError(w, http.StatusBadGateway, "token acquisition failed")
	default:
		s.config.Logger.Error(r.Context(), "monitor request failed",
			observe.Field{Key: "error", Value: err.Error()},
		)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func (s *Server) handleListEndpoints(w http.ResponseWriter, r *http.Request) {
	endpoints, err := s.config.Registry.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, endpoints)
}

func (s *Server) handleCreateEndpoint(w http.ResponseWriter, r *http.Request) {
	var endpoint registry.Endpoint
	if err := json.NewDecoder(r.Body).Decode(&endpoint); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := s.config.Registry.Create(r.Context(), endpoint)
	if err != nil {
		s.writeRegistryError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateEndpoint(w http.ResponseWriter, r *http.Request) {
	var endpoint registry.Endpoint
	if err := json.NewDecoder(r.Body).Decode(&endpoint); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	endpoint.Key = r.PathValue("key")

	if err := s.config.Registry.Update(r.Context(), endpoint); err != nil {
		s.writeRegistryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, endpoint)
}

func (s *Server) handleDeleteEndpoint(w http.ResponseWriter, r *http.Request) {
	if err := s.config.Registry.Delete(r.Context(), r.PathValue("key")); err != nil {
		s.writeRegistryError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) writeRegistryError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, registry.ErrNotFound):
		writeError(w, http.StatusNotFound, "endpoint not found")
	case errors.Is(err, registry.ErrDuplicateKey):
		writeError(w, http.StatusConflict, "endpoint key already exists")
	case errors.Is(err, registry.ErrInvalidEndpoint):
		writeError(w, http.StatusBadRequest, "invalid endpoint definition")
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
