package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jonwraymond/probeops/healthlog"
	"github.com/jonwraymond/probeops/monitor"
	"github.com/jonwraymond/probeops/probe"
	"github.com/jonwraymond/probeops/registry"
	"github.com/jonwraymond/probeops/token"
)

// stubProber records the URLs it probed and answers online.
type stubProber struct {
	urls []string
}

func (p *stubProber) Do(_ context.Context, _, url, _ string) probe.Outcome {
	p.urls = append(p.urls, url)
	return probe.Outcome{Status: probe.StatusOnline, StatusCode: 200, ResponseTimeMS: 42}
}

func newTestServer(t *testing.T, login LoginFunc) (*Server, registry.Registry, *stubProber) {
	t.Helper()

	reg := registry.NewMemoryRegistry()
	_, err := reg.Create(context.Background(), registry.Endpoint{
		Key:         "api_recent",
		Name:        "Recent Matches",
		Method:      "GET",
		URLTemplate: "recent-matches/",
	})
	if err != nil {
		t.Fatalf("seeding registry: %v", err)
	}

	prober := &stubProber{}
	runner := monitor.NewRunner(monitor.Config{
		Registry:   reg,
		Store:      healthlog.NewMemoryStore(),
		Tokens:     token.Static("static-bearer"),
		Executor:   prober,
		BaseURL:    "https://api.example.com/v5/{proj_key}/",
		ProjectKey: "RS_P_01",
	})

	return New(Config{
		Runner:   runner,
		Registry: reg,
		Login:    login,
	}), reg, prober
}

func doRequest(s *Server, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestLogin(t *testing.T) {
	login := func(_ context.Context, projectKey, apiKey string) (*token.AuthContext, error) {
		if apiKey != "RS5_good" {
			return nil, errors.New("bad key")
		}
		return &token.AuthContext{
			ProjectKey: projectKey,
			Bearer:     "fresh-token",
			ExpiresAt:  time.Unix(1893456000, 0),
		}, nil
	}
	s, _, _ := newTestServer(t, login)

	rec := doRequest(s, http.MethodPost, "/api/login",
		map[string]string{"project_key": "RS_P_01", "api_key": "RS5_good"}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d, want 200", rec.Code)
	}
	var resp loginResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Token != "fresh-token" || resp.Expires != 1893456000 {
		t.Errorf("response = %+v, want fresh-token/1893456000", resp)
	}

	rec = doRequest(s, http.MethodPost, "/api/login",
		map[string]string{"project_key": "RS_P_01", "api_key": "RS5_bad"}, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("bad key status = %d, want 401", rec.Code)
	}

	rec = doRequest(s, http.MethodPost, "/api/login",
		map[string]string{"project_key": "RS_P_01"}, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing api_key status = %d, want 400", rec.Code)
	}
}

func TestMonitorCycle(t *testing.T) {
	s, _, _ := newTestServer(t, nil)

	rec := doRequest(s, http.MethodGet, "/monitor", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("monitor status = %d, body %s", rec.Code, rec.Body.String())
	}

	var report monitor.CycleReport
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("decoding report: %v", err)
	}
	if report.Summary.TotalAPIs != 1 || report.Summary.HealthyAPIs != 1 {
		t.Errorf("summary = %+v, want 1 total / 1 healthy", report.Summary)
	}
}

func TestMonitorParamsFromHeaders(t *testing.T) {
	s, reg, prober := newTestServer(t, nil)
	_, err := reg.Create(context.Background(), registry.Endpoint{
		Key:         "api_match",
		Name:        "Match Detail",
		Method:      "GET",
		URLTemplate: "match/{{match_key}}/",
	})
	if err != nil {
		t.Fatalf("seeding registry: %v", err)
	}

	rec := doRequest(s, http.MethodGet, "/monitor", nil, map[string]string{
		"matchKey": "aus-vs-ind-2025",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("monitor status = %d", rec.Code)
	}

	found := false
	for _, u := range prober.urls {
		if strings.Contains(u, "match/aus-vs-ind-2025/") {
			found = true
		}
	}
	if !found {
		t.Errorf("probed URLs %v, want match key substituted from header", prober.urls)
	}
}

func TestMonitorSingle(t *testing.T) {
	s, _, _ := newTestServer(t, nil)

	rec := doRequest(s, http.MethodGet, "/monitor/test/api_recent", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("single status = %d, body %s", rec.Code, rec.Body.String())
	}
	var detail monitor.EndpointDetail
	if err := json.Unmarshal(rec.Body.Bytes(), &detail); err != nil {
		t.Fatalf("decoding detail: %v", err)
	}
	if detail.Key != "api_recent" || detail.Status != "online" {
		t.Errorf("detail = %+v, want api_recent online", detail)
	}

	rec = doRequest(s, http.MethodGet, "/monitor/test/api_missing", nil, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown key status = %d, want 404", rec.Code)
	}
}

func TestAdminRequiresRole(t *testing.T) {
	s, _, _ := newTestServer(t, nil)

	rec := doRequest(s, http.MethodGet, "/admin/api-endpoints", nil, nil)
	if rec.Code != http.StatusForbidden {
		t.Errorf("no role status = %d, want 403", rec.Code)
	}

	rec = doRequest(s, http.MethodGet, "/admin/api-endpoints", nil,
		map[string]string{"role": "viewer"})
	if rec.Code != http.StatusForbidden {
		t.Errorf("wrong role status = %d, want 403", rec.Code)
	}

	rec = doRequest(s, http.MethodGet, "/admin/api-endpoints", nil,
		map[string]string{"role": "admin"})
	if rec.Code != http.StatusOK {
		t.Errorf("admin role status = %d, want 200", rec.Code)
	}
}

func TestAdminCRUD(t *testing.T) {
	s, _, _ := newTestServer(t, nil)
	admin := map[string]string{"role": "admin"}

	rec := doRequest(s, http.MethodPost, "/admin/api-endpoints", registry.Endpoint{
		Name:        "Schedule",
		Method:      "GET",
		URLTemplate: "schedule/",
	}, admin)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", rec.Code, rec.Body.String())
	}
	var created registry.Endpoint
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decoding created endpoint: %v", err)
	}
	if !strings.HasPrefix(created.Key, "api_") {
		t.Errorf("generated key = %q, want api_ prefix", created.Key)
	}

	rec = doRequest(s, http.MethodPut, "/admin/api-endpoints/"+created.Key, registry.Endpoint{
		Name:        "Schedule v2",
		Method:      "GET",
		URLTemplate: "schedule/",
	}, admin)
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d, body %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(s, http.MethodDelete, "/admin/api-endpoints/"+created.Key, nil, admin)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", rec.Code)
	}

	rec = doRequest(s, http.MethodDelete, "/admin/api-endpoints/"+created.Key, nil, admin)
	if rec.Code != http.StatusNotFound {
		t.Errorf("delete missing status = %d, want 404", rec.Code)
	}
}

func TestAdminCreateInvalid(t *testing.T) {
	s, _, _ := newTestServer(t, nil)

	rec := doRequest(s, http.MethodPost, "/admin/api-endpoints", registry.Endpoint{
		Name: "no method or url",
	}, map[string]string{"role": "admin"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("invalid endpoint status = %d, want 400", rec.Code)
	}
}

func TestHealthz(t *testing.T) {
	s, _, _ := newTestServer(t, nil)

	rec := doRequest(s, http.MethodGet, "/healthz", nil, nil)
	if rec.Code != http.StatusOK {
		t.Errorf("healthz status = %d, want 200", rec.Code)
	}
}

func TestLoginNotConfigured(t *testing.T) {
	s, _, _ := newTestServer(t, nil)

	rec := doRequest(s, http.MethodPost, "/api/login",
		map[string]string{"project_key": "RS_P_01", "api_key": "RS5_x"}, nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("login status = %d, want 503", rec.Code)
	}
}
