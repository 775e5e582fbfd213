package health

import (
	"encoding/json"
	"net/http"
)

// Handler serves the readiness report as JSON. Healthy and degraded map to
// 200 (the process can serve traffic), unhealthy to 503.
func Handler(c *Checker) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		report := c.Run(r.Context())

		status := http.StatusOK
		if report.Status == StatusUnhealthy {
			status = http.StatusServiceUnavailable
		}

		body := struct {
			Status string            `json:"status"`
			Checks map[string]Result `json:"checks,omitempty"`
		}{
			Status: report.Status.String(),
			Checks: report.Checks,
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	})
}
