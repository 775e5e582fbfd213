package monitor

import (
	"time"

	"github.com/jonwraymond/probeops/healthlog"
	"github.com/jonwraymond/probeops/probe"
)

// LogSnapshot is the trimmed view of one health log entry returned inside
// an endpoint detail.
type LogSnapshot struct {
	LogTime        time.Time `json:"log_time"`
	Status         string    `json:"status"`
	StatusCode     int       `json:"status_code"`
	ResponseTimeMS int64     `json:"response_time_ms"`
	ErrorMessage   string    `json:"error_message,omitempty"`
}

func snapshot(e healthlog.Entry) LogSnapshot {
	return LogSnapshot{
		LogTime:        e.LogTime,
		Status:         e.Status,
		StatusCode:     e.StatusCode,
		ResponseTimeMS: e.ResponseTimeMS,
		ErrorMessage:   e.ErrorMessage,
	}
}

// EndpointDetail is the per-endpoint result of a probe.
type EndpointDetail struct {
	Key            string        `json:"key"`
	Name           string        `json:"name"`
	URL            string        `json:"url"`
	Status         string        `json:"status"`
	ResponseTimeMS int64         `json:"response_time_ms"`
	Uptime         string        `json:"uptime"`
	LastCheck      time.Time     `json:"last_check"`
	StatusCode     int           `json:"status_code"`
	Last5Logs      []LogSnapshot `json:"last_5_logs"`
	Sport          string        `json:"sport,omitempty"`
	Category       string        `json:"category,omitempty"`
	ResponseBody   string        `json:"json_response,omitempty"`
}

// Summary aggregates one cycle.
//
// AvgResponseTimeMS is the integer mean over all probed endpoints, with
// unreachable probes contributing zero rather than their -1 marker.
type Summary struct {
	TotalAPIs         int   `json:"total_apis"`
	HealthyAPIs       int   `json:"healthy_apis"`
	FailedAPIs        int   `json:"failed_apis"`
	AvgResponseTimeMS int64 `json:"avg_response_time_ms"`
}

// CycleReport is the full output of one probe cycle: the summary plus
// per-endpoint details in registry order.
type CycleReport struct {
	Summary Summary          `json:"summary"`
	Details []EndpointDetail `json:"details"`
}

func summarize(details []EndpointDetail) Summary {
	s := Summary{TotalAPIs: len(details)}

	var sum int64
	for _, d := range details {
		if probe.Status(d.Status).Healthy() {
			s.HealthyAPIs++
		} else {
			s.FailedAPIs++
		}
		if d.ResponseTimeMS > 0 {
			sum += d.ResponseTimeMS
		}
	}

	if s.TotalAPIs > 0 {
		s.AvgResponseTimeMS = sum / int64(s.TotalAPIs)
	}
	return s
}
