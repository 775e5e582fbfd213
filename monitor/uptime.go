package monitor

import (
	"fmt"

	"github.com/jonwraymond/probeops/healthlog"
	"github.com/jonwraymond/probeops/probe"
)

const (
	// UptimeWindow is the number of trailing log entries uptime is
	// computed over.
	UptimeWindow = 20

	// RecentWindow is the number of trailing log entries returned in an
	// endpoint detail.
	RecentWindow = 5
)

// Uptime computes the uptime percentage over the given log entries: the
// share of entries with status online, formatted with two decimals. Slow
// responses do not count toward uptime. With no history it returns "0.00%".
func Uptime(entries []healthlog.Entry) string {
	if len(entries) == 0 {
		return "0.00%"
	}

	online := 0
	for _, e := range entries {
		if e.Status == string(probe.StatusOnline) {
			online++
		}
	}

	pct := float64(online) / float64(len(entries)) * 100
	return fmt.Sprintf("%.2f%%", pct)
}
