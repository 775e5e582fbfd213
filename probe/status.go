package probe

import "fmt"

// Status is the classified outcome of a probe.
//
// The coarse statuses (online, slow, offline) drive the healthy/failed
// counters in cycle summaries. Non-200 responses are stored with a
// fine-grained diagnostic label instead; in summaries they count the same
// as any other failure.
type Status string

const (
	// StatusOnline indicates HTTP 200 within the slow threshold.
	StatusOnline Status = "online"
	// StatusSlow indicates HTTP 200 slower than the slow threshold.
	StatusSlow Status = "slow"
	// StatusOffline indicates the request could not complete at all.
	StatusOffline Status = "offline"
)

// reasonByCode maps non-200 HTTP status codes to the stored diagnostic label.
var reasonByCode = map[int]Status{
	400: "Invalid Input",
	402: "Inactive Project",
	403: "Access Limited",
	404: "Resource Not Found",
	500: "Unknown Error",
}

// Healthy reports whether s counts toward the healthy total in a summary.
// Only successful responses qualify; slow is still healthy.
func (s Status) Healthy() bool {
	return s == StatusOnline || s == StatusSlow
}

// Classify derives the status for a completed request. Requests that never
// completed are classified by the Executor directly as StatusOffline and do
// not pass through here.
func Classify(statusCode int, responseTimeMS, slowThresholdMS int64) Status {
	if statusCode == 200 {
		if responseTimeMS <= slowThresholdMS {
			return StatusOnline
		}
		return StatusSlow
	}
	if reason, ok := reasonByCode[statusCode]; ok {
		return reason
	}
	return Status(fmt.Sprintf("HTTP %d", statusCode))
}
