// Package probe issues single authenticated HTTP probes against monitored
// endpoints and classifies their outcomes.
//
// A probe is one request/response attempt: the endpoint's URL template is
// expanded with the per-cycle parameters, the request is sent with the
// project bearer token and a fixed timeout, and the outcome is classified
// into a coarse status (online, slow, offline) or a diagnostic label derived
// from the HTTP status code.
//
// # Outcomes, not errors
//
// Executor.Do never returns an error. Target-side failures (timeouts,
// refused connections, non-200 responses) are part of the Outcome value:
//
//	exec := probe.NewExecutor()
//	out := exec.Do(ctx, "GET", url, bearer)
//	if !out.Status.Healthy() {
//	    log.Printf("endpoint down: %s (%s)", out.Status, out.ErrorMessage)
//	}
//
// # URL templates
//
// Endpoint URLs may embed placeholders from a fixed recognized set, for
// example:
//
//	/matches/{{match_key}}/scorecard
//
// Expand substitutes each recognized placeholder with its per-cycle value
// (empty string when unset) and leaves any other brace syntax untouched.
package probe
