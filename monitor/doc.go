// Package monitor runs probe cycles against the registered endpoints and
// assembles per-endpoint detail and cycle summaries from the health log.
//
// # Usage
//
//	runner := monitor.NewRunner(monitor.Config{
//		Registry:   reg,
//		Store:      store,
//		Tokens:     manager,
//		Executor:   probe.NewExecutor(),
//		BaseURL:    "https://api.sports.roanuz.com/v5/cricket/{proj_key}/",
//		ProjectKey: "RS_P_1234",
//	})
//
//	report, err := runner.RunCycle(ctx, probe.Params{})
//	if err != nil {
//		return err
//	}
//	fmt.Println(report.Summary.HealthyAPIs)
//
// A cycle probes every endpoint once, appends each outcome to the health
// log, and computes uptime over the trailing window of logged outcomes.
// Probe failures never fail the cycle; they are recorded as offline
// outcomes. Only an unavailable token aborts a cycle, before any probe
// runs.
package monitor
