package main

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonwraymond/probeops/probe"
)

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [endpoint-key]",
		Short: "Run one probe cycle (or a single probe) and print the result as JSON",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			key := ""
			if len(args) == 1 {
				key = args[0]
			}
			return runCheck(cmd.Context(), configPath, key)
		},
	}
	return cmd
}

func runCheck(ctx context.Context, configPath, key string) error {
	a, err := buildApp(ctx, configPath)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = a.shutdown(shutdownCtx)
	}()

	var result any
	if key != "" {
		result, err = a.runner.RunSingle(ctx, key, probe.Params{})
	} else {
		result, err = a.runner.RunCycle(ctx, probe.Params{})
	}
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
