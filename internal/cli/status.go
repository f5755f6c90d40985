package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/dealhawk/dealhawk/internal/config"
	"github.com/dealhawk/dealhawk/internal/monitor"
)

// StatusOptions holds flags for the status command.
type StatusOptions struct {
	*RootOptions
	JSON bool
}

// NewStatusCommand creates the status command.
func NewStatusCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &StatusOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "status",
		Short:         "Show the status of a running monitor",
		Long:          "Query the status endpoint of a running dealhawk instance and print a summary.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showStatus(cmd, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.JSON, "json", false, "print the raw status JSON")

	return cmd
}

func showStatus(cmd *cobra.Command, opts *StatusOptions) error {
	setupLogging(opts.Verbose)

	cfg, err := config.LoadAndValidate(opts.ConfigPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
	defer cancel()

	url := fmt.Sprintf("http://localhost:%d/status", cfg.Health.Port)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return WrapExitError(ExitCommandError, "bad status URL", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return WrapExitError(ExitFailure, "monitor not reachable (is it running?)", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return NewExitError(ExitFailure, fmt.Sprintf("status endpoint returned %d", resp.StatusCode))
	}

	var status monitor.Status
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return WrapExitError(ExitFailure, "malformed status response", err)
	}

	out := cmd.OutOrStdout()

	if opts.JSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(status)
	}

	fmt.Fprintln(out, "Monitor Status:")
	fmt.Fprintf(out, "  Running:     %v\n", status.Running)
	fmt.Fprintf(out, "  Interval:    %s\n", status.Interval)
	fmt.Fprintf(out, "  Auto-commit: %v\n", status.AutoCommit)
	fmt.Fprintf(out, "  Cycles run:  %d\n", status.CyclesRun)
	if r := status.LastReport; r != nil {
		fmt.Fprintf(out, "  Last cycle:  %s (%d listings, %d new, %d changed)\n",
			r.State, r.ListingsSeen, r.NewListings, r.QuantityChanges)
		if r.Err != "" {
			fmt.Fprintf(out, "  Last error:  %s\n", r.Err)
		}
	}
	if s := status.Store; s != nil {
		fmt.Fprintf(out, "  Deals:       %d tracked, %d committed, %d first seen this week\n",
			s.TotalDeals, s.CommittedDeals, s.SeenLastWeek)
	}

	return nil
}
