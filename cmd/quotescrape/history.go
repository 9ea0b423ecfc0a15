package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/pevans/quotescrape/config"
	"github.com/pevans/quotescrape/history"
	"github.com/spf13/cobra"
)

var errHistoryDisabled = errors.New("run history is disabled: set --history-db or " + config.EnvHistoryDSN)

func newHistoryCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect recorded scrape runs",
	}

	cmd.AddCommand(newHistoryListCmd(opts))
	cmd.AddCommand(newHistoryShowCmd(opts))

	return cmd
}

func newHistoryListCmd(opts *options) *cobra.Command {
	var (
		status     string
		limit      int
		offset     int
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List recorded runs, newest first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := opts.openHistory(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			filter := history.RunFilter{Limit: limit, Offset: offset}
			if status != "" {
				filter.Status = &status
			}

			runs, err := store.ListRuns(filter)
			if err != nil {
				return err
			}

			if jsonOutput {
				enc := json.NewEncoder(opts.stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(runs)
			}
			return history.RenderRuns(opts.stdout, runs)
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "only show runs with this status (running, succeeded, failed)")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of runs to show")
	cmd.Flags().IntVar(&offset, "offset", 0, "number of newest runs to skip")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")

	return cmd
}

func newHistoryShowCmd(opts *options) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show a single recorded run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid run ID %q: %w", args[0], err)
			}

			store, err := opts.openHistory(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			run, err := store.GetRun(runID)
			if err != nil {
				return err
			}

			if jsonOutput {
				enc := json.NewEncoder(opts.stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(run)
			}
			return history.RenderRun(opts.stdout, run)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")

	return cmd
}

// openHistory resolves the configuration and opens the run ledger.
func (o *options) openHistory(cmd *cobra.Command) (*history.RunStore, error) {
	cfg, err := o.loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return openRunStore(cfg)
}

func openRunStore(cfg *config.Config) (*history.RunStore, error) {
	if cfg.HistoryDSN == "" {
		return nil, errHistoryDisabled
	}

	store, err := history.NewRunStore(cfg.HistoryDSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open run history: %w", err)
	}
	return store, nil
}
