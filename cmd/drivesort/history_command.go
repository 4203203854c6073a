package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"drivesort/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect recorded organize runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	historyCmd.AddCommand(newHistoryListCommand(ctx))
	historyCmd.AddCommand(newHistoryShowCommand(ctx))
	historyCmd.AddCommand(newHistoryCleanupCommand(ctx))

	return historyCmd
}

func newHistoryListCommand(ctx *commandContext) *cobra.Command {
	var (
		limit    int
		days     int
		jsonFlag bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded runs, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *history.Store) error {
				summaries, err := store.List(cmd.Context(), limit, days)
				if err != nil {
					return err
				}
				if jsonFlag {
					return writeJSON(cmd, summaries)
				}
				if len(summaries) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No recorded runs.")
					return nil
				}

				fmt.Fprintln(cmd.OutOrStdout(), renderRunListing(summaries))
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum runs to list (0 = all)")
	cmd.Flags().IntVar(&days, "days", 0, "Only list runs from the last N days (0 = all)")
	cmd.Flags().BoolVar(&jsonFlag, "json", false, "Emit summaries as JSON")

	return cmd
}

func newHistoryShowCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <operation-id>",
		Short: "Print the full report of one recorded run as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *history.Store) error {
				report, err := store.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return writeJSON(cmd, report)
			})
		},
	}
	return cmd
}

func newHistoryCleanupCommand(ctx *commandContext) *cobra.Command {
	var (
		days int
		all  bool
	)

	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Delete recorded runs past the retention window",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			retention := cfg.History.RetentionDays
			if cmd.Flags().Changed("days") {
				if days <= 0 {
					return fmt.Errorf("--days must be positive; use --all to delete every recorded run")
				}
				retention = days
			}
			if all {
				retention = 0
			}

			return ctx.withStore(func(store *history.Store) error {
				removed, err := store.Cleanup(cmd.Context(), retention)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d recorded run(s).\n", removed)
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&days, "days", 0, "Override the configured retention window")
	cmd.Flags().BoolVar(&all, "all", false, "Delete every recorded run")

	return cmd
}
