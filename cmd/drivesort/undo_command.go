package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"drivesort/internal/history"
	"drivesort/internal/undo"
)

func newUndoCommand(ctx *commandContext) *cobra.Command {
	var (
		yesFlag  bool
		jsonFlag bool
	)

	cmd := &cobra.Command{
		Use:   "undo <operation-id>",
		Short: "Move files from a recorded run back to their original folders",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			operationID := args[0]

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			var plan *history.UndoPlan
			err = ctx.withStore(func(store *history.Store) error {
				eligible, reason, checkErr := store.CanUndo(cmd.Context(), operationID)
				if checkErr != nil {
					return checkErr
				}
				if !eligible {
					return fmt.Errorf("cannot undo %s: %s", operationID, reason)
				}
				plan, checkErr = store.CreateUndoPlan(cmd.Context(), operationID)
				return checkErr
			})
			if err != nil {
				return err
			}

			if cfg.Organize.Safety.RequireConfirmation && !yesFlag {
				prompt := fmt.Sprintf("Move %d file(s) back to their original locations?", len(plan.Steps))
				if !confirm(cmd, prompt) {
					fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
					return nil
				}
			}

			remote, err := ctx.drive()
			if err != nil {
				return err
			}

			runCtx, stop := signalContext(cmd.Context())
			defer stop()

			runner := undo.NewRunner(remote, logger)
			result, err := runner.Run(runCtx, plan)
			if err != nil {
				return err
			}

			if jsonFlag {
				return writeJSON(cmd, result)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Undo of %s: %d restored, %d failed\n",
				operationID, result.Restored, result.Failed)
			for _, step := range result.Steps {
				if step.Status == undo.StepFailed {
					fmt.Fprintf(cmd.OutOrStdout(), "  failed: %s (%s)\n", step.Step.CurrentName, step.Error)
				}
			}
			if result.Failed > 0 {
				return fmt.Errorf("%d item(s) could not be restored", result.Failed)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yesFlag, "yes", "y", false, "Skip the confirmation prompt")
	cmd.Flags().BoolVar(&jsonFlag, "json", false, "Emit the undo result as JSON")

	return cmd
}
