package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"drivesort/internal/history"
	"drivesort/internal/logging"
	"drivesort/internal/organize"
	"drivesort/internal/schedule"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run organize passes on the configured cron schedule until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if !cfg.Schedule.Enabled {
				return fmt.Errorf("scheduled runs are disabled; set schedule.enabled = true in the config")
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			lock, err := acquireRunLock(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = lock.Unlock() }()

			remote, err := ctx.drive()
			if err != nil {
				return err
			}

			// Scheduled passes never prompt, so they always move for real.
			job := func(jobCtx context.Context) {
				engine, engineErr := organize.New(cfg, remote, logger)
				if engineErr != nil {
					logger.Error("scheduled run setup failed", logging.Error(engineErr))
					return
				}
				report := engine.Organize(jobCtx, organize.OptionsFromConfig(cfg.Organize, false))
				if report.Status != organize.RunSuccess {
					logger.Error("scheduled run failed", logging.String("error", report.Error))
					return
				}
				saveErr := ctx.withStore(func(store *history.Store) error {
					_, err := store.SaveOperation(jobCtx, report)
					return err
				})
				if saveErr != nil {
					logger.Error("save scheduled run history", logging.Error(saveErr))
				}
			}

			scheduler, err := schedule.New(cfg.Schedule.Cron, job, logger)
			if err != nil {
				return err
			}

			runCtx, stop := signalContext(cmd.Context())
			defer stop()

			fmt.Fprintf(cmd.OutOrStdout(), "Scheduler running (%s). Press Ctrl-C to stop.\n", cfg.Schedule.Cron)
			if err := scheduler.Run(runCtx); err != nil && runCtx.Err() == nil {
				return err
			}
			return nil
		},
	}
	return cmd
}
