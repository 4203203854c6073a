package main

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"drivesort/internal/history"
	"drivesort/internal/organize"
)

func newOrganizeCommand(ctx *commandContext) *cobra.Command {
	var (
		dryRunFlag bool
		liveFlag   bool
		sourceFlag string
		maxFiles   int
		yesFlag    bool
		jsonFlag   bool
	)

	cmd := &cobra.Command{
		Use:   "organize",
		Short: "Run the organize pipeline against the configured source folder",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			if dryRunFlag && liveFlag {
				return fmt.Errorf("--dry-run and --live are mutually exclusive")
			}
			dryRun := cfg.Organize.Safety.DryRunDefault
			if dryRunFlag {
				dryRun = true
			}
			if liveFlag {
				dryRun = false
			}

			opts := organize.OptionsFromConfig(cfg.Organize, dryRun)
			if strings.TrimSpace(sourceFlag) != "" {
				opts.SourceFolder = strings.Trim(sourceFlag, "/")
			}
			if cmd.Flags().Changed("max-files") {
				opts.MaxFiles = maxFiles
			}

			if !dryRun {
				lock, lockErr := acquireRunLock(cfg)
				if lockErr != nil {
					return lockErr
				}
				defer func() { _ = lock.Unlock() }()

				if cfg.Organize.Safety.RequireConfirmation && !yesFlag {
					prompt := fmt.Sprintf("Move files under %q into %q for real?",
						displayFolder(opts.SourceFolder), cfg.Organize.DestinationRoot)
					if !confirm(cmd, prompt) {
						fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
						return nil
					}
				}
			}

			remote, err := ctx.drive()
			if err != nil {
				return err
			}
			engine, err := organize.New(cfg, remote, logger)
			if err != nil {
				return err
			}

			if !jsonFlag {
				bar := progressbar.NewOptions(-1,
					progressbar.OptionSetWriter(cmd.ErrOrStderr()),
					progressbar.OptionSetDescription("moving"),
					progressbar.OptionShowCount(),
					progressbar.OptionClearOnFinish(),
				)
				engine.SetProgress(func(done, total int) {
					bar.ChangeMax(total)
					_ = bar.Set(done)
				})
			}

			runCtx, stop := signalContext(cmd.Context())
			defer stop()

			report := engine.Organize(runCtx, opts)

			operationID := ""
			if !report.DryRun && report.Status == organize.RunSuccess {
				err = ctx.withStore(func(store *history.Store) error {
					var saveErr error
					operationID, saveErr = store.SaveOperation(runCtx, report)
					return saveErr
				})
				if err != nil {
					return fmt.Errorf("save run history: %w", err)
				}
			}

			if jsonFlag {
				return writeJSON(cmd, report)
			}
			printReport(cmd, report, operationID)
			if report.Status == organize.RunFailed {
				return fmt.Errorf("organize run failed: %s", report.Error)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRunFlag, "dry-run", false, "Preview moves without touching the drive")
	cmd.Flags().BoolVar(&liveFlag, "live", false, "Perform moves even when the config defaults to dry runs")
	cmd.Flags().StringVar(&sourceFlag, "source", "", "Override the configured source folder")
	cmd.Flags().IntVar(&maxFiles, "max-files", 0, "Cap the number of files processed this run (0 = no cap)")
	cmd.Flags().BoolVarP(&yesFlag, "yes", "y", false, "Skip the confirmation prompt")
	cmd.Flags().BoolVar(&jsonFlag, "json", false, "Emit the full run report as JSON")

	return cmd
}

func displayFolder(folder string) string {
	if folder == "" {
		return "drive root"
	}
	return folder
}

func printReport(cmd *cobra.Command, report *organize.RunReport, operationID string) {
	out := cmd.OutOrStdout()

	mode := "live"
	if report.DryRun {
		mode = "dry run"
	}
	fmt.Fprintf(out, "Run %s (%s) in %s\n", report.Status, mode,
		humanizeDuration(report.DurationSeconds))

	fmt.Fprintln(out, renderRunMetrics(report))

	if len(report.Stats.SkipReasons) > 0 {
		fmt.Fprintln(out, "Skip reasons:")
		for _, reason := range sortedKeys(report.Stats.SkipReasons) {
			fmt.Fprintf(out, "  %s: %d\n", reason, report.Stats.SkipReasons[reason])
		}
	}
	if len(report.Stats.Categories) > 0 {
		fmt.Fprintln(out, "Categories:")
		for _, category := range sortedKeys(report.Stats.Categories) {
			fmt.Fprintf(out, "  %s: %d\n", category, report.Stats.Categories[category])
		}
	}

	if operationID != "" {
		fmt.Fprintf(out, "Recorded as operation %s. Undo with: drivesort undo %s\n", operationID, operationID)
	}
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func humanizeDuration(seconds float64) string {
	if seconds < 1 {
		return fmt.Sprintf("%.2fs", seconds)
	}
	d := time.Duration(seconds * float64(time.Second))
	return d.Round(100 * time.Millisecond).String()
}
