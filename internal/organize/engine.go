package organize

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"drivesort/internal/analyze"
	"drivesort/internal/categorize"
	"drivesort/internal/config"
	"drivesort/internal/folders"
	"drivesort/internal/logging"
	"drivesort/internal/services/graph"
)

// Remote is the slice of the drive collaborator the engine needs.
type Remote interface {
	ListChildren(ctx context.Context, folderPath string) ([]graph.Item, error)
	EnsureFolderPath(ctx context.Context, folderPath string) (graph.Item, error)
	MoveItem(ctx context.Context, itemID, destinationFolderID, newName string) (graph.Item, error)
}

// Options select per-run behaviour on top of the configuration.
type Options struct {
	SourceFolder string
	Recursive    bool
	DryRun       bool
	MaxFiles     int
}

// OptionsFromConfig derives run options from the organize section.
func OptionsFromConfig(org config.Organize, dryRun bool) Options {
	return Options{
		SourceFolder: org.SourceFolder,
		Recursive:    org.Recursive,
		DryRun:       dryRun,
		MaxFiles:     org.Safety.MaxFilesPerRun,
	}
}

// Progress is invoked after every executed move with (done, total).
type Progress func(done, total int)

// Engine composes the analyzer, the folder manager, and the remote
// collaborator into one run of the pipeline. An Engine is single-use: its
// folder cache is scoped to the run.
type Engine struct {
	remote   Remote
	cfg      config.Organize
	analyzer *analyze.Analyzer
	folders  *folders.Manager
	logger   *slog.Logger
	progress Progress
}

// New builds an engine for one run. Categorization is attached when enabled
// in the configuration; a bad category table is a configuration error.
func New(cfg *config.Config, remote Remote, logger *slog.Logger) (*Engine, error) {
	var categorizer *categorize.Categorizer
	if cfg.Categories.Enabled {
		var err error
		categorizer, err = categorize.New(cfg.Categories)
		if err != nil {
			return nil, err
		}
	}
	return &Engine{
		remote:   remote,
		cfg:      cfg.Organize,
		analyzer: analyze.New(cfg.Organize, categorizer),
		folders:  folders.NewManager(remote, logger),
		logger:   logging.WithComponent(logger, "organize"),
	}, nil
}

// SetProgress installs a per-move progress callback.
func (e *Engine) SetProgress(progress Progress) {
	e.progress = progress
}

// Organize runs all four phases and always returns a structured report. A
// failure before execution yields a failed report with the error captured;
// per-item execution failures are folded into the statistics.
func (e *Engine) Organize(ctx context.Context, opts Options) *RunReport {
	start := time.Now().UTC()
	stats := newStats()

	report := &RunReport{
		Status:       RunSuccess,
		Stats:        stats,
		SourceFolder: opts.SourceFolder,
		StartTime:    start,
		DryRun:       opts.DryRun,
	}

	fail := func(err error) *RunReport {
		report.Status = RunFailed
		report.Error = err.Error()
		e.finish(report)
		e.logger.Error("organization failed", logging.Error(err))
		return report
	}

	e.logger.Info("starting organization",
		logging.String("source", displayFolder(opts.SourceFolder)),
		logging.Bool("dry_run", opts.DryRun),
		logging.Bool("recursive", opts.Recursive))

	// Phase 1: discovery.
	discovered, err := e.discover(ctx, opts.SourceFolder, opts.Recursive, opts.MaxFiles)
	if err != nil {
		return fail(err)
	}
	for _, entry := range discovered {
		if !entry.Item.IsFolder() {
			report.Stats.TotalFiles++
		}
	}
	e.logger.Info("discovery complete", logging.Int("files", report.Stats.TotalFiles))

	// Phase 2: analysis.
	skip := analyze.SkipOptionsFromConfig(e.cfg.Filters)
	results := make([]analyze.Result, 0, len(discovered))
	moves := 0
	for _, entry := range discovered {
		result := e.analyzer.AnalyzeItem(entry.Item, entry.Path, skip)
		results = append(results, result)
		switch result.Action {
		case analyze.ActionSkip:
			report.Stats.FilesSkipped++
			report.Stats.SkipReasons[result.Reason]++
		case analyze.ActionMove:
			moves++
			if result.Category != "" {
				report.Stats.Categories[result.Category]++
			}
		}
	}
	e.logger.Info("analysis complete",
		logging.Int("to_move", moves),
		logging.Int("skipped", report.Stats.FilesSkipped))

	// Phase 3: planning.
	plan := e.buildPlan(results)
	report.Plan = plan
	report.Stats.FilesToMove = len(plan.MovePlans)
	e.logger.Info("execution plan created",
		logging.Int("moves", len(plan.MovePlans)),
		logging.Int("folders_needed", len(plan.FoldersNeeded)),
		logging.Int("conflicts_resolved", plan.ConflictsResolved))

	// Phase 4: execution.
	if err := e.execute(ctx, report, plan, opts.DryRun); err != nil {
		return fail(err)
	}

	e.finish(report)
	e.logger.Info("organization complete",
		logging.Int("moved", report.Stats.FilesMoved),
		logging.Int("failed", report.Stats.FilesFailed),
		logging.Int("skipped", report.Stats.FilesSkipped),
		logging.Duration("duration", report.EndTime.Sub(report.StartTime)))
	return report
}

// execute provisions folders then issues moves in plan order. The only
// error it returns is context cancellation; everything else is recorded per
// item so the rest of the plan still runs.
func (e *Engine) execute(ctx context.Context, report *RunReport, plan ExecutionPlan, dryRun bool) error {
	if len(plan.MovePlans) == 0 {
		e.logger.Info("no files to move")
		return nil
	}

	folderMap := e.folders.PrepareFolders(ctx, plan.MovePlans, dryRun)
	report.Stats.FoldersCreated = len(folderMap)

	total := len(plan.MovePlans)
	for i, movePlan := range plan.MovePlans {
		if err := ctx.Err(); err != nil {
			return err
		}

		record := OperationRecord{
			Sequence:        i + 1,
			Item:            movePlan.Item,
			SourcePath:      movePlan.SourcePath,
			DestinationPath: movePlan.DestinationPath,
			NewName:         movePlan.NewName,
			Timestamp:       time.Now().UTC(),
		}

		if dryRun {
			record.Status = OpDryRun
			report.Stats.FilesMoved++
			report.Operations = append(report.Operations, record)
			e.notifyProgress(i+1, total)
			continue
		}

		err := e.moveOne(ctx, folderMap, movePlan)
		if err != nil {
			record.Status = OpFailed
			record.Error = err.Error()
			report.Stats.FilesFailed++
			e.logger.Error("move failed",
				logging.String("source", movePlan.SourcePath),
				logging.Error(err))
		} else {
			record.Status = OpSuccess
			report.Stats.FilesMoved++
			e.logger.Info("moved",
				logging.String("source", movePlan.SourcePath),
				logging.String("destination", movePlan.DestinationPath))
		}
		report.Operations = append(report.Operations, record)
		e.notifyProgress(i+1, total)
	}
	return nil
}

func (e *Engine) moveOne(ctx context.Context, folderMap map[string]graph.Item, plan analyze.Result) error {
	folder, ok := folderMap[plan.DestinationPath]
	if !ok {
		return fmt.Errorf("destination folder not available: %s", plan.DestinationPath)
	}
	_, err := e.remote.MoveItem(ctx, plan.Item.ID, folder.ID, plan.NewName)
	return err
}

func (e *Engine) notifyProgress(done, total int) {
	if e.progress != nil {
		e.progress(done, total)
	}
}

func (e *Engine) finish(report *RunReport) {
	report.EndTime = time.Now().UTC()
	report.DurationSeconds = report.EndTime.Sub(report.StartTime).Seconds()
}

func displayFolder(folder string) string {
	if folder == "" {
		return "(root)"
	}
	return folder
}
