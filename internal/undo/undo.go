// Package undo replays a stored run in reverse, moving items back to their
// original folders and restoring original names.
package undo

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"drivesort/internal/history"
	"drivesort/internal/logging"
	"drivesort/internal/services/graph"
)

// Remote is the drive surface the runner needs.
type Remote interface {
	GetItemByPath(ctx context.Context, path string) (graph.Item, error)
	Root(ctx context.Context) (graph.Item, error)
	MoveItem(ctx context.Context, itemID, destinationFolderID, newName string) (graph.Item, error)
}

// StepStatus records the outcome of one reversal.
type StepStatus string

const (
	StepRestored StepStatus = "restored"
	StepFailed   StepStatus = "failed"
)

// StepResult is the outcome of reversing one move.
type StepResult struct {
	Step   history.UndoStep `json:"step"`
	Status StepStatus       `json:"status"`
	Error  string           `json:"error,omitempty"`
}

// Result summarizes one undo pass.
type Result struct {
	OperationID string       `json:"operation_id"`
	Restored    int          `json:"restored"`
	Failed      int          `json:"failed"`
	Steps       []StepResult `json:"steps"`
	StartTime   time.Time    `json:"start_time"`
	EndTime     time.Time    `json:"end_time"`
}

// Runner executes undo plans. Each step is attempted independently so one
// unreachable item does not strand the rest of the run.
type Runner struct {
	remote Remote
	logger *slog.Logger

	// parents caches resolved original folders per path for the duration of
	// one Run call.
	parents map[string]string
}

func NewRunner(remote Remote, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Runner{
		remote: remote,
		logger: logging.WithComponent(logger, "undo"),
	}
}

// Run reverses every step in the plan. Failed steps are recorded and skipped;
// only context cancellation aborts the pass early.
func (r *Runner) Run(ctx context.Context, plan *history.UndoPlan) (*Result, error) {
	result := &Result{
		OperationID: plan.OperationID,
		StartTime:   time.Now().UTC(),
	}
	r.parents = make(map[string]string)

	r.logger.Info("undo started",
		logging.String("operation_id", plan.OperationID),
		logging.Int("steps", len(plan.Steps)))

	for _, step := range plan.Steps {
		if err := ctx.Err(); err != nil {
			result.EndTime = time.Now().UTC()
			return result, err
		}

		stepResult := StepResult{Step: step, Status: StepRestored}
		if err := r.restore(ctx, step); err != nil {
			stepResult.Status = StepFailed
			stepResult.Error = err.Error()
			result.Failed++
			r.logger.Warn("restore failed",
				logging.String("item", step.CurrentName),
				logging.String("destination", step.OriginalParent),
				logging.Error(err))
		} else {
			result.Restored++
			r.logger.Info("restored",
				logging.String("item", step.OriginalName),
				logging.String("destination", step.OriginalParent))
		}
		result.Steps = append(result.Steps, stepResult)
	}

	result.EndTime = time.Now().UTC()
	r.logger.Info("undo finished",
		logging.Int("restored", result.Restored),
		logging.Int("failed", result.Failed))
	return result, nil
}

func (r *Runner) restore(ctx context.Context, step history.UndoStep) error {
	parentID, err := r.resolveParent(ctx, step.OriginalParent)
	if err != nil {
		return fmt.Errorf("resolve original folder %q: %w", step.OriginalParent, err)
	}

	newName := ""
	if step.CurrentName != step.OriginalName {
		newName = step.OriginalName
	}
	if _, err := r.remote.MoveItem(ctx, step.ItemID, parentID, newName); err != nil {
		return fmt.Errorf("move item back: %w", err)
	}
	return nil
}

// resolveParent looks up the original folder on first use. An empty path is
// the drive root.
func (r *Runner) resolveParent(ctx context.Context, parentPath string) (string, error) {
	if id, ok := r.parents[parentPath]; ok {
		return id, nil
	}

	var (
		item graph.Item
		err  error
	)
	if parentPath == "" {
		item, err = r.remote.Root(ctx)
	} else {
		item, err = r.remote.GetItemByPath(ctx, parentPath)
	}
	if err != nil {
		return "", err
	}

	r.parents[parentPath] = item.ID
	return item.ID, nil
}
