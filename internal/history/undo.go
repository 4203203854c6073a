package history

import (
	"context"
	"errors"
	"strings"

	"drivesort/internal/organize"
	"drivesort/internal/services"
)

// UndoStep describes one move to reverse. Steps carry everything the undo
// runner needs so the original report is not consulted again mid-undo.
type UndoStep struct {
	Sequence       int    `json:"sequence"`
	ItemID         string `json:"item_id"`
	CurrentName    string `json:"current_name"`
	OriginalName   string `json:"original_name"`
	OriginalParent string `json:"original_parent"`
	CurrentPath    string `json:"current_path"`
}

// UndoPlan is the ordered set of reversals for one stored run.
type UndoPlan struct {
	OperationID string     `json:"operation_id"`
	Steps       []UndoStep `json:"steps"`
}

// CanUndo reports whether the stored run is eligible for undo. An ineligible
// run returns false with a human-readable reason; infrastructure failures are
// returned as errors.
func (s *Store) CanUndo(ctx context.Context, operationID string) (bool, string, error) {
	report, err := s.Get(ctx, operationID)
	if errors.Is(err, services.ErrNotFound) {
		return false, "operation not found", nil
	}
	if err != nil {
		return false, "", err
	}

	if report.DryRun {
		return false, "dry run moved nothing", nil
	}
	if report.Status != organize.RunSuccess {
		return false, "run did not complete successfully", nil
	}
	if countSuccessful(report) == 0 {
		return false, "no successful moves to reverse", nil
	}
	return true, "", nil
}

// CreateUndoPlan builds the reversal steps for one stored run. Steps follow
// the original execution order; only successfully moved items are included.
func (s *Store) CreateUndoPlan(ctx context.Context, operationID string) (*UndoPlan, error) {
	report, err := s.Get(ctx, operationID)
	if err != nil {
		return nil, err
	}

	eligible, reason, err := s.CanUndo(ctx, operationID)
	if err != nil {
		return nil, err
	}
	if !eligible {
		return nil, services.Wrap(services.ErrData, "history", "undo plan", reason, nil)
	}

	plan := &UndoPlan{OperationID: operationID}
	for _, record := range report.Operations {
		if record.Status != organize.OpSuccess {
			continue
		}
		currentName := record.Item.Name
		if record.NewName != "" {
			currentName = record.NewName
		}
		parent, _ := splitPath(record.SourcePath)
		plan.Steps = append(plan.Steps, UndoStep{
			Sequence:       record.Sequence,
			ItemID:         record.Item.ID,
			CurrentName:    currentName,
			OriginalName:   record.Item.Name,
			OriginalParent: parent,
			CurrentPath:    record.DestinationPath + "/" + currentName,
		})
	}
	return plan, nil
}

func countSuccessful(report *organize.RunReport) int {
	count := 0
	for _, record := range report.Operations {
		if record.Status == organize.OpSuccess {
			count++
		}
	}
	return count
}

// splitPath divides a drive-relative path into parent and base. Paths with no
// separator live in the drive root, signalled by an empty parent.
func splitPath(fullPath string) (parent, base string) {
	idx := strings.LastIndex(fullPath, "/")
	if idx < 0 {
		return "", fullPath
	}
	return fullPath[:idx], fullPath[idx+1:]
}
