package organize

import (
	"time"

	"drivesort/internal/analyze"
	"drivesort/internal/services/graph"
)

// RunStatus is the overall outcome of a run.
type RunStatus string

const (
	RunSuccess RunStatus = "success"
	RunFailed  RunStatus = "failed"
)

// OperationStatus is the outcome of a single move.
type OperationStatus string

const (
	OpSuccess OperationStatus = "success"
	OpFailed  OperationStatus = "failed"
	OpDryRun  OperationStatus = "dry_run"
)

// Stats aggregates run counters and histograms.
type Stats struct {
	TotalFiles     int            `json:"total_files"`
	FilesToMove    int            `json:"files_to_move"`
	FilesSkipped   int            `json:"files_skipped"`
	FilesMoved     int            `json:"files_moved"`
	FilesFailed    int            `json:"files_failed"`
	FoldersCreated int            `json:"folders_created"`
	SkipReasons    map[string]int `json:"skip_reasons,omitempty"`
	Categories     map[string]int `json:"categories,omitempty"`
}

// ExecutionPlan is the read-only product of the planning phase.
type ExecutionPlan struct {
	MovePlans         []analyze.Result `json:"move_plans"`
	FoldersNeeded     []string         `json:"folders_needed"`
	ConflictsResolved int              `json:"conflicts_resolved"`
}

// OperationRecord is the per-move outcome and the authoritative unit for
// undo. Sequence preserves execution order even if records are ever
// re-sorted for display.
type OperationRecord struct {
	Sequence        int             `json:"sequence"`
	Item            graph.Item      `json:"item"`
	SourcePath      string          `json:"source_path"`
	DestinationPath string          `json:"destination_path"`
	NewName         string          `json:"new_name,omitempty"`
	Status          OperationStatus `json:"status"`
	Error           string          `json:"error,omitempty"`
	Timestamp       time.Time       `json:"timestamp"`
}

// RunReport is the structured result of one run, persisted verbatim by the
// history store for successful live runs.
type RunReport struct {
	Status          RunStatus         `json:"status"`
	Error           string            `json:"error,omitempty"`
	SourceFolder    string            `json:"source_folder"`
	Stats           Stats             `json:"stats"`
	Operations      []OperationRecord `json:"operations"`
	Plan            ExecutionPlan     `json:"execution_plan"`
	StartTime       time.Time         `json:"start_time"`
	EndTime         time.Time         `json:"end_time"`
	DurationSeconds float64           `json:"duration_seconds"`
	DryRun          bool              `json:"dry_run"`
}

func newStats() Stats {
	return Stats{
		SkipReasons: make(map[string]int),
		Categories:  make(map[string]int),
	}
}
