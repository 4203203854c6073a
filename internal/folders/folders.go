// Package folders provisions destination folders with run-scoped caching.
//
// The cache guarantees at most one remote ensure-path call per destination
// within a run, which is what keeps many files sharing a month folder from
// racing duplicate creations. A Manager belongs to exactly one run and is
// discarded afterwards.
package folders

import (
	"context"
	"log/slog"
	"path"
	"sort"

	"drivesort/internal/analyze"
	"drivesort/internal/logging"
	"drivesort/internal/services/graph"
)

// Remote is the slice of the drive collaborator the folder manager needs.
type Remote interface {
	EnsureFolderPath(ctx context.Context, folderPath string) (graph.Item, error)
}

// Manager caches folder handles for one organize run.
type Manager struct {
	remote Remote
	logger *slog.Logger

	cache   map[string]graph.Item
	created map[string]struct{}
}

// NewManager builds a run-scoped folder manager.
func NewManager(remote Remote, logger *slog.Logger) *Manager {
	return &Manager{
		remote:  remote,
		logger:  logging.WithComponent(logger, "folders"),
		cache:   make(map[string]graph.Item),
		created: make(map[string]struct{}),
	}
}

// EnsureFolderExists returns a handle for folderPath, creating the path
// remotely on first use. Cache hits never touch the remote. In dry-run mode
// a deterministic placeholder handle is synthesized instead.
func (m *Manager) EnsureFolderExists(ctx context.Context, folderPath string, dryRun bool) (graph.Item, error) {
	if cached, ok := m.cache[folderPath]; ok {
		return cached, nil
	}

	if dryRun {
		mock := graph.Item{
			ID:     "mock_folder_" + folderPath,
			Name:   path.Base(folderPath),
			Folder: &graph.FolderFacet{},
		}
		m.cache[folderPath] = mock
		m.created[folderPath] = struct{}{}
		m.logger.Info("dry run: would ensure folder exists", logging.String("path", folderPath))
		return mock, nil
	}

	folder, err := m.remote.EnsureFolderPath(ctx, folderPath)
	if err != nil {
		m.logger.Error("ensure folder failed", logging.String("path", folderPath), logging.Error(err))
		return graph.Item{}, err
	}
	m.cache[folderPath] = folder
	m.created[folderPath] = struct{}{}
	return folder, nil
}

// PrepareFolders provisions every distinct destination referenced by the
// move plans, in sorted order for determinism. Individual failures are
// logged and dropped; the returned map covers only the destinations that
// succeeded, so partial folder availability does not abort the run.
func (m *Manager) PrepareFolders(ctx context.Context, movePlans []analyze.Result, dryRun bool) map[string]graph.Item {
	distinct := make(map[string]struct{})
	for _, plan := range movePlans {
		if plan.Action == analyze.ActionMove && plan.DestinationPath != "" {
			distinct[plan.DestinationPath] = struct{}{}
		}
	}

	paths := make([]string, 0, len(distinct))
	for folderPath := range distinct {
		paths = append(paths, folderPath)
	}
	sort.Strings(paths)

	m.logger.Info("preparing destination folders", logging.Int("count", len(paths)))

	prepared := make(map[string]graph.Item, len(paths))
	for _, folderPath := range paths {
		folder, err := m.EnsureFolderExists(ctx, folderPath, dryRun)
		if err != nil {
			m.logger.Warn("destination folder dropped",
				logging.String("path", folderPath),
				logging.Error(err))
			continue
		}
		prepared[folderPath] = folder
	}
	return prepared
}

// CreatedFolders returns the paths ensured during this run, sorted.
func (m *Manager) CreatedFolders() []string {
	paths := make([]string, 0, len(m.created))
	for folderPath := range m.created {
		paths = append(paths, folderPath)
	}
	sort.Strings(paths)
	return paths
}
