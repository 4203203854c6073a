package organize

import (
	"context"

	"drivesort/internal/logging"
	"drivesort/internal/services"
	"drivesort/internal/services/graph"
)

// Discovered pairs an item snapshot with its full drive path.
type Discovered struct {
	Item graph.Item
	Path string
}

type folderEntry struct {
	item       graph.Item
	parentPath string
}

// discover lists items under sourceFolder. The walk is breadth-first: files
// at the current level are collected before any subfolder is descended into.
// A subtree whose folder vanished mid-walk is skipped; the top-level listing
// and any failure that marks the remote unreachable are fatal. maxFiles > 0
// caps the result strictly after the full listing so the cap never perturbs
// ordering.
func (e *Engine) discover(ctx context.Context, sourceFolder string, recursive bool, maxFiles int) ([]Discovered, error) {
	children, err := e.remote.ListChildren(ctx, sourceFolder)
	if err != nil {
		return nil, err
	}

	var items []graph.Item
	if !recursive {
		items = children
	} else {
		var queue []folderEntry
		for _, child := range children {
			if child.IsFolder() {
				queue = append(queue, folderEntry{item: child, parentPath: sourceFolder})
			} else {
				items = append(items, child)
			}
		}

		for len(queue) > 0 {
			entry := queue[0]
			queue = queue[1:]

			fullPath := entry.item.Name
			if entry.parentPath != "" {
				fullPath = entry.parentPath + "/" + entry.item.Name
			}

			subItems, err := e.remote.ListChildren(ctx, fullPath)
			if err != nil {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				if services.AbortsRun(err) {
					return nil, err
				}
				e.logger.Warn("folder listing failed, skipping subtree",
					logging.String("path", fullPath),
					logging.Error(err))
				continue
			}
			for _, sub := range subItems {
				if sub.IsFolder() {
					queue = append(queue, folderEntry{item: sub, parentPath: fullPath})
				} else {
					items = append(items, sub)
				}
			}
		}
	}

	if maxFiles > 0 && len(items) > maxFiles {
		items = items[:maxFiles]
	}

	discovered := make([]Discovered, 0, len(items))
	for _, item := range items {
		discovered = append(discovered, Discovered{Item: item, Path: item.Path()})
	}
	return discovered, nil
}
