package organize

import (
	"fmt"
	"sort"
	"strings"

	"drivesort/internal/analyze"
	"drivesort/internal/logging"
)

// buildPlan groups move results by their full destination (folder plus file
// name) to detect conflicts and resolves them deterministically: the
// first-seen plan keeps its name, every later member of the group is renamed
// with a 1-based _{index} suffix in encounter order.
func (e *Engine) buildPlan(results []analyze.Result) ExecutionPlan {
	movePlans := make([]analyze.Result, 0, len(results))
	for _, result := range results {
		if result.Action == analyze.ActionMove {
			movePlans = append(movePlans, result)
		}
	}

	groups := make(map[string][]int, len(movePlans))
	order := make([]string, 0, len(movePlans))
	for i, plan := range movePlans {
		fullDest := plan.DestinationPath + "/" + plan.Item.Name
		if _, seen := groups[fullDest]; !seen {
			order = append(order, fullDest)
		}
		groups[fullDest] = append(groups[fullDest], i)
	}

	conflicts := 0
	for _, fullDest := range order {
		members := groups[fullDest]
		if len(members) < 2 {
			continue
		}
		conflicts++
		e.logger.Warn("destination conflict",
			logging.String("destination", fullDest),
			logging.Int("files", len(members)))
		for n, idx := range members[1:] {
			renamed := suffixName(movePlans[idx].Item.Name, n+1)
			movePlans[idx].NewName = renamed
			e.logger.Info("conflict resolved by rename",
				logging.String("from", movePlans[idx].Item.Name),
				logging.String("to", renamed))
		}
	}

	distinct := make(map[string]struct{}, len(movePlans))
	for _, plan := range movePlans {
		distinct[plan.DestinationPath] = struct{}{}
	}
	foldersNeeded := make([]string, 0, len(distinct))
	for folderPath := range distinct {
		foldersNeeded = append(foldersNeeded, folderPath)
	}
	sort.Strings(foldersNeeded)

	return ExecutionPlan{
		MovePlans:         movePlans,
		FoldersNeeded:     foldersNeeded,
		ConflictsResolved: conflicts,
	}
}

// suffixName inserts _{index} before the file extension, or appends it when
// the name has none.
func suffixName(name string, index int) string {
	if dot := strings.LastIndex(name, "."); dot >= 0 {
		return fmt.Sprintf("%s_%d%s", name[:dot], index, name[dot:])
	}
	return fmt.Sprintf("%s_%d", name, index)
}
