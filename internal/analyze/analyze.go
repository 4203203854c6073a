package analyze

import (
	"fmt"
	"path"
	"regexp"
	"strings"
	"time"

	"drivesort/internal/categorize"
	"drivesort/internal/config"
	"drivesort/internal/services/graph"
)

// Action is the decision for one analyzed item.
type Action string

const (
	ActionMove Action = "move"
	ActionSkip Action = "skip"
)

// Result captures the analysis outcome for one discovered item. NewName is
// empty until planning resolves a destination conflict. Sequence is assigned
// at execution time and recorded in the journal.
type Result struct {
	Item            graph.Item `json:"item"`
	SourcePath      string     `json:"source_path"`
	DestinationPath string     `json:"destination_path,omitempty"`
	Action          Action     `json:"action"`
	Reason          string     `json:"reason,omitempty"`
	Category        string     `json:"category,omitempty"`
	NewName         string     `json:"new_name,omitempty"`
}

// SkipOptions are the per-run filter settings.
type SkipOptions struct {
	SkipAlreadyOrganized bool
	ExcludeExtensions    []string
	MinAgeDays           int
}

// SkipOptionsFromConfig builds SkipOptions from the organize filters section.
func SkipOptionsFromConfig(filters config.Filters) SkipOptions {
	return SkipOptions{
		SkipAlreadyOrganized: filters.SkipAlreadyOrganized,
		ExcludeExtensions:    filters.ExcludeExtensions,
		MinAgeDays:           filters.MinAgeDays,
	}
}

// fallbackCategory is used when the template wants a category but no
// categorizer is configured.
const fallbackCategory = "Other"

// Analyzer computes move/skip decisions and destination paths.
type Analyzer struct {
	dateField       string
	structure       string
	destinationRoot string
	categorizer     *categorize.Categorizer

	organizedPatterns []*regexp.Regexp

	// now is overridable so age-based skips are testable.
	now func() time.Time
}

// New builds an analyzer from organize settings. The categorizer may be nil
// when content categorization is disabled.
func New(org config.Organize, categorizer *categorize.Categorizer) *Analyzer {
	root := regexp.QuoteMeta(org.DestinationRoot)
	return &Analyzer{
		dateField:       org.DateField,
		structure:       org.FolderStructure,
		destinationRoot: org.DestinationRoot,
		categorizer:     categorizer,
		organizedPatterns: []*regexp.Regexp{
			regexp.MustCompile(root + `/\d{4}/\d{2}_\w+/`),
			regexp.MustCompile(root + `/\w+/\d{4}/\d{2}_\w+/`),
		},
		now: time.Now,
	}
}

// AnalyzeItem applies the skip policy in order and, for surviving files,
// expands the destination template.
func (a *Analyzer) AnalyzeItem(item graph.Item, fullPath string, skip SkipOptions) Result {
	result := Result{
		Item:       item,
		SourcePath: fullPath,
		Action:     ActionSkip,
	}

	if item.IsFolder() {
		result.Reason = "is_folder"
		return result
	}
	if skip.SkipAlreadyOrganized && a.IsAlreadyOrganized(fullPath) {
		result.Reason = "already_organized"
		return result
	}
	if ext := strings.ToLower(path.Ext(item.Name)); ext != "" {
		for _, excluded := range skip.ExcludeExtensions {
			if ext == excluded {
				result.Reason = "excluded_extension_" + ext
				return result
			}
		}
	}

	date, ok := a.extractDate(item)
	if skip.MinAgeDays > 0 && ok {
		ageDays := int(a.now().UTC().Sub(date).Hours() / 24)
		if ageDays < skip.MinAgeDays {
			result.Reason = fmt.Sprintf("too_recent_%d_days", ageDays)
			return result
		}
	}
	if !ok {
		result.Reason = "no_date_field"
		return result
	}

	destination, category := a.expandStructure(item, fullPath, date)
	result.Action = ActionMove
	result.Reason = ""
	result.DestinationPath = destination
	if strings.Contains(a.structure, "{category}") {
		result.Category = category
	}
	return result
}

// IsAlreadyOrganized reports whether the path sits inside the canonical
// organized tree ({root}/YYYY/MM_Month/... or {root}/Category/YYYY/MM_Month/...).
func (a *Analyzer) IsAlreadyOrganized(itemPath string) bool {
	if !strings.HasPrefix(itemPath, a.destinationRoot) {
		return false
	}
	for _, pattern := range a.organizedPatterns {
		if pattern.MatchString(itemPath) {
			return true
		}
	}
	return false
}

// extractDate parses the configured date field. The second return is false
// when the field is absent or unparseable.
func (a *Analyzer) extractDate(item graph.Item) (time.Time, bool) {
	raw := item.DateField(a.dateField)
	if raw == "" {
		return time.Time{}, false
	}
	if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
		return parsed, true
	}
	if parsed, err := time.Parse("2006-01-02", raw); err == nil {
		return parsed, true
	}
	return time.Time{}, false
}

func (a *Analyzer) expandStructure(item graph.Item, fullPath string, date time.Time) (destination, category string) {
	structure := a.structure

	if strings.Contains(structure, "{category}") {
		category = fallbackCategory
		if a.categorizer != nil {
			category = a.categorizer.Categorize(item.Name, fullPath)
		}
		structure = strings.ReplaceAll(structure, "{category}", category)
	}

	structure = strings.ReplaceAll(structure, "{year}", fmt.Sprintf("%d", date.Year()))
	structure = strings.ReplaceAll(structure, "{month}", fmt.Sprintf("%02d_%s", int(date.Month()), date.Month().String()))
	structure = strings.ReplaceAll(structure, "{day}", fmt.Sprintf("%02d", date.Day()))
	structure = strings.ReplaceAll(structure, "{quarter}", fmt.Sprintf("Q%d", (int(date.Month())-1)/3+1))

	return a.destinationRoot + "/" + structure, category
}

// SetNowForTests overrides the clock and returns a restore func.
func (a *Analyzer) SetNowForTests(now func() time.Time) func() {
	previous := a.now
	a.now = now
	return func() { a.now = previous }
}
