package analyze_test

import (
	"strings"
	"testing"
	"time"

	"drivesort/internal/analyze"
	"drivesort/internal/categorize"
	"drivesort/internal/config"
	"drivesort/internal/services/graph"
)

func organizeConfig(structure string) config.Organize {
	return config.Organize{
		SourceFolder:    "",
		DestinationRoot: "Organized",
		DateField:       "createdDateTime",
		FolderStructure: structure,
		Recursive:       true,
	}
}

func file(name, created string) graph.Item {
	return graph.Item{
		ID:              "id-" + name,
		Name:            name,
		File:            &graph.FileFacet{},
		CreatedDateTime: created,
	}
}

func TestAnalyzeItemYearMonth(t *testing.T) {
	a := analyze.New(organizeConfig("{year}/{month}"), nil)

	result := a.AnalyzeItem(file("IMG_0012.jpg", "2024-03-14T09:30:00Z"), "IMG_0012.jpg", analyze.SkipOptions{})
	if result.Action != analyze.ActionMove {
		t.Fatalf("expected move, got %s (%s)", result.Action, result.Reason)
	}
	if result.DestinationPath != "Organized/2024/03_March" {
		t.Fatalf("unexpected destination: %q", result.DestinationPath)
	}
}

func TestAnalyzeItemQuarterAndDay(t *testing.T) {
	a := analyze.New(organizeConfig("{year}/{quarter}/{day}"), nil)

	result := a.AnalyzeItem(file("notes.txt", "2024-11-05T00:00:00Z"), "notes.txt", analyze.SkipOptions{})
	if result.DestinationPath != "Organized/2024/Q4/05" {
		t.Fatalf("unexpected destination: %q", result.DestinationPath)
	}
}

func TestAnalyzeItemCategoryTemplate(t *testing.T) {
	categorizer, err := categorize.New(config.Categories{
		Enabled: true,
		Default: "Other",
		Rules: []config.CategoryRule{
			{Name: "Pictures", Extensions: []string{".jpg"}, Priority: 70},
		},
	})
	if err != nil {
		t.Fatalf("categorize.New: %v", err)
	}
	a := analyze.New(organizeConfig("{category}/{year}/{month}"), categorizer)

	result := a.AnalyzeItem(file("IMG_0012.jpg", "2024-03-14T09:30:00Z"), "IMG_0012.jpg", analyze.SkipOptions{})
	if result.DestinationPath != "Organized/Pictures/2024/03_March" {
		t.Fatalf("unexpected destination: %q", result.DestinationPath)
	}
	if result.Category != "Pictures" {
		t.Fatalf("unexpected category: %q", result.Category)
	}
}

func TestAnalyzeItemCategoryWithoutCategorizer(t *testing.T) {
	a := analyze.New(organizeConfig("{category}/{year}"), nil)

	result := a.AnalyzeItem(file("doc.pdf", "2024-01-01T00:00:00Z"), "doc.pdf", analyze.SkipOptions{})
	if result.DestinationPath != "Organized/Other/2024" {
		t.Fatalf("unexpected destination: %q", result.DestinationPath)
	}
}

func TestAnalyzeItemSkipsFolders(t *testing.T) {
	a := analyze.New(organizeConfig("{year}/{month}"), nil)

	folder := graph.Item{ID: "f1", Name: "Camera Roll", Folder: &graph.FolderFacet{}}
	result := a.AnalyzeItem(folder, "Camera Roll", analyze.SkipOptions{})
	if result.Action != analyze.ActionSkip || result.Reason != "is_folder" {
		t.Fatalf("expected is_folder skip, got %s (%s)", result.Action, result.Reason)
	}
}

func TestAnalyzeItemAlreadyOrganized(t *testing.T) {
	a := analyze.New(organizeConfig("{year}/{month}"), nil)
	skip := analyze.SkipOptions{SkipAlreadyOrganized: true}

	result := a.AnalyzeItem(file("old.pdf", "2020-01-01T00:00:00Z"), "Organized/2020/01_January/old.pdf", skip)
	if result.Reason != "already_organized" {
		t.Fatalf("expected already_organized, got %s (%s)", result.Action, result.Reason)
	}

	// Category layout counts as organized too.
	result = a.AnalyzeItem(file("old.pdf", "2020-01-01T00:00:00Z"), "Organized/Finance/2020/01_January/old.pdf", skip)
	if result.Reason != "already_organized" {
		t.Fatalf("expected already_organized for category layout, got %s", result.Reason)
	}

	// Files outside the destination root are fair game.
	result = a.AnalyzeItem(file("new.pdf", "2020-01-01T00:00:00Z"), "Inbox/2020/01_January/new.pdf", skip)
	if result.Action != analyze.ActionMove {
		t.Fatalf("expected move outside the root, got %s (%s)", result.Action, result.Reason)
	}
}

func TestAnalyzeItemExcludedExtension(t *testing.T) {
	a := analyze.New(organizeConfig("{year}/{month}"), nil)
	skip := analyze.SkipOptions{ExcludeExtensions: []string{".tmp"}}

	result := a.AnalyzeItem(file("upload.TMP", "2024-01-01T00:00:00Z"), "upload.TMP", skip)
	if result.Reason != "excluded_extension_.tmp" {
		t.Fatalf("unexpected reason: %q", result.Reason)
	}
}

func TestAnalyzeItemTooRecent(t *testing.T) {
	a := analyze.New(organizeConfig("{year}/{month}"), nil)
	now := time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC)
	restore := a.SetNowForTests(func() time.Time { return now })
	defer restore()

	skip := analyze.SkipOptions{MinAgeDays: 30}
	result := a.AnalyzeItem(file("fresh.pdf", "2024-03-14T09:30:00Z"), "fresh.pdf", skip)
	if !strings.HasPrefix(result.Reason, "too_recent_") {
		t.Fatalf("expected too_recent skip, got %s (%s)", result.Action, result.Reason)
	}

	result = a.AnalyzeItem(file("aged.pdf", "2023-03-14T09:30:00Z"), "aged.pdf", skip)
	if result.Action != analyze.ActionMove {
		t.Fatalf("expected aged file to move, got %s (%s)", result.Action, result.Reason)
	}
}

func TestAnalyzeItemNoDateField(t *testing.T) {
	a := analyze.New(organizeConfig("{year}/{month}"), nil)

	result := a.AnalyzeItem(file("mystery.bin", ""), "mystery.bin", analyze.SkipOptions{})
	if result.Reason != "no_date_field" {
		t.Fatalf("unexpected reason: %q", result.Reason)
	}
}

func TestAnalyzeItemSkipOrder(t *testing.T) {
	// An excluded extension on an already-organized path reports the
	// organized skip because that check runs first.
	a := analyze.New(organizeConfig("{year}/{month}"), nil)
	skip := analyze.SkipOptions{
		SkipAlreadyOrganized: true,
		ExcludeExtensions:    []string{".tmp"},
	}

	result := a.AnalyzeItem(file("x.tmp", "2020-01-01T00:00:00Z"), "Organized/2020/01_January/x.tmp", skip)
	if result.Reason != "already_organized" {
		t.Fatalf("expected already_organized to win, got %q", result.Reason)
	}
}

func TestAnalyzeItemDateOnlyTimestamp(t *testing.T) {
	a := analyze.New(organizeConfig("{year}/{month}"), nil)

	result := a.AnalyzeItem(file("scan.pdf", "2023-07-09"), "scan.pdf", analyze.SkipOptions{})
	if result.DestinationPath != "Organized/2023/07_July" {
		t.Fatalf("unexpected destination: %q", result.DestinationPath)
	}
}

func TestAnalyzeItemLastModifiedField(t *testing.T) {
	cfg := organizeConfig("{year}/{month}")
	cfg.DateField = "lastModifiedDateTime"
	a := analyze.New(cfg, nil)

	item := graph.Item{
		ID:                   "id-1",
		Name:                 "edited.docx",
		File:                 &graph.FileFacet{},
		CreatedDateTime:      "2020-01-01T00:00:00Z",
		LastModifiedDateTime: "2024-06-02T10:00:00Z",
	}
	result := a.AnalyzeItem(item, "edited.docx", analyze.SkipOptions{})
	if result.DestinationPath != "Organized/2024/06_June" {
		t.Fatalf("unexpected destination: %q", result.DestinationPath)
	}
}
