package organize_test

import (
	"context"
	"errors"
	"testing"

	"drivesort/internal/logging"
	"drivesort/internal/organize"
	"drivesort/internal/services"
	"drivesort/internal/testsupport"
)

func newEngine(t *testing.T, drive *testsupport.FakeDrive, opts ...testsupport.ConfigOption) *organize.Engine {
	t.Helper()
	cfg := testsupport.NewConfig(t, opts...)
	engine, err := organize.New(cfg, drive, logging.NewNop())
	if err != nil {
		t.Fatalf("organize.New: %v", err)
	}
	return engine
}

func TestOrganizeMovesFilesIntoDatedFolders(t *testing.T) {
	drive := testsupport.NewFakeDrive()
	photo := drive.AddFile("Inbox", "IMG_0012.jpg", "2024-03-14T09:30:00Z")
	doc := drive.AddFile("Inbox", "notes.pdf", "2024-04-02T12:00:00Z")

	engine := newEngine(t, drive, testsupport.WithSourceFolder("Inbox"))
	report := engine.Organize(context.Background(), organize.Options{
		SourceFolder: "Inbox",
		Recursive:    true,
	})

	if report.Status != organize.RunSuccess {
		t.Fatalf("run failed: %s", report.Error)
	}
	if report.Stats.TotalFiles != 2 || report.Stats.FilesMoved != 2 {
		t.Fatalf("unexpected stats: %+v", report.Stats)
	}

	if path, _ := drive.ItemPath(photo.ID); path != "Organized/2024/03_March/IMG_0012.jpg" {
		t.Fatalf("photo landed at %q", path)
	}
	if path, _ := drive.ItemPath(doc.ID); path != "Organized/2024/04_April/notes.pdf" {
		t.Fatalf("doc landed at %q", path)
	}

	// Sequence numbers follow execution order starting at 1.
	for i, record := range report.Operations {
		if record.Sequence != i+1 {
			t.Fatalf("record %d has sequence %d", i, record.Sequence)
		}
		if record.Status != organize.OpSuccess {
			t.Fatalf("record %d status %s", i, record.Status)
		}
	}
}

func TestOrganizeResolvesNameConflicts(t *testing.T) {
	drive := testsupport.NewFakeDrive()
	drive.AddFile("Inbox/A", "report.pdf", "2024-03-01T00:00:00Z")
	drive.AddFile("Inbox/B", "report.pdf", "2024-03-20T00:00:00Z")

	engine := newEngine(t, drive, testsupport.WithSourceFolder("Inbox"))
	report := engine.Organize(context.Background(), organize.Options{
		SourceFolder: "Inbox",
		Recursive:    true,
	})

	if report.Status != organize.RunSuccess {
		t.Fatalf("run failed: %s", report.Error)
	}
	if report.Plan.ConflictsResolved != 1 {
		t.Fatalf("expected 1 conflict, got %d", report.Plan.ConflictsResolved)
	}

	children, err := drive.ListChildren(context.Background(), "Organized/2024/03_March")
	if err != nil {
		t.Fatalf("ListChildren: %v", err)
	}
	names := map[string]bool{}
	for _, child := range children {
		names[child.Name] = true
	}
	if !names["report.pdf"] || !names["report_1.pdf"] {
		t.Fatalf("unexpected destination names: %v", names)
	}
}

func TestOrganizeRecordsPerItemFailures(t *testing.T) {
	drive := testsupport.NewFakeDrive()
	good := drive.AddFile("Inbox", "ok.pdf", "2024-03-01T00:00:00Z")
	bad := drive.AddFile("Inbox", "stuck.pdf", "2024-03-02T00:00:00Z")
	drive.FailMoves[bad.ID] = errors.New("item locked")

	engine := newEngine(t, drive, testsupport.WithSourceFolder("Inbox"))
	report := engine.Organize(context.Background(), organize.Options{
		SourceFolder: "Inbox",
		Recursive:    true,
	})

	// One stuck item does not fail the run.
	if report.Status != organize.RunSuccess {
		t.Fatalf("run failed: %s", report.Error)
	}
	if report.Stats.FilesMoved != 1 || report.Stats.FilesFailed != 1 {
		t.Fatalf("unexpected stats: %+v", report.Stats)
	}

	if path, _ := drive.ItemPath(good.ID); path != "Organized/2024/03_March/ok.pdf" {
		t.Fatalf("good file landed at %q", path)
	}
	if path, _ := drive.ItemPath(bad.ID); path != "Inbox/stuck.pdf" {
		t.Fatalf("stuck file moved to %q", path)
	}

	failures := 0
	for _, record := range report.Operations {
		if record.Status == organize.OpFailed {
			failures++
			if record.Error == "" {
				t.Fatal("failed record missing error text")
			}
		}
	}
	if failures != 1 {
		t.Fatalf("expected 1 failed record, got %d", failures)
	}
}

func TestOrganizeDryRunTouchesNothing(t *testing.T) {
	drive := testsupport.NewFakeDrive()
	photo := drive.AddFile("Inbox", "IMG_0012.jpg", "2024-03-14T09:30:00Z")

	engine := newEngine(t, drive, testsupport.WithSourceFolder("Inbox"))
	report := engine.Organize(context.Background(), organize.Options{
		SourceFolder: "Inbox",
		Recursive:    true,
		DryRun:       true,
	})

	if report.Status != organize.RunSuccess {
		t.Fatalf("run failed: %s", report.Error)
	}
	if !report.DryRun {
		t.Fatal("report not flagged as dry run")
	}
	if report.Stats.FilesMoved != 1 {
		t.Fatalf("dry run should count planned moves, got %d", report.Stats.FilesMoved)
	}
	if len(drive.Moves) != 0 || len(drive.EnsureCalls) != 0 {
		t.Fatalf("dry run touched the drive: moves=%v ensures=%v", drive.Moves, drive.EnsureCalls)
	}
	if path, _ := drive.ItemPath(photo.ID); path != "Inbox/IMG_0012.jpg" {
		t.Fatalf("file moved during dry run: %q", path)
	}
	for _, record := range report.Operations {
		if record.Status != organize.OpDryRun {
			t.Fatalf("unexpected record status %s", record.Status)
		}
	}
}

func TestOrganizeFailsWhenSourceUnlistable(t *testing.T) {
	drive := testsupport.NewFakeDrive()

	engine := newEngine(t, drive, testsupport.WithSourceFolder("Missing"))
	report := engine.Organize(context.Background(), organize.Options{
		SourceFolder: "Missing",
		Recursive:    true,
	})

	if report.Status != organize.RunFailed {
		t.Fatal("expected run to fail when the source folder cannot be listed")
	}
	if report.Error == "" {
		t.Fatal("failed report missing error text")
	}
	if len(drive.Moves) != 0 {
		t.Fatalf("failed run still issued moves: %v", drive.Moves)
	}
}

func TestOrganizeSkipsVanishedSubtree(t *testing.T) {
	drive := testsupport.NewFakeDrive()
	keep := drive.AddFile("Inbox", "keep.pdf", "2024-03-01T00:00:00Z")
	drive.AddFolder("Inbox/Gone")
	drive.FailList["Inbox/Gone"] = services.Wrap(services.ErrNotFound, "fakedrive", "list",
		"folder vanished", nil)

	engine := newEngine(t, drive, testsupport.WithSourceFolder("Inbox"))
	report := engine.Organize(context.Background(), organize.Options{
		SourceFolder: "Inbox",
		Recursive:    true,
	})

	// A folder deleted mid-walk costs its subtree, not the run.
	if report.Status != organize.RunSuccess {
		t.Fatalf("run failed: %s", report.Error)
	}
	if report.Stats.FilesMoved != 1 {
		t.Fatalf("unexpected stats: %+v", report.Stats)
	}
	if path, _ := drive.ItemPath(keep.ID); path != "Organized/2024/03_March/keep.pdf" {
		t.Fatalf("file landed at %q", path)
	}
}

func TestOrganizeAbortsWhenRemoteUnreachableMidWalk(t *testing.T) {
	drive := testsupport.NewFakeDrive()
	drive.AddFile("Inbox", "keep.pdf", "2024-03-01T00:00:00Z")
	drive.AddFolder("Inbox/Deep")
	drive.FailList["Inbox/Deep"] = services.Wrap(services.ErrRemoteUnavailable, "fakedrive", "list",
		"retries exhausted", nil)

	engine := newEngine(t, drive, testsupport.WithSourceFolder("Inbox"))
	report := engine.Organize(context.Background(), organize.Options{
		SourceFolder: "Inbox",
		Recursive:    true,
	})

	if report.Status != organize.RunFailed {
		t.Fatal("expected run to fail when the remote becomes unreachable during discovery")
	}
	if len(drive.Moves) != 0 {
		t.Fatalf("aborted run still issued moves: %v", drive.Moves)
	}
}

func TestOrganizeMaxFilesCap(t *testing.T) {
	drive := testsupport.NewFakeDrive()
	drive.AddFile("Inbox", "a.pdf", "2024-03-01T00:00:00Z")
	drive.AddFile("Inbox", "b.pdf", "2024-03-02T00:00:00Z")
	drive.AddFile("Inbox", "c.pdf", "2024-03-03T00:00:00Z")

	engine := newEngine(t, drive, testsupport.WithSourceFolder("Inbox"))
	report := engine.Organize(context.Background(), organize.Options{
		SourceFolder: "Inbox",
		Recursive:    true,
		MaxFiles:     2,
	})

	if report.Status != organize.RunSuccess {
		t.Fatalf("run failed: %s", report.Error)
	}
	if report.Stats.TotalFiles != 2 {
		t.Fatalf("cap not applied, total=%d", report.Stats.TotalFiles)
	}
}

func TestOrganizeCancelledRunFails(t *testing.T) {
	drive := testsupport.NewFakeDrive()
	drive.AddFile("Inbox", "a.pdf", "2024-03-01T00:00:00Z")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	engine := newEngine(t, drive, testsupport.WithSourceFolder("Inbox"))
	report := engine.Organize(ctx, organize.Options{
		SourceFolder: "Inbox",
		Recursive:    true,
	})

	if report.Status != organize.RunFailed {
		t.Fatal("cancelled run must report failure")
	}
}

func TestOrganizeSkipsAlreadyOrganizedTree(t *testing.T) {
	drive := testsupport.NewFakeDrive()
	organized := drive.AddFile("Organized/2020/01_January", "old.pdf", "2020-01-01T00:00:00Z")

	engine := newEngine(t, drive, testsupport.WithSourceFolder("Organized"))
	report := engine.Organize(context.Background(), organize.Options{
		SourceFolder: "Organized",
		Recursive:    true,
	})

	if report.Status != organize.RunSuccess {
		t.Fatalf("run failed: %s", report.Error)
	}
	if report.Stats.SkipReasons["already_organized"] != 1 {
		t.Fatalf("unexpected skip reasons: %v", report.Stats.SkipReasons)
	}
	if path, _ := drive.ItemPath(organized.ID); path != "Organized/2020/01_January/old.pdf" {
		t.Fatalf("organized file moved to %q", path)
	}
}
