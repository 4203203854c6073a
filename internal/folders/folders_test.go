package folders_test

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"drivesort/internal/analyze"
	"drivesort/internal/folders"
	"drivesort/internal/logging"
	"drivesort/internal/testsupport"
)

func TestEnsureFolderExistsCachesHandle(t *testing.T) {
	drive := testsupport.NewFakeDrive()
	manager := folders.NewManager(drive, logging.NewNop())

	ctx := context.Background()
	first, err := manager.EnsureFolderExists(ctx, "Organized/2024/03_March", false)
	if err != nil {
		t.Fatalf("EnsureFolderExists: %v", err)
	}
	second, err := manager.EnsureFolderExists(ctx, "Organized/2024/03_March", false)
	if err != nil {
		t.Fatalf("EnsureFolderExists (cached): %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("cache returned a different handle: %q vs %q", first.ID, second.ID)
	}
	if calls := drive.EnsureCalls["Organized/2024/03_March"]; calls != 1 {
		t.Fatalf("expected exactly one remote call, got %d", calls)
	}
}

func TestEnsureFolderExistsDryRunNeverTouchesRemote(t *testing.T) {
	drive := testsupport.NewFakeDrive()
	manager := folders.NewManager(drive, logging.NewNop())

	folder, err := manager.EnsureFolderExists(context.Background(), "Organized/2024/03_March", true)
	if err != nil {
		t.Fatalf("EnsureFolderExists: %v", err)
	}
	if folder.ID != "mock_folder_Organized/2024/03_March" {
		t.Fatalf("unexpected placeholder id: %q", folder.ID)
	}
	if len(drive.EnsureCalls) != 0 {
		t.Fatalf("dry run reached the remote: %v", drive.EnsureCalls)
	}
}

func TestPrepareFoldersDeduplicatesDestinations(t *testing.T) {
	drive := testsupport.NewFakeDrive()
	manager := folders.NewManager(drive, logging.NewNop())

	plans := []analyze.Result{
		{Action: analyze.ActionMove, DestinationPath: "Organized/2024/03_March"},
		{Action: analyze.ActionMove, DestinationPath: "Organized/2024/03_March"},
		{Action: analyze.ActionMove, DestinationPath: "Organized/2024/04_April"},
		{Action: analyze.ActionSkip},
	}

	prepared := manager.PrepareFolders(context.Background(), plans, false)
	if len(prepared) != 2 {
		t.Fatalf("expected 2 prepared folders, got %d", len(prepared))
	}
	for path, calls := range drive.EnsureCalls {
		if calls != 1 {
			t.Fatalf("path %q ensured %d times", path, calls)
		}
	}
}

func TestPrepareFoldersToleratesPartialFailure(t *testing.T) {
	drive := testsupport.NewFakeDrive()
	drive.FailEnsure["Organized/2024/03_March"] = errors.New("quota exceeded")
	manager := folders.NewManager(drive, logging.NewNop())

	plans := []analyze.Result{
		{Action: analyze.ActionMove, DestinationPath: "Organized/2024/03_March"},
		{Action: analyze.ActionMove, DestinationPath: "Organized/2024/04_April"},
	}

	prepared := manager.PrepareFolders(context.Background(), plans, false)
	if _, ok := prepared["Organized/2024/03_March"]; ok {
		t.Fatal("failed destination must not appear in the prepared map")
	}
	if _, ok := prepared["Organized/2024/04_April"]; !ok {
		t.Fatal("surviving destination missing from the prepared map")
	}
}

func TestCreatedFoldersSorted(t *testing.T) {
	drive := testsupport.NewFakeDrive()
	manager := folders.NewManager(drive, logging.NewNop())

	ctx := context.Background()
	for _, path := range []string{"Organized/2024/04_April", "Organized/2024/03_March"} {
		if _, err := manager.EnsureFolderExists(ctx, path, false); err != nil {
			t.Fatalf("EnsureFolderExists %q: %v", path, err)
		}
	}

	want := []string{"Organized/2024/03_March", "Organized/2024/04_April"}
	if got := manager.CreatedFolders(); !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected created folders: %v", got)
	}
}
