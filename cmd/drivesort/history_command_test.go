package main

import (
	"strings"
	"testing"
)

func TestHistoryCleanupRejectsZeroDays(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	_, err := runCLI(t, "history", "cleanup", "--days", "0")
	if err == nil {
		t.Fatal("expected error for --days 0")
	}
	if !strings.Contains(err.Error(), "--all") {
		t.Fatalf("error should point at --all: %v", err)
	}
}

func TestHistoryCleanupEmptyStore(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	out, err := runCLI(t, "history", "cleanup", "--days", "30")
	if err != nil {
		t.Fatalf("history cleanup: %v", err)
	}
	if !strings.Contains(out, "Removed 0 recorded run(s).") {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestHistoryListEmptyStore(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	out, err := runCLI(t, "history", "list")
	if err != nil {
		t.Fatalf("history list: %v", err)
	}
	if !strings.Contains(out, "No recorded runs.") {
		t.Fatalf("unexpected output: %q", out)
	}
}
