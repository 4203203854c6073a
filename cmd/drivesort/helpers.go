package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/gofrs/flock"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"drivesort/internal/config"
)

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// confirm prompts for a yes/no answer on the command's streams. Non-terminal
// stdin declines automatically so piped invocations never hang.
func confirm(cmd *cobra.Command, prompt string) bool {
	in, ok := cmd.InOrStdin().(*os.File)
	if ok && !isatty.IsTerminal(in.Fd()) && !isatty.IsCygwinTerminal(in.Fd()) {
		fmt.Fprintln(cmd.OutOrStdout(), prompt+" [y/N]: declined (stdin is not a terminal, use --yes)")
		return false
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s [y/N]: ", prompt)
	reader := bufio.NewReader(cmd.InOrStdin())
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

// acquireRunLock takes an exclusive file lock so concurrent invocations
// cannot interleave moves against the same drive.
func acquireRunLock(cfg *config.Config) (*flock.Flock, error) {
	dir := cfg.Logging.LogDir
	if strings.TrimSpace(dir) == "" {
		dir = os.TempDir()
	}
	lock := flock.New(filepath.Join(dir, "drivesort.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire run lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("another drivesort run is already in progress (lock %s)", lock.Path())
	}
	return lock, nil
}
