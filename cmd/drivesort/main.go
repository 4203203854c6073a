package main

import (
	"context"
	"errors"
	"fmt"
	"os"
)

const exitInterrupted = 130

func main() {
	if err := newRootCommand().Execute(); err != nil {
		if errors.Is(err, context.Canceled) {
			// An interrupted run already logged where it stopped.
			os.Exit(exitInterrupted)
		}
		fmt.Fprintln(os.Stderr, "drivesort:", err)
		os.Exit(1)
	}
}
