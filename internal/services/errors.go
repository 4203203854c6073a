package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrConfiguration marks bad category or structure configuration. Fatal
	// before a run starts.
	ErrConfiguration = errors.New("configuration error")
	// ErrRemoteUnavailable marks a remote call that exhausted its retries.
	// Fatal during discovery and planning, recorded per item during
	// execution and undo.
	ErrRemoteUnavailable = errors.New("remote unavailable")
	// ErrNotFound marks a missing path or item. Recorded as a skip or undo
	// failure, never fatal.
	ErrNotFound = errors.New("not found")
	// ErrData marks a missing or unparseable metadata field. Per-item skip.
	ErrData = errors.New("data error")
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrRemoteUnavailable
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// AbortsRun reports whether an error encountered before execution should
// abort the whole run rather than be folded into per-item statistics.
func AbortsRun(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrData):
		return false
	default:
		return true
	}
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
