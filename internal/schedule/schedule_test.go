package schedule_test

import (
	"context"
	"errors"
	"testing"

	"drivesort/internal/logging"
	"drivesort/internal/schedule"
	"drivesort/internal/services"
)

func TestNewRejectsInvalidCron(t *testing.T) {
	_, err := schedule.New("not a cron", func(context.Context) {}, logging.NewNop())
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestNewAcceptsStandardExpression(t *testing.T) {
	if _, err := schedule.New("0 2 * * 0", func(context.Context) {}, logging.NewNop()); err != nil {
		t.Fatalf("New: %v", err)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	scheduler, err := schedule.New("* * * * *", func(context.Context) {}, logging.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := scheduler.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
