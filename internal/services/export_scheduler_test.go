package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"foyer/internal/core"
)

type recordingExporter struct {
	mu      sync.Mutex
	periods []core.Period
	err     error
}

func (e *recordingExporter) RequestExport(_ context.Context, p core.Period) (int64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.periods = append(e.periods, p)
	return int64(len(e.periods)), e.err
}

func (e *recordingExporter) count() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.periods)
}

func TestExportSchedulerExportsCurrentMonth(t *testing.T) {
	exp := &recordingExporter{}
	s := NewExportScheduler(exp, time.Hour)
	s.now = func() time.Time { return time.Date(2025, 3, 15, 10, 0, 0, 0, time.UTC) }

	ctx := context.Background()
	if err := s.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := s.Start(ctx); err == nil {
		t.Fatal("second Start should fail")
	}

	deadline := time.Now().Add(2 * time.Second)
	for exp.count() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	stopCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	if err := s.Stop(stopCtx); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if s.IsRunning() {
		t.Fatal("scheduler still running")
	}

	exp.mu.Lock()
	defer exp.mu.Unlock()
	if len(exp.periods) == 0 || exp.periods[0] != march {
		t.Fatalf("periods = %v, want an immediate export of 2025-03", exp.periods)
	}
}

func TestExportSchedulerKeepsRunningOnError(t *testing.T) {
	exp := &recordingExporter{err: errors.New("broker down")}
	s := NewExportScheduler(exp, 10*time.Millisecond)

	ctx := context.Background()
	if err := s.Start(ctx); err != nil {
		t.Fatal(err)
	}
	deadline := time.Now().Add(2 * time.Second)
	for exp.count() < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	_ = s.Stop(ctx)
	if exp.count() < 2 {
		t.Fatalf("expected retries after failures, got %d calls", exp.count())
	}
}

func TestExportSchedulerRejectsZeroInterval(t *testing.T) {
	if err := NewExportScheduler(&recordingExporter{}, 0).Start(context.Background()); err == nil {
		t.Fatal("expected error for zero interval")
	}
}
