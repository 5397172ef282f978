package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"foyer/internal/core"
)

// Exporter queues the export of one month.
type Exporter interface {
	RequestExport(ctx context.Context, period core.Period) (int64, error)
}

// ExportScheduler requests an export of the current month on a fixed
// interval, so the sheet follows spending without anyone asking.
type ExportScheduler struct {
	exporter Exporter
	interval time.Duration
	now      func() time.Time

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

func NewExportScheduler(exporter Exporter, interval time.Duration) *ExportScheduler {
	return &ExportScheduler{
		exporter: exporter,
		interval: interval,
		now:      time.Now,
	}
}

// Start begins the loop. Returns an error if already running.
func (s *ExportScheduler) Start(ctx context.Context) error {
	if s.interval <= 0 {
		return fmt.Errorf("export interval must be positive, got %s", s.interval)
	}

	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("export scheduler is already running")
	}
	s.running = true
	stopCh, doneCh := make(chan struct{}), make(chan struct{})
	s.stopCh, s.doneCh = stopCh, doneCh
	s.mu.Unlock()

	go s.runLoop(ctx, stopCh, doneCh)

	slog.InfoContext(ctx, "Export scheduler started", "interval", s.interval)
	return nil
}

// Stop signals the loop and waits for it to finish.
func (s *ExportScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	stopCh, doneCh := s.stopCh, s.doneCh
	s.mu.Unlock()

	close(stopCh)

	select {
	case <-doneCh:
		slog.InfoContext(ctx, "Export scheduler stopped")
		return nil
	case <-ctx.Done():
		slog.WarnContext(ctx, "Export scheduler stop timed out")
		return ctx.Err()
	}
}

func (s *ExportScheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *ExportScheduler) runLoop(ctx context.Context, stopCh <-chan struct{}, doneCh chan<- struct{}) {
	defer close(doneCh)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.tick(ctx)

	for {
		select {
		case <-stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

// tick requests the current month. Failures are logged and retried on the
// next tick.
func (s *ExportScheduler) tick(ctx context.Context) {
	period := core.NewPeriod(s.now())
	version, err := s.exporter.RequestExport(ctx, period)
	if err != nil {
		slog.ErrorContext(ctx, "Scheduled export failed", "period", period.String(), "error", err)
		return
	}
	slog.DebugContext(ctx, "Scheduled export requested", "period", period.String(), "version", version)
}
