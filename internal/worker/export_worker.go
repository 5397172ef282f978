package worker

import (
	"context"
	"fmt"
	"log/slog"

	"foyer/internal/amqp"
	"foyer/internal/core"
	"foyer/internal/sheets"
)

// ReportSource computes the report of a month.
type ReportSource interface {
	MonthlyReport(ctx context.Context, period core.Period) (core.Report, error)
}

// ExportWorker turns export requests into rows on the report sheet.
type ExportWorker struct {
	reports ReportSource
	writer  sheets.ReportWriter
	tracker sheets.ExportTracker
}

func NewExportWorker(reports ReportSource, writer sheets.ReportWriter, tracker sheets.ExportTracker) *ExportWorker {
	return &ExportWorker{
		reports: reports,
		writer:  writer,
		tracker: tracker,
	}
}

// HandleExportMessage processes a single export message from AMQP. A
// message older than the latest request for its month is acknowledged
// without writing, since the newer one will carry fresher figures.
func (w *ExportWorker) HandleExportMessage(ctx context.Context, msg *amqp.ReportExportMessage) error {
	period := msg.Period()

	slog.InfoContext(ctx, "Processing export message",
		"period", period.String(),
		"version", msg.Version)

	latest, err := w.tracker.ExportVersion(ctx, period)
	if err != nil {
		return fmt.Errorf("read export version: %w", err)
	}
	if msg.Version < latest {
		slog.InfoContext(ctx, "Skipping superseded export",
			"period", period.String(),
			"version", msg.Version,
			"latest", latest)
		return nil
	}

	r, err := w.reports.MonthlyReport(ctx, period)
	if err != nil {
		return fmt.Errorf("compute report %s: %w", period, err)
	}

	ref, err := w.writer.WriteReport(ctx, r)
	if err != nil {
		return fmt.Errorf("write report %s: %w", period, err)
	}

	if err := w.tracker.MarkExported(ctx, period, msg.Version); err != nil {
		// The row is written; a stale marker only costs a rewrite.
		slog.WarnContext(ctx, "Failed to mark export done",
			"period", period.String(),
			"version", msg.Version,
			"error", err)
	}

	slog.InfoContext(ctx, "Exported report",
		"period", period.String(),
		"version", msg.Version,
		"ref", ref,
		"issues", len(r.Issues))
	return nil
}
