package sheets

import (
	"context"

	"foyer/internal/core"
)

// Ports for the data backends and the report export.
type (
	// HouseholdReader returns the household settings, or
	// core.ErrNoHousehold when none are configured.
	HouseholdReader interface {
		ReadHousehold(ctx context.Context) (core.Household, error)
	}

	// ProvisionLister returns every provision, active or not, in display order.
	ProvisionLister interface {
		ListProvisions(ctx context.Context) ([]core.Provision, error)
	}

	// FixedExpenseLister returns every fixed expense, active or not, in
	// display order.
	FixedExpenseLister interface {
		ListFixedExpenses(ctx context.Context) ([]core.FixedExpense, error)
	}

	// SpendingReader returns the variable spend of a month as a positive amount.
	SpendingReader interface {
		ReadVariableSpend(ctx context.Context, period core.Period) (float64, error)
	}

	// ReportWriter publishes a computed report and returns a reference to
	// where it was written.
	ReportWriter interface {
		WriteReport(ctx context.Context, r core.Report) (ref string, err error)
	}

	// ExportTracker versions export requests per month so a worker can
	// skip requests that a newer one superseded.
	ExportTracker interface {
		NextExportVersion(ctx context.Context, period core.Period) (int64, error)
		ExportVersion(ctx context.Context, period core.Period) (int64, error)
		MarkExported(ctx context.Context, period core.Period, version int64) error
	}
)
