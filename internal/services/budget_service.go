package services

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"foyer/internal/budget"
	"foyer/internal/cache"
	"foyer/internal/core"
	"foyer/internal/log"
	"foyer/internal/sheets"
)

// ErrExportDisabled is returned by RequestExport when no publisher is wired.
var ErrExportDisabled = errors.New("report export is not configured")

// Reader is everything a monthly report is computed from.
type Reader interface {
	sheets.HouseholdReader
	sheets.ProvisionLister
	sheets.FixedExpenseLister
	sheets.SpendingReader
}

// ExportPublisher queues a report export for the worker.
type ExportPublisher interface {
	PublishReportExport(ctx context.Context, period core.Period, version int64) error
}

// VersionSource hands out per-month export versions.
type VersionSource interface {
	NextExportVersion(ctx context.Context, period core.Period) (int64, error)
}

// BudgetOptions configures optional collaborators of a BudgetService.
type BudgetOptions struct {
	Cache     *cache.LRUCache[core.Period, core.Report]
	Publisher ExportPublisher
	Versions  VersionSource
	Logger    *log.Logger
}

// BudgetService computes monthly reports from a data backend and queues
// their export.
type BudgetService struct {
	reader    Reader
	cache     *cache.LRUCache[core.Period, core.Report]
	publisher ExportPublisher
	versions  VersionSource
	logger    *log.StructuredLogger
}

func NewBudgetService(reader Reader, opts BudgetOptions) *BudgetService {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &BudgetService{
		reader:    reader,
		cache:     opts.Cache,
		publisher: opts.Publisher,
		versions:  opts.Versions,
		logger:    log.NewStructuredLogger(logger.WithComponent(log.ComponentBudget)),
	}
}

// MonthlyReport returns the report of period, from cache when possible.
// The four inputs are read concurrently.
func (s *BudgetService) MonthlyReport(ctx context.Context, period core.Period) (core.Report, error) {
	if err := period.Validate(); err != nil {
		return core.Report{}, err
	}
	if s.cache != nil {
		if r, ok := s.cache.Get(period); ok {
			return r, nil
		}
	}

	var (
		h          core.Household
		provisions []core.Provision
		expenses   []core.FixedExpense
		variable   float64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if h, err = s.reader.ReadHousehold(gctx); err != nil {
			return fmt.Errorf("read household: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if provisions, err = s.reader.ListProvisions(gctx); err != nil {
			return fmt.Errorf("list provisions: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if expenses, err = s.reader.ListFixedExpenses(gctx); err != nil {
			return fmt.Errorf("list fixed expenses: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if variable, err = s.reader.ReadVariableSpend(gctx, period); err != nil {
			return fmt.Errorf("read variable spend: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return core.Report{}, err
	}

	r := budget.BuildReport(period, h, provisions, expenses, variable)
	s.logger.LogReportBuilt(ctx, r)
	if s.cache != nil {
		s.cache.Set(period, r)
	}
	return r, nil
}

// Ratio returns the household and its resolved contribution ratio.
func (s *BudgetService) Ratio(ctx context.Context) (core.Household, core.Ratio, error) {
	h, err := s.reader.ReadHousehold(ctx)
	if err != nil {
		return core.Household{}, core.Ratio{}, fmt.Errorf("read household: %w", err)
	}
	return h, budget.ResolveRatio(h), nil
}

// Provisions returns the provision totals with the household ratio applied.
func (s *BudgetService) Provisions(ctx context.Context) (core.CategoryTotals, error) {
	h, err := s.reader.ReadHousehold(ctx)
	if err != nil {
		return core.CategoryTotals{}, fmt.Errorf("read household: %w", err)
	}
	provisions, err := s.reader.ListProvisions(ctx)
	if err != nil {
		return core.CategoryTotals{}, fmt.Errorf("list provisions: %w", err)
	}
	return budget.AggregateProvisions(provisions, h), nil
}

// FixedExpenses returns the fixed expense totals with the household ratio
// applied.
func (s *BudgetService) FixedExpenses(ctx context.Context) (core.CategoryTotals, error) {
	h, err := s.reader.ReadHousehold(ctx)
	if err != nil {
		return core.CategoryTotals{}, fmt.Errorf("read household: %w", err)
	}
	expenses, err := s.reader.ListFixedExpenses(ctx)
	if err != nil {
		return core.CategoryTotals{}, fmt.Errorf("list fixed expenses: %w", err)
	}
	return budget.AggregateFixedExpenses(expenses, h), nil
}

// Invalidate drops the cached report of period.
func (s *BudgetService) Invalidate(period core.Period) {
	if s.cache != nil {
		s.cache.Delete(period)
	}
}

// InvalidateAll drops every cached report, e.g. after the household changed.
func (s *BudgetService) InvalidateAll() {
	if s.cache != nil {
		s.cache.Purge()
	}
}

// RequestExport bumps the export version of period and queues it. The
// returned version identifies the request.
func (s *BudgetService) RequestExport(ctx context.Context, period core.Period) (int64, error) {
	if err := period.Validate(); err != nil {
		return 0, err
	}
	if s.publisher == nil || s.versions == nil {
		return 0, ErrExportDisabled
	}

	version, err := s.versions.NextExportVersion(ctx, period)
	if err != nil {
		return 0, fmt.Errorf("next export version: %w", err)
	}
	if err := s.publisher.PublishReportExport(ctx, period, version); err != nil {
		return 0, fmt.Errorf("publish export: %w", err)
	}
	return version, nil
}
