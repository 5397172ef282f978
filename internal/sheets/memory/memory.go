package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"foyer/internal/budget"
	"foyer/internal/core"
	"foyer/internal/household"
)

// Store keeps a household setup in memory. It backs the memory data
// backend and doubles as a report sink in tests.
type Store struct {
	mu           sync.RWMutex
	household    *core.Household
	provisions   []core.Provision
	expenses     []core.FixedExpense
	transactions []core.Transaction
	reports      []core.Report
	exports      map[core.Period]exportState
}

type exportState struct {
	version  int64
	exported int64
}

// New returns a store holding s. A zero Setup gives a store without a
// household.
func New(s core.Setup) *Store {
	st := &Store{
		provisions:   slices.Clone(s.Provisions),
		expenses:     slices.Clone(s.FixedExpenses),
		transactions: slices.Clone(s.Transactions),
		exports:      make(map[core.Period]exportState),
	}
	if s.Household != (core.Household{}) {
		h := s.Household
		st.household = &h
	}
	return st
}

// NewFromFile loads a household file into a new store.
func NewFromFile(path string) (*Store, error) {
	s, err := household.LoadFile(path)
	if err != nil {
		return nil, err
	}
	return New(s), nil
}

func (s *Store) ReadHousehold(_ context.Context) (core.Household, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.household == nil {
		return core.Household{}, core.ErrNoHousehold
	}
	return *s.household, nil
}

func (s *Store) ListProvisions(_ context.Context) ([]core.Provision, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.provisions), nil
}

func (s *Store) ListFixedExpenses(_ context.Context) ([]core.FixedExpense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.expenses), nil
}

func (s *Store) ReadVariableSpend(_ context.Context, period core.Period) (float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return budget.VariableSpend(s.transactions, period), nil
}

// AddTransaction appends a bank line.
func (s *Store) AddTransaction(_ context.Context, tx core.Transaction) (int64, error) {
	if err := tx.Validate(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	tx.ID = int64(len(s.transactions) + 1)
	s.transactions = append(s.transactions, tx)
	return tx.ID, nil
}

// WriteReport records the report and returns a synthetic reference.
func (s *Store) WriteReport(_ context.Context, r core.Report) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports = append(s.reports, r)
	return fmt.Sprintf("mem:%s:%d", r.Period, len(s.reports)), nil
}

// Reports returns the reports written so far.
func (s *Store) Reports() []core.Report {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.reports)
}

// NextExportVersion bumps and returns the export version of period.
func (s *Store) NextExportVersion(_ context.Context, period core.Period) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.exports[period]
	st.version++
	s.exports[period] = st
	return st.version, nil
}

// ExportVersion returns the latest requested export version of period.
func (s *Store) ExportVersion(_ context.Context, period core.Period) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.exports[period].version, nil
}

// MarkExported records a completed export unless a newer one was requested.
func (s *Store) MarkExported(_ context.Context, period core.Period, version int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.exports[period]
	if st.version == version {
		st.exported = version
		s.exports[period] = st
	}
	return nil
}

// ExportedVersion returns the last version written out for period.
func (s *Store) ExportedVersion(period core.Period) int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.exports[period].exported
}

// Ping implements the readiness check.
func (s *Store) Ping(context.Context) error { return nil }
