package storage

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"testing"
	"time"

	"foyer/internal/core"
)

func newTestRepo(t *testing.T) (*SQLiteRepository, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "foyer.db")
	repo, err := NewSQLiteRepository(path)
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo, path
}

func testSetup() core.Setup {
	return core.Setup{
		Household: core.Household{Member1Name: "Alice", Member2Name: "Bob", Revenue1: 3500, Revenue2: 2500, SplitMode: core.SplitByRevenue},
		Provisions: []core.Provision{
			{ID: "vacances", Name: "Vacances", IsActive: true, BaseCalculation: core.BaseTotal, Percentage: 5, SplitMode: core.ProvisionSplitKey},
			{ID: "travaux", Name: "Travaux", IsActive: false, BaseCalculation: core.BaseFixed, FixedAmount: 200, SplitMode: core.ProvisionSplitCustom, SplitMember1: 70, SplitMember2: 30},
		},
		FixedExpenses: []core.FixedExpense{
			{ID: "loyer", Label: "Loyer", IsActive: true, Amount: 1200, Frequency: core.Monthly, SplitMode: core.ExpenseSplitKey},
			{ID: "assurance", Label: "Assurance", IsActive: true, Amount: 600, Frequency: core.Annual, SplitMode: core.ExpenseSplitManual, SplitRatio1: 0.4, SplitRatio2: 0.6},
		},
		Transactions: []core.Transaction{
			{BookedOn: time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC), Description: "Carrefour", Amount: -54.3},
			{BookedOn: time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC), Description: "Pharmacie", Amount: -66.2},
			{BookedOn: time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC), Description: "Remboursement", Amount: 15},
			{BookedOn: time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC), Description: "Boulangerie", Amount: -3.2},
		},
	}
}

func TestReadHouseholdMissing(t *testing.T) {
	repo, _ := newTestRepo(t)
	if _, err := repo.ReadHousehold(context.Background()); !errors.Is(err, core.ErrNoHousehold) {
		t.Fatalf("expected ErrNoHousehold, got %v", err)
	}
}

func TestSaveHousehold(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	h := testSetup().Household
	if err := repo.SaveHousehold(ctx, h); err != nil {
		t.Fatalf("SaveHousehold: %v", err)
	}
	h.SplitMode = core.SplitManual
	h.ManualSplit1, h.ManualSplit2 = 0.7, 0.3
	if err := repo.SaveHousehold(ctx, h); err != nil {
		t.Fatalf("SaveHousehold update: %v", err)
	}

	got, err := repo.ReadHousehold(ctx)
	if err != nil {
		t.Fatalf("ReadHousehold: %v", err)
	}
	if got != h {
		t.Fatalf("household = %+v, want %+v", got, h)
	}

	h.Member1Name = ""
	if err := repo.SaveHousehold(ctx, h); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestSeedRoundTrip(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()
	s := testSetup()
	if err := repo.Seed(ctx, s); err != nil {
		t.Fatalf("Seed: %v", err)
	}

	h, err := repo.ReadHousehold(ctx)
	if err != nil {
		t.Fatalf("ReadHousehold: %v", err)
	}
	if h != s.Household {
		t.Fatalf("household = %+v, want %+v", h, s.Household)
	}

	provisions, err := repo.ListProvisions(ctx)
	if err != nil {
		t.Fatalf("ListProvisions: %v", err)
	}
	if len(provisions) != 2 || provisions[0] != s.Provisions[0] || provisions[1] != s.Provisions[1] {
		t.Fatalf("provisions = %+v", provisions)
	}

	expenses, err := repo.ListFixedExpenses(ctx)
	if err != nil {
		t.Fatalf("ListFixedExpenses: %v", err)
	}
	if len(expenses) != 2 || expenses[0] != s.FixedExpenses[0] || expenses[1] != s.FixedExpenses[1] {
		t.Fatalf("expenses = %+v", expenses)
	}

	txs, err := repo.ListTransactions(ctx, core.Period{Year: 2025, Month: 3})
	if err != nil {
		t.Fatalf("ListTransactions: %v", err)
	}
	if len(txs) != 3 || txs[0].Description != "Carrefour" || txs[2].Description != "Pharmacie" {
		t.Fatalf("transactions = %+v", txs)
	}
}

func TestSeedReplacesConfiguration(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()
	s := testSetup()
	if err := repo.Seed(ctx, s); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	s.Provisions = s.Provisions[:1]
	s.Transactions = nil
	if err := repo.Seed(ctx, s); err != nil {
		t.Fatalf("second Seed: %v", err)
	}
	provisions, _ := repo.ListProvisions(ctx)
	if len(provisions) != 1 {
		t.Fatalf("provisions after reseed = %d, want 1", len(provisions))
	}
}

func TestSeedRejectsInvalidSetup(t *testing.T) {
	repo, _ := newTestRepo(t)
	s := testSetup()
	s.FixedExpenses[0].Frequency = "weekly"
	if err := repo.Seed(context.Background(), s); !errors.Is(err, core.ErrUnknownFrequency) {
		t.Fatalf("expected ErrUnknownFrequency, got %v", err)
	}
	if _, err := repo.ReadHousehold(context.Background()); !errors.Is(err, core.ErrNoHousehold) {
		t.Fatalf("invalid seed must not write anything, got %v", err)
	}
}

func TestReadVariableSpend(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()
	if err := repo.Seed(ctx, testSetup()); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	got, err := repo.ReadVariableSpend(ctx, core.Period{Year: 2025, Month: 3})
	if err != nil {
		t.Fatalf("ReadVariableSpend: %v", err)
	}
	if math.Abs(got-120.5) > 1e-9 {
		t.Fatalf("March spend = %v, want 120.5", got)
	}
	empty, err := repo.ReadVariableSpend(ctx, core.Period{Year: 2024, Month: 1})
	if err != nil || empty != 0 {
		t.Fatalf("empty month = %v, %v", empty, err)
	}
}

func TestUpsertAndDelete(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()
	if err := repo.Seed(ctx, testSetup()); err != nil {
		t.Fatalf("Seed: %v", err)
	}

	updated := testSetup().FixedExpenses[0]
	updated.Amount = 1250
	if err := repo.UpsertFixedExpense(ctx, updated); err != nil {
		t.Fatalf("UpsertFixedExpense: %v", err)
	}
	added := core.FixedExpense{ID: "internet", Label: "Internet", IsActive: true, Amount: 90, Frequency: core.Quarterly, SplitMode: core.ExpenseSplitEqual}
	if err := repo.UpsertFixedExpense(ctx, added); err != nil {
		t.Fatalf("UpsertFixedExpense: %v", err)
	}
	expenses, _ := repo.ListFixedExpenses(ctx)
	if len(expenses) != 3 || expenses[0].Amount != 1250 || expenses[2].ID != "internet" {
		t.Fatalf("expenses = %+v", expenses)
	}

	if err := repo.DeleteFixedExpense(ctx, "internet"); err != nil {
		t.Fatalf("DeleteFixedExpense: %v", err)
	}
	if err := repo.DeleteFixedExpense(ctx, "internet"); err == nil {
		t.Fatalf("deleting a missing expense should fail")
	}

	if err := repo.UpsertProvision(ctx, core.Provision{ID: "x", Name: "x", BaseCalculation: "net", SplitMode: core.ProvisionSplitKey}); !errors.Is(err, core.ErrUnknownBaseCalculation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if err := repo.DeleteProvision(ctx, "travaux"); err != nil {
		t.Fatalf("DeleteProvision: %v", err)
	}
}

func TestAddTransaction(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()
	id, err := repo.AddTransaction(ctx, core.Transaction{BookedOn: time.Date(2025, 5, 5, 0, 0, 0, 0, time.UTC), Description: "Cinéma", Amount: -21})
	if err != nil || id <= 0 {
		t.Fatalf("AddTransaction = %d, %v", id, err)
	}
	if _, err := repo.AddTransaction(ctx, core.Transaction{Description: "no date", Amount: -1}); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestExportVersions(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()
	p := core.Period{Year: 2025, Month: 3}

	if v, err := repo.ExportVersion(ctx, p); err != nil || v != 0 {
		t.Fatalf("initial version = %d, %v", v, err)
	}
	for want := int64(1); want <= 3; want++ {
		v, err := repo.NextExportVersion(ctx, p)
		if err != nil || v != want {
			t.Fatalf("NextExportVersion = %d, %v, want %d", v, err, want)
		}
	}
	if v, _ := repo.ExportVersion(ctx, p); v != 3 {
		t.Fatalf("ExportVersion = %d, want 3", v)
	}
	if err := repo.MarkExported(ctx, p, 3); err != nil {
		t.Fatalf("MarkExported: %v", err)
	}
}

func TestMigrationsApplied(t *testing.T) {
	_, path := newTestRepo(t)
	if err := RunMigrations(path); err != nil {
		t.Fatalf("second RunMigrations should be a no-op: %v", err)
	}
	version, dirty, err := SchemaVersion(path)
	if err != nil {
		t.Fatalf("SchemaVersion: %v", err)
	}
	if version != 1 || dirty {
		t.Fatalf("schema version = %d dirty=%v", version, dirty)
	}
}
