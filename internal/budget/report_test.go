package budget

import (
	"errors"
	"testing"

	"foyer/internal/core"
)

func TestBuildReport(t *testing.T) {
	period := core.Period{Year: 2025, Month: 3}
	r := BuildReport(period, household(3500, 2500), sampleProvisions(), sampleExpenses(), 120.5)

	if r.Period != period || r.Member1Name != "Alice" || r.Member2Name != "Bob" {
		t.Fatalf("header = %+v", r)
	}
	if r.Inputs.TotalIncome != 6000 || !approx(r.Inputs.TotalProvisions, 177.5) || !approx(r.Inputs.TotalFixedExpenses, 1320) {
		t.Fatalf("inputs = %+v", r.Inputs)
	}
	if !approx(r.Result.AvailableBudget, 6000-177.5-1320-120.5) {
		t.Fatalf("available = %v", r.Result.AvailableBudget)
	}
	if !r.Result.HasMemberSplit {
		t.Fatalf("report balance should carry the member split")
	}
	if len(r.Issues) != 0 {
		t.Fatalf("unexpected issues %v", r.Issues)
	}
}

func TestBuildReportCollectsIssues(t *testing.T) {
	provisions := []core.Provision{{ID: "p", IsActive: true, BaseCalculation: core.BaseFixed, FixedAmount: 10, SplitMode: "60/40"}}
	expenses := []core.FixedExpense{{ID: "e", Label: "e", IsActive: true, Amount: 10, Frequency: "weekly", SplitMode: core.ExpenseSplitKey}}
	r := BuildReport(core.Period{Year: 2025, Month: 3}, household(1000, 1000), provisions, expenses, 0)
	if len(r.Issues) != 2 {
		t.Fatalf("issues = %v", r.Issues)
	}
	if r.Issues[0].ItemID != "p" || !errors.Is(r.Issues[0].Err, core.ErrUnknownSplitMode) {
		t.Fatalf("provision issue = %v", r.Issues[0])
	}
	if r.Issues[1].ItemID != "e" || !errors.Is(r.Issues[1].Err, core.ErrUnknownFrequency) {
		t.Fatalf("expense issue = %v", r.Issues[1])
	}
}

func TestBuildReportUnknownHouseholdSplit(t *testing.T) {
	h := household(1000, 1000)
	h.SplitMode = "thirds"
	r := BuildReport(core.Period{Year: 2025, Month: 3}, h, nil, nil, 0)
	if len(r.Issues) != 1 || r.Issues[0].ItemID != HouseholdIssueID || !errors.Is(r.Issues[0].Err, core.ErrUnknownSplitMode) {
		t.Fatalf("issues = %v", r.Issues)
	}
	if r.Ratio != (core.Ratio{Member1: 0.5, Member2: 0.5}) {
		t.Fatalf("ratio = %+v", r.Ratio)
	}
}
