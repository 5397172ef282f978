package budget

import (
	"testing"
	"time"

	"foyer/internal/core"
)

func TestVariableSpend(t *testing.T) {
	day := func(m time.Month, d int) time.Time { return time.Date(2025, m, d, 0, 0, 0, 0, time.UTC) }
	txs := []core.Transaction{
		{BookedOn: day(time.March, 2), Description: "Carrefour", Amount: -54.3},
		{BookedOn: day(time.March, 15), Description: "Pharmacie", Amount: -66.2},
		{BookedOn: day(time.March, 20), Description: "Remboursement", Amount: 20},
		{BookedOn: day(time.April, 1), Description: "Boulangerie", Amount: -4.1},
	}
	if got := VariableSpend(txs, core.Period{Year: 2025, Month: 3}); !approx(got, 120.5) {
		t.Fatalf("March spend = %v, want 120.5", got)
	}
	if got := VariableSpend(nil, core.Period{Year: 2025, Month: 3}); got != 0 {
		t.Fatalf("empty spend = %v", got)
	}
}
