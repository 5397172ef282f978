package household

import (
	"errors"
	"strings"
	"testing"
	"time"

	"foyer/internal/core"
)

func TestLoadFile(t *testing.T) {
	s, err := LoadFile("testdata/household.yaml")
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	h := s.Household
	if h.Member1Name != "Alice" || h.Revenue1 != 3500 || h.Revenue2 != 2500 || h.SplitMode != core.SplitByRevenue {
		t.Fatalf("household = %+v", h)
	}
	if len(s.Provisions) != 3 || !s.Provisions[0].IsActive || s.Provisions[2].IsActive {
		t.Fatalf("provisions = %+v", s.Provisions)
	}
	if p := s.Provisions[2]; p.SplitMode != core.ProvisionSplitCustom || p.SplitMember1 != 70 || p.SplitMember2 != 30 {
		t.Fatalf("custom provision = %+v", p)
	}
	if e := s.FixedExpenses[3]; e.SplitMode != core.ExpenseSplitManual || e.SplitRatio1 != 0.25 || e.SplitRatio2 != 0.75 {
		t.Fatalf("manual expense = %+v", e)
	}
	if len(s.Transactions) != 4 {
		t.Fatalf("transactions = %d", len(s.Transactions))
	}
	if tx := s.Transactions[1]; tx.Amount != -66.2 || !tx.BookedOn.Equal(time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("formatted amount not parsed: %+v", tx)
	}
}

func TestLoadRejectsBadInput(t *testing.T) {
	cases := []struct {
		name string
		yaml string
		want string
	}{
		{"empty", "", "empty"},
		{"unknown field", "household:\n  member1: A\n  member2: B\n  colour: red\n", "colour"},
		{"bad amount", "household:\n  member1: A\n  member2: B\n  revenue1: lots\n", "invalid amount"},
		{"bad shares", "household:\n  member1: A\n  member2: B\nfixed_expenses:\n  - id: x\n    label: x\n    amount: 1\n    frequency: monthly\n    split: manual\n    shares: [1]\n", "want two values"},
		{"bad date", "household:\n  member1: A\n  member2: B\ntransactions:\n  - date: 03/02/2025\n    description: x\n    amount: -1\n", "invalid date"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tc.yaml))
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error = %v, want it to mention %q", err, tc.want)
			}
		})
	}
}

func TestLoadValidatesDomain(t *testing.T) {
	doc := "household:\n  member1: A\n  member2: B\nfixed_expenses:\n  - id: x\n    label: x\n    amount: 10\n    frequency: weekly\n    split: key\n"
	if _, err := Load(strings.NewReader(doc)); !errors.Is(err, core.ErrUnknownFrequency) {
		t.Fatalf("expected ErrUnknownFrequency, got %v", err)
	}
}
