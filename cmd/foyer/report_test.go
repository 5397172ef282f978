package main

import (
	"bytes"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"

	"foyer/internal/core"
)

func testReport() core.Report {
	return core.Report{
		Period:      core.Period{Year: 2025, Month: 3},
		Member1Name: "Alice",
		Member2Name: "Bob",
		Ratio:       core.Ratio{Member1: 0.6, Member2: 0.4},
		FixedExpenses: core.CategoryTotals{
			Total: 1200, Member1Total: 720, Member2Total: 480, Count: 1,
			Lines: []core.Line{{ID: "loyer", Label: "Loyer", Monthly: 1200, Member1: 720, Member2: 480}},
		},
		Inputs: core.BudgetInputs{TotalIncome: 0, TotalFixedExpenses: 1200, TotalVariableExpenses: 50},
		Result: core.BudgetResult{AvailableBudget: -1250, UtilizationRate: math.Inf(1), IsOverBudget: true},
		Issues: []core.Issue{{ItemID: "box", Err: core.ErrUnknownFrequency}},
	}
}

func TestWriteReport(t *testing.T) {
	var buf bytes.Buffer
	writeReport(&buf, testReport())
	out := buf.String()

	for _, want := range []string{
		"2025-03",
		"Alice",
		"Loyer",
		core.FormatAmount(1200),
		core.FormatAmount(-1250),
		"∞",
		"Budget dépassé",
		"box",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Disponible Alice") {
		t.Errorf("member split shown without HasMemberSplit:\n%s", out)
	}
}

func TestWriteReportMemberSplit(t *testing.T) {
	r := testReport()
	r.Result = core.BudgetResult{AvailableBudget: 100, UtilizationRate: 50, HasMemberSplit: true, Member1Available: 60, Member2Available: 40}
	r.Issues = nil

	var buf bytes.Buffer
	writeReport(&buf, r)
	out := buf.String()
	if !strings.Contains(out, "Disponible Bob") {
		t.Errorf("expected member availability:\n%s", out)
	}
	if strings.Contains(out, "Budget dépassé") {
		t.Errorf("unexpected over-budget alert:\n%s", out)
	}
}

func TestPeriodFlags(t *testing.T) {
	now := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	cases := []struct {
		name    string
		args    []string
		want    core.Period
		wantErr bool
	}{
		{"defaults to now", nil, core.Period{Year: 2025, Month: 6}, false},
		{"month only", []string{"--month", "2"}, core.Period{Year: 2025, Month: 2}, false},
		{"both", []string{"--year", "2024", "--month", "12"}, core.Period{Year: 2024, Month: 12}, false},
		{"month out of range", []string{"--month", "13"}, core.Period{}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var year, month int
			cmd := &cobra.Command{Use: "x"}
			cmd.Flags().IntVar(&year, "year", 0, "")
			cmd.Flags().IntVar(&month, "month", 0, "")
			if err := cmd.Flags().Parse(tc.args); err != nil {
				t.Fatalf("parse flags: %v", err)
			}

			got, err := periodFlags(cmd, year, month, now)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
		})
	}
}
