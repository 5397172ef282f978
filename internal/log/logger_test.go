package log

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"math"
	"strings"
	"testing"

	"foyer/internal/core"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestLoggerAddsComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelDebug, Component: ComponentBudget, JSON: true, Output: &buf})
	logger.Info("hello", FieldPeriod, "2025-03")

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("invalid JSON log line %q: %v", buf.String(), err)
	}
	if rec[FieldComponent] != ComponentBudget || rec[FieldPeriod] != "2025-03" {
		t.Fatalf("record = %v", rec)
	}

	buf.Reset()
	logger.WithComponent(ComponentCache).Debug("evicted")
	if !strings.Contains(buf.String(), `"component":"cache"`) {
		t.Fatalf("component not switched: %s", buf.String())
	}
}

func TestWithReportFields(t *testing.T) {
	r := core.Report{
		Period: core.Period{Year: 2025, Month: 3},
		Inputs: core.BudgetInputs{TotalProvisions: 10},
		Result: core.BudgetResult{AvailableBudget: -10, UtilizationRate: math.Inf(1), IsOverBudget: true},
		Issues: []core.Issue{{ItemID: "x", Err: errors.New("bad")}},
	}
	f := NewFields().WithReport(r)
	if f[FieldPeriod] != "2025-03" || f[FieldIssueCount] != 1 || f[FieldOverBudget] != true {
		t.Fatalf("fields = %v", f)
	}
	if f[FieldUtilization] != core.FormatPercent(math.Inf(1)) {
		t.Fatalf("utilization = %v", f[FieldUtilization])
	}
}

func TestLogReportBuiltWarnsPerIssue(t *testing.T) {
	var buf bytes.Buffer
	sl := NewStructuredLogger(New(Config{Level: slog.LevelInfo, Component: ComponentBudget, Output: &buf}))
	sl.LogReportBuilt(context.Background(), core.Report{
		Period: core.Period{Year: 2025, Month: 3},
		Issues: []core.Issue{{ItemID: "a", Err: errors.New("one")}, {ItemID: "b", Err: errors.New("two")}},
	})
	out := buf.String()
	if strings.Count(out, "level=WARN") != 2 || !strings.Contains(out, "item_id=b") {
		t.Fatalf("log output:\n%s", out)
	}
}

func TestContextLogger(t *testing.T) {
	logger := New(Config{Component: ComponentHTTP, Output: &bytes.Buffer{}})
	if got := FromContext(NewContext(context.Background(), logger)); got != logger {
		t.Fatalf("logger not found in context")
	}
	if FromContext(context.Background()).Component() != ComponentApp {
		t.Fatalf("fallback logger should use the app component")
	}
}

func TestLogError(t *testing.T) {
	var buf bytes.Buffer
	sl := NewStructuredLogger(New(Config{Output: &buf, JSON: true}))
	sl.LogError(context.Background(), "Request failed", errors.New("boom"), ComponentHTTP, OpRead, NewFields().WithRequestID("req-1"))

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	want := map[string]string{FieldError: "boom", FieldComponent: ComponentHTTP, FieldOperation: OpRead, FieldRequestID: "req-1", "level": "ERROR"}
	for k, v := range want {
		if entry[k] != v {
			t.Errorf("%s = %v, want %q", k, entry[k], v)
		}
	}
}
