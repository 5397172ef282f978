package budget

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"foyer/internal/core"
)

const eps = 1e-9

func approx(a, b float64) bool {
	return math.Abs(a-b) <= eps*math.Max(1, math.Max(math.Abs(a), math.Abs(b)))
}

func household(r1, r2 float64) core.Household {
	return core.Household{Member1Name: "Alice", Member2Name: "Bob", Revenue1: r1, Revenue2: r2, SplitMode: core.SplitByRevenue}
}

func TestResolveRatioByRevenue(t *testing.T) {
	r := ResolveRatio(household(3500, 2500))
	if !approx(r.Member1, 3500.0/6000) || !approx(r.Member2, 2500.0/6000) {
		t.Fatalf("ratio = %+v", r)
	}
}

func TestResolveRatioSumsToOne(t *testing.T) {
	pairs := [][2]float64{{3500, 2500}, {2500, 3500}, {1, 2}, {1234.56, 789.01}, {0, 5000}, {5000, 0}, {0.01, 99999.99}}
	for _, p := range pairs {
		r := ResolveRatio(household(p[0], p[1]))
		if r.Member1+r.Member2 != 1 {
			t.Errorf("%v: shares %+v sum to %v", p, r, r.Member1+r.Member2)
		}
	}
}

func TestResolveRatioNegativeRevenue(t *testing.T) {
	cases := []struct {
		name   string
		r1, r2 float64
		want   core.Ratio
	}{
		{"negative total", -100, 50, core.Ratio{Member1: 0.5, Member2: 0.5}},
		{"both negative", -100, -50, core.Ratio{Member1: 0.5, Member2: 0.5}},
		{"negative first", -100, 300, core.Ratio{Member1: -0.5, Member2: 1.5}},
		{"negative second", 300, -100, core.Ratio{Member1: 1.5, Member2: -0.5}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if r := ResolveRatio(household(tc.r1, tc.r2)); r != tc.want {
				t.Fatalf("ratio = %+v, want %+v", r, tc.want)
			}
		})
	}
}

func TestResolveRatioSumsToOneWithNegativeRevenue(t *testing.T) {
	if r := ResolveRatio(household(-3232.37, 13391.06)); r.Member1+r.Member2 != 1 {
		t.Fatalf("shares %+v sum to %v", r, r.Member1+r.Member2)
	}

	rng := rand.New(rand.NewSource(7))
	checked := 0
	for i := 0; i < 100000; i++ {
		r1 := math.Round((rng.Float64()*15000-5000)*100) / 100
		r2 := math.Round(rng.Float64()*10000*100) / 100
		total := r1 + r2
		if total <= 0 {
			continue
		}
		if m1 := r1 / total; m1 < -1 || m1 > 2 {
			continue
		}
		checked++
		r := ResolveRatio(household(r1, r2))
		if r.Member1+r.Member2 != 1 {
			t.Fatalf("%v/%v: shares %+v sum to %v", r1, r2, r, r.Member1+r.Member2)
		}
	}
	if checked == 0 {
		t.Fatalf("no household checked")
	}
}

func TestCheckRatioUnknownMode(t *testing.T) {
	h := household(3000, 1000)
	h.SplitMode = "income"
	r, err := CheckRatio(h)
	if !errors.Is(err, core.ErrUnknownSplitMode) {
		t.Fatalf("expected ErrUnknownSplitMode, got %v", err)
	}
	var cfgErr *core.ConfigurationError
	if !errors.As(err, &cfgErr) || cfgErr.Value != "income" {
		t.Fatalf("expected ConfigurationError on split_mode, got %#v", err)
	}
	if r.Member1 != 0.75 || r.Member2 != 0.25 {
		t.Fatalf("fallback ratio = %+v, want revenue split", r)
	}
	if _, err := CheckRatio(household(3000, 1000)); err != nil {
		t.Fatalf("revenue mode: unexpected error %v", err)
	}
}

func TestResolveRatioZeroRevenue(t *testing.T) {
	r := ResolveRatio(household(0, 0))
	if r != (core.Ratio{Member1: 0.5, Member2: 0.5}) {
		t.Fatalf("ratio = %+v, want 50/50", r)
	}
	if r := ResolveRatio(household(math.NaN(), 100)); r != (core.Ratio{Member1: 0.5, Member2: 0.5}) {
		t.Fatalf("NaN revenue ratio = %+v, want 50/50", r)
	}
}

func TestResolveRatioManual(t *testing.T) {
	h := household(3500, 2500)
	h.SplitMode = core.SplitManual
	h.ManualSplit1, h.ManualSplit2 = 0.7, 0.3
	if r := ResolveRatio(h); r.Member1 != 0.7 || r.Member2 != 0.3 {
		t.Fatalf("manual ratio = %+v", r)
	}
}
