// Package budget is the allocation and variance engine of a two-member
// household.
//
// Every function here is pure: configuration and items come in as values,
// totals go out as values. Nothing is cached between calls, so the package
// is safe for concurrent use without locking. Amounts are carried at full
// float64 precision; rounding is left to core.FormatAmount.
package budget

import "foyer/internal/core"

var equalRatio = core.Ratio{Member1: 0.5, Member2: 0.5}

// HouseholdIssueID labels report issues raised by the household settings
// rather than by a provision or a fixed expense.
const HouseholdIssueID = "household"

// ResolveRatio derives the member shares from the household settings.
//
// In manual mode the configured fractions are returned verbatim. Otherwise
// the shares follow the revenues; when the combined revenue is not positive
// the ratio falls back to 50/50. An unknown split mode is resolved by
// revenue; use CheckRatio to get the configuration error as well.
func ResolveRatio(h core.Household) core.Ratio {
	r, _ := CheckRatio(h)
	return r
}

// CheckRatio is ResolveRatio that also reports an unknown household split
// mode as a *core.ConfigurationError. The returned ratio is usable either way.
func CheckRatio(h core.Household) (core.Ratio, error) {
	switch h.SplitMode {
	case core.SplitManual:
		return core.Ratio{Member1: h.ManualSplit1, Member2: h.ManualSplit2}, nil
	case core.SplitByRevenue:
		return revenueRatio(h.Revenue1, h.Revenue2), nil
	}
	return revenueRatio(h.Revenue1, h.Revenue2), &core.ConfigurationError{
		Field: "split_mode",
		Value: string(h.SplitMode),
		Err:   core.ErrUnknownSplitMode,
	}
}

// revenueRatio splits by revenue. Each share is recomputed as the
// complement of the other so the pair sums to exactly 1 whenever both
// shares lie within [-1, 2]. Larger shares only arise from a negative
// revenue outweighing most of the other one.
func revenueRatio(r1, r2 float64) core.Ratio {
	total := r1 + r2
	if total <= 0 || !core.ValidateAmount(total) {
		return equalRatio
	}
	m1 := r1 / total
	m2 := 1 - m1
	m1 = 1 - m2
	return core.Ratio{Member1: m1, Member2: m2}
}
