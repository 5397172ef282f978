package budget

import "foyer/internal/core"

// AggregateProvisions sums the monthly contribution of the active
// provisions and its split between the members.
//
// The household ratio is resolved once for the whole list. Items with an
// unknown base or split mode still contribute their fallback figures and
// are listed in Issues. A nil or empty list yields zero totals.
func AggregateProvisions(items []core.Provision, h core.Household) core.CategoryTotals {
	ratio := ResolveRatio(h)
	return aggregate(items,
		func(p core.Provision) bool { return p.IsActive },
		func(p core.Provision) (core.Line, []error) {
			monthly, baseErr := ProvisionMonthly(p, h)
			split, splitErr := SplitProvision(monthly, p, ratio)
			return core.Line{
				ID:      p.ID,
				Label:   p.Name,
				Monthly: monthly,
				Member1: split.Member1,
				Member2: split.Member2,
			}, nonNil(baseErr, splitErr)
		})
}

// AggregateFixedExpenses sums the monthly equivalent of the active bills
// and its split between the members. It follows the same rules as
// AggregateProvisions.
func AggregateFixedExpenses(items []core.FixedExpense, h core.Household) core.CategoryTotals {
	ratio := ResolveRatio(h)
	return aggregate(items,
		func(e core.FixedExpense) bool { return e.IsActive },
		func(e core.FixedExpense) (core.Line, []error) {
			monthly, freqErr := FixedExpenseMonthly(e)
			split, splitErr := SplitFixedExpense(monthly, e, ratio)
			return core.Line{
				ID:      e.ID,
				Label:   e.Label,
				Monthly: monthly,
				Member1: split.Member1,
				Member2: split.Member2,
			}, nonNil(freqErr, splitErr)
		})
}

func aggregate[T any](items []T, active func(T) bool, measure func(T) (core.Line, []error)) core.CategoryTotals {
	var totals core.CategoryTotals
	for _, item := range items {
		if !active(item) {
			continue
		}
		line, errs := measure(item)
		totals.Total += line.Monthly
		totals.Member1Total += line.Member1
		totals.Member2Total += line.Member2
		totals.Count++
		totals.Lines = append(totals.Lines, line)
		for _, err := range errs {
			totals.Issues = append(totals.Issues, core.Issue{ItemID: line.ID, Err: err})
		}
	}
	return totals
}

func nonNil(errs ...error) []error {
	var out []error
	for _, err := range errs {
		if err != nil {
			out = append(out, err)
		}
	}
	return out
}
