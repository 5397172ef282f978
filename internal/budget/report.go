package budget

import "foyer/internal/core"

// BuildReport assembles the full picture of a month: both category totals,
// the balance against the household's combined revenue and every issue met
// on the way. variable is the month's variable spend as a positive amount.
func BuildReport(period core.Period, h core.Household, provisions []core.Provision, expenses []core.FixedExpense, variable float64) core.Report {
	prov := AggregateProvisions(provisions, h)
	fixed := AggregateFixedExpenses(expenses, h)

	inputs := core.BudgetInputs{
		TotalIncome:           h.Revenue1 + h.Revenue2,
		TotalProvisions:       prov.Total,
		TotalFixedExpenses:    fixed.Total,
		TotalVariableExpenses: variable,
	}

	ratio, err := CheckRatio(h)
	var issues []core.Issue
	if err != nil {
		issues = append(issues, core.Issue{ItemID: HouseholdIssueID, Err: err})
	}
	issues = append(issues, prov.Issues...)
	issues = append(issues, fixed.Issues...)

	return core.Report{
		Period:        period,
		Member1Name:   h.Member1Name,
		Member2Name:   h.Member2Name,
		Ratio:         ratio,
		Provisions:    prov,
		FixedExpenses: fixed,
		Inputs:        inputs,
		Result:        CalculateBalance(inputs, &h),
		Issues:        issues,
	}
}
