package budget

import "foyer/internal/core"

const monthsPerYear = 12

// monthsPerPeriod maps each billing frequency to the number of months one
// bill covers.
var monthsPerPeriod = map[core.Frequency]float64{
	core.Monthly:   1,
	core.Quarterly: 3,
	core.Annual:    monthsPerYear,
}

// FixedExpenseMonthly normalizes a bill to its monthly equivalent.
//
// An unknown frequency is treated as monthly and reported through a
// *core.ConfigurationError so the figure can be flagged as suspect.
func FixedExpenseMonthly(e core.FixedExpense) (float64, error) {
	months, ok := monthsPerPeriod[e.Frequency]
	if !ok {
		return e.Amount, &core.ConfigurationError{
			Field: "frequency",
			Value: string(e.Frequency),
			Err:   core.ErrUnknownFrequency,
		}
	}
	return e.Amount / months, nil
}

// ProvisionMonthly returns the monthly contribution of a provision.
//
// A fixed provision contributes its FixedAmount as is. Otherwise Percentage
// is an annual rate applied to the selected revenue base, spread over twelve
// months. An unknown base contributes nothing and returns an error.
func ProvisionMonthly(p core.Provision, h core.Household) (float64, error) {
	var base float64
	switch p.BaseCalculation {
	case core.BaseFixed:
		return p.FixedAmount, nil
	case core.BaseTotal:
		base = h.Revenue1 + h.Revenue2
	case core.BaseMember1:
		base = h.Revenue1
	case core.BaseMember2:
		base = h.Revenue2
	default:
		return 0, &core.ConfigurationError{
			Field: "base_calculation",
			Value: string(p.BaseCalculation),
			Err:   core.ErrUnknownBaseCalculation,
		}
	}
	return base * p.Percentage / 100 / monthsPerYear, nil
}
