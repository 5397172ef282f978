package budget

import (
	"math"

	"foyer/internal/core"
)

// CalculateBalance computes what is left of the month's income once
// provisions and expenses are taken out.
//
// UtilizationRate is the spend as a percentage of income. Without income it
// is +Inf when something was spent and 0 otherwise. When h is not nil the
// available budget is also split along the household ratio.
func CalculateBalance(in core.BudgetInputs, h *core.Household) core.BudgetResult {
	spend := in.TotalProvisions + in.TotalFixedExpenses + in.TotalVariableExpenses
	available := in.TotalIncome - in.TotalProvisions - in.TotalFixedExpenses - in.TotalVariableExpenses

	res := core.BudgetResult{
		AvailableBudget: available,
		UtilizationRate: utilizationRate(spend, in.TotalIncome),
		IsOverBudget:    available < 0,
	}
	if h != nil {
		ratio := ResolveRatio(*h)
		res.Member1Available = available * ratio.Member1
		res.Member2Available = available * ratio.Member2
		res.HasMemberSplit = true
	}
	return res
}

func utilizationRate(spend, income float64) float64 {
	switch {
	case income > 0:
		return spend / income * 100
	case spend > 0:
		return math.Inf(1)
	default:
		return 0
	}
}
