package budget

import "foyer/internal/core"

// VariableSpend returns the outflow booked during period as a positive
// amount. Refunds and income lines are ignored.
func VariableSpend(txs []core.Transaction, period core.Period) float64 {
	var total float64
	for _, tx := range txs {
		if tx.IsSpend() && period.Contains(tx.BookedOn) {
			total -= tx.Amount
		}
	}
	return total
}
