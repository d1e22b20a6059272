package invoices

import "github.com/clientdesk/clientdesk-backend/internal/money"

// ComputeTotal sums qty * unitPriceCents over the line items. The total is
// computed once at creation time and stored on the invoice; it is never
// recomputed afterwards because line items are immutable.
func ComputeTotal(items []LineItem) money.Cents {
	var total money.Cents
	for _, li := range items {
		total += li.AmountCents()
	}
	return total
}
