package money

import "fmt"

// Cents is an amount of US currency as an integer number of cents.
// Monetary values are stored and transmitted as cents only; floats are
// used nowhere except at the final presentation step.
type Cents int64

// FormatUSD renders cents as a dollar string, e.g. 150000 -> "$1500.00".
func FormatUSD(c Cents) string {
	return fmt.Sprintf("$%.2f", float64(c)/100)
}
