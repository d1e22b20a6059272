package invoices

import (
	"fmt"
	"regexp"
	"strconv"
)

// Invoice numbers are INV- followed by a zero-padded 5-digit decimal,
// strictly increasing per owner. Sequences above 99999 keep the prefix
// and grow past five digits.
const numberPrefix = "INV-"

var numberRe = regexp.MustCompile(`^INV-([0-9]+)$`)

// FormatNumber renders a sequence value as an invoice number,
// e.g. 7 -> "INV-00007".
func FormatNumber(seq int) string {
	return fmt.Sprintf("%s%05d", numberPrefix, seq)
}

// ParseNumber extracts the sequence value from a stored invoice number.
// A number that does not match the pattern returns ErrMalformedNumber.
func ParseNumber(number string) (int, error) {
	m := numberRe.FindStringSubmatch(number)
	if m == nil {
		return 0, fmt.Errorf("%w: %q", ErrMalformedNumber, number)
	}
	seq, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrMalformedNumber, number)
	}
	return seq, nil
}

// NextNumber derives the next number in an owner's sequence from the most
// recently created invoice's number. An empty latest means the owner has no
// invoices yet and the sequence starts at 1.
func NextNumber(latest string) (string, error) {
	if latest == "" {
		return FormatNumber(1), nil
	}
	seq, err := ParseNumber(latest)
	if err != nil {
		return "", err
	}
	return FormatNumber(seq + 1), nil
}
