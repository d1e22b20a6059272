package invoices

import (
	"errors"
	"time"

	"github.com/clientdesk/clientdesk-backend/internal/money"
)

var (
	// ErrNotFound means no invoice with that id exists for the owner.
	ErrNotFound = errors.New("invoice not found")

	// ErrNumberConflict is surfaced after every numbering attempt lost the
	// race on the (owner_id, number) unique index.
	ErrNumberConflict = errors.New("invoice number conflict")

	// ErrMalformedNumber is a data-integrity failure: the owner's latest
	// stored invoice number does not match the INV-<digits> pattern, so the
	// next number cannot be derived. The sequence is never silently reset.
	ErrMalformedNumber = errors.New("malformed invoice number")
)

type Status string

const (
	StatusDraft Status = "draft"
	StatusSent  Status = "sent"
	StatusPaid  Status = "paid"
)

// Valid reports whether s is one of the known invoice statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusSent, StatusPaid:
		return true
	}
	return false
}

// LineItem is one billable row on an invoice. Line items are frozen at
// invoice creation; there is no endpoint that mutates them afterwards.
type LineItem struct {
	Description    string      `json:"description"`
	Qty            int64       `json:"qty"`
	UnitPriceCents money.Cents `json:"unitPriceCents"`
}

// AmountCents is the row amount, qty times unit price. Both operands are
// integers, so there is no rounding involved.
func (li LineItem) AmountCents() money.Cents {
	return money.Cents(li.Qty) * li.UnitPriceCents
}

type Invoice struct {
	ID         string      `json:"id"`
	ClientID   string      `json:"clientId"`
	ProjectID  string      `json:"projectId,omitempty"`
	Number     string      `json:"number"`
	Status     Status      `json:"status"`
	LineItems  []LineItem  `json:"lineItems"`
	TotalCents money.Cents `json:"totalCents"`
	IssueDate  time.Time   `json:"issueDate"`
	DueDate    time.Time   `json:"dueDate"`
	PaidDate   *time.Time  `json:"paidDate,omitempty"`
	Notes      string      `json:"notes,omitempty"`
	CreatedAt  time.Time   `json:"createdAt"`
	UpdatedAt  time.Time   `json:"updatedAt"`
}
