package invoices

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/clientdesk/clientdesk-backend/internal/money"
)

// pgUniqueViolation is the Postgres error code for a unique-constraint
// violation, raised by the (owner_id, number) index when two creations
// race for the same number.
const pgUniqueViolation = "23505"

type Repo struct {
	db       *sql.DB
	attempts int
}

// NewRepo builds an invoice repository. attempts bounds the
// allocate-number-and-insert retry loop.
func NewRepo(db *sql.DB, attempts int) *Repo {
	if attempts < 1 {
		attempts = 1
	}
	return &Repo{db: db, attempts: attempts}
}

// latestNumber returns the number of the owner's most recently created
// invoice, or "" when the owner has none.
func (r *Repo) latestNumber(ctx context.Context, ownerID string) (string, error) {
	const q = `
select number
from invoices
where owner_id = $1::uuid
order by created_at desc
limit 1;
`
	var number string
	err := r.db.QueryRowContext(ctx, q, ownerID).Scan(&number)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return number, nil
}

// Create freezes the invoice total, assigns the next number in the owner's
// sequence, and inserts. Number allocation is optimistic: the unique index
// is the sole authority on uniqueness, and a losing racer re-reads the
// latest number and retries, up to the configured attempt count. With one
// interactive user per owner the collision window is effectively empty,
// which is why no counter row is reserved.
func (r *Repo) Create(ctx context.Context, ownerID string, inv Invoice) (*Invoice, error) {
	inv.TotalCents = ComputeTotal(inv.LineItems)
	inv.Status = StatusDraft

	itemsJSON, err := json.Marshal(inv.LineItems)
	if err != nil {
		return nil, fmt.Errorf("marshal line items: %w", err)
	}

	var lastErr error
	for i := 0; i < r.attempts; i++ {
		latest, err := r.latestNumber(ctx, ownerID)
		if err != nil {
			return nil, err
		}
		number, err := NextNumber(latest)
		if err != nil {
			// Fail closed: a malformed stored number is a data-integrity
			// problem, not a reason to restart the sequence at 1.
			return nil, err
		}

		const q = `
insert into invoices (id, owner_id, client_id, project_id, number, status, line_items, total_cents, issue_date, due_date, notes)
values ($1::uuid, $2::uuid, $3::uuid, nullif($4,'')::uuid, $5, $6, $7, $8, $9, $10, nullif($11,''))
returning id::text, created_at, updated_at;
`
		out := inv
		out.Number = number
		id := uuid.New().String()

		err = r.db.QueryRowContext(ctx, q,
			id, ownerID, inv.ClientID, inv.ProjectID, number, inv.Status,
			itemsJSON, int64(inv.TotalCents), inv.IssueDate, inv.DueDate, inv.Notes,
		).Scan(&out.ID, &out.CreatedAt, &out.UpdatedAt)

		if err == nil {
			return &out, nil
		}

		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			lastErr = err
			continue
		}
		return nil, err
	}

	return nil, fmt.Errorf("%w: %v", ErrNumberConflict, lastErr)
}

const selectColumns = `
id::text, client_id::text, coalesce(project_id::text,''), number, status,
line_items, total_cents, issue_date, due_date, paid_date, coalesce(notes,''),
created_at, updated_at`

func scanInvoice(row interface{ Scan(...any) error }) (*Invoice, error) {
	var inv Invoice
	var itemsJSON []byte
	var totalCents int64
	var paidDate sql.NullTime

	err := row.Scan(
		&inv.ID, &inv.ClientID, &inv.ProjectID, &inv.Number, &inv.Status,
		&itemsJSON, &totalCents, &inv.IssueDate, &inv.DueDate, &paidDate,
		&inv.Notes, &inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	inv.TotalCents = money.Cents(totalCents)
	if paidDate.Valid {
		t := paidDate.Time
		inv.PaidDate = &t
	}
	inv.LineItems = []LineItem{}
	if len(itemsJSON) > 0 {
		if err := json.Unmarshal(itemsJSON, &inv.LineItems); err != nil {
			return nil, fmt.Errorf("unmarshal line items: %w", err)
		}
	}
	return &inv, nil
}

// ListFilter narrows List results; zero values mean no filtering.
type ListFilter struct {
	Status   Status
	ClientID string
}

func (r *Repo) List(ctx context.Context, ownerID string, f ListFilter) ([]Invoice, error) {
	q := `select ` + selectColumns + `
from invoices
where owner_id = $1::uuid`
	args := []any{ownerID}

	if f.Status != "" {
		args = append(args, string(f.Status))
		q += fmt.Sprintf(" and status = $%d", len(args))
	}
	if f.ClientID != "" {
		args = append(args, f.ClientID)
		q += fmt.Sprintf(" and client_id = $%d::uuid", len(args))
	}
	q += " order by created_at desc;"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Invoice, 0, 16)
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *inv)
	}
	return out, rows.Err()
}

func (r *Repo) GetByID(ctx context.Context, ownerID, id string) (*Invoice, error) {
	q := `select ` + selectColumns + `
from invoices
where owner_id = $1::uuid and id = $2::uuid;`

	inv, err := scanInvoice(r.db.QueryRowContext(ctx, q, ownerID, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return inv, nil
}

// UpdatePatch carries the mutable invoice fields. Nil means leave as is.
type UpdatePatch struct {
	Status *Status
	Notes  *string
}

// Update applies a status/notes patch. Setting the status to paid stamps
// paid_date server-side. Core fields (number, line items, totals, dates)
// are immutable after creation and cannot be touched here.
func (r *Repo) Update(ctx context.Context, ownerID, id string, p UpdatePatch) (*Invoice, error) {
	q := `
update invoices
set
  status = coalesce($3, status),
  notes = coalesce($4, notes),
  paid_date = case when $3 = 'paid' then now() else paid_date end,
  updated_at = now()
where owner_id = $1::uuid and id = $2::uuid
returning ` + selectColumns + `;`

	var status, notes sql.NullString
	if p.Status != nil {
		status = sql.NullString{String: string(*p.Status), Valid: true}
	}
	if p.Notes != nil {
		notes = sql.NullString{String: *p.Notes, Valid: true}
	}

	inv, err := scanInvoice(r.db.QueryRowContext(ctx, q, ownerID, id, status, notes))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return inv, nil
}
