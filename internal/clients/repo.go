package clients

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("client not found")

type Repo struct {
	db *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{db: db}
}

// Client is a billable customer. Name/email/company feed the "To" block
// of invoice PDFs.
type Client struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone,omitempty"`
	Company string `json:"company"`
	Notes   string `json:"notes,omitempty"`
}

func (r *Repo) Create(ctx context.Context, ownerID string, c Client) (*Client, error) {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}

	const q = `
insert into clients (id, owner_id, name, email, phone, company, notes)
values ($1::uuid, $2::uuid, $3, $4, nullif($5,''), $6, nullif($7,''))
returning id::text;
`
	err := r.db.QueryRowContext(ctx, q, c.ID, ownerID, c.Name, c.Email, c.Phone, c.Company, c.Notes).
		Scan(&c.ID)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *Repo) List(ctx context.Context, ownerID string) ([]Client, error) {
	const q = `
select id::text, name, email, coalesce(phone,''), company, coalesce(notes,'')
from clients
where owner_id = $1::uuid
order by created_at desc;
`
	rows, err := r.db.QueryContext(ctx, q, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Client, 0, 16)
	for rows.Next() {
		var c Client
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Company, &c.Notes); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *Repo) GetByID(ctx context.Context, ownerID, id string) (*Client, error) {
	const q = `
select id::text, name, email, coalesce(phone,''), company, coalesce(notes,'')
from clients
where owner_id = $1::uuid and id = $2::uuid;
`
	var c Client
	err := r.db.QueryRowContext(ctx, q, ownerID, id).
		Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Company, &c.Notes)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}
