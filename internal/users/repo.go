package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("user not found")

type Repo struct {
	db *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{db: db}
}

// User carries the issuer identity rendered in the "From" block of
// invoice PDFs.
type User struct {
	ID           string `json:"id"`
	ExternalUID  string `json:"-"`
	Email        string `json:"email"`
	Name         string `json:"name"`
	Organization string `json:"organization,omitempty"`
}

type UpsertUser struct {
	ExternalUID  string
	Email        string
	Name         string
	Organization string
}

// EnsureUser creates or refreshes the user row for an external identity
// and returns the database id. Blank header values never overwrite
// previously stored ones.
func (r *Repo) EnsureUser(ctx context.Context, u UpsertUser) (string, error) {
	if u.ExternalUID == "" {
		return "", fmt.Errorf("external uid required")
	}

	const q = `
insert into users (external_uid, email, name, organization, updated_at)
values ($1, nullif($2,''), nullif($3,''), nullif($4,''), now())
on conflict (external_uid) do update
set
  email = coalesce(excluded.email, users.email),
  name = coalesce(excluded.name, users.name),
  organization = coalesce(excluded.organization, users.organization),
  updated_at = now()
returning id::text;
`
	var id string
	if err := r.db.QueryRowContext(ctx, q, u.ExternalUID, u.Email, u.Name, u.Organization).Scan(&id); err != nil {
		return "", err
	}
	return id, nil
}

// GetByID loads a user for PDF rendering.
func (r *Repo) GetByID(ctx context.Context, id string) (*User, error) {
	const q = `
select id::text, external_uid, coalesce(email,''), coalesce(name,''), coalesce(organization,'')
from users
where id = $1::uuid;
`
	var u User
	err := r.db.QueryRowContext(ctx, q, id).
		Scan(&u.ID, &u.ExternalUID, &u.Email, &u.Name, &u.Organization)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}
