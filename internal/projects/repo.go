package projects

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/clientdesk/clientdesk-backend/internal/money"
)

type Repo struct {
	db *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{db: db}
}

const projectColumns = `
id::text, client_id::text, title, coalesce(description,''), status,
start_date, due_date, hourly_rate_cents, flat_fee_cents, created_at, updated_at`

func scanProject(row interface{ Scan(...any) error }) (*Project, error) {
	var p Project
	var startDate, dueDate sql.NullTime
	var hourlyRate, flatFee sql.NullInt64

	err := row.Scan(
		&p.ID, &p.ClientID, &p.Title, &p.Description, &p.Status,
		&startDate, &dueDate, &hourlyRate, &flatFee, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if startDate.Valid {
		t := startDate.Time
		p.StartDate = &t
	}
	if dueDate.Valid {
		t := dueDate.Time
		p.DueDate = &t
	}
	if hourlyRate.Valid {
		c := money.Cents(hourlyRate.Int64)
		p.HourlyRateCents = &c
	}
	if flatFee.Valid {
		c := money.Cents(flatFee.Int64)
		p.FlatFeeCents = &c
	}
	return &p, nil
}

func (r *Repo) Create(ctx context.Context, ownerID string, p Project) (*Project, error) {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.Status == "" {
		p.Status = StatusActive
	}

	var hourlyRate, flatFee sql.NullInt64
	if p.HourlyRateCents != nil {
		hourlyRate = sql.NullInt64{Int64: int64(*p.HourlyRateCents), Valid: true}
	}
	if p.FlatFeeCents != nil {
		flatFee = sql.NullInt64{Int64: int64(*p.FlatFeeCents), Valid: true}
	}

	q := `
insert into projects (id, owner_id, client_id, title, description, status, start_date, due_date, hourly_rate_cents, flat_fee_cents)
values ($1::uuid, $2::uuid, $3::uuid, $4, nullif($5,''), $6, coalesce($7, now()), $8, $9, $10)
returning ` + projectColumns + `;`

	return scanProject(r.db.QueryRowContext(ctx, q,
		p.ID, ownerID, p.ClientID, p.Title, p.Description, p.Status,
		p.StartDate, p.DueDate, hourlyRate, flatFee,
	))
}

func (r *Repo) List(ctx context.Context, ownerID string, status Status) ([]Project, error) {
	q := `select ` + projectColumns + `
from projects
where owner_id = $1::uuid`
	args := []any{ownerID}

	if status != "" {
		args = append(args, string(status))
		q += fmt.Sprintf(" and status = $%d", len(args))
	}
	q += " order by created_at desc;"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Project, 0, 16)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (r *Repo) GetByID(ctx context.Context, ownerID, id string) (*Project, error) {
	q := `select ` + projectColumns + `
from projects
where owner_id = $1::uuid and id = $2::uuid;`

	p, err := scanProject(r.db.QueryRowContext(ctx, q, ownerID, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *Repo) CreateTask(ctx context.Context, t Task) (*Task, error) {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	if t.Status == "" {
		t.Status = TaskTodo
	}

	const q = `
insert into tasks (id, project_id, title, description, status, priority, due_date)
values ($1::uuid, $2::uuid, $3, nullif($4,''), $5, nullif($6,''), $7)
returning created_at;
`
	err := r.db.QueryRowContext(ctx, q,
		t.ID, t.ProjectID, t.Title, t.Description, t.Status, t.Priority, t.DueDate,
	).Scan(&t.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *Repo) ListTasks(ctx context.Context, projectID string) ([]Task, error) {
	const q = `
select id::text, project_id::text, title, coalesce(description,''), status, coalesce(priority,''), due_date, created_at
from tasks
where project_id = $1::uuid
order by created_at;
`
	rows, err := r.db.QueryContext(ctx, q, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Task, 0, 16)
	for rows.Next() {
		var t Task
		var dueDate sql.NullTime
		if err := rows.Scan(&t.ID, &t.ProjectID, &t.Title, &t.Description, &t.Status, &t.Priority, &dueDate, &t.CreatedAt); err != nil {
			return nil, err
		}
		if dueDate.Valid {
			d := dueDate.Time
			t.DueDate = &d
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *Repo) CreateTimeLog(ctx context.Context, l TimeLog) (*TimeLog, error) {
	if l.ID == "" {
		l.ID = uuid.New().String()
	}

	var rate sql.NullInt64
	if l.RateCents != nil {
		rate = sql.NullInt64{Int64: int64(*l.RateCents), Valid: true}
	}

	const q = `
insert into time_logs (id, project_id, user_id, date, minutes, rate_cents, note)
values ($1::uuid, $2::uuid, $3::uuid, $4, $5, $6, nullif($7,''))
returning created_at;
`
	err := r.db.QueryRowContext(ctx, q,
		l.ID, l.ProjectID, l.UserID, l.Date, l.Minutes, rate, l.Note,
	).Scan(&l.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *Repo) ListTimeLogs(ctx context.Context, projectID string) ([]TimeLog, error) {
	const q = `
select id::text, project_id::text, user_id::text, date, minutes, rate_cents, coalesce(note,''), created_at
from time_logs
where project_id = $1::uuid
order by date;
`
	rows, err := r.db.QueryContext(ctx, q, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]TimeLog, 0, 16)
	for rows.Next() {
		var l TimeLog
		var rate sql.NullInt64
		if err := rows.Scan(&l.ID, &l.ProjectID, &l.UserID, &l.Date, &l.Minutes, &rate, &l.Note, &l.CreatedAt); err != nil {
			return nil, err
		}
		if rate.Valid {
			c := money.Cents(rate.Int64)
			l.RateCents = &c
		}
		out = append(out, l)
	}
	return out, rows.Err()
}
