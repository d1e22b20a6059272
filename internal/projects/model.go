package projects

import (
	"errors"
	"time"

	"github.com/clientdesk/clientdesk-backend/internal/money"
)

var ErrNotFound = errors.New("project not found")

type Status string

const (
	StatusActive    Status = "active"
	StatusPaused    Status = "paused"
	StatusCompleted Status = "completed"
)

func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusPaused, StatusCompleted:
		return true
	}
	return false
}

// Project carries the billing configuration for revenue aggregation:
// an optional hourly rate and an optional flat fee, in cents.
type Project struct {
	ID              string       `json:"id"`
	ClientID        string       `json:"clientId"`
	Title           string       `json:"title"`
	Description     string       `json:"description,omitempty"`
	Status          Status       `json:"status"`
	StartDate       *time.Time   `json:"startDate,omitempty"`
	DueDate         *time.Time   `json:"dueDate,omitempty"`
	HourlyRateCents *money.Cents `json:"hourlyRateCents,omitempty"`
	FlatFeeCents    *money.Cents `json:"flatFeeCents,omitempty"`
	CreatedAt       time.Time    `json:"createdAt"`
	UpdatedAt       time.Time    `json:"updatedAt"`
}

type TaskStatus string

const (
	TaskTodo  TaskStatus = "todo"
	TaskDoing TaskStatus = "doing"
	TaskDone  TaskStatus = "done"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case TaskTodo, TaskDoing, TaskDone:
		return true
	}
	return false
}

type Task struct {
	ID          string     `json:"id"`
	ProjectID   string     `json:"projectId"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Status      TaskStatus `json:"status"`
	Priority    string     `json:"priority,omitempty"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// TimeLog is one logged block of work. RateCents, when set, overrides the
// project's hourly rate for this entry only.
type TimeLog struct {
	ID        string       `json:"id"`
	ProjectID string       `json:"projectId"`
	UserID    string       `json:"userId"`
	Date      time.Time    `json:"date"`
	Minutes   int64        `json:"minutes"`
	RateCents *money.Cents `json:"rateCents,omitempty"`
	Note      string       `json:"note,omitempty"`
	CreatedAt time.Time    `json:"createdAt"`
}
