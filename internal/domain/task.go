package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"taskflow/internal/apperr"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

type Task struct {
	ID          string     `db:"id" json:"id"`
	UserID      string     `db:"user_id" json:"user_id"`
	Title       string     `db:"title" json:"title"`
	Description *string    `db:"description" json:"description"`
	Status      Status     `db:"status" json:"status"`
	Priority    Priority   `db:"priority" json:"priority"`
	DueDate     *time.Time `db:"due_date" json:"due_date"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}

// CreateTaskParams carries inputs for NewTask. Zero values fall back to
// defaults: status pending, priority medium, generated id and timestamps.
type CreateTaskParams struct {
	ID          string
	UserID      string
	Title       string
	Description *string
	Status      Status
	Priority    Priority
	DueDate     *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewTask validates params and builds a Task. It never returns a
// partially valid task.
func NewTask(p CreateTaskParams) (*Task, error) {
	title := strings.TrimSpace(p.Title)
	if title == "" {
		return nil, apperr.New(apperr.Validation, "title required")
	}
	if p.UserID == "" {
		return nil, apperr.New(apperr.Validation, "ownerId required")
	}

	status := p.Status
	if status == "" {
		status = StatusPending
	}
	if !status.Valid() {
		return nil, apperr.New(apperr.Validation, "invalid status")
	}

	priority := p.Priority
	if priority == "" {
		priority = PriorityMedium
	}
	if !priority.Valid() {
		return nil, apperr.New(apperr.Validation, "invalid priority")
	}

	id := p.ID
	if id == "" {
		id = uuid.NewString()
	}
	now := time.Now().UTC()
	createdAt := p.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}
	updatedAt := p.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = now
	}

	return &Task{
		ID:          id,
		UserID:      p.UserID,
		Title:       title,
		Description: p.Description,
		Status:      status,
		Priority:    priority,
		DueDate:     p.DueDate,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}, nil
}

// UpdateTaskParams holds a partial update; nil fields are carried over.
type UpdateTaskParams struct {
	Title       *string
	Description *string
	Status      *Status
	Priority    *Priority
	DueDate     *time.Time
	ClearDue    bool
}

// Update returns a new Task with the given fields replaced and
// UpdatedAt advanced. The receiver is not mutated.
func (t Task) Update(p UpdateTaskParams) (*Task, error) {
	next := t

	if p.Title != nil {
		title := strings.TrimSpace(*p.Title)
		if title == "" {
			return nil, apperr.New(apperr.Validation, "title required")
		}
		next.Title = title
	}
	if p.Description != nil {
		next.Description = p.Description
	}
	if p.Status != nil {
		if !p.Status.Valid() {
			return nil, apperr.New(apperr.Validation, "invalid status")
		}
		next.Status = *p.Status
	}
	if p.Priority != nil {
		if !p.Priority.Valid() {
			return nil, apperr.New(apperr.Validation, "invalid priority")
		}
		next.Priority = *p.Priority
	}
	if p.ClearDue {
		next.DueDate = nil
	} else if p.DueDate != nil {
		next.DueDate = p.DueDate
	}

	// updated_at never goes backwards even if the clock does
	now := time.Now().UTC()
	if now.Before(t.UpdatedAt) {
		now = t.UpdatedAt
	}
	next.UpdatedAt = now
	return &next, nil
}

// MarkCompleted is a shortcut for the transition to completed.
func (t Task) MarkCompleted() *Task {
	s := StatusCompleted
	next, _ := t.Update(UpdateTaskParams{Status: &s})
	return next
}
