package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskflow/internal/apperr"
)

func TestNewTask_Defaults(t *testing.T) {
	task, err := NewTask(CreateTaskParams{
		Title:  "Implement login",
		UserID: "u1",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, task.ID)
	assert.Equal(t, "Implement login", task.Title)
	assert.Equal(t, StatusPending, task.Status)
	assert.Equal(t, PriorityMedium, task.Priority)
	assert.Nil(t, task.Description)
	assert.Nil(t, task.DueDate)
	assert.False(t, task.CreatedAt.IsZero())
	assert.False(t, task.UpdatedAt.IsZero())
}

func TestNewTask_TrimsTitle(t *testing.T) {
	task, err := NewTask(CreateTaskParams{Title: "  fix bug  ", UserID: "u1"})
	require.NoError(t, err)
	assert.Equal(t, "fix bug", task.Title)
}

func TestNewTask_Validation(t *testing.T) {
	tests := []struct {
		name    string
		params  CreateTaskParams
		message string
	}{
		{"empty title", CreateTaskParams{Title: "", UserID: "u1"}, "title required"},
		{"whitespace title", CreateTaskParams{Title: "   \t ", UserID: "u1"}, "title required"},
		{"missing owner", CreateTaskParams{Title: "x"}, "ownerId required"},
		{"bad status", CreateTaskParams{Title: "x", UserID: "u1", Status: "done"}, "invalid status"},
		{"bad priority", CreateTaskParams{Title: "x", UserID: "u1", Priority: "urgent"}, "invalid priority"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task, err := NewTask(tt.params)
			require.Error(t, err)
			assert.Nil(t, task)
			assert.True(t, apperr.IsKind(err, apperr.Validation))
			assert.Equal(t, tt.message, err.Error())
		})
	}
}

func TestNewTask_KeepsSuppliedIdentity(t *testing.T) {
	created := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	task, err := NewTask(CreateTaskParams{
		ID:        "fixed-id",
		Title:     "x",
		UserID:    "u1",
		Status:    StatusInProgress,
		Priority:  PriorityHigh,
		CreatedAt: created,
		UpdatedAt: created,
	})
	require.NoError(t, err)
	assert.Equal(t, "fixed-id", task.ID)
	assert.Equal(t, StatusInProgress, task.Status)
	assert.Equal(t, PriorityHigh, task.Priority)
	assert.Equal(t, created, task.CreatedAt)
}

func TestUpdate_PartialFieldsCarryForward(t *testing.T) {
	desc := "original description"
	task, err := NewTask(CreateTaskParams{Title: "x", UserID: "u1", Description: &desc})
	require.NoError(t, err)

	s := StatusCompleted
	updated, err := task.Update(UpdateTaskParams{Status: &s})
	require.NoError(t, err)

	assert.Equal(t, StatusCompleted, updated.Status)
	assert.Equal(t, task.Title, updated.Title)
	assert.Equal(t, task.Description, updated.Description)
	assert.Equal(t, task.Priority, updated.Priority)
	assert.Equal(t, task.CreatedAt, updated.CreatedAt)
	assert.False(t, updated.UpdatedAt.Before(task.UpdatedAt))

	// original value untouched
	assert.Equal(t, StatusPending, task.Status)
}

func TestUpdate_IdempotentBeyondTimestamp(t *testing.T) {
	task, err := NewTask(CreateTaskParams{Title: "x", UserID: "u1"})
	require.NoError(t, err)

	p := PriorityHigh
	first, err := task.Update(UpdateTaskParams{Priority: &p})
	require.NoError(t, err)
	second, err := first.Update(UpdateTaskParams{Priority: &p})
	require.NoError(t, err)

	assert.Equal(t, first.Title, second.Title)
	assert.Equal(t, first.Status, second.Status)
	assert.Equal(t, first.Priority, second.Priority)
	assert.Equal(t, first.Description, second.Description)
	assert.Equal(t, first.DueDate, second.DueDate)
	assert.False(t, second.UpdatedAt.Before(first.UpdatedAt))
}

func TestUpdate_Validation(t *testing.T) {
	task, err := NewTask(CreateTaskParams{Title: "x", UserID: "u1"})
	require.NoError(t, err)

	empty := "  "
	_, err = task.Update(UpdateTaskParams{Title: &empty})
	assert.True(t, apperr.IsKind(err, apperr.Validation))

	bad := Status("cancelled")
	_, err = task.Update(UpdateTaskParams{Status: &bad})
	assert.True(t, apperr.IsKind(err, apperr.Validation))
}

func TestUpdate_ClearDue(t *testing.T) {
	due := time.Now().Add(24 * time.Hour)
	task, err := NewTask(CreateTaskParams{Title: "x", UserID: "u1", DueDate: &due})
	require.NoError(t, err)

	updated, err := task.Update(UpdateTaskParams{ClearDue: true})
	require.NoError(t, err)
	assert.Nil(t, updated.DueDate)
}

func TestMarkCompleted(t *testing.T) {
	task, err := NewTask(CreateTaskParams{Title: "x", UserID: "u1"})
	require.NoError(t, err)

	done := task.MarkCompleted()
	assert.Equal(t, StatusCompleted, done.Status)
	assert.Equal(t, StatusPending, task.Status)
}
