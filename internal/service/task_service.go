package service

import (
	"context"
	"encoding/json"
	"time"

	"taskflow/internal/apperr"
	"taskflow/internal/domain"
	"taskflow/internal/llm"
	"taskflow/internal/logger"
	"taskflow/internal/metrics"
)

// TaskStore is the persistence boundary for tasks.
type TaskStore interface {
	Create(ctx context.Context, t *domain.Task) error
	GetByID(ctx context.Context, id string) (*domain.Task, error)
	List(ctx context.Context, userID string, status domain.Status) ([]*domain.Task, error)
	Update(ctx context.Context, t *domain.Task) error
	Delete(ctx context.Context, id string) error
}

// SuggestionStore persists AI suggestion records.
type SuggestionStore interface {
	Save(ctx context.Context, s *domain.SuggestionRecord) error
	GetByTaskID(ctx context.Context, taskID string) (*domain.SuggestionRecord, error)
}

// Suggester is the boundary to the LLM provider.
type Suggester interface {
	Enabled() bool
	Generate(ctx context.Context, content string, opts llm.GenerateOptions) (*llm.Result, error)
}

// Notifier pushes task events to connected clients. May be nil.
type Notifier interface {
	NotifyTaskEvent(userID, event string, task *domain.Task)
}

// TaskService orchestrates task mutations. Creation optionally asks the
// suggester for enrichment after the task is persisted; that step can
// never fail the creation itself.
type TaskService struct {
	tasks             TaskStore
	suggestions       SuggestionStore
	suggester         Suggester
	notifier          Notifier
	suggestionTimeout time.Duration
}

func NewTaskService(tasks TaskStore, suggestions SuggestionStore, suggester Suggester, notifier Notifier, suggestionTimeout time.Duration) *TaskService {
	if suggestionTimeout <= 0 {
		suggestionTimeout = 15 * time.Second
	}
	return &TaskService{
		tasks:             tasks,
		suggestions:       suggestions,
		suggester:         suggester,
		notifier:          notifier,
		suggestionTimeout: suggestionTimeout,
	}
}

// CreateTaskInput is the presentation-boundary DTO for task creation.
type CreateTaskInput struct {
	Title              string
	Description        *string
	Status             domain.Status
	Priority           domain.Priority
	DueDate            *time.Time
	GenerateSuggestion bool
	// ProjectContext is caller-supplied context folded into the prompt.
	ProjectContext json.RawMessage
}

// CreateTaskResult is the creation outcome. Suggestion is nil whenever
// the enrichment step was skipped or failed; that is a normal outcome,
// not an error.
type CreateTaskResult struct {
	Task       *domain.Task
	Suggestion *domain.SuggestionRecord
}

// CreateTask validates and persists a task, then attempts suggestion
// enrichment within a bounded timeout. Persistence always happens
// before the suggestion attempt, and the attempt's outcome never rolls
// back or fails the creation.
func (s *TaskService) CreateTask(ctx context.Context, userID string, in CreateTaskInput) (*CreateTaskResult, error) {
	task, err := domain.NewTask(domain.CreateTaskParams{
		UserID:      userID,
		Title:       in.Title,
		Description: in.Description,
		Status:      in.Status,
		Priority:    in.Priority,
		DueDate:     in.DueDate,
	})
	if err != nil {
		return nil, err
	}

	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, err
	}

	result := &CreateTaskResult{Task: task}

	if in.GenerateSuggestion && s.suggester != nil && s.suggester.Enabled() {
		result.Suggestion = s.trySuggestion(ctx, task, in.ProjectContext)
	}

	s.notify(userID, "task_created", task)
	return result, nil
}

// trySuggestion runs the whole suggestion side-channel: prompt content
// assembly, provider call, record persistence. Every failure is logged
// and absorbed; the return value is nil in that case.
func (s *TaskService) trySuggestion(ctx context.Context, task *domain.Task, projectContext json.RawMessage) *domain.SuggestionRecord {
	sctx, cancel := context.WithTimeout(ctx, s.suggestionTimeout)
	defer cancel()

	content, err := suggestionContent(task, projectContext)
	if err != nil {
		logger.Error("suggestion content assembly failed", "task_id", task.ID, "error", err)
		metrics.SuggestionOutcomes.WithLabelValues("error").Inc()
		return nil
	}

	res, err := s.suggester.Generate(sctx, content, llm.GenerateOptions{})
	if err != nil {
		// timeout and provider errors alike: creation already succeeded
		logger.Warn("suggestion generation skipped", "task_id", task.ID, "error", err)
		metrics.SuggestionOutcomes.WithLabelValues("skipped").Inc()
		return nil
	}

	record := domain.NewSuggestionRecord(task.ID, task.UserID, res.Content, res.Model, res.Structured, res.Metadata)
	if err := s.suggestions.Save(sctx, record); err != nil {
		logger.Error("suggestion save failed", "task_id", task.ID, "error", err)
		metrics.SuggestionOutcomes.WithLabelValues("save_failed").Inc()
		return nil
	}

	metrics.SuggestionOutcomes.WithLabelValues("attached").Inc()
	return record
}

// suggestionContent builds the JSON blob embedded into the user prompt.
func suggestionContent(task *domain.Task, projectContext json.RawMessage) (string, error) {
	payload := map[string]any{
		"title":    task.Title,
		"priority": task.Priority,
		"status":   task.Status,
	}
	if task.Description != nil {
		payload["description"] = *task.Description
	}
	if task.DueDate != nil {
		payload["dueDate"] = task.DueDate.Format("2006-01-02")
	}
	if len(projectContext) > 0 {
		payload["project"] = projectContext
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (s *TaskService) GetTask(ctx context.Context, userID, taskID string) (*domain.Task, error) {
	return s.lookupOwned(ctx, userID, taskID)
}

func (s *TaskService) ListTasks(ctx context.Context, userID string, status domain.Status) ([]*domain.Task, error) {
	if status != "" && !status.Valid() {
		return nil, apperr.New(apperr.Validation, "invalid status")
	}
	return s.tasks.List(ctx, userID, status)
}

// UpdateTask applies a partial update. Lookup fails closed with
// NotFound before anything is written.
func (s *TaskService) UpdateTask(ctx context.Context, userID, taskID string, p domain.UpdateTaskParams) (*domain.Task, error) {
	task, err := s.lookupOwned(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}

	updated, err := task.Update(p)
	if err != nil {
		return nil, err
	}
	if err := s.tasks.Update(ctx, updated); err != nil {
		return nil, err
	}

	s.notify(userID, "task_updated", updated)
	return updated, nil
}

// UpdateTaskStatus is the status-only transition kept from the original
// API surface.
func (s *TaskService) UpdateTaskStatus(ctx context.Context, userID, taskID string, status domain.Status) (*domain.Task, error) {
	return s.UpdateTask(ctx, userID, taskID, domain.UpdateTaskParams{Status: &status})
}

// DeleteTask hard-deletes a task. Suggestion records for it are kept:
// they are append-only evidence of a past AI call.
func (s *TaskService) DeleteTask(ctx context.Context, userID, taskID string) error {
	task, err := s.lookupOwned(ctx, userID, taskID)
	if err != nil {
		return err
	}
	if err := s.tasks.Delete(ctx, taskID); err != nil {
		return err
	}
	s.notify(userID, "task_deleted", task)
	return nil
}

// GetSuggestion joins task ownership with the latest suggestion record.
// Absence of a record surfaces as NotFound on the suggestion resource.
func (s *TaskService) GetSuggestion(ctx context.Context, userID, taskID string) (*domain.SuggestionRecord, error) {
	if _, err := s.lookupOwned(ctx, userID, taskID); err != nil {
		return nil, err
	}
	return s.suggestions.GetByTaskID(ctx, taskID)
}

func (s *TaskService) lookupOwned(ctx context.Context, userID, taskID string) (*domain.Task, error) {
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task.UserID != userID {
		return nil, apperr.New(apperr.Forbidden, "task belongs to another user")
	}
	return task, nil
}

func (s *TaskService) notify(userID, event string, task *domain.Task) {
	if s.notifier != nil {
		s.notifier.NotifyTaskEvent(userID, event, task)
	}
}
