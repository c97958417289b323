package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskflow/internal/apperr"
	"taskflow/internal/domain"
	"taskflow/internal/llm"
)

type fakeTaskStore struct {
	tasks     map[string]*domain.Task
	createErr error
}

func newFakeTaskStore() *fakeTaskStore {
	return &fakeTaskStore{tasks: map[string]*domain.Task{}}
}

func (f *fakeTaskStore) Create(_ context.Context, t *domain.Task) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.tasks[t.ID] = t
	return nil
}

func (f *fakeTaskStore) GetByID(_ context.Context, id string) (*domain.Task, error) {
	t, ok := f.tasks[id]
	if !ok {
		return nil, apperr.New(apperr.NotFound, "task not found")
	}
	return t, nil
}

func (f *fakeTaskStore) List(_ context.Context, userID string, status domain.Status) ([]*domain.Task, error) {
	var out []*domain.Task
	for _, t := range f.tasks {
		if t.UserID != userID {
			continue
		}
		if status != "" && t.Status != status {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (f *fakeTaskStore) Update(_ context.Context, t *domain.Task) error {
	if _, ok := f.tasks[t.ID]; !ok {
		return apperr.New(apperr.NotFound, "task not found")
	}
	f.tasks[t.ID] = t
	return nil
}

func (f *fakeTaskStore) Delete(_ context.Context, id string) error {
	if _, ok := f.tasks[id]; !ok {
		return apperr.New(apperr.NotFound, "task not found")
	}
	delete(f.tasks, id)
	return nil
}

type fakeSuggestionStore struct {
	records []*domain.SuggestionRecord
	saveErr error
}

func (f *fakeSuggestionStore) Save(_ context.Context, s *domain.SuggestionRecord) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.records = append(f.records, s)
	return nil
}

func (f *fakeSuggestionStore) GetByTaskID(_ context.Context, taskID string) (*domain.SuggestionRecord, error) {
	for i := len(f.records) - 1; i >= 0; i-- {
		if f.records[i].TaskID == taskID {
			return f.records[i], nil
		}
	}
	return nil, apperr.New(apperr.NotFound, "suggestion not found")
}

type fakeSuggester struct {
	enabled bool
	delay   time.Duration
	result  *llm.Result
	err     error
	calls   int
}

func (f *fakeSuggester) Enabled() bool { return f.enabled }

func (f *fakeSuggester) Generate(ctx context.Context, _ string, _ llm.GenerateOptions) (*llm.Result, error) {
	f.calls++
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakeNotifier struct {
	events []string
}

func (f *fakeNotifier) NotifyTaskEvent(_ string, event string, _ *domain.Task) {
	f.events = append(f.events, event)
}

func newService(tasks *fakeTaskStore, suggestions *fakeSuggestionStore, suggester Suggester, notifier Notifier) *TaskService {
	return NewTaskService(tasks, suggestions, suggester, notifier, time.Second)
}

func TestCreateTask_NoSuggestionRequested(t *testing.T) {
	store := newFakeTaskStore()
	sugStore := &fakeSuggestionStore{}
	sug := &fakeSuggester{enabled: true}
	notifier := &fakeNotifier{}
	svc := newService(store, sugStore, sug, notifier)

	res, err := svc.CreateTask(context.Background(), "u1", CreateTaskInput{Title: "write docs"})
	require.NoError(t, err)

	assert.NotNil(t, res.Task)
	assert.Nil(t, res.Suggestion)
	assert.Zero(t, sug.calls)
	assert.Contains(t, store.tasks, res.Task.ID)
	assert.Equal(t, []string{"task_created"}, notifier.events)
}

func TestCreateTask_SuggestionAttached(t *testing.T) {
	store := newFakeTaskStore()
	sugStore := &fakeSuggestionStore{}
	reason := "short task"
	sug := &fakeSuggester{
		enabled: true,
		result: &llm.Result{
			Content:    `{"reasoning":"short task"}`,
			Model:      "gpt-3.5-turbo",
			Structured: &domain.StructuredSuggestion{Reasoning: &reason},
		},
	}
	svc := newService(store, sugStore, sug, &fakeNotifier{})

	res, err := svc.CreateTask(context.Background(), "u1", CreateTaskInput{
		Title:              "write docs",
		GenerateSuggestion: true,
	})
	require.NoError(t, err)

	require.NotNil(t, res.Suggestion)
	assert.Equal(t, res.Task.ID, res.Suggestion.TaskID)
	assert.Equal(t, "u1", res.Suggestion.UserID)
	require.Len(t, sugStore.records, 1)

	got, err := svc.GetSuggestion(context.Background(), "u1", res.Task.ID)
	require.NoError(t, err)
	assert.Equal(t, res.Suggestion.ID, got.ID)
}

func TestCreateTask_ProviderFailureDoesNotFailCreation(t *testing.T) {
	store := newFakeTaskStore()
	sugStore := &fakeSuggestionStore{}
	sug := &fakeSuggester{enabled: true, err: &llm.ProviderError{StatusCode: 500}}
	svc := newService(store, sugStore, sug, &fakeNotifier{})

	res, err := svc.CreateTask(context.Background(), "u1", CreateTaskInput{
		Title:              "write docs",
		GenerateSuggestion: true,
	})
	require.NoError(t, err)

	assert.NotNil(t, res.Task)
	assert.Nil(t, res.Suggestion)
	assert.Empty(t, sugStore.records)
	assert.Contains(t, store.tasks, res.Task.ID)

	_, err = svc.GetSuggestion(context.Background(), "u1", res.Task.ID)
	assert.True(t, apperr.IsKind(err, apperr.NotFound))
}

func TestCreateTask_SuggestionTimeoutAbsorbed(t *testing.T) {
	store := newFakeTaskStore()
	sug := &fakeSuggester{enabled: true, delay: 500 * time.Millisecond}
	svc := NewTaskService(store, &fakeSuggestionStore{}, sug, nil, 20*time.Millisecond)

	start := time.Now()
	res, err := svc.CreateTask(context.Background(), "u1", CreateTaskInput{
		Title:              "slow one",
		GenerateSuggestion: true,
	})
	require.NoError(t, err)
	assert.Nil(t, res.Suggestion)
	assert.Less(t, time.Since(start), 400*time.Millisecond)
}

func TestCreateTask_SuggestionSaveFailureAbsorbed(t *testing.T) {
	store := newFakeTaskStore()
	sugStore := &fakeSuggestionStore{saveErr: errors.New("db down")}
	sug := &fakeSuggester{enabled: true, result: &llm.Result{Content: "try harder", Model: "gpt-3.5-turbo"}}
	svc := newService(store, sugStore, sug, &fakeNotifier{})

	res, err := svc.CreateTask(context.Background(), "u1", CreateTaskInput{
		Title:              "write docs",
		GenerateSuggestion: true,
	})
	require.NoError(t, err)
	assert.Nil(t, res.Suggestion)
	assert.Empty(t, sugStore.records)
}

func TestCreateTask_SuggesterDisabled(t *testing.T) {
	store := newFakeTaskStore()
	sug := &fakeSuggester{enabled: false}
	svc := newService(store, &fakeSuggestionStore{}, sug, nil)

	res, err := svc.CreateTask(context.Background(), "u1", CreateTaskInput{
		Title:              "write docs",
		GenerateSuggestion: true,
	})
	require.NoError(t, err)
	assert.Nil(t, res.Suggestion)
	assert.Zero(t, sug.calls)
}

func TestCreateTask_ValidationFailsBeforePersist(t *testing.T) {
	store := newFakeTaskStore()
	sug := &fakeSuggester{enabled: true}
	svc := newService(store, &fakeSuggestionStore{}, sug, nil)

	_, err := svc.CreateTask(context.Background(), "u1", CreateTaskInput{Title: "  "})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.Validation))
	assert.Empty(t, store.tasks)
	assert.Zero(t, sug.calls)
}

func TestListTasks_InvalidFilter(t *testing.T) {
	svc := newService(newFakeTaskStore(), &fakeSuggestionStore{}, nil, nil)
	_, err := svc.ListTasks(context.Background(), "u1", domain.Status("archived"))
	assert.True(t, apperr.IsKind(err, apperr.Validation))
}

func TestUpdateTask(t *testing.T) {
	store := newFakeTaskStore()
	notifier := &fakeNotifier{}
	svc := newService(store, &fakeSuggestionStore{}, nil, notifier)

	res, err := svc.CreateTask(context.Background(), "u1", CreateTaskInput{Title: "old"})
	require.NoError(t, err)

	title := "new"
	updated, err := svc.UpdateTask(context.Background(), "u1", res.Task.ID, domain.UpdateTaskParams{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "new", updated.Title)
	assert.Equal(t, "new", store.tasks[res.Task.ID].Title)
	assert.Equal(t, []string{"task_created", "task_updated"}, notifier.events)
}

func TestUpdateTask_NotFound(t *testing.T) {
	svc := newService(newFakeTaskStore(), &fakeSuggestionStore{}, nil, nil)
	title := "x"
	_, err := svc.UpdateTask(context.Background(), "u1", "missing", domain.UpdateTaskParams{Title: &title})
	assert.True(t, apperr.IsKind(err, apperr.NotFound))
}

func TestUpdateTaskStatus(t *testing.T) {
	store := newFakeTaskStore()
	svc := newService(store, &fakeSuggestionStore{}, nil, nil)

	res, err := svc.CreateTask(context.Background(), "u1", CreateTaskInput{Title: "x"})
	require.NoError(t, err)

	updated, err := svc.UpdateTaskStatus(context.Background(), "u1", res.Task.ID, domain.StatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, updated.Status)
}

func TestOwnership_Forbidden(t *testing.T) {
	store := newFakeTaskStore()
	svc := newService(store, &fakeSuggestionStore{}, nil, nil)

	res, err := svc.CreateTask(context.Background(), "u1", CreateTaskInput{Title: "mine"})
	require.NoError(t, err)

	_, err = svc.GetTask(context.Background(), "u2", res.Task.ID)
	assert.True(t, apperr.IsKind(err, apperr.Forbidden))

	err = svc.DeleteTask(context.Background(), "u2", res.Task.ID)
	assert.True(t, apperr.IsKind(err, apperr.Forbidden))
	assert.Contains(t, store.tasks, res.Task.ID)
}

func TestDeleteTask_KeepsSuggestionRecords(t *testing.T) {
	store := newFakeTaskStore()
	sugStore := &fakeSuggestionStore{}
	sug := &fakeSuggester{enabled: true, result: &llm.Result{Content: "raw", Model: "gpt-3.5-turbo"}}
	notifier := &fakeNotifier{}
	svc := newService(store, sugStore, sug, notifier)

	res, err := svc.CreateTask(context.Background(), "u1", CreateTaskInput{
		Title:              "short lived",
		GenerateSuggestion: true,
	})
	require.NoError(t, err)
	require.Len(t, sugStore.records, 1)

	require.NoError(t, svc.DeleteTask(context.Background(), "u1", res.Task.ID))
	assert.NotContains(t, store.tasks, res.Task.ID)
	assert.Len(t, sugStore.records, 1)
	assert.Equal(t, []string{"task_created", "task_deleted"}, notifier.events)
}
