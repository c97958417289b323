package repository

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskflow/internal/apperr"
	"taskflow/internal/domain"
)

func sampleRecord() *domain.SuggestionRecord {
	reason := "tight deadline"
	return &domain.SuggestionRecord{
		ID:         uuid.NewString(),
		TaskID:     uuid.NewString(),
		UserID:     uuid.NewString(),
		RawContent: `{"reasoning":"tight deadline"}`,
		Structured: &domain.StructuredSuggestion{Reasoning: &reason},
		Model:      "gpt-3.5-turbo",
		Metadata:   json.RawMessage(`{"finishReason":"stop"}`),
		CreatedAt:  time.Now().UTC(),
	}
}

func TestSuggestionRepository_Save(t *testing.T) {
	t.Run("with structured payload", func(t *testing.T) {
		rec := sampleRecord()
		structured, err := json.Marshal(rec.Structured)
		require.NoError(t, err)

		mock := newMock(t)
		mock.ExpectExec(`INSERT INTO suggestions`).
			WithArgs(rec.ID, rec.TaskID, rec.UserID, rec.RawContent, structured, rec.Model, []byte(rec.Metadata), rec.CreatedAt).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		require.NoError(t, NewSuggestionRepository(mock).Save(context.Background(), rec))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("raw only", func(t *testing.T) {
		rec := sampleRecord()
		rec.Structured = nil
		rec.RawContent = "just split the work"

		mock := newMock(t)
		mock.ExpectExec(`INSERT INTO suggestions`).
			WithArgs(rec.ID, rec.TaskID, rec.UserID, rec.RawContent, []byte(nil), rec.Model, []byte(rec.Metadata), rec.CreatedAt).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		require.NoError(t, NewSuggestionRepository(mock).Save(context.Background(), rec))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestSuggestionRepository_GetByTaskID(t *testing.T) {
	rec := sampleRecord()
	cols := []string{"id", "task_id", "user_id", "raw_content", "structured", "model", "metadata", "created_at"}

	t.Run("found with structured payload", func(t *testing.T) {
		structured, err := json.Marshal(rec.Structured)
		require.NoError(t, err)

		mock := newMock(t)
		mock.ExpectQuery(`SELECT .+ FROM suggestions`).
			WithArgs(rec.TaskID).
			WillReturnRows(pgxmock.NewRows(cols).
				AddRow(rec.ID, rec.TaskID, rec.UserID, rec.RawContent, structured, rec.Model, []byte(rec.Metadata), rec.CreatedAt))

		got, err := NewSuggestionRepository(mock).GetByTaskID(context.Background(), rec.TaskID)
		require.NoError(t, err)
		assert.Equal(t, rec.ID, got.ID)
		require.NotNil(t, got.Structured)
		assert.Equal(t, "tight deadline", *got.Structured.Reasoning)
		assert.JSONEq(t, string(rec.Metadata), string(got.Metadata))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("found raw only", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery(`SELECT .+ FROM suggestions`).
			WithArgs(rec.TaskID).
			WillReturnRows(pgxmock.NewRows(cols).
				AddRow(rec.ID, rec.TaskID, rec.UserID, "plain advice", []byte(nil), rec.Model, []byte(nil), rec.CreatedAt))

		got, err := NewSuggestionRepository(mock).GetByTaskID(context.Background(), rec.TaskID)
		require.NoError(t, err)
		assert.Equal(t, "plain advice", got.RawContent)
		assert.Nil(t, got.Structured)
		assert.Empty(t, got.Metadata)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery(`SELECT .+ FROM suggestions`).
			WithArgs(rec.TaskID).
			WillReturnError(pgx.ErrNoRows)

		_, err := NewSuggestionRepository(mock).GetByTaskID(context.Background(), rec.TaskID)
		assert.True(t, apperr.IsKind(err, apperr.NotFound))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
