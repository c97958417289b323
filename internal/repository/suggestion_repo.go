package repository

import (
	"context"
	"encoding/json"

	"taskflow/internal/domain"
)

// SuggestionRepository persists AI suggestion records. Append-only:
// records are never updated or deleted, they are evidence of a past
// model call.
type SuggestionRepository struct {
	db Querier
}

func NewSuggestionRepository(db Querier) *SuggestionRepository {
	return &SuggestionRepository{db: db}
}

func (r *SuggestionRepository) Save(ctx context.Context, s *domain.SuggestionRecord) error {
	var structured []byte
	if s.Structured != nil {
		b, err := json.Marshal(s.Structured)
		if err != nil {
			return wrapDBError("save suggestion", err)
		}
		structured = b
	}

	_, err := r.db.Exec(ctx,
		`INSERT INTO suggestions (id, task_id, user_id, raw_content, structured, model, metadata, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		s.ID, s.TaskID, s.UserID, s.RawContent, structured, s.Model, []byte(s.Metadata), s.CreatedAt,
	)
	return wrapDBError("save suggestion", err)
}

// GetByTaskID returns the most recent suggestion for a task.
func (r *SuggestionRepository) GetByTaskID(ctx context.Context, taskID string) (*domain.SuggestionRecord, error) {
	row := r.db.QueryRow(ctx,
		`SELECT id, task_id, user_id, raw_content, structured, model, metadata, created_at
		 FROM suggestions
		 WHERE task_id = $1
		 ORDER BY created_at DESC
		 LIMIT 1`,
		taskID,
	)

	var (
		s          domain.SuggestionRecord
		structured []byte
		metadata   []byte
	)
	if err := row.Scan(&s.ID, &s.TaskID, &s.UserID, &s.RawContent, &structured, &s.Model, &metadata, &s.CreatedAt); err != nil {
		return nil, wrapDBError("get suggestion", err)
	}
	if len(structured) > 0 {
		var parsed domain.StructuredSuggestion
		if err := json.Unmarshal(structured, &parsed); err == nil {
			s.Structured = &parsed
		}
	}
	if len(metadata) > 0 {
		s.Metadata = json.RawMessage(metadata)
	}
	return &s, nil
}
