package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// StructuredSuggestion is the shape the model is asked to answer with.
// Present on a record only when the raw response parsed as strict JSON.
type StructuredSuggestion struct {
	SuggestedDescription *string `json:"suggestedDescription,omitempty"`
	SuggestedPriority    *string `json:"suggestedPriority,omitempty"`
	SuggestedStatus      *string `json:"suggestedStatus,omitempty"`
	SuggestedDueDate     *string `json:"suggestedDueDate,omitempty"`
	Reasoning            *string `json:"reasoning,omitempty"`
}

// SuggestionRecord is an append-only record of one AI call, correlated
// to the originating task by TaskID but owning its own lifecycle.
type SuggestionRecord struct {
	ID         string                `db:"id" json:"id"`
	TaskID     string                `db:"task_id" json:"task_id"`
	UserID     string                `db:"user_id" json:"user_id"`
	RawContent string                `db:"raw_content" json:"raw_content"`
	Structured *StructuredSuggestion `db:"structured" json:"structured"`
	Model      string                `db:"model" json:"model"`
	Metadata   json.RawMessage       `db:"metadata" json:"metadata,omitempty"`
	CreatedAt  time.Time             `db:"created_at" json:"created_at"`
}

func NewSuggestionRecord(taskID, userID, rawContent, model string, structured *StructuredSuggestion, metadata json.RawMessage) *SuggestionRecord {
	return &SuggestionRecord{
		ID:         uuid.NewString(),
		TaskID:     taskID,
		UserID:     userID,
		RawContent: rawContent,
		Structured: structured,
		Model:      model,
		Metadata:   metadata,
		CreatedAt:  time.Now().UTC(),
	}
}
