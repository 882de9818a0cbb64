package model

import (
	"encoding/json"
	"time"
)

// AssessmentRecord is a stored conversation assessment. Body holds the full
// assessment as JSON.
type AssessmentRecord struct {
	ID             string          `json:"id"`
	ConversationID string          `json:"conversation_id"`
	Level          string          `json:"level"`
	Score          float64         `json:"score"`
	CreatedAt      time.Time       `json:"created_at"`
	Body           json.RawMessage `json:"body,omitempty"`
}
