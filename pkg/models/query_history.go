package models

import (
	"time"

	"github.com/google/uuid"
)

// QueryHistoryRecord is one persisted execution: the question as asked,
// the query that ran, and the serialized result. Appends are best-effort;
// a failed write never fails the request that produced it.
type QueryHistoryRecord struct {
	ID              uuid.UUID `json:"id"`
	UserID          uuid.UUID `json:"user_id"`
	ProfileID       uuid.UUID `json:"profile_id"`
	NaturalLanguage string    `json:"natural_language_query"`
	QueryText       string    `json:"query_text"`
	Result          *string   `json:"result,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}
