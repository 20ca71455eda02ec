package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/vizquery/vizquery-engine/pkg/database"
	"github.com/vizquery/vizquery-engine/pkg/models"
)

// HistoryRepository persists executed query records.
type HistoryRepository interface {
	// Create inserts a history record.
	Create(ctx context.Context, record *models.QueryHistoryRecord) error

	// ListByUser retrieves the most recent records for a user, newest
	// first, capped at limit.
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*models.QueryHistoryRecord, error)
}

type historyRepository struct {
	db *database.DB
}

// NewHistoryRepository creates a new history repository.
func NewHistoryRepository(db *database.DB) HistoryRepository {
	return &historyRepository{db: db}
}

func (r *historyRepository) Create(ctx context.Context, record *models.QueryHistoryRecord) error {
	query := `
		INSERT INTO query_history (user_id, profile_id, natural_language, query_text, result)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	err := r.db.QueryRow(ctx, query,
		record.UserID,
		record.ProfileID,
		record.NaturalLanguage,
		record.QueryText,
		record.Result,
	).Scan(&record.ID, &record.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create history record: %w", err)
	}
	return nil
}

func (r *historyRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*models.QueryHistoryRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, user_id, profile_id, natural_language, query_text, result, created_at
		FROM query_history
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`

	rows, err := r.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	defer rows.Close()

	var records []*models.QueryHistoryRecord
	for rows.Next() {
		var rec models.QueryHistoryRecord
		err := rows.Scan(
			&rec.ID,
			&rec.UserID,
			&rec.ProfileID,
			&rec.NaturalLanguage,
			&rec.QueryText,
			&rec.Result,
			&rec.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan history record: %w", err)
		}
		records = append(records, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating history records: %w", err)
	}
	return records, nil
}

// Ensure historyRepository implements HistoryRepository at compile time.
var _ HistoryRepository = (*historyRepository)(nil)
