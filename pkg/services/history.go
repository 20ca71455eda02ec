package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vizquery/vizquery-engine/pkg/models"
	"github.com/vizquery/vizquery-engine/pkg/repositories"
)

// historyResultCap bounds how many rows are serialized into a history
// record; full results can be large and history is a log, not a cache.
const historyResultCap = 50

// HistoryService records and lists executed queries.
type HistoryService interface {
	// Record persists one executed query with a bounded result snapshot.
	Record(ctx context.Context, userID, profileID uuid.UUID, question, queryText string, data []map[string]any) error

	// List returns the caller's most recent records, newest first.
	List(ctx context.Context, userID uuid.UUID, limit int) ([]*models.QueryHistoryRecord, error)
}

type historyService struct {
	repo   repositories.HistoryRepository
	logger *zap.Logger
}

// NewHistoryService creates a history service.
func NewHistoryService(repo repositories.HistoryRepository, logger *zap.Logger) HistoryService {
	return &historyService{
		repo:   repo,
		logger: logger.Named("history"),
	}
}

func (s *historyService) Record(ctx context.Context, userID, profileID uuid.UUID, question, queryText string, data []map[string]any) error {
	record := &models.QueryHistoryRecord{
		UserID:          userID,
		ProfileID:       profileID,
		NaturalLanguage: question,
		QueryText:       queryText,
	}

	if len(data) > 0 {
		snapshot := data
		if len(snapshot) > historyResultCap {
			snapshot = snapshot[:historyResultCap]
		}
		serialized, err := json.Marshal(snapshot)
		if err != nil {
			return fmt.Errorf("failed to serialize result snapshot: %w", err)
		}
		str := string(serialized)
		record.Result = &str
	}

	return s.repo.Create(ctx, record)
}

func (s *historyService) List(ctx context.Context, userID uuid.UUID, limit int) ([]*models.QueryHistoryRecord, error) {
	return s.repo.ListByUser(ctx, userID, limit)
}

var _ HistoryService = (*historyService)(nil)
