package repository

import (
	"context"
	"fmt"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"biographer-server/internal/models"
)

// Compile-time check
var _ MemoryCaptureRepository = (*pgMemoryCaptureRepository)(nil)

type pgMemoryCaptureRepository struct {
	db     DBTX
	logger *zap.Logger
}

// NewPgMemoryCaptureRepository creates a PostgreSQL-backed MemoryCaptureRepository.
func NewPgMemoryCaptureRepository(db DBTX, logger *zap.Logger) MemoryCaptureRepository {
	return &pgMemoryCaptureRepository{
		db:     db,
		logger: logger.Named("PgMemoryCaptureRepo"),
	}
}

func (r *pgMemoryCaptureRepository) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]models.MemoryCapture, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := `
        SELECT mc.id, mc.user_id, mc.question_id, tq.question_text, mc.answer_text, mc.created_at
        FROM memory_captures mc
        JOIN template_questions tq ON tq.id = mc.question_id
        WHERE mc.id = ANY($1)
        ORDER BY mc.created_at ASC
    `
	var captures []models.MemoryCapture
	if err := pgxscan.Select(ctx, r.db, &captures, query, ids); err != nil {
		r.logger.Error("Failed to list memory captures", zap.Int("ids", len(ids)), zap.Error(err))
		return nil, fmt.Errorf("failed to list memory captures: %w", err)
	}
	return captures, nil
}
