package repository

import (
	"context"
	"fmt"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"biographer-server/internal/models"
)

// Compile-time check
var _ PanelRepository = (*pgPanelRepository)(nil)

type pgPanelRepository struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewPgPanelRepository creates a PostgreSQL-backed PanelRepository. It takes
// the pool rather than DBTX because ReplaceForStory opens its own transaction.
func NewPgPanelRepository(pool *pgxpool.Pool, logger *zap.Logger) PanelRepository {
	return &pgPanelRepository{
		pool:   pool,
		logger: logger.Named("PgPanelRepo"),
	}
}

func (r *pgPanelRepository) ReplaceForStory(ctx context.Context, storyID uuid.UUID, panels []models.CartoonPanel) error {
	logFields := []zap.Field{zap.String("storyID", storyID.String()), zap.Int("panels", len(panels))}
	r.logger.Debug("Replacing panels for story", logFields...)

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin panel transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM cartoon_panels WHERE story_id = $1`, storyID); err != nil {
		r.logger.Error("Failed to clear previous panels", append(logFields, zap.Error(err))...)
		return fmt.Errorf("failed to clear previous panels for story %s: %w", storyID, err)
	}

	insert := `
        INSERT INTO cartoon_panels (id, story_id, scene_text, image_url, order_index, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)
    `
	for _, p := range panels {
		if _, err := tx.Exec(ctx, insert, p.ID, p.StoryID, p.SceneText, p.ImageURL, p.OrderIndex, p.CreatedAt); err != nil {
			r.logger.Error("Failed to insert panel",
				append(logFields, zap.Int("orderIndex", p.OrderIndex), zap.Error(err))...)
			return fmt.Errorf("failed to insert panel %d for story %s: %w", p.OrderIndex, storyID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit panel transaction: %w", err)
	}
	r.logger.Info("Panels written", logFields...)
	return nil
}

func (r *pgPanelRepository) ListByStory(ctx context.Context, storyID uuid.UUID) ([]models.CartoonPanel, error) {
	query := `
        SELECT id, story_id, scene_text, image_url, order_index, created_at
        FROM cartoon_panels
        WHERE story_id = $1
        ORDER BY order_index ASC
    `
	var panels []models.CartoonPanel
	if err := pgxscan.Select(ctx, r.pool, &panels, query, storyID); err != nil {
		r.logger.Error("Failed to list panels", zap.String("storyID", storyID.String()), zap.Error(err))
		return nil, fmt.Errorf("failed to list panels for story %s: %w", storyID, err)
	}
	return panels, nil
}

func (r *pgPanelRepository) CountByStory(ctx context.Context, storyID uuid.UUID) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM cartoon_panels WHERE story_id = $1`, storyID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count panels for story %s: %w", storyID, err)
	}
	return count, nil
}
