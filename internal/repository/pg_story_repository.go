package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"biographer-server/internal/models"
)

// Compile-time check
var _ StoryRepository = (*pgStoryRepository)(nil)

type pgStoryRepository struct {
	db     DBTX
	logger *zap.Logger
}

// NewPgStoryRepository creates a PostgreSQL-backed StoryRepository.
func NewPgStoryRepository(db DBTX, logger *zap.Logger) StoryRepository {
	return &pgStoryRepository{
		db:     db,
		logger: logger.Named("PgStoryRepo"),
	}
}

const storyColumns = `id, user_id, story_text, photo_url, memory_ids, context_qa,
        desired_panels, animation_style, temperature, status, error_message,
        created_at, updated_at`

func (r *pgStoryRepository) Create(ctx context.Context, story *models.Story) error {
	query := `
        INSERT INTO stories
            (id, user_id, story_text, photo_url, memory_ids, context_qa,
             desired_panels, animation_style, temperature, status, created_at, updated_at)
        VALUES
            ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
    `
	logFields := []zap.Field{zap.String("storyID", story.ID.String()), zap.String("userID", story.UserID.String())}
	r.logger.Debug("Creating story", logFields...)

	_, err := r.db.Exec(ctx, query,
		story.ID,
		story.UserID,
		story.StoryText,
		story.PhotoURL,
		story.MemoryIDs,
		story.ContextQA,
		story.DesiredPanels,
		story.AnimationStyle,
		story.Temperature,
		story.Status,
		story.CreatedAt,
		story.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create story", append(logFields, zap.Error(err))...)
		return fmt.Errorf("failed to create story: %w", err)
	}
	r.logger.Info("Story created successfully", logFields...)
	return nil
}

func (r *pgStoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Story, error) {
	query := `SELECT ` + storyColumns + ` FROM stories WHERE id = $1`
	story := &models.Story{}
	logFields := []zap.Field{zap.String("storyID", id.String())}
	r.logger.Debug("Getting story by ID", logFields...)

	err := r.db.QueryRow(ctx, query, id).Scan(
		&story.ID, &story.UserID, &story.StoryText, &story.PhotoURL,
		&story.MemoryIDs, &story.ContextQA, &story.DesiredPanels,
		&story.AnimationStyle, &story.Temperature, &story.Status,
		&story.ErrorMessage, &story.CreatedAt, &story.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Warn("Story not found by ID", logFields...)
			return nil, models.ErrStoryNotFound
		}
		r.logger.Error("Failed to get story by ID", append(logFields, zap.Error(err))...)
		return nil, fmt.Errorf("failed to get story %s: %w", id, err)
	}
	return story, nil
}

func (r *pgStoryRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]models.Story, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT ` + storyColumns + ` FROM stories WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`

	var stories []models.Story
	if err := pgxscan.Select(ctx, r.db, &stories, query, userID, limit); err != nil {
		r.logger.Error("Failed to list stories for user", zap.String("userID", userID.String()), zap.Error(err))
		return nil, fmt.Errorf("failed to list stories for user %s: %w", userID, err)
	}
	return stories, nil
}

func (r *pgStoryRepository) UpdateSettings(ctx context.Context, story *models.Story) error {
	query := `
        UPDATE stories
        SET story_text = $2, photo_url = $3, memory_ids = $4, context_qa = $5,
            desired_panels = $6, animation_style = $7, temperature = $8,
            status = $9, updated_at = $10
        WHERE id = $1
    `
	story.UpdatedAt = time.Now().UTC()
	tag, err := r.db.Exec(ctx, query,
		story.ID,
		story.StoryText,
		story.PhotoURL,
		story.MemoryIDs,
		story.ContextQA,
		story.DesiredPanels,
		story.AnimationStyle,
		story.Temperature,
		story.Status,
		story.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to update story settings", zap.String("storyID", story.ID.String()), zap.Error(err))
		return fmt.Errorf("failed to update story %s: %w", story.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrStoryNotFound
	}
	return nil
}

func (r *pgStoryRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.StoryStatus, errorMessage *string) error {
	query := `UPDATE stories SET status = $2, error_message = $3, updated_at = $4 WHERE id = $1`
	logFields := []zap.Field{zap.String("storyID", id.String()), zap.String("status", string(status))}
	r.logger.Debug("Updating story status", logFields...)

	tag, err := r.db.Exec(ctx, query, id, status, errorMessage, time.Now().UTC())
	if err != nil {
		r.logger.Error("Failed to update story status", append(logFields, zap.Error(err))...)
		return fmt.Errorf("failed to update status of story %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		r.logger.Warn("Story not found for status update", logFields...)
		return models.ErrStoryNotFound
	}
	return nil
}

func (r *pgStoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	// Panels cascade via the FK.
	tag, err := r.db.Exec(ctx, `DELETE FROM stories WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Failed to delete story", zap.String("storyID", id.String()), zap.Error(err))
		return fmt.Errorf("failed to delete story %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrStoryNotFound
	}
	r.logger.Info("Story deleted", zap.String("storyID", id.String()))
	return nil
}
