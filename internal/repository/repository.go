package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"biographer-server/internal/models"
)

// DBTX is the subset of pgxpool.Pool used by read/write queries, so
// repositories can run against a pool or an open transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// StoryRepository provides access to story rows.
type StoryRepository interface {
	Create(ctx context.Context, story *models.Story) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Story, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]models.Story, error)
	UpdateSettings(ctx context.Context, story *models.Story) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.StoryStatus, errorMessage *string) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// PanelRepository provides access to cartoon panel rows. Panels are
// insert-only; a generation run replaces the story's panel set atomically.
type PanelRepository interface {
	// ReplaceForStory deletes any panels left over from a previous run and
	// inserts the new set inside one transaction.
	ReplaceForStory(ctx context.Context, storyID uuid.UUID, panels []models.CartoonPanel) error
	ListByStory(ctx context.Context, storyID uuid.UUID) ([]models.CartoonPanel, error)
	CountByStory(ctx context.Context, storyID uuid.UUID) (int, error)
}

// MemoryCaptureRepository reads the memory-capture reference data a story may
// blend into its context.
type MemoryCaptureRepository interface {
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]models.MemoryCapture, error)
}

// GenerationLeaseRepository guards against two concurrent generation runs for
// the same story.
type GenerationLeaseRepository interface {
	// Acquire takes the lease for the story, returning
	// models.ErrGenerationInProgress when another run holds it. The returned
	// attempt number increases monotonically per story.
	Acquire(ctx context.Context, storyID uuid.UUID) (attempt int64, err error)
	Release(ctx context.Context, storyID uuid.UUID) error
}
