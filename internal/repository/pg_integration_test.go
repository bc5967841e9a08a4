package repository_test

import (
	"context"
	"errors"
	"log"
	"path/filepath"
	"testing"
	"time"

	migrate "github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	"biographer-server/internal/models"
	"biographer-server/internal/repository"
)

const migrationDir = "../../migrations"

type RepositoryIntegrationSuite struct {
	suite.Suite
	pgContainer *postgres.PostgresContainer
	dbPool      *pgxpool.Pool
	stories     repository.StoryRepository
	panels      repository.PanelRepository
	captures    repository.MemoryCaptureRepository
}

func (s *RepositoryIntegrationSuite) SetupSuite() {
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("test-db"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).WithStartupTimeout(5*time.Minute),
		),
	)
	require.NoError(s.T(), err)
	s.pgContainer = pgContainer
	pgConnStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(s.T(), err)

	dbPool, err := pgxpool.New(ctx, pgConnStr)
	require.NoError(s.T(), err)
	s.dbPool = dbPool

	absoluteMigrationDir, err := filepath.Abs(migrationDir)
	require.NoError(s.T(), err)
	sourceURL := "file://" + filepath.ToSlash(absoluteMigrationDir)
	log.Printf("Applying migrations from: %s", sourceURL)

	m, err := migrate.New(sourceURL, pgConnStr)
	require.NoError(s.T(), err, "Failed to create migrate instance")
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		require.NoError(s.T(), err, "Failed to apply migrations")
	}

	logger := zap.NewNop()
	s.stories = repository.NewPgStoryRepository(dbPool, logger)
	s.panels = repository.NewPgPanelRepository(dbPool, logger)
	s.captures = repository.NewPgMemoryCaptureRepository(dbPool, logger)
}

func (s *RepositoryIntegrationSuite) TearDownSuite() {
	if s.dbPool != nil {
		s.dbPool.Close()
	}
	if s.pgContainer != nil {
		_ = s.pgContainer.Terminate(context.Background())
	}
}

func (s *RepositoryIntegrationSuite) newStory() *models.Story {
	now := time.Now().UTC().Truncate(time.Millisecond)
	return &models.Story{
		ID:        uuid.New(),
		UserID:    uuid.New(),
		StoryText: "When I was seven we drove to the coast in my father's old car.",
		Status:    models.StatusDraft,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (s *RepositoryIntegrationSuite) TestStoryCreateAndGet() {
	ctx := context.Background()
	story := s.newStory()
	panels := 5
	style := models.StyleWatercolor
	story.DesiredPanels = &panels
	story.AnimationStyle = &style

	require.NoError(s.T(), s.stories.Create(ctx, story))

	got, err := s.stories.GetByID(ctx, story.ID)
	require.NoError(s.T(), err)
	s.Equal(story.StoryText, got.StoryText)
	s.Equal(models.StatusDraft, got.Status)
	require.NotNil(s.T(), got.DesiredPanels)
	s.Equal(5, *got.DesiredPanels)
	require.NotNil(s.T(), got.AnimationStyle)
	s.Equal(models.StyleWatercolor, *got.AnimationStyle)
	s.Nil(got.ErrorMessage)
}

func (s *RepositoryIntegrationSuite) TestStoryGetMissingReturnsNotFound() {
	_, err := s.stories.GetByID(context.Background(), uuid.New())
	s.ErrorIs(err, models.ErrStoryNotFound)
}

func (s *RepositoryIntegrationSuite) TestStoryUpdateStatusWithError() {
	ctx := context.Background()
	story := s.newStory()
	require.NoError(s.T(), s.stories.Create(ctx, story))

	reason := "scene analysis failed"
	require.NoError(s.T(), s.stories.UpdateStatus(ctx, story.ID, models.StatusFailed, &reason))

	got, err := s.stories.GetByID(ctx, story.ID)
	require.NoError(s.T(), err)
	s.Equal(models.StatusFailed, got.Status)
	require.NotNil(s.T(), got.ErrorMessage)
	s.Equal(reason, *got.ErrorMessage)

	// A successful re-run clears the stored reason.
	require.NoError(s.T(), s.stories.UpdateStatus(ctx, story.ID, models.StatusComplete, nil))
	got, err = s.stories.GetByID(ctx, story.ID)
	require.NoError(s.T(), err)
	s.Equal(models.StatusComplete, got.Status)
	s.Nil(got.ErrorMessage)
}

func (s *RepositoryIntegrationSuite) TestPanelReplaceForStory() {
	ctx := context.Background()
	story := s.newStory()
	require.NoError(s.T(), s.stories.Create(ctx, story))

	makePanels := func(texts ...string) []models.CartoonPanel {
		out := make([]models.CartoonPanel, 0, len(texts))
		for i, text := range texts {
			out = append(out, models.CartoonPanel{
				ID:         uuid.New(),
				StoryID:    story.ID,
				SceneText:  text,
				ImageURL:   "data:image/png;base64,aGVsbG8=",
				OrderIndex: i,
				CreatedAt:  time.Now().UTC(),
			})
		}
		return out
	}

	require.NoError(s.T(), s.panels.ReplaceForStory(ctx, story.ID, makePanels("first run a", "first run b", "first run c")))

	count, err := s.panels.CountByStory(ctx, story.ID)
	require.NoError(s.T(), err)
	s.Equal(3, count)

	// A second run fully replaces the first; no stale ordinals survive.
	require.NoError(s.T(), s.panels.ReplaceForStory(ctx, story.ID, makePanels("second run a", "second run b")))

	got, err := s.panels.ListByStory(ctx, story.ID)
	require.NoError(s.T(), err)
	require.Len(s.T(), got, 2)
	s.Equal("second run a", got[0].SceneText)
	s.Equal(0, got[0].OrderIndex)
	s.Equal("second run b", got[1].SceneText)
	s.Equal(1, got[1].OrderIndex)
}

func (s *RepositoryIntegrationSuite) TestPanelsCascadeOnStoryDelete() {
	ctx := context.Background()
	story := s.newStory()
	require.NoError(s.T(), s.stories.Create(ctx, story))
	require.NoError(s.T(), s.panels.ReplaceForStory(ctx, story.ID, []models.CartoonPanel{{
		ID:        uuid.New(),
		StoryID:   story.ID,
		SceneText: "only panel",
		ImageURL:  "data:image/png;base64,aGVsbG8=",
		CreatedAt: time.Now().UTC(),
	}}))

	require.NoError(s.T(), s.stories.Delete(ctx, story.ID))

	count, err := s.panels.CountByStory(ctx, story.ID)
	require.NoError(s.T(), err)
	s.Equal(0, count)
}

func (s *RepositoryIntegrationSuite) TestMemoryCapturesListByIDs() {
	ctx := context.Background()
	userID := uuid.New()
	templateID := uuid.New()
	questionID := uuid.New()
	captureID := uuid.New()

	_, err := s.dbPool.Exec(ctx,
		`INSERT INTO memory_templates (id, title) VALUES ($1, $2)`,
		templateID, "Childhood")
	require.NoError(s.T(), err)
	_, err = s.dbPool.Exec(ctx,
		`INSERT INTO template_questions (id, template_id, question_text, order_index) VALUES ($1, $2, $3, $4)`,
		questionID, templateID, "What did your childhood home smell like?", 0)
	require.NoError(s.T(), err)
	_, err = s.dbPool.Exec(ctx,
		`INSERT INTO memory_captures (id, user_id, question_id, answer_text) VALUES ($1, $2, $3, $4)`,
		captureID, userID, questionID, "Fresh bread, my grandmother baked every morning.")
	require.NoError(s.T(), err)

	got, err := s.captures.ListByIDs(ctx, []uuid.UUID{captureID, uuid.New()})
	require.NoError(s.T(), err)
	require.Len(s.T(), got, 1)
	s.Equal("What did your childhood home smell like?", got[0].QuestionText)
	s.Equal("Fresh bread, my grandmother baked every morning.", got[0].AnswerText)

	empty, err := s.captures.ListByIDs(ctx, nil)
	require.NoError(s.T(), err)
	s.Empty(empty)
}

func TestRepositoryIntegrationSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration tests in short mode")
	}
	suite.Run(t, new(RepositoryIntegrationSuite))
}
