package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"biographer-server/internal/messaging"
	"biographer-server/internal/models"
	"biographer-server/internal/repository"
)

// GenerateCartoonRequest carries the parameters of one generation run.
// PanelTexts is only honored in advanced mode, where the user authors each
// panel's scene directly.
type GenerateCartoonRequest struct {
	StoryID      uuid.UUID
	AdvancedMode bool
	PanelTexts   []string
	Panels       *int
}

// GenerateCartoonResult reports the outcome of a completed run.
type GenerateCartoonResult struct {
	StoryID uuid.UUID
	Panels  int
	Attempt int64
}

// CartoonService orchestrates the full generation pipeline: aggregate
// context, normalize the narrative, segment into scenes, render panels and
// persist the result.
type CartoonService struct {
	stories    repository.StoryRepository
	panels     repository.PanelRepository
	lease      repository.GenerationLeaseRepository
	aggregator *ContextAggregator
	normalizer *StoryNormalizer
	segmenter  *SceneSegmenter
	polisher   *ScenePolisher
	renderer   *PanelRenderer
	publisher  messaging.EventPublisher
	logger     *zap.Logger
}

func NewCartoonService(
	stories repository.StoryRepository,
	panels repository.PanelRepository,
	lease repository.GenerationLeaseRepository,
	aggregator *ContextAggregator,
	normalizer *StoryNormalizer,
	segmenter *SceneSegmenter,
	polisher *ScenePolisher,
	renderer *PanelRenderer,
	publisher messaging.EventPublisher,
	logger *zap.Logger,
) *CartoonService {
	return &CartoonService{
		stories:    stories,
		panels:     panels,
		lease:      lease,
		aggregator: aggregator,
		normalizer: normalizer,
		segmenter:  segmenter,
		polisher:   polisher,
		renderer:   renderer,
		publisher:  publisher,
		logger:     logger.Named("CartoonService"),
	}
}

// Generate runs the pipeline for one story. Exactly one run per story may be
// active; concurrent calls get models.ErrGenerationInProgress. A failed run
// leaves the story in StatusFailed with the failure reason recorded, and a
// later run starts clean.
func (s *CartoonService) Generate(ctx context.Context, req GenerateCartoonRequest) (*GenerateCartoonResult, error) {
	story, err := s.stories.GetByID(ctx, req.StoryID)
	if err != nil {
		return nil, err
	}

	attempt, err := s.lease.Acquire(ctx, story.ID)
	if err != nil {
		return nil, err
	}
	defer func() {
		// Release must run even when ctx is already canceled.
		releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if relErr := s.lease.Release(releaseCtx, story.ID); relErr != nil {
			s.logger.Error("Failed to release generation lease",
				zap.String("storyID", story.ID.String()), zap.Error(relErr))
		}
	}()

	logFields := []zap.Field{
		zap.String("storyID", story.ID.String()),
		zap.Int64("attempt", attempt),
		zap.Bool("advancedMode", req.AdvancedMode),
	}
	s.logger.Info("Generation run started", logFields...)
	startTime := time.Now()

	if err := s.setStatus(ctx, story, models.StatusProcessing, nil); err != nil {
		return nil, err
	}

	scenes, err := s.prepareScenes(ctx, story, req)
	if err != nil {
		return nil, s.fail(ctx, story, startTime, err)
	}

	results, err := s.renderer.RenderAll(ctx, scenes, story.Style(), story.PhotoURL != nil)
	if err != nil {
		return nil, s.fail(ctx, story, startTime, fmt.Errorf("%w: %w", models.ErrImageRenderFailed, err))
	}

	now := time.Now().UTC()
	panels := make([]models.CartoonPanel, 0, len(results))
	for _, res := range results {
		panels = append(panels, models.CartoonPanel{
			ID:         uuid.New(),
			StoryID:    story.ID,
			SceneText:  res.SceneText,
			ImageURL:   res.ImageURL,
			OrderIndex: res.OrderIndex,
			CreatedAt:  now,
		})
	}

	if err := s.panels.ReplaceForStory(ctx, story.ID, panels); err != nil {
		return nil, s.fail(ctx, story, startTime, err)
	}

	for _, p := range panels {
		event := messaging.PanelCreatedEvent{
			StoryID:    story.ID,
			UserID:     story.UserID,
			PanelID:    p.ID,
			OrderIndex: p.OrderIndex,
			SceneText:  p.SceneText,
			ImageURL:   p.ImageURL,
		}
		if pubErr := s.publisher.PublishPanelCreated(ctx, event); pubErr != nil {
			// Realtime delivery is best-effort; the panels are persisted.
			s.logger.Warn("Failed to publish panel event",
				zap.String("storyID", story.ID.String()),
				zap.Int("orderIndex", p.OrderIndex), zap.Error(pubErr))
		}
	}

	if err := s.setStatus(ctx, story, models.StatusComplete, nil); err != nil {
		return nil, err
	}

	duration := time.Since(startTime)
	generationRunsTotal.WithLabelValues("success").Inc()
	generationDuration.Observe(duration.Seconds())
	panelsPerRun.Observe(float64(len(panels)))
	s.logger.Info("Generation run complete",
		append(logFields, zap.Int("panels", len(panels)), zap.Duration("duration", duration))...)

	return &GenerateCartoonResult{StoryID: story.ID, Panels: len(panels), Attempt: attempt}, nil
}

// prepareScenes produces the scene texts for rendering. Advanced mode takes
// the user-authored panel texts and polishes them into connected narration;
// normal mode aggregates, normalizes and segments the story.
func (s *CartoonService) prepareScenes(ctx context.Context, story *models.Story, req GenerateCartoonRequest) ([]string, error) {
	if req.AdvancedMode {
		scenes := make([]string, 0, len(req.PanelTexts))
		for _, t := range req.PanelTexts {
			if strings.TrimSpace(t) != "" {
				scenes = append(scenes, strings.TrimSpace(t))
			}
		}
		if len(scenes) == 0 {
			return nil, fmt.Errorf("%w: advanced mode requires panel texts", models.ErrInvalidInput)
		}
		if len(scenes) > models.MaxPanels {
			scenes = scenes[:models.MaxPanels]
		}
		return s.polisher.Polish(ctx, scenes, story.Temperature), nil
	}

	panelCount := story.PanelCount()
	if req.Panels != nil {
		panelCount = *req.Panels
		if panelCount < models.MinPanels {
			panelCount = models.MinPanels
		}
		if panelCount > models.MaxPanels {
			panelCount = models.MaxPanels
		}
	}

	aggregated, err := s.aggregator.Aggregate(ctx, story)
	if err != nil {
		return nil, err
	}
	narrative := s.normalizer.Normalize(ctx, aggregated)
	return s.segmenter.Segment(ctx, narrative, story.StoryText, panelCount, story.Temperature)
}

// fail records the failure on the story and emits a failed status event.
func (s *CartoonService) fail(ctx context.Context, story *models.Story, startTime time.Time, cause error) error {
	reason := cause.Error()
	generationRunsTotal.WithLabelValues("failed").Inc()
	generationDuration.Observe(time.Since(startTime).Seconds())
	s.logger.Error("Generation run failed",
		zap.String("storyID", story.ID.String()), zap.Error(cause))

	// Record the failure with a fresh context so a canceled run still lands
	// in StatusFailed instead of being stuck in StatusProcessing.
	statusCtx := ctx
	if ctx.Err() != nil {
		var cancel context.CancelFunc
		statusCtx, cancel = context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
	}
	if err := s.setStatus(statusCtx, story, models.StatusFailed, &reason); err != nil {
		s.logger.Error("Failed to record failure status",
			zap.String("storyID", story.ID.String()), zap.Error(err))
	}
	return cause
}

func (s *CartoonService) setStatus(ctx context.Context, story *models.Story, status models.StoryStatus, errorMessage *string) error {
	if err := s.stories.UpdateStatus(ctx, story.ID, status, errorMessage); err != nil {
		return err
	}
	event := messaging.StoryStatusEvent{
		StoryID:      story.ID,
		UserID:       story.UserID,
		Status:       status,
		ErrorMessage: errorMessage,
	}
	if err := s.publisher.PublishStoryStatus(ctx, event); err != nil {
		s.logger.Warn("Failed to publish status event",
			zap.String("storyID", story.ID.String()),
			zap.String("status", string(status)), zap.Error(err))
	}
	return nil
}

// Panels returns the persisted panel set for a story in display order.
func (s *CartoonService) Panels(ctx context.Context, storyID uuid.UUID) ([]models.CartoonPanel, error) {
	if _, err := s.stories.GetByID(ctx, storyID); err != nil {
		return nil, err
	}
	return s.panels.ListByStory(ctx, storyID)
}

// IsRecoverable reports whether an error maps to a client-side condition
// rather than a pipeline defect.
func IsRecoverable(err error) bool {
	return errors.Is(err, models.ErrGenerationInProgress) ||
		errors.Is(err, models.ErrQuotaExceeded) ||
		errors.Is(err, models.ErrInvalidInput)
}
