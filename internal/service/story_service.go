package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"biographer-server/internal/models"
	"biographer-server/internal/repository"
)

// CreateStoryRequest carries the user-supplied fields of a new story.
type CreateStoryRequest struct {
	UserID         uuid.UUID
	StoryText      string
	PhotoURL       *string
	MemoryIDs      []uuid.UUID
	ContextQA      []models.ContextQA
	DesiredPanels  *int
	AnimationStyle *models.AnimationStyle
	Temperature    *float64
}

// StoryService manages story records and their settings.
type StoryService struct {
	stories repository.StoryRepository
	panels  repository.PanelRepository
	logger  *zap.Logger
}

func NewStoryService(stories repository.StoryRepository, panels repository.PanelRepository, logger *zap.Logger) *StoryService {
	return &StoryService{
		stories: stories,
		panels:  panels,
		logger:  logger.Named("StoryService"),
	}
}

func validateSettings(desiredPanels *int, style *models.AnimationStyle, temperature *float64) error {
	if desiredPanels != nil && (*desiredPanels < models.MinPanels || *desiredPanels > models.MaxPanels) {
		return fmt.Errorf("%w: panel count must be between %d and %d",
			models.ErrInvalidInput, models.MinPanels, models.MaxPanels)
	}
	if style != nil && !style.Valid() {
		return fmt.Errorf("%w: unknown animation style %q", models.ErrInvalidInput, *style)
	}
	if temperature != nil && (*temperature < 0 || *temperature > 2) {
		return fmt.Errorf("%w: temperature must be between 0 and 2", models.ErrInvalidInput)
	}
	return nil
}

// Create validates and persists a new story in draft status.
func (s *StoryService) Create(ctx context.Context, req CreateStoryRequest) (*models.Story, error) {
	if strings.TrimSpace(req.StoryText) == "" {
		return nil, fmt.Errorf("%w: story text is required", models.ErrInvalidInput)
	}
	if err := validateSettings(req.DesiredPanels, req.AnimationStyle, req.Temperature); err != nil {
		return nil, err
	}

	var contextQA json.RawMessage
	if len(req.ContextQA) > 0 {
		encoded, err := json.Marshal(req.ContextQA)
		if err != nil {
			return nil, fmt.Errorf("failed to encode context QA: %w", err)
		}
		contextQA = encoded
	}

	now := time.Now().UTC()
	story := &models.Story{
		ID:             uuid.New(),
		UserID:         req.UserID,
		StoryText:      req.StoryText,
		PhotoURL:       req.PhotoURL,
		MemoryIDs:      req.MemoryIDs,
		ContextQA:      contextQA,
		DesiredPanels:  req.DesiredPanels,
		AnimationStyle: req.AnimationStyle,
		Temperature:    req.Temperature,
		Status:         models.StatusDraft,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.stories.Create(ctx, story); err != nil {
		return nil, err
	}
	s.logger.Info("Story created",
		zap.String("storyID", story.ID.String()), zap.String("userID", story.UserID.String()))
	return story, nil
}

func (s *StoryService) Get(ctx context.Context, id uuid.UUID) (*models.Story, error) {
	return s.stories.GetByID(ctx, id)
}

func (s *StoryService) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]models.Story, error) {
	return s.stories.ListByUser(ctx, userID, limit)
}

// UpdateStorySettingsRequest carries partial settings updates. Nil fields
// keep their current value.
type UpdateStorySettingsRequest struct {
	StoryText      *string
	PhotoURL       *string
	MemoryIDs      []uuid.UUID
	ContextQA      []models.ContextQA
	DesiredPanels  *int
	AnimationStyle *models.AnimationStyle
	Temperature    *float64
}

// UpdateSettings applies the given changes to a story. Changing settings
// returns the story to draft so the next generation run picks them up.
func (s *StoryService) UpdateSettings(ctx context.Context, id uuid.UUID, req UpdateStorySettingsRequest) (*models.Story, error) {
	story, err := s.stories.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if story.Status == models.StatusProcessing {
		return nil, models.ErrGenerationInProgress
	}
	if err := validateSettings(req.DesiredPanels, req.AnimationStyle, req.Temperature); err != nil {
		return nil, err
	}

	if req.StoryText != nil {
		if strings.TrimSpace(*req.StoryText) == "" {
			return nil, fmt.Errorf("%w: story text is required", models.ErrInvalidInput)
		}
		story.StoryText = *req.StoryText
	}
	if req.PhotoURL != nil {
		story.PhotoURL = req.PhotoURL
	}
	if req.MemoryIDs != nil {
		story.MemoryIDs = req.MemoryIDs
	}
	if req.ContextQA != nil {
		encoded, err := json.Marshal(req.ContextQA)
		if err != nil {
			return nil, fmt.Errorf("failed to encode context QA: %w", err)
		}
		story.ContextQA = encoded
	}
	if req.DesiredPanels != nil {
		story.DesiredPanels = req.DesiredPanels
	}
	if req.AnimationStyle != nil {
		story.AnimationStyle = req.AnimationStyle
	}
	if req.Temperature != nil {
		story.Temperature = req.Temperature
	}
	story.Status = models.StatusDraft

	if err := s.stories.UpdateSettings(ctx, story); err != nil {
		return nil, err
	}
	return story, nil
}

func (s *StoryService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.stories.Delete(ctx, id)
}
