package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"biographer-server/internal/models"
	"biographer-server/internal/repository"
)

// MockStoryRepository is a testify mock for repository.StoryRepository.
type MockStoryRepository struct {
	mock.Mock
}

var _ repository.StoryRepository = (*MockStoryRepository)(nil)

func (m *MockStoryRepository) Create(ctx context.Context, story *models.Story) error {
	args := m.Called(ctx, story)
	return args.Error(0)
}

func (m *MockStoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Story, error) {
	args := m.Called(ctx, id)
	if story, ok := args.Get(0).(*models.Story); ok {
		return story, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStoryRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]models.Story, error) {
	args := m.Called(ctx, userID, limit)
	if stories, ok := args.Get(0).([]models.Story); ok {
		return stories, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStoryRepository) UpdateSettings(ctx context.Context, story *models.Story) error {
	args := m.Called(ctx, story)
	return args.Error(0)
}

func (m *MockStoryRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.StoryStatus, errorMessage *string) error {
	args := m.Called(ctx, id, status, errorMessage)
	return args.Error(0)
}

func (m *MockStoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockPanelRepository is a testify mock for repository.PanelRepository.
type MockPanelRepository struct {
	mock.Mock
}

var _ repository.PanelRepository = (*MockPanelRepository)(nil)

func (m *MockPanelRepository) ReplaceForStory(ctx context.Context, storyID uuid.UUID, panels []models.CartoonPanel) error {
	args := m.Called(ctx, storyID, panels)
	return args.Error(0)
}

func (m *MockPanelRepository) ListByStory(ctx context.Context, storyID uuid.UUID) ([]models.CartoonPanel, error) {
	args := m.Called(ctx, storyID)
	if panels, ok := args.Get(0).([]models.CartoonPanel); ok {
		return panels, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockPanelRepository) CountByStory(ctx context.Context, storyID uuid.UUID) (int, error) {
	args := m.Called(ctx, storyID)
	return args.Int(0), args.Error(1)
}

// MockMemoryCaptureRepository is a testify mock for repository.MemoryCaptureRepository.
type MockMemoryCaptureRepository struct {
	mock.Mock
}

var _ repository.MemoryCaptureRepository = (*MockMemoryCaptureRepository)(nil)

func (m *MockMemoryCaptureRepository) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]models.MemoryCapture, error) {
	args := m.Called(ctx, ids)
	if captures, ok := args.Get(0).([]models.MemoryCapture); ok {
		return captures, args.Error(1)
	}
	return nil, args.Error(1)
}

// MockGenerationLeaseRepository is a testify mock for repository.GenerationLeaseRepository.
type MockGenerationLeaseRepository struct {
	mock.Mock
}

var _ repository.GenerationLeaseRepository = (*MockGenerationLeaseRepository)(nil)

func (m *MockGenerationLeaseRepository) Acquire(ctx context.Context, storyID uuid.UUID) (int64, error) {
	args := m.Called(ctx, storyID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockGenerationLeaseRepository) Release(ctx context.Context, storyID uuid.UUID) error {
	args := m.Called(ctx, storyID)
	return args.Error(0)
}
