package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"biographer-server/internal/messaging"
	"biographer-server/internal/service"
)

// MockAIClient is a testify mock for service.AIClient.
type MockAIClient struct {
	mock.Mock
}

var _ service.AIClient = (*MockAIClient)(nil)

func (m *MockAIClient) GenerateText(ctx context.Context, systemPrompt string, userInput string, params service.GenerationParams) (string, service.UsageInfo, error) {
	args := m.Called(ctx, systemPrompt, userInput, params)
	usage, _ := args.Get(1).(service.UsageInfo)
	return args.String(0), usage, args.Error(2)
}

func (m *MockAIClient) GenerateImage(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

func (m *MockAIClient) Transcribe(ctx context.Context, audio []byte) (string, error) {
	args := m.Called(ctx, audio)
	return args.String(0), args.Error(1)
}

// MockEventPublisher is a testify mock for messaging.EventPublisher.
type MockEventPublisher struct {
	mock.Mock
}

var _ messaging.EventPublisher = (*MockEventPublisher)(nil)

func (m *MockEventPublisher) PublishStoryStatus(ctx context.Context, event messaging.StoryStatusEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockEventPublisher) PublishPanelCreated(ctx context.Context, event messaging.PanelCreatedEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}
