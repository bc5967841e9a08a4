package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"biographer-server/internal/mocks"
	"biographer-server/internal/models"
	"biographer-server/internal/service"
)

func newQuestionFixture() (*mocks.MockMemoryCaptureRepository, *mocks.MockAIClient, *service.QuestionService) {
	captures := new(mocks.MockMemoryCaptureRepository)
	ai := new(mocks.MockAIClient)
	return captures, ai, service.NewQuestionService(captures, ai, zap.NewNop())
}

func TestAnalyzeStoryReturnsQuestions(t *testing.T) {
	captures, ai, s := newQuestionFixture()

	ai.On("GenerateText", mock.Anything, mock.Anything, mock.MatchedBy(func(input string) bool {
		return strings.Contains(input, "Story: my story")
	}), mock.Anything).
		Return(`["What year was it?", "Who took the photo?"]`, service.UsageInfo{}, nil)

	questions, err := s.AnalyzeStory(context.Background(), &models.Story{StoryText: "my story"})
	require.NoError(t, err)
	assert.Equal(t, []string{"What year was it?", "Who took the photo?"}, questions)
	captures.AssertNotCalled(t, "ListByIDs")
}

func TestAnalyzeStoryIncludesMemories(t *testing.T) {
	captures, ai, s := newQuestionFixture()

	memoryID := uuid.New()
	captures.On("ListByIDs", mock.Anything, []uuid.UUID{memoryID}).Return([]models.MemoryCapture{
		{ID: memoryID, QuestionText: "Where did you grow up?", AnswerText: "On a farm near Porto."},
	}, nil)

	ai.On("GenerateText", mock.Anything, mock.Anything, mock.MatchedBy(func(input string) bool {
		return strings.Contains(input, "Story: my story") &&
			strings.Contains(input, "Memories:\nWhere did you grow up?: On a farm near Porto.")
	}), mock.Anything).
		Return(`["What did the farm smell like?"]`, service.UsageInfo{}, nil)

	questions, err := s.AnalyzeStory(context.Background(), &models.Story{
		StoryText: "my story",
		MemoryIDs: []uuid.UUID{memoryID},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"What did the farm smell like?"}, questions)
	ai.AssertExpectations(t)
}

func TestAnalyzeStoryMemoryFetchFailureDegrades(t *testing.T) {
	captures, ai, s := newQuestionFixture()

	captures.On("ListByIDs", mock.Anything, mock.Anything).
		Return(nil, errors.New("db down"))
	ai.On("GenerateText", mock.Anything, mock.Anything, mock.MatchedBy(func(input string) bool {
		return strings.Contains(input, "Story: my story") && !strings.Contains(input, "Memories:")
	}), mock.Anything).
		Return(`["Who was there?"]`, service.UsageInfo{}, nil)

	questions, err := s.AnalyzeStory(context.Background(), &models.Story{
		StoryText: "my story",
		MemoryIDs: []uuid.UUID{uuid.New()},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Who was there?"}, questions)
}

func TestAnalyzeStoryCapsAtFive(t *testing.T) {
	_, ai, s := newQuestionFixture()

	ai.On("GenerateText", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(`["q1", "q2", "q3", "q4", "q5", "q6", "q7"]`, service.UsageInfo{}, nil)

	questions, err := s.AnalyzeStory(context.Background(), &models.Story{StoryText: "story"})
	require.NoError(t, err)
	assert.Len(t, questions, 5)
}

func TestAnalyzeStoryFallbackOnBadJSON(t *testing.T) {
	_, ai, s := newQuestionFixture()

	ai.On("GenerateText", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return("here are some questions without JSON", service.UsageInfo{}, nil)

	questions, err := s.AnalyzeStory(context.Background(), &models.Story{StoryText: "story"})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"What was the main character wearing?",
		"What time of day did this happen?",
		"How did you feel during this moment?",
	}, questions)
}

func TestAnalyzeStoryTransportErrorIsFatal(t *testing.T) {
	_, ai, s := newQuestionFixture()

	ai.On("GenerateText", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return("", service.UsageInfo{}, errors.New("down"))

	_, err := s.AnalyzeStory(context.Background(), &models.Story{StoryText: "story"})
	assert.Error(t, err)
}
