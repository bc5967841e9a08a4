package service_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"biographer-server/internal/mocks"
	"biographer-server/internal/models"
	"biographer-server/internal/service"
)

func TestAggregateBaseTextOnly(t *testing.T) {
	captures := new(mocks.MockMemoryCaptureRepository)
	agg := service.NewContextAggregator(captures, zap.NewNop())

	story := &models.Story{ID: uuid.New(), StoryText: "We sailed across the bay."}
	got, err := agg.Aggregate(context.Background(), story)
	require.NoError(t, err)
	assert.Equal(t, "We sailed across the bay.", got)
	captures.AssertNotCalled(t, "ListByIDs")
}

func TestAggregateWithMemoriesAndContext(t *testing.T) {
	captures := new(mocks.MockMemoryCaptureRepository)
	agg := service.NewContextAggregator(captures, zap.NewNop())

	memoryID := uuid.New()
	captures.On("ListByIDs", mock.Anything, []uuid.UUID{memoryID}).Return([]models.MemoryCapture{
		{ID: memoryID, QuestionText: "What do you remember about the boat?", AnswerText: "The boat was my uncle's.", CreatedAt: time.Now()},
		{ID: uuid.New(), QuestionText: "Anything else?", AnswerText: "   "},
	}, nil)

	qa, err := json.Marshal([]models.ContextQA{
		{Question: "Who was with you?", Answer: "My sister Ana."},
		{Question: "What season was it?", Answer: ""},
	})
	require.NoError(t, err)

	story := &models.Story{
		ID:        uuid.New(),
		StoryText: "We sailed across the bay.",
		MemoryIDs: []uuid.UUID{memoryID},
		ContextQA: qa,
	}

	got, err := agg.Aggregate(context.Background(), story)
	require.NoError(t, err)
	assert.Equal(t,
		"We sailed across the bay.\n\n"+
			"Based on these memories:\n\nWhat do you remember about the boat?: The boat was my uncle's.\n\n"+
			"Additional context:\n\nWho was with you?\nMy sister Ana.",
		got)
	captures.AssertExpectations(t)
}

func TestAggregateMalformedContextIgnored(t *testing.T) {
	captures := new(mocks.MockMemoryCaptureRepository)
	agg := service.NewContextAggregator(captures, zap.NewNop())

	story := &models.Story{
		ID:        uuid.New(),
		StoryText: "Plain story.",
		ContextQA: json.RawMessage(`{"not": "an array"}`),
	}
	got, err := agg.Aggregate(context.Background(), story)
	require.NoError(t, err)
	assert.Equal(t, "Plain story.", got)
}
