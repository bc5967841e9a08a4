package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"biographer-server/internal/mocks"
	"biographer-server/internal/service"
)

func TestMatchFillsAnsweredSlots(t *testing.T) {
	ai := new(mocks.MockAIClient)
	m := service.NewAnswerMatcher(ai, zap.NewNop())

	ai.On("GenerateText", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(`{"0": "it smelled of bread", "2": "my sister"}`, service.UsageInfo{}, nil)

	questions := []string{"What did it smell like?", "What season?", "Who was there?"}
	answers, err := m.Match(context.Background(), questions, "it smelled of bread and my sister was there")
	require.NoError(t, err)
	assert.Equal(t, []string{"it smelled of bread", "", "my sister"}, answers)
}

func TestMatchIgnoresOutOfRangeKeys(t *testing.T) {
	ai := new(mocks.MockAIClient)
	m := service.NewAnswerMatcher(ai, zap.NewNop())

	ai.On("GenerateText", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(`{"5": "stray", "-1": "also stray", "abc": "bad key", "0": "kept"}`, service.UsageInfo{}, nil)

	answers, err := m.Match(context.Background(), []string{"only question"}, "reply")
	require.NoError(t, err)
	assert.Equal(t, []string{"kept"}, answers)
}

func TestMatchParseFailureReturnsEmptySlots(t *testing.T) {
	ai := new(mocks.MockAIClient)
	m := service.NewAnswerMatcher(ai, zap.NewNop())

	ai.On("GenerateText", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return("I could not match anything", service.UsageInfo{}, nil)

	answers, err := m.Match(context.Background(), []string{"q1", "q2"}, "reply")
	require.NoError(t, err)
	assert.Equal(t, []string{"", ""}, answers)
}

func TestMatchNoQuestionsNoCall(t *testing.T) {
	ai := new(mocks.MockAIClient)
	m := service.NewAnswerMatcher(ai, zap.NewNop())

	answers, err := m.Match(context.Background(), nil, "reply")
	require.NoError(t, err)
	assert.Empty(t, answers)
	ai.AssertNotCalled(t, "GenerateText")
}

func TestMatchTransportErrorPropagates(t *testing.T) {
	ai := new(mocks.MockAIClient)
	m := service.NewAnswerMatcher(ai, zap.NewNop())

	ai.On("GenerateText", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return("", service.UsageInfo{}, errors.New("down"))

	_, err := m.Match(context.Background(), []string{"q"}, "reply")
	assert.Error(t, err)
}
