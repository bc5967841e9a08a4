package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"biographer-server/internal/mocks"
	"biographer-server/internal/models"
	"biographer-server/internal/service"
)

func TestRenderAllKeepsSlotOrder(t *testing.T) {
	ai := new(mocks.MockAIClient)
	r := service.NewPanelRenderer(ai, zap.NewNop())

	ai.On("GenerateImage", mock.Anything, mock.MatchedBy(func(p string) bool {
		return strings.Contains(p, "scene alpha")
	})).Return("data:image/png;base64,QQ==", nil)
	ai.On("GenerateImage", mock.Anything, mock.MatchedBy(func(p string) bool {
		return strings.Contains(p, "scene beta")
	})).Return("data:image/png;base64,Qg==", nil)

	results, err := r.RenderAll(context.Background(), []string{"scene alpha", "scene beta"}, models.StyleAnime, false)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, 0, results[0].OrderIndex)
	assert.Equal(t, "scene alpha", results[0].SceneText)
	assert.Equal(t, "data:image/png;base64,QQ==", results[0].ImageURL)
	assert.Equal(t, 1, results[1].OrderIndex)
	assert.Equal(t, "data:image/png;base64,Qg==", results[1].ImageURL)
}

func TestRenderAllStyleInPrompt(t *testing.T) {
	ai := new(mocks.MockAIClient)
	r := service.NewPanelRenderer(ai, zap.NewNop())

	ai.On("GenerateImage", mock.Anything, mock.MatchedBy(func(p string) bool {
		return strings.Contains(p, "watercolor")
	})).Return("data:image/png;base64,QQ==", nil)

	_, err := r.RenderAll(context.Background(), []string{"a quiet garden"}, models.StyleWatercolor, false)
	require.NoError(t, err)
	ai.AssertExpectations(t)
}

func TestRenderAllFailureReportsSlot(t *testing.T) {
	ai := new(mocks.MockAIClient)
	r := service.NewPanelRenderer(ai, zap.NewNop())

	ai.On("GenerateImage", mock.Anything, mock.MatchedBy(func(p string) bool {
		return strings.Contains(p, "good scene")
	})).Return("data:image/png;base64,QQ==", nil).Maybe()
	ai.On("GenerateImage", mock.Anything, mock.MatchedBy(func(p string) bool {
		return strings.Contains(p, "bad scene")
	})).Return("", errors.New("render exploded"))

	results, err := r.RenderAll(context.Background(), []string{"good scene", "bad scene"}, models.StyleComicBook, false)
	require.Error(t, err)
	require.Len(t, results, 2)
	assert.Error(t, results[1].Err)
	assert.Empty(t, results[1].ImageURL)
}
