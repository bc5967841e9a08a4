package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"biographer-server/internal/mocks"
	"biographer-server/internal/service"
)

func TestPolishRewritesScenes(t *testing.T) {
	ai := new(mocks.MockAIClient)
	p := service.NewScenePolisher(ai, zap.NewNop())

	ai.On("GenerateText", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(`["First, we packed the car.", "Then, we hit the road.", "Finally, we saw the ocean."]`, service.UsageInfo{}, nil)

	got := p.Polish(context.Background(), []string{"packing", "driving", "arrival"}, nil)
	assert.Equal(t, []string{"First, we packed the car.", "Then, we hit the road.", "Finally, we saw the ocean."}, got)
}

func TestPolishPassesTemperature(t *testing.T) {
	ai := new(mocks.MockAIClient)
	p := service.NewScenePolisher(ai, zap.NewNop())

	temp := 1.1
	ai.On("GenerateText", mock.Anything, mock.Anything, mock.Anything,
		service.GenerationParams{Temperature: &temp}).
		Return(`["First, one.", "Finally, two."]`, service.UsageInfo{}, nil)

	p.Polish(context.Background(), []string{"one", "two"}, &temp)
	ai.AssertExpectations(t)
}

func TestPolishSingleScenePassesThrough(t *testing.T) {
	ai := new(mocks.MockAIClient)
	p := service.NewScenePolisher(ai, zap.NewNop())

	got := p.Polish(context.Background(), []string{"only scene"}, nil)
	assert.Equal(t, []string{"only scene"}, got)
	ai.AssertNotCalled(t, "GenerateText")
}

func TestPolishCountMismatchKeepsOriginals(t *testing.T) {
	ai := new(mocks.MockAIClient)
	p := service.NewScenePolisher(ai, zap.NewNop())

	ai.On("GenerateText", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(`["only one back"]`, service.UsageInfo{}, nil)

	original := []string{"a", "b"}
	assert.Equal(t, original, p.Polish(context.Background(), original, nil))
}

func TestPolishErrorKeepsOriginals(t *testing.T) {
	ai := new(mocks.MockAIClient)
	p := service.NewScenePolisher(ai, zap.NewNop())

	ai.On("GenerateText", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return("", service.UsageInfo{}, errors.New("timeout"))

	original := []string{"a", "b"}
	assert.Equal(t, original, p.Polish(context.Background(), original, nil))
}
