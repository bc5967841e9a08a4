package service

import (
	"errors"
	"testing"
	"time"

	openaigo "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"biographer-server/internal/config"
)

func TestNewAIClientRequiresAPIKey(t *testing.T) {
	_, err := NewAIClient(&config.Config{}, zap.NewNop())
	assert.Error(t, err)
}

func TestNewAIClientBuildsConfiguredClient(t *testing.T) {
	cfg := &config.Config{
		AIAPIKey:           "test-key",
		AIBaseURL:          "http://localhost:9999/v1",
		TextModel:          "gpt-4o-mini",
		ImageModel:         "gpt-image-1",
		TranscriptionModel: "whisper-1",
		AITimeout:          30 * time.Second,
	}
	client, err := NewAIClient(cfg, zap.NewNop())
	require.NoError(t, err)
	require.NotNil(t, client)

	impl, ok := client.(*openAIClient)
	require.True(t, ok)
	assert.Equal(t, "gpt-4o-mini", impl.textModel)
	assert.Equal(t, "gpt-image-1", impl.imageModel)
	assert.Equal(t, "whisper-1", impl.transcriptionModel)
}

func TestIsQuotaError(t *testing.T) {
	assert.True(t, isQuotaError(&openaigo.APIError{HTTPStatusCode: 402}))
	assert.True(t, isQuotaError(&openaigo.APIError{HTTPStatusCode: 429, Code: "insufficient_quota"}))
	assert.False(t, isQuotaError(&openaigo.APIError{HTTPStatusCode: 500}))
	assert.False(t, isQuotaError(errors.New("plain error")))
}

func TestCalculateCost(t *testing.T) {
	assert.InDelta(t, 0.75, calculateCost(1_000_000, 1_000_000), 1e-9)
	assert.Zero(t, calculateCost(0, 0))
}
