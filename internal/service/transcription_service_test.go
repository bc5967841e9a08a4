package service_test

import (
	"context"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"biographer-server/internal/mocks"
	"biographer-server/internal/models"
	"biographer-server/internal/service"
)

func TestTranscribeBase64(t *testing.T) {
	ai := new(mocks.MockAIClient)
	s := service.NewTranscriptionService(ai, zap.NewNop())

	audio := []byte("webm-bytes")
	encoded := base64.StdEncoding.EncodeToString(audio)
	ai.On("Transcribe", mock.Anything, audio).Return("my grandfather's house", nil)

	text, err := s.TranscribeBase64(context.Background(), encoded)
	require.NoError(t, err)
	assert.Equal(t, "my grandfather's house", text)
}

func TestTranscribeBase64StripsDataURI(t *testing.T) {
	ai := new(mocks.MockAIClient)
	s := service.NewTranscriptionService(ai, zap.NewNop())

	audio := []byte{0x1a, 0x45, 0xdf, 0xa3}
	encoded := "data:audio/webm;base64," + base64.StdEncoding.EncodeToString(audio)
	ai.On("Transcribe", mock.Anything, audio).Return("hello", nil)

	text, err := s.TranscribeBase64(context.Background(), encoded)
	require.NoError(t, err)
	assert.Equal(t, "hello", text)
}

func TestTranscribeEmptyAudio(t *testing.T) {
	ai := new(mocks.MockAIClient)
	s := service.NewTranscriptionService(ai, zap.NewNop())

	_, err := s.TranscribeBase64(context.Background(), "   ")
	assert.ErrorIs(t, err, models.ErrNoAudioData)
	ai.AssertNotCalled(t, "Transcribe")
}

func TestTranscribeInvalidBase64(t *testing.T) {
	ai := new(mocks.MockAIClient)
	s := service.NewTranscriptionService(ai, zap.NewNop())

	_, err := s.TranscribeBase64(context.Background(), "!!! not base64 !!!")
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}
