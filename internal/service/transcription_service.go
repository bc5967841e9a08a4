package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"biographer-server/internal/models"
)

// TranscriptionService converts recorded audio into text.
type TranscriptionService struct {
	ai     AIClient
	logger *zap.Logger
}

func NewTranscriptionService(ai AIClient, logger *zap.Logger) *TranscriptionService {
	return &TranscriptionService{
		ai:     ai,
		logger: logger.Named("TranscriptionService"),
	}
}

// TranscribeBase64 decodes base64-encoded audio and transcribes it. Clients
// may send a data URI; the prefix is stripped before decoding.
func (s *TranscriptionService) TranscribeBase64(ctx context.Context, encoded string) (string, error) {
	encoded = strings.TrimSpace(encoded)
	if encoded == "" {
		return "", models.ErrNoAudioData
	}
	if idx := strings.Index(encoded, ","); idx != -1 && strings.HasPrefix(encoded, "data:") {
		encoded = encoded[idx+1:]
	}

	audio, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("%w: invalid base64 audio", models.ErrInvalidInput)
	}
	if len(audio) == 0 {
		return "", models.ErrNoAudioData
	}

	s.logger.Debug("Transcribing audio", zap.Int("bytes", len(audio)))
	return s.ai.Transcribe(ctx, audio)
}
