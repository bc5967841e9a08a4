package service

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

const normalizerSystemPrompt = `You are a skilled biographer. The text below is a transcript of a conversation between a user and an AI assistant. Rewrite it as a warm, engaging third-person narrative story about the user's memories. Remove all traces of the conversation format. Keep every factual detail. Return only the story text.`

// transcriptMarkers identify raw conversation transcripts that still carry
// speaker labels instead of narrative prose.
var transcriptMarkers = []string{"User:", "AI:"}

// StoryNormalizer rewrites conversation transcripts into third-person
// narrative before scene analysis. Plain narrative text passes through
// without an AI call.
type StoryNormalizer struct {
	ai     AIClient
	logger *zap.Logger
}

func NewStoryNormalizer(ai AIClient, logger *zap.Logger) *StoryNormalizer {
	return &StoryNormalizer{
		ai:     ai,
		logger: logger.Named("StoryNormalizer"),
	}
}

func looksLikeTranscript(text string) bool {
	for _, marker := range transcriptMarkers {
		if strings.Contains(text, marker) {
			return true
		}
	}
	return false
}

// Normalize returns narrative text for the story. A failed rewrite is
// recoverable: the original text is returned and the pipeline continues.
func (n *StoryNormalizer) Normalize(ctx context.Context, storyText string) string {
	if !looksLikeTranscript(storyText) {
		return storyText
	}

	n.logger.Debug("Transcript markers detected, rewriting to narrative")
	rewritten, _, err := n.ai.GenerateText(ctx, normalizerSystemPrompt, storyText, GenerationParams{})
	if err != nil {
		n.logger.Warn("Narrative rewrite failed, continuing with original text", zap.Error(err))
		return storyText
	}
	if strings.TrimSpace(rewritten) == "" {
		n.logger.Warn("Narrative rewrite returned empty text, continuing with original")
		return storyText
	}
	return rewritten
}
