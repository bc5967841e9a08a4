package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"biographer-server/internal/models"
)

// minFragmentLength filters out sentence fragments too short to render as a
// meaningful panel.
const minFragmentLength = 20

var sentenceSplitRe = regexp.MustCompile(`[.!?]+`)

// SceneSegmenter breaks a narrative story into a fixed number of visual
// scene descriptions.
type SceneSegmenter struct {
	ai     AIClient
	logger *zap.Logger
}

func NewSceneSegmenter(ai AIClient, logger *zap.Logger) *SceneSegmenter {
	return &SceneSegmenter{
		ai:     ai,
		logger: logger.Named("SceneSegmenter"),
	}
}

func segmenterSystemPrompt(panels int) string {
	if panels == 1 {
		return `You are a visual storytelling expert. Distill the story below into exactly 1 key scene that captures its essence. Describe the scene visually: the setting, the action and the emotion. Respond with a JSON array containing exactly 1 string. Return only the JSON array, no other text.`
	}
	return fmt.Sprintf(`You are a visual storytelling expert. Break the story below into exactly %d key scenes that together tell the story. Describe each scene visually: the setting, the action and the emotion. Respond with a JSON array of exactly %d strings, in story order. Return only the JSON array, no other text.`, panels, panels)
}

// Segment returns exactly panels scene descriptions, or fewer when the story
// does not contain enough usable material. The model sees the full narrative;
// the sentence-split fallback works on the raw user-authored story text, not
// the aggregated or rewritten form. A transport failure is fatal.
func (s *SceneSegmenter) Segment(ctx context.Context, narrative, rawStoryText string, panels int, temperature *float64) ([]string, error) {
	completion, _, err := s.ai.GenerateText(ctx, segmenterSystemPrompt(panels), narrative,
		GenerationParams{Temperature: temperature})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrSceneAnalysisFailed, err)
	}

	scenes, parseErr := parseSceneList(completion)
	if parseErr != nil {
		s.logger.Warn("Scene list parse failed, falling back to sentence splitting", zap.Error(parseErr))
		scenes = splitIntoSentences(rawStoryText, panels)
		if len(scenes) == 0 {
			return nil, fmt.Errorf("%w: no usable scenes in story text", models.ErrSceneAnalysisFailed)
		}
		return scenes, nil
	}

	if len(scenes) > panels {
		scenes = scenes[:panels]
	}
	s.logger.Debug("Story segmented", zap.Int("requested", panels), zap.Int("scenes", len(scenes)))
	return scenes, nil
}

// splitIntoSentences is the last-resort segmentation: sentence fragments of
// the original text, longest-first order preserved, capped at limit.
func splitIntoSentences(text string, limit int) []string {
	fragments := sentenceSplitRe.Split(text, -1)
	scenes := make([]string, 0, limit)
	for _, f := range fragments {
		f = strings.TrimSpace(f)
		if len(f) > minFragmentLength {
			scenes = append(scenes, f)
		}
		if len(scenes) == limit {
			break
		}
	}
	return scenes
}
