package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

const polisherSystemPrompt = `You are a storyteller. Rewrite each of the scene descriptions below so they read as one flowing story told across sequential panels. Start the first scene with "First", continue middle scenes with "Then" and close the last scene with "Finally". Keep each scene to one or two sentences. Respond with a JSON array of strings, one per scene, in the same order. Return only the JSON array.`

// ScenePolisher rewrites user-authored panel texts into connected narration.
// It only runs in advanced mode, where the user supplies the panel texts
// directly and they may read as disconnected fragments.
type ScenePolisher struct {
	ai     AIClient
	logger *zap.Logger
}

func NewScenePolisher(ai AIClient, logger *zap.Logger) *ScenePolisher {
	return &ScenePolisher{
		ai:     ai,
		logger: logger.Named("ScenePolisher"),
	}
}

// Polish returns connected narration for the given scenes. Any failure is
// recoverable: the inputs are returned unchanged.
func (p *ScenePolisher) Polish(ctx context.Context, scenes []string, temperature *float64) []string {
	if len(scenes) < 2 {
		return scenes
	}

	var input strings.Builder
	for i, scene := range scenes {
		fmt.Fprintf(&input, "%d. %s\n", i+1, scene)
	}

	completion, _, err := p.ai.GenerateText(ctx, polisherSystemPrompt, input.String(),
		GenerationParams{Temperature: temperature})
	if err != nil {
		p.logger.Warn("Scene polishing failed, keeping original texts", zap.Error(err))
		return scenes
	}

	var polished []string
	if err := parseJSONArray(completion, &polished); err != nil {
		p.logger.Warn("Polished scene list parse failed, keeping original texts", zap.Error(err))
		return scenes
	}
	if len(polished) != len(scenes) {
		p.logger.Warn("Polished scene count mismatch, keeping original texts",
			zap.Int("expected", len(scenes)), zap.Int("got", len(polished)))
		return scenes
	}
	for i := range polished {
		if strings.TrimSpace(polished[i]) == "" {
			return scenes
		}
	}
	return polished
}
