package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"biographer-server/internal/models"
)

// RenderResult holds the outcome for one panel slot. Slots keep their
// position even when a sibling fails, so callers can report exactly which
// panels rendered before the run aborted.
type RenderResult struct {
	OrderIndex int
	SceneText  string
	ImageURL   string
	Err        error
}

// PanelRenderer turns scene descriptions into panel images in parallel.
type PanelRenderer struct {
	ai     AIClient
	logger *zap.Logger
}

func NewPanelRenderer(ai AIClient, logger *zap.Logger) *PanelRenderer {
	return &PanelRenderer{
		ai:     ai,
		logger: logger.Named("PanelRenderer"),
	}
}

func (r *PanelRenderer) buildPrompt(scene string, style models.AnimationStyle, hasPhoto bool) string {
	prompt := fmt.Sprintf("Create a cartoon panel in %s. Scene: %s. Keep the main character's appearance consistent across all panels of this story.",
		styleDescription(style), scene)
	if hasPhoto {
		prompt += " The main character is based on a real person; keep their look recognizable and friendly."
	}
	return prompt
}

// RenderAll renders one image per scene concurrently. The first failure
// cancels the remaining requests; the returned slice always has one slot per
// scene so completed work stays attributable.
func (r *PanelRenderer) RenderAll(ctx context.Context, scenes []string, style models.AnimationStyle, hasPhoto bool) ([]RenderResult, error) {
	results := make([]RenderResult, len(scenes))
	g, gctx := errgroup.WithContext(ctx)

	for i, scene := range scenes {
		results[i] = RenderResult{OrderIndex: i, SceneText: scene}
		g.Go(func() error {
			imageURL, err := r.ai.GenerateImage(gctx, r.buildPrompt(scene, style, hasPhoto))
			if err != nil {
				results[i].Err = err
				r.logger.Error("Panel render failed", zap.Int("orderIndex", i), zap.Error(err))
				return fmt.Errorf("panel %d: %w", i, err)
			}
			results[i].ImageURL = imageURL
			return nil
		})
	}

	err := g.Wait()
	if err != nil {
		rendered := 0
		for _, res := range results {
			if res.ImageURL != "" {
				rendered++
			}
		}
		r.logger.Warn("Render run aborted",
			zap.Int("scenes", len(scenes)), zap.Int("rendered", rendered))
		return results, err
	}
	return results, nil
}
