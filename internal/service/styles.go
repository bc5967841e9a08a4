package service

import "biographer-server/internal/models"

// styleDescriptions maps each animation style to the rendering instruction
// injected into every panel prompt.
var styleDescriptions = map[models.AnimationStyle]string{
	models.StyleClassicCartoon: "classic hand-drawn cartoon style with bold outlines, warm colors and expressive characters",
	models.StyleAnime:          "anime style with large expressive eyes, clean line art and vibrant cel shading",
	models.StyleComicBook:      "comic book style with dynamic panels, halftone shading and dramatic lighting",
	models.StyleWatercolor:     "soft watercolor painting style with gentle washes of color and dreamy edges",
	models.StylePixelArt:       "retro pixel art style with a limited color palette and charming 8-bit detail",
	models.StyleRealistic:      "realistic illustrated style with natural proportions, detailed textures and cinematic lighting",
}

// styleDescription resolves a style to its prompt fragment, falling back to
// the classic cartoon description for unknown values.
func styleDescription(style models.AnimationStyle) string {
	if desc, ok := styleDescriptions[style]; ok {
		return desc
	}
	return styleDescriptions[models.StyleClassicCartoon]
}
