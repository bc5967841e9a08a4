package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// StoryStatus describes the lifecycle of a story's cartoon generation.
type StoryStatus string

const (
	StatusDraft      StoryStatus = "draft"
	StatusPending    StoryStatus = "pending"
	StatusProcessing StoryStatus = "processing"
	StatusComplete   StoryStatus = "complete"
	// StatusFailed is a terminal state reachable from processing on any fatal
	// pipeline error. The failure reason is recorded in ErrorMessage.
	StatusFailed StoryStatus = "failed"
)

// AnimationStyle is the illustration style tag chosen by the user.
type AnimationStyle string

const (
	StyleClassicCartoon AnimationStyle = "classic_cartoon"
	StyleAnime          AnimationStyle = "anime"
	StyleComicBook      AnimationStyle = "comic_book"
	StyleWatercolor     AnimationStyle = "watercolor"
	StylePixelArt       AnimationStyle = "pixel_art"
	StyleRealistic      AnimationStyle = "realistic"
)

// Valid reports whether the style is one of the supported values.
func (a AnimationStyle) Valid() bool {
	switch a {
	case StyleClassicCartoon, StyleAnime, StyleComicBook, StyleWatercolor, StylePixelArt, StyleRealistic:
		return true
	}
	return false
}

const (
	// DefaultPanels is used when a story carries no panel count.
	DefaultPanels = 3
	MinPanels     = 1
	MaxPanels     = 8
)

// ContextQA is one clarifying question/answer pair gathered before generation.
type ContextQA struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Story is one user-submitted narrative awaiting or having completed
// illustration, together with its generation parameters.
type Story struct {
	ID             uuid.UUID       `json:"id" db:"id"`
	UserID         uuid.UUID       `json:"userId" db:"user_id"`
	StoryText      string          `json:"storyText" db:"story_text"`
	PhotoURL       *string         `json:"photoUrl,omitempty" db:"photo_url"`
	MemoryIDs      []uuid.UUID     `json:"memoryIds,omitempty" db:"memory_ids"`
	ContextQA      json.RawMessage `json:"contextQa,omitempty" db:"context_qa"`
	DesiredPanels  *int            `json:"desiredPanels,omitempty" db:"desired_panels"`
	AnimationStyle *AnimationStyle `json:"animationStyle,omitempty" db:"animation_style"`
	Temperature    *float64        `json:"temperature,omitempty" db:"temperature"`
	Status         StoryStatus     `json:"status" db:"status"`
	ErrorMessage   *string         `json:"errorMessage,omitempty" db:"error_message"`
	CreatedAt      time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time       `json:"updatedAt" db:"updated_at"`
}

// PanelCount returns the configured panel count clamped to [MinPanels, MaxPanels].
func (s *Story) PanelCount() int {
	n := DefaultPanels
	if s.DesiredPanels != nil {
		n = *s.DesiredPanels
	}
	if n < MinPanels {
		n = MinPanels
	}
	if n > MaxPanels {
		n = MaxPanels
	}
	return n
}

// Style returns the configured animation style or the default.
func (s *Story) Style() AnimationStyle {
	if s.AnimationStyle == nil || *s.AnimationStyle == "" {
		return StyleClassicCartoon
	}
	return *s.AnimationStyle
}

// QAPairs decodes the inline question/answer context. A nil or malformed
// payload yields an empty slice; the pipeline treats context as optional.
func (s *Story) QAPairs() []ContextQA {
	if len(s.ContextQA) == 0 {
		return nil
	}
	var pairs []ContextQA
	if err := json.Unmarshal(s.ContextQA, &pairs); err != nil {
		return nil
	}
	return pairs
}
