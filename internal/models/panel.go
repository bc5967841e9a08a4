package models

import (
	"time"

	"github.com/google/uuid"
)

// CartoonPanel is one illustrated scene belonging to exactly one story.
// Panels are created by the panel writer and never mutated afterwards;
// OrderIndex is 0-based and unique within the parent story.
type CartoonPanel struct {
	ID         uuid.UUID `json:"id" db:"id"`
	StoryID    uuid.UUID `json:"storyId" db:"story_id"`
	SceneText  string    `json:"sceneText" db:"scene_text"`
	ImageURL   string    `json:"imageUrl" db:"image_url"`
	OrderIndex int       `json:"orderIndex" db:"order_index"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
}
