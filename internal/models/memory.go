package models

import (
	"time"

	"github.com/google/uuid"
)

// TemplateQuestion is a fixed question belonging to a memory template.
// Reference data: read by the aggregator, never written by the pipeline.
type TemplateQuestion struct {
	ID           uuid.UUID `json:"id" db:"id"`
	TemplateID   uuid.UUID `json:"templateId" db:"template_id"`
	QuestionText string    `json:"questionText" db:"question_text"`
	OrderIndex   int       `json:"orderIndex" db:"order_index"`
}

// MemoryCapture is a previously answered template question that a story may
// blend into its context. QuestionText is joined in from template_questions.
type MemoryCapture struct {
	ID           uuid.UUID `json:"id" db:"id"`
	UserID       uuid.UUID `json:"userId" db:"user_id"`
	QuestionID   uuid.UUID `json:"questionId" db:"question_id"`
	QuestionText string    `json:"questionText" db:"question_text"`
	AnswerText   string    `json:"answerText" db:"answer_text"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}
