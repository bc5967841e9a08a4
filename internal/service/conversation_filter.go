package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"biographer-server/internal/models"
)

const conversationFilterSystemPrompt = `You are a skilled biographer. The text below is a conversation between a user and an AI assistant about the user's memories. Extract the user's memories and write them as a warm first-person story, as if the user were telling it. Drop the assistant's questions and any conversational filler. Keep every factual detail the user shared. Return only the story text.`

// ConversationFilter distills a recorded conversation into a standalone
// story the pipeline can work with.
type ConversationFilter struct {
	ai     AIClient
	logger *zap.Logger
}

func NewConversationFilter(ai AIClient, logger *zap.Logger) *ConversationFilter {
	return &ConversationFilter{
		ai:     ai,
		logger: logger.Named("ConversationFilter"),
	}
}

// Filter rewrites the conversation transcript into story text.
func (f *ConversationFilter) Filter(ctx context.Context, conversation string) (string, error) {
	if strings.TrimSpace(conversation) == "" {
		return "", models.ErrInvalidInput
	}
	story, _, err := f.ai.GenerateText(ctx, conversationFilterSystemPrompt, conversation, GenerationParams{})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(story), nil
}
