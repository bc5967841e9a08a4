package service

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"
)

const answerSystemPrompt = `You are matching a user's free-form reply to a list of questions they were asked. For each question decide whether the reply answers it, and extract the relevant part of the reply as the answer. Respond with a JSON object mapping the question index (as a string, starting at "0") to the extracted answer. Omit questions the reply does not address. Return only the JSON object.`

// AnswerMatcher maps a free-form user reply onto the follow-up questions it
// answers.
type AnswerMatcher struct {
	ai     AIClient
	logger *zap.Logger
}

func NewAnswerMatcher(ai AIClient, logger *zap.Logger) *AnswerMatcher {
	return &AnswerMatcher{
		ai:     ai,
		logger: logger.Named("AnswerMatcher"),
	}
}

// Match returns one answer string per question, in question order. Questions
// the reply does not address get an empty string, so callers can render
// every slot.
func (m *AnswerMatcher) Match(ctx context.Context, questions []string, reply string) ([]string, error) {
	answers := make([]string, len(questions))
	if len(questions) == 0 {
		return answers, nil
	}

	var input string
	for i, q := range questions {
		input += fmt.Sprintf("%d. %s\n", i, q)
	}
	input += "\nUser reply:\n" + reply

	completion, _, err := m.ai.GenerateText(ctx, answerSystemPrompt, input, GenerationParams{})
	if err != nil {
		return nil, err
	}

	indexed := map[string]string{}
	if parseErr := parseJSONObject(completion, &indexed); parseErr != nil {
		// Unparseable match results degrade to "nothing answered" rather
		// than failing the request.
		m.logger.Warn("Answer map parse failed, returning empty answers", zap.Error(parseErr))
		return answers, nil
	}

	for key, value := range indexed {
		idx, convErr := strconv.Atoi(key)
		if convErr != nil || idx < 0 || idx >= len(questions) {
			continue
		}
		answers[idx] = value
	}
	return answers, nil
}
