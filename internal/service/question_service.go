package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"biographer-server/internal/models"
	"biographer-server/internal/repository"
)

const questionSystemPrompt = `You are a creative story analyst. Your job is to identify gaps in the story that, if filled, would make it more vivid and complete for cartoon generation. Generate 2-5 specific questions that would help add visual details, emotional depth, or clarify ambiguous parts. Return ONLY a JSON array of question strings.`

// maxContextQuestions caps how many follow-up questions a single story
// analysis may produce.
const maxContextQuestions = 5

// fallbackQuestions is used when the model response cannot be parsed. The
// questions are generic enough to fit any memory.
var fallbackQuestions = []string{
	"What was the main character wearing?",
	"What time of day did this happen?",
	"How did you feel during this moment?",
}

// QuestionService asks follow-up questions that help a user enrich a story
// before generating panels.
type QuestionService struct {
	captures repository.MemoryCaptureRepository
	ai       AIClient
	logger   *zap.Logger
}

func NewQuestionService(captures repository.MemoryCaptureRepository, ai AIClient, logger *zap.Logger) *QuestionService {
	return &QuestionService{
		captures: captures,
		ai:       ai,
		logger:   logger.Named("QuestionService"),
	}
}

// buildContext assembles the story text and any referenced memory captures
// into the analysis input. A capture fetch failure degrades to the bare story
// text; question generation is an enhancement, not a pipeline step.
func (s *QuestionService) buildContext(ctx context.Context, story *models.Story) string {
	fullContext := "Story: " + story.StoryText
	if len(story.MemoryIDs) == 0 {
		return fullContext
	}

	captures, err := s.captures.ListByIDs(ctx, story.MemoryIDs)
	if err != nil {
		s.logger.Warn("Failed to load memory captures for analysis, continuing without",
			zap.String("storyID", story.ID.String()), zap.Error(err))
		return fullContext
	}
	lines := make([]string, 0, len(captures))
	for _, c := range captures {
		if strings.TrimSpace(c.AnswerText) == "" {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s: %s", c.QuestionText, c.AnswerText))
	}
	if len(lines) == 0 {
		return fullContext
	}
	return fullContext + "\n\nMemories:\n" + strings.Join(lines, "\n")
}

// AnalyzeStory returns 2 to 5 follow-up questions for the story, taking its
// referenced memory captures into account. A transport failure is fatal; a
// malformed completion falls back to a fixed question set.
func (s *QuestionService) AnalyzeStory(ctx context.Context, story *models.Story) ([]string, error) {
	input := "Analyze this story and generate questions to improve it:\n\n" + s.buildContext(ctx, story)

	completion, _, err := s.ai.GenerateText(ctx, questionSystemPrompt, input, GenerationParams{})
	if err != nil {
		return nil, err
	}

	var questions []string
	if parseErr := parseJSONArray(completion, &questions); parseErr != nil || len(questions) == 0 {
		s.logger.Warn("Question list parse failed, using fallback questions", zap.Error(parseErr))
		return fallbackQuestions, nil
	}
	if len(questions) > maxContextQuestions {
		questions = questions[:maxContextQuestions]
	}
	return questions, nil
}
