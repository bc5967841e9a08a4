package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"biographer-server/internal/models"
	"biographer-server/internal/repository"
)

const (
	memoriesSeparator = "Based on these memories:\n\n"
	contextSeparator  = "Additional context:\n\n"
)

// ContextAggregator assembles the full narrative input for a generation run
// from the base story text, referenced memory captures and context Q&A.
type ContextAggregator struct {
	captures repository.MemoryCaptureRepository
	logger   *zap.Logger
}

func NewContextAggregator(captures repository.MemoryCaptureRepository, logger *zap.Logger) *ContextAggregator {
	return &ContextAggregator{
		captures: captures,
		logger:   logger.Named("ContextAggregator"),
	}
}

// Aggregate builds the combined story text. The base text always comes
// first; memory answers and Q&A context are appended behind fixed separators
// so downstream prompts see clearly labeled sections.
func (a *ContextAggregator) Aggregate(ctx context.Context, story *models.Story) (string, error) {
	var b strings.Builder
	b.WriteString(story.StoryText)

	if len(story.MemoryIDs) > 0 {
		captures, err := a.captures.ListByIDs(ctx, story.MemoryIDs)
		if err != nil {
			return "", fmt.Errorf("failed to load memory captures: %w", err)
		}
		answers := make([]string, 0, len(captures))
		for _, c := range captures {
			if strings.TrimSpace(c.AnswerText) == "" {
				continue
			}
			answers = append(answers, fmt.Sprintf("%s: %s", c.QuestionText, c.AnswerText))
		}
		if len(answers) > 0 {
			b.WriteString("\n\n")
			b.WriteString(memoriesSeparator)
			b.WriteString(strings.Join(answers, "\n\n"))
		}
		a.logger.Debug("Memories aggregated",
			zap.String("storyID", story.ID.String()),
			zap.Int("requested", len(story.MemoryIDs)),
			zap.Int("used", len(answers)))
	}

	if pairs := story.QAPairs(); len(pairs) > 0 {
		lines := make([]string, 0, len(pairs))
		for _, qa := range pairs {
			if strings.TrimSpace(qa.Answer) == "" {
				continue
			}
			lines = append(lines, qa.Question+"\n"+qa.Answer)
		}
		if len(lines) > 0 {
			b.WriteString("\n\n")
			b.WriteString(contextSeparator)
			b.WriteString(strings.Join(lines, "\n\n"))
		}
	}

	return b.String(), nil
}
