package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type analyzeStoryRequest struct {
	StoryID uuid.UUID `json:"storyId" binding:"required"`
}

// analyzeStory asks follow-up questions that help the user enrich a memory.
func (h *BiographerHandler) analyzeStory(c *gin.Context) {
	var req analyzeStoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, APIError{Message: "invalid request body: " + err.Error()})
		return
	}

	story, err := h.stories.Get(c.Request.Context(), req.StoryID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	questions, err := h.questions.AnalyzeStory(c.Request.Context(), story)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"questions": questions})
}

type analyzeAnswersRequest struct {
	Questions     []string `json:"questions" binding:"required"`
	Transcription string   `json:"transcription" binding:"required"`
}

// analyzeAnswers matches a free-form reply to the questions it answers. The
// response carries one slot per question; unanswered questions get an empty
// string.
func (h *BiographerHandler) analyzeAnswers(c *gin.Context) {
	var req analyzeAnswersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, APIError{Message: "invalid request body: " + err.Error()})
		return
	}

	answers, err := h.answers.Match(c.Request.Context(), req.Questions, req.Transcription)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"answers": answers})
}

type filterConversationRequest struct {
	ConversationText string `json:"conversationText" binding:"required"`
}

// filterConversation turns a recorded conversation into standalone story text.
func (h *BiographerHandler) filterConversation(c *gin.Context) {
	var req filterConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, APIError{Message: "invalid request body: " + err.Error()})
		return
	}

	story, err := h.filter.Filter(c.Request.Context(), req.ConversationText)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"storyPrompt": story})
}

type transcribeAudioRequest struct {
	Audio string `json:"audio" binding:"required"`
}

// transcribeAudio converts base64-encoded audio into text.
func (h *BiographerHandler) transcribeAudio(c *gin.Context) {
	var req transcribeAudioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, APIError{Message: "invalid request body: " + err.Error()})
		return
	}

	text, err := h.transcription.TranscribeBase64(c.Request.Context(), req.Audio)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"text": text})
}
