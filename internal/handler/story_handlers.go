package handler

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"biographer-server/internal/models"
	"biographer-server/internal/service"
)

// maxPhotoSizeBytes bounds reference photo uploads.
const maxPhotoSizeBytes = 10 << 20

type createStoryRequest struct {
	UserID         uuid.UUID              `json:"userId" binding:"required"`
	StoryText      string                 `json:"storyText" binding:"required"`
	PhotoURL       *string                `json:"photoUrl"`
	MemoryIDs      []uuid.UUID            `json:"memoryIds"`
	ContextQA      []models.ContextQA     `json:"contextQa"`
	DesiredPanels  *int                   `json:"desiredPanels"`
	AnimationStyle *models.AnimationStyle `json:"animationStyle"`
	Temperature    *float64               `json:"temperature"`
}

func (h *BiographerHandler) createStory(c *gin.Context) {
	var req createStoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, APIError{Message: "invalid request body: " + err.Error()})
		return
	}

	story, err := h.stories.Create(c.Request.Context(), service.CreateStoryRequest{
		UserID:         req.UserID,
		StoryText:      req.StoryText,
		PhotoURL:       req.PhotoURL,
		MemoryIDs:      req.MemoryIDs,
		ContextQA:      req.ContextQA,
		DesiredPanels:  req.DesiredPanels,
		AnimationStyle: req.AnimationStyle,
		Temperature:    req.Temperature,
	})
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, story)
}

func (h *BiographerHandler) listStories(c *gin.Context) {
	userID, err := uuid.Parse(c.Query("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, APIError{Message: "missing or invalid user_id"})
		return
	}
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 0 {
			c.JSON(http.StatusBadRequest, APIError{Message: "invalid limit"})
			return
		}
	}

	stories, err := h.stories.ListByUser(c.Request.Context(), userID, limit)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stories": stories})
}

func (h *BiographerHandler) getStory(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, APIError{Message: "invalid story id"})
		return
	}

	story, err := h.stories.Get(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, story)
}

type updateStoryRequest struct {
	StoryText      *string                `json:"storyText"`
	PhotoURL       *string                `json:"photoUrl"`
	MemoryIDs      []uuid.UUID            `json:"memoryIds"`
	ContextQA      []models.ContextQA     `json:"contextQa"`
	DesiredPanels  *int                   `json:"desiredPanels"`
	AnimationStyle *models.AnimationStyle `json:"animationStyle"`
	Temperature    *float64               `json:"temperature"`
}

func (h *BiographerHandler) updateStory(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, APIError{Message: "invalid story id"})
		return
	}
	var req updateStoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, APIError{Message: "invalid request body: " + err.Error()})
		return
	}

	story, err := h.stories.UpdateSettings(c.Request.Context(), id, service.UpdateStorySettingsRequest{
		StoryText:      req.StoryText,
		PhotoURL:       req.PhotoURL,
		MemoryIDs:      req.MemoryIDs,
		ContextQA:      req.ContextQA,
		DesiredPanels:  req.DesiredPanels,
		AnimationStyle: req.AnimationStyle,
		Temperature:    req.Temperature,
	})
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, story)
}

func (h *BiographerHandler) deleteStory(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, APIError{Message: "invalid story id"})
		return
	}
	if err := h.stories.Delete(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// uploadPhoto stores a reference photo and attaches its URL to the story.
func (h *BiographerHandler) uploadPhoto(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, APIError{Message: "invalid story id"})
		return
	}

	story, err := h.stories.Get(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	fileHeader, err := c.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, APIError{Message: "photo file is required"})
		return
	}
	if fileHeader.Size > maxPhotoSizeBytes {
		c.JSON(http.StatusBadRequest, APIError{Message: "photo exceeds the 10MB limit"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.logger.Error("Failed to open uploaded photo", zap.Error(err))
		c.JSON(http.StatusInternalServerError, APIError{Message: "Internal server error"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxPhotoSizeBytes))
	if err != nil {
		h.logger.Error("Failed to read uploaded photo", zap.Error(err))
		c.JSON(http.StatusInternalServerError, APIError{Message: "Internal server error"})
		return
	}

	photoURL, err := h.photos.Save(story.UserID, fileHeader.Filename, data)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	updated, err := h.stories.UpdateSettings(c.Request.Context(), id, service.UpdateStorySettingsRequest{
		PhotoURL: &photoURL,
	})
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}
