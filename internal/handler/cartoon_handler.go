package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"biographer-server/internal/service"
)

type generateCartoonRequest struct {
	StoryID      uuid.UUID `json:"storyId" binding:"required"`
	AdvancedMode bool      `json:"advancedMode"`
	PanelTexts   []string  `json:"panelTexts"`
	Panels       *int      `json:"panels"`
}

type generateCartoonResponse struct {
	Success bool      `json:"success"`
	StoryID uuid.UUID `json:"storyId"`
	Panels  int       `json:"panels"`
}

// generateCartoon runs the full pipeline synchronously and returns once the
// panels are persisted. Progress is streamed over the WebSocket alongside.
func (h *BiographerHandler) generateCartoon(c *gin.Context) {
	var req generateCartoonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, APIError{Message: "invalid request body: " + err.Error()})
		return
	}

	result, err := h.cartoons.Generate(c.Request.Context(), service.GenerateCartoonRequest{
		StoryID:      req.StoryID,
		AdvancedMode: req.AdvancedMode,
		PanelTexts:   req.PanelTexts,
		Panels:       req.Panels,
	})
	if err != nil {
		if !service.IsRecoverable(err) {
			h.logger.Error("Cartoon generation failed",
				zap.String("storyID", req.StoryID.String()), zap.Error(err))
		}
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, generateCartoonResponse{
		Success: true,
		StoryID: result.StoryID,
		Panels:  result.Panels,
	})
}

// listPanels returns the persisted panels of a story in display order.
func (h *BiographerHandler) listPanels(c *gin.Context) {
	storyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, APIError{Message: "invalid story id"})
		return
	}

	panels, err := h.cartoons.Panels(c.Request.Context(), storyID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"panels": panels})
}
