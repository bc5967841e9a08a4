package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"biographer-server/internal/models"
	"biographer-server/internal/service"
	"biographer-server/internal/storage"
)

// APIError is the standardized error response body. The field is serialized
// as "error" because that is the shape the frontend already parses.
type APIError struct {
	Message string `json:"error"`
}

// BiographerHandler serves the REST API: story management, the generation
// endpoints and the analysis helpers.
type BiographerHandler struct {
	stories       *service.StoryService
	cartoons      *service.CartoonService
	questions     *service.QuestionService
	answers       *service.AnswerMatcher
	filter        *service.ConversationFilter
	transcription *service.TranscriptionService
	photos        *storage.PhotoStore
	logger        *zap.Logger
}

func NewBiographerHandler(
	stories *service.StoryService,
	cartoons *service.CartoonService,
	questions *service.QuestionService,
	answers *service.AnswerMatcher,
	filter *service.ConversationFilter,
	transcription *service.TranscriptionService,
	photos *storage.PhotoStore,
	logger *zap.Logger,
) *BiographerHandler {
	return &BiographerHandler{
		stories:       stories,
		cartoons:      cartoons,
		questions:     questions,
		answers:       answers,
		filter:        filter,
		transcription: transcription,
		photos:        photos,
		logger:        logger.Named("BiographerHandler"),
	}
}

// RegisterRoutes wires all endpoints. The /functions group mirrors the paths
// the frontend already calls; /stories is the REST surface.
func (h *BiographerHandler) RegisterRoutes(router *gin.Engine) {
	functions := router.Group("/functions")
	{
		functions.POST("/generate-cartoon", h.generateCartoon)
		functions.POST("/analyze-story", h.analyzeStory)
		functions.POST("/analyze-answers", h.analyzeAnswers)
		functions.POST("/filter-conversation", h.filterConversation)
		functions.POST("/transcribe-audio", h.transcribeAudio)
	}

	stories := router.Group("/stories")
	{
		stories.POST("", h.createStory)
		stories.GET("", h.listStories)
		stories.GET("/:id", h.getStory)
		stories.PATCH("/:id", h.updateStory)
		stories.DELETE("/:id", h.deleteStory)
		stories.GET("/:id/panels", h.listPanels)
		stories.POST("/:id/photo", h.uploadPhoto)
	}
}

// handleServiceError maps service errors onto HTTP status codes.
func (h *BiographerHandler) handleServiceError(c *gin.Context, err error) {
	var statusCode int
	var apiErr APIError

	switch {
	case errors.Is(err, models.ErrStoryNotFound) || errors.Is(err, models.ErrNotFound):
		statusCode = http.StatusNotFound
		apiErr = APIError{Message: "Resource not found"}
	case errors.Is(err, models.ErrGenerationInProgress):
		statusCode = http.StatusConflict
		apiErr = APIError{Message: err.Error()}
	case errors.Is(err, models.ErrQuotaExceeded):
		statusCode = http.StatusPaymentRequired
		apiErr = APIError{Message: err.Error()}
	case errors.Is(err, models.ErrInvalidInput) || errors.Is(err, models.ErrBadRequest) || errors.Is(err, models.ErrNoAudioData):
		statusCode = http.StatusBadRequest
		apiErr = APIError{Message: err.Error()}
	default:
		h.logger.Error("Unhandled service error", zap.Error(err))
		statusCode = http.StatusInternalServerError
		apiErr = APIError{Message: "Internal server error"}
	}
	c.JSON(statusCode, apiErr)
}
