package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/pkoukk/tiktoken-go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	openaigo "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"biographer-server/internal/config"
	"biographer-server/internal/models"
)

const (
	pricePerMillionInputTokensUSD  = 0.15
	pricePerMillionOutputTokensUSD = 0.60
)

// GenerationParams carries optional sampling parameters. Pointers distinguish
// "not set" from an explicit zero.
type GenerationParams struct {
	Temperature *float64
	MaxTokens   *int
	TopP        *float64
}

// ErrAIGenerationFailed is returned when a text completion request fails.
var ErrAIGenerationFailed = errors.New("AI text generation failed")

var (
	aiRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "biographer_ai_requests_total",
			Help: "Total number of requests to the AI API.",
		},
		[]string{"model", "kind", "status"},
	)
	aiRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "biographer_ai_request_duration_seconds",
			Help:    "Histogram of AI API request durations.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"model", "kind"},
	)
	aiTotalTokens = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "biographer_ai_total_tokens",
			Help:    "Histogram of total token counts (prompt + completion).",
			Buckets: prometheus.LinearBuckets(350, 350, 20),
		},
		[]string{"model"},
	)
	aiEstimatedCostUSD = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "biographer_ai_estimated_cost_usd_total",
			Help: "Estimated total cost of AI requests in USD.",
		},
		[]string{"model"},
	)
)

// UsageInfo reports token usage and estimated cost for one request.
type UsageInfo struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
	EstimatedCostUSD float64
	// Estimated is set when token counts were derived locally via tiktoken
	// because the API response carried no usage block.
	Estimated bool
}

// AIClient wraps the model provider behind one interface so services and
// tests never touch the HTTP client directly.
type AIClient interface {
	// GenerateText runs a chat completion with the given system prompt and
	// user input and returns the raw completion text.
	GenerateText(ctx context.Context, systemPrompt string, userInput string, params GenerationParams) (string, UsageInfo, error)
	// GenerateImage renders one image for the prompt and returns it as a
	// base64 PNG data URI.
	GenerateImage(ctx context.Context, prompt string) (string, error)
	// Transcribe converts recorded audio into text.
	Transcribe(ctx context.Context, audio []byte) (string, error)
}

func calculateCost(promptTokens, completionTokens int) float64 {
	inputCost := float64(promptTokens) * pricePerMillionInputTokensUSD / 1_000_000.0
	outputCost := float64(completionTokens) * pricePerMillionOutputTokensUSD / 1_000_000.0
	return inputCost + outputCost
}

type openAIClient struct {
	client             *openaigo.Client
	textModel          string
	imageModel         string
	transcriptionModel string
	logger             *zap.Logger
}

// NewAIClient creates an AIClient backed by an OpenAI-compatible API.
func NewAIClient(cfg *config.Config, logger *zap.Logger) (AIClient, error) {
	if cfg.AIAPIKey == "" {
		return nil, errors.New("AI API key is not configured")
	}
	clientConfig := openaigo.DefaultConfig(cfg.AIAPIKey)
	if cfg.AIBaseURL != "" {
		clientConfig.BaseURL = cfg.AIBaseURL
	}
	clientConfig.HTTPClient = &http.Client{Timeout: cfg.AITimeout}

	log := logger.Named("AIClient")
	log.Info("OpenAI client created",
		zap.String("baseURL", clientConfig.BaseURL),
		zap.String("textModel", cfg.TextModel),
		zap.String("imageModel", cfg.ImageModel),
		zap.Duration("timeout", cfg.AITimeout))

	return &openAIClient{
		client:             openaigo.NewClientWithConfig(clientConfig),
		textModel:          cfg.TextModel,
		imageModel:         cfg.ImageModel,
		transcriptionModel: cfg.TranscriptionModel,
		logger:             log,
	}, nil
}

func (c *openAIClient) GenerateText(ctx context.Context, systemPrompt string, userInput string, params GenerationParams) (string, UsageInfo, error) {
	usageInfo := UsageInfo{}

	if strings.TrimSpace(systemPrompt) == "" {
		aiRequestsTotal.With(prometheus.Labels{"model": c.textModel, "kind": "text", "status": "error"}).Inc()
		return "", usageInfo, fmt.Errorf("%w: system prompt is empty", ErrAIGenerationFailed)
	}

	messages := []openaigo.ChatCompletionMessage{
		{Role: openaigo.ChatMessageRoleSystem, Content: systemPrompt},
	}
	if userInput != "" {
		messages = append(messages, openaigo.ChatCompletionMessage{
			Role:    openaigo.ChatMessageRoleUser,
			Content: userInput,
		})
	}

	startTime := time.Now()
	c.logger.Debug("Sending text request to AI",
		zap.String("model", c.textModel),
		zap.Int("systemPromptBytes", len(systemPrompt)),
		zap.Int("userInputBytes", len(userInput)))

	resp, err := c.client.CreateChatCompletion(ctx, openaigo.ChatCompletionRequest{
		Model:       c.textModel,
		Messages:    messages,
		Temperature: float32Val(params.Temperature),
		MaxTokens:   intVal(params.MaxTokens),
		TopP:        float32Val(params.TopP),
	})
	duration := time.Since(startTime)

	if err != nil {
		c.logger.Error("AI API error", zap.Duration("duration", duration), zap.Error(err))
		aiRequestsTotal.With(prometheus.Labels{"model": c.textModel, "kind": "text", "status": "error"}).Inc()
		if isQuotaError(err) {
			return "", usageInfo, models.ErrQuotaExceeded
		}
		return "", usageInfo, fmt.Errorf("%w: %v", ErrAIGenerationFailed, err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		aiRequestsTotal.With(prometheus.Labels{"model": c.textModel, "kind": "text", "status": "error_empty_response"}).Inc()
		return "", usageInfo, fmt.Errorf("%w: empty response", ErrAIGenerationFailed)
	}

	aiRequestsTotal.With(prometheus.Labels{"model": c.textModel, "kind": "text", "status": "success"}).Inc()
	aiRequestDuration.With(prometheus.Labels{"model": c.textModel, "kind": "text"}).Observe(duration.Seconds())

	generatedText := resp.Choices[0].Message.Content

	if resp.Usage.TotalTokens > 0 {
		usageInfo.PromptTokens = resp.Usage.PromptTokens
		usageInfo.CompletionTokens = resp.Usage.CompletionTokens
		usageInfo.TotalTokens = resp.Usage.TotalTokens
	} else {
		// Some OpenAI-compatible backends omit the usage block.
		usageInfo = c.estimateUsage(systemPrompt+userInput, generatedText)
	}
	usageInfo.EstimatedCostUSD = calculateCost(usageInfo.PromptTokens, usageInfo.CompletionTokens)

	aiTotalTokens.With(prometheus.Labels{"model": c.textModel}).Observe(float64(usageInfo.TotalTokens))
	if usageInfo.EstimatedCostUSD > 0 {
		aiEstimatedCostUSD.With(prometheus.Labels{"model": c.textModel}).Add(usageInfo.EstimatedCostUSD)
	}

	c.logger.Debug("AI response received",
		zap.Duration("duration", duration),
		zap.Int("responseChars", len(generatedText)),
		zap.Int("totalTokens", usageInfo.TotalTokens))

	return generatedText, usageInfo, nil
}

func (c *openAIClient) GenerateImage(ctx context.Context, prompt string) (string, error) {
	startTime := time.Now()
	c.logger.Debug("Sending image request to AI",
		zap.String("model", c.imageModel), zap.Int("promptBytes", len(prompt)))

	resp, err := c.client.CreateImage(ctx, openaigo.ImageRequest{
		Model:          c.imageModel,
		Prompt:         prompt,
		N:              1,
		Size:           openaigo.CreateImageSize1024x1024,
		Quality:        "medium",
		ResponseFormat: openaigo.CreateImageResponseFormatB64JSON,
	})
	duration := time.Since(startTime)

	if err != nil {
		c.logger.Error("Image API error", zap.Duration("duration", duration), zap.Error(err))
		aiRequestsTotal.With(prometheus.Labels{"model": c.imageModel, "kind": "image", "status": "error"}).Inc()
		if isQuotaError(err) {
			return "", models.ErrQuotaExceeded
		}
		return "", fmt.Errorf("%w: %v", models.ErrImageRenderFailed, err)
	}
	if len(resp.Data) == 0 || resp.Data[0].B64JSON == "" {
		aiRequestsTotal.With(prometheus.Labels{"model": c.imageModel, "kind": "image", "status": "error_empty_response"}).Inc()
		return "", fmt.Errorf("%w: no image data in response", models.ErrImageRenderFailed)
	}

	aiRequestsTotal.With(prometheus.Labels{"model": c.imageModel, "kind": "image", "status": "success"}).Inc()
	aiRequestDuration.With(prometheus.Labels{"model": c.imageModel, "kind": "image"}).Observe(duration.Seconds())

	return "data:image/png;base64," + resp.Data[0].B64JSON, nil
}

func (c *openAIClient) Transcribe(ctx context.Context, audio []byte) (string, error) {
	if len(audio) == 0 {
		return "", models.ErrNoAudioData
	}

	startTime := time.Now()
	resp, err := c.client.CreateTranscription(ctx, openaigo.AudioRequest{
		Model:    c.transcriptionModel,
		Reader:   bytes.NewReader(audio),
		FilePath: "audio.webm",
	})
	duration := time.Since(startTime)

	if err != nil {
		c.logger.Error("Transcription API error", zap.Duration("duration", duration), zap.Error(err))
		aiRequestsTotal.With(prometheus.Labels{"model": c.transcriptionModel, "kind": "transcription", "status": "error"}).Inc()
		if isQuotaError(err) {
			return "", models.ErrQuotaExceeded
		}
		return "", fmt.Errorf("transcription failed: %w", err)
	}

	aiRequestsTotal.With(prometheus.Labels{"model": c.transcriptionModel, "kind": "transcription", "status": "success"}).Inc()
	aiRequestDuration.With(prometheus.Labels{"model": c.transcriptionModel, "kind": "transcription"}).Observe(duration.Seconds())

	return resp.Text, nil
}

// estimateUsage approximates token counts locally with tiktoken.
func (c *openAIClient) estimateUsage(prompt, completion string) UsageInfo {
	tke, err := tiktoken.EncodingForModel(c.textModel)
	if err != nil {
		// Unknown model names fall back to the common encoding.
		tke, err = tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			return UsageInfo{Estimated: true}
		}
	}
	promptTokens := len(tke.Encode(prompt, nil, nil))
	completionTokens := len(tke.Encode(completion, nil, nil))
	return UsageInfo{
		PromptTokens:     promptTokens,
		CompletionTokens: completionTokens,
		TotalTokens:      promptTokens + completionTokens,
		Estimated:        true,
	}
}

// isQuotaError reports whether the provider rejected the request for billing
// reasons rather than a transient failure.
func isQuotaError(err error) bool {
	var apiErr *openaigo.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	if apiErr.HTTPStatusCode == 402 {
		return true
	}
	if code, ok := apiErr.Code.(string); ok && code == "insufficient_quota" {
		return true
	}
	return false
}

func float32Val(f64 *float64) float32 {
	if f64 == nil {
		return 0
	}
	return float32(*f64)
}

func intVal(i *int) int {
	if i == nil {
		return 0
	}
	return *i
}
