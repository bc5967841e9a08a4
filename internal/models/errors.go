package models

import "errors"

// Application-wide standard errors
var (
	// Common resource/DB errors
	ErrNotFound      = errors.New("resource not found")
	ErrStoryNotFound = errors.New("story not found")

	// Pipeline errors
	ErrGenerationInProgress = errors.New("generation is already in progress for this story")
	ErrSceneAnalysisFailed  = errors.New("failed to analyze story into scenes")
	ErrImageRenderFailed    = errors.New("failed to render panel images")
	ErrNoAudioData          = errors.New("no audio data provided")

	// Distinguished external condition: transcription credits exhausted.
	// Mapped to HTTP 402 so the client can show a remediation message.
	ErrQuotaExceeded = errors.New("transcription quota exceeded")

	// General request/server errors
	ErrInternalServer = errors.New("internal server error")
	ErrBadRequest     = errors.New("bad request")
	ErrInvalidInput   = errors.New("invalid input data")
)
