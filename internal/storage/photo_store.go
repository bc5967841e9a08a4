package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"biographer-server/internal/models"
)

// ErrPhotoSaveFailed is returned when a reference photo cannot be written.
var ErrPhotoSaveFailed = fmt.Errorf("failed to save photo")

// allowedPhotoExtensions guards the extension taken from the uploaded
// filename before it becomes part of a path.
var allowedPhotoExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

// PhotoStore persists uploaded reference photos on a mounted volume and
// exposes them through a public base URL.
type PhotoStore struct {
	savePath string
	baseURL  string
	logger   *zap.Logger
}

func NewPhotoStore(savePath, baseURL string, logger *zap.Logger) (*PhotoStore, error) {
	if err := os.MkdirAll(savePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create photo directory %s: %w", savePath, err)
	}
	return &PhotoStore{
		savePath: savePath,
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		logger:   logger.Named("PhotoStore"),
	}, nil
}

// Save writes the photo bytes under a fresh UUID-based name and returns the
// public URL. The original filename only contributes its extension.
func (s *PhotoStore) Save(userID uuid.UUID, originalName string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("%w: photo data is empty", models.ErrInvalidInput)
	}
	ext := strings.ToLower(filepath.Ext(originalName))
	if !allowedPhotoExtensions[ext] {
		return "", fmt.Errorf("%w: unsupported photo type %q", models.ErrInvalidInput, ext)
	}

	fileName := fmt.Sprintf("%s_%s%s", userID, uuid.New(), ext)
	filePath := filepath.Join(s.savePath, fileName)
	if err := os.WriteFile(filePath, data, 0644); err != nil {
		s.logger.Error("Failed to save photo", zap.String("path", filePath), zap.Error(err))
		return "", fmt.Errorf("%w: %v", ErrPhotoSaveFailed, err)
	}

	photoURL := s.baseURL + "/" + fileName
	s.logger.Info("Photo saved", zap.String("path", filePath), zap.String("url", photoURL))
	return photoURL, nil
}
