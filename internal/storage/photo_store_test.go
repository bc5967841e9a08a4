package storage_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"biographer-server/internal/models"
	"biographer-server/internal/storage"
)

func TestPhotoStoreSave(t *testing.T) {
	dir := t.TempDir()
	store, err := storage.NewPhotoStore(dir, "http://localhost:8080/photos/", zap.NewNop())
	require.NoError(t, err)

	userID := uuid.New()
	url, err := store.Save(userID, "me.JPG", []byte{0xff, 0xd8, 0xff})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "http://localhost:8080/photos/"))
	assert.True(t, strings.HasSuffix(url, ".jpg"))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	data, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	require.NoError(t, err)
	assert.Equal(t, []byte{0xff, 0xd8, 0xff}, data)
}

func TestPhotoStoreRejectsUnknownExtension(t *testing.T) {
	store, err := storage.NewPhotoStore(t.TempDir(), "http://localhost/photos", zap.NewNop())
	require.NoError(t, err)

	_, err = store.Save(uuid.New(), "malware.exe", []byte{0x4d, 0x5a})
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestPhotoStoreRejectsEmptyData(t *testing.T) {
	store, err := storage.NewPhotoStore(t.TempDir(), "http://localhost/photos", zap.NewNop())
	require.NoError(t, err)

	_, err = store.Save(uuid.New(), "empty.png", nil)
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}
