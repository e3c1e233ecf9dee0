package storage

import (
	"testing"

	"github.com/peerwave/backend/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestClassifyMediaType(t *testing.T) {
	cases := map[string]string{
		"video/mp4":                models.MediaVideo,
		"video/webm":               models.MediaVideo,
		"video/quicktime":          models.MediaVideo,
		"image/png":                models.MediaImage,
		"image/jpeg":               models.MediaImage,
		"image/gif":                models.MediaImage,
		"application/octet-stream": models.MediaImage,
		"":                         models.MediaImage,
	}

	for contentType, want := range cases {
		assert.Equal(t, want, ClassifyMediaType(contentType), contentType)
	}
}

func TestExtensionForContentType(t *testing.T) {
	assert.Equal(t, ".jpg", extensionForContentType("image/jpeg"))
	assert.Equal(t, ".mp4", extensionForContentType("video/mp4"))
	assert.Equal(t, ".bin", extensionForContentType("application/pdf"))
}
