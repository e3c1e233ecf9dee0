// Package storage handles media file uploads for posts and profiles.
package storage

import (
	"context"

	"github.com/peerwave/backend/internal/models"
)

// UploadResult contains the result of a media upload
type UploadResult struct {
	Key       string `json:"key"`
	URL       string `json:"url"`
	MediaType string `json:"type"`
	Size      int64  `json:"size"`
}

// MediaUploader stores uploaded media and returns a public URL
type MediaUploader interface {
	UploadMedia(ctx context.Context, data []byte, wallet, filename, contentType string) (*UploadResult, error)
	DeleteFile(ctx context.Context, key string) error
}

// ClassifyMediaType maps an upload's MIME type to the media type stored on
// posts. Anything that is not a video is treated as an image.
func ClassifyMediaType(contentType string) string {
	if len(contentType) >= 6 && contentType[:6] == "video/" {
		return models.MediaVideo
	}
	return models.MediaImage
}
