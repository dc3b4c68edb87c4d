package service

import (
	"context"
	"fmt"
	"mime/multipart"
	"strings"

	"chatterbox/internal/models"
)

const maxUploadSize = 10 << 20 // 10 MiB

// ObjectStore stores attachment blobs; satisfied by the minio client.
type ObjectStore interface {
	Upload(ctx context.Context, file *multipart.FileHeader) (objectName, url string, err error)
}

type UploadService struct {
	store ObjectStore
}

func NewUploadService(store ObjectStore) *UploadService {
	return &UploadService{store: store}
}

// Upload validates and stores an attachment, returning its metadata
// ready to embed in a message.
func (s *UploadService) Upload(ctx context.Context, file *multipart.FileHeader) (*models.FileMeta, error) {
	if file.Size > maxUploadSize {
		return nil, fmt.Errorf("%w: file exceeds %d bytes", ErrValidation, maxUploadSize)
	}

	objectName, url, err := s.store.Upload(ctx, file)
	if err != nil {
		return nil, err
	}

	contentType := file.Header.Get("Content-Type")
	return &models.FileMeta{
		Filename:     objectName,
		OriginalName: file.Filename,
		Size:         file.Size,
		MimeType:     contentType,
		URL:          url,
	}, nil
}

// KindFor maps a content type to the message type it produces.
func KindFor(contentType string) string {
	if strings.HasPrefix(contentType, "image/") {
		return models.MessageTypeImage
	}
	return models.MessageTypeFile
}
