package service

import (
	"context"
	"mime/multipart"
	"net/textproto"
	"testing"

	"chatterbox/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeObjectStore struct {
	objectName string
	url        string
}

func (f *fakeObjectStore) Upload(_ context.Context, _ *multipart.FileHeader) (string, string, error) {
	return f.objectName, f.url, nil
}

func fileHeader(name, contentType string, size int64) *multipart.FileHeader {
	return &multipart.FileHeader{
		Filename: name,
		Size:     size,
		Header:   textproto.MIMEHeader{"Content-Type": []string{contentType}},
	}
}

func TestUploadBuildsFileMeta(t *testing.T) {
	store := &fakeObjectStore{
		objectName: "attachments/abc.png",
		url:        "http://minio/chatterbox-uploads/attachments/abc.png",
	}
	svc := NewUploadService(store)

	meta, err := svc.Upload(context.Background(), fileHeader("cat.png", "image/png", 1024))
	require.NoError(t, err)
	assert.Equal(t, "attachments/abc.png", meta.Filename)
	assert.Equal(t, "cat.png", meta.OriginalName)
	assert.Equal(t, int64(1024), meta.Size)
	assert.Equal(t, "image/png", meta.MimeType)
	assert.Equal(t, store.url, meta.URL)
}

func TestUploadRejectsOversizedFile(t *testing.T) {
	svc := NewUploadService(&fakeObjectStore{})

	_, err := svc.Upload(context.Background(), fileHeader("huge.bin", "application/octet-stream", maxUploadSize+1))
	assert.ErrorIs(t, err, ErrValidation)
}

func TestKindFor(t *testing.T) {
	assert.Equal(t, models.MessageTypeImage, KindFor("image/png"))
	assert.Equal(t, models.MessageTypeImage, KindFor("image/webp"))
	assert.Equal(t, models.MessageTypeFile, KindFor("application/pdf"))
	assert.Equal(t, models.MessageTypeFile, KindFor(""))
}
