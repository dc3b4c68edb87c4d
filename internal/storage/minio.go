package storage

import (
	"context"
	"fmt"
	"mime/multipart"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinIOClient stores chat attachments in a single bucket.
type MinIOClient struct {
	client *minio.Client
	bucket string
}

// NewMinIOClient connects and ensures the bucket exists.
func NewMinIOClient(endpoint, accessKey, secretKey, bucket string, useSSL bool) (*MinIOClient, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	exists, err := client.BucketExists(context.Background(), bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(context.Background(), bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return &MinIOClient{client: client, bucket: bucket}, nil
}

// Upload stores the file under a unique object name and returns the
// object name and public URL.
func (m *MinIOClient) Upload(ctx context.Context, file *multipart.FileHeader) (objectName, url string, err error) {
	src, err := file.Open()
	if err != nil {
		return "", "", fmt.Errorf("failed to open file: %w", err)
	}
	defer src.Close()

	objectName = fmt.Sprintf("attachments/%s%s", uuid.New().String(), filepath.Ext(file.Filename))
	_, err = m.client.PutObject(ctx, m.bucket, objectName, src, file.Size, minio.PutObjectOptions{
		ContentType: file.Header.Get("Content-Type"),
	})
	if err != nil {
		return "", "", fmt.Errorf("failed to upload file: %w", err)
	}

	url = fmt.Sprintf("%s/%s/%s", m.client.EndpointURL().String(), m.bucket, objectName)
	return objectName, url, nil
}
