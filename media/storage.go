package media

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/storage/v1"
)

// AllowedMIMETypes is the image allow-list enforced by the storage backend.
var AllowedMIMETypes = []string{
	"image/jpeg",
	"image/png",
	"image/gif",
	"image/webp",
}

// StorageUploader stores images as world-readable objects in a Google Cloud
// Storage bucket.
type StorageUploader struct {
	service *storage.Service
	bucket  string
	allowed map[string]bool
}

func NewStorageUploader(service *storage.Service, bucket string) (*StorageUploader, error) {
	if strings.TrimSpace(bucket) == "" {
		return nil, fmt.Errorf("STORAGE_BUCKET_NAME is required")
	}

	allowed := map[string]bool{}
	for _, v := range AllowedMIMETypes {
		allowed[v] = true
	}

	return &StorageUploader{
		service: service,
		bucket:  bucket,
		allowed: allowed,
	}, nil
}

// Upload validates the MIME type against the allow-list before any network
// call, then inserts the object with a 'publicRead' ACL.
func (u *StorageUploader) Upload(ctx context.Context, data []byte, filename, mimeType string) (string, error) {
	if !u.allowed[mimeType] {
		return "", fmt.Errorf("MIME type '%s' is not allowed (expected one of %v)", mimeType, AllowedMIMETypes)
	}

	object := storage.Object{
		Name:        filename,
		ContentType: mimeType,
	}

	if _, err := u.service.Objects.Insert(u.bucket, &object).
		Media(bytes.NewReader(data), googleapi.ContentType(mimeType)).
		PredefinedAcl("publicRead").
		Context(ctx).
		Do(); err != nil {
		return "", fmt.Errorf("error uploading %s to bucket %s (%w)", filename, u.bucket, err)
	}

	url := fmt.Sprintf("https://storage.googleapis.com/%s/%s", u.bucket, filename)

	slog.Info("uploaded image to Cloud Storage", "file", filename, "bucket", u.bucket, "url", url)

	return url, nil
}
