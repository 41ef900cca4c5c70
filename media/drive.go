package media

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
)

// Uploader pushes an image blob to durable storage and returns a public URL.
type Uploader interface {
	Upload(ctx context.Context, data []byte, filename, mimeType string) (string, error)
}

// DriveUploader stores images in a shared Google Drive folder. The folder is
// mandatory - service accounts have no storage quota of their own, so uploads
// must land in a folder shared with the service account.
type DriveUploader struct {
	service  *drive.Service
	folderID string
}

func NewDriveUploader(service *drive.Service, folderID string) (*DriveUploader, error) {
	if strings.TrimSpace(folderID) == "" {
		return nil, fmt.Errorf("DRIVE_FOLDER_ID is required for service account uploads")
	}

	return &DriveUploader{
		service:  service,
		folderID: folderID,
	}, nil
}

// Upload creates the file, marks it world-readable and returns the direct
// access URL consumed by the Sheets IMAGE formula.
func (u *DriveUploader) Upload(ctx context.Context, data []byte, filename, mimeType string) (string, error) {
	metadata := drive.File{
		Name:     filename,
		MimeType: mimeType,
		Parents:  []string{u.folderID},
	}

	file, err := u.service.Files.Create(&metadata).
		Media(bytes.NewReader(data), googleapi.ContentType(mimeType)).
		Fields("id").
		SupportsAllDrives(true).
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("error uploading %s to Google Drive (%w)", filename, err)
	}

	permission := drive.Permission{
		Type: "anyone",
		Role: "reader",
	}

	if _, err := u.service.Permissions.Create(file.Id, &permission).
		SupportsAllDrives(true).
		Context(ctx).
		Do(); err != nil {
		return "", fmt.Errorf("error setting public permission on %s (%w)", file.Id, err)
	}

	url := fmt.Sprintf("https://drive.google.com/uc?id=%s", file.Id)

	slog.Info("uploaded image to Google Drive", "file", filename, "id", file.Id, "url", url)

	return url, nil
}
