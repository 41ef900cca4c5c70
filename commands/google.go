package commands

import (
	"context"
	"fmt"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
	"google.golang.org/api/storage/v1"

	"github.com/khchen/lifelogger/config"
	"github.com/khchen/lifelogger/creds"
	"github.com/khchen/lifelogger/media"
)

func sheetsService(ctx context.Context, cfg config.Config) (*sheets.Service, error) {
	client, err := creds.Client(ctx, cfg, creds.ScopeSpreadsheets)
	if err != nil {
		return nil, err
	}

	service, err := sheets.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("unable to create Sheets client (%v)", err)
	}

	return service, nil
}

func driveService(ctx context.Context, cfg config.Config) (*drive.Service, error) {
	client, err := creds.Client(ctx, cfg, creds.ScopeDriveFile)
	if err != nil {
		return nil, err
	}

	service, err := drive.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("unable to create Drive client (%v)", err)
	}

	return service, nil
}

func storageService(ctx context.Context, cfg config.Config) (*storage.Service, error) {
	client, err := creds.Client(ctx, cfg, creds.ScopeStorage)
	if err != nil {
		return nil, err
	}

	service, err := storage.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("unable to create Cloud Storage client (%v)", err)
	}

	return service, nil
}

// uploader builds the image upload backend selected by the configuration.
func uploader(ctx context.Context, cfg config.Config) (media.Uploader, error) {
	switch cfg.UploadBackend {
	case config.BackendStorage:
		service, err := storageService(ctx, cfg)
		if err != nil {
			return nil, err
		}

		u, err := media.NewStorageUploader(service, cfg.StorageBucket)
		if err != nil {
			return nil, err
		}

		return u, nil

	case config.BackendDrive:
		service, err := driveService(ctx, cfg)
		if err != nil {
			return nil, err
		}

		u, err := media.NewDriveUploader(service, cfg.DriveFolderID)
		if err != nil {
			return nil, err
		}

		return u, nil

	default:
		return nil, fmt.Errorf("unknown upload backend '%s' - expected '%s' or '%s'", cfg.UploadBackend, config.BackendDrive, config.BackendStorage)
	}
}
