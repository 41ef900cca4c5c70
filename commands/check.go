package commands

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/khchen/lifelogger/config"
	"github.com/khchen/lifelogger/creds"
	"github.com/khchen/lifelogger/line"
)

var CheckCmd = Check{}

// Check is a standalone environment and connectivity self-check, intended
// for diagnosing Cloud Run deployments before pointing the LINE webhook at
// them.
type Check struct {
}

func (cmd *Check) Name() string {
	return "check"
}

func (cmd *Check) Description() string {
	return "Verifies the configuration, credentials and connectivity to Google Sheets, the upload backend and the LINE API"
}

func (cmd *Check) Usage() string {
	return ""
}

func (cmd *Check) Help() {
	fmt.Println()
	fmt.Printf("  Usage: %s [--config <file>] check\n", APP)
	fmt.Println()
	fmt.Println("  Verifies, in order: required configuration, the service account credential,")
	fmt.Println("  the spreadsheet, the configured image upload backend and the LINE channel")
	fmt.Println("  credentials. Exits non-zero on the first failed check.")
	fmt.Println()
}

func (cmd *Check) FlagSet() *flag.FlagSet {
	return flag.NewFlagSet("check", flag.ExitOnError)
}

func (cmd *Check) Execute(ctx context.Context, options *Options) error {
	cfg, err := config.Load(options.Config)
	if err != nil {
		return err
	}

	initialiseLogging(cfg.LogLevel, options.Debug)

	// ... configuration
	fmt.Println("1. configuration")
	if missing := cfg.Validate(); len(missing) > 0 {
		for _, v := range missing {
			fmt.Printf("   ✗ %s is not set\n", v)
		}

		return fmt.Errorf("missing required configuration")
	}

	fmt.Printf("   ✓ spreadsheet ID    %s\n", cfg.SpreadsheetID)
	fmt.Printf("   ✓ upload backend    %s\n", cfg.UploadBackend)

	// ... service account credential
	fmt.Println("2. service account credential")
	account, err := creds.Describe(cfg)
	if err != nil {
		fmt.Printf("   ✗ %v\n", err)
		return err
	}

	fmt.Printf("   ✓ project           %s\n", account.ProjectID)
	fmt.Printf("   ✓ client email      %s\n", account.ClientEmail)

	// ... spreadsheet
	fmt.Println("3. Google Sheets")
	service, err := sheetsService(ctx, cfg)
	if err != nil {
		fmt.Printf("   ✗ %v\n", err)
		return err
	}

	spreadsheet, err := service.Spreadsheets.Get(cfg.SpreadsheetID).Context(ctx).Do()
	if err != nil {
		fmt.Printf("   ✗ unable to open spreadsheet (%v)\n", err)
		return fmt.Errorf("unable to open spreadsheet %s (%w)", cfg.SpreadsheetID, err)
	}

	fmt.Printf("   ✓ spreadsheet       %s\n", spreadsheet.Properties.Title)
	fmt.Printf("   ✓ worksheets        %d\n", len(spreadsheet.Sheets))

	// ... upload backend
	fmt.Println("4. image upload backend")
	if err := cmd.checkBackend(ctx, cfg); err != nil {
		fmt.Printf("   ✗ %v\n", err)
		return err
	}

	// ... LINE channel
	fmt.Println("5. LINE channel")
	client, err := line.NewClient(cfg.ChannelAccessToken, cfg.ChannelSecret)
	if err != nil {
		fmt.Printf("   ✗ %v\n", err)
		return err
	}

	info, err := client.GetBotInfo(ctx)
	if err != nil {
		fmt.Printf("   ✗ %v\n", err)
		return err
	}

	fmt.Printf("   ✓ bot               %s (%s)\n", info.DisplayName, info.BasicID)

	fmt.Println()
	fmt.Println("all checks passed")

	return nil
}

func (cmd *Check) checkBackend(ctx context.Context, cfg config.Config) error {
	switch cfg.UploadBackend {
	case config.BackendStorage:
		if strings.TrimSpace(cfg.StorageBucket) == "" {
			return fmt.Errorf("STORAGE_BUCKET_NAME is not set")
		}

		service, err := storageService(ctx, cfg)
		if err != nil {
			return err
		}

		bucket, err := service.Buckets.Get(cfg.StorageBucket).Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("unable to access bucket '%s' (%w)", cfg.StorageBucket, err)
		}

		fmt.Printf("   ✓ bucket            %s (%s)\n", bucket.Name, bucket.Location)

	case config.BackendDrive:
		if strings.TrimSpace(cfg.DriveFolderID) == "" {
			return fmt.Errorf("DRIVE_FOLDER_ID is not set")
		}

		service, err := driveService(ctx, cfg)
		if err != nil {
			return err
		}

		folder, err := service.Files.Get(cfg.DriveFolderID).
			Fields("id", "name").
			SupportsAllDrives(true).
			Context(ctx).
			Do()
		if err != nil {
			return fmt.Errorf("unable to access Drive folder '%s' (%w)", cfg.DriveFolderID, err)
		}

		fmt.Printf("   ✓ folder            %s (%s)\n", folder.Name, folder.Id)

	default:
		return fmt.Errorf("unknown upload backend '%s'", cfg.UploadBackend)
	}

	return nil
}
