package commands

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/khchen/lifelogger/config"
	"github.com/khchen/lifelogger/ledger"
	"github.com/khchen/lifelogger/line"
	"github.com/khchen/lifelogger/webhook"
)

var SimulateImageCmd = SimulateImage{
	file:   "test_image.jpg",
	userID: "local-simulation",
}

// SimulateImage pushes a local image file through the full image pipeline -
// compression, upload to the configured backend and the ledger append.
type SimulateImage struct {
	file   string
	userID string
}

func (cmd *SimulateImage) Name() string {
	return "simulate-image"
}

func (cmd *SimulateImage) Description() string {
	return "Compresses and uploads a local image file and logs it to the spreadsheet, bypassing the webhook"
}

func (cmd *SimulateImage) Usage() string {
	return "[--file <image>]"
}

func (cmd *SimulateImage) Help() {
	fmt.Println()
	fmt.Printf("  Usage: %s [--debug] [--config <file>] simulate-image [options]\n", APP)
	fmt.Println()
	fmt.Println("  Reads a local image file and runs it through the same compress/upload/append")
	fmt.Println("  pipeline as a live image message, standing in for the LINE content download.")
	fmt.Println()

	helpOptions(cmd.FlagSet())

	fmt.Println()
	fmt.Println("  Examples:")
	fmt.Printf("    %s simulate-image --file test_image.jpg\n", APP)
	fmt.Println()
}

func (cmd *SimulateImage) FlagSet() *flag.FlagSet {
	flagset := flag.NewFlagSet("simulate-image", flag.ExitOnError)

	flagset.StringVar(&cmd.file, "file", cmd.file, "Image file to upload")
	flagset.StringVar(&cmd.userID, "user", cmd.userID, "Subject identifier recorded with the message")

	return flagset
}

func (cmd *SimulateImage) Execute(ctx context.Context, options *Options) error {
	cfg, err := config.Load(options.Config)
	if err != nil {
		return err
	}

	if missing := cfg.Validate(); len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}

	initialiseLogging(cfg.LogLevel, options.Debug)

	if _, err := os.Stat(cmd.file); err != nil {
		return fmt.Errorf("unable to read image file %s (%v)", cmd.file, err)
	}

	service, err := sheetsService(ctx, cfg)
	if err != nil {
		return err
	}

	images, err := uploader(ctx, cfg)
	if err != nil {
		return err
	}

	dispatcher := webhook.NewDispatcher(
		cfg.ChannelSecret,
		ledger.New(service, cfg.SpreadsheetID),
		fileDownloader{path: cmd.file},
		images,
		nopReplier{})

	event := line.Event{
		Type:      "message",
		Timestamp: time.Now().UnixMilli(),
		Source:    line.Source{Type: "user", UserID: cmd.userID},
		Message:   line.Message{ID: "simulated", Type: "image"},
	}

	if err := dispatcher.Dispatch(ctx, event); err != nil {
		return err
	}

	fmt.Printf("logged image %s to spreadsheet %s\n", cmd.file, cfg.SpreadsheetID)

	return nil
}

// fileDownloader substitutes a local file for the LINE content endpoint.
type fileDownloader struct {
	path string
}

func (f fileDownloader) GetMessageContent(ctx context.Context, messageID string) ([]byte, error) {
	return os.ReadFile(f.path)
}
