package commands

import (
	"context"
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/khchen/lifelogger/config"
	"github.com/khchen/lifelogger/ledger"
	"github.com/khchen/lifelogger/line"
	"github.com/khchen/lifelogger/webhook"
)

var SimulateTextCmd = SimulateText{
	message: "測試訊息",
	userID:  "local-simulation",
}

// SimulateText pushes a synthetic text message event through the real
// pipeline (Sheets and all), without a live webhook. Useful with ngrok-less
// local development.
type SimulateText struct {
	message string
	userID  string
}

func (cmd *SimulateText) Name() string {
	return "simulate-text"
}

func (cmd *SimulateText) Description() string {
	return "Logs a synthetic text message to the spreadsheet, bypassing the webhook"
}

func (cmd *SimulateText) Usage() string {
	return "[--message <text>]"
}

func (cmd *SimulateText) Help() {
	fmt.Println()
	fmt.Printf("  Usage: %s [--debug] [--config <file>] simulate-text [options]\n", APP)
	fmt.Println()
	fmt.Println("  Constructs a text message event with the current time and runs it through")
	fmt.Println("  the same pipeline as a live webhook delivery.")
	fmt.Println()

	helpOptions(cmd.FlagSet())

	fmt.Println()
	fmt.Println("  Examples:")
	fmt.Printf("    %s simulate-text --message \"午餐：牛肉麵\"\n", APP)
	fmt.Println()
}

func (cmd *SimulateText) FlagSet() *flag.FlagSet {
	flagset := flag.NewFlagSet("simulate-text", flag.ExitOnError)

	flagset.StringVar(&cmd.message, "message", cmd.message, "Message text to log")
	flagset.StringVar(&cmd.userID, "user", cmd.userID, "Subject identifier recorded with the message")

	return flagset
}

func (cmd *SimulateText) Execute(ctx context.Context, options *Options) error {
	cfg, err := config.Load(options.Config)
	if err != nil {
		return err
	}

	if missing := cfg.Validate(); len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}

	initialiseLogging(cfg.LogLevel, options.Debug)

	service, err := sheetsService(ctx, cfg)
	if err != nil {
		return err
	}

	dispatcher := webhook.NewDispatcher(
		cfg.ChannelSecret,
		ledger.New(service, cfg.SpreadsheetID),
		nopDownloader{},
		nopUploader{},
		nopReplier{})

	event := line.Event{
		Type:      "message",
		Timestamp: time.Now().UnixMilli(),
		Source:    line.Source{Type: "user", UserID: cmd.userID},
		Message:   line.Message{ID: "simulated", Type: "text", Text: cmd.message},
	}

	if err := dispatcher.Dispatch(ctx, event); err != nil {
		return err
	}

	fmt.Printf("logged text message to spreadsheet %s\n", cfg.SpreadsheetID)

	return nil
}

type nopDownloader struct{}

func (nopDownloader) GetMessageContent(ctx context.Context, messageID string) ([]byte, error) {
	return nil, fmt.Errorf("content download is not available in simulation")
}

type nopUploader struct{}

func (nopUploader) Upload(ctx context.Context, data []byte, filename, mimeType string) (string, error) {
	return "", fmt.Errorf("upload is not available in simulation")
}

type nopReplier struct{}

func (nopReplier) ReplyText(ctx context.Context, replyToken, text string) error {
	return nil
}
