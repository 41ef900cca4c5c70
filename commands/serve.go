package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/khchen/lifelogger/config"
	"github.com/khchen/lifelogger/ledger"
	"github.com/khchen/lifelogger/line"
	"github.com/khchen/lifelogger/webhook"
)

var ServeCmd = Serve{
	port: 0,
}

// Serve runs the LINE webhook server.
type Serve struct {
	port int
}

func (cmd *Serve) Name() string {
	return "serve"
}

func (cmd *Serve) Description() string {
	return "Runs the LINE webhook server, appending received messages to the Google Sheets ledger"
}

func (cmd *Serve) Usage() string {
	return "[--port <port>]"
}

func (cmd *Serve) Help() {
	fmt.Println()
	fmt.Printf("  Usage: %s [--debug] [--config <file>] serve [options]\n", APP)
	fmt.Println()
	fmt.Println("  Runs the LINE webhook server. Configuration is read from the environment")
	fmt.Println("  (optionally a .env file), with an optional YAML configuration file.")
	fmt.Println()

	helpOptions(cmd.FlagSet())

	fmt.Println()
	fmt.Println("  Examples:")
	fmt.Printf("    %s serve\n", APP)
	fmt.Printf("    %s --debug --config lifelogger.yaml serve --port 8080\n", APP)
	fmt.Println()
}

func (cmd *Serve) FlagSet() *flag.FlagSet {
	flagset := flag.NewFlagSet("serve", flag.ExitOnError)

	flagset.IntVar(&cmd.port, "port", cmd.port, "Listen port. Defaults to the PORT environment variable (or 8080)")

	return flagset
}

func (cmd *Serve) Execute(ctx context.Context, options *Options) error {
	cfg, err := config.Load(options.Config)
	if err != nil {
		return err
	}

	if missing := cfg.Validate(); len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}

	initialiseLogging(cfg.LogLevel, options.Debug)

	port := cfg.Port
	if cmd.port != 0 {
		port = cmd.port
	}

	// ... construct the collaborators once, up front
	service, err := sheetsService(ctx, cfg)
	if err != nil {
		return err
	}

	client, err := line.NewClient(cfg.ChannelAccessToken, cfg.ChannelSecret)
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
		client,
		images,
		client)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: dispatcher.Routes(),
	}

	shutdown := make(chan error, 1)

	go func() {
		interrupt := make(chan os.Signal, 1)
		signal.Notify(interrupt, syscall.SIGINT, syscall.SIGTERM)
		<-interrupt

		slog.Info("shutting down")

		timeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		shutdown <- srv.Shutdown(timeout)
	}()

	slog.Info("lifelogger listening",
		"port", port,
		"spreadsheet", cfg.SpreadsheetID,
		"backend", cfg.UploadBackend)

	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return <-shutdown
}
