// Package webhook is the LINE webhook entry point: it verifies the inbound
// signature, demultiplexes events by message kind and drives the
// build-upload-append pipeline. Business failures are logged and swallowed so
// that LINE always sees a 200 and never retry-storms an event.
package webhook

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/khchen/lifelogger/line"
	"github.com/khchen/lifelogger/localtime"
	"github.com/khchen/lifelogger/media"
	"github.com/khchen/lifelogger/record"
)

const liveness = "LINE Bot LifeLogger is running!"

// Recorder appends a message record to the spreadsheet ledger.
type Recorder interface {
	Record(ctx context.Context, rec record.Record) error
}

// Downloader fetches raw attachment bytes from the messaging platform.
type Downloader interface {
	GetMessageContent(ctx context.Context, messageID string) ([]byte, error)
}

// Replier delivers the best-effort acknowledgement message.
type Replier interface {
	ReplyText(ctx context.Context, replyToken, text string) error
}

// Dispatcher handles one webhook request at a time: signature check, event
// demux, then text/image/unsupported paths. All collaborators are injected at
// construction and shared across requests.
type Dispatcher struct {
	secret     string
	recorder   Recorder
	downloader Downloader
	uploader   media.Uploader
	replier    Replier
}

func NewDispatcher(secret string, recorder Recorder, downloader Downloader, uploader media.Uploader, replier Replier) *Dispatcher {
	return &Dispatcher{
		secret:     secret,
		recorder:   recorder,
		downloader: downloader,
		uploader:   uploader,
		replier:    replier,
	}
}

// Routes returns the HTTP mux with the webhook and liveness routes.
func (d *Dispatcher) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, liveness)
	})

	mux.HandleFunc("POST /webhook", d.handleWebhook)

	return mux
}

// handleWebhook rejects bad signatures with a 400; every other outcome -
// including any failure inside the business paths - is acknowledged with
// '200 OK' so that LINE does not redeliver the events.
func (d *Dispatcher) handleWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	signature := r.Header.Get(line.SignatureHeader)
	if signature == "" || !line.ValidateSignature(d.secret, body, signature) {
		slog.Warn("webhook signature verification failed", "remote", r.RemoteAddr)
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	events, err := line.ParseRequest(body)
	if err != nil {
		slog.Error("unable to parse webhook request", "error", err)
	}

	for _, event := range events {
		if err := d.Dispatch(r.Context(), event); err != nil {
			slog.Error("error handling event",
				"type", event.Message.Type,
				"user", event.Source.UserID,
				"error", err)
		}
	}

	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "OK")
}

// Dispatch routes a single event to its message-kind path. The returned error
// is for logging only - callers acknowledge regardless.
func (d *Dispatcher) Dispatch(ctx context.Context, event line.Event) error {
	if event.Type != "message" {
		slog.Debug("ignoring event", "type", event.Type)
		return nil
	}

	switch event.Message.Type {
	case "text":
		return d.handleText(ctx, event)

	case "image":
		return d.handleImage(ctx, event)

	case "sticker":
		return d.handleUnsupported(ctx, event, "貼圖")

	case "video":
		return d.handleUnsupported(ctx, event, "影片")

	case "audio":
		return d.handleUnsupported(ctx, event, "音訊")

	default:
		return d.handleUnsupported(ctx, event, "")
	}
}

func (d *Dispatcher) handleText(ctx context.Context, event line.Event) error {
	text := strings.TrimSpace(event.Message.Text)
	if text == "" {
		slog.Warn("dropping whitespace-only message", "user", event.Source.UserID)
		return nil
	}

	timestamp := localtime.FromUnixMilli(event.Timestamp)
	rec := record.NewText(timestamp, text, event.Source.UserID)

	if err := d.recorder.Record(ctx, rec); err != nil {
		return err
	}

	d.reply(ctx, event.ReplyToken, "✅ 已記錄")

	return nil
}

func (d *Dispatcher) handleImage(ctx context.Context, event line.Event) error {
	content, err := d.downloader.GetMessageContent(ctx, event.Message.ID)
	if err != nil {
		return err
	}

	compressed, mimeType, err := media.Compress(content)
	if err != nil {
		return err
	}

	timestamp := localtime.FromUnixMilli(event.Timestamp)
	filename := media.Filename(timestamp, event.Message.ID)

	url, err := d.uploader.Upload(ctx, compressed, filename, mimeType)
	if err != nil {
		return err
	}

	rec := record.NewImage(timestamp, url, event.Source.UserID)

	if err := d.recorder.Record(ctx, rec); err != nil {
		return err
	}

	d.reply(ctx, event.ReplyToken, "✅ 已記錄（圖片）")

	return nil
}

// handleUnsupported only logs the occurrence. Recording these with
// record.NewUnsupported is a documented extension point that is deliberately
// not wired up.
func (d *Dispatcher) handleUnsupported(ctx context.Context, event line.Event, typeName string) error {
	slog.Info("received unsupported message type",
		"type", event.Message.Type,
		"name", typeName,
		"user", event.Source.UserID)

	return nil
}

// reply delivers the acknowledgement message. Failures are logged at warning
// level and never propagated - the record is already written.
func (d *Dispatcher) reply(ctx context.Context, replyToken, text string) {
	if replyToken == "" {
		return
	}

	if err := d.replier.ReplyText(ctx, replyToken, text); err != nil {
		slog.Warn("unable to send reply", "error", err)
	}
}
