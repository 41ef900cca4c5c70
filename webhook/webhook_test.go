package webhook

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/khchen/lifelogger/line"
	"github.com/khchen/lifelogger/record"
)

const secret = "0123456789abcdef0123456789abcdef"

type fakeRecorder struct {
	records []record.Record
	err     error
}

func (f *fakeRecorder) Record(ctx context.Context, rec record.Record) error {
	if f.err != nil {
		return f.err
	}

	f.records = append(f.records, rec)

	return nil
}

type fakeDownloader struct {
	content []byte
	err     error
}

func (f *fakeDownloader) GetMessageContent(ctx context.Context, messageID string) ([]byte, error) {
	return f.content, f.err
}

type fakeUploader struct {
	url       string
	err       error
	filenames []string
}

func (f *fakeUploader) Upload(ctx context.Context, data []byte, filename, mimeType string) (string, error) {
	f.filenames = append(f.filenames, filename)

	if f.err != nil {
		return "", f.err
	}

	return f.url, nil
}

type fakeReplier struct {
	replies []string
	err     error
}

func (f *fakeReplier) ReplyText(ctx context.Context, replyToken, text string) error {
	if f.err != nil {
		return f.err
	}

	f.replies = append(f.replies, text)

	return nil
}

func post(t *testing.T, mux *http.ServeMux, body string, sign bool) *httptest.ResponseRecorder {
	rq := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(body))
	if sign {
		rq.Header.Set(line.SignatureHeader, line.Sign(secret, []byte(body)))
	}

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, rq)

	return w
}

func eventBatch(message string) string {
	return fmt.Sprintf(`{
	  "destination": "U0000000000000000",
	  "events": [
	    {
	      "type": "message",
	      "timestamp": 1700004600000,
	      "replyToken": "reply-token-1",
	      "source": { "type": "user", "userId": "U1234567890abcdef" },
	      "message": %s
	    }
	  ]
	}`, message)
}

func pngBytes(t *testing.T) []byte {
	var buffer bytes.Buffer
	require.NoError(t, png.Encode(&buffer, image.NewRGBA(image.Rect(0, 0, 8, 8))))

	return buffer.Bytes()
}

func TestWebhookRejectsMissingSignature(t *testing.T) {
	recorder := &fakeRecorder{}
	d := NewDispatcher(secret, recorder, &fakeDownloader{}, &fakeUploader{}, &fakeReplier{})

	w := post(t, d.Routes(), eventBatch(`{ "id": "1", "type": "text", "text": "hello" }`), false)

	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Empty(t, recorder.records)
}

func TestWebhookRejectsInvalidSignature(t *testing.T) {
	recorder := &fakeRecorder{}
	d := NewDispatcher(secret, recorder, &fakeDownloader{}, &fakeUploader{}, &fakeReplier{})

	body := eventBatch(`{ "id": "1", "type": "text", "text": "hello" }`)
	rq := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(body))
	rq.Header.Set(line.SignatureHeader, line.Sign("some-other-secret", []byte(body)))

	w := httptest.NewRecorder()
	d.Routes().ServeHTTP(w, rq)

	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Empty(t, recorder.records)
}

func TestWebhookTextPath(t *testing.T) {
	recorder := &fakeRecorder{}
	replier := &fakeReplier{}
	d := NewDispatcher(secret, recorder, &fakeDownloader{}, &fakeUploader{}, replier)

	w := post(t, d.Routes(), eventBatch(`{ "id": "1", "type": "text", "text": "  午餐：牛肉麵  " }`), true)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "OK", w.Body.String())

	require.Len(t, recorder.records, 1)
	require.Equal(t, []string{"2023-11-15 07:30:00", "文字", "午餐：牛肉麵"}, recorder.records[0].Row())
	require.Equal(t, []string{"✅ 已記錄"}, replier.replies)
}

func TestWebhookDropsWhitespaceOnlyText(t *testing.T) {
	recorder := &fakeRecorder{}
	replier := &fakeReplier{}
	d := NewDispatcher(secret, recorder, &fakeDownloader{}, &fakeUploader{}, replier)

	w := post(t, d.Routes(), eventBatch(`{ "id": "1", "type": "text", "text": "   \n\t  " }`), true)

	require.Equal(t, http.StatusOK, w.Code)
	require.Empty(t, recorder.records)
	require.Empty(t, replier.replies)
}

func TestWebhookImagePath(t *testing.T) {
	recorder := &fakeRecorder{}
	uploader := &fakeUploader{url: "https://drive.google.com/uc?id=file-abc123"}
	replier := &fakeReplier{}
	d := NewDispatcher(secret, recorder, &fakeDownloader{content: pngBytes(t)}, uploader, replier)

	w := post(t, d.Routes(), eventBatch(`{ "id": "515242", "type": "image" }`), true)

	require.Equal(t, http.StatusOK, w.Code)

	require.Len(t, recorder.records, 1)
	require.Equal(t, record.Image, recorder.records[0].Kind)
	require.Equal(t, `=IMAGE("https://drive.google.com/uc?id=file-abc123", 1)`, recorder.records[0].Content)

	// filename is assembled from the localised event time and the message id
	require.Equal(t, []string{"linebot_20231115_073000_515242.jpg"}, uploader.filenames)
	require.Equal(t, []string{"✅ 已記錄（圖片）"}, replier.replies)
}

func TestWebhookAcknowledgesUploadFailure(t *testing.T) {
	recorder := &fakeRecorder{}
	uploader := &fakeUploader{err: fmt.Errorf("storage bucket unavailable")}
	d := NewDispatcher(secret, recorder, &fakeDownloader{content: pngBytes(t)}, uploader, &fakeReplier{})

	w := post(t, d.Routes(), eventBatch(`{ "id": "515242", "type": "image" }`), true)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "OK", w.Body.String())
	require.Empty(t, recorder.records)
}

func TestWebhookAcknowledgesLedgerFailure(t *testing.T) {
	recorder := &fakeRecorder{err: fmt.Errorf("sheets API quota exceeded")}
	replier := &fakeReplier{}
	d := NewDispatcher(secret, recorder, &fakeDownloader{}, &fakeUploader{}, replier)

	w := post(t, d.Routes(), eventBatch(`{ "id": "1", "type": "text", "text": "午餐" }`), true)

	require.Equal(t, http.StatusOK, w.Code)
	require.Empty(t, replier.replies)
}

func TestWebhookUnsupportedTypesAreLoggedOnly(t *testing.T) {
	recorder := &fakeRecorder{}
	replier := &fakeReplier{}
	d := NewDispatcher(secret, recorder, &fakeDownloader{}, &fakeUploader{}, replier)

	w := post(t, d.Routes(), eventBatch(`{ "id": "1", "type": "sticker", "packageId": "1", "stickerId": "2" }`), true)

	require.Equal(t, http.StatusOK, w.Code)
	require.Empty(t, recorder.records)
	require.Empty(t, replier.replies)
}

func TestWebhookReplyFailureDoesNotPropagate(t *testing.T) {
	recorder := &fakeRecorder{}
	replier := &fakeReplier{err: fmt.Errorf("invalid reply token")}
	d := NewDispatcher(secret, recorder, &fakeDownloader{}, &fakeUploader{}, replier)

	w := post(t, d.Routes(), eventBatch(`{ "id": "1", "type": "text", "text": "午餐" }`), true)

	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, recorder.records, 1)
}

func TestLivenessRoute(t *testing.T) {
	d := NewDispatcher(secret, &fakeRecorder{}, &fakeDownloader{}, &fakeUploader{}, &fakeReplier{})

	rq := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	d.Routes().ServeHTTP(w, rq)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "LINE Bot LifeLogger is running!", w.Body.String())
}
