// Package record maps inbound LINE events to the normalised, append-ready
// representation written to the ledger.
package record

import (
	"fmt"
	"strings"
	"time"

	"github.com/khchen/lifelogger/localtime"
)

// Kind identifies the type of a logged message.
type Kind int

const (
	Text Kind = iota
	Image
	Unsupported
)

// Label returns the display label written to the ledger's type column.
func (k Kind) Label() string {
	switch k {
	case Text:
		return "文字"
	case Image:
		return "圖片"
	default:
		return "[不支援]"
	}
}

// Status marks whether a message made it through the pipeline.
type Status int

const (
	Success Status = iota
	Failed
)

func (s Status) Label() string {
	if s == Failed {
		return "失敗"
	}

	return "成功"
}

// Record is one logged event. It is never persisted as an object - only the
// three-column projection from Row is written to the spreadsheet.
type Record struct {
	Timestamp time.Time
	Kind      Kind
	Content   string
	UserID    string
	Status    Status
	Err       string
}

// NewText builds a record for a text message. Leading and trailing whitespace
// is trimmed; callers are expected to drop whitespace-only messages entirely
// rather than log them.
func NewText(timestamp time.Time, text, userID string) Record {
	return Record{
		Timestamp: timestamp,
		Kind:      Text,
		Content:   strings.TrimSpace(text),
		UserID:    userID,
		Status:    Success,
	}
}

// NewImage builds a record for an uploaded image. The content is a Google
// Sheets IMAGE formula so the spreadsheet renders the image inline.
func NewImage(timestamp time.Time, imageURL, userID string) Record {
	return Record{
		Timestamp: timestamp,
		Kind:      Image,
		Content:   fmt.Sprintf("=IMAGE(\"%s\", 1)", imageURL),
		UserID:    userID,
		Status:    Success,
	}
}

// NewUnsupported builds a placeholder record for message types the logger
// does not handle (stickers, video, audio). typeName may be empty.
func NewUnsupported(timestamp time.Time, userID, typeName string) Record {
	content := "[不支援的訊息類型]"
	if typeName != "" {
		content = fmt.Sprintf("[不支援的訊息類型: %s]", typeName)
	}

	return Record{
		Timestamp: timestamp,
		Kind:      Unsupported,
		Content:   content,
		UserID:    userID,
		Status:    Success,
	}
}

// NewError builds a failed record whose content embeds the error text.
func NewError(timestamp time.Time, userID, errMsg string, kind Kind) Record {
	return Record{
		Timestamp: timestamp,
		Kind:      kind,
		Content:   fmt.Sprintf("[錯誤: %s]", errMsg),
		UserID:    userID,
		Status:    Failed,
		Err:       errMsg,
	}
}

// Row projects the record to the ledger's (time, type, content) columns.
func (r Record) Row() []string {
	return []string{localtime.Format(r.Timestamp), r.Kind.Label(), r.Content}
}
