package record

import (
	"reflect"
	"testing"
	"time"

	"github.com/khchen/lifelogger/localtime"
)

var timestamp = time.Date(2025, time.November, 9, 21, 5, 30, 0, localtime.Location)

func TestNewText(t *testing.T) {
	rec := NewText(timestamp, "  早餐：吐司加蛋  ", "U1234567890abcdef")

	expected := []string{"2025-11-09 21:05:30", "文字", "早餐：吐司加蛋"}
	if row := rec.Row(); !reflect.DeepEqual(row, expected) {
		t.Errorf("Incorrect row\n   expected: %v\n   got:      %v\n", expected, row)
	}

	if rec.Status != Success {
		t.Errorf("Expected status %v, got %v", Success, rec.Status)
	}
}

func TestNewImage(t *testing.T) {
	rec := NewImage(timestamp, "https://example/x", "U1234567890abcdef")

	if expected := `=IMAGE("https://example/x", 1)`; rec.Content != expected {
		t.Errorf("Incorrect IMAGE formula\n   expected: %v\n   got:      %v\n", expected, rec.Content)
	}

	if v := rec.Row()[1]; v != "圖片" {
		t.Errorf("Incorrect kind label\n   expected: %v\n   got:      %v\n", "圖片", v)
	}
}

func TestNewUnsupported(t *testing.T) {
	tests := []struct {
		typeName string
		expected string
	}{
		{"", "[不支援的訊息類型]"},
		{"貼圖", "[不支援的訊息類型: 貼圖]"},
		{"影片", "[不支援的訊息類型: 影片]"},
		{"音訊", "[不支援的訊息類型: 音訊]"},
	}

	for _, test := range tests {
		rec := NewUnsupported(timestamp, "U1234567890abcdef", test.typeName)
		if rec.Content != test.expected {
			t.Errorf("Incorrect content\n   expected: %v\n   got:      %v\n", test.expected, rec.Content)
		}

		if v := rec.Kind.Label(); v != "[不支援]" {
			t.Errorf("Incorrect kind label\n   expected: %v\n   got:      %v\n", "[不支援]", v)
		}
	}
}

func TestNewError(t *testing.T) {
	rec := NewError(timestamp, "U1234567890abcdef", "upload failed", Image)

	if rec.Status != Failed {
		t.Errorf("Expected status %v, got %v", Failed, rec.Status)
	}

	if expected := "[錯誤: upload failed]"; rec.Content != expected {
		t.Errorf("Incorrect content\n   expected: %v\n   got:      %v\n", expected, rec.Content)
	}

	if rec.Err != "upload failed" {
		t.Errorf("Incorrect error text\n   expected: %v\n   got:      %v\n", "upload failed", rec.Err)
	}
}

func TestStatusLabels(t *testing.T) {
	if v := Success.Label(); v != "成功" {
		t.Errorf("Incorrect status label\n   expected: %v\n   got:      %v\n", "成功", v)
	}

	if v := Failed.Label(); v != "失敗" {
		t.Errorf("Incorrect status label\n   expected: %v\n   got:      %v\n", "失敗", v)
	}
}
