// Package ledger owns the month-bucketed worksheet abstraction over a Google
// Sheets spreadsheet: one worksheet per calendar month, a fixed three-column
// header, and a week separator row interleaved in the append stream whenever
// a new week starts.
package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"google.golang.org/api/sheets/v4"

	"github.com/khchen/lifelogger/localtime"
	"github.com/khchen/lifelogger/record"
)

const (
	worksheetRows = 1000
	worksheetCols = 3
)

// Header is the fixed first row of every monthly worksheet.
var Header = []string{"時間", "類型", "內容"}

// Ledger appends message records to a spreadsheet, one worksheet per month.
// It assumes a single writer - concurrent callers racing on a not-yet-created
// month can produce duplicate worksheets.
type Ledger struct {
	service       *sheets.Service
	spreadsheetID string
}

// Worksheet is a handle on one monthly worksheet.
type Worksheet struct {
	Title   string
	SheetID int64
}

func New(service *sheets.Service, spreadsheetID string) *Ledger {
	return &Ledger{
		service:       service,
		spreadsheetID: spreadsheetID,
	}
}

// Record appends a message record to its month's worksheet, creating the
// worksheet on first use and inserting a week separator row when the entry
// crosses a Saturday-to-Sunday boundary relative to the last stored row.
func (l *Ledger) Record(ctx context.Context, rec record.Record) error {
	worksheet, err := l.GetOrCreateWorksheet(ctx, localtime.MonthKey(rec.Timestamp))
	if err != nil {
		return err
	}

	if err := l.maybeInsertWeekSeparator(ctx, worksheet, rec.Timestamp); err != nil {
		return err
	}

	if err := l.Append(ctx, worksheet, rec.Row()); err != nil {
		return err
	}

	slog.Info("appended record", "worksheet", worksheet.Title, "kind", rec.Kind.Label())

	return nil
}

// GetOrCreateWorksheet looks up a worksheet by exact title. If it does not
// exist it is created with a fixed initial capacity and the header row is
// appended immediately.
func (l *Ledger) GetOrCreateWorksheet(ctx context.Context, title string) (Worksheet, error) {
	spreadsheet, err := l.service.Spreadsheets.Get(l.spreadsheetID).Context(ctx).Do()
	if err != nil {
		return Worksheet{}, fmt.Errorf("unable to fetch spreadsheet %s (%w)", l.spreadsheetID, err)
	}

	for _, sheet := range spreadsheet.Sheets {
		if sheet.Properties.Title == title {
			return Worksheet{Title: title, SheetID: sheet.Properties.SheetId}, nil
		}
	}

	slog.Info("creating worksheet", "title", title)

	rq := sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{
			{
				AddSheet: &sheets.AddSheetRequest{
					Properties: &sheets.SheetProperties{
						Title: title,
						GridProperties: &sheets.GridProperties{
							RowCount:    worksheetRows,
							ColumnCount: worksheetCols,
						},
					},
				},
			},
		},
	}

	response, err := l.service.Spreadsheets.BatchUpdate(l.spreadsheetID, &rq).Context(ctx).Do()
	if err != nil {
		return Worksheet{}, fmt.Errorf("unable to create worksheet '%s' (%w)", title, err)
	}

	worksheet := Worksheet{Title: title}
	if len(response.Replies) > 0 && response.Replies[0].AddSheet != nil {
		worksheet.SheetID = response.Replies[0].AddSheet.Properties.SheetId
	}

	if err := l.Append(ctx, worksheet, Header); err != nil {
		return Worksheet{}, fmt.Errorf("unable to write header to worksheet '%s' (%w)", title, err)
	}

	return worksheet, nil
}

// Append adds a three-column row at the end of the worksheet. Values are
// appended as USER_ENTERED so that IMAGE formulas render.
func (l *Ledger) Append(ctx context.Context, worksheet Worksheet, row []string) error {
	values := make([]any, len(row))
	for i, v := range row {
		values[i] = v
	}

	vr := sheets.ValueRange{
		Values: [][]any{values},
	}

	if _, err := l.service.Spreadsheets.Values.Append(l.spreadsheetID, worksheetRange(worksheet), &vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do(); err != nil {
		return fmt.Errorf("unable to append row to worksheet '%s' (%w)", worksheet.Title, err)
	}

	return nil
}

// maybeInsertWeekSeparator reads the worksheet and, if the last stored row's
// timestamp and the current timestamp straddle a Saturday-to-Sunday boundary,
// appends a '--- 第 N 週 ---' marker row. A malformed time column is logged
// and treated as 'no rollover'; API errors propagate.
func (l *Ledger) maybeInsertWeekSeparator(ctx context.Context, worksheet Worksheet, timestamp time.Time) error {
	response, err := l.service.Spreadsheets.Values.Get(l.spreadsheetID, worksheetRange(worksheet)).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("unable to read worksheet '%s' (%w)", worksheet.Title, err)
	}

	rows := response.Values
	if len(rows) <= 1 {
		// header only (or empty) - a fresh sheet never gets a separator
		return nil
	}

	last := rows[len(rows)-1]
	if len(last) == 0 {
		return nil
	}

	timeColumn, ok := last[0].(string)
	if !ok || timeColumn == "" {
		return nil
	}

	previous, err := localtime.Parse(timeColumn)
	if err != nil {
		slog.Warn("unable to parse last row time column", "worksheet", worksheet.Title, "value", timeColumn, "error", err)
		return nil
	}

	if localtime.IsNewWeek(timestamp, previous) {
		week := localtime.WeekNumber(timestamp)
		separator := []string{fmt.Sprintf("--- 第 %d 週 ---", week), "", ""}

		if err := l.Append(ctx, worksheet, separator); err != nil {
			return err
		}

		slog.Info("inserted week separator", "worksheet", worksheet.Title, "week", week)
	}

	return nil
}

func worksheetRange(worksheet Worksheet) string {
	return fmt.Sprintf("'%s'!A:C", worksheet.Title)
}
