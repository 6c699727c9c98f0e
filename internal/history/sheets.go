package history

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

const defaultSheetRange = "Sheet1!A1"

// Sheets appends one row per run to a Google spreadsheet:
// profile, analysis, message.
type Sheets struct {
	appendRows func(ctx context.Context, rows [][]any) error
}

func NewSheets(ctx context.Context, spreadsheetID, credentialsFile, sheetRange string) (*Sheets, error) {
	spreadsheetID = strings.TrimSpace(spreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("spreadsheet id is required")
	}
	if strings.TrimSpace(sheetRange) == "" {
		sheetRange = defaultSheetRange
	}

	var opts []option.ClientOption
	if credentialsFile = strings.TrimSpace(credentialsFile); credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	opts = append(opts, option.WithScopes(sheets.SpreadsheetsScope))

	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return &Sheets{appendRows: func(ctx context.Context, rows [][]any) error {
		_, err := svc.Spreadsheets.Values.Append(spreadsheetID, sheetRange, &sheets.ValueRange{Values: rows}).
			ValueInputOption("RAW").
			Context(ctx).
			Do()
		return err
	}}, nil
}

func (s *Sheets) Record(ctx context.Context, e Entry) error {
	if err := s.appendRows(ctx, [][]any{row(e)}); err != nil {
		return fmt.Errorf("append run %s to sheet: %w", e.RunID, err)
	}
	return nil
}

func row(e Entry) []any {
	return []any{e.Profile, e.MatchAnalysis, e.Message}
}
