// Package google implements the spreadsheet export port against the Google
// Sheets API.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"spendify/internal/core"
	ports "spendify/internal/sheets"
)

// Client writes ledger rows to a single sheet. Column layout:
// A=transaction ID, B=date, C=type, D=content, E=amount, F=category, G=memo.
type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

var _ ports.Ledger = (*Client)(nil)

// New creates a Sheets client using service account credentials from the
// environment: GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or
// GOOGLE_APPLICATION_CREDENTIALS.
func New(ctx context.Context, spreadsheetID, sheetName string) (*Client, error) {
	if strings.TrimSpace(spreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet ID")
	}
	if strings.TrimSpace(sheetName) == "" {
		sheetName = "Ledger"
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
	}, nil
}

func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error
	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

func (c *Client) Upsert(ctx context.Context, tx core.Transaction) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}

	values := []any{tx.ID, tx.Date.String(), string(tx.Type), tx.Content, tx.Amount, tx.Category, tx.Memo}

	row, err := c.findRowByID(ctx, tx.ID)
	if err != nil {
		return "", err
	}

	if row == 0 {
		// Not present yet: append after the last occupied row.
		rng := fmt.Sprintf("%s!A:G", c.sheetName)
		vr := &gsheet.ValueRange{Values: [][]any{values}}
		resp, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, vr).
			ValueInputOption("USER_ENTERED").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
		if err != nil {
			return "", fmt.Errorf("append row to sheet %s: %w", c.sheetName, err)
		}
		ref := rng
		if resp.Updates != nil {
			ref = resp.Updates.UpdatedRange
		}
		slog.InfoContext(ctx, "Ledger row appended", "transaction_id", tx.ID, "sheet_ref", ref)
		return ref, nil
	}

	rng := fmt.Sprintf("%s!A%d:G%d", c.sheetName, row, row)
	vr := &gsheet.ValueRange{Values: [][]any{values}}
	if _, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do(); err != nil {
		return "", fmt.Errorf("update row %d in sheet %s: %w", row, c.sheetName, err)
	}

	slog.InfoContext(ctx, "Ledger row updated", "transaction_id", tx.ID, "sheet_ref", rng)
	return rng, nil
}

func (c *Client) Remove(ctx context.Context, key ports.RowKey) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}

	row, err := c.findRowByID(ctx, key.TransactionID)
	if err != nil {
		return err
	}
	if row == 0 {
		row, err = c.findRowBySnapshot(ctx, key)
		if err != nil {
			return err
		}
	}
	if row == 0 {
		slog.WarnContext(ctx, "Ledger row not found, nothing to remove",
			"transaction_id", key.TransactionID)
		return nil
	}

	sheetID, err := c.sheetID(ctx)
	if err != nil {
		return err
	}

	req := &gsheet.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheet.Request{{
			DeleteDimension: &gsheet.DeleteDimensionRequest{
				Range: &gsheet.DimensionRange{
					SheetId:    sheetID,
					Dimension:  "ROWS",
					StartIndex: int64(row - 1),
					EndIndex:   int64(row),
				},
			},
		}},
	}
	if _, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("delete row %d in sheet %s: %w", row, c.sheetName, err)
	}

	slog.InfoContext(ctx, "Ledger row removed",
		"transaction_id", key.TransactionID, "row", row)
	return nil
}

// findRowByID returns the 1-based row whose column A equals id, or 0 when
// absent.
func (c *Client) findRowByID(ctx context.Context, id string) (int, error) {
	rng := fmt.Sprintf("%s!A:A", c.sheetName)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", rng, err)
	}
	for i, row := range resp.Values {
		if len(row) > 0 && strings.TrimSpace(fmt.Sprint(row[0])) == id {
			return i + 1, nil
		}
	}
	return 0, nil
}

// findRowBySnapshot matches date, content and amount for rows written without
// a recorded ID.
func (c *Client) findRowBySnapshot(ctx context.Context, key ports.RowKey) (int, error) {
	if key.Date == "" && key.Content == "" {
		return 0, nil
	}
	rng := fmt.Sprintf("%s!A:G", c.sheetName)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", rng, err)
	}
	for i, row := range resp.Values {
		if len(row) < 5 {
			continue
		}
		date := strings.TrimSpace(fmt.Sprint(row[1]))
		content := strings.TrimSpace(fmt.Sprint(row[3]))
		amount, err := strconv.ParseInt(strings.TrimSpace(fmt.Sprint(row[4])), 10, 64)
		if err != nil {
			continue
		}
		if date == key.Date && content == key.Content && amount == key.Amount {
			return i + 1, nil
		}
	}
	return 0, nil
}

func (c *Client) sheetID(ctx context.Context) (int64, error) {
	spreadsheet, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("get spreadsheet: %w", err)
	}
	for _, sheet := range spreadsheet.Sheets {
		if sheet.Properties != nil && sheet.Properties.Title == c.sheetName {
			return sheet.Properties.SheetId, nil
		}
	}
	return 0, fmt.Errorf("sheet %q not found in spreadsheet", c.sheetName)
}
