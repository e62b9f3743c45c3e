// Package google mirrors the ledger into a Google Sheets spreadsheet.
// Transactions are stored one per row; categories, budget and settings are
// stored as JSON cells on a meta sheet so the snapshot round-trips exactly.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"github.com/vwin2537-arch/MooBeauwNote/internal/cloud"
	"github.com/vwin2537-arch/MooBeauwNote/internal/core"
)

type Client struct {
	svc               *gsheet.Service
	spreadsheetID     string
	transactionsSheet string
	metaSheet         string
}

var _ cloud.RemoteStore = (*Client)(nil)

// NewFromEnv creates a Sheets client using environment variables.
// Required: GOOGLE_SPREADSHEET_ID.
// Optional sheet names: GOOGLE_TRANSACTIONS_SHEET_NAME (default
// "Transactions"), GOOGLE_META_SHEET_NAME (default "Meta").
func NewFromEnv(ctx context.Context) (*Client, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	transactionsSheet := strings.TrimSpace(os.Getenv("GOOGLE_TRANSACTIONS_SHEET_NAME"))
	if transactionsSheet == "" {
		transactionsSheet = "Transactions"
	}
	metaSheet := strings.TrimSpace(os.Getenv("GOOGLE_META_SHEET_NAME"))
	if metaSheet == "" {
		metaSheet = "Meta"
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:               svc,
		spreadsheetID:     spreadsheetID,
		transactionsSheet: transactionsSheet,
		metaSheet:         metaSheet,
	}, nil
}

// newSheetsService initializes a Sheets Service using Service Account
// credentials. Uses GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE,
// or GOOGLE_APPLICATION_CREDENTIALS.
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

// Push replaces the spreadsheet contents with the export.
func (c *Client) Push(ctx context.Context, data core.DataExport) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}

	rows := [][]any{transactionHeader()}
	for _, t := range data.Transactions {
		rows = append(rows, transactionRow(t))
	}

	clearRange := fmt.Sprintf("%s!A:Z", c.transactionsSheet)
	if _, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, clearRange, &gsheet.ClearValuesRequest{}).Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear sheet %s: %w", c.transactionsSheet, err)
	}

	writeRange := fmt.Sprintf("%s!A1", c.transactionsSheet)
	vr := &gsheet.ValueRange{Values: rows}
	if _, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, writeRange, vr).
		ValueInputOption("RAW").Context(ctx).Do(); err != nil {
		return fmt.Errorf("write sheet %s: %w", c.transactionsSheet, err)
	}

	meta, err := metaRows(data)
	if err != nil {
		return err
	}
	metaRange := fmt.Sprintf("%s!A1", c.metaSheet)
	if _, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, metaRange, &gsheet.ValueRange{Values: meta}).
		ValueInputOption("RAW").Context(ctx).Do(); err != nil {
		return fmt.Errorf("write sheet %s: %w", c.metaSheet, err)
	}

	slog.InfoContext(ctx, "Snapshot pushed to Google Sheets",
		"spreadsheet_id", c.spreadsheetID,
		"transactions", len(data.Transactions))

	return nil
}

// Pull reads the spreadsheet back into the export shape.
func (c *Client) Pull(ctx context.Context) (core.DataExport, error) {
	if c.svc == nil {
		return core.DataExport{}, errors.New("sheets service not initialized")
	}

	rng := fmt.Sprintf("%s!A:I", c.transactionsSheet)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return core.DataExport{}, fmt.Errorf("read sheet %s: %w", c.transactionsSheet, err)
	}

	txs := make([]core.Transaction, 0, len(resp.Values))
	for i, row := range resp.Values {
		if i == 0 && isHeaderRow(row) {
			continue
		}
		t, ok := transactionFromRow(row)
		if !ok {
			slog.WarnContext(ctx, "Skipping malformed transaction row", "row", i+1)
			continue
		}
		txs = append(txs, t)
	}

	data := core.DataExport{Transactions: txs, ExportedAt: core.Now()}

	metaRng := fmt.Sprintf("%s!A:B", c.metaSheet)
	metaResp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, metaRng).Context(ctx).Do()
	if err != nil {
		return core.DataExport{}, fmt.Errorf("read sheet %s: %w", c.metaSheet, err)
	}
	if err := applyMetaRows(&data, metaResp.Values); err != nil {
		return core.DataExport{}, err
	}

	return data, nil
}
