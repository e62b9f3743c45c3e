package google

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/vwin2537-arch/MooBeauwNote/internal/core"
)

// Row layout of the transactions sheet. Receipts are not mirrored: a data
// URI does not fit a cell, and the local store stays authoritative for them.
func transactionHeader() []any {
	return []any{"id", "type", "date", "amount", "category", "description", "tags", "createdAt", "updatedAt"}
}

func transactionRow(t core.Transaction) []any {
	return []any{
		t.ID,
		string(t.Type),
		t.Date.String(),
		core.FormatAmount(t.Amount),
		t.Category,
		t.Description,
		strings.Join(t.Tags, ","),
		timestampCell(t.CreatedAt),
		timestampCell(t.UpdatedAt),
	}
}

func transactionFromRow(row []any) (core.Transaction, bool) {
	if len(row) < 4 {
		return core.Transaction{}, false
	}
	id := cellString(row, 0)
	if id == "" {
		return core.Transaction{}, false
	}

	t := core.Transaction{
		ID:          id,
		Type:        core.TransactionType(cellString(row, 1)),
		Date:        core.ParseDate(cellString(row, 2)),
		Amount:      core.NormalizeAmount(core.ParseAmount(cellString(row, 3))),
		Category:    cellString(row, 4),
		Description: cellString(row, 5),
		CreatedAt:   parseTimestampCell(cellString(row, 7)),
		UpdatedAt:   parseTimestampCell(cellString(row, 8)),
	}
	if tags := cellString(row, 6); tags != "" {
		t.Tags = core.ParseTags(tags)
	}
	if !t.Type.Valid() {
		return core.Transaction{}, false
	}
	return t, true
}

func isHeaderRow(row []any) bool {
	return cellString(row, 0) == "id"
}

func cellString(row []any, i int) string {
	if i >= len(row) {
		return ""
	}
	switch v := row[i].(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		// Hand-edited cells can come back as numbers
		return core.FormatAmount(v)
	default:
		return ""
	}
}

func timestampCell(ts core.Timestamp) string {
	if ts.IsZero() {
		return ""
	}
	return ts.UTC().Format(time.RFC3339Nano)
}

func parseTimestampCell(s string) core.Timestamp {
	if s == "" {
		return core.Timestamp{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return core.Timestamp{Time: t.UTC()}
		}
	}
	return core.Timestamp{}
}

// Meta sheet layout: one key/value row per record family, value as JSON.
func metaRows(data core.DataExport) ([][]any, error) {
	rows := make([][]any, 0, 4)
	add := func(key string, v any) error {
		if v == nil {
			return nil
		}
		raw, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("encode %s meta: %w", key, err)
		}
		rows = append(rows, []any{key, string(raw)})
		return nil
	}
	if data.Categories != nil {
		if err := add("categories", data.Categories); err != nil {
			return nil, err
		}
	}
	if data.Budget != nil {
		if err := add("budget", data.Budget); err != nil {
			return nil, err
		}
	}
	if data.Settings != nil {
		if err := add("settings", data.Settings); err != nil {
			return nil, err
		}
	}
	if err := add("exportedAt", data.ExportedAt); err != nil {
		return nil, err
	}
	return rows, nil
}

func applyMetaRows(data *core.DataExport, rows [][]any) error {
	for _, row := range rows {
		key := cellString(row, 0)
		value := cellString(row, 1)
		if key == "" || value == "" {
			continue
		}
		switch key {
		case "categories":
			var set core.CategorySet
			if err := json.Unmarshal([]byte(value), &set); err != nil {
				return fmt.Errorf("decode categories meta: %w", err)
			}
			data.Categories = &set
		case "budget":
			var b core.Budget
			if err := json.Unmarshal([]byte(value), &b); err != nil {
				return fmt.Errorf("decode budget meta: %w", err)
			}
			data.Budget = &b
		case "settings":
			var s core.Settings
			if err := json.Unmarshal([]byte(value), &s); err != nil {
				return fmt.Errorf("decode settings meta: %w", err)
			}
			data.Settings = &s
		case "exportedAt":
			var ts core.Timestamp
			if err := json.Unmarshal([]byte(value), &ts); err == nil {
				data.ExportedAt = ts
			}
		}
	}
	return nil
}
