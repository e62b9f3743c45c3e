package core

import (
	"bytes"
	"encoding/csv"
	"strings"
	"time"
)

// csvHeaders are the fixed localized column headers of the CSV export.
// They are part of the collaborator-facing format and must stay stable.
var csvHeaders = []string{"วันที่", "ประเภท", "หมวดหมู่", "รายละเอียด", "จำนวนเงิน", "แท็ก", "วันที่สร้าง"}

// TransactionsCSV renders transactions as a UTF-8 CSV document with a
// byte-order-mark prefix so spreadsheet applications detect the encoding.
// Dates are rendered DD/MM/YYYY; quoting follows standard CSV escaping.
func TransactionsCSV(txs []Transaction) []byte {
	var buf bytes.Buffer
	buf.WriteString("\uFEFF")

	w := csv.NewWriter(&buf)
	_ = w.Write(csvHeaders)
	for _, t := range txs {
		kind := "รายจ่าย"
		if t.Type == Income {
			kind = "รายรับ"
		}
		_ = w.Write([]string{
			displayDate(t.Date),
			kind,
			t.Category,
			t.Description,
			FormatAmount(t.Amount),
			strings.Join(t.Tags, ", "),
			createdAtString(t.CreatedAt),
		})
	}
	w.Flush()
	return buf.Bytes()
}

func displayDate(d Date) string {
	if d.IsZero() {
		return ""
	}
	return d.Format("02/01/2006")
}

func createdAtString(ts Timestamp) string {
	if ts.IsZero() {
		return ""
	}
	return ts.UTC().Format(time.RFC3339)
}
