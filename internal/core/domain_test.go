package core

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestTransactionUnmarshalCanonicalizes(t *testing.T) {
	cases := []struct {
		name   string
		in     string
		id     string
		amount float64
	}{
		{"clean", `{"id":"abc","amount":150.5}`, "abc", 150.5},
		{"numeric id", `{"id":42,"amount":100}`, "42", 100},
		{"string amount", `{"id":"x","amount":"99.9"}`, "x", 99.9},
		{"garbage amount", `{"id":"x","amount":"not a number"}`, "x", 0},
		{"negative amount", `{"id":"x","amount":-5}`, "x", 0},
		{"missing amount", `{"id":"x"}`, "x", 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var tx Transaction
			if err := json.Unmarshal([]byte(tc.in), &tx); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if tx.ID != tc.id {
				t.Errorf("id = %q, want %q", tx.ID, tc.id)
			}
			if tx.Amount != tc.amount {
				t.Errorf("amount = %v, want %v", tx.Amount, tc.amount)
			}
		})
	}
}

func TestTransactionJSONFieldNames(t *testing.T) {
	tx := Transaction{
		ID:        "a",
		Type:      Expense,
		Date:      NewDate(2026, time.February, 3),
		Amount:    10,
		Category:  "ช้อปปิ้ง",
		CreatedAt: Now(),
		UpdatedAt: Now(),
	}
	raw, err := json.Marshal(tx)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	for _, field := range []string{`"id"`, `"type"`, `"date"`, `"amount"`, `"category"`, `"description"`, `"tags"`, `"createdAt"`, `"updatedAt"`} {
		if !strings.Contains(string(raw), field) {
			t.Errorf("wire format missing %s: %s", field, raw)
		}
	}
	if !strings.Contains(string(raw), `"date":"2026-02-03"`) {
		t.Errorf("date not rendered as calendar day: %s", raw)
	}
}

func TestDraftValidate(t *testing.T) {
	cases := []struct {
		name  string
		draft TransactionDraft
		ok    bool
	}{
		{"valid expense", TransactionDraft{Type: Expense, Amount: 10}, true},
		{"valid income", TransactionDraft{Type: Income, Amount: 10}, true},
		{"empty type allowed", TransactionDraft{Amount: 10}, true},
		{"bad type", TransactionDraft{Type: "transfer", Amount: 10}, false},
		{"negative amount", TransactionDraft{Type: Expense, Amount: -1}, false},
		{"oversized receipt", TransactionDraft{Type: Expense, Receipt: strings.Repeat("x", MaxReceiptBytes+1)}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.draft.Validate()
			if tc.ok && err != nil {
				t.Errorf("expected ok, got %v", err)
			}
			if !tc.ok && err == nil {
				t.Errorf("expected error")
			}
		})
	}
}

func TestModifiedAtFallback(t *testing.T) {
	created := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	tx := Transaction{CreatedAt: Timestamp{Time: created}}
	if !tx.ModifiedAt().Equal(created) {
		t.Errorf("expected createdAt fallback, got %v", tx.ModifiedAt())
	}
	updated := created.Add(time.Hour)
	tx.UpdatedAt = Timestamp{Time: updated}
	if !tx.ModifiedAt().Equal(updated) {
		t.Errorf("expected updatedAt, got %v", tx.ModifiedAt())
	}
}

func TestDateRange(t *testing.T) {
	d := NewDate(2026, time.January, 15)
	if !d.InRange(NewDate(2026, time.January, 1), NewDate(2026, time.January, 31)) {
		t.Error("mid-month day should be in range")
	}
	if !d.InRange(d, d) {
		t.Error("range is inclusive on both ends")
	}
	if d.InRange(NewDate(2026, time.February, 1), NewDate(2026, time.February, 28)) {
		t.Error("day outside range accepted")
	}
}

func TestParseDateTolerant(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"2026-02-03", "2026-02-03"},
		{"2026-02-03T10:30:00Z", "2026-02-03"},
		{"2026-02-03 10:30:00", "2026-02-03"},
		{"garbage", ""},
		{"", ""},
	}
	for _, tc := range cases {
		if got := ParseDate(tc.in).String(); got != tc.want {
			t.Errorf("ParseDate(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestMonthRange(t *testing.T) {
	first, last := MonthRange(2026, time.February)
	if first.String() != "2026-02-01" || last.String() != "2026-02-28" {
		t.Errorf("feb 2026 range = %s..%s", first, last)
	}
	first, last = MonthRange(2024, time.February) // leap year
	if last.String() != "2024-02-29" {
		t.Errorf("feb 2024 should end on the 29th, got %s", last)
	}
}

func TestTimestampUnmarshalTolerant(t *testing.T) {
	var ts Timestamp
	if err := json.Unmarshal([]byte(`"2026-02-03T10:30:00.123Z"`), &ts); err != nil || ts.IsZero() {
		t.Errorf("RFC3339 with millis should parse: %v %v", ts, err)
	}
	if err := json.Unmarshal([]byte(`"whenever"`), &ts); err != nil {
		t.Errorf("unparseable timestamp must not fail the decode: %v", err)
	} else if !ts.IsZero() {
		t.Errorf("unparseable timestamp should decode to zero, got %v", ts)
	}
	if err := json.Unmarshal([]byte(`null`), &ts); err != nil || !ts.IsZero() {
		t.Errorf("null should decode to zero: %v %v", ts, err)
	}
}

func TestParseTags(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"#อาหาร #จำเป็น", []string{"อาหาร", "จำเป็น"}},
		{"a, b,c", []string{"a", "b", "c"}},
		{"   ", nil},
		{"", nil},
	}
	for _, tc := range cases {
		got := ParseTags(tc.in)
		if len(got) != len(tc.want) {
			t.Errorf("ParseTags(%q) = %v, want %v", tc.in, got, tc.want)
			continue
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Errorf("ParseTags(%q)[%d] = %q, want %q", tc.in, i, got[i], tc.want[i])
			}
		}
	}
}

func TestFormatTagsRoundTrip(t *testing.T) {
	tags := []string{"อาหาร", "จำเป็น"}
	back := ParseTags(FormatTags(tags))
	if len(back) != 2 || back[0] != tags[0] || back[1] != tags[1] {
		t.Errorf("round trip lost tags: %v", back)
	}
}

func TestTransactionsCSV(t *testing.T) {
	txs := []Transaction{
		{
			ID:          "a",
			Type:        Expense,
			Date:        NewDate(2026, time.February, 3),
			Amount:      150.5,
			Category:    "อาหารและเครื่องดื่ม",
			Description: `says "hi", then leaves`,
			Tags:        []string{"อาหาร"},
			CreatedAt:   Timestamp{Time: time.Date(2026, 2, 3, 9, 0, 0, 0, time.UTC)},
		},
	}
	out := string(TransactionsCSV(txs))
	if !strings.HasPrefix(out, "\uFEFF") {
		t.Error("missing UTF-8 BOM prefix")
	}
	if !strings.Contains(out, "วันที่,ประเภท,หมวดหมู่") {
		t.Errorf("missing localized headers: %s", out)
	}
	if !strings.Contains(out, "03/02/2026") {
		t.Errorf("date not rendered DD/MM/YYYY: %s", out)
	}
	if !strings.Contains(out, `"says ""hi"", then leaves"`) {
		t.Errorf("quoting not applied: %s", out)
	}
	if !strings.Contains(out, "150.5") {
		t.Errorf("amount missing: %s", out)
	}
}

func TestNormalizeAmount(t *testing.T) {
	if NormalizeAmount(-3) != 0 {
		t.Error("negative should clamp to zero")
	}
	if NormalizeAmount(12.34) != 12.34 {
		t.Error("valid amount should pass through")
	}
}

func TestClampThreshold(t *testing.T) {
	cases := []struct{ in, want int }{{-5, 0}, {0, 0}, {80, 80}, {100, 100}, {250, 100}}
	for _, tc := range cases {
		if got := ClampThreshold(tc.in); got != tc.want {
			t.Errorf("ClampThreshold(%d) = %d, want %d", tc.in, got, tc.want)
		}
	}
}
