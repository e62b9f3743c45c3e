package core

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

// MaxReceiptBytes bounds the embedded receipt payload (data URI).
const MaxReceiptBytes = 500 * 1024

type (
	TransactionType string

	// Transaction is a single ledger entry. ID is globally unique and never
	// reassigned; CreatedAt is immutable; UpdatedAt advances on every write,
	// including merge overwrites.
	Transaction struct {
		ID          string          `json:"id"`
		Type        TransactionType `json:"type"`
		Date        Date            `json:"date"`
		Amount      float64         `json:"amount"`
		Category    string          `json:"category"`
		Description string          `json:"description"`
		Tags        []string        `json:"tags"`
		Receipt     string          `json:"receipt,omitempty"`
		CreatedAt   Timestamp       `json:"createdAt"`
		UpdatedAt   Timestamp       `json:"updatedAt"`
	}

	// TransactionDraft carries user input for a new transaction. The store
	// assigns ID and timestamps; a zero Date defaults to today.
	TransactionDraft struct {
		Type        TransactionType `json:"type"`
		Date        Date            `json:"date"`
		Amount      float64         `json:"amount"`
		Category    string          `json:"category"`
		Description string          `json:"description"`
		Tags        []string        `json:"tags"`
		Receipt     string          `json:"receipt,omitempty"`
	}

	// TransactionPatch is a partial update. Nil fields are left untouched.
	// ID and CreatedAt are not representable here on purpose.
	TransactionPatch struct {
		Type        *TransactionType `json:"type,omitempty"`
		Date        *Date            `json:"date,omitempty"`
		Amount      *float64         `json:"amount,omitempty"`
		Category    *string          `json:"category,omitempty"`
		Description *string          `json:"description,omitempty"`
		Tags        *[]string        `json:"tags,omitempty"`
		Receipt     *string          `json:"receipt,omitempty"`
	}

	// Category is a display bucket referenced from transactions by name,
	// not by id. Two independent namespaces exist, one per type.
	Category struct {
		ID   string          `json:"id"`
		Name string          `json:"name"`
		Icon string          `json:"icon"`
		Type TransactionType `json:"type"`
	}

	// CategorySet holds both category namespaces.
	CategorySet struct {
		Expense []Category `json:"expense"`
		Income  []Category `json:"income"`
	}

	// Budget is a singleton record. CategoryBudgets is carried for the wire
	// format but unused by the core.
	Budget struct {
		MonthlyBudget   float64            `json:"monthlyBudget"`
		AlertThreshold  int                `json:"alertThreshold"`
		CategoryBudgets map[string]float64 `json:"categoryBudgets"`
	}

	// Settings is a singleton record. EndpointURL keeps its original wire
	// name "gasUrl" for interoperability with the remote endpoint.
	Settings struct {
		EndpointURL   string    `json:"gasUrl"`
		DarkMode      bool      `json:"darkMode"`
		Notifications bool      `json:"notifications"`
		LastSync      Timestamp `json:"lastSync"`
	}

	// DataExport is the interchange contract: both the push payload and the
	// pull response shape. Field names must not change.
	DataExport struct {
		Transactions []Transaction `json:"transactions"`
		Categories   *CategorySet  `json:"categories,omitempty"`
		Budget       *Budget       `json:"budget,omitempty"`
		Settings     *Settings     `json:"settings,omitempty"`
		ExportedAt   Timestamp     `json:"exportedAt"`
		Error        string        `json:"error,omitempty"`
	}
)

var (
	ErrInvalidType         = errors.New("invalid transaction type")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrReceiptTooLarge     = errors.New("receipt payload too large")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrCategoryNotFound    = errors.New("category not found")
	ErrEmptyCategoryName   = errors.New("empty category name")
)

// Valid reports whether t is one of the two known types.
func (t TransactionType) Valid() bool {
	return t == Income || t == Expense
}

func (d TransactionDraft) Validate() error {
	if d.Type != "" && !d.Type.Valid() {
		return ErrInvalidType
	}
	if d.Amount < 0 {
		return ErrInvalidAmount
	}
	if len(d.Receipt) > MaxReceiptBytes {
		return ErrReceiptTooLarge
	}
	return nil
}

func (p TransactionPatch) Validate() error {
	if p.Type != nil && !p.Type.Valid() {
		return ErrInvalidType
	}
	if p.Amount != nil && *p.Amount < 0 {
		return ErrInvalidAmount
	}
	if p.Receipt != nil && len(*p.Receipt) > MaxReceiptBytes {
		return ErrReceiptTooLarge
	}
	return nil
}

// ModifiedAt is the instant used for merge ordering: UpdatedAt, falling
// back to CreatedAt when unset.
func (t Transaction) ModifiedAt() time.Time {
	if !t.UpdatedAt.IsZero() {
		return t.UpdatedAt.Time
	}
	return t.CreatedAt.Time
}

// UnmarshalJSON canonicalizes loosely-typed remote payloads: ids may arrive
// as JSON numbers, amounts as numbers or numeric strings. Together with the
// tolerant Date and Timestamp decoders this is the parse-and-normalize
// boundary; the rest of the core only sees clean values.
func (t *Transaction) UnmarshalJSON(data []byte) error {
	type alias Transaction
	aux := struct {
		ID     json.RawMessage `json:"id"`
		Amount json.RawMessage `json:"amount"`
		*alias
	}{alias: (*alias)(t)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	t.ID = canonicalID(aux.ID)
	t.Amount = NormalizeAmount(parseLooseFloat(aux.Amount))
	return nil
}

// canonicalID turns a raw JSON id (string or number) into its string form.
func canonicalID(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(raw))
}

// parseLooseFloat accepts a JSON number or a numeric string; anything else
// coerces to zero.
func parseLooseFloat(raw json.RawMessage) float64 {
	if len(raw) == 0 {
		return 0
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if v, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return v
		}
	}
	return 0
}
