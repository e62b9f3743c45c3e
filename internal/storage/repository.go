// Package storage persists the ledger in SQLite as four named JSON blobs,
// one per record family. The blob granularity matches the interchange
// contract, so export and import are cheap and the merge path never has to
// reassemble rows.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vwin2537-arch/MooBeauwNote/internal/core"

	_ "modernc.org/sqlite"
)

// Blob keys. The mubew_ prefix is part of the on-disk contract shared with
// older exports; renaming a key orphans existing data.
const (
	keyTransactions = "mubew_transactions"
	keyCategories   = "mubew_categories"
	keyBudget       = "mubew_budget"
	keySettings     = "mubew_settings"
)

// Store is the single writer for the ledger. All mutations take the lock,
// so read-modify-write cycles over a blob never interleave.
type Store struct {
	mu sync.Mutex
	db *sql.DB
}

func NewStore(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// getBlob unmarshals the blob stored under key into dest. A missing key
// leaves dest untouched and returns false.
func (s *Store) getBlob(ctx context.Context, key string, dest any) (bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM blobs WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read blob %s: %w", key, err)
	}
	if err := json.Unmarshal([]byte(value), dest); err != nil {
		return false, fmt.Errorf("decode blob %s: %w", key, err)
	}
	return true, nil
}

func (s *Store) setBlob(ctx context.Context, key string, v any) error {
	value, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode blob %s: %w", key, err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO blobs (key, value, updated_at) VALUES (?, ?, strftime('%Y-%m-%dT%H:%M:%fZ', 'now'))
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, string(value))
	if err != nil {
		return fmt.Errorf("write blob %s: %w", key, err)
	}
	return nil
}

func (s *Store) deleteBlob(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM blobs WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete blob %s: %w", key, err)
	}
	return nil
}

// Transactions returns every ledger entry in insertion order.
func (s *Store) Transactions(ctx context.Context) ([]core.Transaction, error) {
	var txs []core.Transaction
	if _, err := s.getBlob(ctx, keyTransactions, &txs); err != nil {
		return nil, err
	}
	return txs, nil
}

func (s *Store) saveTransactions(ctx context.Context, txs []core.Transaction) error {
	if txs == nil {
		txs = []core.Transaction{}
	}
	return s.setBlob(ctx, keyTransactions, txs)
}

// AddTransaction assigns an id and timestamps and appends the entry. A zero
// date defaults to today.
func (s *Store) AddTransaction(ctx context.Context, draft core.TransactionDraft) (core.Transaction, error) {
	if err := draft.Validate(); err != nil {
		return core.Transaction{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	txs, err := s.Transactions(ctx)
	if err != nil {
		return core.Transaction{}, err
	}

	now := core.Now()
	date := draft.Date
	if date.IsZero() {
		date = core.Today()
	}
	tx := core.Transaction{
		ID:          uuid.NewString(),
		Type:        draft.Type,
		Date:        date,
		Amount:      core.NormalizeAmount(draft.Amount),
		Category:    draft.Category,
		Description: draft.Description,
		Tags:        draft.Tags,
		Receipt:     draft.Receipt,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.saveTransactions(ctx, append(txs, tx)); err != nil {
		return core.Transaction{}, err
	}

	slog.InfoContext(ctx, "Transaction saved",
		"id", tx.ID,
		"type", tx.Type,
		"amount", tx.Amount,
		"category", tx.Category)

	return tx, nil
}

// UpdateTransaction applies the non-nil fields of patch and advances
// UpdatedAt. ID and CreatedAt never change.
func (s *Store) UpdateTransaction(ctx context.Context, id string, patch core.TransactionPatch) (core.Transaction, error) {
	if err := patch.Validate(); err != nil {
		return core.Transaction{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	txs, err := s.Transactions(ctx)
	if err != nil {
		return core.Transaction{}, err
	}

	for i := range txs {
		if txs[i].ID != id {
			continue
		}
		t := &txs[i]
		if patch.Type != nil {
			t.Type = *patch.Type
		}
		if patch.Date != nil {
			t.Date = *patch.Date
		}
		if patch.Amount != nil {
			t.Amount = core.NormalizeAmount(*patch.Amount)
		}
		if patch.Category != nil {
			t.Category = *patch.Category
		}
		if patch.Description != nil {
			t.Description = *patch.Description
		}
		if patch.Tags != nil {
			t.Tags = *patch.Tags
		}
		if patch.Receipt != nil {
			t.Receipt = *patch.Receipt
		}
		t.UpdatedAt = core.Now()

		if err := s.saveTransactions(ctx, txs); err != nil {
			return core.Transaction{}, err
		}
		return *t, nil
	}

	return core.Transaction{}, core.ErrTransactionNotFound
}

func (s *Store) DeleteTransaction(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	txs, err := s.Transactions(ctx)
	if err != nil {
		return err
	}

	for i := range txs {
		if txs[i].ID == id {
			return s.saveTransactions(ctx, append(txs[:i], txs[i+1:]...))
		}
	}
	return core.ErrTransactionNotFound
}

func (s *Store) TransactionByID(ctx context.Context, id string) (core.Transaction, error) {
	txs, err := s.Transactions(ctx)
	if err != nil {
		return core.Transaction{}, err
	}
	for _, t := range txs {
		if t.ID == id {
			return t, nil
		}
	}
	return core.Transaction{}, core.ErrTransactionNotFound
}

// TransactionsByDateRange filters on the calendar day, inclusive on both ends.
func (s *Store) TransactionsByDateRange(ctx context.Context, start, end core.Date) ([]core.Transaction, error) {
	txs, err := s.Transactions(ctx)
	if err != nil {
		return nil, err
	}
	var out []core.Transaction
	for _, t := range txs {
		if t.Date.InRange(start, end) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *Store) TransactionsByMonth(ctx context.Context, year int, month time.Month) ([]core.Transaction, error) {
	txs, err := s.Transactions(ctx)
	if err != nil {
		return nil, err
	}
	var out []core.Transaction
	for _, t := range txs {
		if t.Date.SameMonth(year, month) {
			out = append(out, t)
		}
	}
	return out, nil
}

// ReplaceTransactions swaps the full transaction list. The sync path uses
// this to persist a merge result atomically.
func (s *Store) ReplaceTransactions(ctx context.Context, txs []core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveTransactions(ctx, txs)
}

// Categories returns the stored category set, or the built-in defaults when
// nothing has been stored yet. Defaults are not persisted on read.
func (s *Store) Categories(ctx context.Context) (core.CategorySet, error) {
	var set core.CategorySet
	found, err := s.getBlob(ctx, keyCategories, &set)
	if err != nil {
		return core.CategorySet{}, err
	}
	if !found {
		return core.DefaultCategories(), nil
	}
	return set, nil
}

func (s *Store) CategoriesByType(ctx context.Context, kind core.TransactionType) ([]core.Category, error) {
	if !kind.Valid() {
		return nil, core.ErrInvalidType
	}
	set, err := s.Categories(ctx)
	if err != nil {
		return nil, err
	}
	if kind == core.Income {
		return set.Income, nil
	}
	return set.Expense, nil
}

// CategoryByName looks up a category across both namespaces. Transactions
// reference categories by name, so this is the resolution path for display
// metadata like icons.
func (s *Store) CategoryByName(ctx context.Context, name string) (core.Category, error) {
	set, err := s.Categories(ctx)
	if err != nil {
		return core.Category{}, err
	}
	for _, c := range set.Expense {
		if c.Name == name {
			return c, nil
		}
	}
	for _, c := range set.Income {
		if c.Name == name {
			return c, nil
		}
	}
	return core.Category{}, core.ErrCategoryNotFound
}

func (s *Store) AddCategory(ctx context.Context, c core.Category) (core.Category, error) {
	if c.Name == "" {
		return core.Category{}, core.ErrEmptyCategoryName
	}
	if !c.Type.Valid() {
		return core.Category{}, core.ErrInvalidType
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	set, err := s.Categories(ctx)
	if err != nil {
		return core.Category{}, err
	}

	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	switch c.Type {
	case core.Expense:
		set.Expense = append(set.Expense, c)
	case core.Income:
		set.Income = append(set.Income, c)
	}

	if err := s.setBlob(ctx, keyCategories, set); err != nil {
		return core.Category{}, err
	}
	return c, nil
}

func (s *Store) DeleteCategory(ctx context.Context, kind core.TransactionType, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	set, err := s.Categories(ctx)
	if err != nil {
		return err
	}

	list := set.Expense
	if kind == core.Income {
		list = set.Income
	}
	for i := range list {
		if list[i].ID == id {
			list = append(list[:i], list[i+1:]...)
			if kind == core.Income {
				set.Income = list
			} else {
				set.Expense = list
			}
			return s.setBlob(ctx, keyCategories, set)
		}
	}
	return core.ErrCategoryNotFound
}

func (s *Store) Budget(ctx context.Context) (core.Budget, error) {
	var b core.Budget
	found, err := s.getBlob(ctx, keyBudget, &b)
	if err != nil {
		return core.Budget{}, err
	}
	if !found {
		return core.DefaultBudget(), nil
	}
	if b.CategoryBudgets == nil {
		b.CategoryBudgets = map[string]float64{}
	}
	return b, nil
}

func (s *Store) SetMonthlyBudget(ctx context.Context, amount float64) (core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := s.Budget(ctx)
	if err != nil {
		return core.Budget{}, err
	}
	b.MonthlyBudget = core.NormalizeAmount(amount)
	if err := s.setBlob(ctx, keyBudget, b); err != nil {
		return core.Budget{}, err
	}
	return b, nil
}

func (s *Store) SetAlertThreshold(ctx context.Context, percent int) (core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := s.Budget(ctx)
	if err != nil {
		return core.Budget{}, err
	}
	b.AlertThreshold = core.ClampThreshold(percent)
	if err := s.setBlob(ctx, keyBudget, b); err != nil {
		return core.Budget{}, err
	}
	return b, nil
}

func (s *Store) SetCategoryBudget(ctx context.Context, category string, amount float64) (core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := s.Budget(ctx)
	if err != nil {
		return core.Budget{}, err
	}
	if b.CategoryBudgets == nil {
		b.CategoryBudgets = map[string]float64{}
	}
	b.CategoryBudgets[category] = core.NormalizeAmount(amount)
	if err := s.setBlob(ctx, keyBudget, b); err != nil {
		return core.Budget{}, err
	}
	return b, nil
}

func (s *Store) Settings(ctx context.Context) (core.Settings, error) {
	set := core.DefaultSettings()
	if _, err := s.getBlob(ctx, keySettings, &set); err != nil {
		return core.Settings{}, err
	}
	return set, nil
}

func (s *Store) SaveSettings(ctx context.Context, settings core.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setBlob(ctx, keySettings, settings)
}

func (s *Store) SetEndpointURL(ctx context.Context, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	set, err := s.Settings(ctx)
	if err != nil {
		return err
	}
	set.EndpointURL = url
	return s.setBlob(ctx, keySettings, set)
}

// UpdateLastSync records when a push or pull last completed.
func (s *Store) UpdateLastSync(ctx context.Context, ts core.Timestamp) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	set, err := s.Settings(ctx)
	if err != nil {
		return err
	}
	set.LastSync = ts
	return s.setBlob(ctx, keySettings, set)
}

// ExportAll snapshots every record family into the interchange shape.
func (s *Store) ExportAll(ctx context.Context) (core.DataExport, error) {
	txs, err := s.Transactions(ctx)
	if err != nil {
		return core.DataExport{}, err
	}
	if txs == nil {
		txs = []core.Transaction{}
	}
	cats, err := s.Categories(ctx)
	if err != nil {
		return core.DataExport{}, err
	}
	budget, err := s.Budget(ctx)
	if err != nil {
		return core.DataExport{}, err
	}
	settings, err := s.Settings(ctx)
	if err != nil {
		return core.DataExport{}, err
	}

	return core.DataExport{
		Transactions: txs,
		Categories:   &cats,
		Budget:       &budget,
		Settings:     &settings,
		ExportedAt:   core.Now(),
	}, nil
}

// ImportAll restores a snapshot. With merge set, transactions go through
// last-write-wins reconciliation against the current ledger; otherwise the
// snapshot replaces it. Categories, budget and settings are replaced when
// present in the snapshot. The endpoint URL survives a settings replace so
// an import cannot silently repoint sync.
func (s *Store) ImportAll(ctx context.Context, data core.DataExport, merge bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	txs := data.Transactions
	if merge {
		local, err := s.Transactions(ctx)
		if err != nil {
			return err
		}
		txs = core.MergeTransactions(local, data.Transactions)
	}
	if err := s.saveTransactions(ctx, txs); err != nil {
		return err
	}

	if data.Categories != nil {
		if err := s.setBlob(ctx, keyCategories, data.Categories); err != nil {
			return err
		}
	}
	if data.Budget != nil {
		if err := s.setBlob(ctx, keyBudget, data.Budget); err != nil {
			return err
		}
	}
	if data.Settings != nil {
		current, err := s.Settings(ctx)
		if err != nil {
			return err
		}
		incoming := *data.Settings
		if incoming.EndpointURL == "" {
			incoming.EndpointURL = current.EndpointURL
		}
		if err := s.setBlob(ctx, keySettings, incoming); err != nil {
			return err
		}
	}

	slog.InfoContext(ctx, "Snapshot imported",
		"transactions", len(txs),
		"merge", merge)

	return nil
}

// Reset drops every record family. Defaults apply again on next read.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, key := range []string{keyTransactions, keyCategories, keyBudget, keySettings} {
		if err := s.deleteBlob(ctx, key); err != nil {
			return err
		}
	}
	return nil
}
