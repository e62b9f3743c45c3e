package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/vwin2537-arch/MooBeauwNote/internal/amqp"
	"github.com/vwin2537-arch/MooBeauwNote/internal/core"
	"github.com/vwin2537-arch/MooBeauwNote/internal/storage"
)

// LedgerService orchestrates ledger operations across SQLite and AMQP.
// Every successful mutation fires the change hook, which is what arms the
// debounced auto-sync.
type LedgerService struct {
	store      *storage.Store
	amqpClient *amqp.Client
	onChange   func()
}

func NewLedgerService(store *storage.Store, amqpClient *amqp.Client) *LedgerService {
	return &LedgerService{
		store:      store,
		amqpClient: amqpClient,
	}
}

// SetOnChange registers the hook fired after each local mutation.
func (s *LedgerService) SetOnChange(fn func()) {
	s.onChange = fn
}

func (s *LedgerService) notifyChange(ctx context.Context, entity, id string) {
	if s.amqpClient != nil {
		if err := s.amqpClient.PublishLedgerChange(ctx, entity, id); err != nil {
			// The mutation already committed locally; sync catches up later
			slog.ErrorContext(ctx, "Failed to publish change message",
				"entity", entity, "id", id, "error", err)
		}
	}
	if s.onChange != nil {
		s.onChange()
	}
}

func (s *LedgerService) AddTransaction(ctx context.Context, draft core.TransactionDraft) (core.Transaction, error) {
	tx, err := s.store.AddTransaction(ctx, draft)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("add transaction: %w", err)
	}
	s.notifyChange(ctx, "transaction", tx.ID)
	return tx, nil
}

func (s *LedgerService) UpdateTransaction(ctx context.Context, id string, patch core.TransactionPatch) (core.Transaction, error) {
	tx, err := s.store.UpdateTransaction(ctx, id, patch)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}
	s.notifyChange(ctx, "transaction", tx.ID)
	return tx, nil
}

func (s *LedgerService) DeleteTransaction(ctx context.Context, id string) error {
	if err := s.store.DeleteTransaction(ctx, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	s.notifyChange(ctx, "transaction", id)
	return nil
}

func (s *LedgerService) Transactions(ctx context.Context) ([]core.Transaction, error) {
	return s.store.Transactions(ctx)
}

func (s *LedgerService) TransactionByID(ctx context.Context, id string) (core.Transaction, error) {
	return s.store.TransactionByID(ctx, id)
}

func (s *LedgerService) TransactionsByDateRange(ctx context.Context, start, end core.Date) ([]core.Transaction, error) {
	return s.store.TransactionsByDateRange(ctx, start, end)
}

func (s *LedgerService) Categories(ctx context.Context) (core.CategorySet, error) {
	return s.store.Categories(ctx)
}

func (s *LedgerService) CategoriesByType(ctx context.Context, kind core.TransactionType) ([]core.Category, error) {
	return s.store.CategoriesByType(ctx, kind)
}

func (s *LedgerService) AddCategory(ctx context.Context, c core.Category) (core.Category, error) {
	added, err := s.store.AddCategory(ctx, c)
	if err != nil {
		return core.Category{}, fmt.Errorf("add category: %w", err)
	}
	s.notifyChange(ctx, "category", added.ID)
	return added, nil
}

func (s *LedgerService) DeleteCategory(ctx context.Context, kind core.TransactionType, id string) error {
	if err := s.store.DeleteCategory(ctx, kind, id); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	s.notifyChange(ctx, "category", id)
	return nil
}

func (s *LedgerService) Budget(ctx context.Context) (core.Budget, error) {
	return s.store.Budget(ctx)
}

func (s *LedgerService) SetMonthlyBudget(ctx context.Context, amount float64) (core.Budget, error) {
	b, err := s.store.SetMonthlyBudget(ctx, amount)
	if err != nil {
		return core.Budget{}, fmt.Errorf("set monthly budget: %w", err)
	}
	s.notifyChange(ctx, "budget", "")
	return b, nil
}

func (s *LedgerService) SetAlertThreshold(ctx context.Context, percent int) (core.Budget, error) {
	b, err := s.store.SetAlertThreshold(ctx, percent)
	if err != nil {
		return core.Budget{}, fmt.Errorf("set alert threshold: %w", err)
	}
	s.notifyChange(ctx, "budget", "")
	return b, nil
}

func (s *LedgerService) SetCategoryBudget(ctx context.Context, category string, amount float64) (core.Budget, error) {
	b, err := s.store.SetCategoryBudget(ctx, category, amount)
	if err != nil {
		return core.Budget{}, fmt.Errorf("set category budget: %w", err)
	}
	s.notifyChange(ctx, "budget", "")
	return b, nil
}

func (s *LedgerService) Settings(ctx context.Context) (core.Settings, error) {
	return s.store.Settings(ctx)
}

func (s *LedgerService) SetEndpointURL(ctx context.Context, url string) error {
	if err := s.store.SetEndpointURL(ctx, url); err != nil {
		return fmt.Errorf("set endpoint url: %w", err)
	}
	s.notifyChange(ctx, "settings", "")
	return nil
}

func (s *LedgerService) SaveSettings(ctx context.Context, settings core.Settings) error {
	if err := s.store.SaveSettings(ctx, settings); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	s.notifyChange(ctx, "settings", "")
	return nil
}

// MonthlySummary is the aggregated view over one calendar month.
type MonthlySummary struct {
	Year       int                `json:"year"`
	Month      int                `json:"month"`
	Totals     core.Totals        `json:"totals"`
	ByCategory map[string]float64 `json:"byCategory"`
	Budget     core.BudgetStatus  `json:"budget"`
}

// Summary recomputes totals, category breakdown and budget standing from
// the month's transactions. Views are always derived, never stored.
func (s *LedgerService) Summary(ctx context.Context, year int, month time.Month) (MonthlySummary, error) {
	txs, err := s.store.TransactionsByMonth(ctx, year, month)
	if err != nil {
		return MonthlySummary{}, fmt.Errorf("load month transactions: %w", err)
	}
	budget, err := s.store.Budget(ctx)
	if err != nil {
		return MonthlySummary{}, fmt.Errorf("load budget: %w", err)
	}

	totals := core.CalculateTotals(txs)
	return MonthlySummary{
		Year:       year,
		Month:      int(month),
		Totals:     totals,
		ByCategory: core.ExpensesByCategory(txs),
		Budget:     core.EvaluateBudget(totals.Expense, budget),
	}, nil
}

func (s *LedgerService) ExportAll(ctx context.Context) (core.DataExport, error) {
	return s.store.ExportAll(ctx)
}

// ExportCSV renders the full transaction list for spreadsheet import.
func (s *LedgerService) ExportCSV(ctx context.Context) ([]byte, error) {
	txs, err := s.store.Transactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("load transactions: %w", err)
	}
	return core.TransactionsCSV(txs), nil
}

func (s *LedgerService) ImportAll(ctx context.Context, data core.DataExport, merge bool) error {
	if err := s.store.ImportAll(ctx, data, merge); err != nil {
		return fmt.Errorf("import snapshot: %w", err)
	}
	s.notifyChange(ctx, "import", "")
	return nil
}

func (s *LedgerService) Reset(ctx context.Context) error {
	if err := s.store.Reset(ctx); err != nil {
		return fmt.Errorf("reset ledger: %w", err)
	}
	s.notifyChange(ctx, "reset", "")
	return nil
}
