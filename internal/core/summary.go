package core

import "math"

// CategoryOther is the sentinel bucket for expenses with no category.
const CategoryOther = "อื่นๆ"

// Budget status levels, ordered by severity.
const (
	BudgetNormal  = "normal"
	BudgetWarning = "warning"
	BudgetDanger  = "danger"
)

// Totals aggregates a transaction set by type.
type Totals struct {
	Income  float64 `json:"income"`
	Expense float64 `json:"expense"`
	Balance float64 `json:"balance"`
}

// BudgetStatus describes how far the month's spending has progressed
// against the configured monthly budget.
type BudgetStatus struct {
	Used    float64 `json:"used"`
	Total   float64 `json:"total"`
	Percent int     `json:"percent"`
	Status  string  `json:"status"`
}

// CalculateTotals sums amounts by type. Balance is income minus expense.
func CalculateTotals(txs []Transaction) Totals {
	var t Totals
	for _, tx := range txs {
		switch tx.Type {
		case Income:
			t.Income += tx.Amount
		case Expense:
			t.Expense += tx.Amount
		}
	}
	t.Balance = t.Income - t.Expense
	return t
}

// ExpensesByCategory sums expense amounts per category name. Transactions
// without a category fall into the CategoryOther bucket.
func ExpensesByCategory(txs []Transaction) map[string]float64 {
	out := make(map[string]float64)
	for _, tx := range txs {
		if tx.Type != Expense {
			continue
		}
		name := tx.Category
		if name == "" {
			name = CategoryOther
		}
		out[name] += tx.Amount
	}
	return out
}

// EvaluateBudget derives the budget status for a month's expense total.
// Percent is the rounded share of the budget used, zero when no budget is
// configured. Danger at or past 100%, warning at or past the threshold.
func EvaluateBudget(used float64, b Budget) BudgetStatus {
	st := BudgetStatus{
		Used:   used,
		Total:  b.MonthlyBudget,
		Status: BudgetNormal,
	}
	if st.Total > 0 {
		st.Percent = int(math.Round(used / st.Total * 100))
	}
	switch {
	case st.Percent >= 100:
		st.Status = BudgetDanger
	case st.Percent >= b.AlertThreshold:
		st.Status = BudgetWarning
	}
	return st
}
