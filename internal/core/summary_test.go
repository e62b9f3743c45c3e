package core

import "testing"

func tx(kind TransactionType, amount float64, category string) Transaction {
	return Transaction{Type: kind, Amount: amount, Category: category}
}

func TestCalculateTotalsEmpty(t *testing.T) {
	got := CalculateTotals(nil)
	if got.Income != 0 || got.Expense != 0 || got.Balance != 0 {
		t.Fatalf("expected all zeros, got %+v", got)
	}
}

func TestCalculateTotals(t *testing.T) {
	txs := []Transaction{
		tx(Income, 1000, ""),
		tx(Income, 250.50, ""),
		tx(Expense, 300, "อาหารและเครื่องดื่ม"),
		tx(Expense, 50.25, "ค่าเดินทาง"),
	}
	got := CalculateTotals(txs)
	if got.Income != 1250.50 {
		t.Errorf("income = %v, want 1250.50", got.Income)
	}
	if got.Expense != 350.25 {
		t.Errorf("expense = %v, want 350.25", got.Expense)
	}
	if got.Balance != 900.25 {
		t.Errorf("balance = %v, want 900.25", got.Balance)
	}
}

func TestCalculateTotalsAdditive(t *testing.T) {
	a := []Transaction{tx(Income, 100, ""), tx(Expense, 40, "x")}
	b := []Transaction{tx(Income, 10, ""), tx(Expense, 5, "y")}

	ta := CalculateTotals(a)
	tb := CalculateTotals(b)
	both := CalculateTotals(append(append([]Transaction{}, a...), b...))

	if both.Income != ta.Income+tb.Income {
		t.Errorf("income not additive: %v vs %v", both.Income, ta.Income+tb.Income)
	}
	if both.Expense != ta.Expense+tb.Expense {
		t.Errorf("expense not additive: %v vs %v", both.Expense, ta.Expense+tb.Expense)
	}
	if both.Balance != ta.Balance+tb.Balance {
		t.Errorf("balance not additive: %v vs %v", both.Balance, ta.Balance+tb.Balance)
	}
}

func TestExpensesByCategory(t *testing.T) {
	txs := []Transaction{
		tx(Expense, 100, "อาหารและเครื่องดื่ม"),
		tx(Expense, 50, "อาหารและเครื่องดื่ม"),
		tx(Expense, 30, ""),
		tx(Income, 999, "เงินเดือน"), // income is excluded
	}
	got := ExpensesByCategory(txs)
	if len(got) != 2 {
		t.Fatalf("expected 2 buckets, got %d: %v", len(got), got)
	}
	if got["อาหารและเครื่องดื่ม"] != 150 {
		t.Errorf("food bucket = %v, want 150", got["อาหารและเครื่องดื่ม"])
	}
	if got[CategoryOther] != 30 {
		t.Errorf("other bucket = %v, want 30", got[CategoryOther])
	}
}

func TestEvaluateBudget(t *testing.T) {
	cases := []struct {
		name    string
		used    float64
		budget  Budget
		percent int
		status  string
	}{
		{"no budget configured", 500, Budget{MonthlyBudget: 0, AlertThreshold: 80}, 0, BudgetNormal},
		{"under threshold", 100, Budget{MonthlyBudget: 1000, AlertThreshold: 80}, 10, BudgetNormal},
		{"at threshold", 850, Budget{MonthlyBudget: 1000, AlertThreshold: 80}, 85, BudgetWarning},
		{"over budget", 1200, Budget{MonthlyBudget: 1000, AlertThreshold: 80}, 120, BudgetDanger},
		{"exactly spent", 1000, Budget{MonthlyBudget: 1000, AlertThreshold: 80}, 100, BudgetDanger},
		{"rounding", 333, Budget{MonthlyBudget: 1000, AlertThreshold: 80}, 33, BudgetNormal},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := EvaluateBudget(tc.used, tc.budget)
			if got.Percent != tc.percent {
				t.Errorf("percent = %d, want %d", got.Percent, tc.percent)
			}
			if got.Status != tc.status {
				t.Errorf("status = %q, want %q", got.Status, tc.status)
			}
			if got.Used != tc.used || got.Total != tc.budget.MonthlyBudget {
				t.Errorf("used/total = %v/%v, want %v/%v", got.Used, got.Total, tc.used, tc.budget.MonthlyBudget)
			}
		})
	}
}
