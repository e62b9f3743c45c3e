package core

// DefaultCategories returns the first-run category namespaces. Names and
// ids match the data already present in existing remote snapshots, so they
// must not drift.
func DefaultCategories() CategorySet {
	return CategorySet{
		Expense: []Category{
			{ID: "exp_1", Name: "อาหารและเครื่องดื่ม", Icon: "🍜", Type: Expense},
			{ID: "exp_2", Name: "ค่าเดินทาง", Icon: "🚗", Type: Expense},
			{ID: "exp_3", Name: "ค่าที่พัก", Icon: "🏠", Type: Expense},
			{ID: "exp_4", Name: "ช้อปปิ้ง", Icon: "🛒", Type: Expense},
			{ID: "exp_5", Name: "สุขภาพ", Icon: "💊", Type: Expense},
			{ID: "exp_6", Name: "บันเทิง", Icon: "🎮", Type: Expense},
			{ID: "exp_7", Name: "การศึกษา", Icon: "📚", Type: Expense},
			{ID: "exp_8", Name: "อื่นๆ", Icon: "💰", Type: Expense},
		},
		Income: []Category{
			{ID: "inc_1", Name: "เงินเดือน", Icon: "💼", Type: Income},
			{ID: "inc_2", Name: "รายได้เสริม", Icon: "💸", Type: Income},
			{ID: "inc_3", Name: "ของขวัญ/โบนัส", Icon: "🎁", Type: Income},
			{ID: "inc_4", Name: "อื่นๆ", Icon: "💰", Type: Income},
		},
	}
}

// DefaultBudget returns the first-run budget singleton.
func DefaultBudget() Budget {
	return Budget{
		MonthlyBudget:   0,
		AlertThreshold:  80,
		CategoryBudgets: map[string]float64{},
	}
}

// DefaultSettings returns the first-run settings singleton. The endpoint
// URL starts empty; sync stays disabled until the user configures one.
func DefaultSettings() Settings {
	return Settings{
		EndpointURL:   "",
		DarkMode:      false,
		Notifications: true,
	}
}
