package core

import (
	"testing"
	"time"
)

func stamped(id string, amount float64, updated time.Time) Transaction {
	return Transaction{
		ID:        id,
		Type:      Expense,
		Amount:    amount,
		CreatedAt: Timestamp{Time: updated.Add(-time.Hour)},
		UpdatedAt: Timestamp{Time: updated},
	}
}

func TestMergeIdempotent(t *testing.T) {
	now := time.Now()
	set := []Transaction{
		stamped("a", 100, now),
		stamped("b", 200, now.Add(time.Minute)),
	}
	got := MergeTransactions(set, set)
	if len(got) != len(set) {
		t.Fatalf("merge(X, X) has %d records, want %d", len(got), len(set))
	}
	for i := range set {
		if got[i].ID != set[i].ID || got[i].Amount != set[i].Amount {
			t.Errorf("record %d changed: %+v", i, got[i])
		}
	}
}

func TestMergeRemoteNewerWins(t *testing.T) {
	t1 := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Hour)

	local := []Transaction{stamped("a", 100, t1)}
	remote := []Transaction{stamped("a", 150, t2)}

	got := MergeTransactions(local, remote)
	if len(got) != 1 {
		t.Fatalf("expected 1 record, got %d", len(got))
	}
	if got[0].Amount != 150 {
		t.Errorf("amount = %v, want 150 (remote is newer)", got[0].Amount)
	}
}

func TestMergeLocalNewerKept(t *testing.T) {
	t1 := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Hour)

	local := []Transaction{stamped("a", 100, t2)}
	remote := []Transaction{stamped("a", 150, t1)}

	got := MergeTransactions(local, remote)
	if got[0].Amount != 100 {
		t.Errorf("amount = %v, want 100 (local is newer)", got[0].Amount)
	}
}

func TestMergeTieFavorsLocal(t *testing.T) {
	t1 := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)

	local := []Transaction{stamped("a", 100, t1)}
	remote := []Transaction{stamped("a", 150, t1)}

	got := MergeTransactions(local, remote)
	if got[0].Amount != 100 {
		t.Errorf("amount = %v, want 100 (ties favor local)", got[0].Amount)
	}
}

func TestMergeRemoteOnlyInserted(t *testing.T) {
	now := time.Now()
	local := []Transaction{stamped("a", 100, now)}
	remote := []Transaction{
		stamped("a", 100, now),
		stamped("b", 50, now),
		stamped("c", 25, now),
	}

	got := MergeTransactions(local, remote)
	if len(got) != 3 {
		t.Fatalf("expected 3 records, got %d", len(got))
	}
	// Local order first, remote-only appended in remote order.
	if got[0].ID != "a" || got[1].ID != "b" || got[2].ID != "c" {
		t.Errorf("unexpected order: %s %s %s", got[0].ID, got[1].ID, got[2].ID)
	}
}

func TestMergeOutcomeIndependentOfArgumentOrder(t *testing.T) {
	t1 := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Minute)

	older := stamped("a", 100, t1)
	newer := stamped("a", 150, t2)

	ab := MergeTransactions([]Transaction{older}, []Transaction{newer})
	ba := MergeTransactions([]Transaction{newer}, []Transaction{older})

	if ab[0].Amount != 150 || ba[0].Amount != 150 {
		t.Errorf("chosen record depends on argument order: %v vs %v", ab[0].Amount, ba[0].Amount)
	}
}

func TestMergeFallsBackToCreatedAt(t *testing.T) {
	t1 := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Hour)

	local := Transaction{ID: "a", Amount: 100, CreatedAt: Timestamp{Time: t1}}
	remote := Transaction{ID: "a", Amount: 150, CreatedAt: Timestamp{Time: t2}}

	got := MergeTransactions([]Transaction{local}, []Transaction{remote})
	if got[0].Amount != 150 {
		t.Errorf("amount = %v, want 150 (createdAt fallback)", got[0].Amount)
	}
}

func TestMergeDeletionReappears(t *testing.T) {
	// No tombstones: a record deleted locally but present in an older
	// remote snapshot comes back. Documented protocol property.
	now := time.Now()
	var local []Transaction
	remote := []Transaction{stamped("ghost", 10, now)}

	got := MergeTransactions(local, remote)
	if len(got) != 1 || got[0].ID != "ghost" {
		t.Fatalf("expected deleted record to reappear, got %v", got)
	}
}
