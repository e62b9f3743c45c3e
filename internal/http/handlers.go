package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/vwin2537-arch/MooBeauwNote/internal/core"
)

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from, to := q.Get("from"), q.Get("to")

	var (
		txs []core.Transaction
		err error
	)
	if from != "" || to != "" {
		start := core.ParseDate(from)
		end := core.ParseDate(to)
		if start.IsZero() || end.IsZero() {
			badRequest(w, "from and to must be YYYY-MM-DD dates")
			return
		}
		txs, err = s.ledger.TransactionsByDateRange(r.Context(), start, end)
	} else {
		txs, err = s.ledger.Transactions(r.Context())
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	if txs == nil {
		txs = []core.Transaction{}
	}
	writeJSON(w, http.StatusOK, txs)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var draft core.TransactionDraft
	if err := readJSON(r, &draft); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	tx, err := s.ledger.AddTransaction(r.Context(), draft)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, tx)
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	tx, err := s.ledger.TransactionByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tx)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	var patch core.TransactionPatch
	if err := readJSON(r, &patch); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	tx, err := s.ledger.UpdateTransaction(r.Context(), r.PathValue("id"), patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tx)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if err := s.ledger.DeleteTransaction(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	if kind := r.URL.Query().Get("type"); kind != "" {
		list, err := s.ledger.CategoriesByType(r.Context(), core.TransactionType(kind))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
		return
	}
	set, err := s.ledger.Categories(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, set)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var c core.Category
	if err := readJSON(r, &c); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	added, err := s.ledger.AddCategory(r.Context(), c)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, added)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	kind := core.TransactionType(r.PathValue("type"))
	if !kind.Valid() {
		badRequest(w, "category type must be income or expense")
		return
	}
	if err := s.ledger.DeleteCategory(r.Context(), kind, r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetBudget(w http.ResponseWriter, r *http.Request) {
	b, err := s.ledger.Budget(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// budgetUpdate carries partial budget changes; nil fields stay untouched.
type budgetUpdate struct {
	MonthlyBudget  *float64            `json:"monthlyBudget,omitempty"`
	AlertThreshold *int                `json:"alertThreshold,omitempty"`
	CategoryBudget *categoryBudgetItem `json:"categoryBudget,omitempty"`
}

type categoryBudgetItem struct {
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
}

func (s *Server) handleUpdateBudget(w http.ResponseWriter, r *http.Request) {
	var upd budgetUpdate
	if err := readJSON(r, &upd); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	var (
		b   core.Budget
		err error
	)
	switch {
	case upd.MonthlyBudget != nil:
		b, err = s.ledger.SetMonthlyBudget(r.Context(), *upd.MonthlyBudget)
	case upd.AlertThreshold != nil:
		b, err = s.ledger.SetAlertThreshold(r.Context(), *upd.AlertThreshold)
	case upd.CategoryBudget != nil:
		b, err = s.ledger.SetCategoryBudget(r.Context(), upd.CategoryBudget.Category, upd.CategoryBudget.Amount)
	default:
		badRequest(w, "no budget field to update")
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	set, err := s.ledger.Settings(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, set)
}

func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	current, err := s.ledger.Settings(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	// Decode over the current values so omitted fields keep their state
	updated := current
	if err := readJSON(r, &updated); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	updated.LastSync = current.LastSync
	if err := s.ledger.SaveSettings(r.Context(), updated); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	year, month := now.Year(), now.Month()

	q := r.URL.Query()
	if v := q.Get("year"); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil {
			badRequest(w, "year must be a number")
			return
		}
		year = y
	}
	if v := q.Get("month"); v != "" {
		m, err := strconv.Atoi(v)
		if err != nil || m < 1 || m > 12 {
			badRequest(w, "month must be 1-12")
			return
		}
		month = time.Month(m)
	}

	key := fmt.Sprintf("%04d-%02d", year, int(month))
	if cached, ok := s.summaryCache.Get(key); ok {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	sum, err := s.ledger.Summary(r.Context(), year, month)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.summaryCache.Set(key, sum)
	writeJSON(w, http.StatusOK, sum)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	data, err := s.ledger.ExportAll(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Disposition", `attachment; filename="mubew-export.json"`)
	writeJSON(w, http.StatusOK, data)
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	out, err := s.ledger.ExportCSV(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="mubew-transactions.csv"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out)
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	var data core.DataExport
	if err := readJSON(r, &data); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	merge := r.URL.Query().Get("merge") == "true"
	if err := s.ledger.ImportAll(r.Context(), data, merge); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"imported": len(data.Transactions),
		"merge":    merge,
	})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if err := s.ledger.Reset(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSyncPush(w http.ResponseWriter, r *http.Request) {
	if err := s.sync.PushToCloud(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}
	s.writeSyncStatus(w)
}

func (s *Server) handleSyncPull(w http.ResponseWriter, r *http.Request) {
	if err := s.sync.PullFromCloud(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}
	s.writeSyncStatus(w)
}

func (s *Server) handleSyncStatus(w http.ResponseWriter, r *http.Request) {
	s.writeSyncStatus(w)
}

func (s *Server) handleSyncOnline(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Online bool `json:"online"`
	}
	if err := readJSON(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	wasOnline := s.sync.Online()
	s.sync.SetOnline(req.Online)
	if req.Online && !wasOnline {
		// Regaining connectivity pushes the local state out so
		// changes made while offline are not lost on the remote.
		go func() {
			if err := s.sync.PushToCloud(context.Background()); err != nil {
				slog.Warn("Push after reconnect failed", "error", err)
			}
		}()
	}
	s.writeSyncStatus(w)
}

func (s *Server) writeSyncStatus(w http.ResponseWriter) {
	status, lastErr := s.sync.Status()
	writeJSON(w, http.StatusOK, map[string]any{
		"status": status,
		"error":  lastErr,
		"online": s.sync.Online(),
	})
}
