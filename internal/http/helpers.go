package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/vwin2537-arch/MooBeauwNote/internal/cloud"
	"github.com/vwin2537-arch/MooBeauwNote/internal/core"
	"github.com/vwin2537-arch/MooBeauwNote/internal/services"
)

// maxBodyBytes bounds request bodies; imports carry embedded receipts so
// the limit is generous.
const maxBodyBytes = 32 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func readJSON(r *http.Request, dest any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return err
	}
	return json.Unmarshal(body, dest)
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeError maps domain errors onto HTTP statuses.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, core.ErrTransactionNotFound),
		errors.Is(err, core.ErrCategoryNotFound):
		status = http.StatusNotFound
	case errors.Is(err, core.ErrInvalidType),
		errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrReceiptTooLarge),
		errors.Is(err, core.ErrEmptyCategoryName):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, services.ErrOffline),
		errors.Is(err, cloud.ErrNoEndpoint),
		errors.Is(err, services.ErrSyncInProgress):
		status = http.StatusConflict
	case errors.Is(err, cloud.ErrPullTimeout):
		status = http.StatusGatewayTimeout
	case errors.Is(err, cloud.ErrRemote):
		status = http.StatusBadGateway
	}

	if status == http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "Request failed", "url", r.URL.Path, "error", err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: msg})
}
