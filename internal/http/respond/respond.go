// Package respond writes JSON responses and maps domain errors to status codes.
package respond

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/MrJamesThe3rd/kyat/internal/export"
	"github.com/MrJamesThe3rd/kyat/internal/importer"
	"github.com/MrJamesThe3rd/kyat/internal/ledger"
	"github.com/MrJamesThe3rd/kyat/internal/user"
)

const (
	MsgInternal  = "တစ်ခုခု မှားယွင်းနေပါသည်"
	MsgMalformed = "ဖိုင်ပုံစံ မမှန်ပါ"
)

type MessageResponse struct {
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if v == nil {
		return
	}

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func Message(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, MessageResponse{Message: msg})
}

// Error answers with the status and localized message matching err.
// Unexpected errors are logged and reported as 500.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	if msg, ok := ledger.ValidationMessage(err); ok {
		Message(w, http.StatusBadRequest, msg)
		return
	}

	switch {
	case errors.Is(err, ledger.ErrNotFound):
		Message(w, http.StatusNotFound, ledger.MsgNotFound)
	case errors.Is(err, ledger.ErrNoEntries):
		Message(w, http.StatusConflict, ledger.MsgNoEntries)
	case errors.Is(err, user.ErrDuplicateUsername):
		Message(w, http.StatusConflict, user.Message(err))
	case errors.Is(err, user.ErrInvalidCredentials):
		Message(w, http.StatusUnauthorized, user.Message(err))
	case errors.Is(err, user.ErrMissingCredentials), errors.Is(err, user.ErrPasswordMismatch):
		Message(w, http.StatusBadRequest, user.Message(err))
	case errors.Is(err, importer.ErrMalformed):
		JSON(w, http.StatusBadRequest, MessageResponse{Message: MsgMalformed, Detail: err.Error()})
	case errors.Is(err, export.ErrPDFUnavailable):
		Message(w, http.StatusServiceUnavailable, export.MsgPDFUnavailable)
	default:
		slog.ErrorContext(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		Message(w, http.StatusInternalServerError, MsgInternal)
	}
}

// Decode reads a JSON request body into v.
func Decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		JSON(w, http.StatusBadRequest, MessageResponse{Message: "invalid request body", Detail: err.Error()})
		return false
	}

	return true
}
