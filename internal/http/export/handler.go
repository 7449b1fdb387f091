package export

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/kyat/internal/export"
	"github.com/MrJamesThe3rd/kyat/internal/http/respond"
	"github.com/MrJamesThe3rd/kyat/internal/ledger"
	"github.com/MrJamesThe3rd/kyat/internal/session"
)

// WarningHeader carries Document.Warning, URL-escaped.
const WarningHeader = "X-Kyat-Warning"

type Handler struct {
	svc *export.Service
}

func NewHandler(svc *export.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/{format}", h.download)
}

func (h *Handler) download(w http.ResponseWriter, r *http.Request) {
	st, ok := session.FromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	format, err := export.ParseFormat(chi.URLParam(r, "format"))
	if err != nil {
		respond.Message(w, http.StatusNotFound, err.Error())
		return
	}

	p, err := period(r.URL.Query(), st.Cursor.Period)
	if err != nil {
		respond.Message(w, http.StatusBadRequest, err.Error())
		return
	}

	doc, err := h.svc.Render(r.Context(), st.Cursor, p, format)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	if doc.Warning != "" {
		w.Header().Set(WarningHeader, url.QueryEscape(doc.Warning))
	}

	w.Header().Set("Content-Type", doc.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(doc.Body)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc.Body)
}

// period reads ?year=&month=, defaulting to the cursor's month.
func period(q url.Values, fallback ledger.Period) (ledger.Period, error) {
	if q.Get("year") == "" && q.Get("month") == "" {
		return fallback, nil
	}

	year, err := strconv.Atoi(q.Get("year"))
	if err != nil {
		return ledger.Period{}, fmt.Errorf("invalid year %q", q.Get("year"))
	}

	month, err := strconv.Atoi(q.Get("month"))
	if err != nil {
		return ledger.Period{}, fmt.Errorf("invalid month %q", q.Get("month"))
	}

	return ledger.NewPeriod(year, month)
}
