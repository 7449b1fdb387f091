package importer

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/kyat/internal/http/respond"
	"github.com/MrJamesThe3rd/kyat/internal/importer"
	"github.com/MrJamesThe3rd/kyat/internal/ledger"
	"github.com/MrJamesThe3rd/kyat/internal/session"
)

const (
	maxUpload = 10 << 20

	msgFileRequired = "ဖိုင် ရွေးပါ"
)

type Handler struct {
	svc      *importer.Service
	sessions *session.Manager
}

func NewHandler(svc *importer.Service, sessions *session.Manager) *Handler {
	return &Handler{svc: svc, sessions: sessions}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.importStatement)
}

type entryDTO struct {
	Kind        ledger.Variant  `json:"kind"`
	OccurredAt  time.Time       `json:"occurred_at"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Note        string          `json:"note"`
}

type conflictDTO struct {
	Incoming entryDTO `json:"incoming"`
	Existing entryDTO `json:"existing"`
	Key      string   `json:"existing_key"`
}

type importSuccessResponse struct {
	Imported int        `json:"imported"`
	Skipped  int        `json:"skipped"`
	Entries  []entryDTO `json:"entries"`
}

type importConflictResponse struct {
	New       []entryDTO    `json:"new"`
	Conflicts []conflictDTO `json:"conflicts"`
}

// importStatement takes a multipart "file" field. Conflicting entries abort
// the import with 409 unless "force" is true, in which case they are skipped.
func (h *Handler) importStatement(w http.ResponseWriter, r *http.Request) {
	st, ok := session.FromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	if err := r.ParseMultipartForm(maxUpload); err != nil {
		respond.JSON(w, http.StatusBadRequest, respond.MessageResponse{Message: msgFileRequired, Detail: err.Error()})
		return
	}

	force, _ := strconv.ParseBool(r.FormValue("force"))

	file, _, err := r.FormFile("file")
	if err != nil {
		respond.Message(w, http.StatusBadRequest, msgFileRequired)
		return
	}
	defer file.Close()

	result, err := h.svc.Import(r.Context(), &st.Cursor, file, force)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	if len(result.Conflicts) > 0 && !force {
		resp := importConflictResponse{
			New:       make([]entryDTO, 0, len(result.New)),
			Conflicts: make([]conflictDTO, 0, len(result.Conflicts)),
		}
		for _, p := range result.New {
			resp.New = append(resp.New, fromParams(p))
		}

		for _, c := range result.Conflicts {
			resp.Conflicts = append(resp.Conflicts, conflictDTO{
				Incoming: fromParams(c.Incoming),
				Existing: fromEntry(c.Existing),
				Key:      c.Existing.Key().String(),
			})
		}

		respond.JSON(w, http.StatusConflict, resp)

		return
	}

	if err := h.sessions.Save(w, *st); err != nil {
		respond.Error(w, r, err)
		return
	}

	slog.Info("statement imported", "user_id", st.Cursor.UserID, "imported", len(result.Imported), "skipped", len(result.Conflicts))

	entries := make([]entryDTO, 0, len(result.Imported))
	for _, e := range result.Imported {
		entries = append(entries, fromEntry(e))
	}

	respond.JSON(w, http.StatusCreated, importSuccessResponse{
		Imported: len(result.Imported),
		Skipped:  len(result.Conflicts),
		Entries:  entries,
	})
}

func fromParams(p ledger.AddParams) entryDTO {
	return entryDTO{
		Kind:        p.Variant,
		OccurredAt:  p.OccurredAt,
		Description: p.Description,
		Amount:      p.Amount,
		Note:        p.Note,
	}
}

func fromEntry(e *ledger.Entry) entryDTO {
	return entryDTO{
		Kind:        e.Variant,
		OccurredAt:  e.OccurredAt,
		Description: e.Description,
		Amount:      e.Amount,
		Note:        e.Note,
	}
}
