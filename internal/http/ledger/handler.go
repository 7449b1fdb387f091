package ledger

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/kyat/internal/http/respond"
	"github.com/MrJamesThe3rd/kyat/internal/ledger"
	"github.com/MrJamesThe3rd/kyat/internal/numfmt"
	"github.com/MrJamesThe3rd/kyat/internal/session"
)

const msgBadPeriod = "လ/နှစ် မမှန်ပါ"

type Handler struct {
	svc      *ledger.Service
	sessions *session.Manager
}

func NewHandler(svc *ledger.Service, sessions *session.Manager) *Handler {
	return &Handler{svc: svc, sessions: sessions}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.current)
	r.Put("/period", h.setPeriod)
	r.Post("/entries", h.create)
	r.Get("/entries/{key}", h.get)
	r.Patch("/entries/{key}", h.update)
	r.Delete("/entries/{key}", h.delete)
	r.Post("/close", h.closeMonth)
	r.Get("/closures", h.closures)
	r.Get("/months/{year}/{month}", h.month)
}

type createEntryRequest struct {
	Kind        ledger.Variant `json:"kind"`
	Description string         `json:"description"`
	Amount      string         `json:"amount"`
	Note        string         `json:"note"`
	OccurredAt  *time.Time     `json:"occurred_at,omitempty"`
}

type updateEntryRequest struct {
	Description string `json:"description"`
	Amount      string `json:"amount"`
	Note        string `json:"note"`
}

type periodRequest struct {
	Action string `json:"action,omitempty"`
	Period string `json:"period,omitempty"`
}

// parseAmount accepts Myanmar or ASCII digits with optional separators.
func parseAmount(raw string) (decimal.Decimal, error) {
	d, err := numfmt.ParseAmount(raw)
	if err != nil {
		return decimal.Zero, &ledger.ValidationError{Field: "amount", Message: ledger.MsgInvalidAmount}
	}

	return d, nil
}

func parseKey(w http.ResponseWriter, r *http.Request) (ledger.Key, bool) {
	key, err := ledger.ParseKey(chi.URLParam(r, "key"))
	if err != nil || key.IsZero() {
		respond.Message(w, http.StatusNotFound, ledger.MsgNotFound)
		return ledger.Key{}, false
	}

	return key, true
}

func (h *Handler) state(w http.ResponseWriter, r *http.Request) (*session.State, bool) {
	st, ok := session.FromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}

	return st, ok
}

func (h *Handler) save(w http.ResponseWriter, r *http.Request, st *session.State) bool {
	if err := h.sessions.Save(w, *st); err != nil {
		respond.Error(w, r, err)
		return false
	}

	return true
}

func (h *Handler) current(w http.ResponseWriter, r *http.Request) {
	st, ok := h.state(w, r)
	if !ok {
		return
	}

	h.writeStatement(w, r, st.Cursor, st.Cursor.Period)
}

func (h *Handler) month(w http.ResponseWriter, r *http.Request) {
	st, ok := h.state(w, r)
	if !ok {
		return
	}

	year, yerr := strconv.Atoi(chi.URLParam(r, "year"))
	month, merr := strconv.Atoi(chi.URLParam(r, "month"))

	p, err := ledger.NewPeriod(year, month)
	if yerr != nil || merr != nil || err != nil {
		respond.Message(w, http.StatusBadRequest, msgBadPeriod)
		return
	}

	h.writeStatement(w, r, st.Cursor, p)
}

func (h *Handler) writeStatement(w http.ResponseWriter, r *http.Request, cur ledger.Cursor, p ledger.Period) {
	stmt, err := h.svc.MonthStatement(r.Context(), cur, p)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	total, err := h.svc.SumExpenses(r.Context(), cur.UserID, p)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toStatementResponse(stmt, cur, total))
}

func (h *Handler) setPeriod(w http.ResponseWriter, r *http.Request) {
	st, ok := h.state(w, r)
	if !ok {
		return
	}

	var req periodRequest
	if !respond.Decode(w, r, &req) {
		return
	}

	switch {
	case req.Period != "":
		p, err := ledger.ParsePeriod(req.Period)
		if err != nil {
			respond.Message(w, http.StatusBadRequest, msgBadPeriod)
			return
		}

		st.Cursor.Period = p
	case req.Action == "prev":
		st.Cursor.Period = st.Cursor.Period.Prev()
	case req.Action == "next":
		st.Cursor.Period = st.Cursor.Period.Next()
	default:
		respond.Message(w, http.StatusBadRequest, msgBadPeriod)
		return
	}

	if !h.save(w, r, st) {
		return
	}

	h.writeStatement(w, r, st.Cursor, st.Cursor.Period)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	st, ok := h.state(w, r)
	if !ok {
		return
	}

	var req createEntryRequest
	if !respond.Decode(w, r, &req) {
		return
	}

	amount, err := parseAmount(req.Amount)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	params := ledger.AddParams{
		Variant:     req.Kind,
		Description: req.Description,
		Amount:      amount,
		Note:        req.Note,
	}
	if req.OccurredAt != nil {
		params.OccurredAt = *req.OccurredAt
	}

	e, err := h.svc.Add(r.Context(), &st.Cursor, params)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	if !h.save(w, r, st) {
		return
	}

	respond.JSON(w, http.StatusCreated, mutationResponse{Message: ledger.AddedMessage(e), Entry: toEntryResponse(e)})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	st, ok := h.state(w, r)
	if !ok {
		return
	}

	key, ok := parseKey(w, r)
	if !ok {
		return
	}

	e, err := h.svc.Get(r.Context(), st.Cursor.UserID, key)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toEntryResponse(e))
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	st, ok := h.state(w, r)
	if !ok {
		return
	}

	key, ok := parseKey(w, r)
	if !ok {
		return
	}

	var req updateEntryRequest
	if !respond.Decode(w, r, &req) {
		return
	}

	amount, err := parseAmount(req.Amount)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	e, err := h.svc.Update(r.Context(), &st.Cursor, ledger.UpdateParams{
		Key:         key,
		Description: req.Description,
		Amount:      amount,
		Note:        req.Note,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	if !h.save(w, r, st) {
		return
	}

	respond.JSON(w, http.StatusOK, mutationResponse{Message: ledger.UpdatedMessage(e), Entry: toEntryResponse(e)})
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	st, ok := h.state(w, r)
	if !ok {
		return
	}

	key, ok := parseKey(w, r)
	if !ok {
		return
	}

	if err := h.svc.Delete(r.Context(), &st.Cursor, key); err != nil {
		respond.Error(w, r, err)
		return
	}

	if !h.save(w, r, st) {
		return
	}

	respond.Message(w, http.StatusOK, ledger.MsgDeleted)
}

func (h *Handler) closeMonth(w http.ResponseWriter, r *http.Request) {
	st, ok := h.state(w, r)
	if !ok {
		return
	}

	c, err := h.svc.CloseMonth(r.Context(), &st.Cursor)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	if !h.save(w, r, st) {
		return
	}

	respond.JSON(w, http.StatusCreated, closeResponse{
		Message: ledger.ClosedMessage(c),
		Closure: toClosureResponse(c),
		Period:  st.Cursor.Period.String(),
	})
}

func (h *Handler) closures(w http.ResponseWriter, r *http.Request) {
	st, ok := h.state(w, r)
	if !ok {
		return
	}

	cs, err := h.svc.Closures(r.Context(), st.Cursor.UserID)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toClosureList(cs))
}
