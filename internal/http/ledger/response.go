package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/kyat/internal/ledger"
	"github.com/MrJamesThe3rd/kyat/internal/numfmt"
)

type entryResponse struct {
	Key           string          `json:"key"`
	Kind          ledger.Variant  `json:"kind"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Description   string          `json:"description"`
	Amount        decimal.Decimal `json:"amount"`
	AmountDisplay string          `json:"amount_display"`
	Note          string          `json:"note"`
	CreatedAt     time.Time       `json:"created_at"`
}

type rowResponse struct {
	Kind        string `json:"kind"`
	Key         string `json:"key,omitempty"`
	No          string `json:"no"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	Description string `json:"description"`
	Income      string `json:"income"`
	Expense     string `json:"expense"`
	Balance     string `json:"balance"`
	Note        string `json:"note"`
	Highlight   bool   `json:"highlight,omitempty"`
}

type statementResponse struct {
	Period            string          `json:"period"`
	LastTouched       string          `json:"last_touched,omitempty"`
	Rows              []rowResponse   `json:"rows"`
	IncomeTotal       decimal.Decimal `json:"income_total"`
	ExpenseTotal      decimal.Decimal `json:"expense_total"`
	Balance           decimal.Decimal `json:"balance"`
	MonthTotal        decimal.Decimal `json:"month_total"`
	MonthTotalDisplay string          `json:"month_total_display"`
}

type closureResponse struct {
	ID           uuid.UUID       `json:"id"`
	Period       string          `json:"period"`
	Total        decimal.Decimal `json:"total"`
	TotalDisplay string          `json:"total_display"`
	ClosedAt     time.Time       `json:"closed_at"`
}

type mutationResponse struct {
	Message string         `json:"message"`
	Entry   *entryResponse `json:"entry,omitempty"`
}

type closeResponse struct {
	Message string          `json:"message"`
	Closure closureResponse `json:"closure"`
	Period  string          `json:"period"`
}

func toEntryResponse(e *ledger.Entry) *entryResponse {
	return &entryResponse{
		Key:           e.Key().String(),
		Kind:          e.Variant,
		OccurredAt:    e.OccurredAt,
		Description:   e.Description,
		Amount:        e.Amount,
		AmountDisplay: numfmt.FormatAmountLocalized(e.Amount),
		Note:          e.Note,
		CreatedAt:     e.CreatedAt,
	}
}

func toStatementResponse(st *ledger.Statement, cur ledger.Cursor, monthTotal decimal.Decimal) statementResponse {
	rows := make([]rowResponse, 0, len(st.Rows))
	for _, r := range st.Rows {
		row := rowResponse{
			Kind:        r.Kind.String(),
			No:          r.No,
			Date:        r.Date,
			Time:        r.Time,
			Description: r.Description,
			Income:      r.Income,
			Expense:     r.Expense,
			Balance:     r.Balance,
			Note:        r.Note,
			Highlight:   r.Highlight,
		}
		if !r.Key.IsZero() {
			row.Key = r.Key.String()
		}

		rows = append(rows, row)
	}

	return statementResponse{
		Period:            st.Period.String(),
		LastTouched:       cur.LastTouched.String(),
		Rows:              rows,
		IncomeTotal:       st.IncomeTotal,
		ExpenseTotal:      st.ExpenseTotal,
		Balance:           st.Balance,
		MonthTotal:        monthTotal,
		MonthTotalDisplay: numfmt.FormatAmountLocalized(monthTotal),
	}
}

func toClosureResponse(c *ledger.Closure) closureResponse {
	return closureResponse{
		ID:           c.ID,
		Period:       c.Period().String(),
		Total:        c.Total,
		TotalDisplay: numfmt.FormatAmountLocalized(c.Total),
		ClosedAt:     c.CreatedAt,
	}
}

func toClosureList(cs []*ledger.Closure) []closureResponse {
	resp := make([]closureResponse, 0, len(cs))
	for _, c := range cs {
		resp = append(resp, toClosureResponse(c))
	}

	return resp
}
