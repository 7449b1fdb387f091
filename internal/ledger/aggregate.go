package ledger

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/kyat/internal/numfmt"
)

// RowKind tags a derived row.
type RowKind int

const (
	RowIncome RowKind = iota
	RowExpense
	RowTotal
	RowDivider
)

func (k RowKind) String() string {
	switch k {
	case RowIncome:
		return "income"
	case RowExpense:
		return "expense"
	case RowTotal:
		return "total"
	case RowDivider:
		return "divider"
	}

	return "unknown"
}

const Divider = "--------"

// Row is one display line of a month statement. Detail rows carry every
// column; total and divider rows only carry Description.
type Row struct {
	Kind        RowKind
	Key         Key
	No          string
	Date        string
	Time        string
	Description string
	Income      string
	Expense     string
	Balance     string
	Note        string
	Highlight   bool

	RunningBalance decimal.Decimal
	DayExpense     decimal.Decimal
}

// IsSeparator reports whether the row is a day total or a divider.
func (r Row) IsSeparator() bool {
	return r.Kind == RowTotal || r.Kind == RowDivider
}

// DayTotalCaption is the caption closing each day of a statement.
func DayTotalCaption(day time.Time, expense decimal.Decimal) string {
	return numfmt.ToLocalizedDigits(numfmt.FormatDateNoLeadingZeros(day)) +
		" ရက်နေ့ စုစုပေါင်းသုံးငွေ (" + numfmt.FormatAmountLocalized(expense) + " ကျပ်)"
}

type day struct {
	date     time.Time
	incomes  []*Entry
	expenses []*Entry
}

// Aggregate derives the day-grouped statement rows for one month of entries.
// Days ascend; within a day incomes precede expenses, each ordered by
// timestamp with ties kept in input order. The running balance spans the
// whole month. Each day ends with a total caption and a divider.
func Aggregate(incomes, expenses []*Entry, lastTouched Key) []Row {
	days := groupByDay(incomes, expenses)
	if len(days) == 0 {
		return []Row{}
	}

	rows := make([]Row, 0, len(incomes)+len(expenses)+2*len(days))
	balance := decimal.Zero

	for _, d := range days {
		no := 0
		dayExpense := decimal.Zero

		for _, e := range d.incomes {
			no++
			balance = balance.Add(e.Amount)

			row := detailRow(e, no, balance, lastTouched)
			row.Kind = RowIncome
			row.Income = numfmt.FormatAmountLocalized(e.Amount)

			if row.Description == "" {
				row.Description = DefaultIncomeDescription
			}

			rows = append(rows, row)
		}

		for _, e := range d.expenses {
			no++
			balance = balance.Sub(e.Amount)
			dayExpense = dayExpense.Add(e.Amount)

			row := detailRow(e, no, balance, lastTouched)
			row.Kind = RowExpense
			row.Expense = numfmt.FormatAmountLocalized(e.Amount)

			rows = append(rows, row)
		}

		rows = append(rows,
			Row{Kind: RowTotal, Description: DayTotalCaption(d.date, dayExpense), DayExpense: dayExpense},
			Row{Kind: RowDivider, Description: Divider},
		)
	}

	return rows
}

func detailRow(e *Entry, no int, balance decimal.Decimal, lastTouched Key) Row {
	key := e.Key()

	return Row{
		Key:            key,
		No:             numfmt.Localize(no),
		Date:           numfmt.ToLocalizedDigits(numfmt.FormatDate(e.OccurredAt)),
		Time:           numfmt.ToLocalizedDigits(numfmt.FormatTime(e.OccurredAt)),
		Description:    e.Description,
		Balance:        numfmt.FormatAmountLocalized(balance),
		Note:           e.Note,
		Highlight:      !lastTouched.IsZero() && key == lastTouched,
		RunningBalance: balance,
	}
}

func groupByDay(incomes, expenses []*Entry) []*day {
	byDate := make(map[time.Time]*day)

	get := func(t time.Time) *day {
		date := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)

		d, ok := byDate[date]
		if !ok {
			d = &day{date: date}
			byDate[date] = d
		}

		return d
	}

	for _, e := range incomes {
		d := get(e.OccurredAt)
		d.incomes = append(d.incomes, e)
	}

	for _, e := range expenses {
		d := get(e.OccurredAt)
		d.expenses = append(d.expenses, e)
	}

	days := make([]*day, 0, len(byDate))
	for _, d := range byDate {
		slices.SortStableFunc(d.incomes, byTimestamp)
		slices.SortStableFunc(d.expenses, byTimestamp)

		days = append(days, d)
	}

	slices.SortFunc(days, func(a, b *day) int {
		return a.date.Compare(b.date)
	})

	return days
}

func byTimestamp(a, b *Entry) int {
	return a.OccurredAt.Compare(b.OccurredAt)
}

// Summarize totals a month of entries.
func Summarize(p Period, incomes, expenses []*Entry, lastTouched Key) *Statement {
	st := &Statement{
		Period:       p,
		Rows:         Aggregate(incomes, expenses, lastTouched),
		IncomeTotal:  decimal.Zero,
		ExpenseTotal: decimal.Zero,
	}

	for _, e := range incomes {
		st.IncomeTotal = st.IncomeTotal.Add(e.Amount)
	}

	for _, e := range expenses {
		st.ExpenseTotal = st.ExpenseTotal.Add(e.Amount)
	}

	st.Balance = st.IncomeTotal.Sub(st.ExpenseTotal)

	return st
}
