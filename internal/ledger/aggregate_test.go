package ledger_test

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/kyat/internal/ledger"
	"github.com/MrJamesThe3rd/kyat/internal/numfmt"
)

func entry(v ledger.Variant, at string, amount int64, desc string) *ledger.Entry {
	id, err := uuid.NewV7()
	if err != nil {
		panic(err)
	}

	ts, err := time.Parse("2006-01-02 15:04", at)
	if err != nil {
		panic(err)
	}

	return &ledger.Entry{
		ID:          id,
		Variant:     v,
		OccurredAt:  ts,
		Description: desc,
		Amount:      decimal.NewFromInt(amount),
	}
}

func TestAggregate_MarchScenario(t *testing.T) {
	salary := entry(ledger.VariantIncome, "2024-03-01 09:00", 50000, "Salary")
	lunch := entry(ledger.VariantExpense, "2024-03-01 10:00", 5000, "Lunch")
	coffee := entry(ledger.VariantExpense, "2024-03-02 09:00", 2000, "Coffee")

	rows := ledger.Aggregate(
		[]*ledger.Entry{salary},
		[]*ledger.Entry{lunch, coffee},
		lunch.Key(),
	)
	require.Len(t, rows, 7)

	assert.Equal(t, ledger.RowIncome, rows[0].Kind)
	assert.Equal(t, "၁", rows[0].No)
	assert.Equal(t, "၀၁-၀၃-၂၀၂၄", rows[0].Date)
	assert.Equal(t, "၀၉:၀၀", rows[0].Time)
	assert.Equal(t, "Salary", rows[0].Description)
	assert.Equal(t, "၅၀,၀၀၀", rows[0].Income)
	assert.Empty(t, rows[0].Expense)
	assert.Equal(t, "၅၀,၀၀၀", rows[0].Balance)
	assert.False(t, rows[0].Highlight)

	assert.Equal(t, ledger.RowExpense, rows[1].Kind)
	assert.Equal(t, "၂", rows[1].No)
	assert.Empty(t, rows[1].Income)
	assert.Equal(t, "၅,၀၀၀", rows[1].Expense)
	assert.Equal(t, "၄၅,၀၀၀", rows[1].Balance)
	assert.True(t, rows[1].Highlight)

	assert.Equal(t, ledger.RowTotal, rows[2].Kind)
	assert.Equal(t, "၁-၃-၂၀၂၄ ရက်နေ့ စုစုပေါင်းသုံးငွေ (၅,၀၀၀ ကျပ်)", rows[2].Description)
	assert.True(t, decimal.NewFromInt(5000).Equal(rows[2].DayExpense))
	assert.Equal(t, ledger.RowDivider, rows[3].Kind)

	assert.Equal(t, "၁", rows[4].No)
	assert.Equal(t, "Coffee", rows[4].Description)
	assert.Equal(t, "၄၃,၀၀၀", rows[4].Balance)
	assert.True(t, decimal.NewFromInt(43000).Equal(rows[4].RunningBalance))

	assert.Equal(t, "၂-၃-၂၀၂၄ ရက်နေ့ စုစုပေါင်းသုံးငွေ (၂,၀၀၀ ကျပ်)", rows[5].Description)
	assert.Equal(t, ledger.RowDivider, rows[6].Kind)
	assert.Equal(t, ledger.Divider, rows[6].Description)
}

func TestAggregate_EdgeCases(t *testing.T) {
	t.Run("EmptyMonth", func(t *testing.T) {
		rows := ledger.Aggregate(nil, nil, ledger.Key{})
		assert.NotNil(t, rows)
		assert.Empty(t, rows)
	})

	t.Run("IncomeOnlyDayHasZeroTotal", func(t *testing.T) {
		rows := ledger.Aggregate([]*ledger.Entry{entry(ledger.VariantIncome, "2024-03-05 08:00", 1000, "")}, nil, ledger.Key{})
		require.Len(t, rows, 3)

		assert.Equal(t, ledger.DefaultIncomeDescription, rows[0].Description)
		assert.Equal(t, "၅-၃-၂၀၂၄ ရက်နေ့ စုစုပေါင်းသုံးငွေ (၀ ကျပ်)", rows[1].Description)
		assert.Equal(t, ledger.RowDivider, rows[2].Kind)
	})

	t.Run("NegativeBalance", func(t *testing.T) {
		rows := ledger.Aggregate(nil, []*ledger.Entry{entry(ledger.VariantExpense, "2024-03-05 08:00", 1500, "Taxi")}, ledger.Key{})
		require.Len(t, rows, 3)

		assert.Equal(t, "-၁,၅၀၀", rows[0].Balance)
		assert.True(t, rows[0].RunningBalance.IsNegative())
	})

	t.Run("IncomesBeforeExpensesWithinDay", func(t *testing.T) {
		early := entry(ledger.VariantExpense, "2024-03-05 07:00", 100, "Tea")
		late := entry(ledger.VariantIncome, "2024-03-05 20:00", 300, "Refund")

		rows := ledger.Aggregate([]*ledger.Entry{late}, []*ledger.Entry{early}, ledger.Key{})
		require.Len(t, rows, 4)

		assert.Equal(t, late.Key(), rows[0].Key)
		assert.Equal(t, early.Key(), rows[1].Key)
		assert.Equal(t, "၂", rows[1].No)
	})

	t.Run("EqualTimestampsKeepInputOrder", func(t *testing.T) {
		a := entry(ledger.VariantExpense, "2024-03-05 12:00", 1, "a")
		b := entry(ledger.VariantExpense, "2024-03-05 12:00", 2, "b")
		c := entry(ledger.VariantExpense, "2024-03-05 11:00", 3, "c")

		rows := ledger.Aggregate(nil, []*ledger.Entry{a, b, c}, ledger.Key{})
		require.Len(t, rows, 5)

		assert.Equal(t, []string{"c", "a", "b"}, []string{rows[0].Description, rows[1].Description, rows[2].Description})
	})

	t.Run("DaysOutOfOrderInput", func(t *testing.T) {
		d2 := entry(ledger.VariantExpense, "2024-03-20 12:00", 1, "later")
		d1 := entry(ledger.VariantExpense, "2024-03-02 12:00", 1, "earlier")

		rows := ledger.Aggregate(nil, []*ledger.Entry{d2, d1}, ledger.Key{})
		require.Len(t, rows, 6)

		assert.Equal(t, "earlier", rows[0].Description)
		assert.Equal(t, "later", rows[3].Description)
	})

	t.Run("NoHighlightForZeroKey", func(t *testing.T) {
		rows := ledger.Aggregate(nil, []*ledger.Entry{entry(ledger.VariantExpense, "2024-03-05 12:00", 1, "x")}, ledger.Key{})
		assert.False(t, rows[0].Highlight)
	})
}

func randomMonth(r *rand.Rand) (incomes, expenses []*ledger.Entry) {
	n := r.IntN(40)
	for range n {
		at := time.Date(2024, time.February, 1+r.IntN(29), r.IntN(24), r.IntN(60), 0, 0, time.UTC)
		amount := decimal.NewFromInt(r.Int64N(100000))

		id, _ := uuid.NewV7()
		e := &ledger.Entry{ID: id, OccurredAt: at, Description: "x", Amount: amount}

		if r.IntN(3) == 0 {
			e.Variant = ledger.VariantIncome
			incomes = append(incomes, e)
		} else {
			e.Variant = ledger.VariantExpense
			expenses = append(expenses, e)
		}
	}

	return incomes, expenses
}

func TestAggregate_Properties(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 11))

	for i := range 200 {
		incomes, expenses := randomMonth(r)
		rows := ledger.Aggregate(incomes, expenses, ledger.Key{})

		want := decimal.Zero
		for _, e := range incomes {
			want = want.Add(e.Amount)
		}

		for _, e := range expenses {
			want = want.Sub(e.Amount)
		}

		var (
			last       decimal.Decimal
			dayExpense = decimal.Zero
			dayCount   = 0
			seenExp    = false
		)

		for _, row := range rows {
			switch row.Kind {
			case ledger.RowIncome, ledger.RowExpense:
				dayCount++
				assert.Equal(t, numfmt.Localize(dayCount), row.No, "iteration %d", i)

				last = row.RunningBalance

				if row.Kind == ledger.RowIncome {
					assert.False(t, seenExp, "income after expense, iteration %d", i)
				} else {
					seenExp = true
					dayExpense = dayExpense.Add(decimal.RequireFromString(numfmt.ToASCIIAmount(row.Expense)))
				}
			case ledger.RowTotal:
				assert.Positive(t, dayCount)
				assert.True(t, dayExpense.Equal(row.DayExpense), "iteration %d", i)
				assert.Contains(t, row.Description, "("+numfmt.FormatAmountLocalized(dayExpense)+" ကျပ်)")
			case ledger.RowDivider:
				dayExpense = decimal.Zero
				dayCount = 0
				seenExp = false
			}
		}

		if len(rows) == 0 {
			assert.Empty(t, incomes)
			assert.Empty(t, expenses)

			continue
		}

		assert.True(t, want.Equal(last), "iteration %d: want %s got %s", i, want, last)
		assert.Equal(t, ledger.RowDivider, rows[len(rows)-1].Kind)
	}
}

func TestSummarize(t *testing.T) {
	p := ledger.Period{Year: 2024, Month: time.March}
	st := ledger.Summarize(p,
		[]*ledger.Entry{entry(ledger.VariantIncome, "2024-03-01 09:00", 50000, "Salary")},
		[]*ledger.Entry{
			entry(ledger.VariantExpense, "2024-03-01 10:00", 5000, "Lunch"),
			entry(ledger.VariantExpense, "2024-03-02 09:00", 2000, "Coffee"),
		},
		ledger.Key{},
	)

	assert.Equal(t, p, st.Period)
	assert.True(t, decimal.NewFromInt(50000).Equal(st.IncomeTotal))
	assert.True(t, decimal.NewFromInt(7000).Equal(st.ExpenseTotal))
	assert.True(t, decimal.NewFromInt(43000).Equal(st.Balance))
	assert.Len(t, st.Rows, 7)
}
