package view

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/kyat/internal/ledger"
)

var (
	march = ledger.Period{Year: 2024, Month: time.March}
	april = ledger.Period{Year: 2024, Month: time.April}
)

func TestDefaultDate(t *testing.T) {
	now := time.Date(2024, 3, 15, 20, 0, 0, 0, time.UTC)

	assert.Equal(t, "15-03-2024", defaultDate(march, now))
	assert.Equal(t, "01-04-2024", defaultDate(april, now))
}

func TestEntryValues_AddParams(t *testing.T) {
	tests := []struct {
		name    string
		vals    entryValues
		wantAt  time.Time
		wantMsg string
	}{
		{
			name:   "ASCII",
			vals:   entryValues{date: "01-04-2024", clock: "03:00", description: "Tea", amount: "1,500"},
			wantAt: time.Date(2024, 4, 1, 3, 0, 0, 0, time.UTC),
		},
		{
			name:   "MyanmarDigits",
			vals:   entryValues{date: "၀၂-၀၃-၂၀၂၄", clock: "၀၉:၀၀", description: "Lunch", amount: "၅,၀၀၀"},
			wantAt: time.Date(2024, 3, 2, 9, 0, 0, 0, time.UTC),
		},
		{
			name:    "BadDate",
			vals:    entryValues{date: "31-02-2024", clock: "09:00", amount: "1"},
			wantMsg: ledger.MsgInvalidDate,
		},
		{
			name:    "BadTime",
			vals:    entryValues{date: "01-03-2024", clock: "9am", amount: "1"},
			wantMsg: ledger.MsgInvalidTime,
		},
		{
			name:    "BadAmount",
			vals:    entryValues{date: "01-03-2024", clock: "09:00", amount: "lots"},
			wantMsg: ledger.MsgInvalidAmount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.vals.addParams(ledger.VariantExpense)
			if tt.wantMsg != "" {
				msg, ok := ledger.ValidationMessage(err)
				require.True(t, ok, err)
				assert.Equal(t, tt.wantMsg, msg)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantAt, got.OccurredAt)
			assert.Equal(t, ledger.VariantExpense, got.Variant)
		})
	}
}

func TestLedgerModel_AddWithDateAndTime(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := ledger.NewMockRepository(ctrl)

	yangon := time.FixedZone("MMT", 6*3600+1800)
	svc := ledger.NewService(repo,
		ledger.WithClock(func() time.Time { return time.Date(2024, 3, 15, 3, 30, 0, 0, time.UTC) }),
		ledger.WithLocation(yangon),
	)

	var stored *ledger.Entry

	repo.EXPECT().
		CreateEntry(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, e *ledger.Entry) error {
			e.ID = uuid.New()
			stored = e

			return nil
		})

	m := NewLedgerModel(Services{Ledger: svc}, ledger.Cursor{UserID: uuid.New(), Period: march})

	next, _ := m.enterAdd(ledger.VariantExpense)
	m = next.(LedgerModel)

	assert.Equal(t, ledgerStateForm, m.state)
	assert.Equal(t, "15-03-2024", m.vals.date)
	assert.Equal(t, defaultClock, m.vals.clock)

	m.vals.date = "၀၁-၀၄-၂၀၂၄"
	m.vals.clock = "03:00"
	m.vals.description = "Tea"
	m.vals.amount = "1500"

	msg, ok := m.saveCmd()().(mutationMsg)
	require.True(t, ok)
	require.NoError(t, msg.err)

	require.NotNil(t, stored)
	assert.Equal(t, time.Date(2024, 4, 1, 3, 0, 0, 0, time.UTC), stored.OccurredAt)
	assert.Equal(t, april, msg.cur.Period)
	assert.Equal(t, stored.Key(), msg.cur.LastTouched)
}

func TestLedgerModel_EditHasNoDateFields(t *testing.T) {
	m := NewLedgerModel(Services{}, ledger.Cursor{UserID: uuid.New(), Period: march})
	m.st = &ledger.Statement{Rows: []ledger.Row{{
		Kind:        ledger.RowExpense,
		Key:         ledger.Key{Variant: ledger.VariantExpense, ID: uuid.New()},
		Description: "Lunch",
		Expense:     "၅,၀၀၀",
	}}}
	m.refreshTable()

	next, _ := m.enterEdit()
	m = next.(LedgerModel)

	require.NotNil(t, m.form)
	assert.Empty(t, m.vals.date)
	assert.Equal(t, "5000", m.vals.amount)
	assert.Len(t, entryFields(m.vals, ledger.VariantExpense, false), 3)
	assert.Len(t, entryFields(m.vals, ledger.VariantExpense, true), 5)
}
