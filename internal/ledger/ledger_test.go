package ledger_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/kyat/internal/ledger"
)

func TestKey_RoundTrip(t *testing.T) {
	id := uuid.MustParse("0190d1c2-7b3a-7c00-8000-000000000001")

	for _, v := range []ledger.Variant{ledger.VariantIncome, ledger.VariantExpense} {
		k := ledger.Key{Variant: v, ID: id}

		got, err := ledger.ParseKey(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}

	assert.Equal(t, "E-0190d1c2-7b3a-7c00-8000-000000000001", ledger.Key{Variant: ledger.VariantExpense, ID: id}.String())
}

func TestParseKey(t *testing.T) {
	k, err := ledger.ParseKey("")
	require.NoError(t, err)
	assert.True(t, k.IsZero())
	assert.Empty(t, k.String())

	for _, bad := range []string{"E", "X-0190d1c2-7b3a-7c00-8000-000000000001", "I-not-a-uuid"} {
		_, err := ledger.ParseKey(bad)
		assert.Error(t, err, bad)
	}
}

func TestPeriod(t *testing.T) {
	dec := ledger.Period{Year: 2024, Month: time.December}

	assert.Equal(t, ledger.Period{Year: 2025, Month: time.January}, dec.Next())
	assert.Equal(t, ledger.Period{Year: 2024, Month: time.November}, dec.Prev())
	assert.Equal(t, ledger.Period{Year: 2023, Month: time.December}, ledger.Period{Year: 2024, Month: time.January}.Prev())
	assert.Equal(t, "2024-12", dec.String())

	assert.Equal(t, time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC), dec.Start())
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), dec.End())

	assert.True(t, dec.Contains(time.Date(2024, 12, 31, 23, 59, 0, 0, time.UTC)))
	assert.False(t, dec.Contains(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.False(t, dec.Contains(time.Date(2023, 12, 15, 0, 0, 0, 0, time.UTC)))
}

func TestParsePeriod(t *testing.T) {
	p, err := ledger.ParsePeriod("2024-03")
	require.NoError(t, err)
	assert.Equal(t, ledger.Period{Year: 2024, Month: time.March}, p)

	_, err = ledger.ParsePeriod("2024-13")
	assert.Error(t, err)

	_, err = ledger.NewPeriod(2024, 0)
	assert.Error(t, err)
}

func TestNewCursor(t *testing.T) {
	uid := uuid.New()
	cur := ledger.NewCursor(uid, time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC))

	assert.Equal(t, uid, cur.UserID)
	assert.Equal(t, ledger.Period{Year: 2024, Month: time.March}, cur.Period)
	assert.True(t, cur.LastTouched.IsZero())
}

func TestWallClock(t *testing.T) {
	yangon := time.FixedZone("MMT", 6*3600+1800)

	got := ledger.WallClock(time.Date(2024, 4, 1, 3, 0, 42, 5, yangon))
	assert.Equal(t, time.Date(2024, 4, 1, 3, 0, 0, 0, time.UTC), got)
	assert.Equal(t, ledger.Period{Year: 2024, Month: time.April}, ledger.PeriodOf(got))
}
