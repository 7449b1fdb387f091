package numfmt_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/kyat/internal/numfmt"
)

func TestToLocalizedDigits(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "Digits", in: "0123456789", want: "၀၁၂၃၄၅၆၇၈၉"},
		{name: "Grouped", in: "50,000", want: "၅၀,၀၀၀"},
		{name: "Date", in: "1-3-2024", want: "၁-၃-၂၀၂၄"},
		{name: "NonDigitsUntouched", in: "Lunch ကျပ်", want: "Lunch ကျပ်"},
		{name: "Empty", in: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, numfmt.ToLocalizedDigits(tt.in))
		})
	}
}

func TestLocalize(t *testing.T) {
	assert.Equal(t, "၁၂", numfmt.Localize(12))
}

func TestToASCIIAmount(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "Myanmar", in: "၅၀,၀၀၀", want: "50000"},
		{name: "Mixed", in: " ၁0,၀0၀ ", want: "10000"},
		{name: "BurmeseSection", in: "၁၊၀၀၀", want: "1000"},
		{name: "Decimal", in: "12.5", want: "12.5"},
		{name: "Empty", in: "   ", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, numfmt.ToASCIIAmount(tt.in))
		})
	}
}

func TestToASCIIAmount_RoundTrip(t *testing.T) {
	for _, x := range []string{"0", "1,234", " 50,000 ", "7", "1,000,000"} {
		got := numfmt.ToASCIIAmount(numfmt.ToLocalizedDigits(x))
		assert.Equal(t, numfmt.ToASCIIAmount(x), got, "input %q", x)
	}
}

func TestParseAmount(t *testing.T) {
	got, err := numfmt.ParseAmount("၁၀,၀၀၀")
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(10000).Equal(got))

	for _, bad := range []string{"", "abc", "-5", "1,2x"} {
		_, err := numfmt.ParseAmount(bad)
		assert.ErrorIs(t, err, numfmt.ErrInvalidAmount, "input %q", bad)
	}
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "1999.6", want: "2,000"},
		{in: "0", want: "0"},
		{in: "999", want: "999"},
		{in: "1234567", want: "1,234,567"},
		{in: "2.5", want: "3"},
		{in: "-2.5", want: "-3"},
		{in: "-43000", want: "-43,000"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, numfmt.FormatAmount(decimal.RequireFromString(tt.in)))
		})
	}
}

func TestFormatAmountLocalized(t *testing.T) {
	assert.Equal(t, "၄၃,၀၀၀", numfmt.FormatAmountLocalized(decimal.NewFromInt(43000)))
}

func TestFormatAmountString_Lenient(t *testing.T) {
	assert.Equal(t, "12,000", numfmt.FormatAmountString("12000"))
	assert.Equal(t, "n/a", numfmt.FormatAmountString("n/a"))
}

func TestFormatDates(t *testing.T) {
	d := time.Date(2024, 3, 1, 9, 5, 0, 0, time.UTC)

	assert.Equal(t, "1-3-2024", numfmt.FormatDateNoLeadingZeros(d))
	assert.Equal(t, "01-03-2024", numfmt.FormatDate(d))
	assert.Equal(t, "09:05", numfmt.FormatTime(d))
}

func TestParseDateTime(t *testing.T) {
	tests := []struct {
		name    string
		date    string
		clock   string
		want    time.Time
		wantErr bool
	}{
		{name: "ASCII", date: "01-04-2024", clock: "03:00", want: time.Date(2024, 4, 1, 3, 0, 0, 0, time.UTC)},
		{name: "Myanmar", date: "၁၅-၀၃-၂၀၂၄", clock: "၀၉:၀၀", want: time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)},
		{name: "Padded", date: " 31-12-2023 ", clock: " 23:59", want: time.Date(2023, 12, 31, 23, 59, 0, 0, time.UTC)},
		{name: "BadDay", date: "32-01-2024", clock: "09:00", wantErr: true},
		{name: "BadClock", date: "01-01-2024", clock: "25:00", wantErr: true},
		{name: "MissingClock", date: "01-01-2024", clock: "", wantErr: true},
		{name: "ISODate", date: "2024-01-01", clock: "09:00", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := numfmt.ParseDateTime(tt.date, tt.clock)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
