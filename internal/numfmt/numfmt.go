// Package numfmt converts between ASCII and Myanmar digits and formats
// kyat amounts and dates the way the ledger displays them.
package numfmt

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

const (
	asciiZero   = '0'
	myanmarZero = '၀' // U+1040
)

// separators are stripped from amounts typed by users. U+104A is the Burmese
// "little section" mark, commonly typed in place of a comma.
const separators = ",၊"

var ErrInvalidAmount = errors.New("invalid amount")

func toMyanmar(r rune) rune {
	if r >= asciiZero && r <= asciiZero+9 {
		return myanmarZero + (r - asciiZero)
	}

	return r
}

func toASCII(r rune) rune {
	if r >= myanmarZero && r <= myanmarZero+9 {
		return asciiZero + (r - myanmarZero)
	}

	return r
}

func apply(mapping func(rune) rune, s string) string {
	out, _, err := transform.String(runes.Map(mapping), s)
	if err != nil {
		// runes.Map never fails on valid input; keep the original text otherwise.
		return s
	}

	return out
}

// ToLocalizedDigits replaces every ASCII digit with its Myanmar counterpart.
// All other runes are left untouched.
func ToLocalizedDigits(s string) string {
	return apply(toMyanmar, s)
}

// Localize renders an integer with Myanmar digits.
func Localize(n int) string {
	return ToLocalizedDigits(strconv.Itoa(n))
}

// ToASCIIDigits replaces every Myanmar digit with its ASCII counterpart.
func ToASCIIDigits(s string) string {
	return apply(toASCII, s)
}

// ToASCIIAmount normalizes a user-typed amount: digits become ASCII, thousands
// separators are dropped and surrounding whitespace is trimmed. Mixed
// Myanmar/ASCII input is accepted.
func ToASCIIAmount(s string) string {
	s = ToASCIIDigits(s)
	s = strings.Map(func(r rune) rune {
		if strings.ContainsRune(separators, r) {
			return -1
		}

		return r
	}, s)

	return strings.TrimSpace(s)
}

// ParseAmount parses a user-typed amount. Non-numeric and negative values
// return ErrInvalidAmount.
func ParseAmount(s string) (decimal.Decimal, error) {
	clean := ToASCIIAmount(s)
	if clean == "" {
		return decimal.Zero, ErrInvalidAmount
	}

	d, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}

	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: %q is negative", ErrInvalidAmount, s)
	}

	return d, nil
}

// FormatAmount rounds to whole kyat (half away from zero) and groups
// thousands with commas, e.g. 1999.6 -> "2,000".
func FormatAmount(d decimal.Decimal) string {
	p := message.NewPrinter(language.English)
	return p.Sprintf("%d", d.Round(0).IntPart())
}

// FormatAmountLocalized is FormatAmount with Myanmar digits.
func FormatAmountLocalized(d decimal.Decimal) string {
	return ToLocalizedDigits(FormatAmount(d))
}

// FormatAmountString formats a raw amount string. Input that does not parse
// as a number is returned unchanged instead of failing.
func FormatAmountString(raw string) string {
	d, err := decimal.NewFromString(ToASCIIAmount(raw))
	if err != nil {
		return raw
	}

	return FormatAmount(d)
}

// FormatDateNoLeadingZeros renders t as D-M-YYYY.
func FormatDateNoLeadingZeros(t time.Time) string {
	return fmt.Sprintf("%d-%d-%04d", t.Day(), int(t.Month()), t.Year())
}

// FormatDate renders t as DD-MM-YYYY.
func FormatDate(t time.Time) string {
	return t.Format("02-01-2006")
}

// FormatTime renders t as HH:MM.
func FormatTime(t time.Time) string {
	return t.Format("15:04")
}

// ParseDateTime reads a DD-MM-YYYY date and an HH:MM time, in either digit
// set, as a wall clock time labelled UTC.
func ParseDateTime(date, clock string) (time.Time, error) {
	date = strings.TrimSpace(ToASCIIDigits(date))
	clock = strings.TrimSpace(ToASCIIDigits(clock))

	at, err := time.ParseInLocation("02-01-2006 15:04", date+" "+clock, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date/time %q %q: %w", date, clock, err)
	}

	return at, nil
}
