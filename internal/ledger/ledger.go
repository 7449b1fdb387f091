package ledger

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Variant distinguishes incomes from expenses. Each variant lives in its own table.
type Variant string

const (
	VariantIncome  Variant = "income"
	VariantExpense Variant = "expense"
)

// DefaultIncomeDescription is used when an income is recorded without a description.
const DefaultIncomeDescription = "Income"

// Tag is the one-letter prefix used in entry keys.
func (v Variant) Tag() string {
	switch v {
	case VariantIncome:
		return "I"
	case VariantExpense:
		return "E"
	}

	return ""
}

func (v Variant) Valid() bool {
	return v == VariantIncome || v == VariantExpense
}

func variantFromTag(tag string) (Variant, bool) {
	switch tag {
	case "I":
		return VariantIncome, true
	case "E":
		return VariantExpense, true
	}

	return "", false
}

// Entry is a single dated income or expense.
type Entry struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	Variant     Variant
	OccurredAt  time.Time
	Description string
	Amount      decimal.Decimal
	Note        string
	CreatedAt   time.Time
}

// Key returns the composite key identifying the entry across both tables.
func (e *Entry) Key() Key {
	return Key{Variant: e.Variant, ID: e.ID}
}

// Key identifies an entry by variant and id, e.g. "E-0190d1c2-...".
// The zero Key identifies nothing.
type Key struct {
	Variant Variant
	ID      uuid.UUID
}

func (k Key) IsZero() bool {
	return k.Variant == "" && k.ID == uuid.Nil
}

func (k Key) String() string {
	if k.IsZero() {
		return ""
	}

	return k.Variant.Tag() + "-" + k.ID.String()
}

// ParseKey parses the String form of a Key. The empty string yields the zero Key.
func ParseKey(s string) (Key, error) {
	if s == "" {
		return Key{}, nil
	}

	tag, rawID, ok := strings.Cut(s, "-")
	if !ok {
		return Key{}, fmt.Errorf("malformed entry key %q", s)
	}

	variant, ok := variantFromTag(tag)
	if !ok {
		return Key{}, fmt.Errorf("unknown entry kind %q", tag)
	}

	id, err := uuid.Parse(rawID)
	if err != nil {
		return Key{}, fmt.Errorf("parsing entry id: %w", err)
	}

	return Key{Variant: variant, ID: id}, nil
}

// Closure is an immutable snapshot of a month's expense total.
// Closing the same month again appends another Closure.
type Closure struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Year      int
	Month     time.Month
	Total     decimal.Decimal
	CreatedAt time.Time
}

func (c *Closure) Period() Period {
	return Period{Year: c.Year, Month: c.Month}
}

// Cursor is the per-session view state: which month is being viewed and which
// entry was added or edited last. It is passed explicitly to every operation
// that reads or changes it.
type Cursor struct {
	UserID      uuid.UUID
	Period      Period
	LastTouched Key
}

// NewCursor starts a cursor on the month containing now.
func NewCursor(userID uuid.UUID, now time.Time) Cursor {
	return Cursor{UserID: userID, Period: PeriodOf(now)}
}

// Statement is the derived, display-ready view of one month.
type Statement struct {
	Period       Period
	Rows         []Row
	IncomeTotal  decimal.Decimal
	ExpenseTotal decimal.Decimal
	Balance      decimal.Decimal
}
