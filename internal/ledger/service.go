package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=ledger
type Repository interface {
	CreateEntry(ctx context.Context, e *Entry) error
	GetEntry(ctx context.Context, userID uuid.UUID, key Key) (*Entry, error)
	UpdateEntry(ctx context.Context, e *Entry) error
	DeleteEntry(ctx context.Context, userID uuid.UUID, key Key) error

	ListMonth(ctx context.Context, userID uuid.UUID, variant Variant, p Period) ([]*Entry, error)
	SumExpenses(ctx context.Context, userID uuid.UUID, p Period) (decimal.Decimal, error)

	CreateClosure(ctx context.Context, c *Closure) error
	ListClosures(ctx context.Context, userID uuid.UUID) ([]*Closure, error)

	BeginImport(ctx context.Context) (ImportTx, error)
}

type ImportTx interface {
	FindDuplicates(ctx context.Context, userID uuid.UUID, entries []*Entry) ([]*Entry, error)
	CreateEntries(ctx context.Context, entries []*Entry) error
	Commit() error
	Rollback() error
}

// Notifier is told about every closure after it has been stored.
type Notifier interface {
	MonthClosed(ctx context.Context, c *Closure) error
}

type Service struct {
	repo     Repository
	notifier Notifier
	now      func() time.Time
	loc      *time.Location
}

type Option func(*Service)

func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLocation sets the zone whose wall clock is recorded for entries
// added without a timestamp. The default is UTC.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) { s.loc = loc }
}

func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{repo: repo, now: time.Now, loc: time.UTC}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// LocalNow is the current time in the service location.
func (s *Service) LocalNow() time.Time {
	return s.now().In(s.loc)
}

// CurrentPeriod is the month it is now in the service location.
func (s *Service) CurrentPeriod() Period {
	return PeriodOf(s.LocalNow())
}

// NewCursor starts a cursor for userID on the current month of the service
// location.
func (s *Service) NewCursor(userID uuid.UUID) Cursor {
	return NewCursor(userID, s.LocalNow())
}

type AddParams struct {
	Variant     Variant
	OccurredAt  time.Time
	Description string
	Amount      decimal.Decimal
	Note        string
}

// normalize validates p and returns the entry it describes. OccurredAt keeps
// the wall clock it was given in; entries without one get the wall clock of
// now.
func (p AddParams) normalize(userID uuid.UUID, now time.Time) (*Entry, error) {
	if !p.Variant.Valid() {
		return nil, invalid("variant", fmt.Sprintf("unknown entry kind %q", p.Variant))
	}

	desc := strings.TrimSpace(p.Description)
	if desc == "" {
		if p.Variant == VariantExpense {
			return nil, invalid("description", MsgExpenseDescriptionRequired)
		}

		desc = DefaultIncomeDescription
	}

	if p.Amount.IsNegative() {
		return nil, invalid("amount", MsgInvalidAmount)
	}

	at := p.OccurredAt
	if at.IsZero() {
		at = now
	}

	return &Entry{
		UserID:      userID,
		Variant:     p.Variant,
		OccurredAt:  WallClock(at),
		Description: desc,
		Amount:      p.Amount,
		Note:        strings.TrimSpace(p.Note),
		CreatedAt:   now.UTC(),
	}, nil
}

// Add records a new entry and marks it as the last touched one.
func (s *Service) Add(ctx context.Context, cur *Cursor, params AddParams) (*Entry, error) {
	e, err := params.normalize(cur.UserID, s.LocalNow())
	if err != nil {
		return nil, err
	}

	if err := s.repo.CreateEntry(ctx, e); err != nil {
		return nil, err
	}

	cur.LastTouched = e.Key()

	return e, nil
}

type UpdateParams struct {
	Key         Key
	Description string
	Amount      decimal.Decimal
	Note        string
}

// Update edits description, amount and note. The timestamp never changes.
func (s *Service) Update(ctx context.Context, cur *Cursor, params UpdateParams) (*Entry, error) {
	e, err := s.repo.GetEntry(ctx, cur.UserID, params.Key)
	if err != nil {
		return nil, err
	}

	desc := strings.TrimSpace(params.Description)
	if desc == "" {
		if e.Variant == VariantExpense {
			return nil, invalid("description", MsgExpenseDescriptionRequired)
		}

		desc = DefaultIncomeDescription
	}

	if params.Amount.IsNegative() {
		return nil, invalid("amount", MsgInvalidAmount)
	}

	e.Description = desc
	e.Amount = params.Amount
	e.Note = strings.TrimSpace(params.Note)

	if err := s.repo.UpdateEntry(ctx, e); err != nil {
		return nil, err
	}

	cur.LastTouched = e.Key()

	return e, nil
}

func (s *Service) Delete(ctx context.Context, cur *Cursor, key Key) error {
	if err := s.repo.DeleteEntry(ctx, cur.UserID, key); err != nil {
		return err
	}

	if cur.LastTouched == key {
		cur.LastTouched = Key{}
	}

	return nil
}

func (s *Service) Get(ctx context.Context, userID uuid.UUID, key Key) (*Entry, error) {
	return s.repo.GetEntry(ctx, userID, key)
}

// Statement derives the statement for the cursor's month.
func (s *Service) Statement(ctx context.Context, cur Cursor) (*Statement, error) {
	return s.MonthStatement(ctx, cur, cur.Period)
}

// MonthStatement derives the statement for any month of the cursor's user.
// Rows are rebuilt from storage on every call.
func (s *Service) MonthStatement(ctx context.Context, cur Cursor, p Period) (*Statement, error) {
	incomes, err := s.repo.ListMonth(ctx, cur.UserID, VariantIncome, p)
	if err != nil {
		return nil, fmt.Errorf("listing incomes: %w", err)
	}

	expenses, err := s.repo.ListMonth(ctx, cur.UserID, VariantExpense, p)
	if err != nil {
		return nil, fmt.Errorf("listing expenses: %w", err)
	}

	return Summarize(p, incomes, expenses, cur.LastTouched), nil
}

func (s *Service) SumExpenses(ctx context.Context, userID uuid.UUID, p Period) (decimal.Decimal, error) {
	return s.repo.SumExpenses(ctx, userID, p)
}

// CloseMonth snapshots the expense total of the cursor's month, moves the
// cursor to the following month and clears the last touched entry. Months
// without expenses cannot be closed; incomes alone do not count.
func (s *Service) CloseMonth(ctx context.Context, cur *Cursor) (*Closure, error) {
	expenses, err := s.repo.ListMonth(ctx, cur.UserID, VariantExpense, cur.Period)
	if err != nil {
		return nil, fmt.Errorf("listing expenses: %w", err)
	}

	if len(expenses) == 0 {
		return nil, ErrNoEntries
	}

	total, err := s.repo.SumExpenses(ctx, cur.UserID, cur.Period)
	if err != nil {
		return nil, fmt.Errorf("summing expenses: %w", err)
	}

	c := &Closure{
		UserID:    cur.UserID,
		Year:      cur.Period.Year,
		Month:     cur.Period.Month,
		Total:     total,
		CreatedAt: s.now().UTC(),
	}
	if err := s.repo.CreateClosure(ctx, c); err != nil {
		return nil, err
	}

	cur.Period = cur.Period.Next()
	cur.LastTouched = Key{}

	if s.notifier != nil {
		if err := s.notifier.MonthClosed(ctx, c); err != nil {
			slog.Warn("failed to publish month closure", "user_id", c.UserID, "period", c.Period(), "error", err)
		}
	}

	return c, nil
}

func (s *Service) Closures(ctx context.Context, userID uuid.UUID) ([]*Closure, error) {
	return s.repo.ListClosures(ctx, userID)
}

type ImportResult struct {
	Imported  []*Entry
	New       []AddParams
	Conflicts []Conflict
}

type Conflict struct {
	Incoming AddParams
	Existing *Entry
}

type dupKey struct {
	Variant     Variant
	OccurredAt  int64
	Amount      string
	Description string
}

func entryDupKey(e *Entry) dupKey {
	return dupKey{
		Variant:     e.Variant,
		OccurredAt:  e.OccurredAt.Unix(),
		Amount:      e.Amount.String(),
		Description: e.Description,
	}
}

// Import stores a batch of entries in one transaction. Entries matching an
// existing one (same kind, timestamp, amount and description) are reported as
// conflicts and nothing is written, unless force is set, in which case the
// conflicting entries are skipped and the rest are stored.
func (s *Service) Import(ctx context.Context, cur *Cursor, params []AddParams, force bool) (*ImportResult, error) {
	if len(params) == 0 {
		return &ImportResult{}, nil
	}

	now := s.LocalNow()

	entries := make([]*Entry, len(params))
	for i, p := range params {
		e, err := p.normalize(cur.UserID, now)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i+1, err)
		}

		entries[i] = e
	}

	itx, err := s.repo.BeginImport(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin import: %w", err)
	}
	defer itx.Rollback()

	duplicates, err := itx.FindDuplicates(ctx, cur.UserID, entries)
	if err != nil {
		return nil, fmt.Errorf("find duplicates: %w", err)
	}

	lookup := make(map[dupKey]*Entry, len(duplicates))
	for _, d := range duplicates {
		lookup[entryDupKey(d)] = d
	}

	var (
		fresh     []*Entry
		newParams []AddParams
		conflicts []Conflict
	)

	for i, e := range entries {
		if existing, found := lookup[entryDupKey(e)]; found {
			conflicts = append(conflicts, Conflict{Incoming: params[i], Existing: existing})
			continue
		}

		fresh = append(fresh, e)
		newParams = append(newParams, params[i])
	}

	if len(conflicts) > 0 && !force {
		return &ImportResult{New: newParams, Conflicts: conflicts}, nil
	}

	if len(fresh) > 0 {
		if err := itx.CreateEntries(ctx, fresh); err != nil {
			return nil, fmt.Errorf("create entries: %w", err)
		}
	}

	if err := itx.Commit(); err != nil {
		return nil, fmt.Errorf("commit import: %w", err)
	}

	if len(fresh) > 0 {
		cur.LastTouched = fresh[len(fresh)-1].Key()
	}

	return &ImportResult{Imported: fresh, Conflicts: conflicts}, nil
}
