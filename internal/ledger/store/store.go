package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"hash/fnv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/kyat/internal/database"
	"github.com/MrJamesThe3rd/kyat/internal/ledger"
)

type Store struct {
	db      *sql.DB
	dialect database.Dialect
}

func New(db *sql.DB, dialect database.Dialect) *Store {
	return &Store{db: db, dialect: dialect}
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func table(v ledger.Variant) (string, error) {
	switch v {
	case ledger.VariantIncome:
		return "incomes", nil
	case ledger.VariantExpense:
		return "expenses", nil
	}

	return "", fmt.Errorf("unknown entry variant %q", v)
}

const entryColumns = `id, user_id, occurred_at, description, amount, note, created_at`

// scanEntry expects the column order of entryColumns.
func scanEntry(s scanner, v ledger.Variant) (*ledger.Entry, error) {
	e := ledger.Entry{Variant: v}

	if err := s.Scan(&e.ID, &e.UserID, &e.OccurredAt, &e.Description, &e.Amount, &e.Note, &e.CreatedAt); err != nil {
		return nil, err
	}

	e.OccurredAt = e.OccurredAt.UTC()
	e.CreatedAt = e.CreatedAt.UTC()

	return &e, nil
}

func (s *Store) insertEntry(ctx context.Context, q querier, e *ledger.Entry) error {
	tbl, err := table(e.Variant)
	if err != nil {
		return err
	}

	if e.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("generating id: %w", err)
		}

		e.ID = id
	}

	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	query := s.dialect.Rebind(`INSERT INTO ` + tbl + ` (` + entryColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?)`)

	_, err = q.ExecContext(ctx, query,
		e.ID,
		e.UserID,
		ledger.WallClock(e.OccurredAt),
		e.Description,
		e.Amount,
		e.Note,
		e.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("creating %s: %w", e.Variant, err)
	}

	return nil
}

func (s *Store) CreateEntry(ctx context.Context, e *ledger.Entry) error {
	return s.insertEntry(ctx, s.db, e)
}

func (s *Store) GetEntry(ctx context.Context, userID uuid.UUID, key ledger.Key) (*ledger.Entry, error) {
	tbl, err := table(key.Variant)
	if err != nil {
		return nil, ledger.ErrNotFound
	}

	query := s.dialect.Rebind(`SELECT ` + entryColumns + ` FROM ` + tbl + ` WHERE id = ? AND user_id = ?`)

	e, err := scanEntry(s.db.QueryRowContext(ctx, query, key.ID, userID), key.Variant)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ledger.ErrNotFound
		}

		return nil, fmt.Errorf("getting %s: %w", key.Variant, err)
	}

	return e, nil
}

// UpdateEntry changes description, amount and note of an entry owned by
// e.UserID. Unknown ids are ignored.
func (s *Store) UpdateEntry(ctx context.Context, e *ledger.Entry) error {
	tbl, err := table(e.Variant)
	if err != nil {
		return err
	}

	query := s.dialect.Rebind(`
		UPDATE ` + tbl + `
		SET description = ?, amount = ?, note = ?
		WHERE id = ? AND user_id = ?
	`)

	if _, err := s.db.ExecContext(ctx, query, e.Description, e.Amount, e.Note, e.ID, e.UserID); err != nil {
		return fmt.Errorf("updating %s: %w", e.Variant, err)
	}

	return nil
}

func (s *Store) DeleteEntry(ctx context.Context, userID uuid.UUID, key ledger.Key) error {
	tbl, err := table(key.Variant)
	if err != nil {
		return ledger.ErrNotFound
	}

	query := s.dialect.Rebind(`DELETE FROM ` + tbl + ` WHERE id = ? AND user_id = ?`)

	res, err := s.db.ExecContext(ctx, query, key.ID, userID)
	if err != nil {
		return fmt.Errorf("deleting %s: %w", key.Variant, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting %s: %w", key.Variant, err)
	}

	if n == 0 {
		return ledger.ErrNotFound
	}

	return nil
}

func (s *Store) listRange(ctx context.Context, q querier, userID uuid.UUID, v ledger.Variant, from, to time.Time, inclusive bool) ([]*ledger.Entry, error) {
	tbl, err := table(v)
	if err != nil {
		return nil, err
	}

	upper := "<"
	if inclusive {
		upper = "<="
	}

	query := s.dialect.Rebind(`SELECT ` + entryColumns + ` FROM ` + tbl + `
		WHERE user_id = ? AND occurred_at >= ? AND occurred_at ` + upper + ` ?
		ORDER BY occurred_at ASC, id ASC`)

	rows, err := q.QueryContext(ctx, query, userID, from.UTC(), to.UTC())
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", tbl, err)
	}
	defer rows.Close()

	var entries []*ledger.Entry

	for rows.Next() {
		e, err := scanEntry(rows, v)
		if err != nil {
			return nil, fmt.Errorf("scanning %s: %w", v, err)
		}

		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating %s: %w", tbl, err)
	}

	return entries, nil
}

// ListMonth returns the entries of one calendar month, oldest first. Entries
// sharing a timestamp come back in insertion order.
func (s *Store) ListMonth(ctx context.Context, userID uuid.UUID, v ledger.Variant, p ledger.Period) ([]*ledger.Entry, error) {
	return s.listRange(ctx, s.db, userID, v, p.Start(), p.End(), false)
}

func (s *Store) SumExpenses(ctx context.Context, userID uuid.UUID, p ledger.Period) (decimal.Decimal, error) {
	query := s.dialect.Rebind(`
		SELECT COALESCE(SUM(amount), 0) FROM expenses
		WHERE user_id = ? AND occurred_at >= ? AND occurred_at < ?
	`)

	var total decimal.Decimal
	if err := s.db.QueryRowContext(ctx, query, userID, p.Start(), p.End()).Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("summing expenses: %w", err)
	}

	return total, nil
}

// CreateClosure always inserts; closing a month twice keeps both snapshots.
func (s *Store) CreateClosure(ctx context.Context, c *ledger.Closure) error {
	if c.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("generating id: %w", err)
		}

		c.ID = id
	}

	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}

	query := s.dialect.Rebind(`
		INSERT INTO month_closures (id, user_id, year, month, total, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`)

	_, err := s.db.ExecContext(ctx, query, c.ID, c.UserID, c.Year, int(c.Month), c.Total, c.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("creating closure: %w", err)
	}

	return nil
}

func (s *Store) ListClosures(ctx context.Context, userID uuid.UUID) ([]*ledger.Closure, error) {
	query := s.dialect.Rebind(`
		SELECT id, user_id, year, month, total, created_at
		FROM month_closures
		WHERE user_id = ?
		ORDER BY year DESC, month DESC, created_at DESC
	`)

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("listing closures: %w", err)
	}
	defer rows.Close()

	var closures []*ledger.Closure

	for rows.Next() {
		var (
			c     ledger.Closure
			month int
		)

		if err := rows.Scan(&c.ID, &c.UserID, &c.Year, &month, &c.Total, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning closure: %w", err)
		}

		c.Month = time.Month(month)
		c.CreatedAt = c.CreatedAt.UTC()
		closures = append(closures, &c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating closures: %w", err)
	}

	return closures, nil
}

func importLockKey(userID uuid.UUID) int64 {
	h := fnv.New64a()
	h.Write(userID[:])

	return int64(h.Sum64())
}

type importTx struct {
	store *Store
	tx    *sql.Tx
}

// BeginImport opens the transaction a statement import runs in. On
// PostgreSQL concurrent imports for the same user queue on an advisory lock;
// SQLite already serializes writers.
func (s *Store) BeginImport(ctx context.Context) (ledger.ImportTx, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning import tx: %w", err)
	}

	return &importTx{store: s, tx: dbTx}, nil
}

func (itx *importTx) Commit() error { return itx.tx.Commit() }

func (itx *importTx) Rollback() error {
	err := itx.tx.Rollback()
	if errors.Is(err, sql.ErrTxDone) {
		return nil
	}

	return err
}

func (itx *importTx) lock(ctx context.Context, userID uuid.UUID) error {
	if itx.store.dialect != database.Postgres {
		return nil
	}

	if _, err := itx.tx.ExecContext(ctx, "SELECT pg_advisory_xact_lock($1)", importLockKey(userID)); err != nil {
		return fmt.Errorf("acquiring import lock: %w", err)
	}

	return nil
}

// FindDuplicates returns the stored entries that match one of the given
// entries on kind, timestamp, amount and description.
func (itx *importTx) FindDuplicates(ctx context.Context, userID uuid.UUID, entries []*ledger.Entry) ([]*ledger.Entry, error) {
	if len(entries) == 0 {
		return nil, nil
	}

	if err := itx.lock(ctx, userID); err != nil {
		return nil, err
	}

	type lookupKey struct {
		Variant     ledger.Variant
		OccurredAt  int64
		Amount      string
		Description string
	}

	keyOf := func(e *ledger.Entry) lookupKey {
		return lookupKey{
			Variant:     e.Variant,
			OccurredAt:  e.OccurredAt.Unix(),
			Amount:      e.Amount.String(),
			Description: e.Description,
		}
	}

	minDate := entries[0].OccurredAt
	maxDate := entries[0].OccurredAt
	keySet := make(map[lookupKey]struct{}, len(entries))

	for _, e := range entries {
		if e.OccurredAt.Before(minDate) {
			minDate = e.OccurredAt
		}

		if e.OccurredAt.After(maxDate) {
			maxDate = e.OccurredAt
		}

		keySet[keyOf(e)] = struct{}{}
	}

	var duplicates []*ledger.Entry

	for _, v := range []ledger.Variant{ledger.VariantIncome, ledger.VariantExpense} {
		stored, err := itx.store.listRange(ctx, itx.tx, userID, v, minDate, maxDate, true)
		if err != nil {
			return nil, fmt.Errorf("finding duplicates: %w", err)
		}

		for _, e := range stored {
			if _, found := keySet[keyOf(e)]; found {
				duplicates = append(duplicates, e)
			}
		}
	}

	return duplicates, nil
}

func (itx *importTx) CreateEntries(ctx context.Context, entries []*ledger.Entry) error {
	for _, e := range entries {
		if err := itx.store.insertEntry(ctx, itx.tx, e); err != nil {
			return err
		}
	}

	return nil
}
