// Package importer reads text statements back into ledger entries.
package importer

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/MrJamesThe3rd/kyat/internal/export"
	"github.com/MrJamesThe3rd/kyat/internal/ledger"
	"github.com/MrJamesThe3rd/kyat/internal/numfmt"
)

var ErrMalformed = errors.New("malformed statement")

// Importer turns an uploaded file into entries ready for ledger.Service.Import.
type Importer interface {
	Parse(r io.Reader) ([]ledger.AddParams, error)
}

const (
	colNo = iota
	colDate
	colTime
	colDescription
	colIncome
	colExpense
	colBalance
	colNote
)

// StatementParser reads the tab separated statement written by
// export.WriteText. Running balances and day captions are derived data and
// are ignored; the kind of each entry follows from which amount column is set.
type StatementParser struct{}

func NewStatementParser() *StatementParser {
	return &StatementParser{}
}

func (p *StatementParser) Parse(r io.Reader) ([]ledger.AddParams, error) {
	utf8r, err := NewUTF8Reader(r)
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	sc := bufio.NewScanner(utf8r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var (
		params     []ledger.AddParams
		seenHeader bool
		line       int
	)

	for sc.Scan() {
		line++

		text := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(text) == "" {
			continue
		}

		cells := splitCells(text)

		if !seenHeader {
			if cells[colNo] != export.Columns[colNo] || cells[colDescription] != export.Columns[colDescription] {
				return nil, fmt.Errorf("%w: line %d: missing header", ErrMalformed, line)
			}

			seenHeader = true

			continue
		}

		// Day totals and dividers only fill the description column.
		if cells[colNo] == "" && cells[colDate] == "" && cells[colTime] == "" {
			continue
		}

		param, err := parseRow(cells)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", ErrMalformed, line, err)
		}

		params = append(params, param)
	}

	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read statement: %w", err)
	}

	if !seenHeader {
		return nil, fmt.Errorf("%w: empty file", ErrMalformed)
	}

	return params, nil
}

// splitCells always returns len(export.Columns) cells; spreadsheets tend to
// drop trailing empty ones.
func splitCells(line string) []string {
	fields := strings.Split(line, "\t")

	cells := make([]string, len(export.Columns))
	for i := range cells {
		if i < len(fields) {
			cells[i] = unquote(strings.TrimSpace(fields[i]))
		}
	}

	if len(fields) > len(cells) {
		// A stray tab in the note column.
		cells[colNote] = unquote(strings.TrimSpace(strings.Join(fields[colNote:], " ")))
	}

	return cells
}

func unquote(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return strings.ReplaceAll(s[1:len(s)-1], `""`, `"`)
	}

	return s
}

func parseRow(cells []string) (ledger.AddParams, error) {
	at, err := parseTimestamp(cells[colDate], cells[colTime])
	if err != nil {
		return ledger.AddParams{}, err
	}

	income, expense := cells[colIncome], cells[colExpense]

	var (
		variant ledger.Variant
		raw     string
	)

	switch {
	case income != "" && expense != "":
		return ledger.AddParams{}, errors.New("both income and expense are set")
	case income != "":
		variant, raw = ledger.VariantIncome, income
	case expense != "":
		variant, raw = ledger.VariantExpense, expense
	default:
		return ledger.AddParams{}, errors.New("no amount")
	}

	amount, err := numfmt.ParseAmount(raw)
	if err != nil {
		return ledger.AddParams{}, err
	}

	return ledger.AddParams{
		Variant:     variant,
		OccurredAt:  at,
		Description: cells[colDescription],
		Amount:      amount,
		Note:        cells[colNote],
	}, nil
}

func parseTimestamp(date, clock string) (time.Time, error) {
	date = numfmt.ToASCIIDigits(date)
	if date == "" {
		return time.Time{}, errors.New("missing date")
	}

	if clock == "" {
		clock = "00:00"
	}

	return numfmt.ParseDateTime(date, clock)
}
